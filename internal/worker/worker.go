package worker

import (
	"context"
	"sync"
)

type ProcessFunc[T any] func(ctx context.Context, job T) error

// WorkerPool runs jobs on a fixed number of goroutines. The first job error
// stops dispatching; jobs already running finish with the caller's context.
type WorkerPool[T any] struct {
	numWorkers int
	jobs       chan T
	processor  ProcessFunc[T]
	wg         sync.WaitGroup

	stop    context.Context
	cancel  context.CancelFunc
	errOnce sync.Once
	err     error
}

func NewWorkerPool[T any](numWorkers int, bufferSize int, processor ProcessFunc[T]) *WorkerPool[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T]{
		numWorkers: numWorkers,
		jobs:       make(chan T, bufferSize),
		processor:  processor,
	}
}

func (wp *WorkerPool[T]) Start(ctx context.Context) {
	wp.stop, wp.cancel = context.WithCancel(ctx)
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}
}

func (wp *WorkerPool[T]) worker(ctx context.Context) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.stop.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			if wp.stop.Err() != nil {
				return
			}
			if err := wp.processor(ctx, job); err != nil {
				wp.fail(err)
				return
			}
		}
	}
}

func (wp *WorkerPool[T]) fail(err error) {
	wp.errOnce.Do(func() {
		wp.err = err
		wp.cancel()
	})
}

// Submit queues a job. It returns the pool's stop reason once the pool has
// failed or its context is done.
func (wp *WorkerPool[T]) Submit(job T) error {
	if err := context.Cause(wp.stop); err != nil {
		return err
	}
	select {
	case <-wp.stop.Done():
		return context.Cause(wp.stop)
	case wp.jobs <- job:
		return nil
	}
}

// Stop closes the queue, waits for the workers and returns the first job error.
func (wp *WorkerPool[T]) Stop() error {
	close(wp.jobs)
	wp.wg.Wait()
	wp.cancel()
	return wp.err
}
