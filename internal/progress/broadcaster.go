// Package progress fans authoring progress out to streaming clients.
package progress

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/histotrails/internal/authoring"
	"github.com/mr1hm/histotrails/internal/metrics"
)

const subscriberBuffer = 64

type Broadcaster struct {
	subscribers map[uint64]chan authoring.Progress
	nextID      atomic.Uint64
	closed      bool
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan authoring.Progress),
	}
}

// Subscribe registers a listener. After Close the returned channel is
// already closed.
func (b *Broadcaster) Subscribe() (uint64, <-chan authoring.Progress) {
	id := b.nextID.Add(1)
	ch := make(chan authoring.Progress, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch
	metrics.ProgressSubscribers.Inc()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
		metrics.ProgressSubscribers.Dec()
	}
	b.mu.Unlock()
}

// Broadcast never blocks; slow subscribers miss updates.
func (b *Broadcaster) Broadcast(p authoring.Progress) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- p:
		default:
		}
	}
}

// Observe lets the broadcaster be passed to the saga directly.
func (b *Broadcaster) Observe(p authoring.Progress) {
	b.Broadcast(p)
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels so streams exit.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
		metrics.ProgressSubscribers.Dec()
	}
}
