package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mr1hm/histotrails/internal/authoring"
	"github.com/mr1hm/histotrails/internal/models"
)

const journalWriteTimeout = 5 * time.Second

// Journal records authoring progress as runs. It is an authoring.Observer;
// write failures are logged and never fail the run.
type Journal struct {
	repo RunRepository

	mu   sync.Mutex
	runs map[string]*models.AuthoringRun // in-flight runs by id
}

func NewJournal(repo RunRepository) *Journal {
	return &Journal{
		repo: repo,
		runs: make(map[string]*models.AuthoringRun),
	}
}

func (j *Journal) Observe(p authoring.Progress) {
	j.mu.Lock()
	run, ok := j.runs[p.RunID]
	if !ok {
		run = &models.AuthoringRun{
			ID:        p.RunID,
			Title:     p.Title,
			Status:    models.RunRunning,
			StartedAt: p.At,
		}
		j.runs[p.RunID] = run
	}

	run.Step = string(p.Step)
	run.Marker = p.Marker
	run.EventID = p.EventID
	run.MediaUploaded = p.MediaUploaded
	run.MediaTotal = p.MediaTotal
	run.UpdatedAt = p.At

	switch {
	case p.Status == authoring.StatusFailed:
		run.Status = models.RunFailed
		run.Error = p.Error
	case p.Step == authoring.StepDone:
		run.Status = models.RunCompleted
	}

	snapshot := *run
	if run.Status != models.RunRunning {
		delete(j.runs, p.RunID)
	}
	j.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()
	if err := j.repo.SaveRun(ctx, &snapshot); err != nil {
		slog.Error("failed to journal authoring run", "run_id", p.RunID, "step", p.Step, "error", err)
	}
}
