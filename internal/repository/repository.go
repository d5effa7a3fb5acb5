package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/histotrails/internal/backend"
	"github.com/mr1hm/histotrails/internal/models"
)

var ErrNotFound = errors.New("not found")

type Filter struct {
	Limit  int
	Offset int
	Since  *time.Time
	Status *models.RunStatus
	// Dangling keeps only failed runs whose event was created.
	Dangling bool
}

type RunRepository interface {
	SaveRun(ctx context.Context, r *models.AuthoringRun) error
	GetRun(ctx context.Context, id string) (*models.AuthoringRun, error)
	ListRuns(ctx context.Context, opts Filter) ([]models.AuthoringRun, error)
}

type TokenRepository interface {
	LoadTokens(ctx context.Context) (backend.Tokens, error)
	SaveTokens(ctx context.Context, t backend.Tokens) error
	ClearTokens(ctx context.Context) error
}
