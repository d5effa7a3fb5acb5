package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mr1hm/histotrails/internal/models"
)

// SaveRun inserts the run or updates it in place. StartedAt is kept from the
// first insert.
func (s *SQLiteDB) SaveRun(ctx context.Context, r *models.AuthoringRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authoring_runs (id, title, marker, event_id, step, status, error, media_uploaded, media_total, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			marker = excluded.marker,
			event_id = excluded.event_id,
			step = excluded.step,
			status = excluded.status,
			error = excluded.error,
			media_uploaded = excluded.media_uploaded,
			media_total = excluded.media_total,
			updated_at = excluded.updated_at`,
		r.ID, r.Title, r.Marker, r.EventID, r.Step, string(r.Status), r.Error,
		r.MediaUploaded, r.MediaTotal, r.StartedAt.UnixMilli(), r.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error saving run %s: %w", r.ID, err)
	}
	return nil
}

const runColumns = `id, title, marker, event_id, step, status, error, media_uploaded, media_total, started_at, updated_at`

func (s *SQLiteDB) GetRun(ctx context.Context, id string) (*models.AuthoringRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM authoring_runs WHERE id = ?`, id)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns runs newest first.
func (s *SQLiteDB) ListRuns(ctx context.Context, opts Filter) ([]models.AuthoringRun, error) {
	var (
		where []string
		args  []any
	)
	if opts.Since != nil {
		where = append(where, "started_at >= ?")
		args = append(args, opts.Since.UnixMilli())
	}
	if opts.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*opts.Status))
	}
	if opts.Dangling {
		where = append(where, "status = ? AND event_id > 0")
		args = append(args, string(models.RunFailed))
	}

	query := `SELECT ` + runColumns + ` FROM authoring_runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing runs: %w", err)
	}
	defer rows.Close()

	var runs []models.AuthoringRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*models.AuthoringRun, error) {
	var (
		r                  models.AuthoringRun
		marker, errText    sql.NullString
		status             string
		started, updatedAt int64
	)
	err := sc.Scan(&r.ID, &r.Title, &marker, &r.EventID, &r.Step, &status, &errText,
		&r.MediaUploaded, &r.MediaTotal, &started, &updatedAt)
	if err != nil {
		return nil, err
	}
	r.Marker = marker.String
	r.Error = errText.String
	r.Status = models.RunStatus(status)
	r.StartedAt = time.UnixMilli(started).UTC()
	r.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &r, nil
}
