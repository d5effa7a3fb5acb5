package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mr1hm/histotrails/internal/backend"
)

// LoadTokens returns empty tokens when no session was saved.
func (s *SQLiteDB) LoadTokens(ctx context.Context) (backend.Tokens, error) {
	var t backend.Tokens
	err := s.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token FROM session_tokens WHERE id = 1`,
	).Scan(&t.AccessToken, &t.RefreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return backend.Tokens{}, nil
	}
	if err != nil {
		return backend.Tokens{}, fmt.Errorf("error loading tokens: %w", err)
	}
	return t, nil
}

func (s *SQLiteDB) SaveTokens(ctx context.Context, t backend.Tokens) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_tokens (id, access_token, refresh_token, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at`,
		t.AccessToken, t.RefreshToken, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error saving tokens: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ClearTokens(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_tokens`); err != nil {
		return fmt.Errorf("error clearing tokens: %w", err)
	}
	return nil
}
