package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mr1hm/histotrails/internal/authoring"
	"github.com/mr1hm/histotrails/internal/backend"
	"github.com/mr1hm/histotrails/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func TestSQLiteDB_SaveAndGetRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	run := &models.AuthoringRun{
		ID:        "run_1",
		Title:     "Battle of Kosovo",
		Marker:    "__NEW_EVENT_1_abc__",
		Step:      "submit_marker",
		Status:    models.RunRunning,
		StartedAt: started,
		UpdatedAt: started,
	}

	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	run.EventID = 42
	run.Step = "commit"
	run.Status = models.RunCompleted
	run.StartedAt = started.Add(time.Hour) // ignored on update
	run.UpdatedAt = started.Add(time.Minute)
	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun update failed: %v", err)
	}

	got, err := db.GetRun(ctx, "run_1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.EventID != 42 || got.Status != models.RunCompleted || got.Step != "commit" {
		t.Errorf("unexpected run: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("expected started_at to be kept, got %s", got.StartedAt)
	}
	if !got.UpdatedAt.Equal(started.Add(time.Minute)) {
		t.Errorf("unexpected updated_at %s", got.UpdatedAt)
	}
}

func TestSQLiteDB_GetRunNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetRun(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_ListRuns_WithFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	runs := []*models.AuthoringRun{
		{ID: "ok", Title: "a", Step: "done", Status: models.RunCompleted, EventID: 1, StartedAt: base},
		{ID: "lost", Title: "b", Step: "resolve_identity", Status: models.RunFailed, StartedAt: base.Add(time.Hour)},
		{ID: "dangling", Title: "c", Step: "upload_media", Status: models.RunFailed, EventID: 7, StartedAt: base.Add(2 * time.Hour)},
	}
	for _, r := range runs {
		r.UpdatedAt = r.StartedAt
		if err := db.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	all, err := db.ListRuns(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "dangling" {
		t.Errorf("expected 3 runs newest first, got %+v", all)
	}

	failed := models.RunFailed
	results, err := db.ListRuns(ctx, Filter{Status: &failed})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 failed runs, got %d", len(results))
	}

	results, err = db.ListRuns(ctx, Filter{Dangling: true})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "dangling" {
		t.Errorf("expected only the dangling run, got %+v", results)
	}

	since := base.Add(30 * time.Minute)
	results, err = db.ListRuns(ctx, Filter{Since: &since, Limit: 1})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "dangling" {
		t.Errorf("expected newest run after since, got %+v", results)
	}
}

func TestSQLiteDB_Tokens(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	empty, err := db.LoadTokens(ctx)
	if err != nil {
		t.Fatalf("LoadTokens failed: %v", err)
	}
	if empty.AccessToken != "" {
		t.Errorf("expected no tokens, got %+v", empty)
	}

	if err := db.SaveTokens(ctx, backend.Tokens{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
		t.Fatalf("SaveTokens failed: %v", err)
	}
	if err := db.SaveTokens(ctx, backend.Tokens{AccessToken: "a2", RefreshToken: "r1"}); err != nil {
		t.Fatalf("SaveTokens failed: %v", err)
	}

	got, err := db.LoadTokens(ctx)
	if err != nil {
		t.Fatalf("LoadTokens failed: %v", err)
	}
	if got.AccessToken != "a2" || got.RefreshToken != "r1" {
		t.Errorf("unexpected tokens: %+v", got)
	}

	if err := db.ClearTokens(ctx); err != nil {
		t.Fatalf("ClearTokens failed: %v", err)
	}
	got, _ = db.LoadTokens(ctx)
	if got.AccessToken != "" {
		t.Errorf("expected tokens to be cleared, got %+v", got)
	}
}

func TestJournal_RecordsRunLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	j := NewJournal(db)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	j.Observe(authoring.Progress{RunID: "r1", Title: "Siege", Step: authoring.StepCompose, Status: authoring.StatusStarted, At: at})
	j.Observe(authoring.Progress{RunID: "r1", Title: "Siege", Step: authoring.StepUploadMedia, Status: authoring.StatusFailed,
		EventID: 9, Marker: "__NEW_EVENT_1_x__", MediaUploaded: 1, MediaTotal: 2, Error: "upload failed", At: at.Add(time.Second)})

	got, err := db.GetRun(context.Background(), "r1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != models.RunFailed || got.EventID != 9 || got.Error != "upload failed" {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.MediaUploaded != 1 || got.MediaTotal != 2 {
		t.Errorf("unexpected media counts: %+v", got)
	}
	if !got.StartedAt.Equal(at) {
		t.Errorf("expected started_at from first progress, got %s", got.StartedAt)
	}
	if len(j.runs) != 0 {
		t.Errorf("expected finished run to be dropped from memory, got %d", len(j.runs))
	}
}

func TestJournal_CompletesRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	j := NewJournal(db)
	at := time.Now()
	j.Observe(authoring.Progress{RunID: "r2", Title: "Treaty", Step: authoring.StepCommit, Status: authoring.StatusStarted, EventID: 3, At: at})
	j.Observe(authoring.Progress{RunID: "r2", Title: "Treaty", Step: authoring.StepDone, Status: authoring.StatusCompleted, EventID: 3, At: at})

	got, err := db.GetRun(context.Background(), "r2")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != models.RunCompleted {
		t.Errorf("expected completed run, got %s", got.Status)
	}
}
