// Command histotrails-author authors one event from a JSON manifest, or
// lists runs that left an event behind.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mr1hm/histotrails/internal/auth"
	"github.com/mr1hm/histotrails/internal/authoring"
	"github.com/mr1hm/histotrails/internal/backend"
	"github.com/mr1hm/histotrails/internal/config"
	"github.com/mr1hm/histotrails/internal/logging"
	"github.com/mr1hm/histotrails/internal/repository"
)

func main() {
	var (
		manifestPath = flag.String("manifest", "", "path to the event manifest")
		preview      = flag.Bool("preview", false, "render the description locally without calling the backend")
		dangling     = flag.Bool("dangling", false, "list failed runs whose event was created")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dangling {
		listDangling(ctx, db)
		return
	}
	if *manifestPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*manifestPath)
	if err != nil {
		logging.Fatalf("Failed to open manifest: %v", err)
	}
	meta, blocks, err := authoring.LoadManifest(f, filepath.Dir(*manifestPath))
	f.Close()
	if err != nil {
		logging.Fatalf("Invalid manifest: %v", err)
	}

	if *preview {
		fmt.Println(previewDescription(blocks))
		return
	}

	client := backend.NewClient(cfg.Backend)
	session := auth.NewSession(client, db)
	if err := session.Start(ctx, cfg.Backend.Email, cfg.Backend.Password); err != nil {
		logging.Fatalf("Failed to log in: %v", err)
	}

	saga := authoring.NewSaga(client.WithTokens(session), authoring.Options{
		MediaBaseURL:      cfg.Backend.MediaBaseURL,
		UploadConcurrency: cfg.Authoring.UploadConcurrency,
		Observer: authoring.Observers(repository.NewJournal(db), authoring.ObserverFunc(func(p authoring.Progress) {
			slog.Info("progress", "step", p.Step, "status", p.Status, "media", p.MediaUploaded, "of", p.MediaTotal)
		})),
	})

	result, err := saga.AuthorEvent(ctx, blocks, meta)
	if err != nil {
		if result != nil {
			slog.Error("run left partial state", "run_id", result.RunID, "event_id", result.EventID,
				"marker", result.Marker, "uploaded", len(result.Uploaded))
		}
		logging.Fatalf("Authoring failed: %v", err)
	}

	fmt.Printf("created event %d (run %s)\n", result.EventID, result.RunID)
	for _, cid := range result.Unresolved {
		fmt.Printf("warning: image %s was uploaded but its URL was not found\n", cid)
	}
}

// previewDescription renders with placeholder URLs so the layout can be
// checked before anything is uploaded.
func previewDescription(blocks []authoring.ContentBlock) string {
	urls := make(map[string]string)
	for i := range blocks {
		if blocks[i].Kind != authoring.BlockImage || blocks[i].File == nil {
			continue
		}
		if blocks[i].CorrelationID == "" {
			blocks[i].CorrelationID = authoring.NewCorrelationID()
		}
		urls[blocks[i].CorrelationID] = "preview/" + blocks[i].File.Name
	}
	return authoring.RenderDescription(blocks, urls, "")
}

func listDangling(ctx context.Context, runs repository.RunRepository) {
	list, err := runs.ListRuns(ctx, repository.Filter{Dangling: true})
	if err != nil {
		logging.Fatalf("Failed to list runs: %v", err)
	}
	if len(list) == 0 {
		fmt.Println("no dangling runs")
		return
	}
	for _, r := range list {
		fmt.Printf("%s  event=%d  step=%s  marker=%s  %s\n",
			r.StartedAt.Format("2006-01-02 15:04"), r.EventID, r.Step, r.Marker, r.Error)
	}
}
