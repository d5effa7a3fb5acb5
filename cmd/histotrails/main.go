package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/histotrails/internal/api"
	"github.com/mr1hm/histotrails/internal/auth"
	"github.com/mr1hm/histotrails/internal/authoring"
	"github.com/mr1hm/histotrails/internal/backend"
	"github.com/mr1hm/histotrails/internal/catalog"
	"github.com/mr1hm/histotrails/internal/config"
	"github.com/mr1hm/histotrails/internal/geo"
	"github.com/mr1hm/histotrails/internal/logging"
	"github.com/mr1hm/histotrails/internal/progress"
	"github.com/mr1hm/histotrails/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "backend", cfg.Backend.URL)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := backend.NewClient(cfg.Backend)
	session := auth.NewSession(client, db)
	if err := session.Start(ctx, cfg.Backend.Email, cfg.Backend.Password); err != nil {
		// public map data still works anonymously
		slog.Warn("backend login failed, continuing anonymously", "error", err)
	}
	authed := client.WithTokens(session)

	// the service account only reads; admin routes act with the caller's token
	if user, err := auth.Profile(ctx, session, client); err == nil {
		slog.Info("authenticated", "user", user.Username, "role", user.Role)
	}

	bounds, err := geo.NewBounds(cfg.Map.North, cfg.Map.South, cfg.Map.West, cfg.Map.East)
	if err != nil {
		logging.Fatalf("Invalid map bounds: %v", err)
	}

	// Start catalog poller
	cat := catalog.NewManager(cfg.Catalog, authed)
	cat.Start(ctx)

	broadcaster := progress.NewBroadcaster()
	saga := authoring.NewSaga(client, authoring.Options{
		MediaBaseURL:      cfg.Backend.MediaBaseURL,
		UploadConcurrency: cfg.Authoring.UploadConcurrency,
		Observer:          authoring.Observers(repository.NewJournal(db), broadcaster),
	})

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(api.Deps{
		Backend:         authed,
		Catalog:         cat,
		Authorizer:      api.NewBackendAuthorizer(client, saga),
		Runs:            db,
		Broadcaster:     broadcaster,
		Bounds:          bounds,
		DefaultLanguage: cfg.Map.DefaultLanguage,
		MaxUploadBytes:  cfg.Authoring.MaxUploadBytes,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	cat.Stop()
	broadcaster.Close() // ends open progress streams

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
