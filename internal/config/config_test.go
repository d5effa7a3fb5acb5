package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Map.North != 60 || cfg.Map.South != 25 || cfg.Map.West != -10 || cfg.Map.East != 65 {
		t.Errorf("unexpected default map bounds: %+v", cfg.Map)
	}
	if cfg.Authoring.UploadConcurrency != 1 {
		t.Errorf("expected sequential uploads by default, got %d", cfg.Authoring.UploadConcurrency)
	}
	if cfg.Backend.URL != "http://localhost:3000/" {
		t.Errorf("unexpected backend url %q", cfg.Backend.URL)
	}
}

func TestLoad_BackendURLGetsTrailingSlash(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://api.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.URL != "https://api.example.com/" {
		t.Errorf("expected trailing slash, got %q", cfg.Backend.URL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CATALOG_POLL_INTERVAL", "1m")
	t.Setenv("UPLOAD_CONCURRENCY", "4")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Catalog.PollInterval != time.Minute {
		t.Errorf("expected 1m poll interval, got %s", cfg.Catalog.PollInterval)
	}
	if cfg.Authoring.UploadConcurrency != 4 {
		t.Errorf("expected upload concurrency 4, got %d", cfg.Authoring.UploadConcurrency)
	}
	if len(cfg.Server.AllowOrigins) != 2 || cfg.Server.AllowOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.Server.AllowOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"degenerate latitude span", "MAP_SOUTH", "60"},
		{"inverted longitude span", "MAP_WEST", "90"},
		{"NaN north", "MAP_NORTH", "NaN"},
		{"NaN east", "MAP_EAST", "NaN"},
		{"infinite south", "MAP_SOUTH", "-Inf"},
		{"poll interval too short", "CATALOG_POLL_INTERVAL", "1s"},
		{"zero upload concurrency", "UPLOAD_CONCURRENCY", "0"},
		{"relative backend url", "BACKEND_URL", "api/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}
