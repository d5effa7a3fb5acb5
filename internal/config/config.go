package config

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Map       MapConfig
	Catalog   CatalogConfig
	Authoring AuthoringConfig
	DB        DatabaseConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
	AllowOrigins []string
}

type BackendConfig struct {
	URL          string // base URL of the REST API, always ends with "/"
	MediaBaseURL string // prefix joined with media URLs returned by the API
	Timeout      time.Duration
	Email        string
	Password     string

	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

type MapConfig struct {
	North           float64
	South           float64
	West            float64
	East            float64
	DefaultLanguage string
}

type CatalogConfig struct {
	Enabled      bool
	PollInterval time.Duration
}

type AuthoringConfig struct {
	UploadConcurrency int
	MaxUploadBytes    int64
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 20),
			AllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		Backend: BackendConfig{
			URL:                withTrailingSlash(getEnv("BACKEND_URL", "http://localhost:3000/")),
			MediaBaseURL:       getEnv("MEDIA_BASE_URL", "http://localhost:3000"),
			Timeout:            getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
			Email:              getEnv("BACKEND_EMAIL", ""),
			Password:           getEnv("BACKEND_PASSWORD", ""),
			BreakerMaxFailures: uint32(getEnvInt("BREAKER_MAX_FAILURES", 5)),
			BreakerTimeout:     getEnvDuration("BREAKER_TIMEOUT", 30*time.Second),
		},
		Map: MapConfig{
			North:           getEnvFloat("MAP_NORTH", 60),
			South:           getEnvFloat("MAP_SOUTH", 25),
			West:            getEnvFloat("MAP_WEST", -10),
			East:            getEnvFloat("MAP_EAST", 65),
			DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		},
		Catalog: CatalogConfig{
			Enabled:      getEnvBool("CATALOG_ENABLED", true),
			PollInterval: getEnvDuration("CATALOG_POLL_INTERVAL", 5*time.Minute),
		},
		Authoring: AuthoringConfig{
			UploadConcurrency: getEnvInt("UPLOAD_CONCURRENCY", 1),
			MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", 32<<20)),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/histotrails.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s")
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend url: %q", c.Backend.URL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}

	for _, v := range []float64{c.Map.North, c.Map.South, c.Map.West, c.Map.East} {
		if math.IsInf(v, 0) {
			return fmt.Errorf("map bounds must be finite, got %g", v)
		}
	}
	// negated so NaN fails too
	if !(c.Map.North > c.Map.South) {
		return fmt.Errorf("map north (%g) must be greater than south (%g)", c.Map.North, c.Map.South)
	}
	if !(c.Map.East > c.Map.West) {
		return fmt.Errorf("map east (%g) must be greater than west (%g)", c.Map.East, c.Map.West)
	}

	if c.Catalog.Enabled && c.Catalog.PollInterval < 10*time.Second {
		return fmt.Errorf("catalog poll interval must be at least 10 seconds")
	}
	if c.Authoring.UploadConcurrency < 1 {
		return fmt.Errorf("upload concurrency must be at least 1")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

func withTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
