package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogger_LogsServerErrors(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)
	SetupWriter(&buf, "info")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})
	router.GET("/ok", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	if buf.Len() != 0 {
		t.Fatalf("expected successful request to be logged at debug only, got %s", buf.String())
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("failed to parse log line %q: %v", buf.String(), err)
	}
	if line["level"] != "ERROR" {
		t.Errorf("expected ERROR level, got %v", line["level"])
	}
	if line["path"] != "/boom" {
		t.Errorf("expected path /boom, got %v", line["path"])
	}
	if line["service"] != "histotrails" {
		t.Errorf("expected service attribute, got %v", line["service"])
	}
}
