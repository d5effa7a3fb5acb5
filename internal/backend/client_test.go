package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mr1hm/histotrails/internal/config"
	"github.com/mr1hm/histotrails/internal/models"
)

// fakeTokens implements TokenSource for testing
type fakeTokens struct {
	mu        sync.Mutex
	token     string
	refreshed string
	refreshes int
	failWith  error
}

func (f *fakeTokens) AccessToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeTokens) Refresh(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.failWith != nil {
		return "", f.failWith
	}
	f.token = f.refreshed
	return f.token, nil
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.BackendConfig{
		URL:                srv.URL + "/",
		Timeout:            5 * time.Second,
		BreakerMaxFailures: 3,
		BreakerTimeout:     time.Minute,
	})
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"locationId":1,"name":"Vienna","latitude":"48.2","longitude":"16.37"}]`))
	})).WithTokens(&fakeTokens{token: "abc"})

	locations, err := client.ListLocations(context.Background())
	if err != nil {
		t.Fatalf("ListLocations failed: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if len(locations) != 1 || locations[0].Name != "Vienna" {
		t.Errorf("unexpected locations: %+v", locations)
	}
}

func TestClient_AnonymousSendsNoAuthorization(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))

	if _, err := client.ListEventTypes(context.Background()); err != nil {
		t.Fatalf("ListEventTypes failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no authorization header, got %q", gotAuth)
	}
}

func TestClient_RefreshesOnceOn401(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"token expired"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	tokens := &fakeTokens{token: "stale", refreshed: "fresh"}
	client = client.WithTokens(tokens)

	if err := client.DeleteMedia(context.Background(), 7); err != nil {
		t.Fatalf("DeleteMedia failed: %v", err)
	}
	if tokens.refreshes != 1 {
		t.Errorf("expected 1 refresh, got %d", tokens.refreshes)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls (original + retry), got %d", calls)
	}
}

func TestClient_RefreshFailureSurfaces(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	refreshErr := errors.New("refresh rejected")
	client = client.WithTokens(&fakeTokens{token: "stale", failWith: refreshErr})

	err := client.DeleteEvent(context.Background(), 1)
	if !errors.Is(err, refreshErr) {
		t.Fatalf("expected refresh error, got %v", err)
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("expected the original 401 to stay visible, got %v", err)
	}
}

func TestClient_NeverRefreshesTheRefreshCall(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	tokens := &fakeTokens{token: "stale", refreshed: "fresh"}
	client = client.WithTokens(tokens)

	_, err := client.RefreshAccessToken(context.Background(), "refresh-token")
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if tokens.refreshes != 0 {
		t.Errorf("expected no refresh attempts, got %d", tokens.refreshes)
	}
}

func TestClient_APIErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string message", `{"message":"title is required"}`, "title is required"},
		{"list message", `{"message":["title is required","year must be a string"]}`, "title is required; year must be a string"},
		{"no message", `not json`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))

			_, err := client.CreateEvent(context.Background(), models.NewEvent{Title: "x"})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", apiErr.StatusCode)
			}
			if apiErr.Message != tt.want {
				t.Errorf("expected message %q, got %q", tt.want, apiErr.Message)
			}
		})
	}
}

func TestClient_CreateEventID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"plain text", `Event created`, 0},
		{"empty", ``, 0},
		{"top level id", `{"eventId":42,"title":"Kosovo"}`, 42},
		{"data envelope", `{"status":"ok","data":{"eventId":17}}`, 17},
		{"message only", `{"status":"ok","message":"created"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.NewEvent
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(tt.body))
			}))

			id, err := client.CreateEvent(context.Background(), models.NewEvent{Title: "Battle of Kosovo", Description: "marker"})
			if err != nil {
				t.Fatalf("CreateEvent failed: %v", err)
			}
			if id != tt.want {
				t.Errorf("expected id %d, got %d", tt.want, id)
			}
			if got.Title != "Battle of Kosovo" || got.Description != "marker" {
				t.Errorf("unexpected request body: %+v", got)
			}
		})
	}
}

func TestClient_UploadMedia(t *testing.T) {
	var fields map[string]string
	var fileContent string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm failed: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fields = map[string]string{
			"mediaType":   r.FormValue("mediaType"),
			"eventId":     r.FormValue("eventId"),
			"description": r.FormValue("description"),
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile failed: %v", err)
			return
		}
		data, _ := io.ReadAll(f)
		fileContent = string(data)
		w.Write([]byte(`{"mediaId":3,"eventId":9,"mediaType":"image","url":"/uploads/a.png","description":"map [cid:abc]"}`))
	}))

	media, err := client.UploadMedia(context.Background(), MediaUpload{
		EventID:     9,
		Description: "map [cid:abc]",
		FileName:    "a.png",
		Content:     strings.NewReader("PNGDATA"),
	})
	if err != nil {
		t.Fatalf("UploadMedia failed: %v", err)
	}
	if fields["mediaType"] != "image" || fields["eventId"] != "9" || fields["description"] != "map [cid:abc]" {
		t.Errorf("unexpected form fields: %v", fields)
	}
	if fileContent != "PNGDATA" {
		t.Errorf("unexpected file content %q", fileContent)
	}
	if media == nil || media.URL != "/uploads/a.png" {
		t.Errorf("expected decoded media, got %+v", media)
	}
}

func TestClient_UploadMediaWithoutRecord(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`Media uploaded`))
	}))

	media, err := client.UploadMedia(context.Background(), MediaUpload{EventID: 1, Content: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("UploadMedia failed: %v", err)
	}
	if media != nil {
		t.Errorf("expected nil media, got %+v", media)
	}
}

func TestClient_VisitStatsOldestFirst(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("granularity")
		w.Write([]byte(`[{"periodKey":"2026-10-03"},{"periodKey":"2026-10-02"},{"periodKey":"2026-10-01"}]`))
	}))

	stats, err := client.VisitStats(context.Background(), models.GranularityDay)
	if err != nil {
		t.Fatalf("VisitStats failed: %v", err)
	}
	if gotQuery != "day" {
		t.Errorf("expected granularity=day, got %q", gotQuery)
	}
	if len(stats) != 3 || stats[0].PeriodKey != "2026-10-01" || stats[2].PeriodKey != "2026-10-03" {
		t.Errorf("expected oldest first, got %+v", stats)
	}

	if _, err := client.VisitStats(context.Background(), "hour"); err == nil {
		t.Error("expected error for invalid granularity")
	}
}

func TestClient_ListUsersQuery(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{"page": q.Get("page"), "limit": q.Get("limit"), "role": q.Get("role"), "isPremium": q.Get("isPremium")}
		w.Write([]byte(`{"data":[{"userId":1,"username":"ana","role":"ADMIN"}],"meta":{"total":1,"page":1,"lastPage":1}}`))
	}))

	premium := true
	page, err := client.ListUsers(context.Background(), UserFilter{Role: models.RoleAdmin, IsPremium: &premium})
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if got["page"] != "1" || got["limit"] != "10" || got["role"] != "ADMIN" || got["isPremium"] != "true" {
		t.Errorf("unexpected query: %v", got)
	}
	if len(page.Users) != 1 || !page.Users[0].IsAdmin() || page.Meta.Total != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	for i := 0; i < 3; i++ {
		if _, err := client.ListEvents(context.Background()); !IsStatus(err, http.StatusServiceUnavailable) {
			t.Fatalf("call %d: expected 503, got %v", i, err)
		}
	}

	_, err := client.ListEvents(context.Background())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected backend to see 3 calls, got %d", calls)
	}
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for i := 0; i < 5; i++ {
		if _, err := client.GetEvent(context.Background(), 404); !IsNotFound(err) {
			t.Fatalf("call %d: expected 404, got %v", i, err)
		}
	}
}
