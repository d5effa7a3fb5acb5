// Package backend is a typed client for the HistoTrails REST API.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mr1hm/histotrails/internal/config"
	"github.com/mr1hm/histotrails/internal/metrics"
)

const refreshPath = "auth/refresh"

// TokenSource supplies bearer tokens. AccessToken returns "" for anonymous
// callers. Refresh is called at most once per request, after a 401.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*response]
	tokens  TokenSource
}

type response struct {
	status int
	body   []byte
}

// rawBody receives the undecoded response for endpoints whose body is
// advisory and not always JSON.
type rawBody []byte

type payload struct {
	contentType string
	data        []byte
}

func NewClient(cfg config.BackendConfig) *Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &Client{
		baseURL: cfg.URL,
		http:    &http.Client{Timeout: cfg.Timeout, Transport: tr},
		breaker: newBreaker("histotrails-api", cfg.BreakerMaxFailures, cfg.BreakerTimeout),
	}
}

// WithTokens returns a client sharing the connection pool and circuit breaker
// that authorizes every request with ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

func newBreaker(name string, maxFailures uint32, timeout time.Duration) *gobreaker.CircuitBreaker[*response] {
	if maxFailures == 0 {
		maxFailures = 5
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// 4xx answers mean the backend is healthy and simply said no.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func jsonPayload(v any) (*payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding request body: %w", err)
	}
	return &payload{contentType: "application/json", data: data}, nil
}

// do sends one request, refreshing the token and retrying once on 401.
// route is the path template used as a metrics label.
func (c *Client) do(ctx context.Context, method, route, path string, body *payload, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, route, path, body, token)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized &&
		c.tokens != nil && token != "" && !strings.HasPrefix(path, refreshPath) {
		newToken, rerr := c.tokens.Refresh(ctx)
		if rerr != nil {
			metrics.BackendTokenRefreshes.WithLabelValues("failure").Inc()
			// keep the 401 reachable so callers can tell a rejected token apart
			return fmt.Errorf("error refreshing token after %s %s: %w: %w", method, path, rerr, err)
		}
		metrics.BackendTokenRefreshes.WithLabelValues("success").Inc()
		resp, err = c.send(ctx, method, route, path, body, newToken)
	}
	if err != nil {
		return err
	}

	if rb, ok := out.(*rawBody); ok {
		*rb = append((*rb)[:0], resp.body...)
		return nil
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("error decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting access token: %w", err)
	}
	return token, nil
}

func (c *Client) send(ctx context.Context, method, route, path string, body *payload, token string) (*response, error) {
	start := time.Now()

	resp, err := c.breaker.Execute(func() (*response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body.data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", body.contentType)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		httpResp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error doing %s %s: %w", method, path, err)
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading %s %s response: %w", method, path, err)
		}

		if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
			return nil, newAPIError(method, path, httpResp.StatusCode, data)
		}
		return &response{status: httpResp.StatusCode, body: data}, nil
	})

	metrics.BackendRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	metrics.BackendRequests.WithLabelValues(method, route, statusLabel(resp, err)).Inc()

	return resp, err
}

func statusLabel(resp *response, err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return strconv.Itoa(apiErr.StatusCode)
	case err != nil:
		return "error"
	default:
		return strconv.Itoa(resp.status)
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
