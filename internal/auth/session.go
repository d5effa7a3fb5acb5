// Package auth holds the caller's authentication state and hands bearer
// tokens to the backend client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/mr1hm/histotrails/internal/backend"
	"github.com/mr1hm/histotrails/internal/models"
)

type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

const refreshTimeout = 15 * time.Second

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoRefreshToken     = errors.New("no refresh token available")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// API is the subset of the REST client the session talks to.
type API interface {
	Login(ctx context.Context, email, password string) (backend.Tokens, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// TokenStore persists tokens between process restarts.
type TokenStore interface {
	LoadTokens(ctx context.Context) (backend.Tokens, error)
	SaveTokens(ctx context.Context, t backend.Tokens) error
	ClearTokens(ctx context.Context) error
}

// Session moves between anonymous, authenticated and refreshing. A refresh
// the backend rejects ends anonymous unless the session can log in again.
type Session struct {
	api   API
	store TokenStore
	skew  time.Duration
	now   func() time.Time

	mu       sync.RWMutex
	state    State
	tokens   backend.Tokens
	email    string
	password string

	refreshGroup singleflight.Group
}

func NewSession(api API, store TokenStore) *Session {
	return &Session{
		api:   api,
		store: store,
		skew:  30 * time.Second,
		now:   time.Now,
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Restore loads persisted tokens. A missing store or empty tokens leave the
// session anonymous.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	tokens, err := s.store.LoadTokens(ctx)
	if err != nil {
		return fmt.Errorf("error loading tokens: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil
	}

	s.mu.Lock()
	s.tokens = tokens
	s.state = StateAuthenticated
	s.mu.Unlock()
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	tokens, err := s.api.Login(ctx, email, password)
	if err != nil {
		if backend.IsStatus(err, http.StatusUnauthorized) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("error logging in: %w", err)
	}

	s.mu.Lock()
	s.tokens = tokens
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.persist(ctx, tokens)
	slog.Info("session authenticated", "email", email)
	return nil
}

func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.tokens = backend.Tokens{}
	s.state = StateAnonymous
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.ClearTokens(ctx); err != nil {
			slog.Warn("error clearing stored tokens", "error", err)
		}
	}
}

// AccessToken returns the current token, refreshing first when it expires
// within the skew window. Anonymous sessions get "".
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	state, tokens := s.state, s.tokens
	s.mu.RUnlock()

	if state == StateAnonymous {
		return "", nil
	}

	exp, ok := ExpiresAt(tokens.AccessToken)
	if !ok || tokens.RefreshToken == "" || !s.now().Add(s.skew).After(exp) {
		return tokens.AccessToken, nil
	}

	access, err := s.Refresh(ctx)
	if err != nil && s.now().Before(exp) && s.State() != StateAnonymous {
		// still valid for a moment, the next call retries the refresh
		slog.Warn("early token refresh failed", "error", err)
		return tokens.AccessToken, nil
	}
	return access, err
}

// Refresh exchanges the refresh token for a new access token. Concurrent
// callers share one request, which is detached from the caller that started
// it. Only a rejection by the backend ends the session; with credentials
// configured the session logs in again instead.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	v, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return s.refresh(rctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Session) refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.state == StateAnonymous {
		s.mu.Unlock()
		return "", ErrNotAuthenticated
	}
	refreshToken := s.tokens.RefreshToken
	s.state = StateRefreshing
	s.mu.Unlock()

	if refreshToken == "" {
		return s.relogin(ctx, ErrNoRefreshToken)
	}

	access, err := s.api.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		err = fmt.Errorf("error refreshing access token: %w", err)
		if rejected(err) {
			return s.relogin(ctx, err)
		}
		// tokens are kept for the next attempt
		s.setState(StateAuthenticated)
		return "", err
	}

	s.mu.Lock()
	s.tokens.AccessToken = access
	s.state = StateAuthenticated
	tokens := s.tokens
	s.mu.Unlock()

	s.persist(ctx, tokens)
	return access, nil
}

// relogin replaces tokens the backend no longer accepts.
func (s *Session) relogin(ctx context.Context, cause error) (string, error) {
	s.mu.RLock()
	email, password := s.email, s.password
	s.mu.RUnlock()

	if email == "" {
		slog.Warn("token refresh rejected, session is now anonymous", "error", cause)
		s.Logout(ctx)
		return "", cause
	}

	slog.Info("token refresh rejected, logging in again", "error", cause)
	if err := s.Login(ctx, email, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.Logout(ctx)
		} else {
			s.setState(StateAuthenticated)
		}
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.AccessToken, nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func rejected(err error) bool {
	return backend.IsStatus(err, http.StatusUnauthorized) || backend.IsStatus(err, http.StatusForbidden)
}

func (s *Session) persist(ctx context.Context, tokens backend.Tokens) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveTokens(ctx, tokens); err != nil {
		slog.Warn("error persisting tokens", "error", err)
	}
}

// ExpiresAt reads the exp claim without verifying the signature; the token
// is only inspected to schedule refreshes, the backend does the verifying.
func ExpiresAt(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Profile fetches the current user with an authorized client.
func Profile(ctx context.Context, s *Session, client *backend.Client) (*models.User, error) {
	if s.State() == StateAnonymous {
		return nil, ErrNotAuthenticated
	}
	user, err := client.WithTokens(s).Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}
	return user, nil
}

// Start restores a saved session and falls back to logging in with email and
// password. The credentials are kept for logging in again once the refresh
// token stops working. Without credentials the session may stay anonymous.
func (s *Session) Start(ctx context.Context, email, password string) error {
	s.mu.Lock()
	s.email, s.password = email, password
	s.mu.Unlock()

	if err := s.Restore(ctx); err != nil {
		return err
	}
	if s.State() != StateAnonymous || email == "" {
		return nil
	}
	return s.Login(ctx, email, password)
}
