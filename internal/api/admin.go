package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/histotrails/internal/auth"
	"github.com/mr1hm/histotrails/internal/authoring"
	"github.com/mr1hm/histotrails/internal/backend"
	"github.com/mr1hm/histotrails/internal/models"
)

const callerKey = "caller"

var ErrForbidden = errors.New("admin role required")

// AdminBackend is what an admin may do against the REST API. Every call is
// made with the admin's own token.
type AdminBackend interface {
	CreateLocation(ctx context.Context, loc models.Location) (*models.Location, error)
	UpdateLocation(ctx context.Context, id int, loc models.Location) error
	DeleteLocation(ctx context.Context, id int) error

	GetEvent(ctx context.Context, id int) (*models.Event, error)
	UpdateEvent(ctx context.Context, id int, patch models.EventPatch) error
	DeleteEvent(ctx context.Context, id int) error
	SetEventPremium(ctx context.Context, id int, premium bool) error
	SetAllPremium(ctx context.Context, premium bool) error
	AddEventTranslation(ctx context.Context, eventID int, t models.EventTranslation) error
	ListEventMedia(ctx context.Context, eventID int) ([]models.Media, error)
	DeleteMedia(ctx context.Context, id int) error

	ListTimePeriods(ctx context.Context) ([]models.TimePeriod, error)
	GetTimePeriod(ctx context.Context, id int) (*models.TimePeriod, error)
	CreateTimePeriod(ctx context.Context, p models.NewTimePeriod) error
	UpdateTimePeriod(ctx context.Context, id int, p models.NewTimePeriod) error
	DeleteTimePeriod(ctx context.Context, id int) error
	AddTimePeriodTranslation(ctx context.Context, periodID int, t models.TimePeriodTranslation) error

	ListUsers(ctx context.Context, f backend.UserFilter) (*models.UserPage, error)
	ToggleUserRole(ctx context.Context, id int) (*models.User, error)
	RemoveUser(ctx context.Context, id int) error

	VisitStats(ctx context.Context, g models.Granularity) ([]models.VisitStatus, error)
}

// Caller is an authenticated admin together with a backend and a saga acting
// on their behalf.
type Caller struct {
	User    *models.User
	Backend AdminBackend
	Author  Author
}

type Authorizer interface {
	Authorize(ctx context.Context, token string) (*Caller, error)
}

// BackendAuthorizer asks the REST API who a token belongs to and only lets
// admins through.
type BackendAuthorizer struct {
	client *backend.Client
	saga   *authoring.Saga
}

func NewBackendAuthorizer(client *backend.Client, saga *authoring.Saga) *BackendAuthorizer {
	return &BackendAuthorizer{client: client, saga: saga}
}

func (a *BackendAuthorizer) Authorize(ctx context.Context, token string) (*Caller, error) {
	scoped := a.client.WithTokens(auth.Bearer(token))
	user, err := scoped.Me(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, ErrForbidden
	}
	return &Caller{User: user, Backend: scoped, Author: a.saga.WithBackend(scoped)}, nil
}

// requireAdmin rejects requests without a bearer token of an ADMIN user.
func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "missing bearer token")
			return
		}

		caller, err := h.authz.Authorize(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, ErrForbidden), backend.IsStatus(err, http.StatusForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrForbidden.Error()})
			return
		case backend.IsStatus(err, http.StatusUnauthorized):
			unauthorized(c, "invalid or expired token")
			return
		default:
			upstreamError(c, err)
			c.Abort()
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="histotrails"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func callerFrom(c *gin.Context) *Caller {
	return c.MustGet(callerKey).(*Caller)
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
