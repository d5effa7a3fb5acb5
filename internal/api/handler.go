package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/histotrails/internal/authoring"
	"github.com/mr1hm/histotrails/internal/catalog"
	"github.com/mr1hm/histotrails/internal/geo"
	"github.com/mr1hm/histotrails/internal/progress"
	"github.com/mr1hm/histotrails/internal/repository"
)

// Backend is the part of the REST client used on behalf of anonymous
// visitors. Admin calls go through the caller's own AdminBackend.
type Backend interface {
	TrackVisit(ctx context.Context, visitorID string) error
}

type Catalog interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
	Invalidate()
}

type Author interface {
	AuthorEvent(ctx context.Context, blocks []authoring.ContentBlock, meta authoring.Metadata) (*authoring.Result, error)
}

type Handler struct {
	backend         Backend
	catalog         Catalog
	authz           Authorizer
	runs            repository.RunRepository
	broadcaster     *progress.Broadcaster
	bounds          geo.Bounds
	defaultLanguage string
	maxUploadBytes  int64
}

type Deps struct {
	Backend         Backend
	Catalog         Catalog
	Authorizer      Authorizer
	Runs            repository.RunRepository
	Broadcaster     *progress.Broadcaster
	Bounds          geo.Bounds
	DefaultLanguage string
	MaxUploadBytes  int64
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		backend:         d.Backend,
		catalog:         d.Catalog,
		authz:           d.Authorizer,
		runs:            d.Runs,
		broadcaster:     d.Broadcaster,
		bounds:          d.Bounds,
		defaultLanguage: d.DefaultLanguage,
		maxUploadBytes:  d.MaxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/geo/pixel", h.toPixel)
	api.GET("/geo/coords", h.toCoords)

	api.GET("/map/periods", h.getPeriods)
	api.GET("/map/markers", h.getMarkers)

	api.POST("/visits/track", h.trackVisit)

	admin := api.Group("", h.requireAdmin())

	admin.POST("/locations", h.createLocation)
	admin.PATCH("/locations/:id", h.updateLocation)
	admin.DELETE("/locations/:id", h.deleteLocation)

	admin.POST("/events/author", h.authorEvent)
	admin.GET("/events/:id", h.getEvent)
	admin.PATCH("/events/:id", h.updateEvent)
	admin.DELETE("/events/:id", h.deleteEvent)
	admin.PUT("/events/premium", h.setAllPremium)
	admin.PUT("/events/:id/premium", h.setEventPremium)
	admin.POST("/events/:id/translations", h.addEventTranslation)
	admin.GET("/events/:id/media", h.listEventMedia)
	admin.DELETE("/media/:id", h.deleteMedia)

	admin.GET("/time-periods", h.listTimePeriods)
	admin.GET("/time-periods/:id", h.getTimePeriod)
	admin.POST("/time-periods", h.createTimePeriod)
	admin.PATCH("/time-periods/:id", h.updateTimePeriod)
	admin.DELETE("/time-periods/:id", h.deleteTimePeriod)
	admin.POST("/time-periods/:id/translations", h.addTimePeriodTranslation)

	admin.GET("/users", h.listUsers)
	admin.PATCH("/users/:id/role", h.toggleUserRole)
	admin.DELETE("/users/:id", h.removeUser)

	admin.GET("/visits/stats", h.visitStats)

	admin.GET("/authoring/runs", h.listRuns)
	admin.GET("/authoring/runs/:id", h.getRun)
	admin.GET("/authoring/stream", h.streamProgress)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
