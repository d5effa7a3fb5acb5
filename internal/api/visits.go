package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/histotrails/internal/models"
)

type trackVisitRequest struct {
	VisitorID string `json:"visitorId" binding:"omitempty,max=64"`
}

// trackVisit forwards a visit. Visitors without an id get a new one, which
// the caller is expected to keep for later visits.
func (h *Handler) trackVisit(c *gin.Context) {
	var req trackVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if req.VisitorID == "" {
		req.VisitorID = uuid.NewString()
	}

	if err := h.backend.TrackVisit(c.Request.Context(), req.VisitorID); err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visitorId": req.VisitorID})
}

func (h *Handler) visitStats(c *gin.Context) {
	g := models.Granularity(c.DefaultQuery("granularity", string(models.GranularityDay)))
	if !g.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "granularity must be day, week, month or year"})
		return
	}

	stats, err := callerFrom(c).Backend.VisitStats(c.Request.Context(), g)
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"granularity": g, "stats": stats})
}
