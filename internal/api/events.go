package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/histotrails/internal/models"
)

type premiumRequest struct {
	Premium *bool `json:"premium" binding:"required"`
}

type eventTranslationRequest struct {
	Language    string `json:"language" binding:"required,max=8"`
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Year        string `json:"year" binding:"max=32"`
}

func (h *Handler) getEvent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	event, err := callerFrom(c).Backend.GetEvent(c.Request.Context(), id)
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *Handler) updateEvent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch models.EventPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	if patch == (models.EventPatch{}) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if err := callerFrom(c).Backend.UpdateEvent(c.Request.Context(), id, patch); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteEvent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := callerFrom(c).Backend.DeleteEvent(c.Request.Context(), id); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *Handler) setEventPremium(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req premiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := callerFrom(c).Backend.SetEventPremium(c.Request.Context(), id, *req.Premium); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *Handler) setAllPremium(c *gin.Context) {
	var req premiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := callerFrom(c).Backend.SetAllPremium(c.Request.Context(), *req.Premium); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *Handler) addEventTranslation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req eventTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t := models.EventTranslation{
		Language:    req.Language,
		Title:       req.Title,
		Description: req.Description,
		Year:        req.Year,
	}
	if err := callerFrom(c).Backend.AddEventTranslation(c.Request.Context(), id, t); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusCreated)
}

func (h *Handler) listEventMedia(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	media, err := callerFrom(c).Backend.ListEventMedia(c.Request.Context(), id)
	if err != nil {
		upstreamError(c, err)
		return
	}
	if media == nil {
		media = []models.Media{}
	}
	c.JSON(http.StatusOK, gin.H{"media": media})
}

// deleteMedia removes one attachment. Figures in the event description that
// point at it are left as they are.
func (h *Handler) deleteMedia(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := callerFrom(c).Backend.DeleteMedia(c.Request.Context(), id); err != nil {
		upstreamError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
