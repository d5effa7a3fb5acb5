package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/histotrails/internal/models"
)

type timePeriodRequest struct {
	Name               string  `json:"name" binding:"required,max=255"`
	StartYear          *string `json:"startYear" binding:"omitempty,max=32"`
	EndYear            *string `json:"endYear" binding:"omitempty,max=32"`
	ParentTimePeriodID *int    `json:"parentTimePeriodId" binding:"omitempty,gt=0"`
	Description        *string `json:"description"`
}

func (r timePeriodRequest) period() models.NewTimePeriod {
	return models.NewTimePeriod{
		Name:               r.Name,
		StartYear:          r.StartYear,
		EndYear:            r.EndYear,
		ParentTimePeriodID: r.ParentTimePeriodID,
		Description:        r.Description,
	}
}

type periodTranslationRequest struct {
	Language    string  `json:"language" binding:"required,max=8"`
	Name        string  `json:"name" binding:"required,max=255"`
	StartYear   *string `json:"startYear" binding:"omitempty,max=32"`
	EndYear     *string `json:"endYear" binding:"omitempty,max=32"`
	Description *string `json:"description"`
}

// listTimePeriods returns the flat list, unlike the map which reads the tree
// from the catalog.
func (h *Handler) listTimePeriods(c *gin.Context) {
	periods, err := callerFrom(c).Backend.ListTimePeriods(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}
	if periods == nil {
		periods = []models.TimePeriod{}
	}
	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

func (h *Handler) getTimePeriod(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	period, err := callerFrom(c).Backend.GetTimePeriod(c.Request.Context(), id)
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

func (h *Handler) createTimePeriod(c *gin.Context) {
	var req timePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := callerFrom(c).Backend.CreateTimePeriod(c.Request.Context(), req.period()); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusCreated)
}

func (h *Handler) updateTimePeriod(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req timePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.ParentTimePeriodID != nil && *req.ParentTimePeriodID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a period cannot be its own parent"})
		return
	}

	if err := callerFrom(c).Backend.UpdateTimePeriod(c.Request.Context(), id, req.period()); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteTimePeriod(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := callerFrom(c).Backend.DeleteTimePeriod(c.Request.Context(), id); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *Handler) addTimePeriodTranslation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req periodTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t := models.TimePeriodTranslation{
		Language:    req.Language,
		Name:        req.Name,
		StartYear:   req.StartYear,
		EndYear:     req.EndYear,
		Description: req.Description,
	}
	if err := callerFrom(c).Backend.AddTimePeriodTranslation(c.Request.Context(), id, t); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusCreated)
}
