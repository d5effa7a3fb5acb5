package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/histotrails/internal/mapview"
	"github.com/mr1hm/histotrails/internal/models"
)

func (h *Handler) language(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return lang
	}
	return h.defaultLanguage
}

func (h *Handler) periods(c *gin.Context) ([]models.TimePeriod, bool) {
	snap, err := h.catalog.Snapshot(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "reference data unavailable"})
		return nil, false
	}
	return mapview.Translate(snap.Periods, h.language(c)), true
}

func (h *Handler) getPeriods(c *gin.Context) {
	periods, ok := h.periods(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": mapview.PeriodOptions(periods)})
}

type markersQuery struct {
	viewportQuery
	PeriodID int    `form:"period_id" binding:"omitempty,gt=0"`
	Type     string `form:"type"`
}

func (h *Handler) getMarkers(c *gin.Context) {
	var q markersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	periods, ok := h.periods(c)
	if !ok {
		return
	}

	// without a period the first root is shown, like the map page does
	var period *models.TimePeriod
	switch {
	case q.PeriodID > 0:
		period = mapview.FindPeriod(periods, q.PeriodID)
	case len(periods) > 0:
		period = &periods[0]
	}
	if period == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "time period not found"})
		return
	}

	events := mapview.CollectEvents(period)
	available := mapview.AvailableTypes(events)
	selected := models.EventTypeName(q.Type)
	if selected == "" {
		selected = models.EventTypeEvent
	}
	selected = mapview.EffectiveType(selected, available)

	markers, err := mapview.Place(events, selected, q.viewport(), h.bounds)
	if err != nil {
		badRequest(c, err)
		return
	}

	fc := toGeoJSON(markers)
	fc.EventTypes = available
	fc.SelectedType = selected
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}
