package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/histotrails/internal/geo"
	"github.com/mr1hm/histotrails/internal/models"
)

// createLocationRequest is a click on the rendered map.
type createLocationRequest struct {
	Name   string   `json:"name" binding:"required,max=255"`
	X      *float64 `json:"x" binding:"required,gte=0"`
	Y      *float64 `json:"y" binding:"required,gte=0"`
	Width  float64  `json:"width" binding:"required,gt=0"`
	Height float64  `json:"height" binding:"required,gt=0"`
}

func (h *Handler) createLocation(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if *req.X > req.Width || *req.Y > req.Height {
		c.JSON(http.StatusBadRequest, gin.H{"error": "click is outside the map"})
		return
	}

	coords, err := geo.ToGeo(*req.X, *req.Y, geo.Viewport{Width: req.Width, Height: req.Height}, h.bounds)
	if err != nil {
		badRequest(c, err)
		return
	}

	loc := models.NewLocation(req.Name, models.Coordinates{Latitude: coords.Lat, Longitude: coords.Lon})
	created, err := callerFrom(c).Backend.CreateLocation(c.Request.Context(), loc)
	if err != nil {
		upstreamError(c, err)
		return
	}

	h.catalog.Invalidate()
	c.JSON(http.StatusCreated, created)
}

type updateLocationRequest struct {
	Name      string   `json:"name" binding:"max=255"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
}

// updateLocation renames or moves a location. Omitted fields are kept.
func (h *Handler) updateLocation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Name == "" && req.Latitude == nil && req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	loc := models.Location{Name: req.Name}
	if req.Latitude != nil {
		loc.Latitude = strconv.FormatFloat(*req.Latitude, 'f', -1, 64)
	}
	if req.Longitude != nil {
		loc.Longitude = strconv.FormatFloat(*req.Longitude, 'f', -1, 64)
	}

	if err := callerFrom(c).Backend.UpdateLocation(c.Request.Context(), id, loc); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteLocation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := callerFrom(c).Backend.DeleteLocation(c.Request.Context(), id); err != nil {
		upstreamError(c, err)
		return
	}
	h.catalog.Invalidate()
	c.Status(http.StatusNoContent)
}
