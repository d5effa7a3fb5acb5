package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/histotrails/internal/geo"
)

type viewportQuery struct {
	Width  float64 `form:"width" binding:"required,gt=0"`
	Height float64 `form:"height" binding:"required,gt=0"`
}

func (q viewportQuery) viewport() geo.Viewport {
	return geo.Viewport{Width: q.Width, Height: q.Height}
}

type pixelQuery struct {
	viewportQuery
	Lat *float64 `form:"lat" binding:"required"`
	Lon *float64 `form:"lon" binding:"required"`
}

type coordsQuery struct {
	viewportQuery
	X *float64 `form:"x" binding:"required"`
	Y *float64 `form:"y" binding:"required"`
}

func (h *Handler) toPixel(c *gin.Context) {
	var q pixelQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	pt, err := geo.ToPixel(*q.Lat, *q.Lon, q.viewport(), h.bounds)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"x":      pt.X,
		"y":      pt.Y,
		"inside": h.bounds.Contains(*q.Lat, *q.Lon),
	})
}

func (h *Handler) toCoords(c *gin.Context) {
	var q coordsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	coords, err := geo.ToGeo(*q.X, *q.Y, q.viewport(), h.bounds)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, coords)
}
