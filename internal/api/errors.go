package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/histotrails/internal/backend"
)

// upstreamError answers with the backend's own 4xx status, 503 while the
// circuit is open and 502 otherwise.
func upstreamError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusBadGateway
	var apiErr *backend.APIError
	switch {
	case backend.IsUnavailable(err):
		status = http.StatusServiceUnavailable
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		status = apiErr.StatusCode
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
