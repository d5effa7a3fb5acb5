package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/mr1hm/histotrails/internal/models"
)

func (c *Client) TrackVisit(ctx context.Context, visitorID string) error {
	body, err := jsonPayload(map[string]string{"visitorId": visitorID})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/visits/track", "api/visits/track", body, nil)
}

// VisitStats returns visit aggregates oldest first. The API sends them newest first.
func (c *Client) VisitStats(ctx context.Context, g models.Granularity) ([]models.VisitStatus, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid granularity: %q", g)
	}

	var stats []models.VisitStatus
	path := withQuery("api/visits/stats", url.Values{"granularity": {string(g)}})
	if err := c.do(ctx, http.MethodGet, "/api/visits/stats", path, nil, &stats); err != nil {
		return nil, err
	}
	slices.Reverse(stats)
	return stats, nil
}
