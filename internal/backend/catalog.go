package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mr1hm/histotrails/internal/models"
)

func (c *Client) ListLocations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := c.do(ctx, http.MethodGet, "/api/locations", "api/locations", nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (c *Client) CreateLocation(ctx context.Context, loc models.Location) (*models.Location, error) {
	body, err := jsonPayload(struct {
		Name      string `json:"name"`
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	}{loc.Name, loc.Latitude, loc.Longitude})
	if err != nil {
		return nil, err
	}

	var created models.Location
	if err := c.do(ctx, http.MethodPost, "/api/locations", "api/locations", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateLocation(ctx context.Context, id int, loc models.Location) error {
	body, err := jsonPayload(struct {
		Name      string `json:"name,omitempty"`
		Latitude  string `json:"latitude,omitempty"`
		Longitude string `json:"longitude,omitempty"`
	}{loc.Name, loc.Latitude, loc.Longitude})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/api/locations/{id}", "api/locations/"+strconv.Itoa(id), body, nil)
}

func (c *Client) DeleteLocation(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/locations/{id}", "api/locations/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) ListEventTypes(ctx context.Context) ([]models.EventType, error) {
	var types []models.EventType
	if err := c.do(ctx, http.MethodGet, "/api/event-types", "api/event-types", nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *Client) ListTimePeriods(ctx context.Context) ([]models.TimePeriod, error) {
	var periods []models.TimePeriod
	if err := c.do(ctx, http.MethodGet, "/api/time-periods", "api/time-periods", nil, &periods); err != nil {
		return nil, err
	}
	return periods, nil
}

// TimePeriodRoots returns the top-level periods with children, events,
// locations and translations expanded.
func (c *Client) TimePeriodRoots(ctx context.Context) ([]models.TimePeriod, error) {
	var roots []models.TimePeriod
	if err := c.do(ctx, http.MethodGet, "/api/time-periods/roots", "api/time-periods/roots", nil, &roots); err != nil {
		return nil, err
	}
	return roots, nil
}

func (c *Client) GetTimePeriod(ctx context.Context, id int) (*models.TimePeriod, error) {
	var period models.TimePeriod
	if err := c.do(ctx, http.MethodGet, "/api/time-periods/{id}", "api/time-periods/"+strconv.Itoa(id), nil, &period); err != nil {
		return nil, err
	}
	return &period, nil
}

func (c *Client) CreateTimePeriod(ctx context.Context, p models.NewTimePeriod) error {
	body, err := jsonPayload(p)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/time-periods", "api/time-periods", body, nil)
}

func (c *Client) UpdateTimePeriod(ctx context.Context, id int, p models.NewTimePeriod) error {
	body, err := jsonPayload(p)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/api/time-periods/{id}/update", "api/time-periods/"+strconv.Itoa(id)+"/update", body, nil)
}

func (c *Client) DeleteTimePeriod(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/time-periods/{id}", "api/time-periods/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) AddTimePeriodTranslation(ctx context.Context, periodID int, t models.TimePeriodTranslation) error {
	body, err := jsonPayload(struct {
		Language    string  `json:"language"`
		Name        string  `json:"name"`
		StartYear   *string `json:"startYear,omitempty"`
		EndYear     *string `json:"endYear,omitempty"`
		Description *string `json:"description,omitempty"`
	}{t.Language, t.Name, t.StartYear, t.EndYear, t.Description})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/time-periods/{id}/translation", "api/time-periods/"+strconv.Itoa(periodID)+"/translation", body, nil)
}
