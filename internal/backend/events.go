package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/mr1hm/histotrails/internal/models"
)

// CreateEvent creates an event and returns its id. The API does not always
// answer with the created row, in which case the returned id is 0 and callers
// have to look the event up themselves.
func (c *Client) CreateEvent(ctx context.Context, e models.NewEvent) (int, error) {
	body, err := jsonPayload(e)
	if err != nil {
		return 0, err
	}

	var raw rawBody
	if err := c.do(ctx, http.MethodPost, "/api/events", "api/events", body, &raw); err != nil {
		return 0, err
	}
	return createdID(json.RawMessage(raw), "eventId"), nil
}

func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events", "api/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events/{id}", "api/events/"+strconv.Itoa(id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id int, patch models.EventPatch) error {
	body, err := jsonPayload(patch)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/api/events/{id}", "api/events/"+strconv.Itoa(id), body, nil)
}

func (c *Client) DeleteEvent(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/events/{id}", "api/events/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) SetEventPremium(ctx context.Context, id int, premium bool) error {
	action := "unmark-premium"
	if premium {
		action = "mark-premium"
	}
	body, err := jsonPayload(struct{}{})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/api/events/{id}/"+action, "api/events/"+strconv.Itoa(id)+"/"+action, body, nil)
}

func (c *Client) SetAllPremium(ctx context.Context, premium bool) error {
	body, err := jsonPayload(struct{}{})
	if err != nil {
		return err
	}
	path := withQuery("api/events/premium-all", url.Values{"status": {strconv.FormatBool(premium)}})
	return c.do(ctx, http.MethodPatch, "/api/events/premium-all", path, body, nil)
}

func (c *Client) AddEventTranslation(ctx context.Context, eventID int, t models.EventTranslation) error {
	body, err := jsonPayload(struct {
		Language    string `json:"language"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Year        string `json:"year"`
	}{t.Language, t.Title, t.Description, t.Year})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/events/{id}/translation", "api/events/"+strconv.Itoa(eventID)+"/translation", body, nil)
}

// createdID looks for key at the top level and inside a "data" envelope.
func createdID(raw json.RawMessage, key string) int {
	if len(raw) == 0 {
		return 0
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return 0
	}
	if v, ok := top[key]; ok {
		var id int
		if json.Unmarshal(v, &id) == nil {
			return id
		}
	}
	if data, ok := top["data"]; ok {
		return createdID(data, key)
	}
	return 0
}
