package mapview

import (
	"log/slog"
	"slices"

	"github.com/mr1hm/histotrails/internal/geo"
	"github.com/mr1hm/histotrails/internal/models"
)

const (
	IconBattle    = "swords"
	IconBiography = "scroll"
	IconDefault   = "locate-fixed"

	ColorPremium = "#FFD700"
	ColorRegular = "silver"
)

type Marker struct {
	EventID int                  `json:"eventId"`
	Title   string               `json:"title"`
	Type    models.EventTypeName `json:"type"`
	Premium bool                 `json:"premium"`
	Lat     float64              `json:"lat"`
	Lon     float64              `json:"lon"`
	X       float64              `json:"x"`
	Y       float64              `json:"y"`
	Icon    string               `json:"icon"`
	Color   string               `json:"color"`
}

// AvailableTypes lists the distinct type names in first-seen order. The
// generic "event" type is always offered when any event has a type.
func AvailableTypes(events []models.Event) []models.EventTypeName {
	var types []models.EventTypeName
	for i := range events {
		name := events[i].TypeName()
		if name != "" && !slices.Contains(types, name) {
			types = append(types, name)
		}
	}
	if len(types) > 0 && !slices.Contains(types, models.EventTypeEvent) {
		types = append(types, models.EventTypeEvent)
	}
	return types
}

// EffectiveType keeps selected when it is available and otherwise falls
// back to the generic type.
func EffectiveType(selected models.EventTypeName, available []models.EventTypeName) models.EventTypeName {
	if selected == models.EventTypeEvent || slices.Contains(available, selected) {
		return selected
	}
	return models.EventTypeEvent
}

// Place projects every event of type t onto the viewport. Events without a
// location or with unparsable coordinates are skipped. Events outside the
// bounds are kept and get pixel positions outside the viewport.
func Place(events []models.Event, t models.EventTypeName, vp geo.Viewport, b geo.Bounds) ([]Marker, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	markers := make([]Marker, 0, len(events))
	for i := range events {
		e := &events[i]
		if e.TypeName() != t || e.Location == nil {
			continue
		}
		c, err := e.Location.Coordinates()
		if err != nil {
			slog.Debug("skipping event with bad coordinates", "event_id", e.ID, "error", err)
			continue
		}
		pt, err := geo.ToPixel(c.Latitude, c.Longitude, vp, b)
		if err != nil {
			return nil, err
		}
		markers = append(markers, Marker{
			EventID: e.ID,
			Title:   e.Title,
			Type:    t,
			Premium: e.IsPremium,
			Lat:     c.Latitude,
			Lon:     c.Longitude,
			X:       pt.X,
			Y:       pt.Y,
			Icon:    icon(t),
			Color:   color(e.IsPremium),
		})
	}
	return markers, nil
}

func icon(t models.EventTypeName) string {
	switch t {
	case models.EventTypeBattle:
		return IconBattle
	case models.EventTypeBiography:
		return IconBiography
	}
	return IconDefault
}

func color(premium bool) string {
	if premium {
		return ColorPremium
	}
	return ColorRegular
}
