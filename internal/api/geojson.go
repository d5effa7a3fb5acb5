package api

import (
	"github.com/mr1hm/histotrails/internal/mapview"
	"github.com/mr1hm/histotrails/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`

	// foreign members describing the type selector state
	EventTypes   []models.EventTypeName `json:"eventTypes"`
	SelectedType models.EventTypeName   `json:"selectedType"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(markers []mapview.Marker) FeatureCollection {
	features := make([]Feature, 0, len(markers))

	for _, m := range markers {
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{m.Lon, m.Lat},
			},
			Properties: map[string]any{
				"id":      m.EventID,
				"type":    m.Type,
				"title":   m.Title,
				"premium": m.Premium,
				"x":       m.X,
				"y":       m.Y,
				"icon":    m.Icon,
				"color":   m.Color,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
