package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Location coordinates are stored by the backend as decimal strings.
type Location struct {
	ID        int    `json:"locationId,omitempty"`
	Name      string `json:"name"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (l *Location) Coordinates() (Coordinates, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(l.Latitude), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("error parsing latitude %q: %w", l.Latitude, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(l.Longitude), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("error parsing longitude %q: %w", l.Longitude, err)
	}
	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

func NewLocation(name string, c Coordinates) Location {
	return Location{
		Name:      name,
		Latitude:  strconv.FormatFloat(c.Latitude, 'f', -1, 64),
		Longitude: strconv.FormatFloat(c.Longitude, 'f', -1, 64),
	}
}
