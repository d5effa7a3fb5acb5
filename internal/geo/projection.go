// Package geo converts between geographic coordinates and pixel positions on
// the static map image. The image covers a fixed lat/lon rectangle and is
// stretched linearly (equirectangular), so both directions are plain
// interpolation against the bounds.
package geo

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDegenerateBounds = errors.New("geo: bounds must satisfy north > south and east > west")
	ErrInvalidViewport  = errors.New("geo: viewport width and height must be positive")
)

// Bounds is the geographic extent of the map image, in degrees.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Viewport is the rendered size of the map image in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a pixel position with (0, 0) at the top-left corner of the image.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewBounds(north, south, west, east float64) (Bounds, error) {
	b := Bounds{North: north, South: south, West: west, East: east}
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

func (b Bounds) Validate() error {
	if !(b.North > b.South) || !(b.East > b.West) {
		return fmt.Errorf("%w: got %+v", ErrDegenerateBounds, b)
	}
	return nil
}

// Contains reports whether the coordinate lies inside the bounds, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat <= b.North && lat >= b.South && lon >= b.West && lon <= b.East
}

func (v Viewport) Validate() error {
	if !(v.Width > 0) || !(v.Height > 0) || math.IsInf(v.Width, 0) || math.IsInf(v.Height, 0) {
		return fmt.Errorf("%w: got %gx%g", ErrInvalidViewport, v.Width, v.Height)
	}
	return nil
}

// ToPixel projects lat/lon onto the viewport. Coordinates outside the bounds
// are not clamped and land outside the visible image.
func ToPixel(lat, lon float64, vp Viewport, b Bounds) (Point, error) {
	if err := b.Validate(); err != nil {
		return Point{}, err
	}
	if err := vp.Validate(); err != nil {
		return Point{}, err
	}

	x := (lon - b.West) / (b.East - b.West) * vp.Width
	// screen y grows downward while latitude grows upward
	y := (b.North - lat) / (b.North - b.South) * vp.Height
	return Point{X: x, Y: y}, nil
}

// ToGeo is the inverse of ToPixel.
func ToGeo(x, y float64, vp Viewport, b Bounds) (Coordinates, error) {
	if err := b.Validate(); err != nil {
		return Coordinates{}, err
	}
	if err := vp.Validate(); err != nil {
		return Coordinates{}, err
	}

	lon := b.West + (x/vp.Width)*(b.East-b.West)
	lat := b.North - (y/vp.Height)*(b.North-b.South)
	return Coordinates{Lat: lat, Lon: lon}, nil
}
