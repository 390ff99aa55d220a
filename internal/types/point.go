// README: Common geo value objects used across modules.
package types

import "math"

type ID string

// Point is a WGS-84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are finite and within range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// ParsePoint builds a Point from optional coordinates. ok is false when either
// value is missing or the result is out of range.
func ParsePoint(lat, lng *float64) (p Point, ok bool) {
	if lat == nil || lng == nil {
		return Point{}, false
	}
	p = Point{Lat: *lat, Lng: *lng}
	return p, p.Valid()
}
