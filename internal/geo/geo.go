// Package geo holds the great-circle math used by nearby search.
//
// Distances use the haversine formula on a spherical Earth of mean radius
// EarthRadiusMeters. At Auckland's latitude the error against the WGS84
// ellipsoid stays well under 0.5%, and the result is deterministic.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusMeters is the IUGG mean Earth radius.
const EarthRadiusMeters = 6371008.8

var (
	ErrLatitudeRange  = errors.New("latitude must be between -90 and 90")
	ErrLongitudeRange = errors.New("longitude must be between -180 and 180")
	ErrRadius         = errors.New("radius must be a positive number of meters")
)

type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Validate checks the coordinate bounds.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return ErrLatitudeRange
	}
	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return ErrLongitudeRange
	}
	return nil
}

// ValidateRadius rejects non-positive radii and radii above max when max > 0.
func ValidateRadius(radius, max float64) error {
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
		return ErrRadius
	}
	if max > 0 && radius > max {
		return fmt.Errorf("radius must not exceed %.0f meters", max)
	}
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Within reports whether b lies within radius meters of a.
func Within(a, b Point, radius float64) bool {
	return Distance(a, b) <= radius
}

// BoundingBox is an axis-aligned lat/lng rectangle. When the box crosses the
// antimeridian MinLng > MaxLng.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Wraps reports whether the box crosses the antimeridian.
func (b BoundingBox) Wraps() bool {
	return b.MinLng > b.MaxLng
}

// Contains reports whether p is inside the box.
func (b BoundingBox) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.Wraps() {
		return p.Lng >= b.MinLng || p.Lng <= b.MaxLng
	}
	return p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Bounds returns a box that contains every point within radius meters of
// center. It is a superset used to prefilter rows before the exact haversine
// check.
func Bounds(center Point, radius float64) BoundingBox {
	angular := radius / EarthRadiusMeters
	lat := toRadians(center.Lat)
	lng := toRadians(center.Lng)

	minLat := lat - angular
	maxLat := lat + angular

	// Near a pole the box covers every longitude.
	if minLat <= -math.Pi/2 || maxLat >= math.Pi/2 {
		return BoundingBox{
			MinLat: math.Max(toDegrees(minLat), -90),
			MaxLat: math.Min(toDegrees(maxLat), 90),
			MinLng: -180,
			MaxLng: 180,
		}
	}

	dLng := math.Asin(math.Sin(angular) / math.Cos(lat))
	minLng := lng - dLng
	maxLng := lng + dLng
	if minLng < -math.Pi {
		minLng += 2 * math.Pi
	}
	if maxLng > math.Pi {
		maxLng -= 2 * math.Pi
	}

	return BoundingBox{
		MinLat: toDegrees(minLat),
		MaxLat: toDegrees(maxLat),
		MinLng: toDegrees(minLng),
		MaxLng: toDegrees(maxLng),
	}
}
