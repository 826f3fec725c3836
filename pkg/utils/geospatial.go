package utils

import (
	"math"
)

const (
	EarthRadiusKm = 6371.0
	// EarthRadiusMiles is the radius radius searches are expressed in.
	EarthRadiusMiles = 3963.0
)

// HaversineDistance calculates the great-circle distance between two points.
// The result is in the unit of radius.
func HaversineDistance(lat1, lng1, lat2, lng2, radius float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lng1Rad := lng1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lng2Rad := lng2 * math.Pi / 180

	dlat := lat2Rad - lat1Rad
	dlng := lng2Rad - lng1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlng/2)*math.Sin(dlng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return radius * c
}

// DistanceMiles is HaversineDistance on the mile radius.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	return HaversineDistance(lat1, lng1, lat2, lng2, EarthRadiusMiles)
}

// IsWithinRadius checks if a point is within distance miles of the center
func IsWithinRadius(center, point Point, miles float64) bool {
	return DistanceMiles(center.Lat, center.Lng, point.Lat, point.Lng) <= miles
}

// Point represents a geographical point
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox represents a rectangular area
type BoundingBox struct {
	NorthEast Point `json:"northEast"`
	SouthWest Point `json:"southWest"`
}

// GetBoundingBox returns a box enclosing every point within distance of the
// center, expressed in the unit of radius. Near the poles the longitude span
// is widened to the full range.
func GetBoundingBox(center Point, distance, radius float64) BoundingBox {
	angular := distance / radius * 180 / math.Pi

	latMin := math.Max(center.Lat-angular, -90)
	latMax := math.Min(center.Lat+angular, 90)

	lngMin, lngMax := -180.0, 180.0
	if cos := math.Cos(center.Lat * math.Pi / 180); cos > 1e-6 {
		span := angular / cos
		if span < 180 {
			lngMin = center.Lng - span
			lngMax = center.Lng + span
		}
	}

	return BoundingBox{
		NorthEast: Point{Lat: latMax, Lng: lngMax},
		SouthWest: Point{Lat: latMin, Lng: lngMin},
	}
}

// Contains checks if a point is within the box
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.SouthWest.Lat &&
		p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng &&
		p.Lng <= b.NorthEast.Lng
}
