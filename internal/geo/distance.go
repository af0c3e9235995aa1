// Package geo computes trip distances.
package geo

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/KaramelBytes/ridestats-cli/internal/ride"
)

const (
	// EarthRadiusKm is the mean earth radius (IUGG) used for great-circle distances.
	EarthRadiusKm = 6371.0088
	// DistanceScale converts kilometres to the unit the trip exports are analyzed in.
	DistanceScale = 1000
	// ZeroTolerance is half of the last digit the distances are reported with (7 decimals).
	ZeroTolerance = 0.5e-7
)

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b ride.LatLng) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// TripDistance is the scaled distance of one trip.
func TripDistance(start, end ride.LatLng) float64 {
	return Haversine(start, end) * DistanceScale
}

// IsZero reports whether a distance would print as zero at 7 decimals. Such trips start and end at
// the same fix and are treated as bad GPS data.
func IsZero(d float64) bool {
	return math.Abs(d) < ZeroTolerance
}
