// Package geo provides great-circle distance computation over geographic points.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for spherical distance.
const EarthRadiusMeters = 6371000.0

// Point is an immutable geographic coordinate pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceFunc computes the distance in meters between two points.
// It allows tests to substitute synthetic metrics for Haversine.
type DistanceFunc func(a, b Point) float64

// Haversine returns the great-circle distance between a and b in meters,
// treating the Earth as a sphere of radius EarthRadiusMeters. The spherical
// approximation is within ~0.5% of true geodesic distance, which is fine at
// the 100m-10km scale store clustering operates on.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
