// Package geo provides the geodesic distance calculation and the
// proximity policy used to verify that a claimant is physically close
// to a session's anchor location.
package geo

import (
	"math"

	"github.com/pkg/errors"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Coordinate is an immutable latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the coordinate is within valid WGS84 ranges.
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return errors.Errorf("latitude %f out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return errors.Errorf("longitude %f out of range [-180, 180]", c.Longitude)
	}
	return nil
}

// Distance returns the great-circle distance between two coordinates in
// meters, using the haversine formula. Distance(a, a) is exactly zero and
// Distance(a, b) == Distance(b, a) within floating point tolerance.
func Distance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	latA := radians(a.Latitude)
	latB := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// ProximityResult is the outcome of a proximity check. DistanceMeters is
// rounded to two decimal places for reporting.
type ProximityResult struct {
	Valid          bool
	DistanceMeters float64
}

// CheckProximity computes the distance between the claimant and the anchor
// and accepts the claim when it does not exceed maxDistanceMeters. The
// threshold is a deployment policy decision supplied by the caller.
func CheckProximity(claimant, anchor Coordinate, maxDistanceMeters float64) ProximityResult {
	distance := round2(Distance(claimant, anchor))
	return ProximityResult{
		Valid:          distance <= maxDistanceMeters,
		DistanceMeters: distance,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
