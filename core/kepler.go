package core

import "math"

// Constants for the circular-orbit conversion between altitude and mean
// motion (Kepler's third law).
const (
	// EquatorialRadiusKm is the Earth's equatorial radius in kilometres.
	EquatorialRadiusKm = 6378.137
	// GravitationalParameterKm3S2 is the Earth's standard gravitational
	// parameter mu, in km^3/s^2.
	GravitationalParameterKm3S2 = 398600.4418

	secondsPerDay = 86400.0
)

// AltitudeToMeanMotion converts a circular-orbit altitude in kilometres to
// mean motion in revolutions per day.
//
// An altitude of zero or below is invalid input for the circular-orbit
// model and yields 0.0, not an error. A degenerate zero period yields +Inf
// rather than a domain fault; it cannot occur for any positive altitude.
func AltitudeToMeanMotion(altitudeKm float64) float64 {
	if altitudeKm <= 0 {
		return 0
	}

	r := EquatorialRadiusKm + altitudeKm
	periodSeconds := 2 * math.Pi * math.Sqrt(r*r*r/GravitationalParameterKm3S2)
	if periodSeconds == 0 {
		return math.Inf(1)
	}
	return secondsPerDay / periodSeconds
}

// MeanMotionToAltitude inverts AltitudeToMeanMotion under the same circular
// orbit assumption. A mean motion of zero or below yields 0.0.
func MeanMotionToAltitude(revsPerDay float64) float64 {
	if revsPerDay <= 0 {
		return 0
	}

	periodSeconds := secondsPerDay / revsPerDay
	r := math.Cbrt(GravitationalParameterKm3S2 * periodSeconds * periodSeconds / (4 * math.Pi * math.Pi))
	return r - EquatorialRadiusKm
}
