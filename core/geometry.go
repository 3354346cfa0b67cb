package core

import "math"

// QuickDistanceKm is a fast equirectangular approximation of the ground
// distance between two latitude/longitude points, in kilometres. Inputs are
// degrees. It backs the coarse launch-corridor matching and is not a
// geodesic; error grows near the poles and over very long arcs.
func QuickDistanceKm(lat1Deg, lon1Deg, lat2Deg, lon2Deg float64) float64 {
	const degToRad = math.Pi / 180.0

	phi1 := lat1Deg * degToRad
	phi2 := lat2Deg * degToRad
	dPhi := phi2 - phi1

	dLambda := (lon2Deg - lon1Deg) * degToRad
	// Take the short way around the antimeridian.
	if dLambda > math.Pi {
		dLambda -= 2 * math.Pi
	} else if dLambda < -math.Pi {
		dLambda += 2 * math.Pi
	}

	x := dLambda * math.Cos((phi1+phi2)/2)
	return MeanEarthRadiusKm * math.Sqrt(x*x+dPhi*dPhi)
}
