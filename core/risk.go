package core

import (
	"math"

	"github.com/signalsfoundry/orbit-risk/model"
)

// MeanEarthRadiusKm is the volumetric mean Earth radius in kilometres, used
// for the shell and corridor volumes in the risk model. The Kepler
// conversion uses the equatorial radius instead; the two models keep their
// own constants.
const MeanEarthRadiusKm = 6371.0

// SecondsPerYear converts mission lifetimes quoted in years to seconds
// (365-day years).
const SecondsPerYear = 31536000.0

// SquareMetersPerSquareKm converts effective cross-sections quoted in m^2
// to the km^2 the Poisson model works in.
const SquareMetersPerSquareKm = 1e6

// ShellVolumeKm3 is the volume of the spherical shell between two altitudes
// above the mean Earth radius. A lower bound of zero gives the solid
// surface-to-ceiling corridor volume. The result is negative when the
// bounds are inverted; callers treat that as non-physical input.
func ShellVolumeKm3(lowerAltitudeKm, upperAltitudeKm float64) float64 {
	rUpper := MeanEarthRadiusKm + upperAltitudeKm
	rLower := MeanEarthRadiusKm + lowerAltitudeKm
	return (4.0 / 3.0) * math.Pi * (rUpper*rUpper*rUpper - rLower*rLower*rLower)
}

// collisionRisk is the Poisson-process model shared by both estimator
// modes: collisions arrive at rate lambda = density * vRel * area *
// duration, the probability of at least one collision is 1 - e^(-lambda),
// and the expected loss is that probability times the value at risk.
//
// A non-positive volume marks a non-physical input range: the result is
// zero risk with Valid false, never a fault, so callers can distinguish a
// true zero from an invalid-range zero.
func collisionRisk(objects, volumeKm3, vRelKmS, areaKm2, durationSeconds, valueAtRisk float64) model.RiskResult {
	if volumeKm3 <= 0 {
		return model.RiskResult{}
	}

	density := objects / volumeKm3
	lambda := density * vRelKmS * areaKm2 * durationSeconds
	probability := 1.0 - math.Exp(-lambda)

	return model.RiskResult{
		FinancialRisk: roundMoney(probability * valueAtRisk),
		CollisionRisk: probability,
		Valid:         true,
	}
}

// OrbitalDwellRisk estimates the collision risk of dwelling in the orbital
// shell between hLowerKm and hUpperKm for a whole mission.
//
// areaKm2 is the effective cross-section in km^2; a caller holding a value
// in m^2 must divide by SquareMetersPerSquareKm first. The value at risk is
// the full mission cost plus the revenue lost if the spacecraft is lost.
func OrbitalDwellRisk(objects int, hUpperKm, hLowerKm, vRelKmS, areaKm2, missionYears, missionCost, lostRevenue float64) model.RiskResult {
	volume := ShellVolumeKm3(hLowerKm, hUpperKm)
	duration := missionYears * SecondsPerYear
	return collisionRisk(float64(objects), volume, vRelKmS, areaKm2, duration, missionCost+lostRevenue)
}

// AscentRisk estimates the collision risk of transiting the launch corridor
// from the surface up to ascentCeilingKm.
//
// Unlike OrbitalDwellRisk this mode takes the vehicle cross-section in m^2
// (converted internally) and the transit duration directly in seconds. The
// value at risk is the combined vehicle plus payload loss.
func AscentRisk(objects int, ascentCeilingKm, vRelKmS, areaM2, durationSeconds, totalLossCost float64) model.RiskResult {
	volume := ShellVolumeKm3(0, ascentCeilingKm)
	areaKm2 := areaM2 / SquareMetersPerSquareKm
	return collisionRisk(float64(objects), volume, vRelKmS, areaKm2, durationSeconds, totalLossCost)
}

// roundMoney keeps the displayed monetary figure at a stable two decimal
// places. The probability is never rounded.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
