package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/orbit-risk/model"
)

// GroundTrack is a satellite's subpoint at an instant: geocentric latitude
// and longitude in degrees, and altitude above the mean Earth radius in
// kilometres.
type GroundTrack struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeKm   float64
}

// SubpointAt propagates a record's elements to t with SGP4 and returns the
// ground track underneath the object. The flag is false when the element
// lines are too short to propagate or propagation yields a degenerate
// position.
func SubpointAt(rec model.Record, t time.Time) (GroundTrack, bool) {
	if len(rec.Line1) < TLELineLength || len(rec.Line2) < TLELineLength {
		return GroundTrack{}, false
	}

	sat := satellite.TLEToSat(rec.Line1, rec.Line2, satellite.GravityWGS72)

	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	pos := satellite.ECIToECEF(posECI, gmst)

	r := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if r == 0 {
		return GroundTrack{}, false
	}

	const radToDeg = 180.0 / math.Pi
	return GroundTrack{
		LatitudeDeg:  math.Asin(pos.Z/r) * radToDeg,
		LongitudeDeg: math.Atan2(pos.Y, pos.X) * radToDeg,
		AltitudeKm:   r - MeanEarthRadiusKm,
	}, true
}
