package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/signalsfoundry/orbit-risk/core"
	"github.com/signalsfoundry/orbit-risk/internal/logging"
	"github.com/signalsfoundry/orbit-risk/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleOrbitRisk estimates the dwelling risk for a satellite at a given
// height: the object population is counted in a +/-50 km shell around the
// height and fed into the Poisson dwell model.
//
// Query parameters: height (km), A_effective (m^2), T_years, C_full,
// D_lost, and optionally V_rel (km/s).
func (s *Server) handleOrbitRisk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	height, err := floatParam(q, "height")
	if err != nil {
		s.clientError(w, err)
		return
	}
	aEffectiveM2, err := floatParam(q, "A_effective")
	if err != nil {
		s.clientError(w, err)
		return
	}
	tYears, err := floatParam(q, "T_years")
	if err != nil {
		s.clientError(w, err)
		return
	}
	cFull, err := floatParam(q, "C_full")
	if err != nil {
		s.clientError(w, err)
		return
	}
	dLost, err := floatParam(q, "D_lost")
	if err != nil {
		s.clientError(w, err)
		return
	}
	vRel, err := optionalFloatParam(q, "V_rel", DefaultRelativeVelocityKmS)
	if err != nil {
		s.clientError(w, err)
		return
	}

	records, err := s.catalog.Records(ctx)
	if err != nil {
		s.catalogUnavailable(ctx, w, err)
		return
	}

	congestion, _ := core.AggregateCongestion(records,
		height-orbitShellHalfWidthKm, height+orbitShellHalfWidthKm, 0, 180)
	objects := congestion.TotalCount()

	// The public parameter is quoted in m^2; the dwell model works in km^2.
	areaKm2 := aEffectiveM2 / core.SquareMetersPerSquareKm
	result := core.OrbitalDwellRisk(objects,
		height+orbitShellHalfWidthKm, height-orbitShellHalfWidthKm,
		vRel, areaKm2, tYears, cFull, dLost)

	if !result.Valid {
		s.log.Warn(ctx, "orbit risk computed over a non-physical shell",
			logging.Float64("height_km", height))
	}
	s.log.Debug(ctx, "orbit risk computed",
		logging.Int("objects", objects),
		logging.Float64("collision_risk", result.CollisionRisk))

	writeJSON(w, http.StatusOK, result)
}

// handleTakeoffRisk estimates the transit risk for an ascent through the
// corridor from the surface up to H_ascent. When a launch site (lat, lon)
// is supplied, only objects whose ground track at the launch date passes
// near the site are counted; otherwise the whole corridor population is.
//
// Query parameters: H_ascent (km), A_rocket (m^2), T_seconds, C_total_loss,
// date (YYYY-MM-DD), and optionally lat, lon, V_rel (km/s).
func (s *Server) handleTakeoffRisk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	hAscent, err := floatParam(q, "H_ascent")
	if err != nil {
		s.clientError(w, err)
		return
	}
	aRocketM2, err := floatParam(q, "A_rocket")
	if err != nil {
		s.clientError(w, err)
		return
	}
	tSeconds, err := floatParam(q, "T_seconds")
	if err != nil {
		s.clientError(w, err)
		return
	}
	cTotalLoss, err := floatParam(q, "C_total_loss")
	if err != nil {
		s.clientError(w, err)
		return
	}
	date, err := stringParam(q, "date")
	if err != nil {
		s.clientError(w, err)
		return
	}
	vRel, err := optionalFloatParam(q, "V_rel", DefaultRelativeVelocityKmS)
	if err != nil {
		s.clientError(w, err)
		return
	}

	records, err := s.catalog.Records(ctx)
	if err != nil {
		s.catalogUnavailable(ctx, w, err)
		return
	}

	_, corridor := core.AggregateAscentCorridor(records, hAscent)
	objects := len(corridor)

	// A launch site narrows the population to objects overflying it.
	if q.Get("lat") != "" && q.Get("lon") != "" {
		lat, err := floatParam(q, "lat")
		if err != nil {
			s.clientError(w, err)
			return
		}
		lon, err := floatParam(q, "lon")
		if err != nil {
			s.clientError(w, err)
			return
		}
		launch, err := time.Parse("2006-01-02", date)
		if err != nil {
			s.clientError(w, errors.Join(ErrInvalidParameter, err))
			return
		}
		objects = countNearSite(corridor, launch, lat, lon)
	}

	result := core.AscentRisk(objects, hAscent, vRel, aRocketM2, tSeconds, cTotalLoss)
	if !result.Valid {
		s.log.Warn(ctx, "takeoff risk computed over a non-physical corridor",
			logging.Float64("ascent_ceiling_km", hAscent))
	}
	s.log.Debug(ctx, "takeoff risk computed",
		logging.Int("objects", objects),
		logging.Float64("collision_risk", result.CollisionRisk))

	writeJSON(w, http.StatusOK, result)
}

// countNearSite propagates each corridor object to the launch instant and
// counts those whose subpoint lies within the launch corridor radius.
func countNearSite(records []model.Record, launch time.Time, latDeg, lonDeg float64) int {
	count := 0
	for _, rec := range records {
		track, ok := core.SubpointAt(rec, launch)
		if !ok {
			continue
		}
		if core.QuickDistanceKm(track.LatitudeDeg, track.LongitudeDeg, latDeg, lonDeg) < launchCorridorRadiusKm {
			count++
		}
	}
	return count
}

// congestionCell is one map cell flattened for JSON output.
type congestionCell struct {
	MeanMotionBin  float64 `json:"mean_motion_bin"`
	InclinationBin int     `json:"inclination_bin"`
	Count          int     `json:"count"`
	AvgInclination float64 `json:"avg_inclination"`
	AvgMeanMotion  float64 `json:"avg_mean_motion"`
}

type congestionResponse struct {
	Cells []congestionCell `json:"cells"`
	Total int              `json:"total"`
}

// handleCongestion reports the altitude/inclination occupancy histogram for
// a caller-supplied window, most congested cells first.
//
// Query parameters: min_altitude, max_altitude (km), and optionally
// min_inclination, max_inclination (degrees, default 0-180).
func (s *Server) handleCongestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	minAlt, err := floatParam(q, "min_altitude")
	if err != nil {
		s.clientError(w, err)
		return
	}
	maxAlt, err := floatParam(q, "max_altitude")
	if err != nil {
		s.clientError(w, err)
		return
	}
	minInc, err := optionalFloatParam(q, "min_inclination", 0)
	if err != nil {
		s.clientError(w, err)
		return
	}
	maxInc, err := optionalFloatParam(q, "max_inclination", 180)
	if err != nil {
		s.clientError(w, err)
		return
	}

	records, err := s.catalog.Records(ctx)
	if err != nil {
		s.catalogUnavailable(ctx, w, err)
		return
	}

	cells, filtered := core.AggregateCongestion(records, minAlt, maxAlt, minInc, maxInc)

	resp := congestionResponse{Cells: make([]congestionCell, 0, len(cells)), Total: len(filtered)}
	for key, cell := range cells {
		resp.Cells = append(resp.Cells, congestionCell{
			MeanMotionBin:  key.MeanMotionBin,
			InclinationBin: key.InclinationBin,
			Count:          cell.Count,
			AvgInclination: cell.AvgInclination,
			AvgMeanMotion:  cell.AvgMeanMotion,
		})
	}
	sort.Slice(resp.Cells, func(i, j int) bool {
		if resp.Cells[i].Count != resp.Cells[j].Count {
			return resp.Cells[i].Count > resp.Cells[j].Count
		}
		if resp.Cells[i].MeanMotionBin != resp.Cells[j].MeanMotionBin {
			return resp.Cells[i].MeanMotionBin < resp.Cells[j].MeanMotionBin
		}
		return resp.Cells[i].InclinationBin < resp.Cells[j].InclinationBin
	})

	writeJSON(w, http.StatusOK, resp)
}

// clientError translates parameter failures into the API's 400 contract.
// Missing parameters are named; type failures get a generic message so the
// raw value is not reflected back.
func (s *Server) clientError(w http.ResponseWriter, err error) {
	msg := "Invalid parameter type. Please provide valid numbers."
	if errors.Is(err, ErrMissingParameter) {
		msg = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"message": msg})
}

func (s *Server) catalogUnavailable(ctx context.Context, w http.ResponseWriter, err error) {
	s.log.Error(ctx, "catalog unavailable", logging.Err(err))
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "satellite catalog is unavailable"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
