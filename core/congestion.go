package core

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/orbit-risk/model"
)

// CellKey identifies one orbital-regime cluster: mean motion rounded to one
// decimal place and inclination rounded to the nearest whole degree.
type CellKey struct {
	MeanMotionBin  float64
	InclinationBin int
}

// Cell holds the occupancy statistics for one congestion cell. The two
// averages are always the arithmetic mean of every sample assigned to the
// cell, independent of arrival order.
type Cell struct {
	Count          int     `json:"count"`
	AvgInclination float64 `json:"avg_inclination"`
	AvgMeanMotion  float64 `json:"avg_mean_motion"`
}

// add folds one sample into the running means.
func (c *Cell) add(el Elements) {
	n := float64(c.Count)
	c.AvgInclination = (c.AvgInclination*n + el.Inclination) / (n + 1)
	c.AvgMeanMotion = (c.AvgMeanMotion*n + el.MeanMotion) / (n + 1)
	c.Count++
}

// merge folds another cell's statistics into c with count-weighted means,
// so partitioned aggregation produces the same averages as a single pass.
func (c *Cell) merge(other *Cell) {
	if other == nil || other.Count == 0 {
		return
	}
	n1 := float64(c.Count)
	n2 := float64(other.Count)
	c.AvgInclination = (c.AvgInclination*n1 + other.AvgInclination*n2) / (n1 + n2)
	c.AvgMeanMotion = (c.AvgMeanMotion*n1 + other.AvgMeanMotion*n2) / (n1 + n2)
	c.Count += other.Count
}

// CongestionMap bins a filtered object population into congestion cells.
// Maps are built fresh per query and discarded after use.
type CongestionMap map[CellKey]*Cell

// TotalCount returns the number of objects across all cells. It always
// equals the length of the filtered record list the aggregation returned.
func (m CongestionMap) TotalCount() int {
	total := 0
	for _, cell := range m {
		total += cell.Count
	}
	return total
}

// KeyFor returns the congestion cell a set of decoded elements falls into.
func KeyFor(el Elements) CellKey {
	return CellKey{
		MeanMotionBin:  math.Round(el.MeanMotion*10) / 10,
		InclinationBin: int(math.Round(el.Inclination)),
	}
}

// elementWindow is an inclusive filter over decoded elements.
type elementWindow struct {
	minMeanMotion  float64
	maxMeanMotion  float64
	minInclination float64
	maxInclination float64
}

// windowFromAltitudes translates an altitude window into a mean-motion
// window. The mapping is monotonically decreasing (lower orbits are
// faster), so the bounds invert: the minimum altitude becomes the maximum
// mean-motion bound and vice versa.
func windowFromAltitudes(minAltitudeKm, maxAltitudeKm, minInclinationDeg, maxInclinationDeg float64) elementWindow {
	return elementWindow{
		minMeanMotion:  AltitudeToMeanMotion(maxAltitudeKm),
		maxMeanMotion:  AltitudeToMeanMotion(minAltitudeKm),
		minInclination: minInclinationDeg,
		maxInclination: maxInclinationDeg,
	}
}

func (w elementWindow) contains(el Elements) bool {
	return el.MeanMotion >= w.minMeanMotion && el.MeanMotion <= w.maxMeanMotion &&
		el.Inclination >= w.minInclination && el.Inclination <= w.maxInclination
}

// AggregateCongestion bins every usable record whose altitude (via mean
// motion) and inclination fall inside the given inclusive windows. It
// returns the completed congestion map together with the kept records, for
// callers that need to correlate individual objects against a ground
// position rather than just count them.
//
// A window that yields a zero or negative mean-motion span, an inclination
// window outside the physical range, or an empty input batch all produce an
// empty map; none of these is an error.
func AggregateCongestion(records []model.Record, minAltitudeKm, maxAltitudeKm, minInclinationDeg, maxInclinationDeg float64) (CongestionMap, []model.Record) {
	window := windowFromAltitudes(minAltitudeKm, maxAltitudeKm, minInclinationDeg, maxInclinationDeg)
	return aggregate(records, window)
}

// AggregateAscentCorridor bins every usable record between the Earth's
// surface and the given ascent ceiling, across the full inclination range.
// The surface anchor has no meaningful mean-motion bound, so only the
// ceiling is translated and the fast side of the window is left open.
func AggregateAscentCorridor(records []model.Record, ceilingKm float64) (CongestionMap, []model.Record) {
	window := elementWindow{
		minMeanMotion:  AltitudeToMeanMotion(ceilingKm),
		maxMeanMotion:  math.Inf(1),
		minInclination: 0,
		maxInclination: 180,
	}
	if ceilingKm <= 0 {
		// No corridor to speak of; keep the empty-window contract.
		window.maxMeanMotion = 0
	}
	return aggregate(records, window)
}

func aggregate(records []model.Record, window elementWindow) (CongestionMap, []model.Record) {
	cells := make(CongestionMap)
	var kept []model.Record

	for _, rec := range records {
		el, ok := ElementsFromRecord(rec)
		if !ok || !window.contains(el) {
			continue
		}

		key := KeyFor(el)
		cell := cells[key]
		if cell == nil {
			cell = &Cell{}
			cells[key] = cell
		}
		cell.add(el)
		kept = append(kept, rec)
	}
	return cells, kept
}

// AggregateCongestionParallel is AggregateCongestion over partitioned
// input: each worker accumulates an independent map over a contiguous slice
// of the batch, and the partial cell statistics are merged with
// count-weighted means. Per-cell results match the single-pass aggregation
// to within floating-point tolerance regardless of partitioning.
//
// workers <= 0 selects GOMAXPROCS. The context only bounds scheduling; the
// per-record work itself never blocks.
func AggregateCongestionParallel(ctx context.Context, records []model.Record, minAltitudeKm, maxAltitudeKm, minInclinationDeg, maxInclinationDeg float64, workers int) (CongestionMap, []model.Record, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(records) {
		workers = len(records)
	}
	if workers <= 1 {
		cells, kept := AggregateCongestion(records, minAltitudeKm, maxAltitudeKm, minInclinationDeg, maxInclinationDeg)
		return cells, kept, ctx.Err()
	}

	window := windowFromAltitudes(minAltitudeKm, maxAltitudeKm, minInclinationDeg, maxInclinationDeg)

	partialCells := make([]CongestionMap, workers)
	partialKept := make([][]model.Record, workers)
	chunk := (len(records) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		lo := i * chunk
		hi := lo + chunk
		if hi > len(records) {
			hi = len(records)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partialCells[i], partialKept[i] = aggregate(records[lo:hi], window)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	cells := make(CongestionMap)
	var kept []model.Record
	for i := 0; i < workers; i++ {
		for key, partial := range partialCells[i] {
			cell := cells[key]
			if cell == nil {
				cell = &Cell{}
				cells[key] = cell
			}
			cell.merge(partial)
		}
		kept = append(kept, partialKept[i]...)
	}
	return cells, kept, nil
}
