package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/signalsfoundry/orbit-risk/core"
	"github.com/signalsfoundry/orbit-risk/internal/catalog"
	"github.com/signalsfoundry/orbit-risk/internal/logging"
	"github.com/signalsfoundry/orbit-risk/model"
)

type reportCell struct {
	MeanMotionBin  float64 `json:"mean_motion_bin"`
	InclinationBin int     `json:"inclination_bin"`
	Count          int     `json:"count"`
	AvgInclination float64 `json:"avg_inclination"`
	AvgMeanMotion  float64 `json:"avg_mean_motion"`
}

type report struct {
	GeneratedAt   time.Time    `json:"generated_at"`
	MinAltitudeKm float64      `json:"min_altitude_km"`
	MaxAltitudeKm float64      `json:"max_altitude_km"`
	MinInclDeg    float64      `json:"min_inclination_deg"`
	MaxInclDeg    float64      `json:"max_inclination_deg"`
	Total         int          `json:"total"`
	Cells         []reportCell `json:"cells"`
}

func main() {
	minAlt := flag.Float64("min-alt", 300, "lower edge of the altitude window (km)")
	maxAlt := flag.Float64("max-alt", 2000, "upper edge of the altitude window (km)")
	minInc := flag.Float64("min-inc", 0, "lower edge of the inclination window (degrees)")
	maxInc := flag.Float64("max-inc", 180, "upper edge of the inclination window (degrees)")
	top := flag.Int("top", 10, "number of most congested cells to print")
	out := flag.String("out", "congestion_report.json", "path of the JSON report to write")
	input := flag.String("input", "", "read TLE records from this file instead of fetching")
	workers := flag.Int("workers", runtime.NumCPU(), "parallel aggregation workers")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	records, err := loadRecords(ctx, log, *input)
	if err != nil {
		log.Error(ctx, "failed to load catalog", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "catalog loaded", logging.Int("records", len(records)))

	cells, filtered, err := core.AggregateCongestionParallel(ctx, records,
		*minAlt, *maxAlt, *minInc, *maxInc, *workers)
	if err != nil {
		log.Error(ctx, "aggregation failed", logging.Err(err))
		os.Exit(1)
	}

	rep := report{
		GeneratedAt:   time.Now().UTC(),
		MinAltitudeKm: *minAlt,
		MaxAltitudeKm: *maxAlt,
		MinInclDeg:    *minInc,
		MaxInclDeg:    *maxInc,
		Total:         len(filtered),
	}
	for key, cell := range cells {
		rep.Cells = append(rep.Cells, reportCell{
			MeanMotionBin:  key.MeanMotionBin,
			InclinationBin: key.InclinationBin,
			Count:          cell.Count,
			AvgInclination: cell.AvgInclination,
			AvgMeanMotion:  cell.AvgMeanMotion,
		})
	}
	sort.Slice(rep.Cells, func(i, j int) bool {
		if rep.Cells[i].Count != rep.Cells[j].Count {
			return rep.Cells[i].Count > rep.Cells[j].Count
		}
		if rep.Cells[i].MeanMotionBin != rep.Cells[j].MeanMotionBin {
			return rep.Cells[i].MeanMotionBin < rep.Cells[j].MeanMotionBin
		}
		return rep.Cells[i].InclinationBin < rep.Cells[j].InclinationBin
	})

	fmt.Printf("%d objects in %0.0f-%0.0f km, inclination %0.0f-%0.0f deg\n",
		rep.Total, *minAlt, *maxAlt, *minInc, *maxInc)
	for i, cell := range rep.Cells {
		if i >= *top {
			break
		}
		fmt.Printf("%3d objects at mean motion %5.1f rev/day, inclination %3d deg (avg %0.2f deg, %0.4f rev/day)\n",
			cell.Count, cell.MeanMotionBin, cell.InclinationBin, cell.AvgInclination, cell.AvgMeanMotion)
	}

	if err := writeReport(*out, rep); err != nil {
		log.Error(ctx, "failed to write report", logging.String("path", *out), logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "report written", logging.String("path", *out), logging.Int("cells", len(rep.Cells)))
}

// loadRecords reads the catalog from a local TLE file when one is given,
// otherwise it fetches from the configured source.
func loadRecords(ctx context.Context, log logging.Logger, path string) ([]model.Record, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return catalog.ParseCatalog(string(data))
	}

	cfg, err := catalog.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "fetching catalog", logging.String("url", cfg.SourceURL))
	return catalog.NewClient(cfg.SourceURL, cfg.FetchTimeout).Fetch(ctx)
}

func writeReport(path string, rep report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
