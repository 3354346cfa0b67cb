package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/signalsfoundry/orbit-risk/core"
	"github.com/signalsfoundry/orbit-risk/internal/logging"
	"github.com/signalsfoundry/orbit-risk/model"
)

type fakeCatalog struct {
	records []model.Record
	err     error
}

func (f *fakeCatalog) Records(ctx context.Context) ([]model.Record, error) {
	return f.records, f.err
}

// apiRecord builds a catalog record whose second line carries the given
// inclination and mean motion in the standard columns.
func apiRecord(number int, inclinationDeg, meanMotion float64) model.Record {
	line2 := fmt.Sprintf("2 %05d %8.4f 115.9059 0001817  61.3028  35.9198 %11.8f257760",
		number, inclinationDeg, meanMotion)
	return model.Record{
		Name:   fmt.Sprintf("OBJECT %d", number),
		Number: number,
		Line1:  "1 25544U 98067A   24060.50000000  .00016717  00000-0  10270-3 0  9025",
		Line2:  line2,
	}
}

func newTestHandler(t *testing.T, catalog CatalogProvider) http.Handler {
	t.Helper()
	return NewServer(catalog, logging.Noop()).Handler()
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t, &fakeCatalog{})
	rec := doGet(t, h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandleOrbitRisk(t *testing.T) {
	records := []model.Record{
		apiRecord(10001, 51.6, 15.50),
		apiRecord(10002, 97.4, 15.45),
		apiRecord(10003, 53.0, 15.52),
		// Far outside the 400 +/- 50 km shell.
		apiRecord(10004, 0.1, 1.00),
	}
	h := newTestHandler(t, &fakeCatalog{records: records})

	rec := doGet(t, h, "/orbit_risk?height=400&A_effective=20&T_years=5&C_full=1500000&D_lost=500000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got model.RiskResult
	decodeBody(t, rec, &got)

	congestion, _ := core.AggregateCongestion(records, 350, 450, 0, 180)
	want := core.OrbitalDwellRisk(congestion.TotalCount(), 450, 350,
		DefaultRelativeVelocityKmS, 20/core.SquareMetersPerSquareKm, 5, 1500000, 500000)
	if got.CollisionRisk != want.CollisionRisk {
		t.Errorf("collision_risk = %v, want %v", got.CollisionRisk, want.CollisionRisk)
	}
	if got.FinancialRisk != want.FinancialRisk {
		t.Errorf("financial_risk = %v, want %v", got.FinancialRisk, want.FinancialRisk)
	}
	if got.CollisionRisk <= 0 {
		t.Errorf("collision_risk = %v, want > 0 with populated shell", got.CollisionRisk)
	}
}

func TestHandleOrbitRisk_MissingParameter(t *testing.T) {
	h := newTestHandler(t, &fakeCatalog{})
	rec := doGet(t, h, "/orbit_risk?height=400&A_effective=20&T_years=5&C_full=1500000")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if !strings.Contains(body["message"], "D_lost") {
		t.Errorf("message = %q, want it to name the missing parameter", body["message"])
	}
}

func TestHandleOrbitRisk_InvalidParameter(t *testing.T) {
	h := newTestHandler(t, &fakeCatalog{})
	rec := doGet(t, h, "/orbit_risk?height=abc&A_effective=20&T_years=5&C_full=1500000&D_lost=500000")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["message"] != "Invalid parameter type. Please provide valid numbers." {
		t.Errorf("message = %q", body["message"])
	}
}

func TestHandleOrbitRisk_CatalogUnavailable(t *testing.T) {
	h := newTestHandler(t, &fakeCatalog{err: errors.New("upstream down")})
	rec := doGet(t, h, "/orbit_risk?height=400&A_effective=20&T_years=5&C_full=1500000&D_lost=500000")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleTakeoffRisk(t *testing.T) {
	records := []model.Record{
		apiRecord(20001, 51.6, 15.50),
		apiRecord(20002, 97.4, 14.20),
		// Above a 2000 km ceiling, so outside the corridor.
		apiRecord(20003, 0.1, 1.00),
	}
	h := newTestHandler(t, &fakeCatalog{records: records})

	rec := doGet(t, h, "/takeoff_risk?H_ascent=2000&A_rocket=10&T_seconds=600&C_total_loss=60000000&date=2024-03-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got model.RiskResult
	decodeBody(t, rec, &got)

	want := core.AscentRisk(2, 2000, DefaultRelativeVelocityKmS, 10, 600, 60000000)
	if got.CollisionRisk != want.CollisionRisk {
		t.Errorf("collision_risk = %v, want %v", got.CollisionRisk, want.CollisionRisk)
	}
	if got.FinancialRisk != want.FinancialRisk {
		t.Errorf("financial_risk = %v, want %v", got.FinancialRisk, want.FinancialRisk)
	}
}

func TestHandleTakeoffRisk_WithLaunchSite(t *testing.T) {
	records := []model.Record{apiRecord(20001, 51.6, 15.50)}
	h := newTestHandler(t, &fakeCatalog{records: records})

	rec := doGet(t, h, "/takeoff_risk?H_ascent=2000&A_rocket=10&T_seconds=600&C_total_loss=60000000&date=2024-03-01&lat=28.5&lon=-80.6")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got model.RiskResult
	decodeBody(t, rec, &got)
	if got.CollisionRisk < 0 || got.CollisionRisk > 1 {
		t.Errorf("collision_risk = %v, want a probability", got.CollisionRisk)
	}
}

func TestHandleTakeoffRisk_BadDate(t *testing.T) {
	h := newTestHandler(t, &fakeCatalog{})
	rec := doGet(t, h, "/takeoff_risk?H_ascent=2000&A_rocket=10&T_seconds=600&C_total_loss=60000000&date=March+1st&lat=28.5&lon=-80.6")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleCongestion(t *testing.T) {
	records := []model.Record{
		apiRecord(30001, 51.6, 15.50),
		apiRecord(30002, 51.7, 15.52),
		apiRecord(30003, 97.4, 14.20),
	}
	h := newTestHandler(t, &fakeCatalog{records: records})

	rec := doGet(t, h, "/congestion?min_altitude=300&max_altitude=2000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got congestionResponse
	decodeBody(t, rec, &got)
	if got.Total != 3 {
		t.Errorf("total = %d, want 3", got.Total)
	}
	if len(got.Cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(got.Cells))
	}
	if got.Cells[0].Count < got.Cells[1].Count {
		t.Errorf("cells not sorted by count: %+v", got.Cells)
	}
	if got.Cells[0].Count != 2 || got.Cells[0].InclinationBin != 52 {
		t.Errorf("top cell = %+v, want the two co-orbiting objects", got.Cells[0])
	}
}

func TestHandleCongestion_MissingWindow(t *testing.T) {
	h := newTestHandler(t, &fakeCatalog{})
	rec := doGet(t, h, "/congestion?min_altitude=300")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	h := newTestHandler(t, &fakeCatalog{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Errorf("X-Request-Id = %q, want %q", got, "req-123")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	h := newTestHandler(t, &fakeCatalog{})
	rec := doGet(t, h, "/healthz")
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected a generated X-Request-Id header")
	}
}
