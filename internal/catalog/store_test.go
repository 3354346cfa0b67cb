package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalsfoundry/orbit-risk/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSaveAndLatest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fetchedAt := time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)
	records := []model.Record{
		{Name: "ISS (ZARYA)", Number: 25544, Line1: "1 25544U", Line2: "2 25544"},
		{Name: "CALSPHERE 1", Number: 900, Line1: "1 00900U", Line2: "2 00900"},
	}
	if err := store.Save(ctx, fetchedAt, records); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, gotAt, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !gotAt.Equal(fetchedAt) {
		t.Errorf("fetched_at = %v, want %v", gotAt, fetchedAt)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d records, want 2", len(got))
	}
	if got[0].Name != "ISS (ZARYA)" && got[1].Name != "ISS (ZARYA)" {
		t.Errorf("ISS record missing from %+v", got)
	}
}

func TestStoreSave_PrunesOlderGenerations(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := time.Date(2025, 10, 4, 6, 0, 0, 0, time.UTC)
	second := first.Add(6 * time.Hour)

	if err := store.Save(ctx, first, []model.Record{{Name: "OLD", Number: 1}}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := store.Save(ctx, second, []model.Record{{Name: "NEW-A", Number: 2}, {Name: "NEW-B", Number: 3}}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	records, fetchedAt, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !fetchedAt.Equal(second) {
		t.Errorf("fetched_at = %v, want the newer generation %v", fetchedAt, second)
	}
	if len(records) != 2 {
		t.Fatalf("loaded %d records, want only the newer generation's 2", len(records))
	}
	for _, rec := range records {
		if rec.Name == "OLD" {
			t.Errorf("pruned generation still present: %+v", rec)
		}
	}
}

func TestStoreLatest_EmptyCache(t *testing.T) {
	store := openTestStore(t)

	records, fetchedAt, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest on empty cache: %v", err)
	}
	if records != nil || !fetchedAt.IsZero() {
		t.Errorf("empty cache = (%v, %v), want (nil, zero time)", records, fetchedAt)
	}
}
