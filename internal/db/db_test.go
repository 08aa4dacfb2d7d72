package db

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/citydata"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test_urban_sprawl.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func loadTestSnapshot(t *testing.T, db *DB) []citydata.CityRecord {
	t.Helper()
	records, err := citydata.ParseCSV(strings.NewReader(testutil.MetricsCSV))
	if err != nil {
		t.Fatalf("failed to parse fixture CSV: %v", err)
	}
	if err := db.LoadSnapshot(records); err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	return records
}

func TestLoadSnapshotRoundTrip(t *testing.T) {
	db := newTestDB(t)
	want := loadTestSnapshot(t, db)

	got, err := db.Cities()
	if err != nil {
		t.Fatalf("Cities failed: %v", err)
	}

	// Cities() returns rows sorted by name regardless of snapshot order.
	sort.Slice(want, func(i, j int) bool { return want[i].Name < want[j].Name })
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSnapshotReplacesObservations(t *testing.T) {
	db := newTestDB(t)
	loadTestSnapshot(t, db)

	// Reload Riyadh with a corrected series; other cities must survive.
	updated := []citydata.CityRecord{{
		Name: "Riyadh",
		Observations: []indicator.TimeSeriesPoint{
			{Year: 2025, BuiltUpArea: 1980.0, Population: 7600000},
		},
	}}
	if err := db.LoadSnapshot(updated); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	series, err := db.Observations("Riyadh")
	if err != nil {
		t.Fatalf("Observations failed: %v", err)
	}
	if len(series) != 1 || series[0].BuiltUpArea != 1980.0 {
		t.Errorf("Riyadh series = %+v, want single corrected row", series)
	}

	if _, err := db.Observations("Jeddah"); err != nil {
		t.Errorf("Jeddah lost on partial reload: %v", err)
	}
}

func TestObservationPair(t *testing.T) {
	db := newTestDB(t)
	loadTestSnapshot(t, db)

	base, current, err := db.ObservationPair("Riyadh", 2015, 2025)
	if err != nil {
		t.Fatalf("ObservationPair failed: %v", err)
	}
	if base.Year != 2015 || current.Year != 2025 {
		t.Errorf("years = %d, %d", base.Year, current.Year)
	}
	if base.Population != 6200000 {
		t.Errorf("base population = %v", base.Population)
	}

	if _, _, err := db.ObservationPair("Riyadh", 2015, 1990); err == nil {
		t.Error("expected error for missing year")
	}
	if _, _, err := db.ObservationPair("Atlantis", 2015, 2025); err == nil {
		t.Error("expected error for unknown city")
	}
}

func TestObservationsUnknownCity(t *testing.T) {
	db := newTestDB(t)
	loadTestSnapshot(t, db)

	if _, err := db.Observations("Atlantis"); err == nil {
		t.Error("expected error for unknown city")
	}
}

func TestExportCSV(t *testing.T) {
	db := newTestDB(t)
	loadTestSnapshot(t, db)

	var buf bytes.Buffer
	if err := db.ExportCSV(&buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	// The export must parse back into the same records.
	reparsed, err := citydata.ParseCSV(&buf)
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}

	want, _ := db.Cities()
	if diff := cmp.Diff(want, reparsed); diff != "" {
		t.Errorf("export round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExportCSVEmpty(t *testing.T) {
	db := newTestDB(t)
	var buf bytes.Buffer
	if err := db.ExportCSV(&buf); err == nil {
		t.Error("ExportCSV succeeded on empty database")
	}
}
