package citydata

import (
	"strings"
	"testing"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func TestParseCSV(t *testing.T) {
	records, err := ParseCSV(strings.NewReader(testutil.MetricsCSV))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	want := CityRecord{
		Name: "Riyadh",
		Observations: []indicator.TimeSeriesPoint{
			{Year: 2015, BuiltUpArea: 1533.0, Population: 6200000},
			{Year: 2020, BuiltUpArea: 1744.0, Population: 6900000},
			{Year: 2025, BuiltUpArea: 1973.0, Population: 7565000},
		},
	}
	if diff := cmp.Diff(want, records[0]); diff != "" {
		t.Errorf("Riyadh record mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSVIgnoresRatioColumn(t *testing.T) {
	csv := `City,Built-up 2020 (km²),Population 2020,Built-up 2025 (km²),Population 2025,SDG 11.3.1 Ratio (2020-25)
Riyadh,1744.0,6907000,1973.0,7565000,1.35
`
	records, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(records[0].Observations) != 2 {
		t.Errorf("got %d observations, want 2", len(records[0].Observations))
	}
}

func TestParseCSVSkipsIncompleteYears(t *testing.T) {
	// 1990 has built-up but no population: the year is dropped, not zeroed.
	csv := `City,Built-up 1990 (km²),Population 1990,Built-up 2020 (km²),Population 2020
Tabuk,35.0,,118.0,667000
`
	records, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}

	obs := records[0].Observations
	if len(obs) != 1 {
		t.Fatalf("got %d observations, want 1", len(obs))
	}
	if obs[0].Year != 2020 {
		t.Errorf("surviving year = %d, want 2020", obs[0].Year)
	}
}

func TestParseCSVThousandsSeparators(t *testing.T) {
	csv := `City,Built-up 2025 (km²),Population 2025
Riyadh,"1,973.0","7,565,000"
`
	records, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if got := records[0].Observations[0].Population; got != 7565000 {
		t.Errorf("Population = %v, want 7565000", got)
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"no city column", "Town,Built-up 2020 (km²)\nRiyadh,10\n"},
		{"malformed number", "City,Population 2020\nRiyadh,seven million\n"},
		{"empty file", ""},
		{"header only", "City,Population 2020\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(tt.csv)); err == nil {
				t.Error("ParseCSV succeeded, want error")
			}
		})
	}
}

func TestEmbeddedSnapshot(t *testing.T) {
	records, err := EmbeddedSnapshot()
	if err != nil {
		t.Fatalf("EmbeddedSnapshot failed: %v", err)
	}
	if len(records) < 10 {
		t.Errorf("got %d cities, expected at least 10", len(records))
	}

	for _, record := range records {
		if len(record.Observations) == 0 {
			t.Errorf("city %s has no observations", record.Name)
			continue
		}
		// Every bundled series must support the indicator computation.
		base := record.Observations[0]
		latest, _ := record.Latest()
		if _, err := indicator.ComputeRates(base, latest); err != nil {
			t.Errorf("city %s: ComputeRates failed: %v", record.Name, err)
		}
	}
}

func TestCityRecordLookups(t *testing.T) {
	record := CityRecord{
		Name: "Abha",
		Observations: []indicator.TimeSeriesPoint{
			{Year: 2015, BuiltUpArea: 66, Population: 366000},
			{Year: 2025, BuiltUpArea: 88, Population: 1093000},
		},
	}

	latest, ok := record.Latest()
	if !ok || latest.Year != 2025 {
		t.Errorf("Latest() = %+v, %v", latest, ok)
	}

	obs, ok := record.ObservationAt(2015)
	if !ok || obs.BuiltUpArea != 66 {
		t.Errorf("ObservationAt(2015) = %+v, %v", obs, ok)
	}

	if _, ok := record.ObservationAt(1990); ok {
		t.Error("ObservationAt(1990) = true, want false")
	}

	empty := CityRecord{Name: "Ghost"}
	if _, ok := empty.Latest(); ok {
		t.Error("Latest() on empty record = true, want false")
	}
}
