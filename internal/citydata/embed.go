package citydata

import (
	"bytes"
	_ "embed"
	"fmt"
)

// Snapshot of the reference CSV bundled at build time. Lets the service
// start (and tests run) with no network access; the refresher replaces it
// with fresh remote data when a data URL is configured.
//
//go:embed data/saudi_cities_sdg1131_1975_2025.csv
var embeddedCSV []byte

// EmbeddedSnapshot parses the bundled reference CSV.
func EmbeddedSnapshot() ([]CityRecord, error) {
	records, err := ParseCSV(bytes.NewReader(embeddedCSV))
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded snapshot: %w", err)
	}
	return records, nil
}
