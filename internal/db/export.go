package db

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// ExportCSV writes the reference table back out in the wide format it was
// loaded from: one row per city, a built-up/population column pair per
// year. This backs the dashboard's metrics download.
func (db *DB) ExportCSV(w io.Writer) error {
	records, err := db.Cities()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no reference data to export")
	}

	yearSet := make(map[int]bool)
	for _, record := range records {
		for _, obs := range record.Observations {
			yearSet[obs.Year] = true
		}
	}
	years := make([]int, 0, len(yearSet))
	for year := range yearSet {
		years = append(years, year)
	}
	sort.Ints(years)

	writer := csv.NewWriter(w)

	header := []string{"City"}
	for _, year := range years {
		header = append(header,
			fmt.Sprintf("Built-up %d (km²)", year),
			fmt.Sprintf("Population %d", year),
		)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		row := []string{record.Name}
		for _, year := range years {
			obs, ok := record.ObservationAt(year)
			if !ok {
				row = append(row, "", "")
				continue
			}
			row = append(row,
				strconv.FormatFloat(obs.BuiltUpArea, 'f', -1, 64),
				strconv.FormatFloat(obs.Population, 'f', -1, 64),
			)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", record.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
