package citydata

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
)

// Column header patterns in the wide-format reference CSV. Other columns
// (precomputed ratio columns, notes) are ignored; ratios are always
// recomputed from raw values so a stale stored ratio can never drift from
// the observations that produced it.
var (
	builtUpColumn    = regexp.MustCompile(`^Built-up (\d{4}) \(km²\)$`)
	populationColumn = regexp.MustCompile(`^Population (\d{4})$`)
)

type columnKind int

const (
	columnIgnore columnKind = iota
	columnCity
	columnBuiltUp
	columnPopulation
)

type columnSpec struct {
	kind columnKind
	year int
}

// ParseCSV reads the wide-format reference CSV into per-city records.
// Blank cells are skipped; a malformed numeric cell is an error naming the
// offending row and column. A year contributes an observation only when
// both its built-up and population cells are present.
func ParseCSV(r io.Reader) ([]CityRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	specs := make([]columnSpec, len(header))
	cityCol := -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case name == "City":
			specs[i] = columnSpec{kind: columnCity}
			cityCol = i
		case builtUpColumn.MatchString(name):
			year, _ := strconv.Atoi(builtUpColumn.FindStringSubmatch(name)[1])
			specs[i] = columnSpec{kind: columnBuiltUp, year: year}
		case populationColumn.MatchString(name):
			year, _ := strconv.Atoi(populationColumn.FindStringSubmatch(name)[1])
			specs[i] = columnSpec{kind: columnPopulation, year: year}
		default:
			specs[i] = columnSpec{kind: columnIgnore}
		}
	}
	if cityCol < 0 {
		return nil, fmt.Errorf("CSV header has no City column")
	}

	var records []CityRecord
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", rowNum+1, err)
		}
		rowNum++

		city := strings.TrimSpace(row[cityCol])
		if city == "" {
			continue
		}

		areas := make(map[int]float64)
		pops := make(map[int]float64)
		for i, cell := range row {
			if i >= len(specs) {
				break
			}
			spec := specs[i]
			if spec.kind != columnBuiltUp && spec.kind != columnPopulation {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s), column %q: invalid number %q", rowNum, city, header[i], cell)
			}
			if spec.kind == columnBuiltUp {
				areas[spec.year] = value
			} else {
				pops[spec.year] = value
			}
		}

		record := CityRecord{Name: city}
		for year, area := range areas {
			pop, ok := pops[year]
			if !ok {
				continue
			}
			record.Observations = append(record.Observations, indicator.TimeSeriesPoint{
				Year:        year,
				BuiltUpArea: area,
				Population:  pop,
			})
		}
		sortObservations(record.Observations)
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV contains no city rows")
	}

	return records, nil
}
