// Package citydata loads the urban-growth reference table: per-city
// built-up area and population observations across the survey years.
//
// The canonical source is a wide-format CSV (one row per city, one
// "Built-up <year> (km²)" / "Population <year>" column pair per survey
// year) published alongside the dashboard assets. A snapshot of the same
// file is embedded so the service can start without network access.
package citydata

import (
	"sort"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
)

// CityRecord is the parsed time series for one city. Observations are
// sorted by year; a year appears only when the source row carried both a
// built-up area and a population value for it.
type CityRecord struct {
	Name         string                      `json:"name"`
	Observations []indicator.TimeSeriesPoint `json:"observations"`
}

// Latest returns the most recent observation and true, or a zero point and
// false when the record is empty.
func (c CityRecord) Latest() (indicator.TimeSeriesPoint, bool) {
	if len(c.Observations) == 0 {
		return indicator.TimeSeriesPoint{}, false
	}
	return c.Observations[len(c.Observations)-1], true
}

// ObservationAt returns the observation for the given year.
func (c CityRecord) ObservationAt(year int) (indicator.TimeSeriesPoint, bool) {
	for _, obs := range c.Observations {
		if obs.Year == year {
			return obs, true
		}
	}
	return indicator.TimeSeriesPoint{}, false
}

func sortObservations(obs []indicator.TimeSeriesPoint) {
	sort.Slice(obs, func(i, j int) bool { return obs[i].Year < obs[j].Year })
}
