package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/units"
	"gonum.org/v1/gonum/stat"
)

// ObservationAPI is an observation with the built-up area converted to the
// requested presentation units.
type ObservationAPI struct {
	Year        int     `json:"year"`
	BuiltUpArea float64 `json:"built_up_area"`
	Population  float64 `json:"population"`
	Units       string  `json:"units"`
}

func toObservationAPI(obs indicator.TimeSeriesPoint, targetUnits string) ObservationAPI {
	return ObservationAPI{
		Year:        obs.Year,
		BuiltUpArea: units.ConvertArea(obs.BuiltUpArea, targetUnits),
		Population:  obs.Population,
		Units:       targetUnits,
	}
}

// CitySummaryAPI is one row of the city listing.
type CitySummaryAPI struct {
	Name   string         `json:"name"`
	Years  []int          `json:"years"`
	Latest ObservationAPI `json:"latest"`
}

func (s *Server) listCities(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	targetUnits, ok := s.requestUnits(r)
	if !ok {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid 'units' parameter, valid units: "+units.GetValidUnitsString())
		return
	}

	records, err := s.db.Cities()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve cities: %v", err))
		return
	}

	summaries := make([]CitySummaryAPI, 0, len(records))
	for _, record := range records {
		latest, ok := record.Latest()
		if !ok {
			continue
		}
		years := make([]int, len(record.Observations))
		for i, obs := range record.Observations {
			years[i] = obs.Year
		}
		summaries = append(summaries, CitySummaryAPI{
			Name:   record.Name,
			Years:  years,
			Latest: toObservationAPI(latest, targetUnits),
		})
	}

	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write cities")
		return
	}
}

func (s *Server) listObservations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	city := r.URL.Query().Get("city")
	if city == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing 'city' parameter")
		return
	}

	targetUnits, ok := s.requestUnits(r)
	if !ok {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid 'units' parameter, valid units: "+units.GetValidUnitsString())
		return
	}

	series, err := s.db.Observations(city)
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Failed to retrieve observations: %v", err))
		return
	}

	apiSeries := make([]ObservationAPI, len(series))
	for i, obs := range series {
		apiSeries[i] = toObservationAPI(obs, targetUnits)
	}

	if err := json.NewEncoder(w).Encode(apiSeries); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write observations")
		return
	}
}

// IndicatorAPI is the indicator computation for one city and period.
// Available is false when the current observation is degenerate; the rate
// fields are then omitted rather than zeroed.
type IndicatorAPI struct {
	City           string                   `json:"city"`
	BaseYear       int                      `json:"base_year"`
	CurrentYear    int                      `json:"current_year"`
	Available      bool                     `json:"available"`
	LCR            *float64                 `json:"lcr,omitempty"`
	PGR            *float64                 `json:"pgr,omitempty"`
	LCRPGR         *float64                 `json:"lcrpgr,omitempty"`
	Classification indicator.Classification `json:"classification"`
}

// yearParam parses a required integer query parameter.
func yearParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing '%s' parameter", name)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' parameter", name)
	}
	return value, nil
}

// rateParam parses an optional fractional rate query parameter.
func rateParam(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' parameter", name)
	}
	return value, nil
}

func (s *Server) computeIndicator(city string, baseYear, currentYear int) (IndicatorAPI, error) {
	base, current, err := s.db.ObservationPair(city, baseYear, currentYear)
	if err != nil {
		return IndicatorAPI{}, err
	}

	result := IndicatorAPI{
		City:           city,
		BaseYear:       baseYear,
		CurrentYear:    currentYear,
		Classification: indicator.ClassUnknown,
	}

	rates, err := indicator.ComputeRates(base, current)
	if errors.Is(err, indicator.ErrDegenerateInput) {
		// Indicator unavailable for this period; the caller renders N/A.
		return result, nil
	}
	if err != nil {
		return IndicatorAPI{}, err
	}

	ratio := indicator.Ratio(rates.LCR, rates.PGR, s.policy)
	result.Available = true
	result.LCR = &rates.LCR
	result.PGR = &rates.PGR
	result.LCRPGR = ratio.LCRPGR
	result.Classification = ratio.Classification
	return result, nil
}

func (s *Server) showIndicators(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	city := r.URL.Query().Get("city")
	if city == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing 'city' parameter")
		return
	}
	baseYear, err := yearParam(r, "base_year")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	currentYear, err := yearParam(r, "current_year")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.computeIndicator(city, baseYear, currentYear)
	if errors.Is(err, indicator.ErrInvalidInput) {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write indicators")
		return
	}
}

// ProjectionAPI wraps the engine's projection result with request echo
// fields and unit-converted projected area.
type ProjectionAPI struct {
	City                 string                   `json:"city"`
	BaseYear             int                      `json:"base_year"`
	CurrentYear          int                      `json:"current_year"`
	TargetYear           int                      `json:"target_year"`
	LandRate             float64                  `json:"land_rate"`
	PopRate              float64                  `json:"pop_rate"`
	Units                string                   `json:"units"`
	ProjectedBuiltUpArea float64                  `json:"projected_built_up_area"`
	ProjectedPopulation  float64                  `json:"projected_population"`
	Available            bool                     `json:"available"`
	LCR                  *float64                 `json:"lcr,omitempty"`
	PGR                  *float64                 `json:"pgr,omitempty"`
	LCRPGR               *float64                 `json:"lcrpgr,omitempty"`
	Classification       indicator.Classification `json:"classification"`
}

func (s *Server) showProjection(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	city := r.URL.Query().Get("city")
	if city == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing 'city' parameter")
		return
	}

	baseYear, err := yearParam(r, "base_year")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	currentYear, err := yearParam(r, "current_year")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	targetYear, err := yearParam(r, "target_year")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	landRate, err := rateParam(r, "land_rate", s.landRate)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	popRate, err := rateParam(r, "pop_rate", s.popRate)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	targetUnits, ok := s.requestUnits(r)
	if !ok {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid 'units' parameter, valid units: "+units.GetValidUnitsString())
		return
	}

	base, current, err := s.db.ObservationPair(city, baseYear, currentYear)
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	projection, err := indicator.Project(base, current, targetYear, landRate, popRate, s.policy)
	if errors.Is(err, indicator.ErrInvalidInput) {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := ProjectionAPI{
		City:                 city,
		BaseYear:             baseYear,
		CurrentYear:          currentYear,
		TargetYear:           projection.TargetYear,
		LandRate:             landRate,
		PopRate:              popRate,
		Units:                targetUnits,
		ProjectedBuiltUpArea: units.ConvertArea(projection.ProjectedBuiltUpArea, targetUnits),
		ProjectedPopulation:  projection.ProjectedPopulation,
		Available:            projection.IndicatorAvailable,
		Classification:       projection.Ratio.Classification,
	}
	if projection.IndicatorAvailable {
		result.LCR = &projection.Rates.LCR
		result.PGR = &projection.Rates.PGR
		result.LCRPGR = projection.Ratio.LCRPGR
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write projection")
		return
	}
}

// SummaryAPI aggregates the LCRPGR distribution across all cities for one
// indicator period.
type SummaryAPI struct {
	BaseYear        int                              `json:"base_year"`
	CurrentYear     int                              `json:"current_year"`
	CitiesCounted   int                              `json:"cities_counted"`
	CitiesSkipped   int                              `json:"cities_skipped"`
	UndefinedRatios int                              `json:"undefined_ratios"`
	Mean            float64                          `json:"mean"`
	StdDev          float64                          `json:"stddev"`
	Min             float64                          `json:"min"`
	P50             float64                          `json:"p50"`
	P90             float64                          `json:"p90"`
	Max             float64                          `json:"max"`
	Classifications map[indicator.Classification]int `json:"classifications"`
}

func (s *Server) showSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	baseYear, err := yearParam(r, "base_year")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	currentYear, err := yearParam(r, "current_year")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if currentYear <= baseYear {
		s.writeJSONError(w, http.StatusBadRequest, "current_year must be after base_year")
		return
	}

	records, err := s.db.Cities()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve cities: %v", err))
		return
	}

	summary := SummaryAPI{
		BaseYear:        baseYear,
		CurrentYear:     currentYear,
		Classifications: make(map[indicator.Classification]int),
	}

	var ratios []float64
	for _, record := range records {
		base, okBase := record.ObservationAt(baseYear)
		current, okCurrent := record.ObservationAt(currentYear)
		if !okBase || !okCurrent {
			summary.CitiesSkipped++
			continue
		}

		rates, err := indicator.ComputeRates(base, current)
		if err != nil {
			summary.CitiesSkipped++
			continue
		}

		ratio := indicator.Ratio(rates.LCR, rates.PGR, s.policy)
		summary.Classifications[ratio.Classification]++
		if !ratio.Defined() {
			summary.UndefinedRatios++
			continue
		}
		ratios = append(ratios, *ratio.LCRPGR)
	}

	summary.CitiesCounted = len(ratios)
	if len(ratios) > 0 {
		sort.Float64s(ratios)
		summary.Mean = stat.Mean(ratios, nil)
		// Sample stddev of a single value is NaN, which JSON cannot carry.
		if len(ratios) >= 2 {
			summary.StdDev = stat.StdDev(ratios, nil)
		}
		summary.Min = ratios[0]
		summary.Max = ratios[len(ratios)-1]
		summary.P50 = stat.Quantile(0.5, stat.Empirical, ratios, nil)
		summary.P90 = stat.Quantile(0.9, stat.Empirical, ratios, nil)
	}

	if err := json.NewEncoder(w).Encode(summary); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write summary")
		return
	}
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Render to a buffer first so an error (e.g. empty database) can still
	// become a JSON status instead of a truncated 200.
	var buf bytes.Buffer
	if err := s.db.ExportCSV(&buf); err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Failed to export CSV: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="metrics.csv"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("failed to write CSV export: %v", err)
	}
}
