package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/db"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/report"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/security"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/units"
)

// ReportRequest is the POST body for /api/reports.
type ReportRequest struct {
	City        string   `json:"city"`
	BaseYear    int      `json:"base_year"`
	CurrentYear int      `json:"current_year"`
	TargetYear  *int     `json:"target_year,omitempty"`
	LandRate    *float64 `json:"land_rate,omitempty"`
	PopRate     *float64 `json:"pop_rate,omitempty"`
	Units       string   `json:"units,omitempty"`
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		s.listReports(w, r)
	case http.MethodPost:
		s.createReport(w, r)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeJSONError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	reports, err := s.db.RecentReports(city, limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve reports: %v", err))
		return
	}
	if reports == nil {
		reports = []db.Report{}
	}

	if err := json.NewEncoder(w).Encode(reports); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write reports")
		return
	}
}

// downloadReport serves a generated plot for a stored report. The path
// comes from the database, but it is still validated against the report
// directory before anything is read.
func (s *Server) downloadReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	raw := r.URL.Query().Get("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusBadRequest, "invalid 'id' parameter")
		return
	}

	stored, err := s.db.GetReport(id)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	file := filepath.Join(stored.Filepath, stored.Filename)
	if err := security.ValidatePathWithinDirectory(file, s.reportDir); err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusForbidden, "report file is outside the report directory")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stored.Filename))
	http.ServeFile(w, r, file)
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "Report generation disabled")
		return
	}

	var request ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
		return
	}

	if request.City == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing 'city' field")
		return
	}

	targetUnits := request.Units
	if targetUnits == "" {
		targetUnits = s.units
	}
	if !units.IsValid(targetUnits) {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid 'units' field, valid units: "+units.GetValidUnitsString())
		return
	}

	params := report.Params{
		City:        request.City,
		BaseYear:    request.BaseYear,
		CurrentYear: request.CurrentYear,
		TargetYear:  request.TargetYear,
		LandRate:    s.landRate,
		PopRate:     s.popRate,
		Units:       targetUnits,
	}
	if request.LandRate != nil {
		params.LandRate = *request.LandRate
	}
	if request.PopRate != nil {
		params.PopRate = *request.PopRate
	}

	generated, err := s.generator.Generate(params)
	if errors.Is(err, indicator.ErrInvalidInput) {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate report: %v", err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(generated); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write report")
		return
	}
}
