package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/config"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/db"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/httputil"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/report"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/units"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db        *db.DB
	policy    indicator.ThresholdPolicy
	units     string
	landRate  float64
	popRate   float64
	reportDir string
	generator *report.Generator
}

// NewServer builds the API server from the loaded configuration. The
// generator may be nil, in which case report generation is disabled.
func NewServer(database *db.DB, cfg *config.Config, generator *report.Generator) *Server {
	return &Server{
		db:        database,
		policy:    cfg.Thresholds(),
		units:     cfg.GetUnits(),
		landRate:  cfg.GetDefaultLandRate(),
		popRate:   cfg.GetDefaultPopRate(),
		reportDir: cfg.GetReportDir(),
		generator: generator,
	}
}

// SetReportDir overrides the directory report downloads are restricted to.
// Used by tests that generate into a temporary directory.
func (s *Server) SetReportDir(dir string) {
	s.reportDir = dir
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cities", s.listCities)
	mux.HandleFunc("/api/observations", s.listObservations)
	mux.HandleFunc("/api/indicators", s.showIndicators)
	mux.HandleFunc("/api/projection", s.showProjection)
	mux.HandleFunc("/api/summary", s.showSummary)
	mux.HandleFunc("/api/export.csv", s.exportCSV)
	mux.HandleFunc("/api/reports", s.handleReports)
	mux.HandleFunc("/api/reports/download", s.downloadReport)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/charts/timeseries", s.chartTimeSeries)
	mux.HandleFunc("/charts/classification", s.chartClassification)
	mux.HandleFunc("/charts/dashboard", s.chartDashboard)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	httputil.WriteJSONError(w, status, msg)
}

// requestUnits returns the presentation units for a request, preferring
// the query parameter over the server default.
func (s *Server) requestUnits(r *http.Request) (string, bool) {
	u := r.URL.Query().Get("units")
	if u == "" {
		return s.units, true
	}
	if !units.IsValid(u) {
		return "", false
	}
	return u, true
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	config := map[string]interface{}{
		"units":             s.units,
		"compact_max":       s.policy.CompactMax,
		"balanced_max":      s.policy.BalancedMax,
		"default_land_rate": s.landRate,
		"default_pop_rate":  s.popRate,
		"version":           version.Version,
	}

	if err := json.NewEncoder(w).Encode(config); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write config")
		return
	}
}
