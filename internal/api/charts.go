package api

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"net/url"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/units"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// chartTimeSeries renders an HTML page with built-up area and population
// line charts for one city using go-echarts.
// Query params:
//   - city (required)
//   - units (optional; defaults to the configured units)
func (s *Server) chartTimeSeries(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusBadRequest, "Missing 'city' parameter")
		return
	}

	targetUnits, ok := s.requestUnits(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusBadRequest, "Invalid 'units' parameter, valid units: "+units.GetValidUnitsString())
		return
	}

	series, err := s.db.Observations(city)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Failed to retrieve observations: %v", err))
		return
	}

	years := make([]string, len(series))
	areaData := make([]opts.LineData, len(series))
	popData := make([]opts.LineData, len(series))
	for i, obs := range series {
		years[i] = fmt.Sprintf("%d", obs.Year)
		areaData[i] = opts.LineData{Value: units.ConvertArea(obs.BuiltUpArea, targetUnits)}
		popData[i] = opts.LineData{Value: obs.Population}
	}

	areaLine := charts.NewLine()
	areaLine.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: city + " Growth", Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: city + " Built-up Area", Subtitle: fmt.Sprintf("units=%s points=%d", targetUnits, len(series))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("Area (%s)", targetUnits)}),
	)
	areaLine.SetXAxis(years).
		AddSeries("built-up area", areaData,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	popLine := charts.NewLine()
	popLine.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: city + " Population"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Population"}),
	)
	popLine.SetXAxis(years).
		AddSeries("population", popData,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(areaLine, popLine)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// chartClassification renders a bar chart of LCRPGR per city for a period,
// with one bar per city that has a defined ratio.
// Query params:
//   - base_year, current_year (required)
func (s *Server) chartClassification(w http.ResponseWriter, r *http.Request) {
	baseYear, err := yearParam(r, "base_year")
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	currentYear, err := yearParam(r, "current_year")
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.db.Cities()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve cities: %v", err))
		return
	}

	var names []string
	var data []opts.BarData
	for _, record := range records {
		result, err := s.computeIndicator(record.Name, baseYear, currentYear)
		if err != nil || !result.Available || result.LCRPGR == nil {
			continue
		}
		names = append(names, record.Name)
		data = append(data, opts.BarData{Value: *result.LCRPGR})
	}

	if len(data) == 0 {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusNotFound, "no cities with a defined ratio for this period")
		return
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "LCRPGR by City", Width: "1100px", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "LCRPGR by City",
			Subtitle: fmt.Sprintf("%d-%d, compact<=%.2f balanced<=%.2f", baseYear, currentYear, s.policy.CompactMax, s.policy.BalancedMax),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "LCRPGR"}),
	)
	bar.SetXAxis(names).
		AddSeries("lcrpgr", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
			charts.WithMarkLineNameYAxisItemOpts(
				opts.MarkLineNameYAxisItem{Name: "compact", YAxis: s.policy.CompactMax},
				opts.MarkLineNameYAxisItem{Name: "balanced", YAxis: s.policy.BalancedMax},
			),
		)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
<title>Urban Sprawl Dashboard%s</title>
<style>
body { font-family: sans-serif; margin: 12px; background: #fafafa; }
h1 { font-size: 1.3em; }
iframe { border: 1px solid #ccc; background: #fff; margin-bottom: 12px; }
</style>
</head>
<body>
<h1>Urban Sprawl Dashboard%s</h1>
<iframe src="/charts/timeseries%s" width="960" height="920"></iframe>
<iframe src="/charts/classification%s" width="1160" height="560"></iframe>
</body>
</html>
`

// chartDashboard renders a simple dashboard with iframes to the chart pages.
func (s *Server) chartDashboard(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")

	title := ""
	tsQuery := ""
	if city != "" {
		title = " - " + html.EscapeString(city)
		tsQuery = "?city=" + url.QueryEscape(city)
	}

	baseYear := r.URL.Query().Get("base_year")
	currentYear := r.URL.Query().Get("current_year")
	classQuery := ""
	if baseYear != "" && currentYear != "" {
		classQuery = "?base_year=" + url.QueryEscape(baseYear) + "&current_year=" + url.QueryEscape(currentYear)
	}

	doc := fmt.Sprintf(dashboardHTML, title, title, html.EscapeString(tsQuery), html.EscapeString(classQuery))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}
