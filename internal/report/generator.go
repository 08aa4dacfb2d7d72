package report

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/db"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/security"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/units"
	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Params describes one report generation run.
type Params struct {
	City        string
	BaseYear    int
	CurrentYear int
	TargetYear  *int // optional projection
	LandRate    float64
	PopRate     float64
	Units       string
}

// Generator renders growth plots for a city and records each run in the
// database.
type Generator struct {
	db        *db.DB
	outputDir string
	policy    indicator.ThresholdPolicy
}

// NewGenerator creates a Generator writing PNGs under outputDir.
func NewGenerator(database *db.DB, outputDir string, policy indicator.ThresholdPolicy) *Generator {
	return &Generator{
		db:        database,
		outputDir: outputDir,
		policy:    policy,
	}
}

// primaryPlot is the filename recorded as the run's main artifact.
const primaryPlot = "built_up_area.png"

// citySlug makes a city name safe for use as a directory component.
func citySlug(city string) string {
	return strings.ToLower(security.SanitizeFilename(city))
}

// Generate validates params against the stored observations, renders the
// plots for the run and records a report row. The returned report carries
// the run directory in Filepath.
func (g *Generator) Generate(params Params) (*db.Report, error) {
	if params.City == "" {
		return nil, fmt.Errorf("missing city")
	}
	if !units.IsValid(params.Units) {
		return nil, fmt.Errorf("invalid units %q, valid units: %s", params.Units, units.GetValidUnitsString())
	}

	series, err := g.db.Observations(params.City)
	if err != nil {
		return nil, err
	}

	base, current, err := g.db.ObservationPair(params.City, params.BaseYear, params.CurrentYear)
	if err != nil {
		return nil, err
	}

	// Degenerate observations still get plots; only structurally invalid
	// periods are rejected.
	if _, err := indicator.ComputeRates(base, current); err != nil && !errors.Is(err, indicator.ErrDegenerateInput) {
		return nil, err
	}

	var projection *indicator.ProjectionResult
	if params.TargetYear != nil {
		result, err := indicator.Project(base, current, *params.TargetYear, params.LandRate, params.PopRate, g.policy)
		if err != nil {
			return nil, err
		}
		projection = &result
	}

	runID := uuid.New().String()
	runDir := filepath.Join(g.outputDir, citySlug(params.City), time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report dir: %w", err)
	}

	if err := g.renderAreaPlot(runDir, params, series, projection); err != nil {
		return nil, err
	}
	if err := g.renderPopulationPlot(runDir, params, series, projection); err != nil {
		return nil, err
	}

	report := &db.Report{
		RunID:       runID,
		City:        params.City,
		BaseYear:    params.BaseYear,
		CurrentYear: params.CurrentYear,
		TargetYear:  params.TargetYear,
		Units:       params.Units,
		Filepath:    runDir,
		Filename:    primaryPlot,
	}
	if err := g.db.CreateReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

var (
	observedColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	projectedColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

func (g *Generator) renderAreaPlot(runDir string, params Params, series []indicator.TimeSeriesPoint, projection *indicator.ProjectionResult) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Built-up Area", params.City)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = fmt.Sprintf("Built-up area (%s)", params.Units)

	pts := make(plotter.XYs, 0, len(series))
	for _, obs := range series {
		pts = append(pts, plotter.XY{
			X: float64(obs.Year),
			Y: units.ConvertArea(obs.BuiltUpArea, params.Units),
		})
	}

	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("area series: %w", err)
	}
	line.Color = observedColor
	line.Width = vg.Points(1)
	scatter.Color = observedColor
	p.Add(line, scatter)
	p.Legend.Add("observed", line)

	if projection != nil {
		last := series[len(series)-1]
		projPts := plotter.XYs{
			{X: float64(last.Year), Y: units.ConvertArea(last.BuiltUpArea, params.Units)},
			{X: float64(projection.TargetYear), Y: units.ConvertArea(projection.ProjectedBuiltUpArea, params.Units)},
		}
		projLine, projScatter, err := plotter.NewLinePoints(projPts)
		if err != nil {
			return fmt.Errorf("area projection: %w", err)
		}
		projLine.Color = projectedColor
		projLine.Width = vg.Points(1)
		projLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		projScatter.Color = projectedColor
		p.Add(projLine, projScatter)
		p.Legend.Add("projected", projLine)
	}

	p.Legend.Top = true
	p.Legend.Left = true

	file := filepath.Join(runDir, primaryPlot)
	if err := p.Save(10*vg.Inch, 5*vg.Inch, file); err != nil {
		return fmt.Errorf("save area plot: %w", err)
	}
	return nil
}

func (g *Generator) renderPopulationPlot(runDir string, params Params, series []indicator.TimeSeriesPoint, projection *indicator.ProjectionResult) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Population", params.City)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Population"

	pts := make(plotter.XYs, 0, len(series))
	for _, obs := range series {
		pts = append(pts, plotter.XY{X: float64(obs.Year), Y: obs.Population})
	}

	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("population series: %w", err)
	}
	line.Color = observedColor
	line.Width = vg.Points(1)
	scatter.Color = observedColor
	p.Add(line, scatter)
	p.Legend.Add("observed", line)

	if projection != nil {
		last := series[len(series)-1]
		projPts := plotter.XYs{
			{X: float64(last.Year), Y: last.Population},
			{X: float64(projection.TargetYear), Y: projection.ProjectedPopulation},
		}
		projLine, projScatter, err := plotter.NewLinePoints(projPts)
		if err != nil {
			return fmt.Errorf("population projection: %w", err)
		}
		projLine.Color = projectedColor
		projLine.Width = vg.Points(1)
		projLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		projScatter.Color = projectedColor
		p.Add(projLine, projScatter)
		p.Legend.Add("projected", projLine)
	}

	p.Legend.Top = true
	p.Legend.Left = true

	file := filepath.Join(runDir, "population.png")
	if err := p.Save(10*vg.Inch, 5*vg.Inch, file); err != nil {
		return fmt.Errorf("save population plot: %w", err)
	}
	return nil
}
