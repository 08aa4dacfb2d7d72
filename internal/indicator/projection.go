package indicator

import (
	"errors"
	"fmt"
	"math"
)

// ProjectionResult is the output of a compound-growth projection. The rate
// fields cover the cumulative span from the historical base observation
// through the projected target year, not just the projection window.
// IndicatorAvailable is false when the projected values degenerate (a
// contraction rate drove area or population to zero or below), in which
// case Rates and Ratio carry no meaning and callers should render "N/A".
type ProjectionResult struct {
	TargetYear           int         `json:"target_year"`
	ProjectedBuiltUpArea float64     `json:"projected_built_up_area"`
	ProjectedPopulation  float64     `json:"projected_population"`
	Rates                Rates       `json:"rates"`
	Ratio                RatioResult `json:"ratio"`
	IndicatorAvailable   bool        `json:"indicator_available"`
}

// Project extrapolates current forward to targetYear under constant annual
// growth rates, applied independently to built-up area and population:
//
//	projected = current * (1 + rate)^(targetYear - current.Year)
//
// Rates are fractional per-year values (0.035 for 3.5%); negative rates
// model contraction and are accepted. targetYear == current.Year is the
// exact identity. base is the original historical observation and is a
// parameter precisely so the returned ratio can be recomputed over the
// full base-to-target span; dropping it is how the source dashboards lost
// track of which base year fed a chained projection.
func Project(base, current TimeSeriesPoint, targetYear int, landRate, popRate float64, policy ThresholdPolicy) (ProjectionResult, error) {
	if targetYear < current.Year {
		return ProjectionResult{}, fmt.Errorf("%w: target year %d before current year %d", ErrInvalidInput, targetYear, current.Year)
	}

	years := float64(targetYear - current.Year)
	projected := TimeSeriesPoint{
		Year:        targetYear,
		BuiltUpArea: current.BuiltUpArea * math.Pow(1+landRate, years),
		Population:  current.Population * math.Pow(1+popRate, years),
	}

	result := ProjectionResult{
		TargetYear:           targetYear,
		ProjectedBuiltUpArea: projected.BuiltUpArea,
		ProjectedPopulation:  projected.Population,
		Ratio:                RatioResult{Classification: ClassUnknown},
	}

	rates, err := ComputeRates(base, projected)
	if err != nil {
		// Degenerate projected values still carry usable projections;
		// only the rate indicators become unavailable.
		if errors.Is(err, ErrDegenerateInput) {
			return result, nil
		}
		return ProjectionResult{}, err
	}

	result.Rates = rates
	result.Ratio = Ratio(rates.LCR, rates.PGR, policy)
	result.IndicatorAvailable = true
	return result, nil
}
