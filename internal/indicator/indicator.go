// Package indicator computes the UN-Habitat SDG 11.3.1 land-consumption
// indicators for a geographic unit: the land consumption rate (LCR), the
// population growth rate (PGR), their ratio (LCRPGR), and a growth-type
// classification derived from the ratio.
//
// Rates use the logarithmic (continuous compounding) form from the UN
// methodology, not simple percentage deltas. All operations are pure
// functions of their inputs; the package holds no state.
package indicator

import (
	"errors"
	"fmt"
	"math"
)

// TimeSeriesPoint is a single observation of a geographic unit: built-up
// area and population in a given year. The area unit (km², m²) is the
// caller's choice but must be consistent across one computation.
type TimeSeriesPoint struct {
	Year        int     `json:"year"`
	BuiltUpArea float64 `json:"built_up_area"`
	Population  float64 `json:"population"`
}

// Sentinel errors for the two failure classes. Wrapped errors carry the
// offending field, so callers match with errors.Is.
var (
	// ErrInvalidInput marks structurally nonsensical input: non-positive
	// base values or a non-increasing year span. Fatal to the computation;
	// no derived value may be used.
	ErrInvalidInput = errors.New("invalid indicator input")

	// ErrDegenerateInput marks structurally valid input whose logarithm is
	// undefined (current area or population dropped to zero or below).
	// Recoverable: callers should render the indicator as unavailable.
	ErrDegenerateInput = errors.New("degenerate indicator input")
)

// Rates holds the pair of annualized logarithmic growth rates.
type Rates struct {
	LCR float64 `json:"lcr"`
	PGR float64 `json:"pgr"`
}

// ComputeRates returns the annualized land consumption and population
// growth rates between two observations:
//
//	lcr = ln(current.area / base.area) / (current.year - base.year)
//	pgr = ln(current.pop  / base.pop)  / (current.year - base.year)
func ComputeRates(base, current TimeSeriesPoint) (Rates, error) {
	if current.Year <= base.Year {
		return Rates{}, fmt.Errorf("%w: current year %d must be after base year %d", ErrInvalidInput, current.Year, base.Year)
	}
	if base.BuiltUpArea <= 0 {
		return Rates{}, fmt.Errorf("%w: base built-up area %g must be positive", ErrInvalidInput, base.BuiltUpArea)
	}
	if base.Population <= 0 {
		return Rates{}, fmt.Errorf("%w: base population %g must be positive", ErrInvalidInput, base.Population)
	}
	if current.BuiltUpArea <= 0 {
		return Rates{}, fmt.Errorf("%w: current built-up area %g", ErrDegenerateInput, current.BuiltUpArea)
	}
	if current.Population <= 0 {
		return Rates{}, fmt.Errorf("%w: current population %g", ErrDegenerateInput, current.Population)
	}

	span := float64(current.Year - base.Year)
	return Rates{
		LCR: math.Log(current.BuiltUpArea/base.BuiltUpArea) / span,
		PGR: math.Log(current.Population/base.Population) / span,
	}, nil
}

// Classification is the growth type derived from the LCRPGR ratio. It is
// always recomputed from the ratio, never stored independently.
type Classification string

const (
	ClassCompact  Classification = "compact"
	ClassBalanced Classification = "balanced"
	ClassSprawl   Classification = "sprawl"
	ClassUnknown  Classification = "unknown"
)

// ThresholdPolicy maps an LCRPGR value to a Classification. The source
// dashboards disagreed on cutoffs (0.8/1.2 in some, 1.0 in others);
// DefaultThresholds is the single canonical policy here, and the values
// stay configurable so a different policy can be loaded from config.
type ThresholdPolicy struct {
	// CompactMax is the inclusive upper bound for "compact" growth.
	CompactMax float64 `json:"compact_max"`
	// BalancedMax is the inclusive upper bound for "balanced" growth.
	// Anything above it classifies as sprawl.
	BalancedMax float64 `json:"balanced_max"`
}

// DefaultThresholds is the canonical classification policy:
// lcrpgr <= 1.0 compact, <= 1.2 balanced, > 1.2 sprawl.
var DefaultThresholds = ThresholdPolicy{CompactMax: 1.0, BalancedMax: 1.2}

// Validate checks that the policy bounds are finite and ordered.
func (p ThresholdPolicy) Validate() error {
	if math.IsNaN(p.CompactMax) || math.IsInf(p.CompactMax, 0) {
		return fmt.Errorf("compact_max must be finite, got %g", p.CompactMax)
	}
	if math.IsNaN(p.BalancedMax) || math.IsInf(p.BalancedMax, 0) {
		return fmt.Errorf("balanced_max must be finite, got %g", p.BalancedMax)
	}
	if p.BalancedMax < p.CompactMax {
		return fmt.Errorf("balanced_max %g must be >= compact_max %g", p.BalancedMax, p.CompactMax)
	}
	return nil
}

// Classify maps an LCRPGR value to its growth type under this policy.
func (p ThresholdPolicy) Classify(lcrpgr float64) Classification {
	switch {
	case math.IsNaN(lcrpgr):
		return ClassUnknown
	case lcrpgr <= p.CompactMax:
		return ClassCompact
	case lcrpgr <= p.BalancedMax:
		return ClassBalanced
	default:
		return ClassSprawl
	}
}

// RatioResult is the LCRPGR ratio with its classification. LCRPGR is nil
// when the ratio is undefined (pgr == 0); the undefined case is a tagged
// sentinel, never an error and never a numeric default.
type RatioResult struct {
	LCRPGR         *float64       `json:"lcrpgr"`
	Classification Classification `json:"classification"`
}

// Defined reports whether the ratio carries a numeric value.
func (r RatioResult) Defined() bool { return r.LCRPGR != nil }

// Ratio computes lcr/pgr and classifies it under the given policy. A zero
// pgr yields the undefined sentinel (nil ratio, ClassUnknown): zero
// population growth with nonzero land growth has no meaningful ratio, and
// coercing it to 0 would misreport maximal sprawl as perfect compactness.
func Ratio(lcr, pgr float64, policy ThresholdPolicy) RatioResult {
	if pgr == 0 {
		return RatioResult{Classification: ClassUnknown}
	}
	v := lcr / pgr
	return RatioResult{LCRPGR: &v, Classification: policy.Classify(v)}
}
