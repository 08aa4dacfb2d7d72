package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/units"
)

// DefaultDataURL is the canonical remote reference CSV. The embedded
// snapshot in internal/citydata is used when the remote is unreachable.
const DefaultDataURL = "https://raw.githubusercontent.com/MohammedBaz/MVPUrbanSprawl/main/saudi_cities_sdg1131_1975_2025.csv"

// Config represents the service configuration loaded from a JSON file.
// Fields are pointers so a partial config file only overrides what it
// names; the Get* methods supply defaults for the rest.
type Config struct {
	// Classification thresholds (LCRPGR cutoffs)
	CompactMax  *float64 `json:"compact_max,omitempty"`
	BalancedMax *float64 `json:"balanced_max,omitempty"`

	// Default annual growth rates for projections when the request
	// does not supply its own (fractional per-year, 0.035 = 3.5%)
	DefaultLandRate *float64 `json:"default_land_rate,omitempty"`
	DefaultPopRate  *float64 `json:"default_pop_rate,omitempty"`

	// Presentation units for built-up area
	Units *string `json:"units,omitempty"`

	// Reference data source
	DataURL *string `json:"data_url,omitempty"`

	// RefreshInterval is how often the remote CSV is re-fetched,
	// as a duration string like "6h". Empty disables refresh.
	RefreshInterval *string `json:"refresh_interval,omitempty"`

	// ReportDir is where generated report plots are written
	ReportDir *string `json:"report_dir,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. Fields omitted from the file keep
// their defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.CompactMax != nil || c.BalancedMax != nil {
		if err := c.Thresholds().Validate(); err != nil {
			return err
		}
	}

	// Rates below -100% have no compound-growth meaning
	if c.DefaultLandRate != nil && *c.DefaultLandRate < -1 {
		return fmt.Errorf("default_land_rate must be >= -1, got %f", *c.DefaultLandRate)
	}
	if c.DefaultPopRate != nil && *c.DefaultPopRate < -1 {
		return fmt.Errorf("default_pop_rate must be >= -1, got %f", *c.DefaultPopRate)
	}

	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("invalid units %q, valid units: %s", *c.Units, units.GetValidUnitsString())
	}

	if c.RefreshInterval != nil && *c.RefreshInterval != "" {
		if _, err := time.ParseDuration(*c.RefreshInterval); err != nil {
			return fmt.Errorf("invalid refresh_interval '%s': %w", *c.RefreshInterval, err)
		}
	}

	return nil
}

// Thresholds returns the classification policy, falling back to the
// canonical defaults for unset cutoffs.
func (c *Config) Thresholds() indicator.ThresholdPolicy {
	policy := indicator.DefaultThresholds
	if c.CompactMax != nil {
		policy.CompactMax = *c.CompactMax
	}
	if c.BalancedMax != nil {
		policy.BalancedMax = *c.BalancedMax
	}
	return policy
}

// GetDefaultLandRate returns the default land growth rate for projections.
func (c *Config) GetDefaultLandRate() float64 {
	if c.DefaultLandRate == nil {
		return 0.035 // default
	}
	return *c.DefaultLandRate
}

// GetDefaultPopRate returns the default population growth rate for projections.
func (c *Config) GetDefaultPopRate() float64 {
	if c.DefaultPopRate == nil {
		return 0.025 // default
	}
	return *c.DefaultPopRate
}

// GetUnits returns the presentation units for built-up area.
func (c *Config) GetUnits() string {
	if c.Units == nil || *c.Units == "" {
		return units.KM2 // default
	}
	return *c.Units
}

// GetDataURL returns the remote reference CSV URL.
func (c *Config) GetDataURL() string {
	if c.DataURL == nil || *c.DataURL == "" {
		return DefaultDataURL
	}
	return *c.DataURL
}

// GetRefreshInterval parses and returns the RefreshInterval. Zero means
// refresh is disabled.
func (c *Config) GetRefreshInterval() time.Duration {
	if c.RefreshInterval == nil || *c.RefreshInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(*c.RefreshInterval)
	if err != nil {
		return 0
	}
	return d
}

// GetReportDir returns the directory for generated report output.
func (c *Config) GetReportDir() string {
	if c.ReportDir == nil || *c.ReportDir == "" {
		return "reports" // default
	}
	return *c.ReportDir
}
