package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := Empty()

	if got := cfg.Thresholds(); got != indicator.DefaultThresholds {
		t.Errorf("Thresholds() = %+v, want defaults", got)
	}
	if got := cfg.GetDefaultLandRate(); got != 0.035 {
		t.Errorf("GetDefaultLandRate() = %v", got)
	}
	if got := cfg.GetDefaultPopRate(); got != 0.025 {
		t.Errorf("GetDefaultPopRate() = %v", got)
	}
	if got := cfg.GetUnits(); got != "km2" {
		t.Errorf("GetUnits() = %q", got)
	}
	if got := cfg.GetRefreshInterval(); got != 0 {
		t.Errorf("GetRefreshInterval() = %v, want 0", got)
	}
	if got := cfg.GetReportDir(); got != "reports" {
		t.Errorf("GetReportDir() = %q", got)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfig(t, `{"compact_max": 0.8, "units": "ha", "refresh_interval": "6h"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	policy := cfg.Thresholds()
	if policy.CompactMax != 0.8 {
		t.Errorf("CompactMax = %v, want 0.8", policy.CompactMax)
	}
	if policy.BalancedMax != 1.2 {
		t.Errorf("BalancedMax = %v, want default 1.2", policy.BalancedMax)
	}
	if cfg.GetUnits() != "ha" {
		t.Errorf("GetUnits() = %q", cfg.GetUnits())
	}
	if cfg.GetRefreshInterval() != 6*time.Hour {
		t.Errorf("GetRefreshInterval() = %v", cfg.GetRefreshInterval())
	}
	// Untouched fields keep defaults
	if cfg.GetDefaultLandRate() != 0.035 {
		t.Errorf("GetDefaultLandRate() = %v", cfg.GetDefaultLandRate())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"reversed thresholds", `{"compact_max": 1.5, "balanced_max": 1.2}`},
		{"bad units", `{"units": "acres"}`},
		{"bad refresh interval", `{"refresh_interval": "soon"}`},
		{"land rate below -1", `{"default_land_rate": -2}`},
		{"malformed json", `{"units": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted non-json extension")
	}
}
