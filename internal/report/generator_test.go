package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/citydata"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/db"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T) (*Generator, *db.DB, string) {
	t.Helper()

	database, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	records, err := citydata.ParseCSV(strings.NewReader(testutil.MetricsCSV))
	require.NoError(t, err)
	require.NoError(t, database.LoadSnapshot(records))

	outputDir := t.TempDir()
	return NewGenerator(database, outputDir, indicator.DefaultThresholds), database, outputDir
}

func TestGenerate(t *testing.T) {
	generator, database, outputDir := newTestGenerator(t)

	report, err := generator.Generate(Params{
		City:        "Riyadh",
		BaseYear:    2015,
		CurrentYear: 2020,
		Units:       "km2",
	})
	require.NoError(t, err)

	assert.NotZero(t, report.ID)
	assert.NotEmpty(t, report.RunID)
	assert.True(t, strings.HasPrefix(report.Filepath, filepath.Join(outputDir, "riyadh")),
		"run dir %q not under city dir", report.Filepath)

	for _, name := range []string{"built_up_area.png", "population.png"} {
		info, err := os.Stat(filepath.Join(report.Filepath, name))
		require.NoError(t, err, "missing plot %s", name)
		assert.NotZero(t, info.Size(), "plot %s is empty", name)
	}

	stored, err := database.GetReport(report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, stored.RunID)
	assert.Equal(t, "Riyadh", stored.City)
	assert.Nil(t, stored.TargetYear)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestGenerateWithProjection(t *testing.T) {
	generator, _, _ := newTestGenerator(t)

	target := 2035
	report, err := generator.Generate(Params{
		City:        "Jeddah",
		BaseYear:    2015,
		CurrentYear: 2025,
		TargetYear:  &target,
		LandRate:    0.03,
		PopRate:     0.02,
		Units:       "ha",
	})
	require.NoError(t, err)

	require.NotNil(t, report.TargetYear)
	assert.Equal(t, 2035, *report.TargetYear)
	assert.Equal(t, "ha", report.Units)
}

func TestGenerateErrors(t *testing.T) {
	generator, _, _ := newTestGenerator(t)

	target2010 := 2010
	tests := []struct {
		name   string
		params Params
	}{
		{"missing city", Params{BaseYear: 2015, CurrentYear: 2020, Units: "km2"}},
		{"bad units", Params{City: "Riyadh", BaseYear: 2015, CurrentYear: 2020, Units: "acres"}},
		{"unknown city", Params{City: "Atlantis", BaseYear: 2015, CurrentYear: 2020, Units: "km2"}},
		{"reversed years", Params{City: "Riyadh", BaseYear: 2020, CurrentYear: 2015, Units: "km2"}},
		{"missing year", Params{City: "Riyadh", BaseYear: 2015, CurrentYear: 2021, Units: "km2"}},
		{"target before current", Params{City: "Riyadh", BaseYear: 2015, CurrentYear: 2020, TargetYear: &target2010, Units: "km2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := generator.Generate(tt.params)
			assert.Error(t, err)
		})
	}
}

func TestCitySlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Riyadh", "riyadh"},
		{"Khamis Mushait", "khamis_mushait"},
		{"a/b", "a_b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, citySlug(tt.in), "citySlug(%q)", tt.in)
	}
}
