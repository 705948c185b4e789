package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()

	t.Run("relative entries resolve against base", func(t *testing.T) {
		cfg := Default().Paths
		cfg.BaseDir = base

		paths, err := NewPaths(cfg)
		require.NoError(t, err)

		assert.Equal(t, base, paths.BaseDir)
		assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
		assert.Equal(t, filepath.Join(base, "exports"), paths.ExportsDir)
		assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
		assert.Equal(t, filepath.Join(base, "data", "Sample - Superstore.csv"), paths.InputFile)
	})

	t.Run("absolute entries are kept", func(t *testing.T) {
		abs := filepath.Join(t.TempDir(), "elsewhere")
		cfg := Default().Paths
		cfg.BaseDir = base
		cfg.ExportsDir = abs

		paths, err := NewPaths(cfg)
		require.NoError(t, err)
		assert.Equal(t, abs, paths.ExportsDir)
		assert.Equal(t, filepath.Join(abs, "monthly_forecasts.csv"), paths.MonthlyForecastsCSV)
	})

	t.Run("empty base uses working directory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		paths, err := NewPaths(Default().Paths)
		require.NoError(t, err)
		assert.Equal(t, wd, paths.BaseDir)
	})

	t.Run("well-known files", func(t *testing.T) {
		cfg := Default().Paths
		cfg.BaseDir = base
		paths, err := NewPaths(cfg)
		require.NoError(t, err)

		dataFiles := map[string]string{
			paths.HistoricalCSV: "sales_historical.csv",
			paths.CleanedCSV:    "sales_cleaned.csv",
			paths.DailyCSV:      "sales_daily.csv",
			paths.MonthlyCSV:    "sales_monthly.csv",
		}
		for path, name := range dataFiles {
			assert.True(t, strings.HasPrefix(path, paths.DataDir), path)
			assert.Equal(t, name, filepath.Base(path))
		}

		exportFiles := map[string]string{
			paths.SalesWithForecastsCSV: "sales_with_forecasts.csv",
			paths.DailyForecastsCSV:     "daily_forecasts.csv",
			paths.MonthlyForecastsCSV:   "monthly_forecasts.csv",
			paths.KPISummaryCSV:         "kpi_summary.csv",
			paths.CategoryAnalysisCSV:   "category_analysis.csv",
			paths.StoreAnalysisCSV:      "store_analysis.csv",
			paths.RegionAnalysisCSV:     "region_analysis.csv",
		}
		for path, name := range exportFiles {
			assert.True(t, strings.HasPrefix(path, paths.ExportsDir), path)
			assert.Equal(t, name, filepath.Base(path))
		}
	})
}

// TestEnsureDirectories tests directory creation functionality
func TestEnsureDirectories(t *testing.T) {
	cfg := Default().Paths
	cfg.BaseDir = t.TempDir()
	paths, err := NewPaths(cfg)
	require.NoError(t, err)

	t.Run("creates all directories", func(t *testing.T) {
		require.NoError(t, paths.EnsureDirectories())

		assert.DirExists(t, paths.DataDir)
		assert.DirExists(t, paths.ExportsDir)
		assert.DirExists(t, paths.LogsDir)
	})

	t.Run("idempotent - can be called multiple times", func(t *testing.T) {
		require.NoError(t, paths.EnsureDirectories())
		require.NoError(t, paths.EnsureDirectories())
		assert.DirExists(t, paths.DataDir)
	})
}

func TestResolveLogFile(t *testing.T) {
	paths := &Paths{BaseDir: "/srv/sales"}

	assert.Equal(t, filepath.Join("/srv/sales", "logs/pipeline.log"),
		paths.ResolveLogFile(LoggingConfig{FilePath: "logs/pipeline.log"}))
	assert.Equal(t, "/var/log/sf.log", paths.ResolveLogFile(LoggingConfig{FilePath: "/var/log/sf.log"}))
	assert.Equal(t, "", paths.ResolveLogFile(LoggingConfig{}))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(file, []byte("Date\n"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "absent.csv")))
}
