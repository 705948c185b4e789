package operations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesforecast/internal/config"
	apperrors "salesforecast/internal/errors"
	"salesforecast/internal/forecast"
	logtest "salesforecast/internal/shared/testutil"
	"salesforecast/pkg/contracts/domain"
)

// setupPipeline writes a raw sales file with the given number of days and returns stage options
func setupPipeline(t *testing.T, days int) StageOptions {
	t.Helper()

	paths, err := config.NewPaths(config.PathsConfig{
		BaseDir:    t.TempDir(),
		DataDir:    config.DefaultDataDir,
		ExportsDir: config.DefaultExportsDir,
		LogsDir:    config.DefaultLogsDir,
		InputFile:  "raw/superstore.csv",
	})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	var b strings.Builder
	b.WriteString("Row ID,Order ID,Order Date,City,Region,Category,Sales,Quantity\n")
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	row := 1
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format("1/2/2006")
		fmt.Fprintf(&b, "%d,CA-%d,%s,Austin,Central,Furniture,%d.50,2\n", row, d, date, 100+d)
		row++
		fmt.Fprintf(&b, "%d,CA-%d,%s,Boston,East,Technology,50,1\n", row, d, date)
		row++
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.InputFile), 0755))
	require.NoError(t, os.WriteFile(paths.InputFile, []byte(b.String()), 0644))

	opts := forecast.DefaultOptions()
	opts.HorizonDays = 30

	return StageOptions{
		Paths:    paths,
		Ingest:   config.IngestConfig{FallbackEncoding: "windows-1252"},
		Forecast: opts,
	}
}

func newPipeline(t *testing.T, opts StageOptions) *Manager {
	t.Helper()
	logger, _ := logtest.NewTestLogger(t)
	m, err := NewPipelineManager(NewConfig(config.PipelineConfig{StageTimeout: time.Minute}), opts, nil, logger)
	require.NoError(t, err)
	return m
}

func TestPipeline_EndToEnd(t *testing.T) {
	opts := setupPipeline(t, 20)
	p := opts.Paths
	m := newPipeline(t, opts)

	assert.Equal(t, []string{StageIDIngest, StageIDAnalytics, StageIDForecast}, m.GetRegistry().ListIDs())

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "run-e2e"})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)

	want := []string{
		p.HistoricalCSV, p.CleanedCSV, p.DailyCSV, p.MonthlyCSV,
		p.KPISummaryCSV, p.CategoryAnalysisCSV, p.StoreAnalysisCSV, p.RegionAnalysisCSV,
		p.SalesWithForecastsCSV, p.DailyForecastsCSV, p.MonthlyForecastsCSV,
	}
	assert.Equal(t, want, resp.Files)
	for _, f := range want {
		assert.FileExists(t, f)
	}

	ingest := resp.Steps[StageIDIngest]
	rowsIn, _ := ingest.GetMetadata(MetadataKeyRowsIn)
	assert.Equal(t, 40, rowsIn)

	daily := readCSVLines(t, p.DailyCSV)
	require.Len(t, daily, 21)
	assert.Equal(t, "Date,Total_Sales,Total_Quantity,Transactions", daily[0])
	assert.Equal(t, "2023-01-01,150.5,3,1", daily[1])

	assert.Equal(t, []string{"City,Total_Sales,Transactions", "Austin,2200,20", "Boston,1000,20"},
		readCSVLines(t, p.StoreAnalysisCSV))

	// 16 training days end 2023-01-16; 30 future days follow
	forecastStep := resp.Steps[StageIDForecast]
	cutoff, _ := forecastStep.GetMetadata(MetadataKeyCutoff)
	assert.Equal(t, "2023-01-16", cutoff)

	future := readCSVLines(t, p.DailyForecastsCSV)
	require.Len(t, future, 31)
	assert.True(t, strings.HasPrefix(future[1], "2023-01-17,"))
	assert.True(t, strings.HasPrefix(future[30], "2023-02-15,"))

	unified := readCSVLines(t, p.SalesWithForecastsCSV)
	assert.Len(t, unified, 1+20+30)

	monthly := readCSVLines(t, p.MonthlyForecastsCSV)
	assert.Equal(t, []string{"YearMonth,Forecast_Sales,Forecast_Lower,Forecast_Upper"}, monthly[:1])
	assert.Len(t, monthly, 3)

	rowsOut, _ := forecastStep.GetMetadata(MetadataKeyRowsOut)
	assert.Equal(t, 50, rowsOut)
}

func TestPipeline_InputOverride(t *testing.T) {
	opts := setupPipeline(t, 5)
	m := newPipeline(t, opts)

	resp, err := m.Execute(context.Background(), OperationRequest{
		Stages:    []string{StageIDIngest},
		InputFile: filepath.Join(t.TempDir(), "missing.xlsx"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.Equal(t, 7, apperrors.ExitCode(err))
	assert.Empty(t, resp.Files)
}

func TestPipeline_InsufficientDataWritesNoForecast(t *testing.T) {
	opts := setupPipeline(t, 1)
	p := opts.Paths
	m := newPipeline(t, opts)

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInsufficientData))
	assert.Equal(t, StepStatusCompleted, resp.Steps[StageIDIngest].CurrentStatus())
	assert.Equal(t, StepStatusCompleted, resp.Steps[StageIDAnalytics].CurrentStatus())
	assert.Equal(t, StepStatusFailed, resp.Steps[StageIDForecast].CurrentStatus())

	assert.NoFileExists(t, p.SalesWithForecastsCSV)
	assert.NoFileExists(t, p.DailyForecastsCSV)
	assert.NoFileExists(t, p.MonthlyForecastsCSV)
}

func TestAnalyticsStage_RequiresHistory(t *testing.T) {
	opts := setupPipeline(t, 5)
	m := newPipeline(t, opts)

	_, err := m.Execute(context.Background(), OperationRequest{Stages: []string{StageIDAnalytics}})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeDependency, GetErrorType(err))
}

func TestForecastStage_InvalidOptions(t *testing.T) {
	opts := setupPipeline(t, 5)
	opts.Forecast.IntervalWidth = 1.5
	m := newPipeline(t, opts)

	_, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.NoFileExists(t, opts.Paths.SalesWithForecastsCSV)
}

type flatForecaster struct{}

type flatModel struct {
	train domain.DailySeries
}

func (flatForecaster) Fit(_ context.Context, train domain.DailySeries) (forecast.Model, error) {
	return flatModel{train: train}, nil
}

func (m flatModel) Predict(_ context.Context, horizon int) ([]domain.ForecastRow, error) {
	first := m.train.First()
	n := domain.DaysBetween(first, m.train.Last()) + 1 + horizon
	rows := make([]domain.ForecastRow, n)
	for i := range rows {
		rows[i] = domain.ForecastRow{Date: first.AddDate(0, 0, i), Forecast: 10, Lower: 9, Upper: 11, Trend: 10}
	}
	return rows, nil
}

func TestForecastStage_CustomForecaster(t *testing.T) {
	opts := setupPipeline(t, 10)
	opts.Forecaster = flatForecaster{}
	m := newPipeline(t, opts)

	_, err := m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)

	future := readCSVLines(t, opts.Paths.DailyForecastsCSV)
	require.Len(t, future, 31)
	assert.Equal(t, "2023-01-09,10,9,11,10,2023-01", future[1])
}

func readCSVLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
