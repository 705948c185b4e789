package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesforecast/internal/config"
	"salesforecast/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOTelInitialization_NoTracing(t *testing.T) {
	cfg := config.Default().Telemetry

	providers, err := InitializeOTel(cfg, nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Registry)
	assert.NotNil(t, providers.Metrics)
	assert.NotNil(t, providers.Runtime)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.IsRecording())
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelInitialization_StdoutTracing(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.Tracing = "stdout"

	var out bytes.Buffer
	providers, err := InitializeOTel(cfg, &out, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "forecast")
	assert.True(t, span.IsRecording())
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	SetSpanAttributes(ctx, map[string]interface{}{"rows": 10, "stage": "forecast"})
	AddSpanEvent(ctx, "fitted", map[string]interface{}{"sigma": 1.5})
	RecordError(ctx, errors.New("boom"))
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(ctx))

	assert.Contains(t, out.String(), `"Name": "forecast"`)
}

func TestOTelInitialization_UnknownExporter(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.Tracing = "zipkin"

	_, err := InitializeOTel(cfg, nil, discardLogger())
	assert.Error(t, err)
}

func TestWriteMetrics(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "metrics", "pipeline.prom")
	cfg := config.Default().Telemetry
	cfg.MetricsFile = metricsFile

	providers, err := InitializeOTel(cfg, nil, discardLogger())
	require.NoError(t, err)

	ctx := context.Background()
	providers.Metrics.RecordStage(ctx, "forecast", 2*time.Second, nil)
	providers.Metrics.RecordStage(ctx, "ingest", time.Second, errors.New("bad"))
	providers.Metrics.RecordRows(ctx, "ingest", "read", 120)
	providers.Metrics.RecordRows(ctx, "ingest", "dropped", 3)
	providers.Metrics.RecordFileWritten(ctx, "forecast", "/tmp/exports/daily_forecasts.csv")
	providers.Metrics.RecordHoldout(ctx, domain.HoldoutMetrics{Rows: 10, MAE: 1, RMSE: 2, MAPE: 3})
	stats := providers.CollectRuntime(ctx, time.Now().Add(-time.Second))
	assert.GreaterOrEqual(t, stats.RunTime, time.Second)

	require.NoError(t, providers.Shutdown(ctx))

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "pipeline_stage_executions_total")
	assert.Contains(t, text, `status="failure"`)
	assert.Contains(t, text, "pipeline_rows_total")
	assert.Contains(t, text, "pipeline_files_written_total")
	assert.Contains(t, text, `file="daily_forecasts.csv"`)
	assert.Contains(t, text, "forecast_holdout_error")
	assert.Contains(t, text, "process_heap_alloc")
}

func TestWriteMetrics_Disabled(t *testing.T) {
	providers, err := InitializeOTel(config.Default().Telemetry, nil, discardLogger())
	require.NoError(t, err)
	assert.NoError(t, providers.WriteMetrics())

	var nilProviders *OTelProviders
	assert.NoError(t, nilProviders.WriteMetrics())
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordStage(ctx, "ingest", time.Second, nil)
		m.RecordRows(ctx, "ingest", "read", 1)
		m.RecordFileWritten(ctx, "ingest", "x.csv")
		m.RecordHoldout(ctx, domain.HoldoutMetrics{Rows: 1})
	})
}
