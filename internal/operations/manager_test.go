package operations_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesforecast/internal/config"
	apperrors "salesforecast/internal/errors"
	"salesforecast/internal/infrastructure"
	"salesforecast/internal/operations"
	"salesforecast/internal/operations/testutil"
	logtest "salesforecast/internal/shared/testutil"
)

func newTestManager(t *testing.T, steps ...operations.Step) (*operations.Manager, *logtest.BufferedSlogHandler) {
	t.Helper()
	logger, handler := logtest.NewTestLogger(t)
	m := operations.NewManager(nil, operations.NewConfig(config.PipelineConfig{StageTimeout: time.Minute}), nil, logger)
	for _, s := range steps {
		require.NoError(t, m.RegisterStage(s))
	}
	return m, handler
}

func TestManager_Defaults(t *testing.T) {
	m := operations.NewManager(nil, nil, nil, nil)
	assert.NotNil(t, m.GetRegistry())
	assert.Equal(t, operations.DefaultStageTimeout, m.GetConfig().GetStageTimeout(operations.StageIDIngest))

	cfg := operations.NewConfig(config.PipelineConfig{})
	assert.Equal(t, operations.DefaultStageTimeout, cfg.DefaultTimeout)
}

func TestManager_ExecuteSequential(t *testing.T) {
	s1 := testutil.CreateSuccessfulStage("ingest", "Ingest")
	s2 := testutil.CreateSuccessfulStage("analytics", "Analytics")
	s3 := testutil.CreateSuccessfulStage("forecast", "Forecast")
	m, handler := newTestManager(t, s1, s2, s3)

	resp, err := m.Execute(context.Background(), operations.OperationRequest{ID: "run-seq"})
	require.NoError(t, err)

	assert.Equal(t, "run-seq", resp.ID)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.Empty(t, resp.Error)
	for _, s := range []*testutil.MockStage{s1, s2, s3} {
		assert.Equal(t, 1, s.GetExecuteCalls())
		assert.Equal(t, 1, s.GetValidateCalls())
		assert.Equal(t, operations.StepStatusCompleted, resp.Steps[s.ID()].CurrentStatus())
	}
	assert.False(t, s2.GetExecutedAt().Before(s1.GetExecutedAt()))
	assert.False(t, s3.GetExecutedAt().Before(s2.GetExecutedAt()))

	logtest.AssertLogContains(t, handler, slog.LevelInfo, "all_stages_completed")
	logtest.AssertLogAttr(t, handler, "component", "operations")
	logtest.AssertNoErrors(t, handler)
}

func TestManager_GeneratesRunID(t *testing.T) {
	m, _ := newTestManager(t, testutil.CreateSuccessfulStage("a", "A"))

	resp, err := m.Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)
	assert.Regexp(t, `^run-[0-9a-f-]{36}$`, resp.ID)
}

func TestManager_FailureStopsRun(t *testing.T) {
	cause := apperrors.NewSchemaError("sales.csv", "Sales")
	s1 := testutil.CreateFailingStage("ingest", "Ingest", cause)
	s2 := testutil.CreateSuccessfulStage("analytics", "Analytics")
	s3 := testutil.CreateSuccessfulStage("forecast", "Forecast")
	m, handler := newTestManager(t, s1, s2, s3)

	resp, err := m.Execute(context.Background(), operations.OperationRequest{ID: "run-fail"})
	require.Error(t, err)

	var opErr *operations.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, operations.ErrorTypeExecution, opErr.Type)
	assert.Equal(t, "ingest", opErr.Step)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	assert.Equal(t, 3, apperrors.ExitCode(err))

	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, operations.StepStatusFailed, resp.Steps["ingest"].CurrentStatus())
	assert.Equal(t, operations.StepStatusSkipped, resp.Steps["analytics"].CurrentStatus())
	assert.Equal(t, operations.StepStatusSkipped, resp.Steps["forecast"].CurrentStatus())
	assert.Zero(t, s2.GetExecuteCalls())
	assert.Zero(t, s3.GetExecuteCalls())

	logtest.AssertLogContains(t, handler, slog.LevelError, "stage_execution_failed")
}

func TestManager_ValidationFailure(t *testing.T) {
	s := testutil.CreateValidationFailingStage("forecast", "Forecast", apperrors.NewAppValidationError("horizon must be positive"))
	m, _ := newTestManager(t, s)

	_, err := m.Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
	assert.Equal(t, 2, apperrors.ExitCode(err))
	assert.Zero(t, s.GetExecuteCalls())
}

func TestManager_MissingInput(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "sales_daily.csv")

	t.Run("missing on disk", func(t *testing.T) {
		s := testutil.CreateSuccessfulStage("forecast", "Forecast")
		s.InputsValue = []operations.DataRequirement{{Path: missing}}
		m, _ := newTestManager(t, s)

		_, err := m.Execute(context.Background(), operations.OperationRequest{})
		require.Error(t, err)
		assert.Equal(t, operations.ErrorTypeDependency, operations.GetErrorType(err))
		assert.Zero(t, s.GetExecuteCalls())
	})

	t.Run("published earlier in the run", func(t *testing.T) {
		writer := testutil.CreateWritingStage("ingest", "Ingest", missing)
		reader := testutil.CreateSuccessfulStage("forecast", "Forecast")
		reader.InputsValue = []operations.DataRequirement{{Path: missing}}
		m, _ := newTestManager(t, writer, reader)

		resp, err := m.Execute(context.Background(), operations.OperationRequest{})
		require.NoError(t, err)
		assert.Equal(t, []string{missing}, resp.Files)
		assert.Equal(t, 1, reader.GetExecuteCalls())
	})

	t.Run("optional input", func(t *testing.T) {
		s := testutil.CreateSuccessfulStage("forecast", "Forecast")
		s.InputsValue = []operations.DataRequirement{{Path: missing, Optional: true}}
		m, _ := newTestManager(t, s)

		_, err := m.Execute(context.Background(), operations.OperationRequest{})
		assert.NoError(t, err)
	})
}

func TestManager_StageTimeout(t *testing.T) {
	s := testutil.CreateSlowStage("forecast", "Forecast", time.Minute)
	m, _ := newTestManager(t, s)
	m.GetConfig().SetStageTimeout("forecast", 20*time.Millisecond)

	resp, err := m.Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeTimeout, operations.GetErrorType(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
}

func TestManager_Cancelled(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		s := testutil.CreateSuccessfulStage("ingest", "Ingest")
		m, _ := newTestManager(t, s)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		resp, err := m.Execute(ctx, operations.OperationRequest{})
		require.Error(t, err)
		assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
		assert.Equal(t, operations.OperationStatusCancelled, resp.Status)
		assert.Equal(t, operations.StepStatusSkipped, resp.Steps["ingest"].CurrentStatus())
		assert.Zero(t, s.GetExecuteCalls())
	})

	t.Run("during a stage", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s := testutil.CreateSlowStage("ingest", "Ingest", time.Minute)
		inner := s.ExecuteFunc
		s.ExecuteFunc = func(c context.Context, state *operations.OperationState) error {
			cancel()
			return inner(c, state)
		}
		m, _ := newTestManager(t, s)

		_, err := m.Execute(ctx, operations.OperationRequest{})
		require.Error(t, err)
		assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestManager_SelectsStages(t *testing.T) {
	s1 := testutil.CreateSuccessfulStage("ingest", "Ingest")
	s2 := testutil.CreateSuccessfulStage("forecast", "Forecast")
	m, _ := newTestManager(t, s1, s2)

	resp, err := m.Execute(context.Background(), operations.OperationRequest{Stages: []string{"forecast"}})
	require.NoError(t, err)
	assert.Zero(t, s1.GetExecuteCalls())
	assert.Equal(t, 1, s2.GetExecuteCalls())
	assert.NotContains(t, resp.Steps, "ingest")

	_, err = m.Execute(context.Background(), operations.OperationRequest{Stages: []string{"scrape"}})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeNotFound, operations.GetErrorType(err))
}

func TestManager_RecordsMetrics(t *testing.T) {
	logger, _ := logtest.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{
		ServiceName: "salesforecast-test",
		Tracing:     "none",
	}, nil, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	m := operations.NewManager(nil, nil, providers, logger)
	require.NoError(t, m.RegisterStage(testutil.CreateSuccessfulStage("ingest", "Ingest")))
	require.NoError(t, m.RegisterStage(testutil.CreateFailingStage("forecast", "Forecast", errors.New("boom"))))

	_, err = m.Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)

	families, err := providers.Registry.Gather()
	require.NoError(t, err)

	statuses := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "pipeline_stage_executions_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			statuses[labels["stage"]+"/"+labels["status"]] += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"ingest/success": 1, "forecast/failure": 1}, statuses)
}
