package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"salesforecast/internal/infrastructure"
)

// Manager runs registered stages in order, one at a time
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager with dependency injection
func NewManager(registry *Registry, config *Config, providers *infrastructure.OTelProviders, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = &Config{DefaultTimeout: DefaultStageTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		registry: registry,
		config:   config,
		tracer:   NewOperationTracer(providers),
		logger:   infrastructure.WithComponent(logger, "operations"),
	}
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetConfig returns the execution config
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs the requested stages. The first failing stage stops the run
// and every stage after it is marked skipped.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = "run-" + uuid.NewString()
	}

	state := NewOperationState(req.ID)
	if req.InputFile != "" {
		state.SetContext(ContextKeyInputFile, req.InputFile)
	}

	steps, err := m.registry.Resolve(req.Stages)
	if err != nil {
		opErr := &OperationError{Type: ErrorTypeNotFound, Message: err.Error()}
		m.logOperationError(ctx, req.ID, opErr)
		state.Fail(opErr)
		return m.createResponse(state), opErr
	}

	ids := make([]string, len(steps))
	for i, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
		ids[i] = step.ID()
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, ids)
	defer span.End()

	m.logOperationStart(ctx, req.ID, ids)
	state.Start()

	err = m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state.Duration(), len(state.WrittenFiles()), err)
	m.logOperationComplete(ctx, req.ID, state.Duration(), string(state.Status))

	return m.createResponse(state), err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("stage", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.InfoContext(ctx, "executing_stage",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous stage %s failed", step.ID()))
			return err
		}
	}

	m.logger.InfoContext(ctx, "all_stages_completed",
		slog.String("operation_id", state.ID))
	return nil
}

// executeStage runs one step under its timeout and span
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())

	if err := m.checkInputs(state, step); err != nil {
		stepState.Fail(err)
		return err
	}

	if err := step.Validate(state); err != nil {
		opErr := NewValidationError(step.ID(), err.Error())
		opErr.Cause = err
		stepState.Fail(opErr)
		return opErr
	}

	timeout := m.config.GetStageTimeout(step.ID())
	stageCtx, cancel := context.WithTimeout(infrastructure.WithStage(ctx, step.ID()), timeout)
	defer cancel()

	stageCtx, span := m.tracer.TraceStageExecution(stageCtx, state.ID, step.ID())
	defer span.End()

	m.logStageStart(stageCtx, state.ID, step.ID())
	stepState.Start()

	start := time.Now()
	err := step.Execute(stageCtx, state)
	duration := time.Since(start)

	if err != nil {
		err = m.classify(ctx, stageCtx, step.ID(), timeout, err)
		stepState.Fail(err)
		m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), duration, err)

		m.logger.ErrorContext(stageCtx, "stage_execution_failed",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
			slog.Any("metadata", stepState.Metadata))
		return err
	}

	stepState.Complete()
	m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), duration, nil)
	m.logStageComplete(stageCtx, state.ID, step.ID(), duration)
	return nil
}

// classify maps a stage failure onto an operation error
func (m *Manager) classify(parent, stageCtx context.Context, stageID string, timeout time.Duration, err error) *OperationError {
	switch {
	case parent.Err() != nil:
		return NewCancellationError(stageID, err)
	case errors.Is(stageCtx.Err(), context.DeadlineExceeded):
		return NewTimeoutError(stageID, timeout.String(), err)
	default:
		return WrapError(err, stageID, "stage execution failed")
	}
}

// checkInputs verifies each required input exists on disk or was published earlier in the run
func (m *Manager) checkInputs(state *OperationState, step Step) error {
	for _, req := range step.RequiredInputs() {
		if req.Optional || state.HasWritten(req.Path) {
			continue
		}
		if _, err := os.Stat(req.Path); err != nil {
			opErr := NewDependencyError(step.ID(), req.Path,
				fmt.Sprintf("required input %s is missing", req.Path))
			opErr.Cause = err
			return opErr
		}
	}
	return nil
}

// skipRemaining marks steps that will not run
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.CurrentStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Steps:    state.Steps,
		Files:    state.WrittenFiles(),
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
