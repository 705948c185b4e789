package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"salesforecast/internal/config"
	"salesforecast/internal/forecast"
	"salesforecast/internal/infrastructure"
	"salesforecast/internal/operations"
	"salesforecast/internal/validation"
)

// ShutdownTimeout bounds the final metrics dump and span flush
const ShutdownTimeout = 10 * time.Second

// Options are the command-line overrides every binary accepts
type Options struct {
	// ConfigFile is an optional YAML file layered over the defaults
	ConfigFile string
	// BaseDir overrides paths.base_dir
	BaseDir string
	// InputFile overrides paths.input_file
	InputFile string
	// LogOutput replaces stdout as the console log sink
	LogOutput io.Writer
	// TraceOutput receives spans when telemetry.tracing is stdout
	TraceOutput io.Writer
}

// Application wires configuration, paths, logging, telemetry and the stage manager
// for one pipeline run.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Manager       *operations.Manager
	RunID         string

	startTime time.Time
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(opts Options) (*Application, error) {
	startTime := time.Now()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.BaseDir != "" {
		cfg.Paths.BaseDir = opts.BaseDir
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if opts.InputFile != "" {
		paths.InputFile = resolveAgainst(paths.BaseDir, opts.InputFile)
	}

	logCfg := cfg.Logging
	logCfg.FilePath = paths.ResolveLogFile(cfg.Logging)
	logger, err := newLogger(logCfg, opts.LogOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	runID := infrastructure.GenerateTraceID()
	logger = logger.With(slog.String("run_id", runID))

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	validator := validation.NewFileValidator(logger)
	for _, dir := range []string{paths.DataDir, paths.ExportsDir} {
		if err := validator.ValidateOutputDirectory(dir); err != nil {
			return nil, err
		}
	}

	telemetryCfg := cfg.Telemetry
	if telemetryCfg.MetricsFile != "" {
		telemetryCfg.MetricsFile = resolveAgainst(paths.BaseDir, telemetryCfg.MetricsFile)
	}
	providers, err := infrastructure.InitializeOTel(telemetryCfg, opts.TraceOutput, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	stageOpts := operations.StageOptions{
		Paths:    paths,
		Ingest:   cfg.Ingest,
		Forecast: forecast.OptionsFromConfig(cfg.Forecast),
		Metrics:  providers.Metrics,
	}
	manager, err := operations.NewPipelineManager(operations.NewConfig(cfg.Pipeline), stageOpts, providers, logger)
	if err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	return &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Manager:       manager,
		RunID:         runID,
		startTime:     startTime,
	}, nil
}

// newLogger uses the process-wide logger unless a console writer is supplied
func newLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, error) {
	if console != nil {
		return infrastructure.NewLogger(cfg, console)
	}
	return infrastructure.InitializeLogger(cfg)
}

func resolveAgainst(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// Run executes the given stages, or all of them when none are named
func (a *Application) Run(ctx context.Context, stages ...string) (*operations.OperationResponse, error) {
	ctx = infrastructure.WithTraceID(ctx, a.RunID)

	resp, err := a.Manager.Execute(ctx, operations.OperationRequest{
		ID:        a.RunID,
		Stages:    stages,
		InputFile: a.Paths.InputFile,
	})
	if err != nil {
		a.Logger.ErrorContext(ctx, "Pipeline run failed",
			slog.String("error", err.Error()))
		return resp, err
	}

	a.Logger.InfoContext(ctx, "Pipeline run complete",
		slog.Int("files_written", len(resp.Files)),
		slog.Duration("duration", resp.Duration))
	return resp, nil
}

// RunWithSignals runs the stages and cancels them on SIGINT or SIGTERM
func (a *Application) RunWithSignals(stages ...string) (*operations.OperationResponse, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx, stages...)
}

// Stop records the runtime snapshot, dumps metrics and flushes spans
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	stats := a.OTelProviders.CollectRuntime(shutdownCtx, a.startTime)
	a.Logger.InfoContext(ctx, "Runtime summary", slog.Any("runtime", stats.Fields()))

	var shutdownErr error
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
			shutdownErr = err
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		shutdownErr = err
	}
	return shutdownErr
}
