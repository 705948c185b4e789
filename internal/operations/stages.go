package operations

import (
	"context"
	"fmt"
	"log/slog"

	"salesforecast/internal/config"
	"salesforecast/internal/dataprocessing"
	apperrors "salesforecast/internal/errors"
	"salesforecast/internal/exporter"
	"salesforecast/internal/forecast"
	"salesforecast/internal/infrastructure"
	"salesforecast/internal/validation"
	"salesforecast/pkg/contracts/domain"
)

// StageOptions carries what every stage needs
type StageOptions struct {
	Paths    *config.Paths
	Ingest   config.IngestConfig
	Forecast forecast.Options
	// Forecaster replaces the additive model when set
	Forecaster forecast.Forecaster
	Metrics    *infrastructure.PipelineMetrics
}

// IngestStage normalizes the raw sales table and writes the cleaned, daily and monthly files
type IngestStage struct {
	BaseStage
	opts   StageOptions
	logger *slog.Logger
}

// NewIngestStage creates the normalization stage
func NewIngestStage(opts StageOptions, logger *slog.Logger) *IngestStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestStage{
		BaseStage: NewBaseStage(StageIDIngest, StageNameIngest),
		opts:      opts,
		logger:    logger.With(slog.String("stage", StageIDIngest)),
	}
}

// Validate requires a readable input table from the request or the config
func (s *IngestStage) Validate(state *OperationState) error {
	input := s.inputFile(state)
	if input == "" {
		return apperrors.NewConfigError("no input file configured", nil)
	}
	return validation.NewFileValidator(s.logger).ValidateInputFile(input)
}

// inputFile prefers the request's input over the configured one
func (s *IngestStage) inputFile(state *OperationState) string {
	if v, ok := state.GetContext(ContextKeyInputFile); ok {
		if path, ok := v.(string); ok && path != "" {
			return path
		}
	}
	return s.opts.Paths.InputFile
}

// Execute reads, cleans and exports the sales table
func (s *IngestStage) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStage(s.ID())
	input := s.inputFile(state)

	table, err := dataprocessing.ReadTable(input, dataprocessing.ReaderOptions{
		FallbackEncoding: s.opts.Ingest.FallbackEncoding,
		SheetName:        s.opts.Ingest.SheetName,
	}, s.logger)
	if err != nil {
		return err
	}
	s.opts.Metrics.RecordRows(ctx, s.ID(), "read", len(table.Rows))

	cleaned, stats, err := dataprocessing.NewNormalizer(s.logger).Normalize(ctx, table)
	if err != nil {
		return err
	}
	s.opts.Metrics.RecordRows(ctx, s.ID(), "dropped", stats.Dropped())
	stepState.SetMetadata(MetadataKeyRowsIn, stats.InputRows)
	stepState.SetMetadata(MetadataKeyRowsDropped, stats.Dropped())
	stepState.SetMetadata(MetadataKeyRowsOut, stats.OutputRows)

	exp := exporter.NewSalesExporter(s.opts.Paths, s.logger)

	written, err := exp.ExportCleaned(ctx, cleaned)
	s.publish(ctx, state, written...)
	if err != nil {
		return err
	}

	daily := dataprocessing.DailyRollup(cleaned)
	path, err := exp.ExportDaily(ctx, daily)
	if err != nil {
		return err
	}
	s.publish(ctx, state, path)
	state.SetContext(ContextKeyDailyRows, daily.Len())

	path, err = exp.ExportMonthly(ctx, dataprocessing.MonthlyRollup(cleaned))
	if err != nil {
		return err
	}
	s.publish(ctx, state, path)

	s.opts.Metrics.RecordRows(ctx, s.ID(), "written", stats.OutputRows)
	stepState.SetMessage(fmt.Sprintf("%d of %d rows kept, %d days", stats.OutputRows, stats.InputRows, daily.Len()))
	return nil
}

// ProducedOutputs returns the normalizer's files
func (s *IngestStage) ProducedOutputs() []string {
	p := s.opts.Paths
	return []string{p.HistoricalCSV, p.CleanedCSV, p.DailyCSV, p.MonthlyCSV}
}

func (s *IngestStage) publish(ctx context.Context, state *OperationState, files ...string) {
	publishFiles(ctx, state, s.opts.Metrics, s.ID(), files...)
}

// AnalyticsStage computes KPIs and segment breakdowns from the cleaned history
type AnalyticsStage struct {
	BaseStage
	opts   StageOptions
	logger *slog.Logger
}

// NewAnalyticsStage creates the aggregation stage
func NewAnalyticsStage(opts StageOptions, logger *slog.Logger) *AnalyticsStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsStage{
		BaseStage: NewBaseStage(StageIDAnalytics, StageNameAnalytics),
		opts:      opts,
		logger:    logger.With(slog.String("stage", StageIDAnalytics)),
	}
}

// Execute loads the history and exports the analytics files
func (s *AnalyticsStage) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStage(s.ID())

	history, err := dataprocessing.LoadSalesHistory(s.opts.Paths.HistoricalCSV, s.logger)
	if err != nil {
		return err
	}
	s.opts.Metrics.RecordRows(ctx, s.ID(), "read", len(history.Records))
	stepState.SetMetadata(MetadataKeyRowsIn, len(history.Records))

	report := dataprocessing.NewAnalyticsEngine(s.logger).Compute(ctx, history)

	written, err := exporter.NewAnalyticsExporter(s.opts.Paths, s.logger).Export(ctx, report)
	publishFiles(ctx, state, s.opts.Metrics, s.ID(), written...)
	if err != nil {
		return err
	}

	stepState.SetMetadata(MetadataKeyFiles, len(written))
	stepState.SetMessage(fmt.Sprintf("revenue %.2f over %d transactions",
		report.KPIs.TotalRevenue, report.KPIs.TotalTransactions))
	return nil
}

// RequiredInputs returns the cleaned history file
func (s *AnalyticsStage) RequiredInputs() []DataRequirement {
	return []DataRequirement{{Path: s.opts.Paths.HistoricalCSV}}
}

// ProducedOutputs returns the analytics files
func (s *AnalyticsStage) ProducedOutputs() []string {
	p := s.opts.Paths
	return []string{p.KPISummaryCSV, p.CategoryAnalysisCSV, p.StoreAnalysisCSV, p.RegionAnalysisCSV}
}

// ForecastStage fits the model on the daily series and exports the reconciled forecast
type ForecastStage struct {
	BaseStage
	opts   StageOptions
	logger *slog.Logger
}

// NewForecastStage creates the forecasting stage
func NewForecastStage(opts StageOptions, logger *slog.Logger) *ForecastStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastStage{
		BaseStage: NewBaseStage(StageIDForecast, StageNameForecast),
		opts:      opts,
		logger:    logger.With(slog.String("stage", StageIDForecast)),
	}
}

// Validate checks the model options before any file is read
func (s *ForecastStage) Validate(state *OperationState) error {
	if err := s.opts.Forecast.Validate(); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid forecast options", err)
	}
	return nil
}

// Execute runs the forecast core and writes the three forecast exports
func (s *ForecastStage) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStage(s.ID())

	series, err := dataprocessing.LoadDailySeries(s.opts.Paths.DailyCSV, s.logger)
	if err != nil {
		return err
	}
	s.opts.Metrics.RecordRows(ctx, s.ID(), "read", series.Len())
	stepState.SetMetadata(MetadataKeyRowsIn, series.Len())

	core := forecast.NewCore(s.opts.Forecast, s.logger)
	if s.opts.Forecaster != nil {
		core = forecast.NewCoreWithForecaster(s.opts.Forecast, s.opts.Forecaster, s.logger)
	}

	result, err := core.Run(ctx, series)
	if err != nil {
		return err
	}
	stepState.SetMetadata(MetadataKeyCutoff, result.Cutoff.Format(domain.DateLayout))
	stepState.SetMetadata(MetadataKeyRowsOut, len(result.Unified))
	state.SetContext(ContextKeyHoldout, result.Holdout)
	s.opts.Metrics.RecordHoldout(ctx, result.Holdout)

	written, err := exporter.NewForecastExporter(s.opts.Paths, s.logger).
		ExportAll(ctx, result.Unified, result.Future, result.Monthly)
	publishFiles(ctx, state, s.opts.Metrics, s.ID(), written...)
	if err != nil {
		return err
	}

	s.opts.Metrics.RecordRows(ctx, s.ID(), "written", len(result.Unified))
	stepState.SetMessage(fmt.Sprintf("%d future days from %s",
		len(result.Future), result.Cutoff.Format(domain.DateLayout)))
	return nil
}

// RequiredInputs returns the daily series file
func (s *ForecastStage) RequiredInputs() []DataRequirement {
	return []DataRequirement{{Path: s.opts.Paths.DailyCSV}}
}

// ProducedOutputs returns the forecast files
func (s *ForecastStage) ProducedOutputs() []string {
	p := s.opts.Paths
	return []string{p.SalesWithForecastsCSV, p.DailyForecastsCSV, p.MonthlyForecastsCSV}
}

// publishFiles records files on the run state and in metrics
func publishFiles(ctx context.Context, state *OperationState, metrics *infrastructure.PipelineMetrics, stageID string, files ...string) {
	state.AddFiles(files...)
	for _, f := range files {
		metrics.RecordFileWritten(ctx, stageID, f)
	}
}

// StageFactory builds the pipeline stages in execution order
func StageFactory(opts StageOptions, logger *slog.Logger) []Step {
	return []Step{
		NewIngestStage(opts, logger),
		NewAnalyticsStage(opts, logger),
		NewForecastStage(opts, logger),
	}
}

// NewPipelineManager registers every stage on a fresh manager
func NewPipelineManager(cfg *Config, opts StageOptions, providers *infrastructure.OTelProviders, logger *slog.Logger) (*Manager, error) {
	m := NewManager(NewRegistry(), cfg, providers, logger)
	for _, step := range StageFactory(opts, logger) {
		if err := m.RegisterStage(step); err != nil {
			return nil, err
		}
	}
	return m, nil
}
