package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "salesforecast/internal/errors"
)

// EnvPrefix namespaces every environment override, e.g. SF_FORECAST_HORIZON_DAYS
const EnvPrefix = "SF"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	Forecast  ForecastConfig  `yaml:"forecast" envconfig:"FORECAST"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig contains file system paths configuration.
// Relative entries are resolved against BaseDir.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ExportsDir string `yaml:"exports_dir" envconfig:"EXPORTS_DIR" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	InputFile  string `yaml:"input_file" envconfig:"INPUT_FILE" validate:"required"`
}

// IngestConfig controls how the raw sales table is read
type IngestConfig struct {
	// FallbackEncoding is used when a CSV is not valid UTF-8
	FallbackEncoding string `yaml:"fallback_encoding" envconfig:"FALLBACK_ENCODING" validate:"oneof=windows-1252 iso-8859-1"`
	// SheetName selects the XLSX sheet; empty means the first sheet with data
	SheetName string `yaml:"sheet_name" envconfig:"SHEET_NAME"`
}

// ForecastConfig holds the fixed model defaults and the export horizon
type ForecastConfig struct {
	TrainRatio            float64 `yaml:"train_ratio" envconfig:"TRAIN_RATIO" validate:"gt=0,lte=1"`
	HorizonDays           int     `yaml:"horizon_days" envconfig:"HORIZON_DAYS" validate:"gte=1"`
	IntervalWidth         float64 `yaml:"interval_width" envconfig:"INTERVAL_WIDTH" validate:"gt=0,lt=1"`
	YearlyOrder           int     `yaml:"yearly_order" envconfig:"YEARLY_ORDER" validate:"gte=0"`
	WeeklyOrder           int     `yaml:"weekly_order" envconfig:"WEEKLY_ORDER" validate:"gte=0"`
	Changepoints          int     `yaml:"changepoints" envconfig:"CHANGEPOINTS" validate:"gte=0"`
	ChangepointRange      float64 `yaml:"changepoint_range" envconfig:"CHANGEPOINT_RANGE" validate:"gt=0,lte=1"`
	ChangepointPriorScale float64 `yaml:"changepoint_prior_scale" envconfig:"CHANGEPOINT_PRIOR_SCALE" validate:"gt=0"`
	SeasonalityPriorScale float64 `yaml:"seasonality_prior_scale" envconfig:"SEASONALITY_PRIOR_SCALE" validate:"gt=0"`
	TrendPriorScale       float64 `yaml:"trend_prior_scale" envconfig:"TREND_PRIOR_SCALE" validate:"gt=0"`
}

// PipelineConfig controls stage execution
type PipelineConfig struct {
	StageTimeout time.Duration `yaml:"stage_timeout" envconfig:"STAGE_TIMEOUT" validate:"gt=0"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	// Tracing is "stdout" to print spans or "none"
	Tracing string `yaml:"tracing" envconfig:"TRACING" validate:"oneof=none stdout"`
	// MetricsFile receives a Prometheus textfile dump when non-empty
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, then the optional YAML file at configPath,
// then SF_* environment variables, and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := loadFromFile(configPath, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", configPath)
		}
	}

	// Unset variables leave file/default values untouched
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	if c.Forecast.Changepoints > 0 && c.Forecast.ChangepointRange <= 0 {
		return apperrors.NewConfigError(
			fmt.Sprintf("changepoint range %g must be positive when changepoints are enabled", c.Forecast.ChangepointRange), nil)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/pipeline.log",
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ExportsDir: DefaultExportsDir,
			LogsDir:    DefaultLogsDir,
			InputFile:  DefaultInputFile,
		},
		Ingest: IngestConfig{
			FallbackEncoding: "windows-1252",
		},
		Forecast: ForecastConfig{
			TrainRatio:            DefaultTrainRatio,
			HorizonDays:           DefaultHorizonDays,
			IntervalWidth:         DefaultIntervalWidth,
			YearlyOrder:           10,
			WeeklyOrder:           3,
			Changepoints:          25,
			ChangepointRange:      0.8,
			ChangepointPriorScale: 0.05,
			SeasonalityPriorScale: 10,
			TrendPriorScale:       5,
		},
		Pipeline: PipelineConfig{
			StageTimeout: DefaultStageTimeout,
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
			Tracing:     "none",
		},
	}
}
