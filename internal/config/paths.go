package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// It is the single source of truth for every file the pipeline reads or writes.
type Paths struct {
	BaseDir    string
	DataDir    string
	ExportsDir string
	LogsDir    string
	InputFile  string

	// Normalizer outputs
	HistoricalCSV string
	CleanedCSV    string
	DailyCSV      string
	MonthlyCSV    string

	// Forecast exports
	SalesWithForecastsCSV string
	DailyForecastsCSV     string
	MonthlyForecastsCSV   string

	// Analytics exports
	KPISummaryCSV       string
	CategoryAnalysisCSV string
	StoreAnalysisCSV    string
	RegionAnalysisCSV   string
}

// NewPaths resolves cfg against its base directory.
// An empty BaseDir means the current working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", cfg.BaseDir, err)
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	dataDir := resolve(cfg.DataDir)
	exportsDir := resolve(cfg.ExportsDir)

	return &Paths{
		BaseDir:    base,
		DataDir:    dataDir,
		ExportsDir: exportsDir,
		LogsDir:    resolve(cfg.LogsDir),
		InputFile:  resolve(cfg.InputFile),

		HistoricalCSV: filepath.Join(dataDir, HistoricalFileName),
		CleanedCSV:    filepath.Join(dataDir, CleanedFileName),
		DailyCSV:      filepath.Join(dataDir, DailyFileName),
		MonthlyCSV:    filepath.Join(dataDir, MonthlyFileName),

		SalesWithForecastsCSV: filepath.Join(exportsDir, SalesWithForecastsFileName),
		DailyForecastsCSV:     filepath.Join(exportsDir, DailyForecastsFileName),
		MonthlyForecastsCSV:   filepath.Join(exportsDir, MonthlyForecastsFileName),

		KPISummaryCSV:       filepath.Join(exportsDir, KPISummaryFileName),
		CategoryAnalysisCSV: filepath.Join(exportsDir, CategoryAnalysisFileName),
		StoreAnalysisCSV:    filepath.Join(exportsDir, StoreAnalysisFileName),
		RegionAnalysisCSV:   filepath.Join(exportsDir, RegionAnalysisFileName),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ExportsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}

	return nil
}

// ResolveLogFile returns the log file path for cfg, anchored at the base directory
func (p *Paths) ResolveLogFile(cfg LoggingConfig) string {
	if cfg.FilePath == "" || filepath.IsAbs(cfg.FilePath) {
		return cfg.FilePath
	}
	return filepath.Join(p.BaseDir, cfg.FilePath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("exports_dir", p.ExportsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("input_file", p.InputFile),
		slog.Bool("input_exists", FileExists(p.InputFile)))
}
