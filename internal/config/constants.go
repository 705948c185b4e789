package config

import (
	"time"

	"salesforecast/pkg/contracts"
)

// Application constants
const (
	AppName    = "salesforecast"
	AppVersion = contracts.Version

	// Directories (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultExportsDir = "exports"
	DefaultLogsDir    = "logs"
	DefaultInputFile  = "data/Sample - Superstore.csv"

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Forecast defaults
	DefaultTrainRatio    = 0.8
	DefaultHorizonDays   = 365
	DefaultIntervalWidth = 0.95

	DefaultStageTimeout = 30 * time.Minute
)

// Normalizer outputs under the data directory
const (
	HistoricalFileName = "sales_historical.csv"
	CleanedFileName    = "sales_cleaned.csv"
	DailyFileName      = "sales_daily.csv"
	MonthlyFileName    = "sales_monthly.csv"
)

// Export file names under the exports directory
const (
	SalesWithForecastsFileName = "sales_with_forecasts.csv"
	DailyForecastsFileName     = "daily_forecasts.csv"
	MonthlyForecastsFileName   = "monthly_forecasts.csv"
	KPISummaryFileName         = "kpi_summary.csv"
	CategoryAnalysisFileName   = "category_analysis.csv"
	StoreAnalysisFileName      = "store_analysis.csv"
	RegionAnalysisFileName     = "region_analysis.csv"
)
