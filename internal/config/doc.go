// Package config provides centralized configuration management for the sales
// forecasting pipeline. It loads layered configuration, validates it, and
// resolves every file path the pipeline reads or writes.
//
// # Configuration Sources
//
// Configuration is built in the following order, later sources winning:
//
//	1. Default values
//	2. An optional YAML file passed to Load
//	3. Environment variables prefixed with SF_
//
// # Environment Variables
//
// Nested sections map to underscore-joined names:
//
//	SF_LOGGING_LEVEL=debug
//	SF_PATHS_BASE_DIR=/srv/sales
//	SF_FORECAST_HORIZON_DAYS=365
//	SF_TELEMETRY_METRICS_FILE=exports/pipeline.prom
//
// # Path Management
//
// Paths are resolved against an explicit base directory so the binaries behave the
// same regardless of where they are installed:
//
//	paths, err := config.NewPaths(cfg.Paths)
//	daily := paths.DailyCSV
//
// # Validation
//
// Struct constraints are checked with go-playground/validator after all sources
// are merged. Failures are reported as CONFIG errors.
package config
