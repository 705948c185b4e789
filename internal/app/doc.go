// Package app bootstraps a pipeline run for every binary.
//
// # Initialization Flow
//
//  1. Load configuration: defaults, then the optional YAML file, then SF_* environment variables
//  2. Resolve paths against the base directory and create the data, exports and logs directories
//  3. Initialize the slog logger with a fresh run id
//  4. Initialize OpenTelemetry tracing and the Prometheus-backed metrics
//  5. Register the ingest, analytics and forecast stages on an operations.Manager
//
// # Usage
//
//	a, err := app.NewApplication(app.Options{ConfigFile: *configFile, BaseDir: *baseDir})
//	if err != nil {
//		return err
//	}
//	defer a.Stop(context.Background())
//	_, err = a.RunWithSignals(operations.StageIDForecast)
//
// # Error Handling
//
// Errors are returned to the caller; the app never calls os.Exit. Binaries map them to
// exit codes with errors.ExitCode.
package app
