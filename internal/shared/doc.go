// Package shared holds helpers used by more than one package's tests.
//
// The testutil subpackage provides BufferedSlogHandler, a slog.Handler that captures
// records in memory so tests can assert on structured log events:
//
//	logger, handler := testutil.NewTestLogger(t)
//	runSomething(logger)
//	testutil.AssertLogContains(t, handler, slog.LevelInfo, "stage_complete")
package shared
