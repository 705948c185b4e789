package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	apperrors "salesforecast/internal/errors"
	"salesforecast/pkg/contracts"
)

// Main parses the common flags, runs the given stages and returns the process exit code.
// Every binary under cmd/ is a thin wrapper around it.
func Main(name string, args []string, stderr io.Writer, stages ...string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML configuration file (defaults, then file, then SF_* env)")
	baseDir := fs.String("base", "", "base directory for data/, exports/ and logs/")
	inputFile := fs.String("in", "", "raw sales CSV or XLSX file (ingest only)")
	showVersion := fs.Bool("version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return apperrors.ExitCode(apperrors.NewConfigError("invalid command line", err))
	}
	if *showVersion {
		fmt.Fprintln(stderr, contracts.GetFullVersionString(name))
		return 0
	}

	a, err := NewApplication(Options{
		ConfigFile: *configFile,
		BaseDir:    *baseDir,
		InputFile:  *inputFile,
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return apperrors.ExitCode(err)
	}

	_, runErr := a.RunWithSignals(stages...)
	if err := a.Stop(context.Background()); err != nil {
		a.Logger.Warn("Shutdown incomplete", slog.String("error", err.Error()))
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, runErr)
	}
	return apperrors.ExitCode(runErr)
}

// Exit runs Main with the process arguments and exits
func Exit(name string, stages ...string) {
	os.Exit(Main(name, os.Args[1:], os.Stderr, stages...))
}
