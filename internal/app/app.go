package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/fibengine/internal/cli"
	"github.com/agbru/fibengine/internal/config"
	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/ratio"
	"github.com/agbru/fibengine/internal/server"
)

// Application represents the fibengine application instance.
// It encapsulates the configuration and provides methods to run
// the application in its various modes (calculation, sequence, ratio, server).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides access to the Fibonacci calculator implementations.
	// Uses the interface type for better testability and dependency injection.
	Factory fibonacci.CalculatorFactory
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := fibonacci.GlobalFactory()
	availableAlgos := factory.List()

	// args[0] is program name, args[1:] are the actual arguments
	programName := "fibengine"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, availableAlgos)
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
	}, nil
}

// Run executes the application based on the configured mode.
// It dispatches to the appropriate handler (server, sequence, ratio, or
// point calculation).
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	// Configure the color palette (respects -no-color and NO_COLOR).
	colorTarget, _ := out.(*os.File)
	cli.ConfigureColors(a.Config.NoColor, colorTarget)

	if a.Config.ServerMode {
		return a.runServer()
	}
	if a.Config.Sequence {
		return a.runSequence(ctx, out)
	}
	if a.Config.Ratio {
		return a.runRatio(ctx, out)
	}
	return a.runCalculate(ctx, out)
}

// runContext derives the execution context for a CLI command: it is canceled
// when the configured timeout elapses or when the process receives SIGINT or
// SIGTERM, whichever comes first. The returned stop function releases both
// the timer and the signal registration and must be deferred.
func runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stopSignals()
		cancelTimeout()
	}
}

// runServer starts the HTTP server mode.
func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runCalculate orchestrates the execution of the CLI calculation command.
// When the configuration selects "all", every registered algorithm runs
// concurrently and the results are cross-checked for consistency.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, stop := runContext(ctx, a.Config.Timeout)
	defer stop()

	calculatorsToRun := cli.GetCalculatorsToRun(a.Config, a.Factory)
	if len(calculatorsToRun) == 0 {
		fmt.Fprintf(a.ErrWriter, "No calculator available for algorithm '%s'\n", a.Config.Algo)
		return apperrors.ExitErrorConfig
	}

	if !a.Config.JSONOutput && !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(calculatorsToRun, out)
	}

	// In quiet mode, discard the progress display entirely.
	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}

	results := orchestration.ExecuteCalculations(ctx, calculatorsToRun, a.Config, progressOut)

	// A single failed calculation is reported through the shared error handler
	// so the exit code reflects the failure class (rejected, timeout, canceled).
	if len(results) == 1 && results[0].Err != nil {
		return apperrors.HandleCalculationError(results[0].Err, results[0].Duration, a.ErrWriter, cli.ColorProvider{})
	}

	return orchestration.AnalyzeComparisonResults(results, a.Config, out)
}

// runSequence computes and displays the terms F(start)..F(end).
func (a *Application) runSequence(ctx context.Context, out io.Writer) int {
	ctx, stop := runContext(ctx, a.Config.Timeout)
	defer stop()

	gen := fibonacci.NewRangeGeneratorWithLimit(a.Config.MaxN)

	begin := time.Now()
	terms, err := gen.Range(ctx, a.Config.Start, a.Config.End, a.Config.ToCalculationOptions())
	duration := time.Since(begin)
	if err != nil {
		return apperrors.HandleCalculationError(err, duration, a.ErrWriter, cli.ColorProvider{})
	}

	if err := cli.DisplaySequence(out, a.Config.Start, terms, duration, a.outputConfig()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error rendering sequence: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runRatio computes and displays the golden-ratio convergence series.
func (a *Application) runRatio(ctx context.Context, out io.Writer) int {
	ctx, stop := runContext(ctx, a.Config.Timeout)
	defer stop()

	analyzer := ratio.NewAnalyzer(0)

	begin := time.Now()
	samples, err := analyzer.Convergence(ctx, a.Config.Start, a.Config.End, a.Config.ToCalculationOptions())
	duration := time.Since(begin)
	if err != nil {
		return apperrors.HandleCalculationError(err, duration, a.ErrWriter, cli.ColorProvider{})
	}

	if err := cli.DisplayRatio(out, samples, a.outputConfig()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error rendering ratio table: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// outputConfig builds the CLI output configuration from the application
// configuration.
func (a *Application) outputConfig() cli.OutputConfig {
	return cli.OutputConfig{
		JSON:      a.Config.JSONOutput,
		HexOutput: a.Config.HexOutput,
		Quiet:     a.Config.Quiet,
		Verbose:   a.Config.Verbose,
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
// This is useful for determining if the application should exit with success
// after displaying help text.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: True if the error indicates help was requested.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
