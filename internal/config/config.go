// Package config provides the configuration management for the fibengine
// application. It defines the configuration data structure, handles parsing
// of command-line arguments with environment variable overrides, and
// validates the resulting values.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
)

// EnvPrefix is the prefix for all environment variables used by fibengine.
// Environment variables provide an alternative to CLI flags, following the
// 12-Factor App methodology.
const EnvPrefix = "FIBENGINE_"

// Default configuration values. These can be overridden via command-line
// flags or environment variables.
const (
	// DefaultN is the default Fibonacci index to calculate.
	DefaultN uint64 = 10_000_000
	// DefaultTimeout is the default calculation timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultAlgo is the default algorithm selection.
	DefaultAlgo = "all"
	// DefaultThreshold is the default parallelism threshold in bits.
	DefaultThreshold = fibonacci.DefaultParallelThreshold
	// DefaultMaxN is the default upper bound on requested indices,
	// protecting the process against memory exhaustion from pathological
	// inputs. F(1e9) has over 200 million decimal digits.
	DefaultMaxN uint64 = 1_000_000_000
)

// AppConfig aggregates the application's configuration parameters, parsed
// from command-line flags with environment overrides.
type AppConfig struct {
	// N is the index of the Fibonacci number to be calculated.
	N uint64
	// Sequence, if true, runs in range mode: compute F(Start)..F(End).
	Sequence bool
	// Start is the first index of the range in sequence mode.
	Start uint64
	// End is the last index of the range in sequence mode, inclusive.
	End uint64
	// Ratio, if true, runs in convergence mode: report F(n+1)/F(n) against
	// the golden ratio for n in [Start, End].
	Ratio bool
	// Verbose, if true, displays the full calculated number.
	Verbose bool
	// Timeout sets the maximum duration for the calculation.
	Timeout time.Duration
	// Algo specifies the algorithm to use ("all", "fast", "matrix", ...).
	Algo string
	// Threshold determines the bit size at which multiplications are parallelized.
	Threshold int
	// MaxN bounds requested indices; 0 disables the guard.
	MaxN uint64
	// JSONOutput, if true, outputs the result in JSON format.
	JSONOutput bool
	// ServerMode, if true, starts the application as an HTTP server.
	ServerMode bool
	// Port specifies the port to listen on in server mode.
	Port string
	// NoColor, if true, disables all color output in the CLI.
	// Also respects the NO_COLOR environment variable.
	NoColor bool
	// Quiet mode suppresses progress display and informational messages,
	// for scripting purposes.
	Quiet bool
	// HexOutput, if true, displays results in hexadecimal format.
	HexOutput bool
}

// ToCalculationOptions converts the application configuration into
// fibonacci.Options for use by the calculators.
func (c AppConfig) ToCalculationOptions() fibonacci.Options {
	return fibonacci.Options{
		ParallelThreshold: c.Threshold,
	}
}

// Validate checks the semantic consistency of the configuration parameters.
//
// Parameters:
//   - availableAlgos: The valid algorithm names (e.g., ["fast", "matrix"]).
//
// Returns:
//   - error: A ConfigError if the configuration is invalid, nil otherwise.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.Threshold < 0 {
		return apperrors.NewConfigError("parallelism threshold cannot be negative: %d", c.Threshold)
	}
	if c.Sequence || c.Ratio {
		if c.Start > c.End {
			return apperrors.NewConfigError("range start (%d) must not exceed range end (%d)", c.Start, c.End)
		}
		if c.Ratio && c.Start == 0 {
			return apperrors.NewConfigError("ratio mode requires start >= 1 (the quotient F(n+1)/F(n) is undefined at n=0)")
		}
	}
	if c.Sequence && c.Ratio {
		return apperrors.NewConfigError("-sequence and -ratio are mutually exclusive")
	}
	if c.MaxN > 0 {
		limit := c.N
		if c.Sequence || c.Ratio {
			limit = c.End
		}
		// Ratio mode evaluates the quotient F(End+1)/F(End), so the guard
		// must leave room for the index one past the end of the range.
		if c.Ratio && limit >= c.MaxN {
			return apperrors.NewConfigError("ratio end %d needs F(%d), which exceeds the configured maximum %d", limit, limit+1, c.MaxN)
		}
		if limit > c.MaxN {
			return apperrors.NewConfigError("requested index %d exceeds the configured maximum %d", limit, c.MaxN)
		}
	}
	isAlgoAvailable := false
	for _, a := range availableAlgos {
		if a == c.Algo {
			isAlgoAvailable = true
			break
		}
	}
	if c.Algo != "all" && !isAlgoAvailable {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
	}
	return nil
}

// ParseConfig parses the command-line arguments and populates an AppConfig.
// It defines all flags, applies environment variable overrides for flags not
// explicitly set, and validates the resulting configuration.
//
// The function is designed to be testable by allowing the input arguments and
// output writer to be specified.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//   - availableAlgos: The valid algorithm names for validation.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: An error if flag parsing or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	algoHelp := fmt.Sprintf("Algorithm to use: 'all' (default) or one of [%s].", strings.Join(availableAlgos, ", "))

	config := AppConfig{}
	fs.Uint64Var(&config.N, "n", DefaultN, "Index n of the Fibonacci number to calculate.")
	fs.BoolVar(&config.Sequence, "sequence", false, "Range mode: compute F(start)..F(end).")
	fs.Uint64Var(&config.Start, "start", 1, "First index of the range (sequence and ratio modes).")
	fs.Uint64Var(&config.End, "end", 10, "Last index of the range, inclusive (sequence and ratio modes).")
	fs.BoolVar(&config.Ratio, "ratio", false, "Convergence mode: report F(n+1)/F(n) against the golden ratio.")
	fs.BoolVar(&config.Verbose, "v", false, "Display the full value of the result (can be very long).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the calculation.")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.IntVar(&config.Threshold, "threshold", DefaultThreshold, "Threshold (in bits) for activating parallelism in multiplications.")
	fs.Uint64Var(&config.MaxN, "max-n", DefaultMaxN, "Upper bound on requested indices (0 to disable the guard).")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.HexOutput, "hex", false, "Display result in hexadecimal format.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	// Apply environment variable overrides for flags not explicitly set.
	applyEnvOverrides(&config, fs)

	config.Algo = strings.ToLower(config.Algo)
	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.New("invalid configuration")
	}
	return config, nil
}
