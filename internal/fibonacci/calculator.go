// Package fibonacci provides implementations for calculating Fibonacci
// numbers exactly, with arbitrary precision, in O(log n) big-integer
// multiplications.
//
// Indexing convention: F(0) = 0 and F(1) = 1, which yields the 1-indexed
// worked values F(1) = F(2) = 1, F(3) = 2, F(10) = 55. All implementations
// in this package follow this convention.
//
// The package exposes a Calculator interface that abstracts the underlying
// algorithm, allowing different strategies (Fast Doubling, Matrix
// Exponentiation) to be used interchangeably. Calculations are pure: the same
// index always produces a bit-identical result, and concurrent calls share no
// mutable state beyond internal object pools.
package fibonacci

import (
	"context"
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

var (
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fibengine_calculations_total",
			Help: "The total number of Fibonacci calculations processed",
		},
		[]string{"algorithm", "status"},
	)
	calculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "fibengine_calculation_duration_seconds",
			Help: "The duration of Fibonacci calculations in seconds",
		},
		[]string{"algorithm"},
	)
)

// Calculator defines the public interface for a Fibonacci calculator.
// It is the primary abstraction used by the orchestration and service layers
// to interact with the calculation algorithms.
type Calculator interface {
	// Calculate executes the calculation of the n-th Fibonacci number. It is
	// designed for safe concurrent execution and supports cancellation
	// through the provided context. Progress updates are sent asynchronously
	// and non-blockingly to progressChan when it is non-nil.
	//
	// Parameters:
	//   - ctx: The context for managing cancellation and deadlines.
	//   - progressChan: The channel for sending progress updates (may be nil).
	//   - calcIndex: A unique index identifying this calculator instance.
	//   - n: The index of the Fibonacci number to calculate.
	//   - opts: Configuration options for the calculation.
	//
	// Returns:
	//   - *big.Int: The calculated Fibonacci number.
	//   - error: An error if one occurred (e.g., context cancellation).
	Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, n uint64, opts Options) (*big.Int, error)

	// Name returns the display name of the calculation algorithm.
	Name() string
}

// coreCalculator defines the internal interface for a pure calculation
// algorithm.
type coreCalculator interface {
	CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error)
	Name() string
}

// FibCalculator is the Calculator implementation wrapping a coreCalculator
// to add cross-cutting concerns: the iterative shortcut for small n, the
// adaptation of channel-based progress reporting, and observability (metrics,
// tracing, logging).
type FibCalculator struct {
	core coreCalculator
}

// NewCalculator constructs a FibCalculator around the given core algorithm.
// It panics if core is nil, since a calculator without an algorithm cannot
// satisfy the interface contract.
//
// Parameters:
//   - core: The core calculator to be wrapped.
//
// Returns:
//   - Calculator: A new FibCalculator instance implementing Calculator.
func NewCalculator(core coreCalculator) Calculator {
	if core == nil {
		panic("fibonacci: the coreCalculator implementation cannot be nil")
	}
	return &FibCalculator{core: core}
}

// Name returns the name of the encapsulated core algorithm.
func (c *FibCalculator) Name() string {
	return c.core.Name()
}

// Calculate orchestrates the calculation process.
//
// For small n (≤ MaxFibUint64) the value is produced by plain iterative
// addition, which is faster than setting up the full algorithm. For larger
// values the progressChan is adapted into a ProgressReporter callback and the
// computation is delegated to the wrapped core. A span, a duration histogram
// observation, and a debug log record are emitted for every call.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - progressChan: The channel for sending progress updates (may be nil).
//   - calcIndex: A unique index identifying this calculator instance.
//   - n: The index of the Fibonacci number to calculate.
//   - opts: Configuration options for the calculation.
//
// Returns:
//   - *big.Int: The calculated Fibonacci number.
//   - error: An error if one occurred.
func (c *FibCalculator) Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, n uint64, opts Options) (result *big.Int, err error) {
	tracer := otel.Tracer("fibengine")
	ctx, span := tracer.Start(ctx, "Calculate")
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
		}
		algoName := c.core.Name()
		calculationsTotal.WithLabelValues(algoName, status).Inc()
		calculationDuration.WithLabelValues(algoName).Observe(duration)

		log.Debug().
			Str("algo", algoName).
			Uint64("n", n).
			Float64("duration", duration).
			Str("status", status).
			Msg("calculation completed")
	}()

	reporter := channelReporter(progressChan, calcIndex)

	if n <= MaxFibUint64 {
		reporter(1.0)
		return calculateSmall(n), nil
	}

	result, err = c.core.CalculateCore(ctx, reporter, n, opts)
	if err == nil && result != nil {
		reporter(1.0)
	}
	return result, err
}

// channelReporter adapts a progress channel into a ProgressReporter. Sends
// never block: when the channel is full the update is dropped, since a stale
// progress value is preferable to stalling the calculation.
func channelReporter(progressChan chan<- ProgressUpdate, calcIndex int) ProgressReporter {
	if progressChan == nil {
		return func(float64) {}
	}
	return func(p float64) {
		select {
		case progressChan <- ProgressUpdate{CalculatorIndex: calcIndex, Value: p}:
		default:
		}
	}
}

// calculateSmall returns the n-th Fibonacci number for small n using
// iterative addition.
func calculateSmall(n uint64) *big.Int {
	if n == 0 {
		return big.NewInt(0)
	}
	if n == 1 {
		return big.NewInt(1)
	}
	a := big.NewInt(0)
	b := big.NewInt(1)
	for i := uint64(2); i <= n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return b
}
