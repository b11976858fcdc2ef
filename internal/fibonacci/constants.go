// Package fibonacci provides implementations for calculating Fibonacci numbers.
package fibonacci

const (
	// DefaultParallelThreshold is the default bit size threshold at which the
	// three multiplications of a doubling step are executed on separate
	// goroutines. Below this size the cost of goroutine scheduling exceeds
	// the benefit of parallelism.
	DefaultParallelThreshold = 4096

	// MaxFibUint64 = 93 because F(93) is the largest Fibonacci number that
	// fits in a uint64; F(94) exceeds 2^64. Below this bound the decorator
	// uses plain iterative addition instead of the full algorithm.
	MaxFibUint64 = 93

	// ProgressReportThreshold is the minimum progress change (0.0 to 1.0)
	// required before a new progress update is emitted. This prevents
	// excessive UI updates that could slow down calculations.
	ProgressReportThreshold = 0.01
)
