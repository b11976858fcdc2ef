// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file contains configuration options for Fibonacci calculations.
package fibonacci

// Options configures a Fibonacci calculation. The zero value is valid and
// selects the documented defaults.
type Options struct {
	// ParallelThreshold is the bit size threshold for parallelizing the
	// multiplications of a doubling or squaring step. If 0, the default
	// is used. Negative values disable parallelism entirely.
	ParallelThreshold int
}

// normalizeOptions returns a copy of opts with default values filled in for
// zero values, ensuring consistent threshold handling across calculator
// implementations.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.ParallelThreshold == 0 {
		normalized.ParallelThreshold = DefaultParallelThreshold
	}
	return normalized
}
