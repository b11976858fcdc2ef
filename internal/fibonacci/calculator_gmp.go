//go:build gmp

// This file provides a GMP-backed Fibonacci calculator, conditionally
// compiled with the "gmp" build tag:
//   - Projects build without GMP by default (math/big only)
//   - GMP support is opt-in: go build -tags=gmp
//   - The codebase stays portable across systems without libgmp installed
//
// System Requirements:
//   - Linux: sudo apt-get install libgmp-dev (Debian/Ubuntu)
//   - macOS: brew install gmp
//
// The direct use of github.com/ncw/gmp here is intentional: routing GMP
// through the MultiplicationStrategy seam would force a conversion to
// math/big on every operation, negating GMP's speed advantage. The build tag
// provides the separation without runtime cost.

package fibonacci

import (
	"context"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/ncw/gmp"
)

func init() {
	RegisterCalculator("gmp", func() coreCalculator { return &GMPCalculator{} })
}

// GMPCalculator implements the fast doubling algorithm over GMP integers.
// It requires the 'gmp' build tag and libgmp installed on the system.
//
// Performance Characteristics:
//   - Excels for very large n where GMP's assembly-optimized multiplication
//     outperforms math/big
//   - For smaller n the CGO call overhead may make math/big faster
//   - gmp.Int instances are reused across the loop to minimize allocations
type GMPCalculator struct{}

// Name returns the name of the algorithm.
func (c *GMPCalculator) Name() string {
	return "GMP (Fast Doubling)"
}

// gmpDoublingStep performs the fast doubling step on GMP integers.
// Given F(k) in a and F(k+1) in b, computes:
//   - F(2k) = F(k) * (2*F(k+1) - F(k))
//   - F(2k+1) = F(k+1)² + F(k)²
//
// After this call, a contains F(2k) and b contains F(2k+1). t1 and t2 are
// temporaries reused across iterations.
func gmpDoublingStep(a, b, t1, t2 *gmp.Int) {
	// t1 = a * (2b - a) = F(2k)
	t1.MulUint32(b, 2)
	t1.Sub(t1, a)
	t1.Mul(a, t1)

	// t2 = a² + b² = F(2k+1); b² is staged in a since F(2k) is safe in t1.
	t2.Mul(a, a)
	a.Mul(b, b)
	t2.Add(t2, a)

	a.Set(t1)
	b.Set(t2)
}

// gmpAdditionStep transforms (a, b) from (F(k), F(k+1)) to (F(k+1), F(k)+F(k+1)).
func gmpAdditionStep(a, b, t *gmp.Int) {
	t.Add(a, b)
	a.Set(b)
	b.Set(t)
}

// CalculateCore computes F(n) with fast doubling over GMP integers and
// converts the result back to math/big at the boundary.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - reporter: The function used for reporting progress (may be nil).
//   - n: The index of the Fibonacci number to calculate.
//   - opts: Configuration options (GMP manages its own parallelism, so the
//     parallel threshold is ignored).
//
// Returns:
//   - *big.Int: The calculated Fibonacci number F(n).
//   - error: An error if one occurred (e.g., context cancellation).
func (c *GMPCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	a := gmp.NewInt(0) // F(k)
	b := gmp.NewInt(1) // F(k+1)
	t1 := new(gmp.Int)
	t2 := new(gmp.Int)

	numBits := bits.Len64(n)
	totalWork := CalcTotalWork(numBits)
	weights := StepWeights(numBits)
	workDone := 0.0
	lastReported := -1.0

	for i := numBits - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("gmp fast doubling canceled at bit %d/%d: %w", i, numBits-1, err)
		}

		gmpDoublingStep(a, b, t1, t2)
		if (n>>uint(i))&1 == 1 {
			gmpAdditionStep(a, b, t1)
		}

		workDone = ReportStepProgress(reporter, &lastReported, totalWork, workDone, numBits-1-i, numBits, weights)
	}

	result := new(big.Int)
	result.SetBytes(a.Bytes())
	return result, nil
}
