package fibonacci

import (
	"context"
	"fmt"
	"math/big"
	"math/bits"
	"runtime"
	"sync"
)

// FastDoubling computes Fibonacci numbers with the "Fast Doubling" algorithm,
// the fastest generally known method for a single large term.
//
// Formula Derivation:
// The identities follow from the matrix exponentiation form:
//
//	[ F(n+1) F(n)   ] = [ 1 1 ]^n
//	[ F(n)   F(n-1) ]   [ 1 0 ]
//
// Squaring the matrix for F(k) yields the matrix for F(2k), from which we
// extract the two core identities:
//
//	F(2k)   = F(k) * [2*F(k+1) - F(k)]
//	F(2k+1) = F(k+1)² + F(k)²
//
// The algorithm walks the bits of n from most significant to least
// significant, maintaining the pair (F(k), F(k+1)) and applying a doubling
// step per bit plus an addition step for set bits.
//
// Algorithmic Complexity:
// O(log n) big-integer multiplications. Since F(n) has O(n) bits, the total
// cost is O(log n * M(n)) where M is the multiplication cost of the
// arithmetic backend; the final multiplications dominate.
//
// Optimization Details:
//   - Zero-Allocation Loop: a sync.Pool recycles calcState objects so the
//     hot loop performs no allocations beyond big.Int growth.
//   - Multi-core Parallelism: above a configurable bit-size threshold the
//     three multiplications of a doubling step run on separate goroutines.
type FastDoubling struct {
	// Strategy supplies the multiplication primitives. Nil selects
	// BigIntStrategy.
	Strategy MultiplicationStrategy
}

// Name returns the descriptive name of the algorithm.
func (fd *FastDoubling) Name() string {
	return "Fast Doubling (O(log n), Parallel, Zero-Alloc)"
}

func (fd *FastDoubling) strategy() MultiplicationStrategy {
	if fd.Strategy != nil {
		return fd.Strategy
	}
	return &BigIntStrategy{}
}

// CalculateCore computes F(n) using the Fast Doubling algorithm.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - reporter: The function used for reporting progress (may be nil).
//   - n: The index of the Fibonacci number to calculate.
//   - opts: Configuration options for the calculation.
//
// Returns:
//   - *big.Int: The calculated Fibonacci number F(n).
//   - error: An error if one occurred (e.g., context cancellation).
func (fd *FastDoubling) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	s := acquireCalcState()
	defer releaseCalcState(s)

	if err := executeDoublingLoop(ctx, reporter, n, normalizeOptions(opts), s, fd.strategy()); err != nil {
		return nil, err
	}
	return new(big.Int).Set(s.fk), nil
}

// CalculatePair computes the adjacent pair (F(n), F(n+1)) in a single pass.
// The pair seeds iterative range sweeps, which need both values to advance.
//
// Returns copies; the internal state is recycled after the call.
func (fd *FastDoubling) CalculatePair(ctx context.Context, n uint64, opts Options) (*big.Int, *big.Int, error) {
	s := acquireCalcState()
	defer releaseCalcState(s)

	if err := executeDoublingLoop(ctx, nil, n, normalizeOptions(opts), s, fd.strategy()); err != nil {
		return nil, nil, err
	}
	return new(big.Int).Set(s.fk), new(big.Int).Set(s.fk1), nil
}

// executeDoublingLoop runs the fast doubling bit loop, leaving F(n) in s.fk
// and F(n+1) in s.fk1. The state must be freshly reset (fk=0, fk1=1).
//
// The loop invariant is that after processing the leading bits b of n, the
// state holds (F(b), F(b+1)). The doubling step advances k to 2k; the
// addition step advances 2k to 2k+1 when the current bit is set.
func executeDoublingLoop(ctx context.Context, reporter ProgressReporter, n uint64, opts Options, s *calcState, strategy MultiplicationStrategy) error {
	numBits := bits.Len64(n)

	totalWork := CalcTotalWork(numBits)
	weights := StepWeights(numBits)
	workDone := 0.0
	lastReported := -1.0

	useParallel := runtime.GOMAXPROCS(0) > 1 && opts.ParallelThreshold > 0

	for i := numBits - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("fast doubling canceled at bit %d/%d: %w", i, numBits-1, err)
		}

		// Doubling Step: t4 = 2*F(k+1) - F(k)
		s.t4.Lsh(s.fk1, 1).Sub(s.t4, s.fk)

		// Cache bit lengths; BitLen traverses the internal representation.
		fkBitLen := s.fk.BitLen()
		fk1BitLen := s.fk1.BitLen()
		maxBitLen := fk1BitLen
		if fkBitLen > maxBitLen {
			maxBitLen = fkBitLen
		}

		// The three multiplications of the step:
		//   t3 = F(k) * (2*F(k+1) - F(k)) = F(2k)
		//   t1 = F(k+1)²
		//   t2 = F(k)²
		// Destinations are disjoint, sources are read-only, so they can run
		// in parallel when the operands are large enough.
		tasks := []mulTask{
			{dest: &s.t3, x: s.fk, y: s.t4},
			{dest: &s.t1, x: s.fk1, square: true},
			{dest: &s.t2, x: s.fk, square: true},
		}
		inParallel := useParallel && shouldParallelize(opts, maxBitLen)
		if err := runMulTasks(strategy, opts, tasks, inParallel); err != nil {
			return fmt.Errorf("doubling step failed at bit %d/%d: %w", i, numBits-1, err)
		}

		// F(2k+1) = F(k+1)² + F(k)². Accumulate into t1, which already holds
		// a value of the right magnitude, avoiding a reallocation.
		s.t1.Add(s.t1, s.t2)

		// Rotate pointers for the next iteration: fk becomes F(2k) (t3),
		// fk1 becomes F(2k+1) (t1); the old pair becomes scratch space.
		s.fk, s.fk1, s.t2, s.t3, s.t1 = s.t3, s.t1, s.fk, s.fk1, s.t2

		// Addition Step: if the i-th bit of n is set, advance
		// (F(2k), F(2k+1)) to (F(2k+1), F(2k)+F(2k+1)).
		if (n>>uint(i))&1 == 1 {
			s.t4.Add(s.fk, s.fk1)
			s.fk, s.fk1, s.t4 = s.fk1, s.t4, s.fk
		}

		workDone = ReportStepProgress(reporter, &lastReported, totalWork, workDone, numBits-1-i, numBits, weights)
	}
	return nil
}

// calcState aggregates the working variables of the fast doubling loop,
// allowing efficient reuse through an object pool.
type calcState struct {
	fk, fk1, t1, t2, t3, t4 *big.Int
}

// Reset prepares the state for a new calculation, initializing the pair to
// (F(0), F(1)) = (0, 1). The temporaries are scratch space and need no reset.
func (s *calcState) Reset() {
	s.fk.SetInt64(0)
	s.fk1.SetInt64(1)
}

var calcStatePool = sync.Pool{
	New: func() any {
		return &calcState{
			fk:  new(big.Int),
			fk1: new(big.Int),
			t1:  new(big.Int),
			t2:  new(big.Int),
			t3:  new(big.Int),
			t4:  new(big.Int),
		}
	},
}

// acquireCalcState gets a state from the pool and resets it. The returned
// state must be released with releaseCalcState, preferably via defer, so the
// state returns to the pool even on error or panic.
func acquireCalcState() *calcState {
	s := calcStatePool.Get().(*calcState)
	s.Reset()
	return s
}

// releaseCalcState puts a state back into the pool. States holding oversized
// big.Ints are discarded entirely so the GC can reclaim the memory. Safe to
// call with nil.
func releaseCalcState(s *calcState) {
	if s == nil {
		return
	}
	if checkLimit(s.fk) || checkLimit(s.fk1) ||
		checkLimit(s.t1) || checkLimit(s.t2) ||
		checkLimit(s.t3) || checkLimit(s.t4) {
		return
	}
	calcStatePool.Put(s)
}
