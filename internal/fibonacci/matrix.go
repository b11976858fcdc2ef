package fibonacci

import (
	"context"
	"fmt"
	"math/big"
	"math/bits"
	"runtime"
	"sync"
)

// MatrixExponentiation computes Fibonacci numbers through powers of the
// Q-matrix, the classic equivalent formulation of fast doubling.
//
// Mathematical Basis:
// The Fibonacci recurrence in matrix form is:
//
//	[ F(n+1) F(n)   ] = [ 1 1 ]^n
//	[ F(n)   F(n-1) ]   [ 1 0 ]
//
// The n-th power of Q = [[1,1],[1,0]] is computed by binary exponentiation
// (exponentiation by squaring), reducing the number of matrix multiplications
// from O(n) to O(log n). F(n) is then read off the off-diagonal entry.
//
// The matrix exists only as an algorithmic device inside this file; it is
// never exposed through the package API.
//
// Optimization Details:
//   - Symmetric Squaring: every power of Q is symmetric, so squaring needs
//     only 4 big.Int multiplications instead of 8.
//   - Commuting Products: the accumulator and the running power are both
//     powers of Q, hence they commute and their product stays symmetric,
//     which brings the general product down to 5 multiplications.
//   - Zero-Allocation: a sync.Pool recycles matrixState objects.
//   - Parallel Processing: the independent multiplications of a squaring or
//     product step run on separate goroutines above the size threshold.
type MatrixExponentiation struct {
	// Strategy supplies the multiplication primitives. Nil selects
	// BigIntStrategy.
	Strategy MultiplicationStrategy
}

// Name returns the descriptive name of the algorithm.
func (c *MatrixExponentiation) Name() string {
	return "Matrix Exponentiation (O(log n), Parallel, Zero-Alloc)"
}

func (c *MatrixExponentiation) strategy() MultiplicationStrategy {
	if c.Strategy != nil {
		return c.Strategy
	}
	return &BigIntStrategy{}
}

// CalculateCore computes F(n) by raising the Q-matrix to the n-th power.
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
func (c *MatrixExponentiation) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	if n == 0 {
		if reporter != nil {
			reporter(1.0)
		}
		return big.NewInt(0), nil
	}

	s := acquireMatrixState()
	defer releaseMatrixState(s)

	opts = normalizeOptions(opts)
	strategy := c.strategy()
	useParallel := runtime.GOMAXPROCS(0) > 1 && opts.ParallelThreshold > 0

	numBits := bits.Len64(n)
	totalWork := CalcTotalWork(numBits)
	weights := StepWeights(numBits)
	workDone := 0.0
	lastReported := -1.0

	// Binary exponentiation, least significant bit first:
	// res accumulates Q^n, p holds Q^(2^i).
	for i := 0; i < numBits; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("matrix exponentiation canceled at bit %d/%d: %w", i, numBits-1, err)
		}

		if (n>>uint(i))&1 == 1 {
			if err := s.mulCommuting(s.res, s.p, strategy, opts, useParallel); err != nil {
				return nil, fmt.Errorf("matrix product failed at bit %d: %w", i, err)
			}
		}
		// The last squaring would only be thrown away.
		if i < numBits-1 {
			if err := s.squareSymmetric(s.p, strategy, opts, useParallel); err != nil {
				return nil, fmt.Errorf("matrix squaring failed at bit %d: %w", i, err)
			}
		}

		workDone = ReportStepProgress(reporter, &lastReported, totalWork, workDone, i, numBits, weights)
	}

	// Q^n = [[F(n+1), F(n)], [F(n), F(n-1)]]; the answer is the b entry.
	return new(big.Int).Set(s.res.b), nil
}

// qmatrix represents a symmetric 2x2 matrix of *big.Int values:
//
//	[ a b ]
//	[ b d ]
//
// Every power of Q is symmetric, so the c entry is never stored.
type qmatrix struct{ a, b, d *big.Int }

func newQMatrix() *qmatrix {
	return &qmatrix{a: new(big.Int), b: new(big.Int), d: new(big.Int)}
}

// SetIdentity configures the matrix as the multiplicative identity.
func (m *qmatrix) SetIdentity() {
	m.a.SetInt64(1)
	m.b.SetInt64(0)
	m.d.SetInt64(1)
}

// SetBaseQ configures the matrix as the Fibonacci base matrix Q = [[1,1],[1,0]].
func (m *qmatrix) SetBaseQ() {
	m.a.SetInt64(1)
	m.b.SetInt64(1)
	m.d.SetInt64(0)
}

func (m *qmatrix) maxBitLen() int {
	max := m.a.BitLen()
	if l := m.b.BitLen(); l > max {
		max = l
	}
	if l := m.d.BitLen(); l > max {
		max = l
	}
	return max
}

// matrixState aggregates the accumulator, the running power, and the
// temporaries needed by the symmetric product formulas, so the whole
// exponentiation proceeds without allocations in the hot path.
type matrixState struct {
	res, p *qmatrix
	// Products of the symmetric step formulas.
	t1, t2, t3, t4, t5 *big.Int
	// Sum scratch, kept separate so parallel tasks touch disjoint values.
	u1 *big.Int
}

// Reset prepares the state for a new exponentiation: accumulator to identity,
// running power to Q.
func (s *matrixState) Reset() {
	s.res.SetIdentity()
	s.p.SetBaseQ()
}

// squareSymmetric squares the symmetric matrix m in place:
//
//	[ a b ]²  =  [ a²+b²   b(a+d) ]
//	[ b d ]      [ b(a+d)  b²+d²  ]
//
// Four multiplications; the b(a+d) product and the three squarings are
// independent and may run in parallel.
func (s *matrixState) squareSymmetric(m *qmatrix, strategy MultiplicationStrategy, opts Options, useParallel bool) error {
	s.u1.Add(m.a, m.d)
	tasks := []mulTask{
		{dest: &s.t1, x: m.a, square: true},
		{dest: &s.t2, x: m.b, square: true},
		{dest: &s.t3, x: m.d, square: true},
		{dest: &s.t4, x: m.b, y: s.u1},
	}
	inParallel := useParallel && shouldParallelize(opts, m.maxBitLen())
	if err := runMulTasks(strategy, opts, tasks, inParallel); err != nil {
		return err
	}
	m.a.Add(s.t1, s.t2)
	m.d.Add(s.t2, s.t3)
	m.b.Set(s.t4)
	return nil
}

// mulCommuting sets x to the product x*y of two commuting symmetric matrices
// (powers of Q). Commutativity keeps the product symmetric:
//
//	[ xa xb ] [ ya yb ]  =  [ xa*ya+xb*yb   xa*yb+xb*yd ]
//	[ xb xd ] [ yb yd ]     [ xa*yb+xb*yd   xb*yb+xd*yd ]
//
// Five multiplications, all independent.
func (s *matrixState) mulCommuting(x, y *qmatrix, strategy MultiplicationStrategy, opts Options, useParallel bool) error {
	maxBitLen := x.maxBitLen()
	if l := y.maxBitLen(); l > maxBitLen {
		maxBitLen = l
	}
	tasks := []mulTask{
		{dest: &s.t1, x: x.a, y: y.a},
		{dest: &s.t2, x: x.b, y: y.b},
		{dest: &s.t3, x: x.a, y: y.b},
		{dest: &s.t4, x: x.b, y: y.d},
		{dest: &s.t5, x: x.d, y: y.d},
	}
	inParallel := useParallel && shouldParallelize(opts, maxBitLen)
	if err := runMulTasks(strategy, opts, tasks, inParallel); err != nil {
		return err
	}
	x.a.Add(s.t1, s.t2)
	x.b.Add(s.t3, s.t4)
	x.d.Add(s.t2, s.t5)
	return nil
}

var matrixStatePool = sync.Pool{
	New: func() any {
		return &matrixState{
			res: newQMatrix(),
			p:   newQMatrix(),
			t1:  new(big.Int),
			t2:  new(big.Int),
			t3:  new(big.Int),
			t4:  new(big.Int),
			t5:  new(big.Int),
			u1:  new(big.Int),
		}
	},
}

// acquireMatrixState gets a state from the pool and resets it. Release with
// releaseMatrixState, preferably via defer.
func acquireMatrixState() *matrixState {
	s := matrixStatePool.Get().(*matrixState)
	s.Reset()
	return s
}

// releaseMatrixState puts a state back into the pool, discarding states that
// hold oversized big.Ints. Safe to call with nil.
func releaseMatrixState(s *matrixState) {
	if s == nil {
		return
	}
	if checkLimit(s.t1) || checkLimit(s.t2) || checkLimit(s.t3) ||
		checkLimit(s.t4) || checkLimit(s.t5) || checkLimit(s.u1) ||
		checkQMatrixLimit(s.res) || checkQMatrixLimit(s.p) {
		return
	}
	matrixStatePool.Put(s)
}

func checkQMatrixLimit(m *qmatrix) bool {
	return checkLimit(m.a) || checkLimit(m.b) || checkLimit(m.d)
}
