// Package ratio computes the convergence of consecutive Fibonacci quotients
// toward the golden ratio.
//
// The quotient F(n+1)/F(n) approaches φ = (1+√5)/2, the dominant eigenvalue
// of the Fibonacci transition matrix, with the absolute error shrinking by a
// factor of φ² per step. The package produces plain (index, ratio, error)
// values; rendering them as a table or chart is the caller's concern.
package ratio

import (
	"context"
	"math/big"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
)

// DefaultPrecision is the mantissa precision, in bits, used for the quotient
// arithmetic when the caller does not specify one. 256 bits comfortably
// exceeds the precision at which successive quotients become
// indistinguishable from φ for any index reachable in practice.
const DefaultPrecision = 256

// Point is one sample of the convergence series: the quotient F(n+1)/F(n)
// and its absolute distance from φ.
type Point struct {
	// N is the index of the denominator term.
	N uint64
	// Ratio is F(n+1)/F(n) at the configured precision.
	Ratio *big.Float
	// Error is |Ratio - φ| at the configured precision.
	Error *big.Float
}

// Phi returns the golden ratio (1+√5)/2 computed to prec bits of mantissa.
func Phi(prec uint) *big.Float {
	sqrt5 := new(big.Float).SetPrec(prec).SetInt64(5)
	sqrt5.Sqrt(sqrt5)
	phi := new(big.Float).SetPrec(prec).SetInt64(1)
	phi.Add(phi, sqrt5)
	return phi.Quo(phi, new(big.Float).SetPrec(prec).SetInt64(2))
}

// Analyzer produces convergence series. It is stateless and safe for
// concurrent use.
type Analyzer struct {
	// Precision is the mantissa precision in bits; 0 selects DefaultPrecision.
	Precision uint

	gen *fibonacci.RangeGenerator
}

// NewAnalyzer creates an Analyzer with the given precision (0 for the default).
func NewAnalyzer(precision uint) *Analyzer {
	return &Analyzer{Precision: precision, gen: fibonacci.NewRangeGenerator()}
}

func (a *Analyzer) prec() uint {
	if a.Precision > 0 {
		return a.Precision
	}
	return DefaultPrecision
}

// Convergence returns the series of quotients F(n+1)/F(n) for n in
// [from, to], in ascending index order.
//
// Parameters:
//   - ctx: The context for managing cancellation.
//   - from: The first denominator index; must be ≥ 1 so the quotient is defined.
//   - to: The last denominator index, inclusive; must be ≥ from.
//   - opts: Options forwarded to the underlying sequence computation.
//
// Returns:
//   - []Point: One sample per index.
//   - error: A ValidationError for an empty or undefined range, or a context
//     error if canceled.
func (a *Analyzer) Convergence(ctx context.Context, from, to uint64, opts fibonacci.Options) ([]Point, error) {
	if from == 0 {
		return nil, apperrors.NewValidationError("from",
			"quotient F(n+1)/F(n) requires n >= 1", from)
	}
	if from > to {
		return nil, apperrors.NewValidationError("from",
			"range start must not exceed range end", from)
	}

	// One sweep fetches every term the quotients need: F(from)..F(to+1).
	terms, err := a.gen.Range(ctx, from, to+1, opts)
	if err != nil {
		return nil, err
	}

	prec := a.prec()
	phi := Phi(prec)
	points := make([]Point, 0, to-from+1)
	for i := from; i <= to; i++ {
		num := new(big.Float).SetPrec(prec).SetInt(terms[i-from+1])
		den := new(big.Float).SetPrec(prec).SetInt(terms[i-from])
		quotient := new(big.Float).SetPrec(prec).Quo(num, den)

		diff := new(big.Float).SetPrec(prec).Sub(quotient, phi)
		diff.Abs(diff)

		points = append(points, Point{N: i, Ratio: quotient, Error: diff})
	}
	return points, nil
}
