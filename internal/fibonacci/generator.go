// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file implements the contiguous-range operation.
package fibonacci

import (
	"context"
	"math/big"

	apperrors "github.com/agbru/fibengine/internal/errors"
)

// ctxCheckInterval is the number of additions between context checks during
// a range sweep. Checking on every term would dominate the cost of the cheap
// early additions.
const ctxCheckInterval = 1024

// RangeGenerator produces contiguous runs of Fibonacci numbers.
//
// A range request F(start)..F(end) is served by seeding the adjacent pair
// (F(start), F(start+1)) with a single O(log start) fast doubling pass, then
// sweeping forward with one addition per term. For k = end-start+1 terms this
// costs O(log start + k) big-integer operations, which beats k independent
// point queries whenever k is large relative to log(start).
//
// RangeGenerator is stateless between calls and safe for concurrent use.
type RangeGenerator struct {
	// MaxIndex, when non-zero, bounds the largest index a range may reach.
	// Requests beyond it fail with apperrors.ErrLimitExceeded before any
	// computation starts. F(n) has about n/3 decimal digits, so the guard
	// bounds both memory and output size for pathological inputs.
	MaxIndex uint64

	seeder FastDoubling
}

// NewRangeGenerator creates a RangeGenerator without an index guard.
func NewRangeGenerator() *RangeGenerator {
	return &RangeGenerator{}
}

// NewRangeGeneratorWithLimit creates a RangeGenerator that rejects ranges
// reaching past maxIndex.
func NewRangeGeneratorWithLimit(maxIndex uint64) *RangeGenerator {
	return &RangeGenerator{MaxIndex: maxIndex}
}

// Range returns the ordered sequence F(start), F(start+1), ..., F(end),
// inclusive on both ends. Each element is an independent big.Int; the caller
// may mutate them freely.
//
// Parameters:
//   - ctx: The context for managing cancellation.
//   - start: The first index of the range (start ≤ end).
//   - end: The last index of the range, inclusive.
//   - opts: Configuration options for the seed computation.
//
// Returns:
//   - []*big.Int: The sequence in ascending index order.
//   - error: A ValidationError if start > end, apperrors.ErrLimitExceeded if
//     the guard is exceeded, or a context error if canceled.
func (g *RangeGenerator) Range(ctx context.Context, start, end uint64, opts Options) ([]*big.Int, error) {
	if start > end {
		return nil, apperrors.NewValidationError("start",
			"range start must not exceed range end", start)
	}
	if g.MaxIndex > 0 && end > g.MaxIndex {
		return nil, apperrors.ErrLimitExceeded
	}

	// Seed the sweep with the pair (F(start), F(start+1)).
	a, b, err := g.seeder.CalculatePair(ctx, start, opts)
	if err != nil {
		return nil, err
	}

	out := make([]*big.Int, 0, end-start+1)
	out = append(out, new(big.Int).Set(a))
	for i := start; i < end; i++ {
		if (i-start)%ctxCheckInterval == ctxCheckInterval-1 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		// Advance (a, b) = (F(i), F(i+1)) to (F(i+1), F(i+2)).
		a.Add(a, b)
		a, b = b, a
		out = append(out, new(big.Int).Set(a))
	}
	return out, nil
}
