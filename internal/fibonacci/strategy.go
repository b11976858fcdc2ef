// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file defines the multiplication strategy abstraction shared by the
// calculator implementations.
package fibonacci

import (
	"math/big"
	"sync/atomic"
)

// MultiplicationStrategy defines the interface for the multiplication and
// squaring primitives used by the Fibonacci algorithms. The engine consumes
// arbitrary-precision arithmetic through this seam, which keeps the
// algorithms independent of the backing integer implementation and makes the
// operation count observable in tests.
type MultiplicationStrategy interface {
	// Multiply computes x * y and stores the result in z (which may be reused).
	// The result is returned, which may be z or a new *big.Int.
	Multiply(z, x, y *big.Int, opts Options) (*big.Int, error)

	// Square computes x * x and stores the result in z (which may be reused).
	Square(z, x *big.Int, opts Options) (*big.Int, error)

	// Name returns a descriptive name for the strategy.
	Name() string
}

// BigIntStrategy performs all arithmetic with math/big. It is the default
// strategy; math/big switches internally between schoolbook and Karatsuba
// multiplication based on operand size.
type BigIntStrategy struct{}

// Name returns the name of the math/big strategy.
func (s *BigIntStrategy) Name() string {
	return "math/big"
}

// Multiply computes x * y with math/big.
func (s *BigIntStrategy) Multiply(z, x, y *big.Int, opts Options) (*big.Int, error) {
	if z == nil {
		z = new(big.Int)
	}
	return z.Mul(x, y), nil
}

// Square computes x * x with math/big.
func (s *BigIntStrategy) Square(z, x *big.Int, opts Options) (*big.Int, error) {
	if z == nil {
		z = new(big.Int)
	}
	return z.Mul(x, x), nil
}

// CountingStrategy wraps another strategy and counts how many multiplication
// and squaring operations are performed. It exists to make the asymptotic
// behavior of the algorithms assertable: the doubling and matrix methods must
// issue O(log n) big-integer multiplications, never O(n).
//
// CountingStrategy is safe for concurrent use.
type CountingStrategy struct {
	inner      MultiplicationStrategy
	multiplies atomic.Int64
	squares    atomic.Int64
}

// NewCountingStrategy wraps inner with operation counting. A nil inner
// defaults to BigIntStrategy.
func NewCountingStrategy(inner MultiplicationStrategy) *CountingStrategy {
	if inner == nil {
		inner = &BigIntStrategy{}
	}
	return &CountingStrategy{inner: inner}
}

// Name returns the name of the counting strategy including its delegate.
func (s *CountingStrategy) Name() string {
	return "Counting(" + s.inner.Name() + ")"
}

// Multiply delegates to the wrapped strategy and increments the multiply counter.
func (s *CountingStrategy) Multiply(z, x, y *big.Int, opts Options) (*big.Int, error) {
	s.multiplies.Add(1)
	return s.inner.Multiply(z, x, y, opts)
}

// Square delegates to the wrapped strategy and increments the square counter.
func (s *CountingStrategy) Square(z, x *big.Int, opts Options) (*big.Int, error) {
	s.squares.Add(1)
	return s.inner.Square(z, x, opts)
}

// Multiplies returns the number of Multiply calls recorded so far.
func (s *CountingStrategy) Multiplies() int64 {
	return s.multiplies.Load()
}

// Squares returns the number of Square calls recorded so far.
func (s *CountingStrategy) Squares() int64 {
	return s.squares.Load()
}

// Total returns the combined number of multiplication-class operations.
func (s *CountingStrategy) Total() int64 {
	return s.multiplies.Load() + s.squares.Load()
}

// Reset clears both counters.
func (s *CountingStrategy) Reset() {
	s.multiplies.Store(0)
	s.squares.Store(0)
}
