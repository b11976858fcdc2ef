// Package service contains the application-facing calculation logic shared
// by the HTTP server and other callers: input validation, algorithm
// resolution, and execution with centralized options.
package service

import (
	"context"
	"math/big"

	"github.com/agbru/fibengine/internal/config"
	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/ratio"
)

// Service defines the interface for Fibonacci calculation services.
// This abstraction enables dependency injection and easier testing/mocking.
type Service interface {
	// Calculate computes F(n) with the named algorithm.
	Calculate(ctx context.Context, algoName string, n uint64) (*big.Int, error)

	// Sequence computes the ordered terms F(start)..F(end), inclusive.
	Sequence(ctx context.Context, start, end uint64) ([]*big.Int, error)

	// Convergence computes the quotients F(n+1)/F(n) for n in [from, to]
	// together with their distance from the golden ratio.
	Convergence(ctx context.Context, from, to uint64) ([]ratio.Point, error)
}

// CalculatorService handles the core logic for serving Fibonacci requests.
// It centralizes validation, algorithm retrieval, and execution options.
type CalculatorService struct {
	factory  fibonacci.CalculatorFactory
	config   config.AppConfig
	maxN     uint64
	gen      *fibonacci.RangeGenerator
	analyzer *ratio.Analyzer
}

// Ensure CalculatorService implements Service.
var _ Service = (*CalculatorService)(nil)

// NewCalculatorService creates a new CalculatorService.
//
// Parameters:
//   - factory: The factory to retrieve calculators from.
//   - cfg: The application configuration.
//   - maxN: The maximum allowed index (0 for no limit).
func NewCalculatorService(factory fibonacci.CalculatorFactory, cfg config.AppConfig, maxN uint64) *CalculatorService {
	return &CalculatorService{
		factory:  factory,
		config:   cfg,
		maxN:     maxN,
		gen:      fibonacci.NewRangeGeneratorWithLimit(maxN),
		analyzer: ratio.NewAnalyzer(0),
	}
}

// Calculate retrieves the requested calculator and executes the calculation
// with the configured options, after validating n against the index guard.
//
// Returns:
//   - *big.Int: The result.
//   - error: apperrors.ErrLimitExceeded if n exceeds the guard, an unknown
//     algorithm error, or a context error.
func (s *CalculatorService) Calculate(ctx context.Context, algoName string, n uint64) (*big.Int, error) {
	if s.maxN > 0 && n > s.maxN {
		return nil, apperrors.ErrLimitExceeded
	}

	calc, err := s.factory.Get(algoName)
	if err != nil {
		return nil, err
	}

	// Progress is not surfaced in service usage; pass a nil channel.
	return calc.Calculate(ctx, nil, 0, n, s.config.ToCalculationOptions())
}

// Sequence returns the ordered terms F(start)..F(end). Validation of the
// range bounds and the index guard happen inside the generator.
func (s *CalculatorService) Sequence(ctx context.Context, start, end uint64) ([]*big.Int, error) {
	return s.gen.Range(ctx, start, end, s.config.ToCalculationOptions())
}

// Convergence returns the golden-ratio convergence samples for n in [from, to].
func (s *CalculatorService) Convergence(ctx context.Context, from, to uint64) ([]ratio.Point, error) {
	if s.maxN > 0 && to >= s.maxN {
		return nil, apperrors.ErrLimitExceeded
	}
	return s.analyzer.Convergence(ctx, from, to, s.config.ToCalculationOptions())
}
