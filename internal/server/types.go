package server

import (
	"math/big"
	"time"
)

// CalculateResponse is the standardized JSON response for a point query.
type CalculateResponse struct {
	// N is the index of the Fibonacci number requested.
	N uint64 `json:"n"`
	// Result is the calculated Fibonacci number. Omitted if an error occurred.
	Result *big.Int `json:"result,omitempty"`
	// Digits is the number of decimal digits in the result.
	Digits int `json:"digits,omitempty"`
	// Duration is the formatted execution time string.
	Duration string `json:"duration"`
	// Error contains the error message if the calculation failed.
	Error string `json:"error,omitempty"`
	// Algorithm is the name of the algorithm used for the calculation.
	Algorithm string `json:"algorithm"`
}

// SequenceResponse is the standardized JSON response for a range query.
type SequenceResponse struct {
	// Start is the first index of the range.
	Start uint64 `json:"start"`
	// End is the last index of the range, inclusive.
	End uint64 `json:"end"`
	// Terms holds the decimal representations of F(start)..F(end) in order.
	Terms []string `json:"terms"`
	// Duration is the formatted execution time string.
	Duration string `json:"duration"`
}

// RatioSample is one JSON sample of the golden-ratio convergence series.
type RatioSample struct {
	// N is the index of the denominator term.
	N uint64 `json:"n"`
	// Ratio is the decimal rendering of F(n+1)/F(n).
	Ratio string `json:"ratio"`
	// Error is the decimal rendering of |ratio - phi|.
	Error string `json:"error"`
}

// RatioResponse is the standardized JSON response for a convergence query.
type RatioResponse struct {
	// From is the first denominator index.
	From uint64 `json:"from"`
	// To is the last denominator index, inclusive.
	To uint64 `json:"to"`
	// Phi is the decimal rendering of the golden ratio at the working precision.
	Phi string `json:"phi"`
	// Samples holds the convergence series in ascending index order.
	Samples []RatioSample `json:"samples"`
}

// ErrorResponse is the standardized JSON response for an API error.
type ErrorResponse struct {
	// Error is the short error code or status text.
	Error string `json:"error"`
	// Message is a descriptive error message.
	Message string `json:"message,omitempty"`
}

// ParseError represents a query-parameter parsing error with an HTTP status.
type ParseError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e ParseError) Error() string {
	return e.Message
}

// Timeouts holds timeout configuration for the HTTP server.
// These can be customized via functional options for testing or deployment needs.
type Timeouts struct {
	// RequestTimeout is the maximum duration for a single request.
	RequestTimeout time.Duration
	// ShutdownTimeout is the maximum duration allowed for graceful shutdown.
	ShutdownTimeout time.Duration
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
}

// DefaultServerTimeouts returns conservative timeout defaults. The write and
// request timeouts are generous because large indices legitimately take
// minutes to compute and serialize.
func DefaultServerTimeouts() Timeouts {
	return Timeouts{
		RequestTimeout:  5 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Minute,
		IdleTimeout:     2 * time.Minute,
	}
}
