package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/ratio"
)

// ratioRenderDigits is the number of decimal digits used when rendering
// golden-ratio samples in JSON responses.
const ratioRenderDigits = 30

// handleHealth responds to health check requests.
// It returns a 200 OK status with a JSON payload indicating the service is healthy.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// handleAlgorithms returns the list of available Fibonacci calculation algorithms.
// It queries the internal registry and returns the keys as a JSON array.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	algorithms := s.factory.List()

	response := map[string]any{
		"algorithms": algorithms,
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// handleCalculate processes requests to calculate Fibonacci numbers.
// It parses the query parameters 'n' (the index) and 'algo' (the algorithm),
// executes the calculation, and returns the result in JSON format.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	n, algo, err := parseCalculateParams(r)
	if err != nil {
		var parseErr ParseError
		if errors.As(err, &parseErr) {
			s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		} else {
			s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.service.Calculate(ctx, algo, n)
	duration := time.Since(start)

	if status, msg, rejected := s.rejectionStatus(err); rejected {
		s.writeErrorResponse(w, status, msg)
		return
	}

	resp := buildCalculateResponse(n, algo, result, duration, err)
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// handleSequence processes requests for a consecutive range of Fibonacci
// numbers. It parses 'start' and 'end' query parameters and returns the terms
// F(start)..F(end) in order.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	start, end, err := parseRangeParams(r, "start", "end")
	if err != nil {
		var parseErr ParseError
		if errors.As(err, &parseErr) {
			s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		} else {
			s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	begin := time.Now()
	terms, err := s.service.Sequence(ctx, start, end)
	duration := time.Since(begin)

	if status, msg, rejected := s.rejectionStatus(err); rejected {
		s.writeErrorResponse(w, status, msg)
		return
	}
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := SequenceResponse{
		Start:    start,
		End:      end,
		Terms:    make([]string, len(terms)),
		Duration: duration.String(),
	}
	for i, t := range terms {
		resp.Terms[i] = t.String()
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// handleRatio processes golden-ratio convergence requests. It parses 'from'
// and 'to' query parameters and returns the quotient F(n+1)/F(n) together
// with its distance from phi for each n in the range.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleRatio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	from, to, err := parseRangeParams(r, "from", "to")
	if err != nil {
		var parseErr ParseError
		if errors.As(err, &parseErr) {
			s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		} else {
			s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	samples, err := s.service.Convergence(ctx, from, to)

	if status, msg, rejected := s.rejectionStatus(err); rejected {
		s.writeErrorResponse(w, status, msg)
		return
	}
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := RatioResponse{
		From:    from,
		To:      to,
		Phi:     ratio.Phi(ratio.DefaultPrecision).Text('f', ratioRenderDigits),
		Samples: make([]RatioSample, len(samples)),
	}
	for i, p := range samples {
		resp.Samples[i] = RatioSample{
			N:     p.N,
			Ratio: p.Ratio.Text('f', ratioRenderDigits),
			Error: p.Error.Text('e', 6),
		}
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// rejectionStatus maps domain rejection errors to HTTP statuses. It reports
// whether the error represents a request that must be refused rather than a
// calculation failure.
func (s *Server) rejectionStatus(err error) (int, string, bool) {
	switch {
	case err == nil:
		return 0, "", false
	case errors.Is(err, apperrors.ErrLimitExceeded):
		return http.StatusBadRequest,
			fmt.Sprintf("requested index exceeds maximum allowed (%d); this limit prevents resource exhaustion", s.maxN),
			true
	case apperrors.IsInvalidArgument(err):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "calculation timed out", true
	default:
		return 0, "", false
	}
}

// parseCalculateParams extracts and validates the calculation parameters from the request.
//
// Parameters:
//   - r: The HTTP request containing query parameters.
//
// Returns:
//   - n: The parsed Fibonacci index.
//   - algo: The algorithm name (defaults to "fast" if not specified).
//   - err: A ParseError if validation fails, nil otherwise.
func parseCalculateParams(r *http.Request) (n uint64, algo string, err error) {
	nStr := r.URL.Query().Get("n")
	if nStr == "" {
		return 0, "", ParseError{
			Message:    "Missing 'n' parameter",
			StatusCode: http.StatusBadRequest,
		}
	}

	n, parseErr := strconv.ParseUint(nStr, 10, 64)
	if parseErr != nil {
		// strconv.ParseUint rejects a leading minus sign, which enforces
		// non-negative indices at the boundary.
		return 0, "", ParseError{
			Message:    "Invalid 'n' parameter: must be a non-negative integer",
			StatusCode: http.StatusBadRequest,
		}
	}

	algo = r.URL.Query().Get("algo")
	if algo == "" {
		algo = "fast" // Default algorithm
	}

	return n, algo, nil
}

// parseRangeParams extracts a pair of index parameters from the request. Both
// parameters are required.
//
// Parameters:
//   - r: The HTTP request containing query parameters.
//   - loKey: The name of the lower-bound parameter ("start" or "from").
//   - hiKey: The name of the upper-bound parameter ("end" or "to").
//
// Returns:
//   - lo, hi: The parsed bounds.
//   - err: A ParseError if either parameter is missing or malformed.
func parseRangeParams(r *http.Request, loKey, hiKey string) (lo, hi uint64, err error) {
	for _, key := range []string{loKey, hiKey} {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			return 0, 0, ParseError{
				Message:    fmt.Sprintf("Missing '%s' parameter", key),
				StatusCode: http.StatusBadRequest,
			}
		}
		v, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			return 0, 0, ParseError{
				Message:    fmt.Sprintf("Invalid '%s' parameter: must be a non-negative integer", key),
				StatusCode: http.StatusBadRequest,
			}
		}
		if key == loKey {
			lo = v
		} else {
			hi = v
		}
	}
	return lo, hi, nil
}

// buildCalculateResponse constructs the response struct for a calculation.
//
// Parameters:
//   - n: The Fibonacci index that was calculated.
//   - algo: The algorithm name used.
//   - result: The calculation result (may be nil if error occurred).
//   - duration: The time taken for the calculation.
//   - err: Any error that occurred during calculation.
//
// Returns:
//   - CalculateResponse: The constructed response struct.
func buildCalculateResponse(n uint64, algo string, result *big.Int, duration time.Duration, err error) CalculateResponse {
	resp := CalculateResponse{
		N:         n,
		Duration:  duration.String(),
		Algorithm: algo,
	}

	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Result = result
		resp.Digits = len(result.Text(10))
	}

	return resp
}

// writeJSONResponse helper function to write a JSON response with the correct content type.
//
// Parameters:
//   - w: The HTTP response writer.
//   - statusCode: The HTTP status code to write.
//   - data: The data to be encoded as JSON.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Error encoding JSON response: %v", err)
	}
}

// writeErrorResponse helper function to write a standardized error response.
//
// Parameters:
//   - w: The HTTP response writer.
//   - statusCode: The HTTP status code to write.
//   - message: The error message to be included in the response body.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	errResp := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	s.writeJSONResponse(w, statusCode, errResp)
}
