package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// TestConfigError verifies message formatting.
func TestConfigError(t *testing.T) {
	t.Parallel()
	err := NewConfigError("bad value: %d", 42)
	if err.Error() != "bad value: 42" {
		t.Errorf("Error() = %q", err.Error())
	}

	var ce ConfigError
	if !errors.As(err, &ce) {
		t.Error("errors.As should match ConfigError")
	}
}

// TestValidationError verifies the invalid-argument message shape and the
// IsInvalidArgument helper, including through wrapping.
func TestValidationError(t *testing.T) {
	t.Parallel()
	err := NewValidationError("start", "range start must not exceed range end", uint64(10))

	want := "invalid argument 'start': range start must not exceed range end"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !IsInvalidArgument(err) {
		t.Error("IsInvalidArgument should report true")
	}

	wrapped := fmt.Errorf("handling request: %w", err)
	if !IsInvalidArgument(wrapped) {
		t.Error("IsInvalidArgument should see through wrapping")
	}

	var ve ValidationError
	if !errors.As(wrapped, &ve) || ve.Field != "start" {
		t.Errorf("unwrapped field = %q, want %q", ve.Field, "start")
	}
}

// TestValidationErrorWithoutField verifies the field-less message shape.
func TestValidationErrorWithoutField(t *testing.T) {
	t.Parallel()
	err := NewValidationError("", "no such term", nil)
	if err.Error() != "invalid argument: no such term" {
		t.Errorf("Error() = %q", err.Error())
	}
}

// TestIsInvalidArgumentNegative verifies unrelated errors are not classified
// as invalid arguments.
func TestIsInvalidArgumentNegative(t *testing.T) {
	t.Parallel()
	if IsInvalidArgument(errors.New("boom")) {
		t.Error("plain errors must not be invalid arguments")
	}
	if IsInvalidArgument(ErrLimitExceeded) {
		t.Error("the limit guard is a policy rejection, not an invalid argument")
	}
	if IsInvalidArgument(nil) {
		t.Error("nil is not an invalid argument")
	}
}

// TestCalculationErrorUnwrap verifies the cause is preserved for errors.Is.
func TestCalculationErrorUnwrap(t *testing.T) {
	t.Parallel()
	err := CalculationError{Cause: context.DeadlineExceeded}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("CalculationError should unwrap to its cause")
	}
	if err.Error() != context.DeadlineExceeded.Error() {
		t.Errorf("Error() = %q", err.Error())
	}
}

// TestServerError verifies the message shapes with and without a cause.
func TestServerError(t *testing.T) {
	t.Parallel()
	plain := NewServerError("failed to start", nil)
	if plain.Error() != "failed to start" {
		t.Errorf("Error() = %q", plain.Error())
	}

	cause := errors.New("address in use")
	withCause := NewServerError("failed to start", cause)
	if withCause.Error() != "failed to start: address in use" {
		t.Errorf("Error() = %q", withCause.Error())
	}
	if !errors.Is(withCause, cause) {
		t.Error("ServerError should unwrap to its cause")
	}
}

// TestWrapError verifies nil passthrough and %w semantics.
func TestWrapError(t *testing.T) {
	t.Parallel()
	if WrapError(nil, "context") != nil {
		t.Error("wrapping nil should return nil")
	}

	base := errors.New("base")
	wrapped := WrapError(base, "during step %d", 3)
	if wrapped.Error() != "during step 3: base" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match the base via errors.Is")
	}
}

// TestIsContextError verifies classification of cancellation errors.
func TestIsContextError(t *testing.T) {
	t.Parallel()
	if !IsContextError(context.Canceled) || !IsContextError(context.DeadlineExceeded) {
		t.Error("context errors should be classified as such")
	}
	if IsContextError(errors.New("boom")) || IsContextError(nil) {
		t.Error("non-context errors must not be classified as context errors")
	}
}
