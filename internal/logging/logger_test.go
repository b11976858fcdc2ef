package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	return record
}

// TestLoggerInfo verifies structured fields land in the JSON record.
func TestLoggerInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")

	logger.Info("calculation complete",
		String("algo", "fast"),
		Uint64("n", 1000),
		Float64("seconds", 0.25),
		Int("digits", 209),
	)

	record := decodeLine(t, &buf)
	if record["message"] != "calculation complete" {
		t.Errorf("message = %v", record["message"])
	}
	if record["component"] != "test" {
		t.Errorf("component = %v", record["component"])
	}
	if record["algo"] != "fast" {
		t.Errorf("algo = %v", record["algo"])
	}
	if record["n"] != float64(1000) {
		t.Errorf("n = %v", record["n"])
	}
	if record["digits"] != float64(209) {
		t.Errorf("digits = %v", record["digits"])
	}
	if record["level"] != "info" {
		t.Errorf("level = %v", record["level"])
	}
	if _, ok := record["time"]; !ok {
		t.Error("record should carry a timestamp")
	}
}

// TestLoggerError verifies the error field is serialized.
func TestLoggerError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")

	logger.Error("calculation failed", errors.New("boom"))

	record := decodeLine(t, &buf)
	if record["level"] != "error" {
		t.Errorf("level = %v", record["level"])
	}
	if record["error"] != "boom" {
		t.Errorf("error = %v", record["error"])
	}
}

// TestLoggerErrField verifies the Err helper maps to the error key.
func TestLoggerErrField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")

	logger.Info("partial failure", Err(errors.New("degraded")))

	record := decodeLine(t, &buf)
	if record["error"] != "degraded" {
		t.Errorf("error = %v", record["error"])
	}
}

// TestLoggerPrintf verifies the standard-library compatibility surface.
func TestLoggerPrintf(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "server")

	logger.Printf("listening on :%s", "8080")

	record := decodeLine(t, &buf)
	if record["message"] != "listening on :8080" {
		t.Errorf("message = %v", record["message"])
	}
	if record["level"] != "info" {
		t.Errorf("Printf should log at info level, got %v", record["level"])
	}
}
