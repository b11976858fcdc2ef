package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/ratio"
)

// fibonacciOracle computes F(n) with the production calculator, failing the
// test on error. The display tests only need realistic values, not an
// independent oracle.
func fibonacciOracle(t *testing.T, n uint64) *big.Int {
	t.Helper()
	fd := &fibonacci.FastDoubling{}
	result, err := fd.CalculateCore(context.Background(), nil, n, fibonacci.Options{})
	if err != nil {
		t.Fatalf("computing F(%d): %v", n, err)
	}
	return result
}

// TestFormatQuietResult verifies decimal and hexadecimal quiet output.
func TestFormatQuietResult(t *testing.T) {
	v := big.NewInt(6765)
	if got := FormatQuietResult(v, false); got != "6765" {
		t.Errorf("decimal = %q", got)
	}
	if got := FormatQuietResult(v, true); got != "0x1a6d" {
		t.Errorf("hex = %q", got)
	}
}

// TestDisplayCalculationQuiet verifies quiet mode emits only the raw value.
func TestDisplayCalculationQuiet(t *testing.T) {
	disableColors(t)
	var out bytes.Buffer
	err := DisplayCalculation(&out, big.NewInt(832040), 30, time.Millisecond, "fast", OutputConfig{Quiet: true})
	if err != nil {
		t.Fatalf("DisplayCalculation: %v", err)
	}
	if out.String() != "832040\n" {
		t.Errorf("quiet output = %q, want raw value", out.String())
	}
}

// TestDisplayCalculationJSON verifies the machine-readable shape.
func TestDisplayCalculationJSON(t *testing.T) {
	var out bytes.Buffer
	err := DisplayCalculation(&out, big.NewInt(832040), 30, time.Millisecond, "fast", OutputConfig{JSON: true})
	if err != nil {
		t.Fatalf("DisplayCalculation: %v", err)
	}

	var payload struct {
		N         uint64 `json:"n"`
		Algorithm string `json:"algorithm"`
		Result    string `json:"result"`
		Digits    int    `json:"digits"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decoding JSON output: %v", err)
	}
	if payload.N != 30 || payload.Algorithm != "fast" || payload.Result != "832040" || payload.Digits != 6 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

// TestDisplayCalculationHex verifies the hexadecimal rendering in both human
// and JSON modes.
func TestDisplayCalculationHex(t *testing.T) {
	disableColors(t)
	var out bytes.Buffer
	err := DisplayCalculation(&out, big.NewInt(6765), 20, time.Millisecond, "fast", OutputConfig{HexOutput: true})
	if err != nil {
		t.Fatalf("DisplayCalculation: %v", err)
	}
	if !strings.Contains(out.String(), "0x1a6d") {
		t.Errorf("human output should include the hex form: %s", out.String())
	}

	out.Reset()
	err = DisplayCalculation(&out, big.NewInt(6765), 20, time.Millisecond, "fast", OutputConfig{JSON: true, HexOutput: true})
	if err != nil {
		t.Fatalf("DisplayCalculation: %v", err)
	}
	if !strings.Contains(out.String(), `"0x1a6d"`) {
		t.Errorf("JSON output should include the hex form: %s", out.String())
	}
}

// TestDisplaySequenceTable verifies the human-readable sequence table.
func TestDisplaySequenceTable(t *testing.T) {
	disableColors(t)
	terms := []*big.Int{big.NewInt(1), big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(5)}

	var out bytes.Buffer
	err := DisplaySequence(&out, 1, terms, 2*time.Millisecond, OutputConfig{})
	if err != nil {
		t.Fatalf("DisplaySequence: %v", err)
	}
	s := out.String()
	for _, want := range []string{"F(1)..F(5)", "Index", "F(3)", "Computed 5 terms"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

// TestDisplaySequenceQuiet verifies one raw value per line in quiet mode.
func TestDisplaySequenceQuiet(t *testing.T) {
	terms := []*big.Int{big.NewInt(5), big.NewInt(8), big.NewInt(13)}

	var out bytes.Buffer
	err := DisplaySequence(&out, 5, terms, 0, OutputConfig{Quiet: true})
	if err != nil {
		t.Fatalf("DisplaySequence: %v", err)
	}
	if out.String() != "5\n8\n13\n" {
		t.Errorf("quiet output = %q", out.String())
	}
}

// TestDisplaySequenceJSON verifies the range JSON shape including bounds.
func TestDisplaySequenceJSON(t *testing.T) {
	terms := []*big.Int{big.NewInt(8), big.NewInt(13), big.NewInt(21)}

	var out bytes.Buffer
	err := DisplaySequence(&out, 6, terms, time.Millisecond, OutputConfig{JSON: true})
	if err != nil {
		t.Fatalf("DisplaySequence: %v", err)
	}

	var payload struct {
		Start uint64   `json:"start"`
		End   uint64   `json:"end"`
		Terms []string `json:"terms"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decoding JSON output: %v", err)
	}
	if payload.Start != 6 || payload.End != 8 {
		t.Errorf("bounds = [%d, %d], want [6, 8]", payload.Start, payload.End)
	}
	if len(payload.Terms) != 3 || payload.Terms[2] != "21" {
		t.Errorf("terms = %v", payload.Terms)
	}
}

// TestDisplayRatioTable verifies the convergence table rendering.
func TestDisplayRatioTable(t *testing.T) {
	disableColors(t)
	analyzer := ratio.NewAnalyzer(0)
	samples, err := analyzer.Convergence(context.Background(), 1, 5, fibonacci.Options{})
	if err != nil {
		t.Fatalf("Convergence: %v", err)
	}

	var out bytes.Buffer
	if err := DisplayRatio(&out, samples, OutputConfig{}); err != nil {
		t.Fatalf("DisplayRatio: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "phi = 1.61803398874989484820") {
		t.Errorf("output should print the phi reference: %s", s)
	}
	if !strings.Contains(s, "F(n+1)/F(n)") {
		t.Errorf("output missing the table header: %s", s)
	}
	// F(3)/F(2) = 2.
	if !strings.Contains(s, "2.000000") {
		t.Errorf("output missing the n=2 quotient: %s", s)
	}
}

// TestDisplayRatioJSON verifies the convergence JSON shape.
func TestDisplayRatioJSON(t *testing.T) {
	analyzer := ratio.NewAnalyzer(0)
	samples, err := analyzer.Convergence(context.Background(), 2, 4, fibonacci.Options{})
	if err != nil {
		t.Fatalf("Convergence: %v", err)
	}

	var out bytes.Buffer
	if err := DisplayRatio(&out, samples, OutputConfig{JSON: true}); err != nil {
		t.Fatalf("DisplayRatio: %v", err)
	}

	var payload struct {
		From    uint64 `json:"from"`
		To      uint64 `json:"to"`
		Phi     string `json:"phi"`
		Samples []struct {
			N     uint64 `json:"n"`
			Ratio string `json:"ratio"`
		} `json:"samples"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decoding JSON output: %v", err)
	}
	if payload.From != 2 || payload.To != 4 || len(payload.Samples) != 3 {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if !strings.HasPrefix(payload.Phi, "1.618033988") {
		t.Errorf("phi = %s", payload.Phi)
	}
	// F(4)/F(3) = 3/2.
	if !strings.HasPrefix(payload.Samples[1].Ratio, "1.5000") {
		t.Errorf("ratio at n=3 = %s, want 3/2", payload.Samples[1].Ratio)
	}
}

// TestAbbreviate verifies truncation of table values.
func TestAbbreviate(t *testing.T) {
	small := big.NewInt(12345)
	if got := abbreviate(small, OutputConfig{}); got != "12345" {
		t.Errorf("small value = %q", got)
	}

	large := fibonacciOracle(t, 1000) // 209 digits
	got := abbreviate(large, OutputConfig{})
	if !strings.Contains(got, "...") {
		t.Errorf("large value should be abbreviated: %q", got)
	}
	if full := abbreviate(large, OutputConfig{Verbose: true}); strings.Contains(full, "...") {
		t.Error("verbose mode must not abbreviate")
	}
}
