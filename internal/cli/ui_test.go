package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// disableColors forces monochrome output for the duration of a test so the
// expected strings are deterministic.
func disableColors(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

// TestFormatExecutionDuration verifies unit selection per magnitude.
func TestFormatExecutionDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{42 * time.Millisecond, "42ms"},
		{999 * time.Millisecond, "999ms"},
		{2 * time.Second, "2s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tc := range cases {
		if got := FormatExecutionDuration(tc.d); got != tc.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

// TestFormatNumberString verifies thousand-separator insertion.
func TestFormatNumberString(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"5", "5"},
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"-1234567", "-1,234,567"},
		{"354224848179261915075", "354,224,848,179,261,915,075"},
	}
	for _, tc := range cases {
		if got := formatNumberString(tc.in); got != tc.want {
			t.Errorf("formatNumberString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestProgressBar verifies rendering and clamping.
func TestProgressBar(t *testing.T) {
	if got := progressBar(0.5, 4); got != "██░░" {
		t.Errorf("progressBar(0.5, 4) = %q", got)
	}
	if got := progressBar(0, 3); got != "░░░" {
		t.Errorf("progressBar(0, 3) = %q", got)
	}
	if got := progressBar(1.0, 3); got != "███" {
		t.Errorf("progressBar(1.0, 3) = %q", got)
	}
	// Out-of-range values are clamped.
	if got := progressBar(1.7, 2); got != "██" {
		t.Errorf("progressBar(1.7, 2) = %q", got)
	}
	if got := progressBar(-0.3, 2); got != "░░" {
		t.Errorf("progressBar(-0.3, 2) = %q", got)
	}
}

// TestProgressStateAverage verifies per-calculator tracking and averaging.
func TestProgressStateAverage(t *testing.T) {
	ps := NewProgressState(2)
	if avg := ps.CalculateAverage(); avg != 0 {
		t.Errorf("initial average = %f, want 0", avg)
	}

	ps.Update(0, 1.0)
	ps.Update(1, 0.5)
	if avg := ps.CalculateAverage(); avg != 0.75 {
		t.Errorf("average = %f, want 0.75", avg)
	}

	// Out-of-range updates are ignored.
	ps.Update(7, 1.0)
	ps.Update(-1, 1.0)
	if avg := ps.CalculateAverage(); avg != 0.75 {
		t.Errorf("average after ignored updates = %f, want 0.75", avg)
	}
}

// TestProgressStateEmpty verifies the zero-calculator state does not divide by
// zero.
func TestProgressStateEmpty(t *testing.T) {
	ps := NewProgressState(0)
	if avg := ps.CalculateAverage(); avg != 0 {
		t.Errorf("average = %f, want 0", avg)
	}
}

// fakeSpinner records spinner interactions without drawing anything.
type fakeSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (f *fakeSpinner) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
}

func (f *fakeSpinner) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeSpinner) UpdateSuffix(suffix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suffix = suffix
}

// TestDisplayProgress verifies the display loop consumes updates and prints a
// persistent final line when the channel closes.
func TestDisplayProgress(t *testing.T) {
	fake := &fakeSpinner{}
	prev := newSpinner
	newSpinner = func(options ...spinner.Option) Spinner { return fake }
	t.Cleanup(func() { newSpinner = prev })

	var out bytes.Buffer
	progressChan := make(chan fibonacci.ProgressUpdate, 8)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, &out)

	progressChan <- fibonacci.ProgressUpdate{CalculatorIndex: 0, Value: 0.5}
	progressChan <- fibonacci.ProgressUpdate{CalculatorIndex: 0, Value: 1.0}
	close(progressChan)
	wg.Wait()

	if !fake.started || !fake.stopped {
		t.Error("spinner should be started and stopped")
	}
	final := out.String()
	if !strings.Contains(final, "100.00%") {
		t.Errorf("final line should report completion: %q", final)
	}
	if !strings.Contains(final, "Progress:") {
		t.Errorf("single calculator should use the Progress label: %q", final)
	}
}

// TestDisplayProgressDrainsWhenHidden verifies the zero-calculator mode drains
// the channel without rendering, so producers never block.
func TestDisplayProgressDrainsWhenHidden(t *testing.T) {
	var out bytes.Buffer
	progressChan := make(chan fibonacci.ProgressUpdate)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 0, &out)

	for i := 0; i < 100; i++ {
		progressChan <- fibonacci.ProgressUpdate{CalculatorIndex: 0, Value: float64(i) / 100}
	}
	close(progressChan)
	wg.Wait()

	if out.Len() != 0 {
		t.Errorf("hidden progress should produce no output, got %q", out.String())
	}
}

// TestDisplayResultTruncation verifies large values are truncated with a tip,
// and verbose mode prints the full value.
func TestDisplayResultTruncation(t *testing.T) {
	disableColors(t)

	// F(500) has 105 digits, above the truncation limit.
	result := fibonacciOracle(t, 500)

	var out bytes.Buffer
	DisplayResult(result, 500, 3*time.Millisecond, false, &out)
	s := out.String()
	if !strings.Contains(s, "digits elided") {
		t.Errorf("large result should be shortened: %s", s)
	}
	if !strings.Contains(s, "-v") {
		t.Errorf("shortened output should mention the verbose option: %s", s)
	}

	out.Reset()
	DisplayResult(result, 500, 3*time.Millisecond, true, &out)
	if strings.Contains(out.String(), "elided") {
		t.Error("verbose output must print the full value")
	}
}

// TestDisplayResultSmall verifies small values print in full with metadata.
func TestDisplayResultSmall(t *testing.T) {
	disableColors(t)

	result := fibonacciOracle(t, 20)
	var out bytes.Buffer
	DisplayResult(result, 20, 0, false, &out)
	s := out.String()
	if !strings.Contains(s, "F(20) = 6,765") {
		t.Errorf("output should show the separated value: %s", s)
	}
	if !strings.Contains(s, "< 1µs") {
		t.Errorf("zero duration should display as sub-microsecond: %s", s)
	}
	if !strings.Contains(s, "Decimal digits: 4") {
		t.Errorf("output should show the digit count: %s", s)
	}
}
