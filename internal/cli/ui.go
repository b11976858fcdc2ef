// Package cli renders the terminal surface of the engine: a live progress
// display while calculations run and formatted result panels once they
// finish.
package cli

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/briandowns/spinner"
)

const (
	// TruncationLimit is the digit count above which a result is shortened
	// on standard output.
	TruncationLimit = 100
	// DisplayEdges is how many leading and trailing digits survive the
	// shortening.
	DisplayEdges = 25
	// ProgressRefreshRate is how often the progress line redraws.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the bar width in characters.
	ProgressBarWidth = 40
)

// FormatExecutionDuration renders a duration at a precision matched to its
// magnitude: microseconds below 1ms, milliseconds below 1s, Go's default
// formatting above that.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.String()
	}
}

// Spinner is the slice of spinner behavior the progress loop needs. Tests
// substitute a recording implementation through newSpinner.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	// The spinner redraws at the same cadence as the progress line.
	return &realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)}
}

// ProgressState tracks the fraction completed by each running calculator so
// the display can show one consolidated number when several algorithms race.
type ProgressState struct {
	perCalculator []float64
}

// NewProgressState returns a state tracking n calculators, all at zero.
func NewProgressState(n int) *ProgressState {
	return &ProgressState{perCalculator: make([]float64, n)}
}

// Update records the progress of one calculator. Indices outside the tracked
// range are ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index < 0 || index >= len(ps.perCalculator) {
		return
	}
	ps.perCalculator[index] = value
}

// CalculateAverage returns the mean progress across all tracked calculators,
// or zero when none are tracked.
func (ps *ProgressState) CalculateAverage() float64 {
	if len(ps.perCalculator) == 0 {
		return 0
	}
	var sum float64
	for _, p := range ps.perCalculator {
		sum += p
	}
	return sum / float64(len(ps.perCalculator))
}

// progressBar renders a fixed-width bar for a progress value in [0, 1].
// Values outside the range are clamped.
func progressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// DisplayProgress runs the live progress display until progressChan closes.
// It aggregates per-calculator updates, refreshes a spinner line on a ticker,
// and leaves one persistent completion line behind when done. With
// numCalculators <= 0 it only drains the channel so producers never block
// when the display is suppressed.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan fibonacci.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	if numCalculators <= 0 {
		for range progressChan {
		}
		return
	}

	label := "Progress"
	if numCalculators > 1 {
		label = "Overall"
	}

	state := NewProgressWithETA(numCalculators)
	spin := newSpinner(spinner.WithWriter(out))
	spin.Start()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				// Release the line before printing the persistent summary.
				spin.Stop()
				fmt.Fprintf(out, "%s: %6.2f%% |%s|\n", label, 100.0, progressBar(1, ProgressBarWidth))
				return
			}
			state.UpdateWithETA(update.CalculatorIndex, update.Value)
		case <-ticker.C:
			avg := state.CalculateAverage()
			spin.UpdateSuffix(fmt.Sprintf(" %s: %6.2f%% |%s| ETA %s",
				label, avg*100, progressBar(avg, ProgressBarWidth), FormatETA(state.GetETA())))
		}
	}
}

// DisplayResult prints the result panel: size and timing metadata followed by
// the value itself. Values longer than TruncationLimit digits are shortened
// to their edges unless verbose is set.
func DisplayResult(result *big.Int, n uint64, duration time.Duration, verbose bool, out io.Writer) {
	elapsed := FormatExecutionDuration(duration)
	if duration == 0 {
		elapsed = "< 1µs"
	}

	digits := result.String()
	fmt.Fprintf(out, "Bit length: %s%s%s\n", ColorCyan(), formatNumberString(fmt.Sprint(result.BitLen())), ColorReset())
	fmt.Fprintf(out, "Decimal digits: %s%s%s\n", ColorCyan(), formatNumberString(fmt.Sprint(len(digits))), ColorReset())
	fmt.Fprintf(out, "Elapsed: %s%s%s\n", ColorGreen(), elapsed, ColorReset())
	if len(digits) > 6 {
		fmt.Fprintf(out, "Magnitude: %s%.6e%s\n", ColorCyan(), new(big.Float).SetInt(result), ColorReset())
	}

	fmt.Fprintf(out, "\n%s--- Result ---%s\n", ColorBold(), ColorReset())
	switch {
	case verbose:
		fmt.Fprintf(out, "F(%s%d%s) =\n%s%s%s\n",
			ColorMagenta(), n, ColorReset(), ColorGreen(), formatNumberString(digits), ColorReset())
	case len(digits) > TruncationLimit:
		fmt.Fprintf(out, "F(%s%d%s) = %s%s…%s%s (%d digits elided)\n",
			ColorMagenta(), n, ColorReset(),
			ColorGreen(), digits[:DisplayEdges], digits[len(digits)-DisplayEdges:], ColorReset(),
			len(digits)-2*DisplayEdges)
		fmt.Fprintf(out, "Pass %s-v%s to print every digit.\n", ColorYellow(), ColorReset())
	default:
		fmt.Fprintf(out, "F(%s%d%s) = %s%s%s\n",
			ColorMagenta(), n, ColorReset(), ColorGreen(), formatNumberString(digits), ColorReset())
	}
}

// formatNumberString groups a decimal string into thousands with commas.
func formatNumberString(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg && s != "" {
			return "-" + s
		}
		return s
	}

	groups := make([]string, 0, len(s)/3+1)
	for len(s) > 3 {
		groups = append(groups, s[len(s)-3:])
		s = s[:len(s)-3]
	}
	groups = append(groups, s)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i := len(groups) - 1; i >= 0; i-- {
		b.WriteString(groups[i])
		if i > 0 {
			b.WriteByte(',')
		}
	}
	return b.String()
}
