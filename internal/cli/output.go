// Result output utilities for the calculation, sequence, and ratio modes.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"text/tabwriter"
	"time"

	"github.com/agbru/fibengine/internal/ratio"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// JSON outputs results in JSON format for machine consumption.
	JSON bool
	// HexOutput displays the result in hexadecimal format.
	HexOutput bool
	// Quiet mode suppresses everything but the raw values, for scripting.
	Quiet bool
	// Verbose shows the full result value regardless of size.
	Verbose bool
}

// calculationJSON is the JSON shape of a single calculation result.
type calculationJSON struct {
	N         uint64 `json:"n"`
	Algorithm string `json:"algorithm"`
	Result    string `json:"result"`
	Digits    int    `json:"digits"`
	Duration  string `json:"duration"`
}

// sequenceJSON is the JSON shape of a range result.
type sequenceJSON struct {
	Start    uint64   `json:"start"`
	End      uint64   `json:"end"`
	Terms    []string `json:"terms"`
	Duration string   `json:"duration"`
}

// ratioJSON is the JSON shape of a convergence result.
type ratioJSON struct {
	From    uint64            `json:"from"`
	To      uint64            `json:"to"`
	Phi     string            `json:"phi"`
	Samples []ratioSampleJSON `json:"samples"`
}

type ratioSampleJSON struct {
	N     uint64 `json:"n"`
	Ratio string `json:"ratio"`
	Error string `json:"error"`
}

// ratioTableDigits is the number of decimal digits shown for each quotient in
// the convergence table. Enough to make the digit-by-digit convergence toward
// phi visible across a typical range.
const ratioTableDigits = 20

// FormatQuietResult formats a result for quiet mode output: a single line
// suitable for scripting.
//
// Parameters:
//   - result: The calculated Fibonacci number.
//   - hexOutput: Whether to format as hexadecimal.
//
// Returns:
//   - string: The formatted result string.
func FormatQuietResult(result *big.Int, hexOutput bool) string {
	if hexOutput {
		return fmt.Sprintf("0x%s", result.Text(16))
	}
	return result.String()
}

// DisplayCalculation renders a single calculation result according to the
// output configuration. Quiet mode prints only the raw value; JSON mode emits
// a machine-readable object; otherwise the standard human-readable summary is
// printed, optionally followed by the hexadecimal form.
//
// Parameters:
//   - out: The output writer.
//   - result: The calculated Fibonacci number.
//   - n: The index.
//   - duration: The calculation duration.
//   - algo: The algorithm name used.
//   - cfg: Output configuration.
//
// Returns:
//   - error: An error if JSON encoding fails.
func DisplayCalculation(out io.Writer, result *big.Int, n uint64, duration time.Duration, algo string, cfg OutputConfig) error {
	if cfg.Quiet {
		fmt.Fprintln(out, FormatQuietResult(result, cfg.HexOutput))
		return nil
	}

	if cfg.JSON {
		payload := calculationJSON{
			N:         n,
			Algorithm: algo,
			Result:    result.String(),
			Digits:    len(result.String()),
			Duration:  duration.String(),
		}
		if cfg.HexOutput {
			payload.Result = "0x" + result.Text(16)
		}
		return writeJSON(out, payload)
	}

	DisplayResult(result, n, duration, cfg.Verbose, out)

	if cfg.HexOutput {
		fmt.Fprintf(out, "\n%sHexadecimal format:%s\n", ColorBold(), ColorReset())
		hexStr := result.Text(16)
		if len(hexStr) > TruncationLimit && !cfg.Verbose {
			fmt.Fprintf(out, "F(%d) [hex] = %s0x%s...%s%s\n",
				n, ColorGreen(), hexStr[:DisplayEdges], hexStr[len(hexStr)-DisplayEdges:], ColorReset())
		} else {
			fmt.Fprintf(out, "F(%d) [hex] = %s0x%s%s\n", n, ColorGreen(), hexStr, ColorReset())
		}
	}
	return nil
}

// DisplaySequence renders the terms F(start)..F(end) according to the output
// configuration. The human-readable form is an aligned table with one row per
// term; values beyond the truncation limit are abbreviated unless verbose.
//
// Parameters:
//   - out: The output writer.
//   - start: The first index of the range.
//   - terms: The ordered terms F(start)..F(end).
//   - duration: The total sweep duration.
//   - cfg: Output configuration.
//
// Returns:
//   - error: An error if JSON encoding fails.
func DisplaySequence(out io.Writer, start uint64, terms []*big.Int, duration time.Duration, cfg OutputConfig) error {
	if cfg.Quiet {
		for _, t := range terms {
			fmt.Fprintln(out, FormatQuietResult(t, cfg.HexOutput))
		}
		return nil
	}

	if cfg.JSON {
		payload := sequenceJSON{
			Start:    start,
			End:      start + uint64(len(terms)) - 1,
			Terms:    make([]string, len(terms)),
			Duration: duration.String(),
		}
		for i, t := range terms {
			payload.Terms[i] = t.String()
			if cfg.HexOutput {
				payload.Terms[i] = "0x" + t.Text(16)
			}
		}
		return writeJSON(out, payload)
	}

	fmt.Fprintf(out, "%s--- Fibonacci sequence F(%d)..F(%d) ---%s\n",
		ColorBold(), start, start+uint64(len(terms))-1, ColorReset())

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Index\tDigits\tValue")
	for i, t := range terms {
		fmt.Fprintf(w, "F(%d)\t%d\t%s\n", start+uint64(i), len(t.String()), abbreviate(t, cfg))
	}
	w.Flush()
	fmt.Fprintf(out, "Computed %s%d%s terms in %s%s%s.\n",
		ColorCyan(), len(terms), ColorReset(), ColorGreen(), FormatExecutionDuration(duration), ColorReset())
	return nil
}

// DisplayRatio renders the golden-ratio convergence samples as an aligned
// table, or as JSON when requested. The reference value of phi is printed
// first so the converging digits can be compared by eye.
//
// Parameters:
//   - out: The output writer.
//   - samples: The convergence samples in ascending index order.
//   - cfg: Output configuration.
//
// Returns:
//   - error: An error if JSON encoding fails.
func DisplayRatio(out io.Writer, samples []ratio.Point, cfg OutputConfig) error {
	phi := ratio.Phi(ratio.DefaultPrecision)

	if cfg.JSON {
		payload := ratioJSON{
			Phi:     phi.Text('f', ratioTableDigits),
			Samples: make([]ratioSampleJSON, len(samples)),
		}
		if len(samples) > 0 {
			payload.From = samples[0].N
			payload.To = samples[len(samples)-1].N
		}
		for i, p := range samples {
			payload.Samples[i] = ratioSampleJSON{
				N:     p.N,
				Ratio: p.Ratio.Text('f', ratioTableDigits),
				Error: p.Error.Text('e', 6),
			}
		}
		return writeJSON(out, payload)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "%s--- Golden ratio convergence ---%s\n", ColorBold(), ColorReset())
		fmt.Fprintf(out, "phi = %s%s%s\n\n", ColorMagenta(), phi.Text('f', ratioTableDigits), ColorReset())
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if !cfg.Quiet {
		fmt.Fprintln(w, "n\tF(n+1)/F(n)\t|ratio - phi|")
	}
	for _, p := range samples {
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.N, p.Ratio.Text('f', ratioTableDigits), p.Error.Text('e', 6))
	}
	return w.Flush()
}

// abbreviate renders a term for table display, truncating very large values
// unless verbose output is requested.
func abbreviate(v *big.Int, cfg OutputConfig) string {
	s := v.String()
	if cfg.HexOutput {
		s = "0x" + v.Text(16)
	}
	if cfg.Verbose || len(s) <= TruncationLimit {
		return s
	}
	return fmt.Sprintf("%s...%s", s[:DisplayEdges], s[len(s)-DisplayEdges:])
}

// writeJSON encodes a payload as indented JSON.
func writeJSON(out io.Writer, payload any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
