package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// escape renders the ANSI escape sequence for the given attributes. It returns
// the empty string when color output is globally disabled, so call sites can
// interleave color codes in format strings without checking the toggle.
func escape(attrs ...color.Attribute) string {
	if color.NoColor {
		return ""
	}
	seq := "\x1b["
	for i, a := range attrs {
		if i > 0 {
			seq += ";"
		}
		seq += fmt.Sprintf("%d", a)
	}
	return seq + "m"
}

// Color functions return ANSI escape codes honoring the global color toggle.
// They delegate to the fatih/color attribute table so the palette stays
// consistent with the rest of the ecosystem (NO_COLOR, piped output).

// ColorReset returns the reset escape code.
func ColorReset() string { return escape(color.Reset) }

// ColorRed returns the error color.
func ColorRed() string { return escape(color.FgRed) }

// ColorGreen returns the success color.
func ColorGreen() string { return escape(color.FgGreen) }

// ColorYellow returns the warning color.
func ColorYellow() string { return escape(color.FgYellow) }

// ColorBlue returns the primary color.
func ColorBlue() string { return escape(color.FgBlue) }

// ColorMagenta returns the highlight color.
func ColorMagenta() string { return escape(color.FgMagenta) }

// ColorCyan returns the secondary color.
func ColorCyan() string { return escape(color.FgCyan) }

// ColorBold returns the bold escape code.
func ColorBold() string { return escape(color.Bold) }

// ColorUnderline returns the underline escape code.
func ColorUnderline() string { return escape(color.Underline) }

// ConfigureColors sets the global color toggle from the configuration and the
// output destination. Colors are disabled when explicitly requested or when
// the output is not a terminal (piped or redirected).
//
// Parameters:
//   - noColor: True to force-disable colored output.
//   - out: The output file whose terminal status is probed (typically os.Stdout).
func ConfigureColors(noColor bool, out *os.File) {
	if noColor || out == nil || !term.IsTerminal(int(out.Fd())) {
		color.NoColor = true
		return
	}
	// Leave fatih/color's own detection (NO_COLOR, TERM=dumb) in effect.
}

// ColorProvider adapts the CLI palette to the error-handling package, which
// cannot import this package directly.
type ColorProvider struct{}

// Yellow returns the warning color escape code.
func (ColorProvider) Yellow() string { return ColorYellow() }

// Reset returns the reset escape code.
func (ColorProvider) Reset() string { return ColorReset() }
