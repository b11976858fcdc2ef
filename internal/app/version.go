// Package app wires configuration, calculators, rendering, and the HTTP
// server into a runnable program and dispatches between its modes.
package app

import (
	"fmt"
	"io"
	"runtime"
)

// Version metadata, stamped by the release build:
//
//	go build -ldflags "-X github.com/agbru/fibengine/internal/app.Version=v1.2.3 \
//	    -X github.com/agbru/fibengine/internal/app.Commit=abc123 \
//	    -X github.com/agbru/fibengine/internal/app.BuildDate=2026-01-01T00:00:00Z"
//
// Development builds keep the placeholder values.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// VersionData is the version metadata in structured form, suitable for JSON
// encoding.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersionInfo collects the build metadata and runtime platform details.
func GetVersionInfo() VersionData {
	return VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// HasVersionFlag reports whether args contain a version flag. The scan covers
// every position so "-server --version" still prints the banner instead of
// starting a server.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--version", "-version", "-V":
			return true
		}
	}
	return false
}

// PrintVersion writes the version banner to out.
func PrintVersion(out io.Writer) {
	info := GetVersionInfo()
	fmt.Fprintf(out, "fibengine %s (commit %s, built %s)\n", info.Version, info.Commit, info.BuildDate)
	fmt.Fprintf(out, "%s %s/%s\n", info.GoVersion, info.OS, info.Arch)
}
