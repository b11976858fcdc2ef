package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fibengine/internal/config"
	"github.com/agbru/fibengine/internal/fibonacci"
)

// TestGetCalculatorsToRunAll verifies "all" expands to every registered
// calculator in sorted order.
func TestGetCalculatorsToRunAll(t *testing.T) {
	factory := fibonacci.NewDefaultFactory()
	cfg := config.AppConfig{Algo: "all"}

	calculators := GetCalculatorsToRun(cfg, factory)
	if len(calculators) != len(factory.List()) {
		t.Fatalf("got %d calculators, want %d", len(calculators), len(factory.List()))
	}
	for _, c := range calculators {
		if c == nil {
			t.Fatal("nil calculator in result")
		}
	}
}

// TestGetCalculatorsToRunSingle verifies a named algorithm yields exactly one
// calculator.
func TestGetCalculatorsToRunSingle(t *testing.T) {
	factory := fibonacci.NewDefaultFactory()
	cfg := config.AppConfig{Algo: "fast"}

	calculators := GetCalculatorsToRun(cfg, factory)
	if len(calculators) != 1 {
		t.Fatalf("got %d calculators, want 1", len(calculators))
	}
}

// TestGetCalculatorsToRunUnknown verifies an unknown algorithm yields nothing.
func TestGetCalculatorsToRunUnknown(t *testing.T) {
	factory := fibonacci.NewDefaultFactory()
	cfg := config.AppConfig{Algo: "bogus"}

	if calculators := GetCalculatorsToRun(cfg, factory); calculators != nil {
		t.Errorf("unknown algorithm should yield nil, got %v", calculators)
	}
}

// TestPrintExecutionConfig verifies the configuration banner contains the key
// execution parameters.
func TestPrintExecutionConfig(t *testing.T) {
	disableColors(t)
	cfg := config.AppConfig{N: 1234, Timeout: 30 * time.Second, Threshold: 4096}

	var out bytes.Buffer
	PrintExecutionConfig(cfg, &out)
	s := out.String()
	for _, want := range []string{"F(1234)", "30s", "4096"} {
		if !strings.Contains(s, want) {
			t.Errorf("banner missing %q:\n%s", want, s)
		}
	}
}

// TestPrintExecutionMode verifies the mode line for single and comparison
// runs.
func TestPrintExecutionMode(t *testing.T) {
	disableColors(t)
	factory := fibonacci.NewDefaultFactory()

	var out bytes.Buffer
	single := GetCalculatorsToRun(config.AppConfig{Algo: "fast"}, factory)
	PrintExecutionMode(single, &out)
	if !strings.Contains(out.String(), "Single calculation") {
		t.Errorf("single mode banner: %s", out.String())
	}

	out.Reset()
	all := GetCalculatorsToRun(config.AppConfig{Algo: "all"}, factory)
	PrintExecutionMode(all, &out)
	if !strings.Contains(out.String(), "Parallel comparison") {
		t.Errorf("comparison mode banner: %s", out.String())
	}
}
