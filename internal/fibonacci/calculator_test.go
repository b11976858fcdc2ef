package fibonacci

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"testing"
	"time"
)

// fibWant maps indices to reference values. The set spans the iterative
// shortcut, the uint64 boundary at 93/94, powers of two (which exercise the
// pure-doubling path with no addition steps), and multi-word territory.
var fibWant = map[uint64]string{
	0:    "0",
	1:    "1",
	2:    "1",
	3:    "2",
	10:   "55",
	20:   "6765",
	30:   "832040",
	40:   "102334155",
	50:   "12586269025",
	64:   "10610209857723",
	92:   "7540113804746346429",
	93:   "12200160415121876738",
	94:   "19740274219868223167",
	100:  "354224848179261915075",
	128:  "251728825683549488150424261",
	256:  "141693817714056513234709965875411919657707794958199867",
	1000: "43466557686937456435688527675040625802564660517371780402481729089536555417949051890403879840079255169295922593080322634775209689623239873322471161642996440906533187938298969649928516003704476137795166849228875",
}

func testOptions() Options {
	return Options{ParallelThreshold: DefaultParallelThreshold}
}

// eachCalculator runs fn as a subtest for every algorithm a fresh factory
// registers, so new backends are covered without touching the tests.
func eachCalculator(t *testing.T, fn func(t *testing.T, calc Calculator)) {
	t.Helper()
	f := NewDefaultFactory()
	for _, name := range f.List() {
		calc := f.MustGet(name)
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fn(t, calc)
		})
	}
}

// TestCalculateKnownValues checks every registered algorithm against the
// reference table.
func TestCalculateKnownValues(t *testing.T) {
	indices := make([]uint64, 0, len(fibWant))
	for n := range fibWant {
		indices = append(indices, n)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	eachCalculator(t, func(t *testing.T, calc Calculator) {
		ctx := context.Background()
		for _, n := range indices {
			want, ok := new(big.Int).SetString(fibWant[n], 10)
			if !ok {
				t.Fatalf("bad reference value for n=%d", n)
			}
			got, err := calc.Calculate(ctx, nil, 0, n, testOptions())
			if err != nil {
				t.Fatalf("F(%d): %v", n, err)
			}
			if got == nil {
				t.Fatalf("F(%d): nil result without error", n)
			}
			if got.Cmp(want) != 0 {
				t.Errorf("F(%d) = %s, want %s", n, got, want)
			}
		}
	})
}

// TestAlgorithmsAgreeAboveShortcut cross-checks the registered algorithms
// against each other beyond the iterative shortcut, where the doubling and
// squaring machinery actually runs.
func TestAlgorithmsAgreeAboveShortcut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	all := NewDefaultFactory().GetAll()

	for _, n := range []uint64{94, 1_000, 10_000, 123_457} {
		var reference *big.Int
		var referenceName string
		for name, calc := range all {
			got, err := calc.Calculate(ctx, nil, 0, n, testOptions())
			if err != nil {
				t.Fatalf("%s F(%d): %v", name, n, err)
			}
			if reference == nil {
				reference, referenceName = got, name
				continue
			}
			if got.Cmp(reference) != 0 {
				t.Errorf("F(%d): %s and %s disagree", n, name, referenceName)
			}
		}
	}
}

// TestRepeatedCalculationsAreBitIdentical guards the purity contract: the
// internal state pools must never leak one calculation's buffers into the
// next result.
func TestRepeatedCalculationsAreBitIdentical(t *testing.T) {
	t.Parallel()
	const n = 50_000
	calc := NewDefaultFactory().MustGet("fast")

	first, err := calc.Calculate(context.Background(), nil, 0, n, testOptions())
	if err != nil {
		t.Fatalf("F(%d): %v", n, err)
	}
	for i := 0; i < 3; i++ {
		again, err := calc.Calculate(context.Background(), nil, 0, n, testOptions())
		if err != nil {
			t.Fatalf("repeat %d: %v", i, err)
		}
		if again.Cmp(first) != 0 {
			t.Fatalf("repeat %d produced a different value", i)
		}
	}
}

// collectProgress drains progressChan into a slice until the calculation
// closes it.
func collectProgress(progressChan chan ProgressUpdate, values *[]float64, wg *sync.WaitGroup) {
	defer wg.Done()
	for update := range progressChan {
		*values = append(*values, update.Value)
	}
}

// TestProgressCompletesMonotonically verifies every algorithm reports
// non-decreasing progress that ends at exactly 1.0.
func TestProgressCompletesMonotonically(t *testing.T) {
	eachCalculator(t, func(t *testing.T, calc Calculator) {
		progressChan := make(chan ProgressUpdate, 200)
		var values []float64
		var wg sync.WaitGroup
		wg.Add(1)
		go collectProgress(progressChan, &values, &wg)

		_, err := calc.Calculate(context.Background(), progressChan, 0, 10_000, testOptions())
		close(progressChan)
		wg.Wait()

		if err != nil {
			t.Fatalf("calculation failed: %v", err)
		}
		if len(values) == 0 {
			t.Fatal("no progress updates received")
		}
		for i := 1; i < len(values); i++ {
			if values[i] < values[i-1] {
				t.Fatalf("progress regressed from %f to %f", values[i-1], values[i])
			}
		}
		if final := values[len(values)-1]; final != 1.0 {
			t.Errorf("final progress = %f, want 1.0", final)
		}
	})
}

// TestEarlyProgressReflectsWorkGrowth checks the progress scale is weighted
// by cost: the first doubling steps touch small numbers, so the first report
// must stay low even though many loop iterations have already passed.
func TestEarlyProgressReflectsWorkGrowth(t *testing.T) {
	t.Parallel()
	calc := NewDefaultFactory().MustGet("fast")
	progressChan := make(chan ProgressUpdate, 200)
	var values []float64
	var wg sync.WaitGroup
	wg.Add(1)
	go collectProgress(progressChan, &values, &wg)

	_, err := calc.Calculate(context.Background(), progressChan, 0, 100_000, testOptions())
	close(progressChan)
	wg.Wait()

	if err != nil {
		t.Fatalf("calculation failed: %v", err)
	}
	if len(values) < 2 {
		t.Fatal("too few progress updates to judge the curve")
	}
	if values[0] > 0.25 {
		t.Errorf("first progress report = %f; a cost-weighted scale should start low", values[0])
	}
}

// TestSmallIndexShortcut verifies the iterative path for n <= MaxFibUint64
// still honors the progress contract.
func TestSmallIndexShortcut(t *testing.T) {
	t.Parallel()
	calc := NewDefaultFactory().MustGet("fast")
	progressChan := make(chan ProgressUpdate, 8)

	got, err := calc.Calculate(context.Background(), progressChan, 0, MaxFibUint64, testOptions())
	close(progressChan)
	if err != nil {
		t.Fatalf("F(%d): %v", uint64(MaxFibUint64), err)
	}
	if got.String() != fibWant[MaxFibUint64] {
		t.Errorf("F(%d) = %s, want %s", uint64(MaxFibUint64), got, fibWant[MaxFibUint64])
	}

	var final float64
	for update := range progressChan {
		final = update.Value
	}
	if final != 1.0 {
		t.Errorf("shortcut path reported final progress %f, want 1.0", final)
	}
}

// TestNewCalculatorRequiresCore verifies the nil-core guard.
func TestNewCalculatorRequiresCore(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("NewCalculator(nil) should panic")
		}
	}()
	_ = NewCalculator(nil)
}

// TestCalculateStopsOnDeadline verifies every algorithm abandons an oversized
// calculation when its context expires.
func TestCalculateStopsOnDeadline(t *testing.T) {
	eachCalculator(t, func(t *testing.T, calc Calculator) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := calc.Calculate(ctx, nil, 0, 100_000_000, testOptions())
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("err = %v, want context.DeadlineExceeded", err)
		}
	})
}

func BenchmarkCalculate(b *testing.B) {
	f := NewDefaultFactory()
	for _, n := range []uint64{1_000_000, 10_000_000} {
		for _, name := range f.List() {
			calc := f.MustGet(name)
			b.Run(fmt.Sprintf("%s/n=%d", name, n), func(b *testing.B) {
				ctx := context.Background()
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					_, _ = calc.Calculate(ctx, nil, 0, n, testOptions())
				}
			})
		}
	}
}

func ExampleCalculator_Calculate() {
	calc := NewCalculator(&FastDoubling{})

	result, err := calc.Calculate(context.Background(), nil, 0, 20, Options{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(result)
	// Output: 6765
}
