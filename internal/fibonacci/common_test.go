package fibonacci

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
)

// TestFirstErrorKeepsEarliest verifies only the first recorded error
// survives, including under concurrent recording.
func TestFirstErrorKeepsEarliest(t *testing.T) {
	t.Parallel()

	var f firstError
	f.record(nil)
	if f.err != nil {
		t.Errorf("nil must not count as a failure, got %v", f.err)
	}

	want := errors.New("first")
	f.record(want)
	f.record(errors.New("second"))
	if f.err != want {
		t.Errorf("err = %v, want %v", f.err, want)
	}

	var g firstError
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g.record(fmt.Errorf("worker %d", i))
		}(i)
	}
	wg.Wait()
	if g.err == nil {
		t.Error("an error should have been captured")
	}
}

// failingStrategy returns errAt on the k-th operation and delegates the rest
// to the plain big.Int backend.
type failingStrategy struct {
	mu    sync.Mutex
	calls int
	at    int
	inner BigIntStrategy
}

var errInjected = errors.New("injected multiplication failure")

func (s *failingStrategy) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.calls == s.at
}

func (s *failingStrategy) Multiply(z, x, y *big.Int, opts Options) (*big.Int, error) {
	if s.tick() {
		return z, errInjected
	}
	return s.inner.Multiply(z, x, y, opts)
}

func (s *failingStrategy) Square(z, x *big.Int, opts Options) (*big.Int, error) {
	if s.tick() {
		return z, errInjected
	}
	return s.inner.Square(z, x, opts)
}

func (s *failingStrategy) Name() string { return "failing" }

// TestRunMulTasksPropagatesErrors verifies a failing operation surfaces from
// both the sequential and the parallel execution paths.
func TestRunMulTasksPropagatesErrors(t *testing.T) {
	t.Parallel()

	makeTasks := func() []mulTask {
		a, b := big.NewInt(3), big.NewInt(5)
		d1, d2, d3 := new(big.Int), new(big.Int), new(big.Int)
		return []mulTask{
			{dest: &d1, x: a, y: b},
			{dest: &d2, x: a, square: true},
			{dest: &d3, x: b, square: true},
		}
	}

	for _, inParallel := range []bool{false, true} {
		strategy := &failingStrategy{at: 2}
		err := runMulTasks(strategy, Options{}, makeTasks(), inParallel)
		if !errors.Is(err, errInjected) {
			t.Errorf("inParallel=%v: err = %v, want errInjected", inParallel, err)
		}
	}
}

// TestRunMulTasksComputes verifies both execution paths produce the same
// products.
func TestRunMulTasksComputes(t *testing.T) {
	t.Parallel()

	for _, inParallel := range []bool{false, true} {
		a, b := big.NewInt(6), big.NewInt(7)
		product, square := new(big.Int), new(big.Int)
		tasks := []mulTask{
			{dest: &product, x: a, y: b},
			{dest: &square, x: b, square: true},
		}
		if err := runMulTasks(&BigIntStrategy{}, Options{}, tasks, inParallel); err != nil {
			t.Fatalf("inParallel=%v: %v", inParallel, err)
		}
		if product.Int64() != 42 {
			t.Errorf("inParallel=%v: product = %s, want 42", inParallel, product)
		}
		if square.Int64() != 49 {
			t.Errorf("inParallel=%v: square = %s, want 49", inParallel, square)
		}
	}
}

// TestShouldParallelize verifies the threshold gate, including the disabled
// state at zero.
func TestShouldParallelize(t *testing.T) {
	t.Parallel()

	if shouldParallelize(Options{ParallelThreshold: 0}, 1<<20) {
		t.Error("a zero threshold must disable parallelism")
	}
	if shouldParallelize(Options{ParallelThreshold: 4096}, 4096) {
		t.Error("operands at the threshold should stay sequential")
	}
	if !shouldParallelize(Options{ParallelThreshold: 4096}, 4097) {
		t.Error("operands above the threshold should parallelize")
	}
}
