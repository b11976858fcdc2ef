package fibonacci

import (
	"math/big"
	"sync"
)

// MaxPooledBitLen caps the size of big.Int values a state pool will take
// back. Anything larger is dropped on release so a single huge calculation
// cannot pin megabytes of buffer inside the pool. 4M bits is roughly 512 KB.
const MaxPooledBitLen = 4_000_000

func checkLimit(z *big.Int) bool {
	return z != nil && z.BitLen() > MaxPooledBitLen
}

// firstError keeps the first non-nil error handed to it by a group of
// goroutines. Later errors are discarded; the doubling step only needs to
// know that the batch failed and why.
type firstError struct {
	once sync.Once
	err  error
}

func (f *firstError) record(err error) {
	if err == nil {
		return
	}
	f.once.Do(func() { f.err = err })
}

// mulTask is one pending multiplication of a doubling step. A square task
// ignores y and routes through the strategy's Square primitive, which some
// backends implement more cheaply than a general product.
type mulTask struct {
	dest   **big.Int
	x, y   *big.Int
	square bool
}

func (t *mulTask) execute(strategy MultiplicationStrategy, opts Options) error {
	var err error
	if t.square {
		*t.dest, err = strategy.Square(*t.dest, t.x, opts)
	} else {
		*t.dest, err = strategy.Multiply(*t.dest, t.x, t.y, opts)
	}
	return err
}

// runMulTasks executes a batch of multiplications, one goroutine per task
// when inParallel is set. Task destinations must be disjoint; sources are
// only read and may alias each other.
func runMulTasks(strategy MultiplicationStrategy, opts Options, tasks []mulTask, inParallel bool) error {
	if !inParallel {
		for i := range tasks {
			if err := tasks[i].execute(strategy, opts); err != nil {
				return err
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	var failure firstError
	wg.Add(len(tasks))
	for i := range tasks {
		go func(t *mulTask) {
			defer wg.Done()
			failure.record(t.execute(strategy, opts))
		}(&tasks[i])
	}
	wg.Wait()
	return failure.err
}

// shouldParallelize reports whether operands of the given bit length are
// large enough that spawning goroutines beats running the batch inline. A
// non-positive threshold disables parallelism entirely.
func shouldParallelize(opts Options, maxBitLen int) bool {
	return opts.ParallelThreshold > 0 && maxBitLen > opts.ParallelThreshold
}
