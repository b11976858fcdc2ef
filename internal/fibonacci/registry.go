package fibonacci

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/agbru/fibengine/internal/errors"
)

// CalculatorFactory resolves algorithm names to Calculator instances. The
// interface lets callers take any registry implementation, including test
// doubles.
type CalculatorFactory interface {
	// Create builds a fresh Calculator for name, bypassing the cache.
	Create(name string) (Calculator, error)

	// Get returns the shared Calculator for name, building it on first use.
	Get(name string) (Calculator, error)

	// List returns the registered names in sorted order.
	List() []string

	// Register binds name to a core constructor, replacing any previous
	// binding.
	Register(name string, creator func() coreCalculator) error

	// GetAll returns every registered calculator, keyed by name.
	GetAll() map[string]Calculator
}

// registration pairs a core constructor with its lazily built shared
// instance. The instance is guarded by the owning factory's lock.
type registration struct {
	build  func() coreCalculator
	shared Calculator
}

// DefaultFactory is a thread-safe name registry of calculator constructors.
type DefaultFactory struct {
	mu      sync.RWMutex
	entries map[string]*registration
}

// NewDefaultFactory returns a factory with the built-in algorithms bound:
// "fast" (fast doubling) and "matrix" (matrix exponentiation). The GMP
// backend only registers itself in the global factory, and only under the
// gmp build tag.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{entries: make(map[string]*registration)}
	_ = f.Register("fast", func() coreCalculator { return &FastDoubling{} })
	_ = f.Register("matrix", func() coreCalculator { return &MatrixExponentiation{} })
	return f
}

// errUnknownCalculator classifies an unresolved name as an invalid argument,
// so callers that translate errors to exit codes or HTTP statuses treat it
// as a caller mistake rather than an internal failure.
func errUnknownCalculator(name string) error {
	return apperrors.NewValidationError("algo",
		fmt.Sprintf("no calculator registered under %q", name), name)
}

// Register binds name to a constructor. An existing binding is replaced and
// its shared instance discarded, so the next Get rebuilds from the new
// constructor.
func (f *DefaultFactory) Register(name string, creator func() coreCalculator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[name] = &registration{build: creator}
	return nil
}

// Create builds a fresh, uncached Calculator for name.
func (f *DefaultFactory) Create(name string) (Calculator, error) {
	f.mu.RLock()
	entry, ok := f.entries[name]
	f.mu.RUnlock()
	if !ok {
		return nil, errUnknownCalculator(name)
	}
	return NewCalculator(entry.build()), nil
}

// Get returns the shared Calculator for name, building and caching it on
// first use. Calculators are stateless between calls, so sharing is safe.
func (f *DefaultFactory) Get(name string) (Calculator, error) {
	f.mu.RLock()
	entry, ok := f.entries[name]
	var shared Calculator
	if ok {
		shared = entry.shared
	}
	f.mu.RUnlock()

	if !ok {
		return nil, errUnknownCalculator(name)
	}
	if shared != nil {
		return shared, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// Re-resolve under the write lock: the binding may have been replaced
	// or built by a concurrent caller in the meantime.
	entry, ok = f.entries[name]
	if !ok {
		return nil, errUnknownCalculator(name)
	}
	if entry.shared == nil {
		entry.shared = NewCalculator(entry.build())
	}
	return entry.shared, nil
}

// MustGet is Get for initialization paths where a missing name is a
// programming error. It panics instead of returning the error.
func (f *DefaultFactory) MustGet(name string) Calculator {
	calc, err := f.Get(name)
	if err != nil {
		panic(fmt.Sprintf("fibonacci: required calculator not found: %s", name))
	}
	return calc
}

// Has reports whether name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.entries[name]
	return ok
}

// List returns the registered names in sorted order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.entries))
	for name := range f.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns every registered calculator keyed by name, building any that
// have not been requested yet. The map is a copy; mutating it does not affect
// the factory.
func (f *DefaultFactory) GetAll() map[string]Calculator {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make(map[string]Calculator, len(f.entries))
	for name, entry := range f.entries {
		if entry.shared == nil {
			entry.shared = NewCalculator(entry.build())
		}
		all[name] = entry.shared
	}
	return all
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory shared by the CLI and the
// server.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}

// RegisterCalculator registers a calculator in the global factory. Optional
// backends call this from their init functions.
func RegisterCalculator(name string, creator func() coreCalculator) error {
	return globalFactory.Register(name, creator)
}
