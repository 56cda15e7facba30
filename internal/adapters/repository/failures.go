package repository

import (
	"context"
	"sync"
)

// MemoryFailures remembers why recent assessments failed, oldest forgotten first.
type MemoryFailures struct {
	mu          sync.RWMutex
	failures    *fifo[Failure]
	maxFailures int
}

// NewMemoryFailures constructs an in-memory failure store.
func NewMemoryFailures(opts ...FailureOption) *MemoryFailures {
	f := &MemoryFailures{}
	for _, opt := range opts {
		opt(f)
	}
	f.failures = newFIFO[Failure](f.maxFailures)
	return f
}

// SaveFailure records failure, replacing any earlier failure with the same id.
func (f *MemoryFailures) SaveFailure(_ context.Context, failure Failure) error {
	if failure.ID == "" {
		return ErrEmptyReportID
	}
	f.mu.Lock()
	f.failures.put(failure.ID, failure)
	f.mu.Unlock()
	return nil
}

// Failure returns ErrNotFound when id never failed or has been evicted.
func (f *MemoryFailures) Failure(_ context.Context, id string) (Failure, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	failure, ok := f.failures.get(id)
	if !ok {
		return Failure{}, ErrNotFound
	}
	return failure, nil
}

// FailureCount returns the number of remembered failures.
func (f *MemoryFailures) FailureCount(_ context.Context) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.failures.len()
}
