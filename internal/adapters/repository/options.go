package repository

import "math/rand/v2"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithSeed makes node priorities deterministic.
func WithSeed(seed uint64) Option {
	return func(s *TreapStore) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// ReportOption applies a configuration option to the MemoryReports store.
type ReportOption func(*MemoryReports)

// WithMaxReports bounds the number of retained reports; the oldest report is
// evicted first. Zero keeps everything.
func WithMaxReports(n int) ReportOption {
	return func(r *MemoryReports) {
		if n > 0 {
			r.maxReports = n
		}
	}
}

// FailureOption applies a configuration option to the MemoryFailures store.
type FailureOption func(*MemoryFailures)

// WithMaxFailures bounds the number of remembered failures. Zero keeps everything.
func WithMaxFailures(n int) FailureOption {
	return func(f *MemoryFailures) {
		if n > 0 {
			f.maxFailures = n
		}
	}
}
