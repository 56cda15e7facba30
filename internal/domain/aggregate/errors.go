package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrEmptySeries          = errors.New("observation series is empty")
	ErrDuplicateObservation = errors.New("duplicate observation for source and group key")
	ErrMixedMetrics         = errors.New("observation series mixes metrics")
)
