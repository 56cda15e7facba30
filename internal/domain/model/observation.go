// Package model contains domain models passed between layers.
package model

// AggregateSourceID marks points produced by averaging across sources.
const AggregateSourceID = "aggregate"

// Observation is a single numeric reading for a metric, reported by one
// source (model or provider) at one group key (typically a year).
// A nil Value means the source reported no data at that key.
type Observation struct {
	SourceID string   `json:"source_id" yaml:"source_id" validate:"required"`
	GroupKey int      `json:"group_key" yaml:"group_key"`
	Metric   string   `json:"metric" yaml:"metric" validate:"required"`
	Value    *float64 `json:"value" yaml:"value"`
}

// HasValue reports whether the observation carries a non-null value.
func (o Observation) HasValue() bool { return o.Value != nil }

// AggregatedPoint is the mean of every non-null contribution at one group key.
type AggregatedPoint struct {
	GroupKey         int     `json:"group_key"`
	Metric           string  `json:"metric"`
	Value            float64 `json:"value"`
	SourceID         string  `json:"source_id"`
	ContributorCount int     `json:"contributor_count"`
}

// Float returns a pointer to v, handy for building observations.
func Float(v float64) *float64 { return &v }
