// Package aggregate collapses observation series reported by several sources
// into one representative series per metric.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/okian/climarisk/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Series is an ordered sequence of observations for one metric.
type Series []model.Observation

// Result is the output of Run. Exactly one of Points or Observations is set:
// Points when averaging across sources, Observations when a single source was
// selected.
type Result struct {
	Metric       string                  `json:"metric"`
	SourceID     string                  `json:"source_id"`
	Points       []model.AggregatedPoint `json:"points,omitempty"`
	Observations []model.Observation     `json:"observations,omitempty"`
}

type sourceKey struct {
	source string
	key    int
}

// Run selects the source view when sourceID is set and the cross-source mean
// otherwise. Output is always sorted ascending by group key.
func Run(series Series, sourceID string) (Result, error) {
	if err := validate(series); err != nil {
		return Result{}, err
	}
	res := Result{Metric: series[0].Metric}
	if sourceID != "" {
		res.SourceID = sourceID
		res.Observations = filter(series, sourceID)
		return res, nil
	}
	res.SourceID = model.AggregateSourceID
	res.Points = mean(series)
	return res, nil
}

// Filter returns the observations reported by sourceID, unmodified and sorted
// ascending by group key. No averaging occurs.
func Filter(series Series, sourceID string) ([]model.Observation, error) {
	if err := validate(series); err != nil {
		return nil, err
	}
	return filter(series, sourceID), nil
}

// Aggregate returns one point per group key holding the unweighted mean of the
// sources that reported a non-null value there. Keys without any contribution
// are omitted.
func Aggregate(series Series) ([]model.AggregatedPoint, error) {
	if err := validate(series); err != nil {
		return nil, err
	}
	return mean(series), nil
}

func validate(series Series) error {
	if len(series) == 0 {
		return ErrEmptySeries
	}
	metric := series[0].Metric
	seen := make(map[sourceKey]struct{}, len(series))
	for _, o := range series {
		if o.Metric != metric {
			return fmt.Errorf("%w: %q and %q", ErrMixedMetrics, metric, o.Metric)
		}
		k := sourceKey{source: o.SourceID, key: o.GroupKey}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: source %q at %d", ErrDuplicateObservation, o.SourceID, o.GroupKey)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func filter(series Series, sourceID string) []model.Observation {
	out := make([]model.Observation, 0, len(series))
	for _, o := range series {
		if o.SourceID == sourceID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GroupKey < out[j].GroupKey })
	return out
}

func mean(series Series) []model.AggregatedPoint {
	values := make(map[int][]float64)
	for _, o := range series {
		if !o.HasValue() {
			continue
		}
		values[o.GroupKey] = append(values[o.GroupKey], *o.Value)
	}

	keys := make([]int, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	metric := series[0].Metric
	out := make([]model.AggregatedPoint, 0, len(keys))
	for _, k := range keys {
		vs := values[k]
		out = append(out, model.AggregatedPoint{
			GroupKey:         k,
			Metric:           metric,
			Value:            stat.Mean(vs, nil),
			SourceID:         model.AggregateSourceID,
			ContributorCount: len(vs),
		})
	}
	return out
}
