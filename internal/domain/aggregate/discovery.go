package aggregate

import "github.com/okian/climarisk/internal/domain/model"

// Sources returns the distinct source ids that reported metric, in first-seen
// order. It backs source pickers, so the order follows the data rather than
// the alphabet.
func Sources(observations []model.Observation, metric string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, o := range observations {
		if o.Metric != metric {
			continue
		}
		if _, ok := seen[o.SourceID]; ok {
			continue
		}
		seen[o.SourceID] = struct{}{}
		out = append(out, o.SourceID)
	}
	return out
}

// Metrics returns the distinct metrics present, in first-seen order.
func Metrics(observations []model.Observation) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, o := range observations {
		if _, ok := seen[o.Metric]; ok {
			continue
		}
		seen[o.Metric] = struct{}{}
		out = append(out, o.Metric)
	}
	return out
}

// SplitByMetric partitions a mixed batch into one series per metric,
// preserving input order inside each series.
func SplitByMetric(observations []model.Observation) map[string]Series {
	out := make(map[string]Series)
	for _, o := range observations {
		out[o.Metric] = append(out[o.Metric], o)
	}
	return out
}
