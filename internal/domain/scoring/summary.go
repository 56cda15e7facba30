package scoring

import (
	"fmt"

	"github.com/okian/climarisk/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Summarize rolls a collection up into averages and severity counts. Overall
// scores are recomputed from the dimension scores at full precision. An item
// missing a dimension is left out of that dimension's average.
func Summarize(items []model.ScoredItem) (model.Summary, error) {
	if len(items) == 0 {
		return model.Summary{}, ErrEmptyCollection
	}

	overalls := make([]float64, 0, len(items))
	perDim := make(map[string][]float64)
	sum := model.Summary{Count: len(items)}

	for i, it := range items {
		overall, err := Composite(it.DimensionScores)
		if err != nil {
			return model.Summary{}, fmt.Errorf("item %d: %w", i, err)
		}
		overalls = append(overalls, overall)
		if isHighSeverity(overall) {
			sum.HighSeverityCount++
		}
		if isCritical(overall) {
			sum.CriticalCount++
		}
		for name, v := range it.DimensionScores {
			perDim[name] = append(perDim[name], v)
		}
	}

	sum.AverageOverall = stat.Mean(overalls, nil)
	sum.AveragePerDimension = make(map[string]float64, len(perDim))
	for name, vs := range perDim {
		sum.AveragePerDimension[name] = stat.Mean(vs, nil)
	}
	return sum, nil
}

// ByCategory summarizes each category separately, in first-seen order.
// Categories need not share the same set of dimensions.
func ByCategory(items []model.ScoredItem) ([]model.CategorySummary, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCollection
	}

	order := make([]string, 0)
	groups := make(map[string][]model.ScoredItem)
	for _, it := range items {
		if _, ok := groups[it.Category]; !ok {
			order = append(order, it.Category)
		}
		groups[it.Category] = append(groups[it.Category], it)
	}

	out := make([]model.CategorySummary, 0, len(order))
	for _, cat := range order {
		s, err := Summarize(groups[cat])
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cat, err)
		}
		out = append(out, model.CategorySummary{Category: cat, Summary: s})
	}
	return out, nil
}
