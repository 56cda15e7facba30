package scoring

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Composite returns the unweighted mean of the dimension scores at full
// precision. Out-of-range input is rejected, never clamped.
func Composite(dimensionScores map[string]float64) (float64, error) {
	if len(dimensionScores) == 0 {
		return 0, fmt.Errorf("%w: no dimensions supplied", ErrInvalidScoreRange)
	}
	// Sorted so the summation order, and with it the last bit, is stable.
	names := dimensionNames(dimensionScores)
	values := make([]float64, 0, len(names))
	for _, name := range names {
		v := dimensionScores[name]
		if err := checkRange(name, v); err != nil {
			return 0, err
		}
		values = append(values, v)
	}
	return stat.Mean(values, nil), nil
}

func checkRange(name string, v float64) error {
	if math.IsNaN(v) || v < MinDimensionScore || v > MaxDimensionScore {
		return fmt.Errorf("%w: %s=%g", ErrInvalidScoreRange, name, v)
	}
	return nil
}

func dimensionNames(scores map[string]float64) []string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
