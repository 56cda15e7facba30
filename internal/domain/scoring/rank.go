package scoring

import (
	"fmt"
	"sort"

	"github.com/okian/climarisk/internal/domain/model"
)

// OverallDimension ranks items by their composite score instead of a single
// dimension.
const OverallDimension = "overall"

// RankPeers ranks items on dimension, descending: rank 1 is the highest score
// whatever the dimension means. Exact ties go to the earlier-listed item, so
// ranks are always 1..N without gaps or repeats. Items lacking the dimension
// rank after every item that has it. ranks[i] belongs to items[i].
func RankPeers(items []model.ScoredItem, dimension string) ([]int, error) {
	if len(items) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrEmptyPeerSet, len(items))
	}

	type entry struct {
		idx   int
		score float64
		has   bool
	}
	entries := make([]entry, len(items))
	for i, it := range items {
		score, has, err := dimensionValue(it, dimension)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		entries[i] = entry{idx: i, score: score, has: has}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].has != entries[b].has {
			return entries[a].has
		}
		return entries[a].score > entries[b].score
	})

	ranks := make([]int, len(items))
	for pos, e := range entries {
		ranks[e.idx] = pos + 1
	}
	return ranks, nil
}

// RankAllDimensions returns copies of items with PeerRankings filled for every
// dimension present in the collection, plus OverallDimension. An item gets no
// ranking for a dimension it does not carry.
func RankAllDimensions(items []model.ScoredItem) ([]model.ScoredItem, error) {
	if len(items) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrEmptyPeerSet, len(items))
	}

	out := make([]model.ScoredItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
		out[i].PeerRankings = make(map[string]int)
	}

	dims := append(collectDimensions(items), OverallDimension)
	for _, dim := range dims {
		ranks, err := RankPeers(items, dim)
		if err != nil {
			return nil, err
		}
		for i := range out {
			if _, has, _ := dimensionValue(items[i], dim); has {
				out[i].PeerRankings[dim] = ranks[i]
			}
		}
	}
	return out, nil
}

func dimensionValue(item model.ScoredItem, dimension string) (float64, bool, error) {
	if dimension == OverallDimension {
		overall, err := Composite(item.DimensionScores)
		if err != nil {
			return 0, false, err
		}
		return overall, true, nil
	}
	v, ok := item.DimensionScores[dimension]
	return v, ok, nil
}

// collectDimensions returns every dimension key in the collection, sorted.
func collectDimensions(items []model.ScoredItem) []string {
	seen := make(map[string]struct{})
	for _, it := range items {
		for name := range it.DimensionScores {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
