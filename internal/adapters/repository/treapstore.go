package repository

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/okian/climarisk/pkg/metrics"
)

// Treap-based, in-memory Board implementation.
//
// Ordering: average overall DESC, then company ASC. "less" means ranks
// earlier, so in-order traversal yields the board from riskiest to safest.

// scoreScale controls fixed-point scaling; board scores live in [1, 5].
const scoreScale = 1_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP { return scoreFP(math.Round(x * scoreScale)) }

func toFloat(x scoreFP) float64 { return float64(x) / scoreScale }

type record struct {
	score    scoreFP
	reportID string
}

type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score scoreFP, prio uint64) *node {
	if n == nil {
		return &node{id: id, score: score, prio: prio, size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		// Rotate the higher-priority child up until n is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in board order.
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		if rec, ok := records[n.id]; ok {
			*out = append(*out, Entry{Company: n.id, AverageOverall: toFloat(rec.score), ReportID: rec.reportID})
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// TreapStore is an in-memory Board.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
	rng  *rand.Rand
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID: make(map[string]record),
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertCompany implements Board.UpsertCompany in O(log n) expected time.
func (s *TreapStore) UpsertCompany(_ context.Context, company string, averageOverall float64, reportID string) error {
	if company == "" {
		return ErrEmptyCompany
	}
	if math.IsNaN(averageOverall) || math.IsInf(averageOverall, 0) {
		return ErrInvalidScore
	}
	ns := toFixedPoint(averageOverall)

	s.mu.Lock()
	if old, ok := s.byID[company]; ok {
		s.root = deleteNode(s.root, company, old.score)
	}
	s.byID[company] = record{score: ns, reportID: reportID}
	s.root = insert(s.root, company, ns, s.rng.Uint64())
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateBoardCompanies(count)
	return nil
}

// Rank returns the current rank and score for a company.
func (s *TreapStore) Rank(_ context.Context, company string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[company]; !ok {
		return Entry{}, ErrNotFound
	}

	all := make([]Entry, 0, len(s.byID))
	collectTopN(s.root, len(s.byID), s.byID, &all)
	assignRanksWithTies(all)

	for _, e := range all {
		if e.Company == company {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// TopN returns the top N entries ordered by average overall desc.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, s.byID, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the number of companies on the board.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// assignRanksWithTies gives companies with the same score the same rank;
// the next distinct score takes the next consecutive rank.
func assignRanksWithTies(entries []Entry) {
	currentRank := 0
	for i := range entries {
		if i == 0 || entries[i].AverageOverall != entries[i-1].AverageOverall {
			currentRank++
		}
		entries[i].Rank = currentRank
	}
}
