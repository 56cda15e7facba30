// Package scoring turns per-dimension scores into composite scores, severity
// labels, peer rankings and collection roll-ups.
//
// Every function is a pure function of its arguments; a Scorer only carries
// the profile table and is safe for concurrent use once built.
package scoring

import (
	"fmt"
	"strings"

	"github.com/okian/climarisk/internal/domain/model"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithProfile registers or replaces a profile.
func WithProfile(p Profile) Option {
	return func(s *Scorer) {
		if p.Name != "" {
			s.profiles[p.Name] = p
		}
	}
}

// WithProfilesFromConfig registers strict profiles from a name -> dimensions map.
func WithProfilesFromConfig(profiles map[string][]string) Option {
	return func(s *Scorer) {
		for name, dims := range profiles {
			name = strings.TrimSpace(name)
			if name == "" || len(dims) == 0 {
				continue
			}
			s.profiles[name] = Profile{Name: name, Dimensions: append([]string(nil), dims...), Strict: true}
		}
	}
}

// WithDefaultProfile sets the profile used when callers pass an empty name.
func WithDefaultProfile(name string) Option {
	return func(s *Scorer) {
		if name != "" {
			s.defaultProfile = name
		}
	}
}

// Scorer applies a named profile to items.
type Scorer struct {
	profiles       map[string]Profile
	defaultProfile string
}

// NewScorer creates a scorer with the built-in profiles and "risk" as default.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		profiles:       defaultProfiles(),
		defaultProfile: RiskProfile.Name,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assessment is a fully scored, ranked and summarized collection.
type Assessment struct {
	Profile    string                  `json:"profile"`
	Items      []model.ScoredItem      `json:"items"`
	Summary    model.Summary           `json:"summary"`
	Categories []model.CategorySummary `json:"categories"`
}

// Profile resolves name, falling back to the default for an empty name.
func (s *Scorer) Profile(name string) (Profile, error) {
	if name == "" {
		name = s.defaultProfile
	}
	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Profiles lists registered profile names, sorted.
func (s *Scorer) Profiles() []string {
	return sortedProfileNames(s.profiles)
}

// Score validates item against the profile and returns a copy with
// OverallScore, DisplayScore, Severity and Badge set.
func (s *Scorer) Score(profile string, item model.ScoredItem) (model.ScoredItem, error) {
	p, err := s.Profile(profile)
	if err != nil {
		return model.ScoredItem{}, err
	}
	return scoreWith(p, item)
}

func scoreWith(p Profile, item model.ScoredItem) (model.ScoredItem, error) {
	for name := range item.DimensionScores {
		if !p.allows(name) {
			return model.ScoredItem{}, fmt.Errorf("%w: %q not in %s", ErrUnknownDimension, name, p.Name)
		}
	}
	overall, err := Composite(item.DimensionScores)
	if err != nil {
		return model.ScoredItem{}, err
	}
	out := item.Clone()
	out.OverallScore = overall
	out.DisplayScore = Round1(overall)
	out.Severity = Classify(overall)
	out.Badge = Badge(overall)
	return out, nil
}

// Assess scores every item, ranks them against each other when there are at
// least two, and computes the collection and per-category summaries.
// Items without explicit peers get the ids of the rest of the collection.
func (s *Scorer) Assess(profile string, items []model.ScoredItem) (Assessment, error) {
	if len(items) == 0 {
		return Assessment{}, ErrEmptyCollection
	}
	p, err := s.Profile(profile)
	if err != nil {
		return Assessment{}, err
	}

	scored := make([]model.ScoredItem, len(items))
	for i, it := range items {
		scored[i], err = scoreWith(p, it)
		if err != nil {
			return Assessment{}, fmt.Errorf("item %d: %w", i, err)
		}
	}

	if len(scored) >= 2 {
		ranked, err := RankAllDimensions(scored)
		if err != nil {
			return Assessment{}, err
		}
		scored = ranked
		fillPeers(scored)
	}

	summary, err := Summarize(scored)
	if err != nil {
		return Assessment{}, err
	}
	categories, err := ByCategory(scored)
	if err != nil {
		return Assessment{}, err
	}

	return Assessment{
		Profile:    p.Name,
		Items:      scored,
		Summary:    summary,
		Categories: categories,
	}, nil
}

func fillPeers(items []model.ScoredItem) {
	for i := range items {
		if len(items[i].Peers) > 0 {
			continue
		}
		peers := make([]string, 0, len(items)-1)
		for j := range items {
			if j != i && items[j].ID != "" {
				peers = append(peers, items[j].ID)
			}
		}
		items[i].Peers = peers
	}
}
