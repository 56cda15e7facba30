package model

// Severity is the five-tier label derived from an overall score.
type Severity string

// Severity labels, most severe first.
const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityModerate Severity = "Moderate"
	SeverityLow      Severity = "Low"
	SeverityMinimal  Severity = "Minimal"
)

// BadgeLevel is the coarse label used by compact displays.
type BadgeLevel string

// Badge levels.
const (
	BadgeHigh   BadgeLevel = "high"
	BadgeMedium BadgeLevel = "medium"
	BadgeLow    BadgeLevel = "low"
)

// ScoredItem is one assessed risk or opportunity. DimensionScores are raw
// inputs in [1, 5]; OverallScore, Severity, Badge and PeerRankings are derived.
type ScoredItem struct {
	ID              string             `json:"id" yaml:"id"`
	Category        string             `json:"category" yaml:"category"`
	Subcategory     string             `json:"subcategory" yaml:"subcategory"`
	DimensionScores map[string]float64 `json:"dimension_scores" yaml:"dimension_scores"`
	OverallScore    float64            `json:"overall_score" yaml:"-"`
	DisplayScore    float64            `json:"display_score" yaml:"-"`
	Severity        Severity           `json:"severity,omitempty" yaml:"-"`
	Badge           BadgeLevel         `json:"badge,omitempty" yaml:"-"`
	Peers           []string           `json:"peers,omitempty" yaml:"peers"`
	PeerRankings    map[string]int     `json:"peer_rankings,omitempty" yaml:"-"`
}

// Clone returns a deep copy so derived fields can be set without touching
// the caller's item.
func (s ScoredItem) Clone() ScoredItem {
	out := s
	if s.DimensionScores != nil {
		out.DimensionScores = make(map[string]float64, len(s.DimensionScores))
		for k, v := range s.DimensionScores {
			out.DimensionScores[k] = v
		}
	}
	if s.Peers != nil {
		out.Peers = append([]string(nil), s.Peers...)
	}
	if s.PeerRankings != nil {
		out.PeerRankings = make(map[string]int, len(s.PeerRankings))
		for k, v := range s.PeerRankings {
			out.PeerRankings[k] = v
		}
	}
	return out
}

// Summary holds roll-up statistics for a collection of scored items.
type Summary struct {
	Count               int                `json:"count"`
	AverageOverall      float64            `json:"average_overall"`
	AveragePerDimension map[string]float64 `json:"average_per_dimension"`
	HighSeverityCount   int                `json:"high_severity_count"`
	CriticalCount       int                `json:"critical_count"`
}

// CategorySummary is a Summary restricted to one category.
type CategorySummary struct {
	Category string `json:"category"`
	Summary
}
