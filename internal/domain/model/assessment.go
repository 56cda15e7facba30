package model

import "time"

// AssessmentJob is a queued request to assess one company.
type AssessmentJob struct {
	ID           string        // assessment id, also the report id
	RequestID    string        // client idempotency key
	Company      string        // subject company
	Profile      string        // scoring profile, e.g. "risk"
	Items        []ScoredItem  // raw items to score
	Observations []Observation // optional scenario series, any number of metrics
	Metrics      []string      // metrics to pull from the observation store
	SubmittedAt  time.Time
}

// Report is the output of a completed assessment.
type Report struct {
	ID         string                       `json:"id"`
	Company    string                       `json:"company"`
	Profile    string                       `json:"profile"`
	Items      []ScoredItem                 `json:"items"`
	Summary    Summary                      `json:"summary"`
	Categories []CategorySummary            `json:"categories"`
	Series     map[string][]AggregatedPoint `json:"series,omitempty"`
	CreatedAt  time.Time                    `json:"created_at"`
}

// CompanyScore captures a company's latest average overall score used for ranking.
type CompanyScore struct {
	Company        string
	AverageOverall float64
}
