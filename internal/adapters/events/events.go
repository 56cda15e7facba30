package events

import (
	"time"

	"github.com/okian/climarisk/internal/domain/model"
	"github.com/okian/climarisk/internal/domain/scoring"
)

// AssessmentCompletedEvent is published once a report is stored.
type AssessmentCompletedEvent struct {
	AssessmentID      string         `json:"assessment_id"`
	Company           string         `json:"company"`
	Profile           string         `json:"profile"`
	ItemCount         int            `json:"item_count"`
	AverageOverall    float64        `json:"average_overall"`
	Severity          model.Severity `json:"severity"`
	HighSeverityCount int            `json:"high_severity_count"`
	CriticalCount     int            `json:"critical_count"`
	CompletedAt       time.Time      `json:"completed_at"`
}

// AssessmentFailedEvent is published when an assessment produces no report.
type AssessmentFailedEvent struct {
	AssessmentID string    `json:"assessment_id"`
	Company      string    `json:"company"`
	Error        string    `json:"error"`
	FailedAt     time.Time `json:"failed_at"`
}

// NewCompletedEvent summarizes a report for subscribers.
func NewCompletedEvent(r model.Report) AssessmentCompletedEvent {
	return AssessmentCompletedEvent{
		AssessmentID:      r.ID,
		Company:           r.Company,
		Profile:           r.Profile,
		ItemCount:         r.Summary.Count,
		AverageOverall:    r.Summary.AverageOverall,
		Severity:          scoring.Classify(r.Summary.AverageOverall),
		HighSeverityCount: r.Summary.HighSeverityCount,
		CriticalCount:     r.Summary.CriticalCount,
		CompletedAt:       r.CreatedAt,
	}
}
