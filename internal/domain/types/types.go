// Package types contains common types used across the application
package types

import (
	"errors"

	"github.com/okian/climarisk/internal/domain/model"
)

var (
	// ErrObservationsDisabled is returned when no observation source is configured.
	ErrObservationsDisabled = errors.New("observation source not configured")

	// ErrNoObservations is returned when the store holds no rows for a query.
	ErrNoObservations = errors.New("no stored observations")
)

// BoardEntry represents a company's position on the risk board.
type BoardEntry struct {
	Rank           int            `json:"rank"`
	Company        string         `json:"company"`
	AverageOverall float64        `json:"average_overall"`
	Severity       model.Severity `json:"severity"`
	ReportID       string         `json:"report_id,omitempty"`
}

// AssessmentStatus is the lifecycle state of a submitted assessment.
type AssessmentStatus string

const (
	StatusPending   AssessmentStatus = "pending"
	StatusCompleted AssessmentStatus = "completed"
	StatusFailed    AssessmentStatus = "failed"
)

// AssessmentState is what clients see when polling an assessment.
type AssessmentState struct {
	ID     string           `json:"id"`
	Status AssessmentStatus `json:"status"`
	Error  string           `json:"error,omitempty"`
	Report *model.Report    `json:"report,omitempty"`
}

// Submission acknowledges an assessment request.
type Submission struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}
