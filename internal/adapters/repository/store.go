// Package repository holds the company risk board and the report store.
package repository

import (
	"context"

	"github.com/okian/climarisk/internal/domain/model"
)

// Entry represents a risk board row.
type Entry struct {
	Rank           int
	Company        string
	AverageOverall float64
	ReportID       string
}

// Board ranks companies by their latest average overall score.
type Board interface {
	// UpsertCompany records the latest average overall score for a company,
	// replacing any previous value.
	UpsertCompany(ctx context.Context, company string, averageOverall float64, reportID string) error

	// Rank returns the current rank and score for a company.
	// Returns ErrNotFound if the company is unknown.
	Rank(ctx context.Context, company string) (Entry, error)

	// TopN returns the top-N entries ordered by average overall desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of companies on the board.
	Count(ctx context.Context) int
}

// Reports stores completed assessment reports by id.
type Reports interface {
	SaveReport(ctx context.Context, report model.Report) error
	// Report returns ErrNotFound for unknown ids.
	Report(ctx context.Context, id string) (model.Report, error)
	ReportCount(ctx context.Context) int
}

// Failure is why an assessment produced no report.
type Failure struct {
	ID    string
	Error string
}

// Failures stores the outcome of failed assessments by id.
type Failures interface {
	SaveFailure(ctx context.Context, failure Failure) error
	// Failure returns ErrNotFound for unknown or evicted ids.
	Failure(ctx context.Context, id string) (Failure, error)
	FailureCount(ctx context.Context) int
}
