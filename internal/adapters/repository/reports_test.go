package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/climarisk/internal/domain/model"
)

func TestMemoryReports_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryReports()

	report := model.Report{
		ID:      "a1",
		Company: "acme",
		Items: []model.ScoredItem{{
			ID:              "flood",
			Category:        "physical",
			DimensionScores: map[string]float64{"impact": 4},
		}},
		Summary: model.Summary{Count: 1, AveragePerDimension: map[string]float64{"impact": 4}},
	}
	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// mutating the caller's copy must not leak into the store
	report.Items[0].DimensionScores["impact"] = 1
	report.Summary.AveragePerDimension["impact"] = 1

	got, err := store.Report(ctx, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Items[0].DimensionScores["impact"] != 4 || got.Summary.AveragePerDimension["impact"] != 4 {
		t.Errorf("stored report was mutated: %+v", got)
	}
	if store.ReportCount(ctx) != 1 {
		t.Errorf("expected 1 report, got %d", store.ReportCount(ctx))
	}
}

func TestMemoryReports_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryReports()

	if _, err := store.Report(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.SaveReport(ctx, model.Report{}); !errors.Is(err, ErrEmptyReportID) {
		t.Errorf("expected ErrEmptyReportID, got %v", err)
	}
}

func TestMemoryReports_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryReports(WithMaxReports(2))

	for _, id := range []string{"a", "b", "c"} {
		if err := store.SaveReport(ctx, model.Report{ID: id}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	if _, err := store.Report(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected oldest report to be evicted, got %v", err)
	}
	for _, id := range []string{"b", "c"} {
		if _, err := store.Report(ctx, id); err != nil {
			t.Errorf("expected %s to be retained: %v", id, err)
		}
	}
	if store.ReportCount(ctx) != 2 {
		t.Errorf("expected 2 reports, got %d", store.ReportCount(ctx))
	}
}
