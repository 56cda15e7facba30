package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMemoryFailures_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryFailures()

	if err := store.SaveFailure(ctx, Failure{ID: "f1", Error: "boom"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := store.Failure(ctx, "f1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "f1" || got.Error != "boom" {
		t.Errorf("unexpected failure: %+v", got)
	}
	if _, err := store.Failure(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.SaveFailure(ctx, Failure{}); !errors.Is(err, ErrEmptyReportID) {
		t.Errorf("expected ErrEmptyReportID, got %v", err)
	}
}

func TestMemoryFailures_Bounded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryFailures(WithMaxFailures(10))

	for i := range 200 {
		if err := store.SaveFailure(ctx, Failure{ID: fmt.Sprintf("job-%d", i), Error: "bad"}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	if n := store.FailureCount(ctx); n != 10 {
		t.Errorf("expected 10 failures retained, got %d", n)
	}
	if _, err := store.Failure(ctx, "job-0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected oldest failure to be evicted, got %v", err)
	}
	if _, err := store.Failure(ctx, "job-199"); err != nil {
		t.Errorf("expected newest failure to be retained: %v", err)
	}
}

func TestFIFO_ReplaceRefreshesAge(t *testing.T) {
	f := newFIFO[int](2)
	f.put("a", 1)
	f.put("b", 2)
	f.put("a", 3) // a is now the newest
	f.put("c", 4)

	if _, ok := f.get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if v, ok := f.get("a"); !ok || v != 3 {
		t.Errorf("expected a=3, got %d %v", v, ok)
	}
	if f.len() != 2 {
		t.Errorf("expected 2 entries, got %d", f.len())
	}
}
