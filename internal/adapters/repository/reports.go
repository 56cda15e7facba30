package repository

import (
	"context"
	"sync"

	"github.com/okian/climarisk/internal/domain/model"
	"github.com/okian/climarisk/pkg/metrics"
)

// MemoryReports keeps completed reports in memory.
type MemoryReports struct {
	mu         sync.RWMutex
	reports    *fifo[model.Report]
	maxReports int
}

// NewMemoryReports constructs an in-memory report store.
func NewMemoryReports(opts ...ReportOption) *MemoryReports {
	r := &MemoryReports{}
	for _, opt := range opts {
		opt(r)
	}
	r.reports = newFIFO[model.Report](r.maxReports)
	return r
}

// SaveReport stores a deep copy of report, replacing any report with the same id.
func (r *MemoryReports) SaveReport(_ context.Context, report model.Report) error {
	if report.ID == "" {
		return ErrEmptyReportID
	}
	cp := cloneReport(report)

	r.mu.Lock()
	r.reports.put(report.ID, cp)
	count := r.reports.len()
	r.mu.Unlock()

	metrics.UpdateReportsStored(count)
	return nil
}

// Report returns a copy of the stored report.
func (r *MemoryReports) Report(_ context.Context, id string) (model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports.get(id)
	if !ok {
		return model.Report{}, ErrNotFound
	}
	return cloneReport(report), nil
}

// ReportCount returns the number of stored reports.
func (r *MemoryReports) ReportCount(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reports.len()
}

func cloneReport(in model.Report) model.Report {
	out := in
	out.Items = make([]model.ScoredItem, len(in.Items))
	for i, it := range in.Items {
		out.Items[i] = it.Clone()
	}
	out.Summary.AveragePerDimension = cloneFloats(in.Summary.AveragePerDimension)
	out.Categories = make([]model.CategorySummary, len(in.Categories))
	for i, c := range in.Categories {
		out.Categories[i] = c
		out.Categories[i].AveragePerDimension = cloneFloats(c.AveragePerDimension)
	}
	if in.Series != nil {
		out.Series = make(map[string][]model.AggregatedPoint, len(in.Series))
		for k, v := range in.Series {
			out.Series[k] = append([]model.AggregatedPoint(nil), v...)
		}
	}
	return out
}

func cloneFloats(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
