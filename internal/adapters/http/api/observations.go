package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Default window when from/to are omitted.
const (
	defaultFromYear = 2020
	defaultToYear   = 2101
)

// ObservationsHandler aggregates stored scenario series.
type ObservationsHandler struct {
	deps ObservationDependencies
}

// NewObservationsHandler creates a new observations handler.
func NewObservationsHandler(deps ObservationDependencies) *ObservationsHandler {
	return &ObservationsHandler{deps: deps}
}

// HandleAggregate handles GET /v1/observations/{metric}?source=&from=&to=.
// from and to are years or RFC3339 timestamps; to is exclusive.
func (h *ObservationsHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	const op = "api.observations"
	q := r.URL.Query()

	from, err := parseBound(q.Get("from"), defaultFromYear)
	if err != nil {
		writeError(w, op, WrapKind(op, ErrBadRequest, fmt.Errorf("from: %w", err)))
		return
	}
	to, err := parseBound(q.Get("to"), defaultToYear)
	if err != nil {
		writeError(w, op, WrapKind(op, ErrBadRequest, fmt.Errorf("to: %w", err)))
		return
	}

	res, err := h.deps.ObservedAggregate(r.Context(), chi.URLParam(r, "metric"), q.Get("source"), from, to)
	if err != nil {
		writeError(w, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseBound(s string, defaultYear int) (time.Time, error) {
	if s == "" {
		return time.Date(defaultYear, 1, 1, 0, 0, 0, 0, time.UTC), nil
	}
	if year, err := strconv.Atoi(s); err == nil {
		return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("want a year or RFC3339 timestamp, got %q", s)
	}
	return t, nil
}
