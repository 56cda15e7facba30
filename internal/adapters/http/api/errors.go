package api

import (
	"errors"
	"net/http"

	"github.com/okian/climarisk/internal/adapters/influx"
	"github.com/okian/climarisk/internal/adapters/mq/queue"
	"github.com/okian/climarisk/internal/adapters/repository"
	"github.com/okian/climarisk/internal/domain/aggregate"
	"github.com/okian/climarisk/internal/domain/scoring"
	"github.com/okian/climarisk/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrValidation   = errors.New("validation failed")
	ErrBackpressure = errors.New("backpressure")
)

// Error tags an underlying error with the operation and an error kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

// Error renders "op: kind: cause", skipping missing parts.
func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind.
func NewKind(op string, kind error) error { return &Error{Op: op, Kind: kind} }

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error { return &Error{Op: op, Kind: kind, Err: err} }

// Wrap tags err with op.
func Wrap(op string, err error) error { return &Error{Op: op, Err: err} }

type errorClass struct {
	kind   error
	status int
	code   string
	engine bool
}

// Most specific first: a wrapped engine error also carries ErrBadRequest.
var errorClasses = []errorClass{
	{aggregate.ErrEmptySeries, http.StatusBadRequest, "empty_series", true},
	{aggregate.ErrDuplicateObservation, http.StatusBadRequest, "duplicate_observation", true},
	{aggregate.ErrMixedMetrics, http.StatusBadRequest, "mixed_metrics", true},
	{scoring.ErrInvalidScoreRange, http.StatusBadRequest, "invalid_score_range", true},
	{scoring.ErrEmptyPeerSet, http.StatusBadRequest, "empty_peer_set", true},
	{scoring.ErrEmptyCollection, http.StatusBadRequest, "empty_collection", true},
	{scoring.ErrUnknownDimension, http.StatusBadRequest, "unknown_dimension", true},
	{scoring.ErrUnknownProfile, http.StatusBadRequest, "unknown_profile", true},
	{influx.ErrInvalidMetric, http.StatusBadRequest, "invalid_query", false},
	{influx.ErrInvalidRange, http.StatusBadRequest, "invalid_query", false},
	{repository.ErrInvalidLimit, http.StatusBadRequest, "bad_request", false},
	{repository.ErrNotFound, http.StatusNotFound, "not_found", false},
	{queue.ErrQueueFull, http.StatusTooManyRequests, "backpressure", false},
	{ErrBackpressure, http.StatusTooManyRequests, "backpressure", false},
	{queue.ErrQueueClosed, http.StatusServiceUnavailable, "unavailable", false},
	{types.ErrObservationsDisabled, http.StatusServiceUnavailable, "unavailable", false},
	{types.ErrNoObservations, http.StatusNotFound, "not_found", false},
	{ErrValidation, http.StatusBadRequest, "validation_failed", false},
	{ErrBadRequest, http.StatusBadRequest, "bad_request", false},
}

// classify maps err to a status and a stable code.
func classify(err error) errorClass {
	for _, c := range errorClasses {
		if errors.Is(err, c.kind) {
			return c
		}
	}
	return errorClass{status: http.StatusInternalServerError, code: "internal_error"}
}
