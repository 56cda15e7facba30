// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/okian/climarisk/internal/adapters/http/swagger"
	"github.com/okian/climarisk/internal/domain/aggregate"
	"github.com/okian/climarisk/internal/domain/dedupe"
	"github.com/okian/climarisk/internal/domain/model"
	"github.com/okian/climarisk/internal/domain/scoring"
	"github.com/okian/climarisk/internal/domain/types"
	"github.com/okian/climarisk/pkg/logger"
	"github.com/okian/climarisk/pkg/metrics"
)

const (
	defaultMaxBoardLimit = 100
	defaultMaxBodyBytes  = 4 << 20
)

// EngineDependencies runs the synchronous aggregation and scoring operations.
type EngineDependencies interface {
	Aggregate(ctx context.Context, observations []model.Observation, sourceID string) (aggregate.Result, error)
	Sources(ctx context.Context, observations []model.Observation, metric string) []string
	Score(ctx context.Context, profile string, items []model.ScoredItem) (scoring.Assessment, error)
	RankPeers(ctx context.Context, items []model.ScoredItem, dimension string) ([]int, error)
	Summarize(ctx context.Context, items []model.ScoredItem) (model.Summary, []model.CategorySummary, error)
	Profiles(ctx context.Context) []scoring.Profile
}

// AssessmentDependencies accepts and reports asynchronous assessments.
type AssessmentDependencies interface {
	dedupe.Deduper
	// Enqueue returns queue.ErrQueueFull on backpressure.
	Enqueue(ctx context.Context, job model.AssessmentJob) error
	Assessment(ctx context.Context, id string) (types.AssessmentState, error)
}

// BoardDependencies exposes the company risk board.
type BoardDependencies interface {
	TopN(ctx context.Context, n int) ([]types.BoardEntry, error)
	CompanyRank(ctx context.Context, company string) (types.BoardEntry, error)
}

// ObservationDependencies aggregates series pulled from the time-series store.
type ObservationDependencies interface {
	ObservedAggregate(ctx context.Context, metric, sourceID string, from, to time.Time) (aggregate.Result, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	EngineDependencies
	AssessmentDependencies
	BoardDependencies
	ObservationDependencies
}

// Option configures the Server.
type Option func(*Server)

// WithMaxBoardLimit caps GET /v1/board?limit.
func WithMaxBoardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBoardLimit = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxBoardLimit int
	logger        logger.Logger

	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	engineHandler       *EngineHandler
	assessmentsHandler  *AssessmentsHandler
	boardHandler        *BoardHandler
	observationsHandler *ObservationsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxBoardLimit: defaultMaxBoardLimit}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.engineHandler = NewEngineHandler(deps)
	s.assessmentsHandler = NewAssessmentsHandler(deps)
	s.boardHandler = NewBoardHandler(deps, s.maxBoardLimit)
	s.observationsHandler = NewObservationsHandler(deps)
	return s
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Handle("/metrics", metricsHandler())
	r.Get("/stats", s.statsHandler.HandleStats)
	swagger.Mount(r)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/aggregate", s.engineHandler.HandleAggregate)
		r.Post("/sources", s.engineHandler.HandleSources)
		r.Post("/score", s.engineHandler.HandleScore)
		r.Post("/rank", s.engineHandler.HandleRank)
		r.Post("/summary", s.engineHandler.HandleSummary)
		r.Get("/profiles", s.engineHandler.HandleProfiles)

		r.Post("/assessments", s.assessmentsHandler.HandleSubmit)
		r.Get("/assessments/{id}", s.assessmentsHandler.HandleGet)

		r.Get("/observations/{metric}", s.observationsHandler.HandleAggregate)

		r.Get("/board", s.boardHandler.HandleTop)
		r.Get("/board/{company}", s.boardHandler.HandleCompany)
	})

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err, counts engine rejections and writes the body.
func writeError(w http.ResponseWriter, op string, err error) {
	c := classify(err)
	if c.engine {
		metrics.RecordEngineError(op, c.code)
	}
	msg := http.StatusText(c.status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, c.status, errorResponse{Code: c.code, Message: msg})
}

// decodeJSON reads one JSON document into v, rejecting unknown fields.
func decodeJSON(op string, w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, defaultMaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return NewKind(op, ErrBadRequest)
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	if dec.More() {
		return WrapKind(op, ErrBadRequest, fmt.Errorf("trailing data after JSON body"))
	}
	return nil
}
