package api

import (
	"net/http"

	"github.com/okian/climarisk/internal/domain/model"
	"github.com/okian/climarisk/internal/domain/scoring"
	"github.com/okian/climarisk/pkg/metrics"
)

type aggregateRequest struct {
	Observations []model.Observation `json:"observations" validate:"dive"`
	// Source selects one source's series instead of the cross-source mean.
	Source string `json:"source"`
}

type sourcesRequest struct {
	Observations []model.Observation `json:"observations" validate:"dive"`
	Metric       string              `json:"metric" validate:"required"`
}

type sourcesResponse struct {
	Metric  string   `json:"metric"`
	Sources []string `json:"sources"`
}

type scoreRequest struct {
	Profile string             `json:"profile"`
	Items   []model.ScoredItem `json:"items" validate:"dive"`
}

type rankRequest struct {
	Items     []model.ScoredItem `json:"items" validate:"dive"`
	Dimension string             `json:"dimension" validate:"required"`
}

type rankResponse struct {
	Dimension string `json:"dimension"`
	Ranks     []int  `json:"ranks"`
}

type summaryRequest struct {
	Items []model.ScoredItem `json:"items" validate:"dive"`
}

type summaryResponse struct {
	Summary    model.Summary           `json:"summary"`
	Categories []model.CategorySummary `json:"categories"`
}

// EngineHandler serves the synchronous aggregation and scoring endpoints.
type EngineHandler struct {
	deps EngineDependencies
}

// NewEngineHandler creates a new engine handler.
func NewEngineHandler(deps EngineDependencies) *EngineHandler {
	return &EngineHandler{deps: deps}
}

// HandleAggregate handles POST /v1/aggregate.
func (h *EngineHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	const op = "api.aggregate"
	var req aggregateRequest
	if err := h.decode(op, w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	res, err := h.deps.Aggregate(r.Context(), req.Observations, req.Source)
	if err != nil {
		writeError(w, op, Wrap(op, err))
		return
	}
	mode := "aggregate"
	if req.Source != "" {
		mode = "source"
	}
	metrics.RecordAggregation(mode, len(res.Points))
	writeJSON(w, http.StatusOK, res)
}

// HandleSources handles POST /v1/sources.
func (h *EngineHandler) HandleSources(w http.ResponseWriter, r *http.Request) {
	const op = "api.sources"
	var req sourcesRequest
	if err := h.decode(op, w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	sources := h.deps.Sources(r.Context(), req.Observations, req.Metric)
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, sourcesResponse{Metric: req.Metric, Sources: sources})
}

// HandleScore handles POST /v1/score.
func (h *EngineHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := h.decode(op, w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	assessment, err := h.deps.Score(r.Context(), req.Profile, req.Items)
	if err != nil {
		writeError(w, op, Wrap(op, err))
		return
	}
	for _, it := range assessment.Items {
		metrics.RecordItemScored(string(it.Severity))
	}
	writeJSON(w, http.StatusOK, assessment)
}

// HandleRank handles POST /v1/rank.
func (h *EngineHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank"
	var req rankRequest
	if err := h.decode(op, w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	ranks, err := h.deps.RankPeers(r.Context(), req.Items, req.Dimension)
	if err != nil {
		writeError(w, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{Dimension: req.Dimension, Ranks: ranks})
}

// HandleSummary handles POST /v1/summary.
func (h *EngineHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.summary"
	var req summaryRequest
	if err := h.decode(op, w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	summary, categories, err := h.deps.Summarize(r.Context(), req.Items)
	if err != nil {
		writeError(w, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary, Categories: categories})
}

// HandleProfiles handles GET /v1/profiles.
func (h *EngineHandler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := h.deps.Profiles(r.Context())
	if profiles == nil {
		profiles = []scoring.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *EngineHandler) decode(op string, w http.ResponseWriter, r *http.Request, req any) error {
	if err := decodeJSON(op, w, r, req); err != nil {
		return err
	}
	return validateRequest(op, req)
}

