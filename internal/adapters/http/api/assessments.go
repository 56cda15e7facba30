package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/okian/climarisk/internal/domain/model"
	"github.com/okian/climarisk/internal/domain/types"
	"github.com/okian/climarisk/pkg/metrics"
)

// assessmentNamespace derives stable assessment ids from client request ids.
var assessmentNamespace = uuid.MustParse("6f1c2a4e-93b5-5d0e-8c7a-2b4f1e9d3a60")

type assessmentRequest struct {
	RequestID    string              `json:"request_id" validate:"omitempty,max=128"`
	Company      string              `json:"company" validate:"required,max=256"`
	Profile      string              `json:"profile"`
	Items        []model.ScoredItem  `json:"items" validate:"required,min=1,dive"`
	Observations []model.Observation `json:"observations" validate:"dive"`
	// Metrics are fetched from the observation store when one is configured.
	Metrics []string `json:"metrics" validate:"max=16,dive,required"`
}

// AssessmentsHandler accepts and reports asynchronous assessments.
type AssessmentsHandler struct {
	deps AssessmentDependencies
	now  func() time.Time
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps AssessmentDependencies) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps, now: time.Now}
}

// assessmentID is deterministic for a request id so a retried submission
// gets the id of the original.
func assessmentID(requestID string) string {
	if requestID == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(assessmentNamespace, []byte(requestID)).String()
}

// HandleSubmit handles POST /v1/assessments.
func (h *AssessmentsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_assessment"
	var req assessmentRequest
	if err := decodeJSON(op, w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	if err := validateRequest(op, req); err != nil {
		writeError(w, op, err)
		return
	}

	req.RequestID = strings.TrimSpace(req.RequestID)
	id := assessmentID(req.RequestID)

	// Idempotency check - mark as seen first
	if req.RequestID != "" && h.deps.SeenAndRecord(r.Context(), req.RequestID) {
		metrics.RecordDuplicateSubmission()
		writeJSON(w, http.StatusOK, types.Submission{ID: id, Status: "duplicate", Duplicate: true})
		return
	}

	job := model.AssessmentJob{
		ID:           id,
		RequestID:    req.RequestID,
		Company:      strings.TrimSpace(req.Company),
		Profile:      req.Profile,
		Items:        req.Items,
		Observations: req.Observations,
		Metrics:      req.Metrics,
		SubmittedAt:  h.now().UTC(),
	}
	if err := h.deps.Enqueue(r.Context(), job); err != nil {
		// Rollback the "seen" status so the client can retry.
		if req.RequestID != "" {
			h.deps.Unrecord(r.Context(), req.RequestID)
		}
		writeError(w, op, Wrap(op, err))
		return
	}

	w.Header().Set("Location", "/v1/assessments/"+id)
	writeJSON(w, http.StatusAccepted, types.Submission{ID: id, Status: "accepted"})
}

// HandleGet handles GET /v1/assessments/{id}. Pending assessments answer 202.
func (h *AssessmentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_assessment"
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		writeError(w, op, NewKind(op, ErrBadRequest))
		return
	}
	state, err := h.deps.Assessment(r.Context(), id)
	if err != nil {
		writeError(w, op, Wrap(op, err))
		return
	}
	status := http.StatusOK
	if state.Status == types.StatusPending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, state)
}
