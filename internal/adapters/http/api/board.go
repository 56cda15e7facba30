package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// BoardHandler serves the company risk board.
type BoardHandler struct {
	deps     BoardDependencies
	maxLimit int
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(deps BoardDependencies, maxLimit int) *BoardHandler {
	return &BoardHandler{deps: deps, maxLimit: maxLimit}
}

// HandleTop handles GET /v1/board?limit=N. A missing limit means the cap.
func (h *BoardHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_board"
	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, op, WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be a positive integer")))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, op, WrapKind(op, ErrBadRequest, fmt.Errorf("limit exceeds %d", h.maxLimit)))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeError(w, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleCompany handles GET /v1/board/{company}.
func (h *BoardHandler) HandleCompany(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_company_rank"
	company := chi.URLParam(r, "company")
	if company == "" {
		writeError(w, op, NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.CompanyRank(r.Context(), company)
	if err != nil {
		writeError(w, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

