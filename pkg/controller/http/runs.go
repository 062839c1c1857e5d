package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/domain/types"
)

const (
	defaultRunListLimit = 20
	maxRunListLimit     = 100
)

// RunHandler serves recorded pipeline runs.
type RunHandler struct {
	runs interfaces.RunRepository
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(runs interfaces.RunRepository) *RunHandler {
	return &RunHandler{runs: runs}
}

// List returns recent runs, newest first. The limit query parameter
// narrows the page size; it is capped at 100.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRunListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(ctx, w, goerr.New("limit must be a positive integer", goerr.V("limit", v)), http.StatusBadRequest)
			return
		}
		limit = n
	}
	if limit > maxRunListLimit {
		limit = maxRunListLimit
	}

	runs, err := h.runs.List(ctx, limit)
	if err != nil {
		ctxlog.From(ctx).Error("Failed to list runs", "error", err)
		writeError(ctx, w, goerr.New("failed to list runs"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"runs": runs,
	}); err != nil {
		ctxlog.From(ctx).Error("Failed to encode run list", "error", err)
	}
}

// Get returns a single run by ID.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := types.RunID(chi.URLParam(r, "runID"))
	if !id.IsValid() {
		writeError(ctx, w, goerr.New("invalid run ID", goerr.V("id", id)), http.StatusBadRequest)
		return
	}

	run, err := h.runs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrRunNotFound) {
			writeError(ctx, w, err, http.StatusNotFound)
			return
		}
		ctxlog.From(ctx).Error("Failed to load run", "error", err, "run_id", id)
		writeError(ctx, w, goerr.New("failed to load run"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(run); err != nil {
		ctxlog.From(ctx).Error("Failed to encode run", "error", err)
	}
}
