package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nnnkkk7/sqlbuddy/pkg/query"
	"github.com/nnnkkk7/sqlbuddy/server/apierror"
	"github.com/nnnkkk7/sqlbuddy/server/types"
)

// RunHandler handles batch run requests.
type RunHandler struct {
	runs *query.RunManager
}

// NewRunHandler creates a new run handler.
func NewRunHandler(runs *query.RunManager) *RunHandler {
	return &RunHandler{runs: runs}
}

// SubmitRun handles POST /api/v1/runs. The run continues in the background;
// the response carries its handle.
func (h *RunHandler) SubmitRun(w http.ResponseWriter, r *http.Request) {
	var req types.RunRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	text := req.SQL
	if req.Selection != nil {
		text = query.SelectRunText(text, query.Selection{Start: req.Selection.Start, End: req.Selection.End})
	}

	run, err := h.runs.Submit(r.Context(), text)
	if err != nil {
		sendError(w, apierror.FromError(err))
		return
	}

	w.Header().Set("Location", "/api/v1/runs/"+run.Handle)
	writeJSON(w, http.StatusAccepted, types.NewRunResponse(run))
}

// GetRun handles GET /api/v1/runs/{handle}.
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	run, ok := h.runs.Get(handle)
	if !ok {
		sendError(w, apierror.NewRunNotFoundError(handle))
		return
	}

	writeJSON(w, http.StatusOK, types.NewRunResponse(run))
}

// CancelRun handles POST /api/v1/runs/{handle}/cancel.
func (h *RunHandler) CancelRun(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	if err := h.runs.Cancel(handle); err != nil {
		sendError(w, apierror.FromError(err))
		return
	}

	run, ok := h.runs.Get(handle)
	if !ok {
		sendError(w, apierror.NewRunNotFoundError(handle))
		return
	}
	writeJSON(w, http.StatusOK, types.NewRunResponse(run))
}

// DeleteRun handles DELETE /api/v1/runs/{handle}.
func (h *RunHandler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	if err := h.runs.Delete(handle); err != nil {
		sendError(w, apierror.FromError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
