// Package handlers provides HTTP handlers for the sqlbuddy API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nnnkkk7/sqlbuddy/pkg/highlight"
	"github.com/nnnkkk7/sqlbuddy/pkg/sqltext"
	"github.com/nnnkkk7/sqlbuddy/server/apierror"
	"github.com/nnnkkk7/sqlbuddy/server/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// EditorHandler serves the pure text endpoints: highlighting and splitting.
type EditorHandler struct{}

// NewEditorHandler creates a new editor handler.
func NewEditorHandler() *EditorHandler {
	return &EditorHandler{}
}

// Highlight handles POST /api/v1/highlight.
func (h *EditorHandler) Highlight(w http.ResponseWriter, r *http.Request) {
	var req types.TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, types.NewHighlightResponse(highlight.Highlight(req.Text)))
}

// Split handles POST /api/v1/split.
func (h *EditorHandler) Split(w http.ResponseWriter, r *http.Request) {
	var req types.TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, types.SplitResponse{Statements: sqltext.Split(req.Text)})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		sendError(w, apierror.NewInvalidRequestError("Content-Type must be application/json"))
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		sendError(w, apierror.NewInvalidRequestError("Invalid request body").WithData("reason", err.Error()))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, err *apierror.Error) {
	err.Write(w)
}
