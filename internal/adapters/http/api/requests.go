package api

import (
	"net/http"

	"github.com/okian/platefinder/internal/domain/types"
)

// RequestsHandler serves the audit log.
type RequestsHandler struct {
	deps RequestDependencies
}

// NewRequestsHandler creates a new requests handler.
func NewRequestsHandler(deps RequestDependencies) *RequestsHandler {
	return &RequestsHandler{deps: deps}
}

// HandleGetRequests handles GET /requests requests.
func (h *RequestsHandler) HandleGetRequests(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_requests"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.AuthorizeViewer(r.Context(), r.Header.Get("Authorization")); err != nil {
		logFailure(r.Context(), op, err)
		writeDomainError(w, op, err)
		return
	}
	entries, err := h.deps.ListRequests(r.Context())
	if err != nil {
		logFailure(r.Context(), op, err)
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.RequestsResponse{Requests: entries})
}
