package api

import (
	"context"
	"net/http"

	"github.com/okian/platefinder/internal/domain/types"
	"github.com/okian/platefinder/pkg/logger"
)

// RecommendationsHandler handles recommendation lookups.
type RecommendationsHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationDependencies) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps}
}

// HandleGetRecommendations handles GET /recommendations?q=... requests.
func (h *RecommendationsHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommendations"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	params := r.URL.Query()
	recs, err := h.deps.Recommend(r.Context(), params.Get("q"), params)
	if err != nil {
		logFailure(r.Context(), op, err)
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.RecommendationsResponse{Recommendations: recs})
}

func logFailure(ctx context.Context, op string, err error) {
	status, code := classify(err)
	fields := []logger.Field{
		logger.String("op", op),
		logger.String("code", code),
		logger.String("request_id", RequestID(ctx)),
		logger.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(ctx, "request failed", fields...)
		return
	}
	logger.Get().Named("api").Debug(ctx, "request rejected", fields...)
}
