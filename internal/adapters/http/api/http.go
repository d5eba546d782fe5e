// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/platefinder/internal/adapters/repository"
	service "github.com/okian/platefinder/internal/app"
	"github.com/okian/platefinder/internal/domain/matching"
	"github.com/okian/platefinder/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecommendationDependencies
	RestaurantDependencies
	RequestDependencies
}

// RecommendationDependencies looks up restaurants for a free-text query.
type RecommendationDependencies interface {
	Recommend(ctx context.Context, query string, params map[string][]string) ([]model.Recommendation, error)
}

// RestaurantDependencies creates restaurants on behalf of authorized callers.
type RestaurantDependencies interface {
	AuthorizeCreator(ctx context.Context, authHeader string) error
	CreateRestaurant(ctx context.Context, r model.Restaurant) (string, error)
}

// RequestDependencies exposes the audit log to authorized callers.
type RequestDependencies interface {
	AuthorizeViewer(ctx context.Context, authHeader string) error
	ListRequests(ctx context.Context) ([]model.RequestLogEntry, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	recommendationsHandler *RecommendationsHandler
	restaurantsHandler     *RestaurantsHandler
	requestsHandler        *RequestsHandler
	limiter                *RateLimiter
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := defaultServerOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		recommendationsHandler: NewRecommendationsHandler(deps),
		restaurantsHandler:     NewRestaurantsHandler(deps, cfg.maxBodyBytes),
		requestsHandler:        NewRequestsHandler(deps),
		limiter:                NewRateLimiter(cfg.rateLimit, cfg.rateBurst),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/healthz", Chain(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/stats", Chain(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/recommendations", Chain(s.limiter.Limit(s.recommendationsHandler.HandleGetRecommendations), "recommendations"))
	mux.Handle("/restaurants", Chain(s.restaurantsHandler.HandlePostRestaurant, "restaurants"))
	mux.Handle("/requests", Chain(s.requestsHandler.HandleGetRequests, "requests"))
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

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps a domain error onto a status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		return http.StatusBadRequest, "empty_query"
	case errors.Is(err, service.ErrNoCriteriaParsed):
		return http.StatusBadRequest, "no_criteria"
	case errors.Is(err, ErrIncompleteData):
		return http.StatusBadRequest, "incomplete_data"
	case errors.Is(err, repository.ErrInvalidRecord):
		return http.StatusBadRequest, "invalid_record"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, matching.ErrNoMatch):
		return http.StatusNotFound, "no_match"
	case errors.Is(err, service.ErrNoRequests):
		return http.StatusNotFound, "no_requests"
	case errors.Is(err, matching.ErrStoreUnavailable), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeDomainError(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, code, NewKind(op, ErrInternal))
		return
	}
	writeError(w, status, code, err)
}
