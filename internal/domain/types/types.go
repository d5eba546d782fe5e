// Package types contains the response shapes shared by the HTTP layer and its clients.
package types

import "github.com/okian/platefinder/internal/domain/model"

// RecommendationsResponse is the body of a successful GET /recommendations.
type RecommendationsResponse struct {
	Recommendations []model.Recommendation `json:"restaurantRecommendations"`
}

// RequestsResponse is the body of a successful GET /requests.
type RequestsResponse struct {
	Requests []model.RequestLogEntry `json:"requests"`
}

// CreatedResponse acknowledges POST /restaurants.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
