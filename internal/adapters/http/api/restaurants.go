package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/platefinder/internal/domain/model"
	"github.com/okian/platefinder/internal/domain/types"
)

// requiredRestaurantFields must all be present in a POST /restaurants body.
var requiredRestaurantFields = []string{"name", "style", "address", "openHour", "closeHour", "vegetarian"}

// restaurantRequest mirrors the OpenAPI schema for POST /restaurants.
type restaurantRequest struct {
	Name       string `json:"name"`
	Style      string `json:"style"`
	Address    string `json:"address"`
	OpenHour   string `json:"openHour"`
	CloseHour  string `json:"closeHour"`
	Vegetarian bool   `json:"vegetarian"`
	GlutenFree *bool  `json:"glutenFree,omitempty"`
	Vegan      *bool  `json:"vegan,omitempty"`
	DairyFree  *bool  `json:"dairyFree,omitempty"`
	Delivery   *bool  `json:"delivery,omitempty"`
}

func (req *restaurantRequest) model() model.Restaurant {
	return model.Restaurant{
		Name:       strings.TrimSpace(req.Name),
		Style:      strings.TrimSpace(req.Style),
		Address:    strings.TrimSpace(req.Address),
		OpenHour:   req.OpenHour,
		CloseHour:  req.CloseHour,
		Vegetarian: req.Vegetarian,
		GlutenFree: req.GlutenFree,
		Vegan:      req.Vegan,
		DairyFree:  req.DairyFree,
		Delivery:   req.Delivery,
	}
}

// decodeRestaurant checks that every required key is present before
// decoding the typed request.
func decodeRestaurant(body []byte) (restaurantRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return restaurantRequest{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	var missing []string
	for _, k := range requiredRestaurantFields {
		if _, ok := raw[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return restaurantRequest{}, fmt.Errorf("%w: missing %s", ErrIncompleteData, strings.Join(missing, ", "))
	}
	var req restaurantRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return restaurantRequest{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return req, nil
}

// RestaurantsHandler handles restaurant creation.
type RestaurantsHandler struct {
	deps         RestaurantDependencies
	maxBodyBytes int64
}

// NewRestaurantsHandler creates a new restaurants handler.
func NewRestaurantsHandler(deps RestaurantDependencies, maxBodyBytes int64) *RestaurantsHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &RestaurantsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePostRestaurant handles POST /restaurants requests.
func (h *RestaurantsHandler) HandlePostRestaurant(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_restaurant"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.AuthorizeCreator(r.Context(), r.Header.Get("Authorization")); err != nil {
		logFailure(r.Context(), op, err)
		writeDomainError(w, op, err)
		return
	}

	body, err := readBody(w, r, h.maxBodyBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	req, err := decodeRestaurant(body)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}

	id, err := h.deps.CreateRestaurant(r.Context(), req.model())
	if err != nil {
		logFailure(r.Context(), op, err)
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.CreatedResponse{
		Message: "Restaurant created successfully",
		ID:      id,
	})
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("body exceeds %d bytes", maxErr.Limit)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
