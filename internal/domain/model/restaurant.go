// Package model contains domain models passed between layers.
package model

// Restaurant is one stored eatery. Style is the partition key and is always
// present; the optional dietary and delivery flags are pointers so that an
// absent flag stays distinguishable from false.
type Restaurant struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string `json:"name" yaml:"name"`
	Style      string `json:"style" yaml:"style"`
	Address    string `json:"address" yaml:"address"`
	OpenHour   string `json:"openHour,omitempty" yaml:"openHour,omitempty"`   // "HH:MM"
	CloseHour  string `json:"closeHour,omitempty" yaml:"closeHour,omitempty"` // "HH:MM"
	Vegetarian bool   `json:"vegetarian" yaml:"vegetarian"`
	GlutenFree *bool  `json:"glutenFree,omitempty" yaml:"glutenFree,omitempty"`
	Vegan      *bool  `json:"vegan,omitempty" yaml:"vegan,omitempty"`
	DairyFree  *bool  `json:"dairyFree,omitempty" yaml:"dairyFree,omitempty"`
	Delivery   *bool  `json:"delivery,omitempty" yaml:"delivery,omitempty"`
}

// Recommendation is the public projection of a matched Restaurant.
type Recommendation struct {
	Name       string `json:"name"`
	Style      string `json:"style"`
	Address    string `json:"address"`
	OpenHour   string `json:"openHour"`
	CloseHour  string `json:"closeHour"`
	Vegetarian bool   `json:"vegetarian"`
}

// Recommend projects r onto the fields returned to callers.
func (r *Restaurant) Recommend() Recommendation {
	return Recommendation{
		Name:       r.Name,
		Style:      r.Style,
		Address:    r.Address,
		OpenHour:   r.OpenHour,
		CloseHour:  r.CloseHour,
		Vegetarian: r.Vegetarian,
	}
}

// Flag returns a pointer to v, for populating the optional flags.
func Flag(v bool) *bool { return &v }
