package models

import "math"

// FoodRecord is a single catalog entry. Records are created once when the
// catalog is loaded and must not be mutated afterwards.
type FoodRecord struct {
	ID        string   `json:"id" db:"id"`
	Name      string   `json:"name" db:"name"`
	Brand     string   `json:"brand,omitempty" db:"brand"`
	Category  string   `json:"category,omitempty" db:"category"`
	Type      string   `json:"type,omitempty" db:"type"`
	Calories  float64  `json:"calories" db:"calories"`
	Protein   float64  `json:"protein" db:"protein"`
	Fat       float64  `json:"fat" db:"fat"`
	Carbs     float64  `json:"carbs" db:"carbs"`
	Sodium    float64  `json:"sodium,omitempty" db:"sodium"` // mg
	Sugar     float64  `json:"sugar,omitempty" db:"sugar"`   // g
	Fiber     float64  `json:"fiber,omitempty" db:"fiber"`   // g
	Price     float64  `json:"price" db:"price"`
	Tags      []string `json:"tags" db:"tags"`
	Allergens []string `json:"allergies,omitempty" db:"allergens"`
	Score     *float64 `json:"score,omitempty" db:"score"`
}

// Desirability returns the baseline score in [0,1]. Records without an
// explicit score get the protein share of their calories.
func (f FoodRecord) Desirability() float64 {
	if f.Score != nil {
		return math.Max(0, math.Min(1, *f.Score))
	}
	if f.Calories <= 0 {
		return 0.5
	}
	return math.Max(0, math.Min(1, f.Protein*4/f.Calories))
}

// FoodListResponse is returned by the catalog listing endpoint.
type FoodListResponse struct {
	Foods  []FoodRecord `json:"foods"`
	Total  int          `json:"total"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
}
