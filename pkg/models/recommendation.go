package models

import (
	"time"

	"github.com/google/uuid"
)

// NutritionTargets holds calorie and macro targets, either for a whole day
// or for a single meal.
type NutritionTargets struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
}

// Scale returns the targets multiplied by f.
func (t NutritionTargets) Scale(f float64) NutritionTargets {
	return NutritionTargets{
		Calories: t.Calories * f,
		ProteinG: t.ProteinG * f,
		FatG:     t.FatG * f,
		CarbsG:   t.CarbsG * f,
	}
}

type ScoredItem struct {
	FoodRecord
	NutritionScore  float64  `json:"nutrition_score"`
	PreferenceBonus float64  `json:"preference_bonus"`
	FinalScore      float64  `json:"final_score"`
	Reasons         []string `json:"reasons,omitempty"`
}

type MealSlot struct {
	Name          string       `json:"name"`
	CalorieTarget float64      `json:"calorie_target"`
	Budget        float64      `json:"budget"`
	Items         []ScoredItem `json:"items"`
}

type MacroSummary struct {
	Target float64 `json:"target"`
	Actual float64 `json:"actual"`
}

type NutritionSummary struct {
	Calories     MacroSummary `json:"calories"`
	Protein      MacroSummary `json:"protein"`
	Fat          MacroSummary `json:"fat"`
	Carbs        MacroSummary `json:"carbs"`
	Budget       MacroSummary `json:"budget"`
	Allergy      bool         `json:"allergy"`
	AverageScore float64      `json:"average_score"`
	ItemCount    int          `json:"item_count"`
}

// Recommendation is the result of one run. Fallback marks results that could
// not honour every constraint; callers should treat it as advisory.
type Recommendation struct {
	Meals    []MealSlot       `json:"meals"`
	Summary  NutritionSummary `json:"summary"`
	Targets  NutritionTargets `json:"targets"`
	Fallback bool             `json:"fallback"`
	Relaxed  []string         `json:"relaxed_constraints,omitempty"`
}

// Items flattens the meal slots in slot order.
func (r *Recommendation) Items() []ScoredItem {
	var items []ScoredItem
	for _, slot := range r.Meals {
		items = append(items, slot.Items...)
	}
	return items
}

type RecommendationResponse struct {
	ID             uuid.UUID       `json:"id"`
	Recommendation *Recommendation `json:"recommendation"`
	GeneratedAt    time.Time       `json:"generated_at"`
	CacheHit       bool            `json:"cache_hit"`
}

type TargetsResponse struct {
	Daily   NutritionTargets `json:"daily"`
	PerMeal NutritionTargets `json:"per_meal"`
	Slots   []SlotTarget     `json:"slots"`
}

type SlotTarget struct {
	Name     string  `json:"name"`
	Share    float64 `json:"share"`
	Calories float64 `json:"calories"`
}
