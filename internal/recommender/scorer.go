package recommender

import (
	"math"

	"github.com/temcen/mealrec/pkg/models"
)

// scoreWeights are the calorie and protein weights of the nutrition score.
// Each pair sums to 1.
type scoreWeights struct {
	calorie, protein float64
}

var goalScoreWeights = map[models.Goal]scoreWeights{
	models.GoalWeightLoss: {calorie: 0.4, protein: 0.6},
	models.GoalMuscleGain: {calorie: 0.3, protein: 0.7},
	models.GoalMaintain:   {calorie: 0.6, protein: 0.4},
}

// Score annotates each record with a nutrition score in [0,1] measuring how
// close it is to the per-meal targets. The input is not modified.
func Score(records []models.FoodRecord, perMeal models.NutritionTargets, goal models.Goal) []models.ScoredItem {
	weights, ok := goalScoreWeights[goal]
	if !ok {
		weights = goalScoreWeights[models.GoalMaintain]
	}

	items := make([]models.ScoredItem, len(records))
	for i, f := range records {
		score := weights.calorie*calorieScore(f.Calories, perMeal.Calories) +
			weights.protein*proteinScore(f.Protein, perMeal.ProteinG)
		score = clamp(score, 0, 1)
		items[i] = models.ScoredItem{
			FoodRecord:     f,
			NutritionScore: score,
			FinalScore:     score,
		}
	}
	return items
}

func calorieScore(calories, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return clamp(1-math.Abs(calories-target)/target, 0, 1)
}

func proteinScore(protein, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return clamp(protein/target, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
