package recommender

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/temcen/mealrec/pkg/models"
)

// Summarize compares the selected items against the whole-day targets and
// the total budget envelope. Values are rounded to one decimal.
func Summarize(meals []models.MealSlot, daily models.NutritionTargets, budgetPerMeal float64, mealCount int, hasAllergy bool) models.NutritionSummary {
	var calories, protein, fat, carbs, prices, scores []float64
	for _, slot := range meals {
		for _, item := range slot.Items {
			calories = append(calories, item.Calories)
			protein = append(protein, item.Protein)
			fat = append(fat, item.Fat)
			carbs = append(carbs, item.Carbs)
			prices = append(prices, item.Price)
			scores = append(scores, item.FinalScore)
		}
	}

	summary := models.NutritionSummary{
		Calories:  macro(daily.Calories, calories),
		Protein:   macro(daily.ProteinG, protein),
		Fat:       macro(daily.FatG, fat),
		Carbs:     macro(daily.CarbsG, carbs),
		Budget:    macro(budgetPerMeal*float64(clampInt(mealCount, minMealCount, maxMealCount)), prices),
		Allergy:   hasAllergy,
		ItemCount: len(scores),
	}
	if len(scores) > 0 {
		summary.AverageScore = math.Round(stat.Mean(scores, nil)*100) / 100
	}
	return summary
}

func macro(target float64, values []float64) models.MacroSummary {
	return models.MacroSummary{
		Target: round1(target),
		Actual: round1(floats.Sum(values)),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
