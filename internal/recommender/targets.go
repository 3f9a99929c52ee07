package recommender

import (
	"github.com/temcen/mealrec/pkg/models"
)

const (
	minBMR = 1200.0

	kcalPerGramProtein = 4.0
	kcalPerGramCarbs   = 4.0
	kcalPerGramFat     = 9.0

	minMealCount = 1
	maxMealCount = 6
)

var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivityLow:    1.2,
	models.ActivityMedium: 1.55,
	models.ActivityHigh:   1.725,
}

var goalFactors = map[models.Goal]float64{
	models.GoalWeightLoss: 0.85,
	models.GoalMuscleGain: 1.10,
	models.GoalMaintain:   1.0,
}

// macroSplit is the share of daily calories assigned to each macronutrient.
type macroSplit struct {
	protein, fat, carbs float64
}

var macroSplits = map[models.Goal]macroSplit{
	models.GoalWeightLoss: {protein: 0.30, fat: 0.35, carbs: 0.35},
	models.GoalMuscleGain: {protein: 0.25, fat: 0.30, carbs: 0.45},
	models.GoalMaintain:   {protein: 0.20, fat: 0.30, carbs: 0.50},
}

// SlotShare is a named meal slot and its share of the daily calories.
type SlotShare struct {
	Name  string
	Share float64
}

// Slot names.
const (
	SlotBreakfast      = "breakfast"
	SlotMorningSnack   = "morning-snack"
	SlotLunch          = "lunch"
	SlotAfternoonSnack = "afternoon-snack"
	SlotDinner         = "dinner"
	SlotEveningSnack   = "evening-snack"
	SlotSnack          = "snack"
)

var mealDistributions = map[int][]SlotShare{
	1: {{SlotLunch, 1.0}},
	2: {{SlotLunch, 0.45}, {SlotDinner, 0.55}},
	3: {{SlotBreakfast, 0.30}, {SlotLunch, 0.40}, {SlotDinner, 0.30}},
	4: {{SlotBreakfast, 0.25}, {SlotLunch, 0.30}, {SlotSnack, 0.20}, {SlotDinner, 0.25}},
	5: {
		{SlotBreakfast, 0.20}, {SlotMorningSnack, 0.15}, {SlotLunch, 0.25},
		{SlotAfternoonSnack, 0.15}, {SlotDinner, 0.25},
	},
	6: {
		{SlotBreakfast, 0.20}, {SlotMorningSnack, 0.10}, {SlotLunch, 0.25},
		{SlotAfternoonSnack, 0.10}, {SlotDinner, 0.25}, {SlotEveningSnack, 0.10},
	},
}

// ClampProfile returns a copy of the profile with numeric fields forced into
// their supported ranges. Enum fields are left alone; unknown values fall
// back to defaults where they are looked up.
func ClampProfile(p models.UserProfile) models.UserProfile {
	p.Age = clampInt(p.Age, 16, 100)
	p.HeightCM = clamp(p.HeightCM, 100, 250)
	p.WeightKG = clamp(p.WeightKG, 30, 250)
	p.MealCount = clampInt(p.MealCount, minMealCount, maxMealCount)
	return p
}

// BMR computes the basal metabolic rate with the Mifflin-St Jeor equation,
// floored at 1200 kcal. Any gender other than male uses the female formula.
func BMR(p models.UserProfile) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Gender == models.Male {
		bmr += 5
	} else {
		bmr -= 161
	}
	if bmr < minBMR {
		return minBMR
	}
	return bmr
}

// DailyTargets derives whole-day calorie and macro targets for a profile.
func DailyTargets(p models.UserProfile) models.NutritionTargets {
	p = ClampProfile(p)

	activity, ok := activityMultipliers[p.ActivityLevel]
	if !ok {
		activity = activityMultipliers[models.ActivityMedium]
	}
	factor, ok := goalFactors[p.Goal]
	if !ok {
		factor = goalFactors[models.GoalMaintain]
	}
	split, ok := macroSplits[p.Goal]
	if !ok {
		split = macroSplits[models.GoalMaintain]
	}

	calories := BMR(p) * activity * factor
	return models.NutritionTargets{
		Calories: calories,
		ProteinG: calories * split.protein / kcalPerGramProtein,
		FatG:     calories * split.fat / kcalPerGramFat,
		CarbsG:   calories * split.carbs / kcalPerGramCarbs,
	}
}

// PerMealTargets splits the daily targets evenly across the profile's meals.
// These are the targets individual items are scored against.
func PerMealTargets(p models.UserProfile) models.NutritionTargets {
	p = ClampProfile(p)
	return DailyTargets(p).Scale(1 / float64(p.MealCount))
}

// MealDistribution returns the slots used for a meal count and their share of
// the daily calories. Counts outside 1..6 are clamped.
func MealDistribution(mealCount int) []SlotShare {
	dist := mealDistributions[clampInt(mealCount, minMealCount, maxMealCount)]
	out := make([]SlotShare, len(dist))
	copy(out, dist)
	return out
}

// SlotsFor returns the slot names used for a meal count.
func SlotsFor(mealCount int) []string {
	dist := MealDistribution(mealCount)
	names := make([]string, len(dist))
	for i, s := range dist {
		names[i] = s.Name
	}
	return names
}

// SlotTargets returns the calorie target of every slot for a profile.
func SlotTargets(p models.UserProfile) []models.SlotTarget {
	daily := DailyTargets(p)
	dist := MealDistribution(p.MealCount)
	out := make([]models.SlotTarget, len(dist))
	for i, s := range dist {
		out[i] = models.SlotTarget{
			Name:     s.Name,
			Share:    s.Share,
			Calories: round1(daily.Calories * s.Share),
		}
	}
	return out
}

// TargetsFor returns the daily, per-meal and per-slot targets for a profile
// after clamping, rounded to one decimal.
func TargetsFor(profile models.UserProfile) *models.TargetsResponse {
	p := ClampProfile(profile)
	return &models.TargetsResponse{
		Daily:   RoundTargets(DailyTargets(p)),
		PerMeal: RoundTargets(PerMealTargets(p)),
		Slots:   SlotTargets(p),
	}
}
