package models

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"
)

type Goal string

const (
	GoalWeightLoss Goal = "weight-loss"
	GoalMuscleGain Goal = "muscle-gain"
	GoalMaintain   Goal = "maintain"
)

// Budget periods accepted from callers. The recommender itself only works
// with a per-meal budget.
const (
	BudgetPerMeal = "meal"
	BudgetPerDay  = "day"
	BudgetPerWeek = "week"
)

// UserProfile is the input of one recommendation run.
type UserProfile struct {
	Gender              Gender        `json:"gender" validate:"required,oneof=male female"`
	Age                 int           `json:"age" validate:"min=16,max=100"`
	HeightCM            float64       `json:"height_cm" validate:"min=100,max=250"`
	WeightKG            float64       `json:"weight_kg" validate:"min=30,max=250"`
	ActivityLevel       ActivityLevel `json:"activity_level" validate:"required,oneof=low medium high"`
	Goal                Goal          `json:"goal" validate:"required,oneof=weight-loss muscle-gain maintain"`
	MealCount           int           `json:"meal_count" validate:"min=1,max=6"`
	Allergies           []string      `json:"allergies,omitempty" validate:"max=7"`
	Preferences         []string      `json:"preferences,omitempty" validate:"max=5"`
	MedicalConditions   []string      `json:"medical_conditions,omitempty" validate:"max=5"`
	DietaryRestrictions []string      `json:"dietary_restrictions,omitempty" validate:"max=5"`
	BudgetPerMeal       float64       `json:"budget_per_meal" validate:"gt=0,max=1000000"`
}

// RecommendationRequest is the API/CLI shape of a profile. Budget may be
// given per meal, per day or per week.
type RecommendationRequest struct {
	Gender              Gender        `json:"gender" validate:"required,oneof=male female"`
	Age                 int           `json:"age" validate:"min=16,max=100"`
	HeightCM            float64       `json:"height_cm" validate:"min=100,max=250"`
	WeightKG            float64       `json:"weight_kg" validate:"min=30,max=250"`
	ActivityLevel       ActivityLevel `json:"activity_level" validate:"required,oneof=low medium high"`
	Goal                Goal          `json:"goal" validate:"required,oneof=weight-loss muscle-gain maintain"`
	MealCount           int           `json:"meal_count" validate:"min=1,max=6"`
	Allergies           []string      `json:"allergies,omitempty" validate:"max=7"`
	Preferences         []string      `json:"preferences,omitempty" validate:"max=5"`
	MedicalConditions   []string      `json:"medical_conditions,omitempty" validate:"max=5"`
	DietaryRestrictions []string      `json:"dietary_restrictions,omitempty" validate:"max=5"`
	Budget              float64       `json:"budget" validate:"gt=0"`
	BudgetPeriod        string        `json:"budget_period,omitempty" validate:"omitempty,oneof=meal day week"`
}

// Profile converts the request into a profile with a per-meal budget.
func (r *RecommendationRequest) Profile() *UserProfile {
	return &UserProfile{
		Gender:              r.Gender,
		Age:                 r.Age,
		HeightCM:            r.HeightCM,
		WeightKG:            r.WeightKG,
		ActivityLevel:       r.ActivityLevel,
		Goal:                r.Goal,
		MealCount:           r.MealCount,
		Allergies:           r.Allergies,
		Preferences:         r.Preferences,
		MedicalConditions:   r.MedicalConditions,
		DietaryRestrictions: r.DietaryRestrictions,
		BudgetPerMeal:       NormalizeBudget(r.Budget, r.BudgetPeriod, r.MealCount),
	}
}

// NormalizeBudget converts a budget for the given period into a per-meal
// amount. Unknown periods are treated as per meal.
func NormalizeBudget(amount float64, period string, mealCount int) float64 {
	if mealCount < 1 {
		mealCount = 1
	}
	switch period {
	case BudgetPerDay:
		return amount / float64(mealCount)
	case BudgetPerWeek:
		return amount / float64(7*mealCount)
	default:
		return amount
	}
}

// TargetsRequest is the body of the targets endpoint. It carries only the
// fields that affect nutrition targets.
type TargetsRequest struct {
	Gender        Gender        `json:"gender" validate:"required,oneof=male female"`
	Age           int           `json:"age" validate:"min=16,max=100"`
	HeightCM      float64       `json:"height_cm" validate:"min=100,max=250"`
	WeightKG      float64       `json:"weight_kg" validate:"min=30,max=250"`
	ActivityLevel ActivityLevel `json:"activity_level" validate:"required,oneof=low medium high"`
	Goal          Goal          `json:"goal" validate:"required,oneof=weight-loss muscle-gain maintain"`
	MealCount     int           `json:"meal_count" validate:"min=1,max=6"`
}

func (r *TargetsRequest) Profile() *UserProfile {
	return &UserProfile{
		Gender:        r.Gender,
		Age:           r.Age,
		HeightCM:      r.HeightCM,
		WeightKG:      r.WeightKG,
		ActivityLevel: r.ActivityLevel,
		Goal:          r.Goal,
		MealCount:     r.MealCount,
	}
}
