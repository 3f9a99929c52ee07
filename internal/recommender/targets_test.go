package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/mealrec/pkg/models"
)

func TestDailyTargets(t *testing.T) {
	tests := []struct {
		name     string
		profile  models.UserProfile
		calories float64
		protein  float64
		fat      float64
		carbs    float64
	}{
		{
			name:     "male weight loss medium activity",
			profile:  *baseProfile(),
			calories: 2238.103,
			protein:  167.858,
			fat:      87.037,
			carbs:    195.834,
		},
		{
			name: "female maintain low activity",
			profile: models.UserProfile{
				Gender: models.Female, Age: 25, HeightCM: 160, WeightKG: 50,
				ActivityLevel: models.ActivityLow, Goal: models.GoalMaintain, MealCount: 3,
			},
			calories: 1456.8,
			protein:  72.84,
			fat:      48.56,
			carbs:    182.1,
		},
		{
			name: "bmr floor applies",
			profile: models.UserProfile{
				Gender: models.Female, Age: 100, HeightCM: 100, WeightKG: 30,
				ActivityLevel: models.ActivityLow, Goal: models.GoalMaintain, MealCount: 3,
			},
			calories: 1440,
			protein:  72,
			fat:      48,
			carbs:    180,
		},
		{
			name: "unknown activity and goal use defaults",
			profile: models.UserProfile{
				Gender: models.Male, Age: 30, HeightCM: 175, WeightKG: 75,
				ActivityLevel: "extreme", Goal: "bulk", MealCount: 3,
			},
			calories: 2633.063,
			protein:  131.653,
			fat:      87.769,
			carbs:    329.133,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyTargets(tt.profile)
			assert.InDelta(t, tt.calories, got.Calories, 0.01)
			assert.InDelta(t, tt.protein, got.ProteinG, 0.01)
			assert.InDelta(t, tt.fat, got.FatG, 0.01)
			assert.InDelta(t, tt.carbs, got.CarbsG, 0.01)
		})
	}
}

func TestDailyTargets_Idempotent(t *testing.T) {
	profile := *baseProfile()
	profile.Allergies = []string{"egg"}

	assert.Equal(t, DailyTargets(profile), DailyTargets(profile))
	assert.Equal(t, PerMealTargets(profile), PerMealTargets(profile))
}

func TestPerMealTargets(t *testing.T) {
	profile := *baseProfile()
	daily := DailyTargets(profile)
	perMeal := PerMealTargets(profile)

	assert.InDelta(t, daily.Calories/3, perMeal.Calories, 0.001)
	assert.InDelta(t, daily.ProteinG/3, perMeal.ProteinG, 0.001)

	profile.MealCount = 0
	assert.InDelta(t, daily.Calories, PerMealTargets(profile).Calories, 0.001)
}

func TestBMR_GenderFormula(t *testing.T) {
	profile := models.UserProfile{Age: 30, HeightCM: 175, WeightKG: 75}

	profile.Gender = models.Male
	assert.InDelta(t, 1698.75, BMR(profile), 0.001)

	profile.Gender = models.Female
	assert.InDelta(t, 1532.75, BMR(profile), 0.001)
}

func TestClampProfile(t *testing.T) {
	in := models.UserProfile{Age: 5, HeightCM: 400, WeightKG: 10, MealCount: 9, Goal: "bulk"}
	out := ClampProfile(in)

	assert.Equal(t, 16, out.Age)
	assert.Equal(t, 250.0, out.HeightCM)
	assert.Equal(t, 30.0, out.WeightKG)
	assert.Equal(t, 6, out.MealCount)
	assert.Equal(t, models.Goal("bulk"), out.Goal)
	assert.Equal(t, 5, in.Age)
}

func TestMealDistribution(t *testing.T) {
	for n := 1; n <= 6; n++ {
		dist := MealDistribution(n)
		require.Len(t, dist, n)

		sum := 0.0
		for _, s := range dist {
			sum += s.Share
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "shares for %d meals", n)
	}

	assert.Equal(t, []string{SlotBreakfast, SlotLunch, SlotDinner}, SlotsFor(3))
	assert.Equal(t, []string{SlotLunch}, SlotsFor(0))
	assert.Len(t, SlotsFor(10), 6)
}

func TestMealDistribution_ReturnsCopy(t *testing.T) {
	dist := MealDistribution(3)
	dist[0].Share = 0

	assert.Equal(t, 0.30, MealDistribution(3)[0].Share)
}

func TestSlotTargets(t *testing.T) {
	profile := *baseProfile()
	slots := SlotTargets(profile)

	require.Len(t, slots, 3)
	assert.Equal(t, SlotLunch, slots[1].Name)
	assert.Equal(t, 0.40, slots[1].Share)
	assert.InDelta(t, 895.2, slots[1].Calories, 0.05)
}

func TestTargetsFor(t *testing.T) {
	profile := *baseProfile()
	profile.Age = 3

	targets := TargetsFor(profile)

	clamped := ClampProfile(profile)
	assert.Equal(t, RoundTargets(DailyTargets(clamped)), targets.Daily)
	assert.Equal(t, RoundTargets(PerMealTargets(clamped)), targets.PerMeal)
	assert.Len(t, targets.Slots, 3)
}
