package recommender

import (
	"github.com/temcen/mealrec/pkg/models"
)

// Boost adds the bonus of every matching preference to each item and sets
// its final score to nutrition score plus bonus, clamped to [0,1]. Unknown
// preferences are ignored. The input is not modified.
func Boost(items []models.ScoredItem, preferences []string) []models.ScoredItem {
	var bonuses []*PreferenceBonus
	seen := make(map[string]bool)
	for _, name := range preferences {
		b, ok := preferenceIndex.lookup(name)
		if !ok || seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		bonuses = append(bonuses, b)
	}

	out := make([]models.ScoredItem, len(items))
	for i, item := range items {
		tags := normalizeAll(item.Tags)
		types := normalizeAll([]string{item.Type, item.Category})

		bonus := 0.0
		for _, b := range bonuses {
			if matchesPreference(b, tags, types) {
				bonus += b.Bonus
			}
		}
		item.PreferenceBonus = bonus
		item.FinalScore = clamp(item.NutritionScore+bonus, 0, 1)
		item.Reasons = MatchReasons(item.FoodRecord)
		out[i] = item
	}
	return out
}

func matchesPreference(b *PreferenceBonus, tags, types []string) bool {
	if len(b.Tags) > 0 && containsKeyword(tags, normalizeAll(b.Tags)) {
		return true
	}
	return len(b.Types) > 0 && newLabelSet(b.Types...).intersects(types)
}

const maxReasons = 3

// Reason labels attached to recommended items.
const (
	ReasonHighProtein = "high protein"
	ReasonLowCalorie  = "low calorie"
	ReasonLowSodium   = "low sodium"
	ReasonDiet        = "diet friendly"
	ReasonConvenient  = "convenient"
	ReasonBalanced    = "balanced nutrition"
)

var (
	dietTags         = []string{"diet", "low-calorie", "다이어트", "저칼로리", "체중감량"}
	convenienceTypes = []string{"lunchbox", "instant-rice", "convenience", "도시락", "즉석밥", "간편식"}
)

// MatchReasons explains in a few words why an item is a good pick: at most
// three reasons, or "balanced nutrition" when nothing stands out.
func MatchReasons(f models.FoodRecord) []string {
	var reasons []string
	add := func(r string) {
		if len(reasons) < maxReasons {
			reasons = append(reasons, r)
		}
	}

	if f.Protein >= 25 {
		add(ReasonHighProtein)
	}
	if f.Calories > 0 && f.Calories <= 400 {
		add(ReasonLowCalorie)
	}
	if f.Sodium > 0 && f.Sodium <= 800 {
		add(ReasonLowSodium)
	}
	if containsKeyword(normalizeAll(f.Tags), normalizeAll(dietTags)) {
		add(ReasonDiet)
	}
	if newLabelSet(convenienceTypes...).intersects(normalizeAll([]string{f.Type})) {
		add(ReasonConvenient)
	}

	if len(reasons) == 0 {
		return []string{ReasonBalanced}
	}
	return reasons
}
