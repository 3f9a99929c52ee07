package recommender

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/pkg/models"
)

// slotProfile describes which items suit a meal slot. Types and avoid-types
// are compared to the item type; keywords are searched in the item name.
type slotProfile struct {
	types     []string
	keywords  []string
	avoid     []string
	fallbacks []string
}

var slotProfiles = map[string]slotProfile{
	SlotBreakfast: {
		types:     []string{"샌드위치", "삼각김밥", "sandwich", "onigiri", "toast"},
		keywords:  []string{"아침", "샌드위치", "토스트", "간편", "breakfast", "sandwich", "toast"},
		avoid:     []string{"볶음밥", "초밥", "fried-rice", "sushi"},
		fallbacks: []string{"김밥", "롤/김밥", "gimbap"},
	},
	SlotLunch: {
		types:     []string{"도시락", "볶음밥", "김밥", "롤/김밥", "lunchbox", "fried-rice", "gimbap", "rice-bowl"},
		keywords:  []string{"점심", "밥", "덮밥", "정식", "볶음", "lunch", "rice", "bowl"},
		avoid:     []string{"샐러드", "스낵", "salad", "snack"},
		fallbacks: []string{"삼각김밥", "냉동식품", "onigiri", "frozen"},
	},
	SlotDinner: {
		types:     []string{"초밥", "샐러드", "냉동식품", "sushi", "salad", "frozen"},
		keywords:  []string{"저녁", "초밥", "샐러드", "냉동", "dinner", "sushi", "salad"},
		avoid:     []string{"삼각김밥", "스낵", "onigiri", "snack"},
		fallbacks: []string{"도시락", "김밥", "lunchbox", "gimbap"},
	},
	SlotSnack: {
		types:     []string{"스낵", "음료", "요거트", "과일", "snack", "drink", "yogurt", "fruit", "bar"},
		keywords:  []string{"간식", "스낵", "snack", "bar", "shake"},
		avoid:     []string{"도시락", "볶음밥", "정식", "lunchbox", "fried-rice"},
		fallbacks: []string{"샐러드", "샌드위치", "삼각김밥", "salad", "sandwich", "onigiri"},
	},
}

// slotMatcher is a slotProfile with its labels normalised.
type slotMatcher struct {
	types, avoid, fallbacks labelSet
	keywords                []string
}

func matcherFor(slot string) slotMatcher {
	prof, ok := slotProfiles[slot]
	if !ok && strings.HasSuffix(slot, SlotSnack) {
		prof = slotProfiles[SlotSnack]
	}
	return slotMatcher{
		types:     newLabelSet(prof.types...),
		avoid:     newLabelSet(prof.avoid...),
		fallbacks: newLabelSet(prof.fallbacks...),
		keywords:  normalizeAll(prof.keywords),
	}
}

// SlotPlan is one meal slot to fill, with its calorie and budget envelope.
type SlotPlan struct {
	Name          string
	CalorieTarget float64
	Budget        float64
}

// Plan returns the slot plan for a profile: one slot per meal with its share
// of the daily calories and the full per-meal budget.
func Plan(p models.UserProfile, daily models.NutritionTargets) []SlotPlan {
	dist := MealDistribution(p.MealCount)
	plan := make([]SlotPlan, len(dist))
	for i, s := range dist {
		plan[i] = SlotPlan{
			Name:          s.Name,
			CalorieTarget: daily.Calories * s.Share,
			Budget:        p.BudgetPerMeal,
		}
	}
	return plan
}

// AllocationResult holds the filled slots. Complete is false when at least
// one slot ended below the minimum item count.
type AllocationResult struct {
	Meals    []models.MealSlot
	Complete bool
}

type slotState struct {
	slot     models.MealSlot
	spent    float64
	calories float64
}

// Allocate distributes scored items over the planned slots. Every slot first
// draws from items that suit it, then slots still below the minimum are
// topped up from the best remaining items. No item is used twice and no slot
// exceeds its budget.
//
// With a nil rng the best items of each pool are taken in score order;
// otherwise the head of each pool is shuffled for variety.
func (r *Recommender) Allocate(items []models.ScoredItem, plan []SlotPlan, rng *rand.Rand) AllocationResult {
	ranked := rankItems(items)

	used := make(map[string]bool, len(ranked))
	states := make([]*slotState, len(plan))

	for i, sp := range plan {
		st := &slotState{slot: models.MealSlot{
			Name:          sp.Name,
			CalorieTarget: round1(sp.CalorieTarget),
			Budget:        sp.Budget,
			Items:         []models.ScoredItem{},
		}}
		states[i] = st

		pool := r.slotPool(ranked, used, matcherFor(sp.Name))
		for _, item := range r.selectionOrder(pool, rng) {
			if len(st.slot.Items) >= r.opts.TargetPerSlot {
				break
			}
			key := itemKey(item.FoodRecord)
			if !used[key] && r.accepts(st, sp, item) {
				st.add(item)
				used[key] = true
			}
		}
	}

	// Top up slots below the minimum from the global score order.
	complete := true
	for i, st := range states {
		for _, item := range ranked {
			if len(st.slot.Items) >= r.opts.MinPerSlot {
				break
			}
			key := itemKey(item.FoodRecord)
			if used[key] || st.spent+item.Price > plan[i].Budget {
				continue
			}
			st.add(item)
			used[key] = true
		}
		if len(st.slot.Items) < r.opts.MinPerSlot {
			complete = false
		}
	}

	meals := make([]models.MealSlot, len(states))
	for i, st := range states {
		meals[i] = st.slot
	}

	r.logger.WithFields(logrus.Fields{
		"slots":    len(plan),
		"items":    len(used),
		"complete": complete,
	}).Debug("Allocated items to meal slots")

	return AllocationResult{Meals: meals, Complete: complete}
}

// rankItems returns a copy of items by descending final score. Equal scores
// fall back to the record's baseline desirability, then to input order.
func rankItems(items []models.ScoredItem) []models.ScoredItem {
	ranked := make([]models.ScoredItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].FinalScore != ranked[j].FinalScore {
			return ranked[i].FinalScore > ranked[j].FinalScore
		}
		return ranked[i].Desirability() > ranked[j].Desirability()
	})
	return ranked
}

func (st *slotState) add(item models.ScoredItem) {
	st.slot.Items = append(st.slot.Items, item)
	st.spent += item.Price
	st.calories += item.Calories
}

// accepts enforces the slot budget always and the calorie ceiling once the
// slot holds its minimum number of items.
func (r *Recommender) accepts(st *slotState, sp SlotPlan, item models.ScoredItem) bool {
	if st.spent+item.Price > sp.Budget {
		return false
	}
	if len(st.slot.Items) < r.opts.MinPerSlot || sp.CalorieTarget <= 0 {
		return true
	}
	return st.calories+item.Calories <= r.opts.CalorieTolerance*sp.CalorieTarget
}

// slotPool returns unused items that suit the slot, in score order. Small
// pools are widened with the slot's fallback types and then with every
// unused item the slot does not avoid.
func (r *Recommender) slotPool(ranked []models.ScoredItem, used map[string]bool, m slotMatcher) []models.ScoredItem {
	var eligible []models.ScoredItem
	for _, item := range ranked {
		if used[itemKey(item.FoodRecord)] || m.avoid.has(normalizeLabel(item.Type)) {
			continue
		}
		eligible = append(eligible, item)
	}

	primary := func(item models.ScoredItem) bool {
		return m.types.has(normalizeLabel(item.Type)) ||
			containsKeyword([]string{normalizeLabel(item.Name)}, m.keywords)
	}
	withFallback := func(item models.ScoredItem) bool {
		return primary(item) || m.fallbacks.has(normalizeLabel(item.Type))
	}

	for _, match := range []func(models.ScoredItem) bool{primary, withFallback} {
		pool := selectItems(eligible, match)
		if len(pool) >= r.opts.MinPoolSize {
			return pool
		}
	}
	return eligible
}

func selectItems(items []models.ScoredItem, match func(models.ScoredItem) bool) []models.ScoredItem {
	var out []models.ScoredItem
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// selectionOrder returns the order in which pool items are offered to a
// slot. The head of the pool is shuffled when rng is set; the tail keeps
// score order.
func (r *Recommender) selectionOrder(pool []models.ScoredItem, rng *rand.Rand) []models.ScoredItem {
	if rng == nil || len(pool) < 2 {
		return pool
	}
	k := r.opts.HeadMultiplier * r.opts.TargetPerSlot
	if k > len(pool) {
		k = len(pool)
	}
	order := make([]models.ScoredItem, 0, len(pool))
	for _, idx := range rng.Perm(k) {
		order = append(order, pool[idx])
	}
	return append(order, pool[k:]...)
}

// fallback fills the slots with a uniform random sample of the allergy-safe
// catalog, ignoring score and budget. It returns no slots when nothing is
// safe to serve.
func (r *Recommender) fallback(safe []models.FoodRecord, plan []SlotPlan, p models.UserProfile, perMeal models.NutritionTargets, rng *rand.Rand) []models.MealSlot {
	unique := make([]models.FoodRecord, 0, len(safe))
	seen := make(map[string]bool, len(safe))
	for _, f := range safe {
		key := itemKey(f)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, f)
	}
	if len(unique) == 0 || len(plan) == 0 {
		return []models.MealSlot{}
	}

	n := len(plan) * r.opts.FallbackItemsPerMeal
	if n > len(unique) {
		n = len(unique)
	}
	sample := make([]models.FoodRecord, n)
	if rng == nil {
		copy(sample, unique[:n])
	} else {
		for i, idx := range rng.Perm(len(unique))[:n] {
			sample[i] = unique[idx]
		}
	}

	items := Boost(Score(sample, perMeal, p.Goal), p.Preferences)
	meals := make([]models.MealSlot, len(plan))
	for i, sp := range plan {
		meals[i] = models.MealSlot{
			Name:          sp.Name,
			CalorieTarget: round1(sp.CalorieTarget),
			Budget:        sp.Budget,
			Items:         []models.ScoredItem{},
		}
	}
	for i, item := range items {
		slot := &meals[i%len(meals)]
		slot.Items = append(slot.Items, item)
	}
	return meals
}

// itemKey identifies a record for de-duplication. Records without an id are
// identified by name.
func itemKey(f models.FoodRecord) string {
	if f.ID != "" {
		return f.ID
	}
	return "name:" + f.Name
}
