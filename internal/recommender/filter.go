package recommender

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/pkg/models"
)

// Names of the relaxable filter steps, as reported in FilterResult.Relaxed.
const (
	StepBudget  = "budget"
	StepMedical = "medical"
	StepDietary = "dietary"
)

// FilterResult is the outcome of the constraint filter.
type FilterResult struct {
	// Candidates survived every step that was applied.
	Candidates []models.FoodRecord
	// AllergySafe is the catalog after the allergy step only. The fallback
	// path samples from it.
	AllergySafe []models.FoodRecord
	// Relaxed lists the steps that were discarded because they would have
	// removed every remaining record.
	Relaxed []string
	// NeedsFallback is set when too few candidates survived to build meals.
	NeedsFallback bool
}

type filterStep struct {
	name  string
	apply func([]models.FoodRecord) []models.FoodRecord
}

// Filter applies the allergy, budget, medical and dietary constraints in
// that order. The catalog is never modified; every step returns a new slice.
//
// The allergy step is always honoured. Any later step that would leave no
// records is skipped and reported in Relaxed.
func (r *Recommender) Filter(catalog []models.FoodRecord, p models.UserProfile) FilterResult {
	safe := filterAllergies(catalog, p.Allergies)
	result := FilterResult{AllergySafe: safe}

	steps := []filterStep{
		{StepBudget, func(in []models.FoodRecord) []models.FoodRecord { return filterBudget(in, p.BudgetPerMeal) }},
		{StepMedical, func(in []models.FoodRecord) []models.FoodRecord { return filterMedical(in, p.MedicalConditions) }},
		{StepDietary, func(in []models.FoodRecord) []models.FoodRecord { return filterDietary(in, p.DietaryRestrictions) }},
	}

	current := safe
	for _, step := range steps {
		if len(current) == 0 {
			break
		}
		next := step.apply(current)
		if len(next) == 0 {
			r.logger.WithFields(logrus.Fields{
				"step":       step.name,
				"candidates": len(current),
			}).Debug("Filter step would remove every candidate, skipping it")
			result.Relaxed = append(result.Relaxed, step.name)
			continue
		}
		current = next
	}

	result.Candidates = current
	result.NeedsFallback = len(current) < r.opts.MinViableCandidates

	r.logger.WithFields(logrus.Fields{
		"catalog":        len(catalog),
		"allergy_safe":   len(safe),
		"candidates":     len(current),
		"relaxed":        result.Relaxed,
		"needs_fallback": result.NeedsFallback,
	}).Debug("Constraint filter finished")

	return result
}

// IsAllergySafe reports whether a record carries none of the given allergies
// in its allergen labels or tags.
func IsAllergySafe(f models.FoodRecord, allergies []string) bool {
	return !containsForbidden(allergenLabels(f), allergyKeywordList(allergies))
}

func allergenLabels(f models.FoodRecord) []string {
	return append(normalizeAll(f.Allergens), normalizeAll(f.Tags)...)
}

func allergyKeywordList(allergies []string) []string {
	var keywords []string
	for _, a := range allergies {
		keywords = append(keywords, allergyVariants(a)...)
	}
	return keywords
}

func filterAllergies(in []models.FoodRecord, allergies []string) []models.FoodRecord {
	keywords := allergyKeywordList(allergies)
	out := make([]models.FoodRecord, 0, len(in))
	for _, f := range in {
		if len(keywords) > 0 && containsForbidden(allergenLabels(f), keywords) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func filterBudget(in []models.FoodRecord, budget float64) []models.FoodRecord {
	out := make([]models.FoodRecord, 0, len(in))
	for _, f := range in {
		if f.Price <= budget {
			out = append(out, f)
		}
	}
	return out
}

// filterMedical drops records that break any declared condition and moves
// records carrying a recommended label to the front, keeping relative order.
func filterMedical(in []models.FoodRecord, conditions []string) []models.FoodRecord {
	var rules []*ConditionRule
	for _, c := range conditions {
		if rule, ok := conditionIndex.lookup(c); ok {
			rules = append(rules, rule)
		}
	}
	if len(rules) == 0 {
		return append([]models.FoodRecord(nil), in...)
	}

	var preferred, rest []models.FoodRecord
	for _, f := range in {
		labels := recordLabels(f)
		values := nutrientValues{sodium: f.Sodium, sugar: f.Sugar, fat: f.Fat, calories: f.Calories}

		allowed, recommended := true, false
		for _, rule := range rules {
			if containsForbidden(labels, normalizeAll(rule.Forbidden)) {
				allowed = false
				break
			}
			for _, limit := range rule.Limits {
				if limit.exceeded(values) {
					allowed = false
					break
				}
			}
			if !allowed {
				break
			}
			if containsKeyword(labels, normalizeAll(rule.Recommended)) {
				recommended = true
			}
		}
		switch {
		case !allowed:
		case recommended:
			preferred = append(preferred, f)
		default:
			rest = append(rest, f)
		}
	}
	return append(preferred, rest...)
}

// filterDietary drops records with forbidden labels, then narrows to the
// allow-list of each restriction when at least one record matches it. A
// negated label such as "gluten-free" does not count as forbidden.
func filterDietary(in []models.FoodRecord, restrictions []string) []models.FoodRecord {
	out := append([]models.FoodRecord(nil), in...)
	for _, name := range restrictions {
		rule, ok := restrictionIndex.lookup(name)
		if !ok {
			continue
		}
		forbidden := normalizeAll(rule.Forbidden)
		kept := out[:0:0]
		for _, f := range out {
			if !containsForbidden(recordLabels(f), forbidden) {
				kept = append(kept, f)
			}
		}
		out = kept

		if len(rule.AllowList) == 0 {
			continue
		}
		allow := normalizeAll(rule.AllowList)
		var narrowed []models.FoodRecord
		for _, f := range out {
			if containsKeyword(recordLabels(f), allow) {
				narrowed = append(narrowed, f)
			}
		}
		if len(narrowed) > 0 {
			out = narrowed
		}
	}
	return out
}
