package recommender

// Rule tables for the constraint filter and the preference booster. Names
// are matched case-insensitively against any alias, so both the English and
// Korean labels used by catalogs resolve to the same rule.

// allergyKeywords maps an allergy category to label variants that indicate it.
var allergyKeywords = []struct {
	aliases  []string
	keywords []string
}{
	{[]string{"egg", "eggs", "계란", "달걀"}, []string{"egg", "계란", "달걀", "에그"}},
	{[]string{"dairy", "milk", "유제품", "우유"}, []string{"dairy", "milk", "cheese", "butter", "cream", "yogurt", "유제품", "우유", "치즈", "버터", "크림", "요구르트"}},
	{[]string{"nuts", "tree nuts", "견과류"}, []string{"nut", "almond", "walnut", "견과", "호두", "아몬드"}},
	{[]string{"peanut", "peanuts", "땅콩"}, []string{"peanut", "땅콩"}},
	{[]string{"shellfish", "crustacean", "갑각류"}, []string{"shellfish", "shrimp", "crab", "lobster", "crustacean", "갑각류", "새우", "게", "꽃게", "대게", "랍스터", "가재"}},
	{[]string{"fish", "생선", "어류"}, []string{"fish", "tuna", "salmon", "mackerel", "생선", "어류", "참치", "연어", "고등어"}},
	{[]string{"soy", "soybean", "대두", "콩"}, []string{"soy", "tofu", "대두", "콩", "검은콩", "두부", "된장", "간장"}},
	{[]string{"wheat", "gluten", "밀", "밀가루"}, []string{"wheat", "gluten", "밀", "밀가루", "통밀", "우리밀"}},
	{[]string{"sesame", "참깨"}, []string{"sesame", "참깨"}},
}

// allergyVariants returns the normalised keyword list for a declared
// allergy. Unknown allergies match on their own label.
func allergyVariants(allergy string) []string {
	key := normalizeLabel(allergy)
	if key == "" {
		return nil
	}
	for _, entry := range allergyKeywords {
		if newLabelSet(entry.aliases...).has(key) {
			return append(normalizeAll(entry.keywords), key)
		}
	}
	return []string{key}
}

// NutrientLimit caps a nutrient per serving.
type NutrientLimit struct {
	Nutrient string
	Max      float64
}

func (l NutrientLimit) exceeded(v nutrientValues) bool {
	switch l.Nutrient {
	case "sodium":
		return v.sodium > l.Max
	case "sugar":
		return v.sugar > l.Max
	case "fat":
		return v.fat > l.Max
	case "calories":
		return v.calories > l.Max
	}
	return false
}

type nutrientValues struct {
	sodium, sugar, fat, calories float64
}

// ConditionRule describes how a medical condition constrains the catalog.
type ConditionRule struct {
	Name        string
	Aliases     []string
	Forbidden   []string
	Recommended []string
	Limits      []NutrientLimit
}

var conditionRules = []ConditionRule{
	{
		Name:        "hypertension",
		Aliases:     []string{"hypertension", "high blood pressure", "고혈압"},
		Forbidden:   []string{"high-sodium", "고나트륨", "짠맛"},
		Recommended: []string{"low-sodium", "저염식", "저염"},
		Limits:      []NutrientLimit{{Nutrient: "sodium", Max: 1000}},
	},
	{
		Name:        "diabetes",
		Aliases:     []string{"diabetes", "당뇨", "당뇨병"},
		Forbidden:   []string{"high-sugar", "dessert", "고당", "디저트"},
		Recommended: []string{"low-sugar", "저당", "저당식", "high-fiber", "고식이섬유"},
		Limits:      []NutrientLimit{{Nutrient: "sugar", Max: 10}},
	},
	{
		Name:        "hyperlipidemia",
		Aliases:     []string{"hyperlipidemia", "high cholesterol", "고지혈증"},
		Forbidden:   []string{"fried", "high-fat", "튀김", "고지방"},
		Recommended: []string{"low-fat", "저지방", "저지방식"},
		Limits:      []NutrientLimit{{Nutrient: "fat", Max: 20}},
	},
	{
		Name:        "kidney-disease",
		Aliases:     []string{"kidney-disease", "kidney disease", "신장질환"},
		Forbidden:   []string{"high-sodium", "고나트륨"},
		Recommended: []string{"low-sodium", "저염식"},
		Limits:      []NutrientLimit{{Nutrient: "sodium", Max: 800}},
	},
	{
		Name:        "heart-disease",
		Aliases:     []string{"heart-disease", "heart disease", "심장질환"},
		Forbidden:   []string{"high-sodium", "fried", "고나트륨", "튀김"},
		Recommended: []string{"low-sodium", "low-fat", "저염식", "저지방"},
		Limits:      []NutrientLimit{{Nutrient: "sodium", Max: 1000}, {Nutrient: "fat", Max: 25}},
	},
	{
		Name:        "gastrointestinal",
		Aliases:     []string{"gastrointestinal", "gastric", "위장질환"},
		Forbidden:   []string{"spicy", "fried", "매운맛", "튀김"},
		Recommended: []string{"mild", "순한맛"},
	},
}

// RestrictionRule describes a dietary restriction. A non-empty AllowList
// narrows the candidates to matching records when at least one matches.
type RestrictionRule struct {
	Name      string
	Aliases   []string
	Forbidden []string
	AllowList []string
}

var restrictionRules = []RestrictionRule{
	{
		Name:      "vegetarian",
		Aliases:   []string{"vegetarian", "채식", "채식주의"},
		Forbidden: []string{"meat", "beef", "pork", "chicken", "duck", "육류", "고기", "소고기", "돼지고기", "닭고기", "오리"},
	},
	{
		Name:      "vegan",
		Aliases:   []string{"vegan", "비건"},
		Forbidden: []string{"meat", "beef", "pork", "chicken", "duck", "fish", "seafood", "egg", "dairy", "육류", "고기", "소고기", "돼지고기", "닭고기", "생선", "해산물", "계란", "유제품"},
		AllowList: []string{"vegan", "비건"},
	},
	{
		Name:      "halal",
		Aliases:   []string{"halal", "할랄"},
		Forbidden: []string{"pork", "alcohol", "돼지고기", "주류"},
		AllowList: []string{"halal", "할랄"},
	},
	{
		Name:      "gluten-free",
		Aliases:   []string{"gluten-free", "gluten free", "글루텐프리"},
		Forbidden: []string{"gluten", "wheat", "밀", "밀가루"},
		AllowList: []string{"gluten-free", "글루텐프리"},
	},
	{
		Name:      "low-sodium",
		Aliases:   []string{"low-sodium", "low sodium", "저염식"},
		Forbidden: []string{"high-sodium", "고나트륨"},
		AllowList: []string{"low-sodium", "저염식", "저염"},
	},
	{
		Name:      "low-sugar",
		Aliases:   []string{"low-sugar", "low sugar", "저당식"},
		Forbidden: []string{"high-sugar", "dessert", "고당", "디저트"},
		AllowList: []string{"low-sugar", "저당", "저당식"},
	},
	{
		Name:      "low-fat",
		Aliases:   []string{"low-fat", "low fat", "저지방식"},
		Forbidden: []string{"fried", "high-fat", "튀김", "고지방"},
		AllowList: []string{"low-fat", "저지방", "저지방식"},
	},
	{
		Name:      "dairy-free",
		Aliases:   []string{"dairy-free", "dairy free", "무유제품"},
		Forbidden: []string{"dairy", "milk", "cheese", "유제품", "우유", "치즈"},
		AllowList: []string{"dairy-free", "non-dairy", "무유제품"},
	},
	{
		Name:      "keto",
		Aliases:   []string{"keto", "키토"},
		Forbidden: []string{"high-carb", "고탄수화물"},
		AllowList: []string{"keto", "키토", "low-carb", "저탄수화물"},
	},
}

// PreferenceBonus adds score to records matching a declared preference.
// Tags are matched against record tags, Types against type and category.
type PreferenceBonus struct {
	Name    string
	Aliases []string
	Tags    []string
	Types   []string
	Bonus   float64
}

var preferenceBonuses = []PreferenceBonus{
	{Name: "high-protein", Aliases: []string{"high-protein", "protein", "단백질 위주", "고단백"}, Tags: []string{"high-protein", "고단백"}, Bonus: 0.2},
	{Name: "convenience", Aliases: []string{"convenience", "간편식"}, Types: []string{"lunchbox", "instant-rice", "convenience", "도시락", "즉석밥", "간편식"}, Bonus: 0.15},
	{Name: "low-sodium", Aliases: []string{"low-sodium", "저염식"}, Tags: []string{"low-sodium", "저염식"}, Bonus: 0.2},
	{Name: "low-calorie", Aliases: []string{"low-calorie", "diet", "저칼로리", "다이어트"}, Tags: []string{"low-calorie", "diet", "저칼로리", "다이어트", "체중감량"}, Bonus: 0.15},
	{Name: "vegetarian", Aliases: []string{"vegetarian", "채식"}, Tags: []string{"vegetarian", "vegan", "채식", "비건"}, Bonus: 0.15},
	{Name: "korean", Aliases: []string{"korean", "한식"}, Tags: []string{"korean", "한식"}, Types: []string{"korean", "한식"}, Bonus: 0.1},
}

// ruleIndex resolves names to rules through their normalised aliases.
type ruleIndex[T any] map[string]*T

func indexRules[T any](rules []T, aliases func(*T) []string) ruleIndex[T] {
	idx := make(ruleIndex[T])
	for i := range rules {
		for _, a := range aliases(&rules[i]) {
			idx[normalizeLabel(a)] = &rules[i]
		}
	}
	return idx
}

func (idx ruleIndex[T]) lookup(name string) (*T, bool) {
	r, ok := idx[normalizeLabel(name)]
	return r, ok
}

var (
	conditionIndex   = indexRules(conditionRules, func(r *ConditionRule) []string { return r.Aliases })
	restrictionIndex = indexRules(restrictionRules, func(r *RestrictionRule) []string { return r.Aliases })
	preferenceIndex  = indexRules(preferenceBonuses, func(r *PreferenceBonus) []string { return r.Aliases })
)
