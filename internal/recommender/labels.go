package recommender

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/temcen/mealrec/pkg/models"
)

// normalizeLabel folds case and composes Hangul so that "Shellfish",
// "shellfish" and decomposed jamo compare equal.
func normalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// cases.Caser is stateful, one per call.
	return cases.Fold().String(norm.NFC.String(s))
}

type labelSet map[string]struct{}

func newLabelSet(labels ...string) labelSet {
	set := make(labelSet, len(labels))
	for _, l := range labels {
		if n := normalizeLabel(l); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func (s labelSet) has(label string) bool {
	_, ok := s[label]
	return ok
}

// intersects reports whether any of the (already normalised) labels is in s.
func (s labelSet) intersects(labels []string) bool {
	for _, l := range labels {
		if s.has(l) {
			return true
		}
	}
	return false
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := normalizeLabel(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// recordLabels returns tags, type and category of a record, normalised.
func recordLabels(f models.FoodRecord) []string {
	labels := normalizeAll(f.Tags)
	if t := normalizeLabel(f.Type); t != "" {
		labels = append(labels, t)
	}
	if c := normalizeLabel(f.Category); c != "" {
		labels = append(labels, c)
	}
	return labels
}

// containsKeyword reports whether any label contains any keyword as a
// substring. Used for positive matches such as slot names and preferences.
func containsKeyword(labels, keywords []string) bool {
	for _, l := range labels {
		for _, k := range keywords {
			if k != "" && strings.Contains(l, k) {
				return true
			}
		}
	}
	return false
}

// containsForbidden reports whether any label names one of the keywords.
// Labels that negate what they name ("gluten-free", "non-dairy", "글루텐프리")
// never match.
func containsForbidden(labels, keywords []string) bool {
	for _, l := range labels {
		if negatedLabel(l) {
			continue
		}
		for _, k := range keywords {
			if matchKeyword(l, k) {
				return true
			}
		}
	}
	return false
}

var (
	negationPrefixes = []string{"non-", "non ", "no-", "no ", "무"}
	negationSuffixes = []string{"free", "less", "프리", "없음"}
)

func negatedLabel(l string) bool {
	for _, p := range negationPrefixes {
		if strings.HasPrefix(l, p) && len(l) > len(p) {
			return true
		}
	}
	for _, s := range negationSuffixes {
		if strings.HasSuffix(l, s) && len(l) > len(s) {
			return true
		}
	}
	return false
}

// matchKeyword reports whether keyword occurs in label at the start of a
// word, so "egg" matches "eggs" but not "veggie" and "게" matches "게살" but
// not "가게". Hangul keywords longer than one syllable match anywhere since
// Korean compounds are written without spaces.
func matchKeyword(label, keyword string) bool {
	if keyword == "" {
		return false
	}
	if first, _ := utf8.DecodeRuneInString(keyword); unicode.Is(unicode.Hangul, first) &&
		utf8.RuneCountInString(keyword) > 1 {
		return strings.Contains(label, keyword)
	}

	for from := 0; from < len(label); {
		j := strings.Index(label[from:], keyword)
		if j < 0 {
			return false
		}
		at := from + j
		if at == 0 {
			return true
		}
		if prev, _ := utf8.DecodeLastRuneInString(label[:at]); !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		_, size := utf8.DecodeRuneInString(label[at:])
		from = at + size
	}
	return false
}
