package dialogue

import (
	"strconv"
	"strings"

	"ai-catalog-admin-be/pkg/store"
)

// factAliases maps the labels users type to canonical fact keys. Matching
// is case-insensitive on the trimmed label before the colon.
var factAliases = map[string]string{
	"name":           store.FactProductName,
	"product":        store.FactProductName,
	"product name":   store.FactProductName,
	"material":       store.FactMaterial,
	"price":          store.FactPriceMinor,
	"cost":           store.FactPriceMinor,
	"localized name": store.FactLocalizedName,
	"local name":     store.FactLocalizedName,
	"translation":    store.FactLocalizedName,
	"keywords":       store.FactFocusKeywords,
	"keyword":        store.FactFocusKeywords,
	"focus keywords": store.FactFocusKeywords,
	"seo keywords":   store.FactFocusKeywords,
}

// factLabels are the user-facing names used when prompting for missing
// facts.
var factLabels = map[string]string{
	store.FactProductName:   "product name",
	store.FactMaterial:      "material",
	store.FactPriceMinor:    "price",
	store.FactLocalizedName: "localized name",
	store.FactFocusKeywords: "focus keywords",
}

// ParseFacts extracts fact updates from one free-form message against the
// current state. Labeled lines ("price: 5000") fill the named slot; a bare
// line with no label fills the single missing fact when exactly one remains,
// which keeps short answers to a direct question working.
func ParseFacts(text string, state *store.ConversationState) map[string]string {
	updates := make(map[string]string)
	var unlabeled []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := splitLabeledLine(line)
		if !ok {
			unlabeled = append(unlabeled, line)
			continue
		}
		if key == store.FactPriceMinor {
			if minor, ok := ParsePriceMinor(value); ok {
				updates[key] = strconv.FormatInt(minor, 10)
			}
			continue
		}
		updates[key] = value
	}

	// A single unlabeled line answers the one open question, if there is
	// exactly one.
	if len(unlabeled) == 1 {
		missing := missingAfter(state, updates)
		if len(missing) == 1 {
			key := missing[0]
			if key == store.FactPriceMinor {
				if minor, ok := ParsePriceMinor(unlabeled[0]); ok {
					updates[key] = strconv.FormatInt(minor, 10)
				}
			} else {
				updates[key] = unlabeled[0]
			}
		}
	}

	return updates
}

func splitLabeledLine(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	label := strings.ToLower(strings.TrimSpace(line[:idx]))
	key, known := factAliases[label]
	if !known {
		return "", "", false
	}
	value = strings.TrimSpace(line[idx+1:])
	if value == "" {
		return "", "", false
	}
	return key, value, true
}

func missingAfter(state *store.ConversationState, updates map[string]string) []string {
	var missing []string
	for _, key := range store.RequiredFacts {
		if state.Facts[key] == "" && updates[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// ParsePriceMinor parses a user-entered price ("5000", "5,000.50", "$49.99")
// into minor currency units. Negative prices are rejected.
func ParsePriceMinor(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			b.WriteRune(r)
		case r == ',' || r == ' ':
			// thousands separators
		case r == '-':
			return 0, false
		default:
			// currency symbols and codes
		}
	}
	cleaned := b.String()
	if cleaned == "" || strings.Count(cleaned, ".") > 1 {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return int64(v*100 + 0.5), true
}

// FactLabel returns the user-facing label for a fact key.
func FactLabel(key string) string {
	if label, ok := factLabels[key]; ok {
		return label
	}
	return key
}
