package dialogue

import "strings"

// Intent is a recognized decision while the dialogue awaits one.
type Intent string

const (
	IntentReoptimize Intent = "REOPTIMIZE"
	IntentCreate     Intent = "CREATE"
	IntentSaveDraft  Intent = "SAVE_DRAFT"
	IntentUnknown    Intent = "UNKNOWN"
)

// Suggested action labels presented with the generated preview. They are
// also what the intent matcher recognizes, so the round trip through the
// chat transport is lossless.
const (
	ActionReoptimize = "Re-optimize"
	ActionCreate     = "Create Product"
	ActionSaveDraft  = "Save as Draft"
)

var intentPhrases = map[string]Intent{
	"re-optimize":    IntentReoptimize,
	"reoptimize":     IntentReoptimize,
	"re optimize":    IntentReoptimize,
	"regenerate":     IntentReoptimize,
	"try again":      IntentReoptimize,
	"retry":          IntentReoptimize,
	"create":         IntentCreate,
	"create product": IntentCreate,
	"publish":        IntentCreate,
	"save":           IntentSaveDraft,
	"draft":          IntentSaveDraft,
	"save draft":     IntentSaveDraft,
	"save as draft":  IntentSaveDraft,
}

// ParseIntent recognizes the three decision intents. Anything else is
// IntentUnknown and is treated as a correction to the raw facts.
func ParseIntent(text string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.TrimRight(normalized, ".!?")
	if intent, ok := intentPhrases[normalized]; ok {
		return intent
	}
	return IntentUnknown
}
