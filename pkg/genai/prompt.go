package genai

import (
	"fmt"
	"strings"

	"ai-catalog-admin-be/pkg/commerce"
	"ai-catalog-admin-be/pkg/store"
)

// BuildGenerationPrompt renders the collected facts and known categories
// into the user turn sent alongside the system prompt.
func BuildGenerationPrompt(facts map[string]string, categories []commerce.Category, imageCount int) string {
	var b strings.Builder

	b.WriteString("Product facts:\n")
	writeFact(&b, "Product name", facts[store.FactProductName])
	writeFact(&b, "Material", facts[store.FactMaterial])
	writeFact(&b, "Localized name", facts[store.FactLocalizedName])
	writeFact(&b, "Focus keywords", facts[store.FactFocusKeywords])
	if minor := facts[store.FactPriceMinor]; minor != "" {
		fmt.Fprintf(&b, "- Entered price (minor units): %s\n", minor)
	}
	fmt.Fprintf(&b, "- Attached images: %d\n", imageCount)

	names := CategoryNames(categories)
	if len(names) > 0 {
		b.WriteString("\nExisting catalog categories:\n")
		for _, n := range names {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	return b.String()
}

func writeFact(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "- %s: %s\n", label, value)
	}
}
