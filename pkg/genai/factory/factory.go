package factory

import (
	"fmt"

	"ai-catalog-admin-be/pkg/genai"
	"ai-catalog-admin-be/pkg/genai/gemini"
	"ai-catalog-admin-be/pkg/genai/ollama"
)

// NewGenerator builds the configured content generator.
func NewGenerator(providerType, modelName, ollamaBaseURL, geminiAPIKey string) (genai.Generator, error) {
	switch providerType {
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewProvider(geminiAPIKey, modelName), nil
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewProvider(ollamaBaseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerType)
	}
}
