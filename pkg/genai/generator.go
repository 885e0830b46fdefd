package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-catalog-admin-be/pkg/commerce"
	"ai-catalog-admin-be/pkg/store"
)

// Generator is the generative-AI service contract. Implementations draft
// structured catalog content from the collected raw facts plus the known
// category list, or fail with an error the dialogue controller reports and
// recovers from.
type Generator interface {
	Generate(ctx context.Context, facts map[string]string, categories []commerce.Category, opts ...Option) (*store.StructuredContent, error)
}

// Option allows optional generation parameters.
type Option func(*Options)

type Options struct {
	Temperature float64
	Model       string // override default model
	ImageCount  int    // settled uploads, so the prompt can demand matching image_alts
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithImageCount(count int) Option {
	return func(o *Options) {
		o.ImageCount = count
	}
}

// ParseStructuredContent extracts the structured content JSON from a raw
// model reply. Models routinely wrap JSON in markdown code fences or prose,
// so the first balanced JSON object in the text is used.
func ParseStructuredContent(raw string) (*store.StructuredContent, error) {
	jsonText := extractJSONObject(raw)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var content store.StructuredContent
	if err := json.Unmarshal([]byte(jsonText), &content); err != nil {
		return nil, fmt.Errorf("parse structured content: %w", err)
	}
	return &content, nil
}

// extractJSONObject returns the first balanced {...} block in s, ignoring
// braces inside JSON strings.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// CategoryNames flattens the known categories for prompt building.
func CategoryNames(categories []commerce.Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}
