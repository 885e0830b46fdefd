package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-catalog-admin-be/internal/constant"
	"ai-catalog-admin-be/pkg/commerce"
	"ai-catalog-admin-be/pkg/genai"
	"ai-catalog-admin-be/pkg/store"
)

// Provider drafts structured catalog content via a local Ollama server.
type Provider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ genai.Generator = &Provider{}

func NewProvider(baseURL, modelName string) *Provider {
	return &Provider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// Generate sends the facts prompt to Ollama in JSON format mode and parses
// the structured reply.
func (p *Provider) Generate(ctx context.Context, facts map[string]string, categories []commerce.Category, opts ...genai.Option) (*store.StructuredContent, error) {
	options := &genai.Options{
		Temperature: 0.7, // Default
	}
	for _, opt := range opts {
		opt(options)
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	payload := ollamaChatRequest{
		Model: model,
		Messages: []ollamaMessage{
			{Role: constant.ChatMessageRoleSystem, Content: constant.ContentGenerationSystemPromptV2},
			{Role: constant.ChatMessageRoleUser, Content: genai.BuildGenerationPrompt(facts, categories, options.ImageCount)},
		},
		Stream: false,
		Format: "json",
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/chat", bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var chatRes ollamaChatResponse
	if err := json.Unmarshal(resBody, &chatRes); err != nil {
		return nil, err
	}

	return genai.ParseStructuredContent(chatRes.Message.Content)
}
