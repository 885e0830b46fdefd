package gemini

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

const defaultModel = "gemini-1.5-flash"

type geminiChatParts struct {
	Text string `json:"text"`
}

type geminiChatContent struct {
	Parts []*geminiChatParts `json:"parts"`
	Role  string             `json:"role"`
}

type geminiChatRequest struct {
	Contents         []*geminiChatContent `json:"contents"`
	GenerationConfig *geminiGenConfig     `json:"generationConfig,omitempty"`
}

type geminiGenConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiChatCandidate struct {
	Content *geminiChatContent `json:"content"`
}

type geminiChatResponse struct {
	Candidates []*geminiChatCandidate `json:"candidates"`
}

// Provider drafts structured catalog content via the Gemini generateContent
// API.
type Provider struct {
	APIKey    string
	ModelName string
	BaseURL   string
	Client    *http.Client
}

var _ genai.Generator = &Provider{}

func NewProvider(apiKey, modelName string) *Provider {
	if modelName == "" {
		modelName = defaultModel
	}
	return &Provider{
		APIKey:    apiKey,
		ModelName: modelName,
		BaseURL:   "https://generativelanguage.googleapis.com/v1beta",
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Generate sends the facts prompt to Gemini and parses the structured JSON
// reply.
func (p *Provider) Generate(ctx context.Context, facts map[string]string, categories []commerce.Category, opts ...genai.Option) (*store.StructuredContent, error) {
	options := &genai.Options{}
	for _, opt := range opts {
		opt(options)
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	payload := geminiChatRequest{
		Contents: []*geminiChatContent{
			{
				Role:  constant.ChatMessageRoleUser,
				Parts: []*geminiChatParts{{Text: constant.ContentGenerationSystemPromptV2}},
			},
			{
				Role:  constant.ChatMessageRoleModel,
				Parts: []*geminiChatParts{{Text: "Understood. Send the product facts."}},
			},
			{
				Role:  constant.ChatMessageRoleUser,
				Parts: []*geminiChatParts{{Text: genai.BuildGenerationPrompt(facts, categories, options.ImageCount)}},
			},
		},
		GenerationConfig: &geminiGenConfig{
			Temperature:      options.Temperature,
			ResponseMimeType: "application/json",
		},
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.BaseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.APIKey)
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

	var geminiRes geminiChatResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return nil, err
	}
	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil ||
		len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	return genai.ParseStructuredContent(geminiRes.Candidates[0].Content.Parts[0].Text)
}
