package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-catalog-admin-be/pkg/commerce"
	"ai-catalog-admin-be/pkg/genai"
	"ai-catalog-admin-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParsesStructuredReply(t *testing.T) {
	var gotReq ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model: gotReq.Model,
			Message: ollamaMessage{
				Role:    "assistant",
				Content: `{"name":"Walnut Organizer","tags":["walnut"],"regular_price":"5000.00"}`,
			},
			Done: true,
		})
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "llama3")
	p.Client = srv.Client()

	facts := map[string]string{
		store.FactProductName: "Walnut Organizer",
		store.FactMaterial:    "walnut",
	}
	content, err := p.Generate(context.Background(), facts,
		[]commerce.Category{{Id: 7, Name: "Office"}},
		genai.WithImageCount(2))
	require.NoError(t, err)

	assert.Equal(t, "Walnut Organizer", content.Name)
	assert.Equal(t, "5000.00", content.RegularPrice)

	// The request rode JSON mode with the facts in the user prompt.
	assert.Equal(t, "llama3", gotReq.Model)
	assert.Equal(t, "json", gotReq.Format)
	assert.False(t, gotReq.Stream)
	require.Len(t, gotReq.Messages, 2)
	assert.Contains(t, gotReq.Messages[1].Content, "Walnut Organizer")
	assert.Contains(t, gotReq.Messages[1].Content, "Office")
	assert.Contains(t, gotReq.Messages[1].Content, "Attached images: 2")
}

func TestGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "missing")
	p.Client = srv.Client()

	_, err := p.Generate(context.Background(), map[string]string{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
