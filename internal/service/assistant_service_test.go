package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"ai-catalog-admin-be/internal/dto"
	"ai-catalog-admin-be/internal/repository/memory"
	"ai-catalog-admin-be/internal/websocket"
	"ai-catalog-admin-be/pkg/commerce"
	"ai-catalog-admin-be/pkg/dialogue"
	"ai-catalog-admin-be/pkg/genai"
	"ai-catalog-admin-be/pkg/imaging"
	"ai-catalog-admin-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(_, _ string, _ map[string]interface{}) {}
func (nopLogger) Info(_, _ string, _ map[string]interface{})  {}
func (nopLogger) Warn(_, _ string, _ map[string]interface{})  {}
func (nopLogger) Error(_, _ string, _ map[string]interface{}) {}
func (nopLogger) Sync() error                                 { return nil }

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, facts map[string]string, _ []commerce.Category, _ ...genai.Option) (*store.StructuredContent, error) {
	return &store.StructuredContent{Name: facts[store.FactProductName]}, nil
}

type stubBackend struct{}

func (stubBackend) CreateProduct(_ context.Context, payload *commerce.ProductPayload) (*commerce.Product, error) {
	return &commerce.Product{Id: 321, Name: payload.Name, Status: payload.Status}, nil
}

func (stubBackend) UpdateProduct(_ context.Context, id int64, payload *commerce.ProductPayload) (*commerce.Product, error) {
	return &commerce.Product{Id: id, Name: payload.Name, Status: payload.Status}, nil
}

func (stubBackend) GetProduct(_ context.Context, _ int64) (*commerce.Product, error) {
	return nil, commerce.ErrNotFound
}

func (stubBackend) ListCategories(_ context.Context) ([]commerce.Category, error) {
	return nil, nil
}

type stubIngestor struct{}

func (stubIngestor) Ingest(_ context.Context, refs []store.ImageRef, _ bool) imaging.Result {
	var result imaging.Result
	for i := range refs {
		result.Uploaded = append(result.Uploaded, store.UploadedImage{MediaId: int64(i + 1)})
	}
	return result
}

const testTopic = "TEST_ENTRY_PERSISTED"

func newTestService(t *testing.T) (IAssistantService, *gochannel.GoChannel) {
	t.Helper()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	controller := dialogue.NewController(stubGenerator{}, stubBackend{}, stubIngestor{}, dialogue.Config{}, nopLogger{})
	hub := websocket.NewHub(nil, nopLogger{})

	svc := NewAssistantService(
		controller,
		memory.NewStateRepository(),
		nil, // no turn log in memory mode
		hub,
		NewPublisherService(testTopic, pubSub),
		nopLogger{},
	)
	return svc, pubSub
}

func allFactsMessage() string {
	return strings.Join([]string{
		"name: Walnut Desk Organizer",
		"material: walnut wood",
		"price: 5000",
		"localized name: Schreibtisch-Organizer",
		"keywords: desk organizer, walnut",
	}, "\n")
}

func TestCreateSessionReturnsFreshId(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	b, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, a.SessionId)
	assert.NotEqual(t, a.SessionId, b.SessionId)
}

func TestSendMessageCarriesStateAcrossTurns(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.SendMessage(ctx, &dto.SendMessageRequest{
		SessionId: "s1",
		Text:      "name: Walnut Desk Organizer",
	})
	require.NoError(t, err)
	assert.Equal(t, string(store.PhaseCollectingFacts), res.Phase)
	assert.Contains(t, res.Reply, "Still needed")

	// The second turn sees the first turn's fact.
	res, err = svc.SendMessage(ctx, &dto.SendMessageRequest{
		SessionId: "s1",
		Text:      "material: walnut wood\nprice: 5000\nlocalized name: X\nkeywords: a, b",
		Images:    []dto.ImageRefDTO{{URL: "https://example.com/a.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(store.PhaseAwaitingDecision), res.Phase)
	assert.NotEmpty(t, res.SuggestedActions)
}

func TestSendMessagePublishesEntryPersisted(t *testing.T) {
	svc, pubSub := newTestService(t)
	ctx := context.Background()

	messages, err := pubSub.Subscribe(ctx, testTopic)
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, &dto.SendMessageRequest{
		SessionId: "s1",
		Text:      allFactsMessage(),
		Images:    []dto.ImageRefDTO{{URL: "https://example.com/a.jpg"}},
	})
	require.NoError(t, err)

	res, err := svc.SendMessage(ctx, &dto.SendMessageRequest{
		SessionId: "s1",
		Text:      "Create Product",
	})
	require.NoError(t, err)
	require.Equal(t, string(store.PhaseDone), res.Phase)

	select {
	case msg := <-messages:
		var payload dto.EntryPersistedMessage
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		msg.Ack()
		assert.Equal(t, "s1", payload.SessionId)
		assert.Equal(t, int64(321), payload.ProductId)
		assert.Equal(t, commerce.StatusPublish, payload.Status)
		assert.False(t, payload.Edited)
	case <-time.After(2 * time.Second):
		t.Fatal("no persisted-entry event published")
	}
}

func TestSendMessageSerializesTurnsPerSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Fire a burst of concurrent fact turns at one session; with the turn
	// lock each one lands, so all five facts are present afterwards.
	lines := []string{
		"name: Walnut Desk Organizer",
		"material: walnut wood",
		"price: 5000",
		"localized name: Schreibtisch-Organizer",
		"keywords: desk organizer",
	}
	done := make(chan error, len(lines))
	for _, line := range lines {
		go func(text string) {
			_, err := svc.SendMessage(ctx, &dto.SendMessageRequest{SessionId: "s1", Text: text})
			done <- err
		}(line)
	}
	for range lines {
		require.NoError(t, <-done)
	}

	res, err := svc.SendMessage(ctx, &dto.SendMessageRequest{
		SessionId: "s1",
		Images:    []dto.ImageRefDTO{{URL: "https://example.com/a.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(store.PhaseAwaitingDecision), res.Phase, fmt.Sprintf("reply: %s", res.Reply))
}

func TestClearSessionDropsState(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, &dto.SendMessageRequest{SessionId: "s1", Text: "name: Mug"})
	require.NoError(t, err)
	require.NoError(t, svc.ClearSession(ctx, "s1"))

	res, err := svc.SendMessage(ctx, &dto.SendMessageRequest{SessionId: "s1", Text: "material: ceramic"})
	require.NoError(t, err)
	// The cleared session forgot the name; both facts are prompted again.
	assert.Contains(t, res.Reply, "product name")
}

func TestGetHistoryWithoutTurnLog(t *testing.T) {
	svc, _ := newTestService(t)

	history, err := svc.GetHistory(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", history.SessionId)
	assert.Empty(t, history.Turns)
}
