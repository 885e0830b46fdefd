package dialogue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ai-catalog-admin-be/internal/pkg/logger"
	"ai-catalog-admin-be/pkg/commerce"
	"ai-catalog-admin-be/pkg/genai"
	"ai-catalog-admin-be/pkg/imaging"
	"ai-catalog-admin-be/pkg/merge"
	"ai-catalog-admin-be/pkg/store"
)

// ImageIngestor is the slice of the image pipeline the controller consumes.
type ImageIngestor interface {
	Ingest(ctx context.Context, refs []store.ImageRef, applyWatermark bool) imaging.Result
}

// Config is the explicit controller configuration, passed at construction
// instead of read from process-wide state.
type Config struct {
	ApplyWatermark bool
	TurnTimeout    time.Duration
}

// TurnInput is one inbound chat event after transport-level validation.
type TurnInput struct {
	SessionId    string
	Text         string
	Images       []store.ImageRef
	EditTargetId *int64
}

// TurnResult is the outbound reply plus everything the caller needs to act
// on the turn (events, audit, transport rendering).
type TurnResult struct {
	Reply            string
	SuggestedActions []string
	Phase            store.Phase
	Persisted        *commerce.Product // set when this turn persisted an entry
}

// Controller drives the product-creation dialogue. It interprets each
// inbound message against the conversation state, decides whether to request
// missing facts, invoke generation, request a decision, or persist, and
// emits the reply plus the next state.
//
// The controller mutates state in place; the caller owns loading, locking
// and saving. Every external failure is captured into state.LastError and a
// user-visible reply, so a turn never panics or errors past this boundary.
type Controller struct {
	generator genai.Generator
	backend   commerce.Backend
	images    ImageIngestor
	cfg       Config
	logger    logger.ILogger
}

func NewController(generator genai.Generator, backend commerce.Backend, images ImageIngestor, cfg Config, log logger.ILogger) *Controller {
	if cfg.TurnTimeout == 0 {
		cfg.TurnTimeout = 3 * time.Minute
	}
	return &Controller{
		generator: generator,
		backend:   backend,
		images:    images,
		cfg:       cfg,
		logger:    log,
	}
}

// HandleTurn processes one inbound message. The caller must hold the
// session lock for the duration of the call.
func (c *Controller) HandleTurn(ctx context.Context, state *store.ConversationState, in TurnInput) *TurnResult {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TurnTimeout)
	defer cancel()

	defer func() {
		state.UpdatedAt = time.Now()
	}()

	// A finished product is a soft terminal: the next unrelated message
	// starts a fresh one on the same session.
	if state.Phase == store.PhaseDone {
		state.ResetProduct()
		state.Phase = store.PhaseCollectingFacts
	}

	// A crash between persist and save can leave PERSISTING on disk; the
	// generated content is still intact, so resume at the decision point.
	if state.Phase == store.PhasePersisting {
		state.Phase = store.PhaseAwaitingDecision
	}

	if in.EditTargetId != nil {
		if result := c.beginEdit(ctx, state, in); result != nil {
			return result
		}
	}

	switch state.Phase {
	case store.PhaseCollectingFacts, store.PhaseGenerating:
		return c.handleCollecting(ctx, state, in)
	case store.PhaseAwaitingDecision:
		return c.handleDecision(ctx, state, in)
	default:
		// Unknown stored phase; recover rather than wedging the session.
		c.logger.Warn("Dialogue", "Unknown phase, resetting to collecting", map[string]interface{}{
			"session_id": state.SessionId,
			"phase":      string(state.Phase),
		})
		state.Phase = store.PhaseCollectingFacts
		return c.handleCollecting(ctx, state, in)
	}
}

// beginEdit loads the target entry once, seeds facts and images from it,
// and skips ahead when the entry already carries complete content and an
// image. Returns nil when the normal phase handling should continue.
func (c *Controller) beginEdit(ctx context.Context, state *store.ConversationState, in TurnInput) *TurnResult {
	targetId := *in.EditTargetId
	if state.EditSeeded && state.EditTargetId != nil && *state.EditTargetId == targetId {
		return nil
	}

	entry, err := c.backend.GetProduct(ctx, targetId)
	if err != nil {
		state.LastError = fmt.Sprintf("load entry %d: %v", targetId, err)
		c.logger.Error("Dialogue", "Failed to load edit target", map[string]interface{}{
			"session_id": state.SessionId,
			"entry_id":   targetId,
			"error":      err.Error(),
		})
		return &TurnResult{
			Reply: fmt.Sprintf("I could not load catalog entry %d (%v). Check the id and try again.", targetId, err),
			Phase: state.Phase,
		}
	}

	state.ResetProduct()
	state.EditTargetId = &targetId
	state.EditSeeded = true
	state.Phase = store.PhaseCollectingFacts
	seedFactsFromEntry(state, entry)
	for _, img := range entry.Images {
		state.UploadedImages = append(state.UploadedImages, store.UploadedImage{
			MediaId: img.Id,
			URL:     img.Src,
			AltText: img.Alt,
		})
	}
	state.LastError = ""

	if entry.HasCompleteContent() && len(state.UploadedImages) > 0 && strings.TrimSpace(in.Text) == "" && len(in.Images) == 0 {
		state.Phase = store.PhaseAwaitingDecision
		payload := c.previewPayload(ctx, state)
		return &TurnResult{
			Reply:            fmt.Sprintf("Editing %q (entry %d).\n\n%s", entry.Name, targetId, renderPreview(payload)),
			SuggestedActions: []string{ActionReoptimize, ActionCreate, ActionSaveDraft},
			Phase:            state.Phase,
		}
	}
	return nil
}

func (c *Controller) handleCollecting(ctx context.Context, state *store.ConversationState, in TurnInput) *TurnResult {
	state.Phase = store.PhaseCollectingFacts

	updates := ParseFacts(in.Text, state)
	for key, value := range updates {
		state.Facts[key] = value
	}
	state.PendingImages = append(state.PendingImages, in.Images...)

	missing := state.MissingFacts()
	if len(missing) > 0 || !state.HasImages() {
		state.LastError = ""
		return &TurnResult{
			Reply: c.collectingReply(state, updates, missing),
			Phase: state.Phase,
		}
	}

	return c.generate(ctx, state)
}

// generate runs the GENERATING phase: settle image uploads, then call the
// AI service. On failure the dialogue returns to COLLECTING_FACTS without
// losing collected facts or already-uploaded images.
func (c *Controller) generate(ctx context.Context, state *store.ConversationState) *TurnResult {
	state.Phase = store.PhaseGenerating

	var failures []imaging.Failure
	if len(state.PendingImages) > 0 {
		result := c.images.Ingest(ctx, state.PendingImages, c.cfg.ApplyWatermark)
		for _, uploaded := range result.Uploaded {
			appendUploaded(state, uploaded)
		}
		failures = result.Failures
		state.PendingImages = nil
	}

	if len(state.UploadedImages) == 0 {
		state.Phase = store.PhaseCollectingFacts
		state.LastError = "all image uploads failed"
		return &TurnResult{
			Reply: "None of the attached images could be uploaded:\n" + renderFailures(failures) + "\nPlease attach another image.",
			Phase: state.Phase,
		}
	}

	categories, err := c.backend.ListCategories(ctx)
	if err != nil {
		// Generation can proceed without the category list; unmatched
		// names are created backend-side anyway.
		c.logger.Warn("Dialogue", "Category listing failed, generating without it", map[string]interface{}{
			"session_id": state.SessionId,
			"error":      err.Error(),
		})
		categories = nil
	}

	generated, err := c.generator.Generate(ctx, state.Facts, categories,
		genai.WithImageCount(len(state.UploadedImages)))
	if err != nil {
		state.Phase = store.PhaseCollectingFacts
		state.LastError = fmt.Sprintf("content generation failed: %v", err)
		c.logger.Error("Dialogue", "AI generation failed", map[string]interface{}{
			"session_id": state.SessionId,
			"error":      err.Error(),
		})
		return &TurnResult{
			Reply: "Content generation failed, your facts and images are kept. Send any message to retry, or adjust a fact first.",
			Phase: state.Phase,
		}
	}

	state.Generated = generated
	state.Phase = store.PhaseAwaitingDecision
	state.LastError = ""

	payload := merge.Merge(merge.Input{
		Facts:           state.Facts,
		Generated:       state.Generated,
		Images:          state.UploadedImages,
		KnownCategories: categories,
		Status:          commerce.StatusDraft,
	})

	reply := renderPreview(payload)
	if len(failures) > 0 {
		reply = "Some images failed and were skipped:\n" + renderFailures(failures) + "\n" + reply
	}
	return &TurnResult{
		Reply:            reply,
		SuggestedActions: []string{ActionReoptimize, ActionCreate, ActionSaveDraft},
		Phase:            state.Phase,
	}
}

func (c *Controller) handleDecision(ctx context.Context, state *store.ConversationState, in TurnInput) *TurnResult {
	// New images count as a correction, like unrecognized text.
	if len(in.Images) == 0 {
		switch ParseIntent(in.Text) {
		case IntentReoptimize:
			// Facts and uploaded images stay untouched; only the content
			// is regenerated.
			return c.generate(ctx, state)
		case IntentCreate:
			return c.persist(ctx, state, commerce.StatusPublish)
		case IntentSaveDraft:
			return c.persist(ctx, state, commerce.StatusDraft)
		}
	}

	// Correction: the generated content is stale now.
	state.Generated = nil
	state.Phase = store.PhaseCollectingFacts
	return c.handleCollecting(ctx, state, in)
}

// persist runs the PERSISTING phase: merge, then create or update. Failure
// returns to AWAITING_DECISION with the generated content intact so the
// user can retry without regenerating.
func (c *Controller) persist(ctx context.Context, state *store.ConversationState, status string) *TurnResult {
	state.Phase = store.PhasePersisting

	var existing *commerce.Product
	if state.EditTargetId != nil {
		entry, err := c.backend.GetProduct(ctx, *state.EditTargetId)
		if err != nil {
			return c.persistFailed(state, err)
		}
		existing = entry
	}

	categories, err := c.backend.ListCategories(ctx)
	if err != nil {
		c.logger.Warn("Dialogue", "Category listing failed, unmatched names will be created", map[string]interface{}{
			"session_id": state.SessionId,
			"error":      err.Error(),
		})
		categories = nil
	}

	payload := merge.Merge(merge.Input{
		Facts:           state.Facts,
		Generated:       state.Generated,
		Existing:        existing,
		Images:          state.UploadedImages,
		KnownCategories: categories,
		Status:          status,
	})

	var product *commerce.Product
	if state.EditTargetId != nil {
		product, err = c.backend.UpdateProduct(ctx, *state.EditTargetId, payload)
	} else {
		product, err = c.backend.CreateProduct(ctx, payload)
	}
	if err != nil {
		return c.persistFailed(state, err)
	}

	state.ResetProduct()
	state.Phase = store.PhaseDone

	verb := "created"
	if status == commerce.StatusDraft {
		verb = "saved as draft"
	}
	return &TurnResult{
		Reply:     fmt.Sprintf("Done. %q %s (entry %d). Send new product facts to start the next one.", product.Name, verb, product.Id),
		Phase:     state.Phase,
		Persisted: product,
	}
}

func (c *Controller) persistFailed(state *store.ConversationState, err error) *TurnResult {
	state.Phase = store.PhaseAwaitingDecision
	state.LastError = fmt.Sprintf("persistence failed: %v", err)
	c.logger.Error("Dialogue", "Persistence failed", map[string]interface{}{
		"session_id": state.SessionId,
		"error":      err.Error(),
	})
	return &TurnResult{
		Reply:            "Saving to the catalog failed. The generated content is kept, so you can just try again.",
		SuggestedActions: []string{ActionReoptimize, ActionCreate, ActionSaveDraft},
		Phase:            state.Phase,
	}
}

// previewPayload merges the current state for display without persisting.
func (c *Controller) previewPayload(ctx context.Context, state *store.ConversationState) *commerce.ProductPayload {
	var existing *commerce.Product
	if state.EditTargetId != nil {
		if entry, err := c.backend.GetProduct(ctx, *state.EditTargetId); err == nil {
			existing = entry
		}
	}
	categories, err := c.backend.ListCategories(ctx)
	if err != nil {
		categories = nil
	}
	return merge.Merge(merge.Input{
		Facts:           state.Facts,
		Generated:       state.Generated,
		Existing:        existing,
		Images:          state.UploadedImages,
		KnownCategories: categories,
		Status:          commerce.StatusDraft,
	})
}

func (c *Controller) collectingReply(state *store.ConversationState, updates map[string]string, missing []string) string {
	var b strings.Builder

	if len(updates) > 0 {
		b.WriteString("Noted: ")
		first := true
		for _, key := range store.RequiredFacts {
			if _, ok := updates[key]; !ok {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			b.WriteString(FactLabel(key))
			first = false
		}
		b.WriteString(".\n")
	}

	if len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, key := range missing {
			labels[i] = FactLabel(key)
		}
		fmt.Fprintf(&b, "Still needed: %s.", strings.Join(labels, ", "))
	}
	if !state.HasImages() {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Please attach at least one product image.")
	}
	return b.String()
}

// appendUploaded keeps UploadedImages append-only: a record whose media id
// is already present is a no-op copy, not a new entry.
func appendUploaded(state *store.ConversationState, uploaded store.UploadedImage) {
	for _, existing := range state.UploadedImages {
		if existing.MediaId == uploaded.MediaId {
			return
		}
	}
	state.UploadedImages = append(state.UploadedImages, uploaded)
}

func seedFactsFromEntry(state *store.ConversationState, entry *commerce.Product) {
	if entry.Name != "" {
		state.Facts[store.FactProductName] = entry.Name
	}
	if entry.RegularPrice != "" {
		if minor, ok := ParsePriceMinor(entry.RegularPrice); ok {
			state.Facts[store.FactPriceMinor] = strconv.FormatInt(minor, 10)
		}
	}
	if entry.ShortDescription != "" {
		state.Facts[store.FactLocalizedName] = entry.ShortDescription
	}
	for _, attr := range entry.Attributes {
		if strings.EqualFold(attr.Name, "material") && len(attr.Options) > 0 {
			state.Facts[store.FactMaterial] = attr.Options[0]
		}
	}
	if len(entry.Tags) > 0 {
		names := make([]string, 0, len(entry.Tags))
		for _, t := range entry.Tags {
			names = append(names, t.Name)
		}
		state.Facts[store.FactFocusKeywords] = strings.Join(names, ", ")
	}
}

func renderPreview(payload *commerce.ProductPayload) string {
	var b strings.Builder
	b.WriteString("Here is the drafted catalog entry:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", payload.Name)
	fmt.Fprintf(&b, "Price: %s\n", payload.RegularPrice)
	if payload.ShortDescription != "" {
		fmt.Fprintf(&b, "Short description: %s\n", payload.ShortDescription)
	}
	if payload.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", payload.Description)
	}
	if len(payload.Categories) > 0 {
		var names []string
		for _, c := range payload.Categories {
			if c.Name != "" {
				names = append(names, c.Name+" (new)")
			} else {
				names = append(names, fmt.Sprintf("#%d", c.Id))
			}
		}
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(names, ", "))
	}
	if len(payload.Tags) > 0 {
		var names []string
		for _, t := range payload.Tags {
			names = append(names, t.Name)
		}
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "Images: %d\n", len(payload.Images))
	b.WriteString("\nRe-optimize, Create Product, or Save as Draft?")
	return b.String()
}

func renderFailures(failures []imaging.Failure) string {
	var b strings.Builder
	for _, f := range failures {
		ref := f.Ref.URL
		if ref == "" {
			ref = f.Ref.Filename
		}
		if ref == "" {
			ref = "(inline image)"
		}
		fmt.Fprintf(&b, "- %s: %v\n", ref, f.Err)
	}
	return b.String()
}
