package store

import "time"

// Phase is the explicit dialogue phase of a conversation. Every turn is
// handled by an exhaustive switch over this value; no phase is ever inferred
// from which optional fields happen to be populated.
type Phase string

const (
	PhaseCollectingFacts  Phase = "COLLECTING_FACTS"
	PhaseGenerating       Phase = "GENERATING"
	PhaseAwaitingDecision Phase = "AWAITING_DECISION"
	PhasePersisting       Phase = "PERSISTING"
	PhaseDone             Phase = "DONE"
)

// Fact keys collected during slot filling. All five must be present before
// the dialogue leaves COLLECTING_FACTS.
const (
	FactProductName   = "productName"
	FactMaterial      = "material"
	FactPriceMinor    = "priceMinor"
	FactLocalizedName = "localizedName"
	FactFocusKeywords = "focusKeywords"
)

// RequiredFacts lists fact keys in prompt order.
var RequiredFacts = []string{
	FactProductName,
	FactMaterial,
	FactPriceMinor,
	FactLocalizedName,
	FactFocusKeywords,
}

// ImageRef is one inbound image reference awaiting ingestion. Exactly one of
// Data, DataURI or URL is set, except for pass-through references which carry
// a MediaId assigned on a previous upload.
type ImageRef struct {
	Data     []byte `json:"data,omitempty"`
	DataURI  string `json:"data_uri,omitempty"`
	URL      string `json:"url,omitempty"`
	MediaId  int64  `json:"media_id,omitempty"`
	MediaURL string `json:"media_url,omitempty"`
	AltText  string `json:"alt_text,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Uploaded reports whether this reference already lives on the media host.
func (r ImageRef) Uploaded() bool {
	return r.MediaId != 0
}

// UploadedImage is the result of one media-host upload. MediaId is assigned
// by the host and immutable once set.
type UploadedImage struct {
	MediaId int64  `json:"media_id"`
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// Attribute is one AI-suggested name/value product attribute.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StructuredContent is the structured output of one AI generation call.
// Every field is optional; merge resolution fills gaps from the existing
// entry (on edit) or from the raw facts.
type StructuredContent struct {
	Name             string      `json:"name,omitempty"`
	Slug             string      `json:"slug,omitempty"`
	Description      string      `json:"description,omitempty"`
	ShortDescription string      `json:"short_description,omitempty"`
	Tags             []string    `json:"tags,omitempty"`
	Categories       []string    `json:"categories,omitempty"`
	Attributes       []Attribute `json:"attributes,omitempty"`
	ImageAlts        []string    `json:"image_alts,omitempty"`
	RegularPrice     string      `json:"regular_price,omitempty"`
}

// ConversationState is the single record per chat session. It is owned
// exclusively by the dialogue controller and mutated only under the
// per-session turn lock.
type ConversationState struct {
	SessionId      string             `json:"session_id"`
	Phase          Phase              `json:"phase"`
	Facts          map[string]string  `json:"facts"`
	PendingImages  []ImageRef         `json:"pending_images,omitempty"`
	UploadedImages []UploadedImage    `json:"uploaded_images,omitempty"`
	Generated      *StructuredContent `json:"generated,omitempty"`
	EditTargetId   *int64             `json:"edit_target_id,omitempty"`
	EditSeeded     bool               `json:"edit_seeded,omitempty"`
	LastError      string             `json:"last_error,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewConversationState returns the fresh default state for a session.
func NewConversationState(sessionId string) *ConversationState {
	return &ConversationState{
		SessionId: sessionId,
		Phase:     PhaseCollectingFacts,
		Facts:     make(map[string]string),
		UpdatedAt: time.Now(),
	}
}

// MissingFacts returns the required fact keys not yet filled, in prompt order.
func (s *ConversationState) MissingFacts() []string {
	var missing []string
	for _, key := range RequiredFacts {
		if s.Facts[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// HasImages reports whether at least one image is attached or already
// uploaded for this session.
func (s *ConversationState) HasImages() bool {
	return len(s.PendingImages) > 0 || len(s.UploadedImages) > 0
}

// ResetProduct clears the per-product fields after a successful persist so
// the session is ready for a fresh product. The session itself survives.
func (s *ConversationState) ResetProduct() {
	s.Facts = make(map[string]string)
	s.PendingImages = nil
	s.UploadedImages = nil
	s.Generated = nil
	s.EditTargetId = nil
	s.EditSeeded = false
	s.LastError = ""
}
