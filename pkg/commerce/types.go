package commerce

// Category is one known catalog category on the commerce backend.
type Category struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// CategoryRef references a category on the outgoing payload. Either Id (an
// existing category) or Name (backend creates it) is set, never both.
type CategoryRef struct {
	Id   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TagRef carries the tag id on fetched entries; outgoing payloads send a
// bare name and the backend resolves or creates it.
type TagRef struct {
	Id   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// AttributeRef is one product attribute on the outgoing payload.
type AttributeRef struct {
	Name    string   `json:"name"`
	Visible bool     `json:"visible"`
	Options []string `json:"options"`
}

// ImageRef is one image on the outgoing payload. Id points at an existing
// media record; Src is used when the backend should sideload the image.
type ImageRef struct {
	Id  int64  `json:"id,omitempty"`
	Src string `json:"src,omitempty"`
	Alt string `json:"alt,omitempty"`
}

// ProductPayload is the merged payload sent to the commerce backend.
// RegularPrice follows the backend's decimal-string convention with two
// fraction digits and is never negative.
type ProductPayload struct {
	Name             string         `json:"name"`
	Slug             string         `json:"slug,omitempty"`
	Status           string         `json:"status"`
	RegularPrice     string         `json:"regular_price"`
	Description      string         `json:"description,omitempty"`
	ShortDescription string         `json:"short_description,omitempty"`
	Categories       []CategoryRef  `json:"categories,omitempty"`
	Tags             []TagRef       `json:"tags,omitempty"`
	Attributes       []AttributeRef `json:"attributes,omitempty"`
	Images           []ImageRef     `json:"images,omitempty"`
}

// Product is a catalog entry as returned by the commerce backend.
type Product struct {
	Id               int64          `json:"id"`
	Name             string         `json:"name"`
	Slug             string         `json:"slug"`
	Status           string         `json:"status"`
	RegularPrice     string         `json:"regular_price"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"short_description"`
	Categories       []Category     `json:"categories"`
	Tags             []TagRef       `json:"tags"`
	Attributes       []AttributeRef `json:"attributes"`
	Images           []ProductImage `json:"images"`
	Permalink        string         `json:"permalink,omitempty"`
}

// ProductImage is one image on a fetched catalog entry.
type ProductImage struct {
	Id  int64  `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Statuses accepted by the backend for new entries.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
)

// HasCompleteContent reports whether an existing entry already carries the
// generated fields an edit could reuse without regenerating.
func (p *Product) HasCompleteContent() bool {
	return p.Name != "" && p.Description != "" && p.RegularPrice != ""
}
