package merge

import (
	"reflect"
	"testing"

	"ai-catalog-admin-be/pkg/commerce"
	"ai-catalog-admin-be/pkg/store"
)

func fullInput() Input {
	return Input{
		Facts: map[string]string{
			store.FactProductName:   "Walnut Desk Organizer",
			store.FactMaterial:      "walnut wood",
			store.FactPriceMinor:    "500000",
			store.FactLocalizedName: "Schreibtisch-Organizer",
			store.FactFocusKeywords: "desk organizer, walnut, office",
		},
		Generated: &store.StructuredContent{
			Name:             "Walnut Desk Organizer – Handcrafted",
			Slug:             "walnut-desk-organizer",
			Description:      "A handcrafted walnut organizer.",
			ShortDescription: "Handcrafted walnut organizer.",
			Tags:             []string{"desk organizer", "walnut"},
			Categories:       []string{"Office", "Handmade"},
			Attributes:       []store.Attribute{{Name: "Material", Value: "Walnut"}},
			ImageAlts:        []string{"organizer on a desk"},
		},
		Images: []store.UploadedImage{
			{MediaId: 11, URL: "https://media.example.com/11.jpg"},
			{MediaId: 12, URL: "https://media.example.com/12.jpg", AltText: "side view"},
		},
		KnownCategories: []commerce.Category{{Id: 7, Name: "office"}},
		Status:          commerce.StatusPublish,
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	a := Merge(fullInput())
	b := Merge(fullInput())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical inputs produced different payloads:\n%+v\n%+v", a, b)
	}
}

func TestMergeResolvesGeneratedContent(t *testing.T) {
	payload := Merge(fullInput())

	if payload.Name != "Walnut Desk Organizer – Handcrafted" {
		t.Errorf("Name = %q", payload.Name)
	}
	if payload.Slug != "walnut-desk-organizer" {
		t.Errorf("Slug = %q", payload.Slug)
	}
	if payload.Status != commerce.StatusPublish {
		t.Errorf("Status = %q", payload.Status)
	}
	if payload.RegularPrice != "5000.00" {
		t.Errorf("RegularPrice = %q, want fact-derived 5000.00", payload.RegularPrice)
	}

	// "Office" matches the known category case-insensitively -> id ref;
	// "Handmade" is unknown -> name ref for backend-side creation.
	want := []commerce.CategoryRef{{Id: 7}, {Name: "Handmade"}}
	if !reflect.DeepEqual(payload.Categories, want) {
		t.Errorf("Categories = %+v, want %+v", payload.Categories, want)
	}
}

func TestMergeImageAltResolution(t *testing.T) {
	payload := Merge(fullInput())

	if len(payload.Images) != 2 {
		t.Fatalf("Images = %d, want 2", len(payload.Images))
	}
	// First image: generated alt wins.
	if payload.Images[0].Alt != "organizer on a desk" {
		t.Errorf("Images[0].Alt = %q", payload.Images[0].Alt)
	}
	// Second image: no generated alt at this position, its own alt wins.
	if payload.Images[1].Alt != "side view" {
		t.Errorf("Images[1].Alt = %q", payload.Images[1].Alt)
	}

	// No generated alt, no own alt: display name.
	in := fullInput()
	in.Generated.ImageAlts = nil
	in.Images = []store.UploadedImage{{MediaId: 11}}
	payload = Merge(in)
	if payload.Images[0].Alt != payload.Name {
		t.Errorf("fallback alt = %q, want %q", payload.Images[0].Alt, payload.Name)
	}
}

func TestMergeFactFallbacksWithoutGeneratedContent(t *testing.T) {
	in := fullInput()
	in.Generated = nil
	payload := Merge(in)

	if payload.Name != "Walnut Desk Organizer" {
		t.Errorf("Name = %q", payload.Name)
	}
	if payload.Slug != "walnut-desk-organizer" {
		t.Errorf("Slug = %q", payload.Slug)
	}
	if payload.ShortDescription != "Schreibtisch-Organizer" {
		t.Errorf("ShortDescription = %q", payload.ShortDescription)
	}
	if payload.Description != "Walnut Desk Organizer made of walnut wood." {
		t.Errorf("Description = %q", payload.Description)
	}

	wantTags := []commerce.TagRef{{Name: "desk organizer"}, {Name: "walnut"}, {Name: "office"}}
	if !reflect.DeepEqual(payload.Tags, wantTags) {
		t.Errorf("Tags = %+v, want %+v", payload.Tags, wantTags)
	}
	wantAttrs := []commerce.AttributeRef{{Name: "Material", Visible: true, Options: []string{"walnut wood"}}}
	if !reflect.DeepEqual(payload.Attributes, wantAttrs) {
		t.Errorf("Attributes = %+v, want %+v", payload.Attributes, wantAttrs)
	}
}

func TestMergePrefersExistingEntryOverFacts(t *testing.T) {
	in := fullInput()
	in.Generated = &store.StructuredContent{} // regeneration produced nothing
	in.Existing = &commerce.Product{
		Name:             "Old Name",
		Slug:             "old-name",
		RegularPrice:     "19.9",
		Description:      "Old description.",
		ShortDescription: "Old short.",
		Categories:       []commerce.Category{{Id: 3, Name: "Legacy"}},
	}
	payload := Merge(in)

	if payload.Name != "Old Name" {
		t.Errorf("Name = %q", payload.Name)
	}
	if payload.Description != "Old description." {
		t.Errorf("Description = %q", payload.Description)
	}
	// Generated price missing -> the fact still outranks the existing entry.
	if payload.RegularPrice != "5000.00" {
		t.Errorf("RegularPrice = %q", payload.RegularPrice)
	}
}

func TestPriceFromMinor(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{500000, "5000.00"},
		{4999, "49.99"},
		{5, "0.05"},
		{0, "0.00"},
		{-100, "0.00"},
	}
	for _, tt := range tests {
		if got := PriceFromMinor(tt.minor); got != tt.want {
			t.Errorf("PriceFromMinor(%d) = %q, want %q", tt.minor, got, tt.want)
		}
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"19.9", "19.90", true},
		{"19.999", "20.00", true},
		{" 5000 ", "5000.00", true},
		{"0", "0.00", true},
		{"-1", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePrice(tt.in)
		if ok != tt.valid || got != tt.want {
			t.Errorf("NormalizePrice(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.valid)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Walnut Desk Organizer", "walnut-desk-organizer"},
		{"  Café—Crème 2000!  ", "caf-cr-me-2000"},
		{"already-a-slug", "already-a-slug"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
