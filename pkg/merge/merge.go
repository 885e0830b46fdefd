package merge

import (
	"fmt"
	"strconv"
	"strings"

	"ai-catalog-admin-be/pkg/commerce"
	"ai-catalog-admin-be/pkg/store"
)

// Input carries everything the merge needs. Merge never mutates it.
type Input struct {
	Facts           map[string]string
	Generated       *store.StructuredContent
	Existing        *commerce.Product // nil unless editing
	Images          []store.UploadedImage
	KnownCategories []commerce.Category
	Status          string // commerce.StatusPublish or commerce.StatusDraft
}

// Merge reconciles raw facts, AI-generated content and (on edit) the
// existing catalog entry into one canonical payload. Field resolution order
// is: generated value if non-empty, else the existing entry's field, else a
// default derived from the raw facts.
//
// The function is deterministic and side-effect free: identical inputs
// always produce an identical payload, so it can back both the preview and
// the final save without drift.
func Merge(in Input) *commerce.ProductPayload {
	gen := in.Generated
	if gen == nil {
		gen = &store.StructuredContent{}
	}

	name := resolveName(in.Facts, gen, in.Existing)

	payload := &commerce.ProductPayload{
		Name:             name,
		Slug:             resolveSlug(name, gen, in.Existing),
		Status:           in.Status,
		RegularPrice:     resolvePrice(in.Facts, gen, in.Existing),
		Description:      resolveDescription(in.Facts, gen, in.Existing),
		ShortDescription: resolveShortDescription(in.Facts, gen, in.Existing),
		Categories:       resolveCategories(gen, in.Existing, in.KnownCategories),
		Tags:             resolveTags(in.Facts, gen, in.Existing),
		Attributes:       resolveAttributes(in.Facts, gen, in.Existing),
		Images:           resolveImages(in.Images, gen, name),
	}
	return payload
}

func resolveName(facts map[string]string, gen *store.StructuredContent, existing *commerce.Product) string {
	if gen.Name != "" {
		return gen.Name
	}
	if existing != nil && existing.Name != "" {
		return existing.Name
	}
	return facts[store.FactProductName]
}

func resolveSlug(name string, gen *store.StructuredContent, existing *commerce.Product) string {
	if gen.Slug != "" {
		return Slugify(gen.Slug)
	}
	if existing != nil && existing.Slug != "" {
		return existing.Slug
	}
	return Slugify(name)
}

func resolvePrice(facts map[string]string, gen *store.StructuredContent, existing *commerce.Product) string {
	if gen.RegularPrice != "" {
		if p, ok := NormalizePrice(gen.RegularPrice); ok {
			return p
		}
	}
	if minor := facts[store.FactPriceMinor]; minor != "" {
		if v, err := strconv.ParseInt(minor, 10, 64); err == nil {
			return PriceFromMinor(v)
		}
	}
	if existing != nil && existing.RegularPrice != "" {
		if p, ok := NormalizePrice(existing.RegularPrice); ok {
			return p
		}
	}
	return "0.00"
}

func resolveDescription(facts map[string]string, gen *store.StructuredContent, existing *commerce.Product) string {
	if gen.Description != "" {
		return gen.Description
	}
	if existing != nil && existing.Description != "" {
		return existing.Description
	}
	name := facts[store.FactProductName]
	material := facts[store.FactMaterial]
	if name != "" && material != "" {
		return fmt.Sprintf("%s made of %s.", name, material)
	}
	return name
}

func resolveShortDescription(facts map[string]string, gen *store.StructuredContent, existing *commerce.Product) string {
	if gen.ShortDescription != "" {
		return gen.ShortDescription
	}
	if existing != nil && existing.ShortDescription != "" {
		return existing.ShortDescription
	}
	return facts[store.FactLocalizedName]
}

// resolveCategories maps generated category names onto the known category
// list. A case-insensitive match resolves to {id}; anything else becomes a
// bare {name} so the backend creates it. Ambiguity is never an error.
func resolveCategories(gen *store.StructuredContent, existing *commerce.Product, known []commerce.Category) []commerce.CategoryRef {
	if len(gen.Categories) > 0 {
		refs := make([]commerce.CategoryRef, 0, len(gen.Categories))
		for _, name := range gen.Categories {
			if match, ok := matchCategory(name, known); ok {
				refs = append(refs, commerce.CategoryRef{Id: match.Id})
			} else {
				refs = append(refs, commerce.CategoryRef{Name: name})
			}
		}
		return refs
	}
	if existing != nil && len(existing.Categories) > 0 {
		refs := make([]commerce.CategoryRef, 0, len(existing.Categories))
		for _, c := range existing.Categories {
			refs = append(refs, commerce.CategoryRef{Id: c.Id})
		}
		return refs
	}
	return nil
}

func matchCategory(name string, known []commerce.Category) (commerce.Category, bool) {
	for _, c := range known {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(c.Name)) {
			return c, true
		}
	}
	return commerce.Category{}, false
}

func resolveTags(facts map[string]string, gen *store.StructuredContent, existing *commerce.Product) []commerce.TagRef {
	if len(gen.Tags) > 0 {
		refs := make([]commerce.TagRef, 0, len(gen.Tags))
		for _, t := range gen.Tags {
			refs = append(refs, commerce.TagRef{Name: t})
		}
		return refs
	}
	if existing != nil && len(existing.Tags) > 0 {
		return existing.Tags
	}
	if keywords := facts[store.FactFocusKeywords]; keywords != "" {
		var refs []commerce.TagRef
		for _, k := range strings.Split(keywords, ",") {
			if k = strings.TrimSpace(k); k != "" {
				refs = append(refs, commerce.TagRef{Name: k})
			}
		}
		return refs
	}
	return nil
}

func resolveAttributes(facts map[string]string, gen *store.StructuredContent, existing *commerce.Product) []commerce.AttributeRef {
	if len(gen.Attributes) > 0 {
		refs := make([]commerce.AttributeRef, 0, len(gen.Attributes))
		for _, a := range gen.Attributes {
			refs = append(refs, commerce.AttributeRef{
				Name:    a.Name,
				Visible: true,
				Options: []string{a.Value},
			})
		}
		return refs
	}
	if existing != nil && len(existing.Attributes) > 0 {
		return existing.Attributes
	}
	if material := facts[store.FactMaterial]; material != "" {
		return []commerce.AttributeRef{{
			Name:    "Material",
			Visible: true,
			Options: []string{material},
		}}
	}
	return nil
}

// resolveImages attaches alt text per position: the AI-generated alt wins,
// then the image's own alt, then the resolved display name.
func resolveImages(images []store.UploadedImage, gen *store.StructuredContent, displayName string) []commerce.ImageRef {
	if len(images) == 0 {
		return nil
	}
	refs := make([]commerce.ImageRef, 0, len(images))
	for i, img := range images {
		alt := displayName
		if img.AltText != "" {
			alt = img.AltText
		}
		if i < len(gen.ImageAlts) && gen.ImageAlts[i] != "" {
			alt = gen.ImageAlts[i]
		}
		refs = append(refs, commerce.ImageRef{
			Id:  img.MediaId,
			Alt: alt,
		})
	}
	return refs
}

// PriceFromMinor formats minor currency units as the backend's two-digit
// decimal string. Negative inputs clamp to zero.
func PriceFromMinor(minor int64) string {
	if minor < 0 {
		minor = 0
	}
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// NormalizePrice parses a decimal price string and reformats it with exactly
// two fraction digits. Returns false when the input is not a valid
// non-negative decimal.
func NormalizePrice(s string) (string, bool) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return "", false
	}
	// Round half up in minor units to avoid float drift on re-merge.
	minor := int64(v*100 + 0.5)
	return PriceFromMinor(minor), true
}

// Slugify lowercases and dash-joins a name into a URL slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
