// Package render maps stored sections to typed, theme-aware blocks that every
// front-end draws the same way. Rendering is pure: it never touches storage.
package render

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/gosuda/folio/internal/domain"
)

// KindFallback is the block kind for section types with no decoder.
const KindFallback = "fallback"

// Theme is the per-website presentation input of the renderer.
type Theme struct {
	Palette domain.ThemePalette  `json:"palette"`
	Font    string               `json:"font,omitempty"`
	LogoURL string               `json:"logoUrl,omitempty"`
	Contact domain.ContactFields `json:"contact"`
}

// ThemeFor derives the theme of w with palette defaults applied.
func ThemeFor(w *domain.Website) Theme {
	return Theme{
		Palette: w.ThemeConfig.Colors.Resolved(),
		Font:    w.ThemeConfig.Font,
		LogoURL: w.ThemeConfig.LogoURL,
		Contact: w.Contact(),
	}
}

// Block is one renderable unit. Content holds the kind's variant struct and
// is nil for fallback blocks.
type Block struct {
	Kind        string    `json:"kind"`
	SectionID   uuid.UUID `json:"sectionId"`
	SectionType string    `json:"sectionType"`
	Order       int       `json:"order"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Content     any       `json:"content"`
}

// Decoder builds the variant for one section kind. doc is the parsed
// textContent; it may be empty or not an object.
type Decoder func(doc gjson.Result, s *domain.Section, theme Theme) any

// Renderer dispatches on the section type through a decoder registry.
type Renderer struct {
	decoders map[string]registered
}

type registered struct {
	kind   string
	decode Decoder
}

// New returns a Renderer with the built-in block kinds registered.
func New() *Renderer {
	r := &Renderer{decoders: make(map[string]registered)}
	r.Register(KindHero, decodeHero, "banner")
	r.Register(KindText, decodeText, "rich-text", "content")
	r.Register(KindTextImage, decodeTextImage, "image-text", "about")
	r.Register(KindFeatures, decodeFeatures, "feature-list", "why-us")
	r.Register(KindServices, decodeServices, "service", "service-list")
	r.Register(KindCTA, decodeCTA, "call-to-action")
	r.Register(KindStats, decodeStats, "counters")
	r.Register(KindTestimonials, decodeTestimonials, "reviews")
	r.Register(KindFAQ, decodeFAQ, "faqs")
	r.Register(KindContact, decodeContact, "contact-info")
	return r
}

// Register binds kind, and any aliases, to decode. Later registrations win.
func (r *Renderer) Register(kind string, decode Decoder, aliases ...string) {
	entry := registered{kind: kind, decode: decode}
	r.decoders[normalizeType(kind)] = entry
	for _, a := range aliases {
		r.decoders[normalizeType(a)] = entry
	}
}

// Render turns one section into a block. Unknown types yield a fallback
// block; it never fails.
func (r *Renderer) Render(s *domain.Section, theme Theme) Block {
	b := Block{
		Kind:        KindFallback,
		SectionID:   s.ID,
		SectionType: s.Type,
		Order:       s.Order,
		ImageURL:    s.ImageURL,
	}
	entry, ok := r.decoders[normalizeType(s.Type)]
	if !ok {
		return b
	}
	doc := gjson.ParseBytes(s.TextContent)
	if !doc.IsObject() {
		doc = gjson.Parse("{}")
	}
	b.Kind = entry.kind
	b.Content = entry.decode(doc, s, theme)
	return b
}

// RenderPage renders the sections of p in rendering order.
func (r *Renderer) RenderPage(p *domain.PageWithSections, theme Theme) []Block {
	sections := make([]*domain.Section, len(p.Sections))
	copy(sections, p.Sections)
	domain.SortSections(sections)

	blocks := make([]Block, 0, len(sections))
	for _, s := range sections {
		blocks = append(blocks, r.Render(s, theme))
	}
	return blocks
}

// normalizeType folds case and the separators authors used interchangeably
// ("text_image", "textImage" and "Text Image" all become "text-image").
func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	var b strings.Builder
	var prev rune
	for _, r := range t {
		c := r
		switch {
		case c == '_' || c == ' ':
			c = '-'
		case c >= 'A' && c <= 'Z':
			if (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') {
				b.WriteByte('-')
			}
			c += 'a' - 'A'
		}
		b.WriteRune(c)
		prev = r
	}
	return b.String()
}
