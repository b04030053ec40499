package render

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/gosuda/folio/internal/domain"
)

const (
	KindHero         = "hero"
	KindText         = "text"
	KindTextImage    = "text-image"
	KindFeatures     = "features"
	KindServices     = "services"
	KindCTA          = "cta"
	KindStats        = "stats"
	KindTestimonials = "testimonials"
	KindFAQ          = "faq"
	KindContact      = "contact"
)

// Link is a call-to-action button. Both fields are empty when absent.
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type Hero struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
	Image      string `json:"image"`
	CTA        Link   `json:"cta"`
	Background string `json:"background"`
}

type Text struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type TextImage struct {
	Heading     string `json:"heading"`
	Description string `json:"description"`
	Image       string `json:"image"`
	// ImageLeft places the image before the text; default is after.
	ImageLeft bool `json:"imageLeft"`
	CTA       Link `json:"cta"`
}

type Item struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	Href        string `json:"href,omitempty"`
}

type Features struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
	Items      []Item `json:"items"`
}

type Services struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
	Items      []Item `json:"items"`
	CTA        Link   `json:"cta"`
}

type CTA struct {
	Heading     string `json:"heading"`
	Description string `json:"description"`
	Button      Link   `json:"button"`
	Background  string `json:"background"`
}

type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Stats struct {
	Heading string `json:"heading"`
	Items   []Stat `json:"items"`
}

type Testimonial struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
	Role   string `json:"role,omitempty"`
}

type Testimonials struct {
	Heading string        `json:"heading"`
	Items   []Testimonial `json:"items"`
}

type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FAQ struct {
	Heading string     `json:"heading"`
	Items   []Question `json:"items"`
}

type Contact struct {
	Heading      string `json:"heading"`
	Description  string `json:"description"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	WorkingHours string `json:"workingHours"`
	MapURL       string `json:"mapUrl,omitempty"`
}

// str returns the first of paths holding a non-empty string or number.
// Objects, arrays and booleans are skipped.
func str(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := doc.Get(p)
		if v.Type != gjson.String && v.Type != gjson.Number {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

func heading(doc gjson.Result) string {
	return str(doc, "heading", "title")
}

func subheading(doc gjson.Result) string {
	return str(doc, "subheading", "subtitle", "tagline")
}

func description(doc gjson.Result) string {
	return str(doc, "description", "body", "content", "text")
}

func link(doc gjson.Result) Link {
	if c := doc.Get("cta"); c.IsObject() {
		return Link{Label: str(c, "label", "text"), Href: str(c, "link", "href", "url")}
	}
	return Link{
		Label: str(doc, "ctaLabel", "ctaText", "buttonText", "cta"),
		Href:  str(doc, "ctaLink", "ctaHref", "buttonLink"),
	}
}

// list reads the first array among paths. Plain strings become items with
// only a title; non-object, non-string elements are dropped.
func list(doc gjson.Result, paths ...string) []Item {
	items := []Item{}
	array(doc, paths...).ForEach(func(_, v gjson.Result) bool {
		switch {
		case v.Type == gjson.String:
			if s := strings.TrimSpace(v.String()); s != "" {
				items = append(items, Item{Title: s})
			}
		case v.IsObject():
			it := Item{
				Title:       str(v, "title", "name", "heading"),
				Description: str(v, "description", "body", "text"),
				Icon:        str(v, "icon"),
				Href:        str(v, "link", "href", "url"),
			}
			if it.Title != "" || it.Description != "" {
				items = append(items, it)
			}
		}
		return true
	})
	return items
}

// array returns the first array among paths, or an empty result.
func array(doc gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := doc.Get(p); v.IsArray() {
			return v
		}
	}
	return gjson.Result{}
}

func image(doc gjson.Result, s *domain.Section) string {
	if v := str(doc, "image", "imageUrl"); v != "" {
		return v
	}
	return s.ImageURL
}

func decodeHero(doc gjson.Result, s *domain.Section, theme Theme) any {
	return Hero{
		Heading:    heading(doc),
		Subheading: subheading(doc),
		Image:      image(doc, s),
		CTA:        link(doc),
		Background: firstOf(str(doc, "background"), theme.Palette.Primary),
	}
}

func decodeText(doc gjson.Result, _ *domain.Section, _ Theme) any {
	return Text{Heading: heading(doc), Body: description(doc)}
}

func decodeTextImage(doc gjson.Result, s *domain.Section, _ Theme) any {
	pos := strings.ToLower(str(doc, "imagePosition", "layout"))
	return TextImage{
		Heading:     heading(doc),
		Description: description(doc),
		Image:       image(doc, s),
		ImageLeft:   pos == "left" || pos == "image-left",
		CTA:         link(doc),
	}
}

func decodeFeatures(doc gjson.Result, _ *domain.Section, _ Theme) any {
	return Features{
		Heading:    heading(doc),
		Subheading: subheading(doc),
		Items:      list(doc, "features", "items"),
	}
}

func decodeServices(doc gjson.Result, _ *domain.Section, _ Theme) any {
	return Services{
		Heading:    heading(doc),
		Subheading: subheading(doc),
		Items:      list(doc, "services", "items", "features"),
		CTA:        link(doc),
	}
}

func decodeCTA(doc gjson.Result, _ *domain.Section, theme Theme) any {
	return CTA{
		Heading:     heading(doc),
		Description: description(doc),
		Button:      link(doc),
		Background:  firstOf(str(doc, "background"), theme.Palette.Accent),
	}
}

func decodeStats(doc gjson.Result, _ *domain.Section, _ Theme) any {
	out := Stats{Heading: heading(doc), Items: []Stat{}}
	array(doc, "stats", "items").ForEach(func(_, v gjson.Result) bool {
		st := Stat{Value: str(v, "value", "number"), Label: str(v, "label", "title")}
		if st.Value != "" || st.Label != "" {
			out.Items = append(out.Items, st)
		}
		return true
	})
	return out
}

func decodeTestimonials(doc gjson.Result, _ *domain.Section, _ Theme) any {
	out := Testimonials{Heading: heading(doc), Items: []Testimonial{}}
	array(doc, "testimonials", "items").ForEach(func(_, v gjson.Result) bool {
		t := Testimonial{
			Quote:  str(v, "quote", "text", "content"),
			Author: str(v, "author", "name"),
			Role:   str(v, "role", "company"),
		}
		if t.Quote != "" {
			out.Items = append(out.Items, t)
		}
		return true
	})
	return out
}

func decodeFAQ(doc gjson.Result, _ *domain.Section, _ Theme) any {
	out := FAQ{Heading: heading(doc), Items: []Question{}}
	array(doc, "faqs", "items").ForEach(func(_, v gjson.Result) bool {
		q := Question{Question: str(v, "question", "q"), Answer: str(v, "answer", "a")}
		if q.Question != "" {
			out.Items = append(out.Items, q)
		}
		return true
	})
	return out
}

// decodeContact prefers values authored on the section and falls back to the
// website's contact data carried by the theme.
func decodeContact(doc gjson.Result, _ *domain.Section, theme Theme) any {
	return Contact{
		Heading:      heading(doc),
		Description:  description(doc),
		Phone:        firstOf(str(doc, "phone"), theme.Contact.Phone),
		Email:        firstOf(str(doc, "email"), theme.Contact.Email),
		Address:      firstOf(str(doc, "address"), theme.Contact.Address),
		WorkingHours: firstOf(str(doc, "workingHours", "hours"), theme.Contact.WorkingHours),
		MapURL:       str(doc, "mapUrl", "map"),
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
