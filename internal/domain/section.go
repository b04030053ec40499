package domain

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Section is an ordered, typed content block of a page. TextContent is kept
// verbatim; its shape depends on Type and is interpreted by the renderer.
type Section struct {
	ID          uuid.UUID       `json:"id"`
	PageID      uuid.UUID       `json:"pageId"`
	Type        string          `json:"type"`
	TextContent json.RawMessage `json:"textContent"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewSection creates a Section. A nil content document is stored as {}.
func NewSection(pageID uuid.UUID, sectionType string, content json.RawMessage, imageURL string, order int) (*Section, error) {
	if pageID == uuid.Nil {
		return nil, Invalid("pageId", "is required")
	}
	sectionType = strings.TrimSpace(sectionType)
	if sectionType == "" {
		return nil, Invalid("type", "is required")
	}
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	if order < 0 {
		return nil, Invalid("order", "must not be negative")
	}
	now := time.Now().UTC()
	return &Section{
		ID:          uuid.New(),
		PageID:      pageID,
		Type:        sectionType,
		TextContent: content,
		ImageURL:    strings.TrimSpace(imageURL),
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetContent replaces the content document after validating it is a JSON
// object.
func (s *Section) SetContent(content json.RawMessage) error {
	normalized, err := normalizeContent(content)
	if err != nil {
		return err
	}
	s.TextContent = normalized
	return nil
}

func normalizeContent(content json.RawMessage) (json.RawMessage, error) {
	if len(content) == 0 || string(content) == "null" {
		return json.RawMessage("{}"), nil
	}
	var probe map[string]any
	if err := json.Unmarshal(content, &probe); err != nil {
		return nil, Invalid("textContent", "must be a JSON object")
	}
	return content, nil
}

// SortSections orders sections for rendering: order ascending, ties broken
// by creation time, then id.
func SortSections(sections []*Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		a, b := sections[i], sections[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// PlanReorder maps each of the page's sections to its new order value.
// Listed ids come first, in the given sequence; sections not listed keep
// their relative order after them. Unknown or repeated ids are rejected.
func PlanReorder(current []*Section, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	if len(ids) == 0 {
		return nil, Invalid("sectionIds", "must not be empty")
	}
	byID := make(map[uuid.UUID]*Section, len(current))
	for _, s := range current {
		byID[s.ID] = s
	}

	plan := make(map[uuid.UUID]int, len(current))
	for i, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, Invalid("sectionIds", "section "+id.String()+" does not belong to the page")
		}
		if _, dup := plan[id]; dup {
			return nil, Invalid("sectionIds", "section "+id.String()+" listed twice")
		}
		plan[id] = i + 1
	}

	rest := make([]*Section, 0, len(current)-len(plan))
	for _, s := range current {
		if _, ok := plan[s.ID]; !ok {
			rest = append(rest, s)
		}
	}
	SortSections(rest)
	next := len(plan) + 1
	for _, s := range rest {
		plan[s.ID] = next
		next++
	}

	return plan, nil
}

type SectionRepository interface {
	Create(ctx context.Context, s *Section) error
	GetByID(ctx context.Context, id uuid.UUID) (*Section, error)
	Update(ctx context.Context, s *Section) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByPage returns sections in rendering order (see SortSections).
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Section, error)
	// NextOrder returns one past the highest order on the page.
	NextOrder(ctx context.Context, pageID uuid.UUID) (int, error)
	// Reorder applies PlanReorder for ids as a single all-or-nothing write
	// and returns the sections in their new order.
	Reorder(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) ([]*Section, error)
}
