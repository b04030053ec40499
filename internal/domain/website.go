package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Website is a tenant: one firm's independently branded site.
type Website struct {
	ID             uuid.UUID   `json:"id"`
	Slug           string      `json:"slug"`
	Name           string      `json:"name"`
	Domain         string      `json:"domain"`
	ThemeConfig    ThemeConfig `json:"themeConfig"`
	IsActive       bool        `json:"isActive"`
	IsAdminEnabled bool        `json:"isAdminEnabled"`
	Phone          string      `json:"phone"`
	Email          string      `json:"email"`
	Address        string      `json:"address"`
	WorkingHours   string      `json:"workingHours"`
	RevalidateURL  string      `json:"revalidateUrl,omitempty"`

	// RevalidateSecret holds the vault-encrypted webhook secret.
	RevalidateSecret string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ThemeConfig parameterizes the shared section renderer per website.
type ThemeConfig struct {
	Colors  ThemePalette  `json:"colors" required:"false"`
	Font    string        `json:"font,omitempty"`
	LogoURL string        `json:"logoUrl,omitempty"`
	Contact ContactFields `json:"contact" required:"false"`
}

// ThemePalette is the color palette. Empty fields fall back to DefaultPalette.
type ThemePalette struct {
	Primary    string `json:"primary,omitempty"`
	Secondary  string `json:"secondary,omitempty"`
	Accent     string `json:"accent,omitempty"`
	Background string `json:"background,omitempty"`
	Text       string `json:"text,omitempty"`
}

// ContactFields override the website's own contact data when non-empty.
type ContactFields struct {
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Address      string `json:"address,omitempty"`
	WorkingHours string `json:"workingHours,omitempty"`
}

// DefaultPalette is used for any palette entry a website leaves unset.
var DefaultPalette = ThemePalette{
	Primary:    "#0b3d91",
	Secondary:  "#1f2937",
	Accent:     "#f59e0b",
	Background: "#ffffff",
	Text:       "#111827",
}

// Resolved returns the palette with defaults applied.
func (p ThemePalette) Resolved() ThemePalette {
	return ThemePalette{
		Primary:    firstNonEmpty(p.Primary, DefaultPalette.Primary),
		Secondary:  firstNonEmpty(p.Secondary, DefaultPalette.Secondary),
		Accent:     firstNonEmpty(p.Accent, DefaultPalette.Accent),
		Background: firstNonEmpty(p.Background, DefaultPalette.Background),
		Text:       firstNonEmpty(p.Text, DefaultPalette.Text),
	}
}

// Contact returns the effective contact data: theme overrides first, then the
// website's own fields.
func (w *Website) Contact() ContactFields {
	o := w.ThemeConfig.Contact
	return ContactFields{
		Phone:        firstNonEmpty(o.Phone, w.Phone),
		Email:        firstNonEmpty(o.Email, w.Email),
		Address:      firstNonEmpty(o.Address, w.Address),
		WorkingHours: firstNonEmpty(o.WorkingHours, w.WorkingHours),
	}
}

// NewWebsite creates an active Website with validated required fields.
func NewWebsite(slug, name, domainName string) (*Website, error) {
	slug = strings.TrimSpace(slug)
	if !ValidSlug(slug) {
		return nil, Invalid("slug", "must be lowercase alphanumeric with hyphens")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Invalid("name", "is required")
	}
	now := time.Now().UTC()
	return &Website{
		ID:             uuid.New(),
		Slug:           slug,
		Name:           name,
		Domain:         strings.TrimSpace(domainName),
		IsActive:       true,
		IsAdminEnabled: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// WebsiteStatus is the access-gate view polled by edge middleware.
type WebsiteStatus struct {
	IsActive       bool `json:"isActive"`
	IsAdminEnabled bool `json:"isAdminEnabled"`
}

// Status returns the gate flags for w.
func (w *Website) Status() WebsiteStatus {
	return WebsiteStatus{IsActive: w.IsActive, IsAdminEnabled: w.IsAdminEnabled}
}

type WebsiteRepository interface {
	Create(ctx context.Context, w *Website) error
	GetByID(ctx context.Context, id uuid.UUID) (*Website, error)
	GetBySlug(ctx context.Context, slug string) (*Website, error)
	// Update rejects a slug change with ErrConflict once any page references
	// the website.
	Update(ctx context.Context, w *Website) error
	// Delete cascades to pages, sections and the site-admin credential.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Website, error)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
