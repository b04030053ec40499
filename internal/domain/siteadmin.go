package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SiteAdmin is the single owner login of one website, independent of
// platform users.
type SiteAdmin struct {
	WebsiteID    uuid.UUID
	Email        string
	PasswordHash string // argon2id, salted
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SiteAdminRepository interface {
	// Upsert creates the credential or replaces email and hash in place.
	Upsert(ctx context.Context, a *SiteAdmin) error
	GetByWebsite(ctx context.Context, websiteID uuid.UUID) (*SiteAdmin, error)
	Delete(ctx context.Context, websiteID uuid.UUID) error
}
