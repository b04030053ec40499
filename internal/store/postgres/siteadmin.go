package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/folio/internal/domain"
)

type SiteAdminRepo struct {
	pool *pgxpool.Pool
}

func NewSiteAdminRepo(pool *pgxpool.Pool) *SiteAdminRepo {
	return &SiteAdminRepo{pool: pool}
}

// Upsert keys on website_id, so a website never holds two credentials.
func (r *SiteAdminRepo) Upsert(ctx context.Context, a *domain.SiteAdmin) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO site_admins (website_id, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (website_id) DO UPDATE
		    SET email = EXCLUDED.email, password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at
		 RETURNING created_at, updated_at`,
		a.WebsiteID, a.Email, a.PasswordHash, a.UpdatedAt,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("siteAdminRepo.Upsert: %w", translate(err))
	}

	return nil
}

func (r *SiteAdminRepo) GetByWebsite(ctx context.Context, websiteID uuid.UUID) (*domain.SiteAdmin, error) {
	var a domain.SiteAdmin

	err := r.pool.QueryRow(ctx,
		`SELECT website_id, email, password_hash, created_at, updated_at
		 FROM site_admins WHERE website_id = $1`,
		websiteID,
	).Scan(&a.WebsiteID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("siteAdminRepo.GetByWebsite: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("siteAdminRepo.GetByWebsite: %w", err)
	}

	return &a, nil
}

func (r *SiteAdminRepo) Delete(ctx context.Context, websiteID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM site_admins WHERE website_id = $1`, websiteID)
	if err != nil {
		return fmt.Errorf("siteAdminRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("siteAdminRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
