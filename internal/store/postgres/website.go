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

type WebsiteRepo struct {
	pool *pgxpool.Pool
}

func NewWebsiteRepo(pool *pgxpool.Pool) *WebsiteRepo {
	return &WebsiteRepo{pool: pool}
}

const websiteColumns = `id, slug, name, domain, theme_config, is_active, is_admin_enabled,
	phone, email, address, working_hours, revalidate_url, revalidate_secret, created_at, updated_at`

func scanWebsite(row pgx.Row, w *domain.Website) error {
	return row.Scan(
		&w.ID, &w.Slug, &w.Name, &w.Domain, &w.ThemeConfig, &w.IsActive, &w.IsAdminEnabled,
		&w.Phone, &w.Email, &w.Address, &w.WorkingHours, &w.RevalidateURL, &w.RevalidateSecret,
		&w.CreatedAt, &w.UpdatedAt,
	)
}

func (r *WebsiteRepo) Create(ctx context.Context, w *domain.Website) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO websites (`+websiteColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		w.ID, w.Slug, w.Name, w.Domain, w.ThemeConfig, w.IsActive, w.IsAdminEnabled,
		w.Phone, w.Email, w.Address, w.WorkingHours, w.RevalidateURL, w.RevalidateSecret,
		w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("websiteRepo.Create: %w", translate(err))
	}

	return nil
}

func (r *WebsiteRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Website, error) {
	var w domain.Website

	err := scanWebsite(r.pool.QueryRow(ctx,
		`SELECT `+websiteColumns+` FROM websites WHERE id = $1`, id,
	), &w)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("websiteRepo.GetByID: %w", domain.ErrWebsiteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("websiteRepo.GetByID: %w", err)
	}

	return &w, nil
}

func (r *WebsiteRepo) GetBySlug(ctx context.Context, slug string) (*domain.Website, error) {
	var w domain.Website

	err := scanWebsite(r.pool.QueryRow(ctx,
		`SELECT `+websiteColumns+` FROM websites WHERE slug = $1`, slug,
	), &w)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("websiteRepo.GetBySlug: %w", domain.ErrWebsiteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("websiteRepo.GetBySlug: %w", err)
	}

	return &w, nil
}

// Update writes every mutable column. The slug only changes while no page
// references the website; the guard runs in the same statement.
func (r *WebsiteRepo) Update(ctx context.Context, w *domain.Website) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE websites SET slug = $1, name = $2, domain = $3, theme_config = $4, is_active = $5,
		        is_admin_enabled = $6, phone = $7, email = $8, address = $9, working_hours = $10,
		        revalidate_url = $11, revalidate_secret = $12, updated_at = now()
		 WHERE id = $13
		   AND (slug = $1 OR NOT EXISTS (SELECT 1 FROM pages WHERE website_id = $13))
		 RETURNING updated_at`,
		w.Slug, w.Name, w.Domain, w.ThemeConfig, w.IsActive,
		w.IsAdminEnabled, w.Phone, w.Email, w.Address, w.WorkingHours,
		w.RevalidateURL, w.RevalidateSecret, w.ID,
	).Scan(&w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, w.ID); getErr != nil {
			return fmt.Errorf("websiteRepo.Update: %w", getErr)
		}
		return fmt.Errorf("websiteRepo.Update: slug is locked by existing pages: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("websiteRepo.Update: %w", translate(err))
	}

	return nil
}

func (r *WebsiteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM websites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("websiteRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("websiteRepo.Delete: %w", domain.ErrWebsiteNotFound)
	}

	return nil
}

func (r *WebsiteRepo) List(ctx context.Context, limit, offset int) ([]*domain.Website, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+websiteColumns+` FROM websites
		 ORDER BY created_at, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("websiteRepo.List: %w", err)
	}
	defer rows.Close()

	var websites []*domain.Website
	for rows.Next() {
		var w domain.Website
		if err := scanWebsite(rows, &w); err != nil {
			return nil, fmt.Errorf("websiteRepo.List: scan: %w", err)
		}
		websites = append(websites, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("websiteRepo.List: rows: %w", err)
	}

	return websites, nil
}
