package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/folio/internal/domain"
)

type PageRepo struct {
	pool *pgxpool.Pool
}

func NewPageRepo(pool *pgxpool.Pool) *PageRepo {
	return &PageRepo{pool: pool}
}

const pageColumns = `id, website_id, slug, title, status, published_at, created_at, updated_at`

func scanPage(row pgx.Row, p *domain.Page) error {
	return row.Scan(&p.ID, &p.WebsiteID, &p.Slug, &p.Title, &p.Status, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PageRepo) Create(ctx context.Context, p *domain.Page) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO pages (`+pageColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.WebsiteID, p.Slug, p.Title, p.Status, p.PublishedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("pageRepo.Create: %w", translate(err))
	}

	return nil
}

func (r *PageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Page, error) {
	var p domain.Page

	err := scanPage(r.pool.QueryRow(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE id = $1`, id,
	), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("pageRepo.GetByID: %w", domain.ErrPageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("pageRepo.GetByID: %w", err)
	}

	return &p, nil
}

func (r *PageRepo) GetBySlug(ctx context.Context, websiteID uuid.UUID, slug string) (*domain.Page, error) {
	var p domain.Page

	err := scanPage(r.pool.QueryRow(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE website_id = $1 AND slug = $2`,
		websiteID, slug,
	), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("pageRepo.GetBySlug: %w", domain.ErrPageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("pageRepo.GetBySlug: %w", err)
	}

	return &p, nil
}

// Update writes slug, title and status. Setting PUBLISHED here stamps
// published_at the same way Publish does.
func (r *PageRepo) Update(ctx context.Context, p *domain.Page) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE pages SET slug = $1, title = $2, status = $3,
		        published_at = CASE WHEN $3 = 'PUBLISHED' THEN COALESCE(published_at, now()) ELSE published_at END,
		        updated_at = now()
		 WHERE id = $4
		 RETURNING published_at, updated_at`,
		p.Slug, p.Title, string(p.Status), p.ID,
	).Scan(&p.PublishedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("pageRepo.Update: %w", domain.ErrPageNotFound)
	}
	if err != nil {
		return fmt.Errorf("pageRepo.Update: %w", translate(err))
	}

	return nil
}

// Publish relies on the row lock taken by UPDATE: a concurrent publish
// re-reads the committed row, so COALESCE keeps the first timestamp.
func (r *PageRepo) Publish(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Page, error) {
	var p domain.Page

	err := scanPage(r.pool.QueryRow(ctx,
		`UPDATE pages SET status = 'PUBLISHED', published_at = COALESCE(published_at, $2), updated_at = $2
		 WHERE id = $1
		 RETURNING `+pageColumns,
		id, now,
	), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("pageRepo.Publish: %w", domain.ErrPageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("pageRepo.Publish: %w", err)
	}

	return &p, nil
}

func (r *PageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pageRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pageRepo.Delete: %w", domain.ErrPageNotFound)
	}

	return nil
}

func (r *PageRepo) List(ctx context.Context, websiteID uuid.UUID, status domain.PageStatus) ([]*domain.Page, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pageColumns+` FROM pages
		 WHERE website_id = $1 AND ($2 = '' OR status = $2)
		 ORDER BY created_at, id
		 LIMIT 1000`,
		websiteID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("pageRepo.List: %w", err)
	}
	defer rows.Close()

	var pages []*domain.Page
	for rows.Next() {
		var p domain.Page
		if err := scanPage(rows, &p); err != nil {
			return nil, fmt.Errorf("pageRepo.List: scan: %w", err)
		}
		pages = append(pages, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pageRepo.List: rows: %w", err)
	}

	return pages, nil
}
