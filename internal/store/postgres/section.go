package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/folio/internal/domain"
)

// reorderAttempts bounds retries of a reorder that lost a serialization race.
const reorderAttempts = 3

type SectionRepo struct {
	pool *pgxpool.Pool

	// afterReorderUpdate runs after each row update inside the reorder
	// transaction. Tests use it to inject failures.
	afterReorderUpdate func(step int) error
}

func NewSectionRepo(pool *pgxpool.Pool) *SectionRepo {
	return &SectionRepo{pool: pool}
}

const sectionColumns = `id, page_id, type, text_content, image_url, sort_order, created_at, updated_at`

const sectionOrderBy = `ORDER BY sort_order, created_at, id`

func scanSection(row pgx.Row, s *domain.Section) error {
	var content []byte
	if err := row.Scan(&s.ID, &s.PageID, &s.Type, &content, &s.ImageURL, &s.Order, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	s.TextContent = json.RawMessage(content)
	return nil
}

func (r *SectionRepo) Create(ctx context.Context, s *domain.Section) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sections (`+sectionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.PageID, s.Type, []byte(s.TextContent), s.ImageURL, s.Order, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sectionRepo.Create: %w", translate(err))
	}

	return nil
}

func (r *SectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Section, error) {
	var s domain.Section

	err := scanSection(r.pool.QueryRow(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE id = $1`, id,
	), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sectionRepo.GetByID: %w", domain.ErrSectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sectionRepo.GetByID: %w", err)
	}

	return &s, nil
}

func (r *SectionRepo) Update(ctx context.Context, s *domain.Section) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE sections SET type = $1, text_content = $2, image_url = $3, sort_order = $4, updated_at = now()
		 WHERE id = $5
		 RETURNING updated_at`,
		s.Type, []byte(s.TextContent), s.ImageURL, s.Order, s.ID,
	).Scan(&s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("sectionRepo.Update: %w", domain.ErrSectionNotFound)
	}
	if err != nil {
		return fmt.Errorf("sectionRepo.Update: %w", err)
	}

	return nil
}

func (r *SectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("sectionRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sectionRepo.Delete: %w", domain.ErrSectionNotFound)
	}

	return nil
}

func (r *SectionRepo) ListByPage(ctx context.Context, pageID uuid.UUID) ([]*domain.Section, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE page_id = $1 `+sectionOrderBy,
		pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("sectionRepo.ListByPage: %w", err)
	}
	defer rows.Close()

	return scanSections(rows, "sectionRepo.ListByPage")
}

func (r *SectionRepo) NextOrder(ctx context.Context, pageID uuid.UUID) (int, error) {
	var next int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM sections WHERE page_id = $1`,
		pageID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("sectionRepo.NextOrder: %w", err)
	}

	return next, nil
}

// Reorder rewrites sort_order for every section of the page in one
// transaction. The page's rows are locked first, so concurrent reorders
// serialize; a failure at any step rolls back to the previous ordering.
func (r *SectionRepo) Reorder(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) ([]*domain.Section, error) {
	var (
		result []*domain.Section
		err    error
	)
	for range reorderAttempts {
		result, err = r.reorderOnce(ctx, pageID, ids)
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("sectionRepo.Reorder: %w", err)
	}

	return result, nil
}

func (r *SectionRepo) reorderOnce(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) ([]*domain.Section, error) {
	var result []*domain.Section

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pages WHERE id = $1)`, pageID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrPageNotFound
		}

		rows, err := tx.Query(ctx,
			`SELECT `+sectionColumns+` FROM sections WHERE page_id = $1 `+sectionOrderBy+` FOR UPDATE`,
			pageID,
		)
		if err != nil {
			return err
		}
		current, err := scanSections(rows, "lock")
		rows.Close()
		if err != nil {
			return err
		}

		plan, err := domain.PlanReorder(current, ids)
		if err != nil {
			return err
		}

		for step, s := range current {
			order := plan[s.ID]
			if _, err := tx.Exec(ctx,
				`UPDATE sections SET sort_order = $1, updated_at = now() WHERE id = $2`,
				order, s.ID,
			); err != nil {
				return err
			}
			if r.afterReorderUpdate != nil {
				if err := r.afterReorderUpdate(step); err != nil {
					return err
				}
			}
			s.Order = order
		}

		domain.SortSections(current)
		result = current
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	return result, nil
}

func scanSections(rows pgx.Rows, caller string) ([]*domain.Section, error) {
	var sections []*domain.Section
	for rows.Next() {
		var s domain.Section
		if err := scanSection(rows, &s); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		sections = append(sections, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return sections, nil
}
