// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medaudio/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db DBTX
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db DBTX) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, description, parent_id, level, sort_order, color, icon, is_active, created_at, updated_at`

// audioCountExpr counts audio filed under a category at either level.
const audioCountExpr = `(SELECT COUNT(*) FROM audios a WHERE a.category_id = c.id OR a.subcategory_id = c.id)`

// scanCategory scans categoryColumns followed by an audio count.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.ParentID, &c.Level, &c.SortOrder,
		&c.Color, &c.Icon, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.AudioCount,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns categories matching p ordered by level, sort_order and name.
// AudioCount is populated only when p.IncludeCount is set.
func (s *CategoryStore) List(ctx context.Context, p models.ListParams) ([]models.Category, error) {
	count := `0`
	if p.IncludeCount {
		count = audioCountExpr
	}
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.name, c.description, c.parent_id, c.level, c.sort_order,
		       c.color, c.icon, c.is_active, c.created_at, c.updated_at,
		       `+count+` AS audio_count
		FROM categories c
		WHERE ($1::int = 0 OR c.level = $1::int)
		  AND ($2::text = '' OR c.parent_id = $2::text)
		  AND ($3::bool OR c.is_active)
		ORDER BY c.level, c.sort_order, c.name
	`, p.Level, p.ParentID, p.IncludeInactive)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// All returns every category, including inactive ones, without counts.
// It is the input to validation and consistency checks.
func (s *CategoryStore) All(ctx context.Context) ([]models.Category, error) {
	return s.List(ctx, models.ListParams{IncludeInactive: true})
}

// FindByID retrieves a category with its audio count. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id string) (*models.Category, error) {
	row := s.db.QueryRow(ctx, `
		SELECT c.id, c.name, c.description, c.parent_id, c.level, c.sort_order,
		       c.color, c.icon, c.is_active, c.created_at, c.updated_at,
		       `+audioCountExpr+` AS audio_count
		FROM categories c
		WHERE c.id = $1
	`, id)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. An empty ID is replaced by
// a new UUID.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO categories (id, name, description, parent_id, level, sort_order, color, icon, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+categoryColumns+`, 0`,
		id, c.Name, c.Description, c.ParentID, c.Level, c.SortOrder, c.Color, c.Icon, c.IsActive,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update replaces the editable fields of a category and returns the stored
// row. Returns nil if the category does not exist.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE categories SET
			name = $2, description = $3, parent_id = $4, level = $5,
			sort_order = $6, color = $7, icon = $8, is_active = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING `+categoryColumns+`, 0`,
		c.ID, c.Name, c.Description, c.ParentID, c.Level, c.SortOrder, c.Color, c.Icon, c.IsActive,
	)
	result, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

// Usage counts what still depends on a category.
type Usage struct {
	Children int `json:"children"`
	Audio    int `json:"audio"`
}

// InUse reports whether anything depends on the category.
func (u Usage) InUse() bool { return u.Children > 0 || u.Audio > 0 }

const usageQuery = `
	SELECT (SELECT COUNT(*) FROM categories WHERE parent_id = $1),
	       (SELECT COUNT(*) FROM audios WHERE category_id = $1 OR subcategory_id = $1)`

func usage(ctx context.Context, db interface {
	QueryRow(context.Context, string, ...any) pgx.Row
}, id string) (Usage, error) {
	var u Usage
	if err := db.QueryRow(ctx, usageQuery, id).Scan(&u.Children, &u.Audio); err != nil {
		return Usage{}, fmt.Errorf("category usage: %w", err)
	}
	return u, nil
}

// Usage returns the number of subcategories and audio records referencing id.
func (s *CategoryStore) Usage(ctx context.Context, id string) (Usage, error) {
	return usage(ctx, s.db, id)
}

// Delete removes a category. Without force, a category with subcategories
// or audio is refused with ErrCategoryInUse. With force, audio references
// to the category and its subcategories are cleared and the subcategories
// are removed by the ON DELETE CASCADE constraint, all in one transaction.
// Legacy subjects are left untouched.
func (s *CategoryStore) Delete(ctx context.Context, id string, force bool) error {
	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		u, err := usage(ctx, tx, id)
		if err != nil {
			return err
		}
		if u.InUse() && !force {
			return fmt.Errorf("delete category %s: %w: %d subcategories, %d audio", id, ErrCategoryInUse, u.Children, u.Audio)
		}

		if u.Audio > 0 || u.Children > 0 {
			if _, err := tx.Exec(ctx, `
				UPDATE audios SET category_id = NULL, updated_at = NOW()
				WHERE category_id = $1 OR category_id IN (SELECT id FROM categories WHERE parent_id = $1)
			`, id); err != nil {
				return fmt.Errorf("clear audio categories: %w", err)
			}
			if _, err := tx.Exec(ctx, `
				UPDATE audios SET subcategory_id = NULL, updated_at = NOW()
				WHERE subcategory_id = $1 OR subcategory_id IN (SELECT id FROM categories WHERE parent_id = $1)
			`, id); err != nil {
				return fmt.Errorf("clear audio subcategories: %w", err)
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("delete category %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Reorder updates sort_order for multiple categories in a transaction.
func (s *CategoryStore) Reorder(ctx context.Context, items []models.ReorderItem) error {
	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		for _, item := range items {
			tag, err := tx.Exec(ctx,
				`UPDATE categories SET sort_order = $1, updated_at = NOW() WHERE id = $2`,
				item.SortOrder, item.ID)
			if err != nil {
				return fmt.Errorf("reorder category %s: %w", item.ID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("reorder category %s: %w", item.ID, ErrNotFound)
			}
		}
		return nil
	})
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CategoryStore) NextSortOrder(ctx context.Context, parentID *string) (int, error) {
	var next int
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories WHERE parent_id IS NOT DISTINCT FROM $1::text`,
		parentID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	return next, nil
}

// Stats returns aggregate counts over categories and audio.
func (s *CategoryStore) Stats(ctx context.Context) (*models.CategoryStats, error) {
	var st models.CategoryStats
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE c.level = 1),
		       COUNT(*) FILTER (WHERE c.level = 2),
		       COUNT(*) FILTER (WHERE c.is_active),
		       COUNT(*) FILTER (WHERE NOT c.is_active),
		       COUNT(*) FILTER (WHERE EXISTS (
		           SELECT 1 FROM audios a WHERE a.category_id = c.id OR a.subcategory_id = c.id)),
		       (SELECT COUNT(*) FROM audios),
		       (SELECT COUNT(*) FROM audios
		         WHERE COALESCE(category_id, '') = '' AND COALESCE(subcategory_id, '') = '')
		FROM categories c
	`).Scan(
		&st.Total, &st.Primary, &st.Secondary, &st.Active, &st.Inactive,
		&st.WithAudio, &st.TotalAudio, &st.Uncategorized,
	)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	return &st, nil
}
