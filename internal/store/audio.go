// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"medaudio/internal/models"
)

// AudioStore reads and repairs the category columns of audio records.
type AudioStore struct {
	db DBTX
}

// NewAudioStore returns a new AudioStore.
func NewAudioStore(db DBTX) *AudioStore {
	return &AudioStore{db: db}
}

const audioColumns = `id, title, subject, category_id, subcategory_id, created_at, updated_at`

func scanAudio(scanner interface{ Scan(...any) error }) (*models.Audio, error) {
	var a models.Audio
	err := scanner.Scan(&a.ID, &a.Title, &a.Subject, &a.CategoryID, &a.SubcategoryID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAudios(rows pgx.Rows) ([]models.Audio, error) {
	defer rows.Close()
	items := []models.Audio{}
	for rows.Next() {
		a, err := scanAudio(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audio: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// List returns a page of audio records, newest first.
func (s *AudioStore) List(ctx context.Context, limit, offset int) ([]models.Audio, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+audioColumns+` FROM audios ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audios: %w", err)
	}
	items, err := collectAudios(rows)
	if err != nil {
		return nil, fmt.Errorf("list audios: %w", err)
	}
	return items, nil
}

// FindByID retrieves an audio record. Returns nil if not found.
func (s *AudioStore) FindByID(ctx context.Context, id string) (*models.Audio, error) {
	row := s.db.QueryRow(ctx, `SELECT `+audioColumns+` FROM audios WHERE id = $1`, id)
	a, err := scanAudio(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find audio by id: %w", err)
	}
	return a, nil
}

// FindByIDs retrieves the audio records with the given ids. Unknown ids are
// skipped.
func (s *AudioStore) FindByIDs(ctx context.Context, ids []string) ([]models.Audio, error) {
	if len(ids) == 0 {
		return []models.Audio{}, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+audioColumns+` FROM audios WHERE id = ANY($1) ORDER BY created_at DESC, id`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("find audios by ids: %w", err)
	}
	items, err := collectAudios(rows)
	if err != nil {
		return nil, fmt.Errorf("find audios by ids: %w", err)
	}
	return items, nil
}

// UpdateCategoryFields writes the subject and category references of one
// audio record.
func (s *AudioStore) UpdateCategoryFields(ctx context.Context, a *models.Audio) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE audios SET subject = $2, category_id = $3, subcategory_id = $4, updated_at = NOW()
		WHERE id = $1
	`, a.ID, a.Subject, a.CategoryID, a.SubcategoryID)
	if err != nil {
		return fmt.Errorf("update audio %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update audio %s: %w", a.ID, ErrNotFound)
	}
	return nil
}
