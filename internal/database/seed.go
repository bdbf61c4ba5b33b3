// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SeedDB is the part of a pgx pool Seed needs.
type SeedDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SeedCategory is one primary category of the default taxonomy.
type SeedCategory struct {
	Name     string
	Color    string
	Icon     string
	Children []string
}

// DefaultTaxonomy is inserted into an empty development database.
var DefaultTaxonomy = []SeedCategory{
	{Name: "心血管", Color: "#EF4444", Icon: "heart", Children: []string{"心律失常", "高血压", "冠心病"}},
	{Name: "神经", Color: "#8B5CF6", Icon: "brain", Children: []string{"脑卒中", "癫痫"}},
	{Name: "呼吸", Color: "#06B6D4", Icon: "wind", Children: []string{"哮喘", "慢阻肺"}},
	{Name: "消化", Color: "#F59E0B", Icon: "folder"},
	{Name: "内分泌", Color: "#10B981", Icon: "folder", Children: []string{"糖尿病"}},
	{Name: "儿科", Color: "#3B82F6", Icon: "baby"},
}

const seedInsert = `
	INSERT INTO categories (id, name, parent_id, level, sort_order, color, icon)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Seed populates an empty categories table with the given taxonomy.
// It does nothing when any category exists.
func Seed(ctx context.Context, db SeedDB, taxonomy []SeedCategory) error {
	var count int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	inserted, err := insertTaxonomy(ctx, tx, taxonomy)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}
	slog.Info("database seeded with default categories", "count", inserted)
	return nil
}

func insertTaxonomy(ctx context.Context, tx pgx.Tx, taxonomy []SeedCategory) (int, error) {
	inserted := 0
	for i, p := range taxonomy {
		parentID := uuid.NewString()
		if _, err := tx.Exec(ctx, seedInsert, parentID, p.Name, nil, 1, i, p.Color, p.Icon); err != nil {
			return 0, fmt.Errorf("seed insert %s: %w", p.Name, err)
		}
		inserted++
		for j, child := range p.Children {
			if _, err := tx.Exec(ctx, seedInsert, uuid.NewString(), child, parentID, 2, j, p.Color, "folder"); err != nil {
				return 0, fmt.Errorf("seed insert %s: %w", child, err)
			}
			inserted++
		}
	}
	return inserted, nil
}
