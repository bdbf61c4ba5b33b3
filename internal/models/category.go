// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strconv"
	"time"
)

// Category levels. The taxonomy is exactly two levels deep.
const (
	LevelPrimary   = 1
	LevelSecondary = 2
)

// Display defaults applied when a category is created without them.
const (
	DefaultColor = "#3B82F6"
	DefaultIcon  = "folder"
)

// Category is a node of the two-level audio taxonomy. Primary categories
// have no parent; secondary categories point at exactly one primary.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ParentID    *string   `json:"parentId"`
	Level       int       `json:"level"`
	SortOrder   int       `json:"sortOrder"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Virtual field populated by store methods when counts are requested.
	AudioCount int `json:"audioCount"`
}

// IsPrimary reports whether the category sits at the top of the hierarchy.
func (c *Category) IsPrimary() bool {
	return c.ParentID == nil
}

// IsSecondary reports whether the category has a parent.
func (c *Category) IsSecondary() bool {
	return c.ParentID != nil
}

// ParentIs reports whether the category's parent is id.
func (c *Category) ParentIs(id string) bool {
	return c.ParentID != nil && *c.ParentID == id
}

// LevelFor derives the hierarchy level implied by a parent pointer.
func LevelFor(parentID *string) int {
	if parentID == nil {
		return LevelPrimary
	}
	return LevelSecondary
}

// TreeNode is a primary category with its secondary children attached.
type TreeNode struct {
	Category
	Children []TreeNode `json:"children"`
}

// CategoryOption is a selectable entry for category pickers in the UI.
type CategoryOption struct {
	Value    string           `json:"value"`
	Label    string           `json:"label"`
	Level    int              `json:"level"`
	ParentID *string          `json:"parentId,omitempty"`
	Disabled bool             `json:"disabled,omitempty"`
	Children []CategoryOption `json:"children,omitempty"`
}

// CategoryPath resolves a selection into its categories and a breadcrumb
// trail of display names, primary first.
type CategoryPath struct {
	Category    *Category `json:"category,omitempty"`
	Subcategory *Category `json:"subcategory,omitempty"`
	Breadcrumb  []string  `json:"breadcrumb"`
}

// CategoryStats holds aggregate counters for the admin dashboard.
type CategoryStats struct {
	Total         int `json:"total"`
	Primary       int `json:"primary"`
	Secondary     int `json:"secondary"`
	Active        int `json:"active"`
	Inactive      int `json:"inactive"`
	WithAudio     int `json:"withAudio"`
	TotalAudio    int `json:"totalAudio"`
	Uncategorized int `json:"uncategorized"`
}

// ListParams filters category list queries. The zero value lists every
// active category without counts.
type ListParams struct {
	Level           int    // 0 = any level
	ParentID        string // "" = any parent
	IncludeInactive bool
	IncludeCount    bool
}

// CacheParams returns the parameters as a flat map used to build cache keys.
func (p ListParams) CacheParams() map[string]string {
	m := map[string]string{
		"includeCount":    strconv.FormatBool(p.IncludeCount),
		"includeInactive": strconv.FormatBool(p.IncludeInactive),
	}
	if p.Level != 0 {
		m["level"] = strconv.Itoa(p.Level)
	}
	if p.ParentID != "" {
		m["parentId"] = p.ParentID
	}
	return m
}

// CategoryInput is the editable part of a category as submitted by the admin UI.
// Update requests replace every editable field.
type CategoryInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
	Level       *int    `json:"level,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
	Color       string  `json:"color"`
	Icon        string  `json:"icon"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// ReorderItem represents a single item in a reorder request.
type ReorderItem struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sortOrder"`
}
