// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import "medaudio/internal/models"

// GetPath resolves a category selection into its categories and a
// breadcrumb. When only subcategoryID is given, its parent fills the
// Category slot. Unknown ids are skipped.
func GetPath(categories []models.Category, categoryID, subcategoryID string) models.CategoryPath {
	path := models.CategoryPath{Breadcrumb: []string{}}

	if subcategoryID != "" {
		if sub, ok := find(categories, subcategoryID); ok {
			path.Subcategory = &sub
			if categoryID == "" && sub.ParentID != nil {
				categoryID = *sub.ParentID
			}
		}
	}
	if categoryID != "" {
		if cat, ok := find(categories, categoryID); ok {
			path.Category = &cat
		}
	}

	if path.Category != nil {
		path.Breadcrumb = append(path.Breadcrumb, path.Category.Name)
	}
	if path.Subcategory != nil {
		path.Breadcrumb = append(path.Breadcrumb, path.Subcategory.Name)
	}
	return path
}
