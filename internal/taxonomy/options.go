// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import "medaudio/internal/models"

// OptionFilter narrows the categories offered in a picker.
type OptionFilter struct {
	Level      int  // 0 = both levels
	ActiveOnly bool // when false, inactive categories are listed as disabled
}

// optionSeparator joins parent and child names in flat option labels.
const optionSeparator = " / "

// GenerateOptions returns a flat option list in tree order. Secondary
// options are labelled "Parent / Child".
func GenerateOptions(categories []models.Category, f OptionFilter) []models.CategoryOption {
	out := []models.CategoryOption{}
	for _, node := range optionTree(categories, f) {
		if f.Level != models.LevelSecondary {
			out = append(out, option(node.Category, node.Name))
		}
		if f.Level == models.LevelPrimary {
			continue
		}
		for _, child := range node.Children {
			out = append(out, option(child.Category, node.Name+optionSeparator+child.Name))
		}
	}
	return out
}

// GenerateHierarchicalOptions returns primary options with their secondary
// options nested under Children. A level filter of 1 omits the children;
// a level filter of 2 keeps only primaries that have children and marks
// them disabled so they act as group headers.
func GenerateHierarchicalOptions(categories []models.Category, f OptionFilter) []models.CategoryOption {
	out := []models.CategoryOption{}
	for _, node := range optionTree(categories, f) {
		opt := option(node.Category, node.Name)
		if f.Level != models.LevelPrimary {
			for _, child := range node.Children {
				opt.Children = append(opt.Children, option(child.Category, child.Name))
			}
		}
		if f.Level == models.LevelSecondary {
			if len(opt.Children) == 0 {
				continue
			}
			opt.Disabled = true
		}
		out = append(out, opt)
	}
	return out
}

func optionTree(categories []models.Category, f OptionFilter) []models.TreeNode {
	if f.ActiveOnly {
		return BuildTree(categories)
	}
	return BuildTree(categories, IncludeInactive())
}

func option(c models.Category, label string) models.CategoryOption {
	return models.CategoryOption{
		Value:    c.ID,
		Label:    label,
		Level:    c.Level,
		ParentID: c.ParentID,
		Disabled: !c.IsActive,
	}
}
