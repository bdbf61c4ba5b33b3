// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"cmp"
	"slices"

	"medaudio/internal/models"
)

// TreeOption configures BuildTree.
type TreeOption func(*treeOptions)

type treeOptions struct {
	includeInactive bool
}

// IncludeInactive keeps inactive categories in the tree. By default they
// are dropped together with their children.
func IncludeInactive() TreeOption {
	return func(o *treeOptions) { o.includeInactive = true }
}

// BuildTree converts flat category rows into primary nodes with their
// secondary children attached. Siblings are ordered by sortOrder; rows that
// share a sortOrder keep their input order. Secondary rows whose parent is
// not part of the tree are left out.
func BuildTree(categories []models.Category, opts ...TreeOption) []models.TreeNode {
	var o treeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var primaries []models.Category
	children := make(map[string][]models.Category)
	for _, c := range categories {
		if !o.includeInactive && !c.IsActive {
			continue
		}
		if c.Level == models.LevelPrimary {
			primaries = append(primaries, c)
		}
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	sortSiblings(primaries)
	tree := make([]models.TreeNode, 0, len(primaries))
	for _, p := range primaries {
		kids := children[p.ID]
		sortSiblings(kids)
		node := models.TreeNode{Category: p, Children: make([]models.TreeNode, 0, len(kids))}
		for _, k := range kids {
			node.Children = append(node.Children, models.TreeNode{Category: k, Children: []models.TreeNode{}})
		}
		tree = append(tree, node)
	}
	return tree
}

func sortSiblings(cats []models.Category) {
	slices.SortStableFunc(cats, func(a, b models.Category) int {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})
}

// FlattenTree walks a tree depth-first, emitting each primary category
// immediately followed by its children.
func FlattenTree(tree []models.TreeNode) []models.Category {
	var out []models.Category
	for _, n := range tree {
		out = append(out, n.Category)
		for _, child := range n.Children {
			out = append(out, child.Category)
		}
	}
	return out
}

// FindNode returns the tree node with the given id at either level.
func FindNode(tree []models.TreeNode, id string) (*models.TreeNode, bool) {
	for i := range tree {
		if tree[i].ID == id {
			return &tree[i], true
		}
		for j := range tree[i].Children {
			if tree[i].Children[j].ID == id {
				return &tree[i].Children[j], true
			}
		}
	}
	return nil, false
}
