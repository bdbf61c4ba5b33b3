// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package compat bridges the legacy free-text subject on audio records and
// the relational categoryId/subcategoryId pair.
//
// The two shapes are Subject (what older ingestion paths wrote) and
// Selection (what the taxonomy uses). Adapter.Sync is the single place
// where one is derived from the other.
package compat

import (
	"strings"

	"medaudio/internal/models"
)

// Uncategorized is the subject written for audio without a category.
const Uncategorized = "未分类"

// DefaultAliases maps historical subject spellings to current category names.
var DefaultAliases = map[string]string{
	"心内科":   "心血管",
	"心血管内科": "心血管",
	"神经内科":  "神经",
	"呼吸内科":  "呼吸",
	"消化内科":  "消化",
	"内分泌科":  "内分泌",
	"儿科学":   "儿科",
}

// Selection is a relational category reference.
type Selection struct {
	CategoryID    string `json:"categoryId,omitempty"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
}

// IsEmpty reports whether neither id is set.
func (s Selection) IsEmpty() bool {
	return s.CategoryID == "" && s.SubcategoryID == ""
}

// Fields is the category-related triple of an audio record.
type Fields struct {
	Subject   string    `json:"subject"`
	Selection Selection `json:"selection"`
}

// FieldsOf extracts the category fields of an audio record.
func FieldsOf(a models.Audio) Fields {
	f := Fields{Subject: a.Subject}
	if a.CategoryID != nil {
		f.Selection.CategoryID = strings.TrimSpace(*a.CategoryID)
	}
	if a.SubcategoryID != nil {
		f.Selection.SubcategoryID = strings.TrimSpace(*a.SubcategoryID)
	}
	return f
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithAliases replaces the alias table.
func WithAliases(aliases map[string]string) Option {
	return func(a *Adapter) { a.aliases = aliases }
}

// StrictMatching disables substring matching; subjects then resolve only
// by exact name or alias.
func StrictMatching() Option {
	return func(a *Adapter) { a.fuzzy = false }
}

// Adapter maps between subjects and selections for one snapshot of the
// category set. It is immutable and safe for concurrent use.
type Adapter struct {
	cats    []models.Category
	byID    map[string]models.Category
	aliases map[string]string
	fuzzy   bool
}

// NewAdapter indexes categories. The slice order decides ties between
// equally good matches, so callers pass it in display order.
func NewAdapter(categories []models.Category, opts ...Option) *Adapter {
	a := &Adapter{
		cats:    categories,
		byID:    make(map[string]models.Category, len(categories)),
		aliases: DefaultAliases,
		fuzzy:   true,
	}
	for _, c := range categories {
		a.byID[c.ID] = c
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Lookup returns the category with the given id.
func (a *Adapter) Lookup(id string) (models.Category, bool) {
	c, ok := a.byID[id]
	return c, ok
}

// SubjectFromSelection returns the subcategory name, else the category
// name, else Uncategorized.
func (a *Adapter) SubjectFromSelection(sel Selection) string {
	if c, ok := a.byID[sel.SubcategoryID]; ok && sel.SubcategoryID != "" {
		return c.Name
	}
	if c, ok := a.byID[sel.CategoryID]; ok && sel.CategoryID != "" {
		return c.Name
	}
	return Uncategorized
}

// SelectionFromSubject resolves a legacy subject. It tries, in order, an
// exact name match, an unambiguous substring match in either direction,
// and the alias table. An unresolvable subject yields an empty Selection.
func (a *Adapter) SelectionFromSubject(subject string) Selection {
	s := normalize(subject)
	if s == "" || s == normalize(Uncategorized) {
		return Selection{}
	}

	if c, ok := a.exact(s); ok {
		return a.selectionFor(c)
	}
	if a.fuzzy {
		if c, ok := a.substring(s); ok {
			return a.selectionFor(c)
		}
	}
	if target, ok := a.aliases[strings.TrimSpace(subject)]; ok {
		if c, ok := a.exact(normalize(target)); ok {
			return a.selectionFor(c)
		}
	}
	return Selection{}
}

// selectionFor builds the selection that designates c.
func (a *Adapter) selectionFor(c models.Category) Selection {
	if c.ParentID != nil {
		return Selection{CategoryID: *c.ParentID, SubcategoryID: c.ID}
	}
	return Selection{CategoryID: c.ID}
}

// exact finds a category whose name equals s. When several categories
// share the name, a primary wins over secondaries; otherwise the first in
// slice order.
func (a *Adapter) exact(s string) (models.Category, bool) {
	var found []models.Category
	for _, c := range a.cats {
		if normalize(c.Name) == s {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		return models.Category{}, false
	}
	for _, c := range found {
		if c.ParentID == nil {
			return c, true
		}
	}
	return found[0], true
}

// substring matches category names contained in s or containing s. The
// match is accepted only when it is unambiguous: a single candidate, or
// candidates from one primary family that include exactly one secondary.
func (a *Adapter) substring(s string) (models.Category, bool) {
	var found []models.Category
	for _, c := range a.cats {
		name := normalize(c.Name)
		if name == "" {
			continue
		}
		if strings.Contains(s, name) || strings.Contains(name, s) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return models.Category{}, false
	case 1:
		return found[0], true
	}

	family := a.familyOf(found[0])
	var secondary *models.Category
	for i := range found {
		if a.familyOf(found[i]) != family {
			return models.Category{}, false
		}
		if found[i].ParentID != nil {
			if secondary != nil {
				return models.Category{}, false
			}
			secondary = &found[i]
		}
	}
	if secondary == nil {
		return models.Category{}, false
	}
	return *secondary, true
}

func (a *Adapter) familyOf(c models.Category) string {
	if c.ParentID != nil {
		return *c.ParentID
	}
	return c.ID
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
