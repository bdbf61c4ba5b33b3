// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package compat

import (
	"fmt"

	"medaudio/internal/models"
	"medaudio/internal/taxonomy"
)

// Check is the consistency verdict for one audio record.
type Check struct {
	AudioID      string                `json:"audioId"`
	Title        string                `json:"title,omitempty"`
	IsConsistent bool                  `json:"isConsistent"`
	Issues       []taxonomy.FieldError `json:"issues"`
	Suggestions  []string              `json:"suggestions"`
	// Orphaned is set when a reference names a category that does not exist.
	Orphaned bool `json:"orphaned"`
	// Expected holds the fields Sync would produce.
	Expected Fields `json:"expected"`
}

const (
	fieldSubject       = "subject"
	fieldCategoryID    = "categoryId"
	fieldSubcategoryID = "subcategoryId"
)

func orphanMessage(field string) string {
	return fmt.Sprintf("%s references a category that does not exist.", field)
}

func (c *Check) orphan(field, suggestion string) {
	c.Orphaned = true
	c.issue(field, orphanMessage(field), suggestion)
}

func (c *Check) issue(field, msg, suggestion string) {
	c.Issues = append(c.Issues, taxonomy.FieldError{
		Code:    taxonomy.CodeDataInconsistency,
		Field:   field,
		Message: msg,
	})
	if suggestion != "" {
		c.Suggestions = append(c.Suggestions, suggestion)
	}
}

// Validate inspects an audio record without changing it. It reports
// orphaned and misplaced references, a subcategory filed under the wrong
// parent, a subject that differs from the one the references produce,
// and a legacy subject that matches no category.
func (a *Adapter) Validate(audio models.Audio) Check {
	f := FieldsOf(audio)
	c := Check{
		AudioID:     audio.ID,
		Title:       audio.Title,
		Issues:      []taxonomy.FieldError{},
		Suggestions: []string{},
		Expected:    a.Sync(f),
	}
	sel := f.Selection

	cat, catOK := a.byID[sel.CategoryID]
	sub, subOK := a.byID[sel.SubcategoryID]

	if sel.CategoryID != "" && !catOK {
		c.orphan(fieldCategoryID,
			"Clear categoryId or assign an existing category.")
	}
	if sel.SubcategoryID != "" && !subOK {
		c.orphan(fieldSubcategoryID,
			"Clear subcategoryId or assign an existing subcategory.")
	}
	if catOK && cat.ParentID != nil {
		c.issue(fieldCategoryID,
			fmt.Sprintf("categoryId points at secondary category %q.", cat.Name),
			"Move the id to subcategoryId and set categoryId to its parent.")
	}
	if subOK && sub.ParentID == nil {
		c.issue(fieldSubcategoryID,
			fmt.Sprintf("subcategoryId points at primary category %q.", sub.Name),
			"Move the id to categoryId.")
	}
	if catOK && subOK && sub.ParentID != nil && cat.ParentID == nil && *sub.ParentID != cat.ID {
		c.issue(fieldSubcategoryID,
			fmt.Sprintf("Subcategory %q does not belong to category %q.", sub.Name, cat.Name),
			"Set categoryId to the subcategory's parent.")
	}

	switch {
	case audio.HasRelationalFields():
		if !c.Orphaned && audio.Subject != c.Expected.Subject {
			c.issue(fieldSubject,
				fmt.Sprintf("Subject %q differs from the category name %q.", audio.Subject, c.Expected.Subject),
				"Regenerate subject from the category fields.")
		}
	case audio.Subject != "" && audio.Subject != Uncategorized:
		if c.Expected.Selection.IsEmpty() {
			c.issue(fieldSubject,
				fmt.Sprintf("Subject %q does not match any category.", audio.Subject),
				"Add an alias for this subject or assign a category manually.")
		} else {
			c.Suggestions = append(c.Suggestions, "Populate categoryId and subcategoryId from the subject.")
		}
	}

	c.IsConsistent = len(c.Issues) == 0
	return c
}

// Report summarizes a batch of audio records for migration tracking.
type Report struct {
	Total          int     `json:"total"`
	WithNewFields  int     `json:"withNewFields"`
	WithLegacyOnly int     `json:"withLegacyOnly"`
	Uncategorized  int     `json:"uncategorized"`
	Inconsistent   int     `json:"inconsistent"`
	Items          []Check `json:"items"`
}

// Report validates every record. Items lists only inconsistent records.
func (a *Adapter) Report(audios []models.Audio) Report {
	r := Report{Total: len(audios), Items: []Check{}}
	for _, audio := range audios {
		switch {
		case audio.HasRelationalFields():
			r.WithNewFields++
		case audio.IsLegacyOnly() && audio.Subject != Uncategorized:
			r.WithLegacyOnly++
		default:
			r.Uncategorized++
		}

		if c := a.Validate(audio); !c.IsConsistent {
			r.Inconsistent++
			r.Items = append(r.Items, c)
		}
	}
	return r
}
