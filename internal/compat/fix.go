// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package compat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medaudio/internal/models"
)

// ErrOrphanedReference is returned by Fix when an audio record references
// a category id that does not exist. Such records need a manual decision.
var ErrOrphanedReference = errors.New("orphaned category reference")

// FixResult describes the repair of one audio record.
type FixResult struct {
	AudioID string `json:"audioId"`
	Before  Fields `json:"before"`
	After   Fields `json:"after"`
	Changed bool   `json:"changed"`
}

// Apply writes the repaired fields onto audio.
func (r FixResult) Apply(audio *models.Audio) {
	audio.Subject = r.After.Subject
	audio.CategoryID = models.StringPtr(r.After.Selection.CategoryID)
	audio.SubcategoryID = models.StringPtr(r.After.Selection.SubcategoryID)
}

// Fix computes the synchronized fields for audio. It does not persist
// anything.
func (a *Adapter) Fix(audio models.Audio) (FixResult, error) {
	if c := a.Validate(audio); c.Orphaned {
		var msgs []string
		for _, i := range c.Issues {
			if i.Field == fieldCategoryID || i.Field == fieldSubcategoryID {
				msgs = append(msgs, i.Message)
			}
		}
		return FixResult{}, fmt.Errorf("fix audio %s: %w: %s", audio.ID, ErrOrphanedReference, strings.Join(msgs, " "))
	}

	before := FieldsOf(audio)
	after := a.Sync(before)
	return FixResult{
		AudioID: audio.ID,
		Before:  before,
		After:   after,
		Changed: after != before,
	}, nil
}

// FixError records a record that could not be repaired.
type FixError struct {
	AudioID string `json:"audioId"`
	Error   string `json:"error"`
}

// BatchFixResult summarizes a batch repair. Fixed counts records processed
// without error, Changed those whose fields were rewritten.
type BatchFixResult struct {
	Fixed   int         `json:"fixed"`
	Changed int         `json:"changed"`
	Failed  int         `json:"failed"`
	Results []FixResult `json:"results"`
	Errors  []FixError  `json:"errors"`
}

// SaveFunc persists a changed record.
type SaveFunc func(ctx context.Context, r FixResult) error

// BatchFix repairs each record independently. A record that cannot be
// fixed, or whose save fails, is listed in Errors and the batch goes on.
// save is called only for changed records and may be nil.
func (a *Adapter) BatchFix(ctx context.Context, audios []models.Audio, save SaveFunc) BatchFixResult {
	out := BatchFixResult{Results: []FixResult{}, Errors: []FixError{}}
	for _, audio := range audios {
		if err := ctx.Err(); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, FixError{AudioID: audio.ID, Error: err.Error()})
			continue
		}

		r, err := a.Fix(audio)
		if err == nil && r.Changed && save != nil {
			err = save(ctx, r)
		}
		if err != nil {
			out.Failed++
			out.Errors = append(out.Errors, FixError{AudioID: audio.ID, Error: err.Error()})
			continue
		}

		out.Fixed++
		if r.Changed {
			out.Changed++
		}
		out.Results = append(out.Results, r)
	}
	return out
}
