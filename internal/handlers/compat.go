// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medaudio/internal/compat"
	"medaudio/internal/models"
)

// Page sizes for the audio compatibility endpoints.
const (
	DefaultAudioPage = 100
	MaxAudioPage     = 1000
)

// AudioRepository reads and repairs audio category fields.
// *store.AudioStore satisfies it.
type AudioRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.Audio, error)
	FindByID(ctx context.Context, id string) (*models.Audio, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Audio, error)
	UpdateCategoryFields(ctx context.Context, a *models.Audio) error
}

// CategorySource loads the full category set, including inactive rows.
type CategorySource interface {
	All(ctx context.Context) ([]models.Category, error)
}

// Compat groups the endpoints that reconcile legacy subjects with the
// relational category fields of audio records.
type Compat struct {
	audios     AudioRepository
	categories CategorySource
	recorder   Recorder
	opts       []compat.Option
}

// NewCompat creates a new Compat handler group. rec may be nil; opts are
// passed to every adapter built per request.
func NewCompat(audios AudioRepository, categories CategorySource, rec Recorder, opts ...compat.Option) *Compat {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Compat{audios: audios, categories: categories, recorder: rec, opts: opts}
}

func (c *Compat) adapter(ctx context.Context) (*compat.Adapter, error) {
	cats, err := c.categories.All(ctx)
	if err != nil {
		return nil, err
	}
	return compat.NewAdapter(cats, c.opts...), nil
}

// Report handles GET /api/admin/audios/compatibility?limit=&offset=.
func (c *Compat) Report(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", DefaultAudioPage, 1, MaxAudioPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0, 0, math.MaxInt32)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ad, err := c.adapter(r.Context())
	if err != nil {
		writeInternal(w, r, "load categories", err)
		return
	}
	audios, err := c.audios.List(r.Context(), limit, offset)
	if err != nil {
		writeInternal(w, r, "list audios", err)
		return
	}

	report := ad.Report(audios)
	c.recorder.SetInconsistent(report.Inconsistent)
	writeData(w, http.StatusOK, report)
}

// Check handles GET /api/admin/audios/{id}/consistency.
func (c *Compat) Check(w http.ResponseWriter, r *http.Request) {
	audio, err := c.audios.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeInternal(w, r, "find audio", err)
		return
	}
	if audio == nil {
		writeError(w, http.StatusNotFound, "Audio not found.")
		return
	}
	ad, err := c.adapter(r.Context())
	if err != nil {
		writeInternal(w, r, "load categories", err)
		return
	}
	writeData(w, http.StatusOK, ad.Validate(*audio))
}

type fixRequest struct {
	IDs []string `json:"ids"`
}

// Fix handles POST /api/admin/audios/fix. Without ids the first page of
// audio records is repaired. Each record is saved on its own; failures are
// reported per record.
func (c *Compat) Fix(w http.ResponseWriter, r *http.Request) {
	var req fixRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		audios []models.Audio
		err    error
	)
	if len(req.IDs) == 0 {
		audios, err = c.audios.List(r.Context(), DefaultAudioPage, 0)
	} else {
		audios, err = c.audios.FindByIDs(r.Context(), req.IDs)
	}
	if err != nil {
		writeInternal(w, r, "load audios", err)
		return
	}

	ad, err := c.adapter(r.Context())
	if err != nil {
		writeInternal(w, r, "load categories", err)
		return
	}

	res := ad.BatchFix(r.Context(), audios, func(ctx context.Context, fr compat.FixResult) error {
		a := models.Audio{ID: fr.AudioID}
		fr.Apply(&a)
		return c.audios.UpdateCategoryFields(ctx, &a)
	})
	c.recorder.AudioFixes(res.Changed, res.Failed)

	slog.Info("audio category fix", "records", len(audios), "changed", res.Changed, "failed", res.Failed)
	writeData(w, http.StatusOK, res)
}
