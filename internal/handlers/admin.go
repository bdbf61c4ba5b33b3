// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"medaudio/internal/cache"
	"medaudio/internal/models"
	"medaudio/internal/store"
	"medaudio/internal/taxonomy"
)

// CategoryWriter is the store side of category writes. *store.CategoryStore
// satisfies it.
type CategoryWriter interface {
	All(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id string, force bool) error
	Reorder(ctx context.Context, items []models.ReorderItem) error
	NextSortOrder(ctx context.Context, parentID *string) (int, error)
}

// CacheService is the cache manager as seen by the admin handlers.
type CacheService interface {
	Invalidate(ctx context.Context, op cache.Operation, id string)
	Warmup(ctx context.Context) error
	Health() cache.Health
	CacheStats() []cache.Stats
}

// Recorder receives admin events for metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	ValidationFailed(codes ...string)
	SetInconsistent(n int)
	AudioFixes(changed, failed int)
}

type nopRecorder struct{}

func (nopRecorder) ValidationFailed(...string) {}
func (nopRecorder) SetInconsistent(int)        {}
func (nopRecorder) AudioFixes(int, int)        {}

// Admin groups the category write and cache management endpoints.
type Admin struct {
	categories CategoryWriter
	cache      CacheService
	recorder   Recorder
	siblingCap int
}

// NewAdmin creates a new Admin handler group. rec may be nil.
func NewAdmin(categories CategoryWriter, cacheSvc CacheService, rec Recorder) *Admin {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Admin{
		categories: categories,
		cache:      cacheSvc,
		recorder:   rec,
		siblingCap: taxonomy.DefaultSiblingCap,
	}
}

// SetSiblingCap overrides the recommended number of siblings per parent.
func (a *Admin) SetSiblingCap(n int) {
	if n > 0 {
		a.siblingCap = n
	}
}

// Create handles POST /api/admin/categories.
func (a *Admin) Create(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := a.categories.All(r.Context())
	if err != nil {
		writeInternal(w, r, "load categories", err)
		return
	}
	res := taxonomy.Validate(in, existing, taxonomy.WithSiblingCap(a.siblingCap))
	if !res.IsValid {
		a.rejected(w, res)
		return
	}

	c := fromInput(in, nil)
	if in.SortOrder == nil {
		next, err := a.categories.NextSortOrder(r.Context(), c.ParentID)
		if err != nil {
			writeInternal(w, r, "next sort order", err)
			return
		}
		c.SortOrder = next
	}

	created, err := a.categories.Create(r.Context(), c)
	if err != nil {
		writeInternal(w, r, "create category", err)
		return
	}
	a.cache.Invalidate(r.Context(), cache.OpCreate, created.ID)

	slog.Info("category created", "id", created.ID, "name", created.Name, "level", created.Level)
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: created, Warnings: res.Warnings})
}

// Update handles PUT /api/admin/categories/{id}. The body replaces every
// editable field; an omitted sortOrder or isActive keeps the stored value.
func (a *Admin) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in models.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := a.categories.All(r.Context())
	if err != nil {
		writeInternal(w, r, "load categories", err)
		return
	}
	current := findCategory(existing, id)
	if current == nil {
		writeError(w, http.StatusNotFound, "Category not found.")
		return
	}

	res := taxonomy.Validate(in, existing, taxonomy.ForUpdate(id), taxonomy.WithSiblingCap(a.siblingCap))
	if !res.IsValid {
		a.rejected(w, res)
		return
	}

	updated, err := a.categories.Update(r.Context(), fromInput(in, current))
	if err != nil {
		writeInternal(w, r, "update category", err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Category not found.")
		return
	}
	a.cache.Invalidate(r.Context(), cache.OpUpdate, id)

	slog.Info("category updated", "id", id, "name", updated.Name)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: updated, Warnings: res.Warnings})
}

// Delete handles DELETE /api/admin/categories/{id}. A category that still
// has subcategories or audio is refused unless force=true.
func (a *Admin) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	force, err := queryBool(r, "force", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = a.categories.Delete(r.Context(), id, force)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Category not found.")
		return
	case errors.Is(err, store.ErrCategoryInUse):
		writeError(w, http.StatusConflict,
			"Category still has subcategories or audio. Retry with force=true to detach them.")
		return
	case err != nil:
		writeInternal(w, r, "delete category", err)
		return
	}
	a.cache.Invalidate(r.Context(), cache.OpDelete, id)

	slog.Info("category deleted", "id", id, "force", force)
	writeData(w, http.StatusOK, map[string]string{"id": id})
}

type reorderRequest struct {
	Items []models.ReorderItem `json:"items"`
}

// Reorder handles POST /api/admin/categories/reorder.
func (a *Admin) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items must not be empty")
		return
	}
	seen := make(map[string]bool, len(req.Items))
	for i, item := range req.Items {
		if strings.TrimSpace(item.ID) == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("items[%d].id is required", i))
			return
		}
		if seen[item.ID] {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("category %s listed twice", item.ID))
			return
		}
		seen[item.ID] = true
	}

	err := a.categories.Reorder(r.Context(), req.Items)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "One or more categories were not found.")
		return
	}
	if err != nil {
		writeInternal(w, r, "reorder categories", err)
		return
	}
	a.cache.Invalidate(r.Context(), cache.OpReorder, "")
	writeData(w, http.StatusOK, map[string]int{"updated": len(req.Items)})
}

// Consistency handles GET /api/admin/categories/consistency.
func (a *Admin) Consistency(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.All(r.Context())
	if err != nil {
		writeInternal(w, r, "load categories", err)
		return
	}
	writeData(w, http.StatusOK, taxonomy.ValidateHierarchy(cats))
}

// CacheHealth handles GET /api/admin/cache/health.
func (a *Admin) CacheHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, a.cache.Health())
}

// CacheStats handles GET /api/admin/cache/stats.
func (a *Admin) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, a.cache.CacheStats())
}

// CacheWarmup handles POST /api/admin/cache/warmup.
func (a *Admin) CacheWarmup(w http.ResponseWriter, r *http.Request) {
	if err := a.cache.Warmup(r.Context()); err != nil {
		writeInternal(w, r, "cache warmup", err)
		return
	}
	writeData(w, http.StatusOK, a.cache.CacheStats())
}

func (a *Admin) rejected(w http.ResponseWriter, res taxonomy.Result) {
	codes := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		codes = append(codes, string(e.Code))
	}
	a.recorder.ValidationFailed(codes...)
	writeInvalid(w, res)
}

// fromInput builds the row to store. current is nil on create.
func fromInput(in models.CategoryInput, current *models.Category) *models.Category {
	c := &models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		ParentID:    taxonomy.NormalizeID(in.ParentID),
		Color:       in.Color,
		Icon:        strings.TrimSpace(in.Icon),
		IsActive:    true,
	}
	c.Level = models.LevelFor(c.ParentID)
	if current != nil {
		c.ID = current.ID
		c.SortOrder = current.SortOrder
		c.IsActive = current.IsActive
	}
	if c.Color == "" {
		c.Color = models.DefaultColor
	}
	if c.Icon == "" {
		c.Icon = models.DefaultIcon
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	return c
}

func findCategory(cats []models.Category, id string) *models.Category {
	for i := range cats {
		if cats[i].ID == id {
			return &cats[i]
		}
	}
	return nil
}
