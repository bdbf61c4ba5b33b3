// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medaudio/internal/models"
	"medaudio/internal/taxonomy"
)

// CategoryReader serves cached category reads. *cache.Manager satisfies it.
type CategoryReader interface {
	Categories(ctx context.Context, p models.ListParams) ([]models.Category, error)
	Tree(ctx context.Context, includeCount bool) ([]models.TreeNode, error)
	Stats(ctx context.Context) (models.CategoryStats, error)
	Category(ctx context.Context, id string) (*models.Category, error)
}

// Public groups the read-only category endpoints.
type Public struct {
	reader CategoryReader
}

// NewPublic creates a new Public handler group.
func NewPublic(reader CategoryReader) *Public {
	return &Public{reader: reader}
}

// List handles GET /api/categories. Query parameters: level (1 or 2),
// parentId, active (default true; false includes inactive categories) and
// includeCount.
func (p *Public) List(w http.ResponseWriter, r *http.Request) {
	level, err := queryLevel(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	activeOnly, err := queryBool(r, "active", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	withCount, err := queryBool(r, "includeCount", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cats, err := p.reader.Categories(r.Context(), models.ListParams{
		Level:           level,
		ParentID:        r.URL.Query().Get("parentId"),
		IncludeInactive: !activeOnly,
		IncludeCount:    withCount,
	})
	if err != nil {
		writeInternal(w, r, "list categories", err)
		return
	}
	writeData(w, http.StatusOK, cats)
}

// Tree handles GET /api/categories/tree.
func (p *Public) Tree(w http.ResponseWriter, r *http.Request) {
	withCount, err := queryBool(r, "includeCount", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tree, err := p.reader.Tree(r.Context(), withCount)
	if err != nil {
		writeInternal(w, r, "category tree", err)
		return
	}
	writeData(w, http.StatusOK, tree)
}

// Stats handles GET /api/categories/stats.
func (p *Public) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := p.reader.Stats(r.Context())
	if err != nil {
		writeInternal(w, r, "category stats", err)
		return
	}
	writeData(w, http.StatusOK, st)
}

// Options handles GET /api/categories/options. With active=false inactive
// categories are listed as disabled; hierarchical=true nests secondaries
// under their primary.
func (p *Public) Options(w http.ResponseWriter, r *http.Request) {
	level, err := queryLevel(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	activeOnly, err := queryBool(r, "active", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	nested, err := queryBool(r, "hierarchical", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cats, err := p.reader.Categories(r.Context(), models.ListParams{IncludeInactive: !activeOnly})
	if err != nil {
		writeInternal(w, r, "category options", err)
		return
	}

	f := taxonomy.OptionFilter{Level: level, ActiveOnly: activeOnly}
	if nested {
		writeData(w, http.StatusOK, taxonomy.GenerateHierarchicalOptions(cats, f))
		return
	}
	writeData(w, http.StatusOK, taxonomy.GenerateOptions(cats, f))
}

// Path handles GET /api/categories/path?categoryId=&subcategoryId=.
func (p *Public) Path(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cats, err := p.reader.Categories(r.Context(), models.ListParams{IncludeInactive: true})
	if err != nil {
		writeInternal(w, r, "category path", err)
		return
	}
	writeData(w, http.StatusOK, taxonomy.GetPath(cats, q.Get("categoryId"), q.Get("subcategoryId")))
}

// Get handles GET /api/categories/{id}.
func (p *Public) Get(w http.ResponseWriter, r *http.Request) {
	c, err := p.reader.Category(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeInternal(w, r, "get category", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Category not found.")
		return
	}
	writeData(w, http.StatusOK, c)
}
