// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides in-memory fakes and request helpers shared by
// the handler tests.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"medaudio/internal/cache"
	"medaudio/internal/models"
	"medaudio/internal/taxonomy"
)

func strPtr(s string) *string { return &s }

func category(id, name string, parent *string, sort int) models.Category {
	return models.Category{
		ID: id, Name: name, ParentID: parent, Level: models.LevelFor(parent),
		SortOrder: sort, Color: models.DefaultColor, Icon: models.DefaultIcon, IsActive: true,
	}
}

// sampleCategories is a small two-family taxonomy.
func sampleCategories() []models.Category {
	return []models.Category{
		category("cardio", "心血管", nil, 0),
		category("neuro", "神经", nil, 1),
		category("arrhythmia", "心律失常", strPtr("cardio"), 0),
		category("stroke", "脑卒中", strPtr("neuro"), 0),
	}
}

// --- reader ---

type fakeReader struct {
	cats       []models.Category
	err        error
	lastParams models.ListParams
}

func (f *fakeReader) Categories(_ context.Context, p models.ListParams) ([]models.Category, error) {
	f.lastParams = p
	return f.cats, f.err
}

func (f *fakeReader) Tree(_ context.Context, _ bool) ([]models.TreeNode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return taxonomy.BuildTree(f.cats), nil
}

func (f *fakeReader) Stats(context.Context) (models.CategoryStats, error) {
	return models.CategoryStats{Total: len(f.cats)}, f.err
}

func (f *fakeReader) Category(_ context.Context, id string) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return findCategory(f.cats, id), nil
}

// --- writer ---

type fakeWriter struct {
	cats      []models.Category
	allErr    error
	deleteErr error
	reorder   []models.ReorderItem
	reordErr  error
	deleted   string
	force     bool
}

func (f *fakeWriter) All(context.Context) ([]models.Category, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	return append([]models.Category(nil), f.cats...), nil
}

func (f *fakeWriter) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	out := *c
	out.ID = "new-1"
	f.cats = append(f.cats, out)
	return &out, nil
}

func (f *fakeWriter) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	for i := range f.cats {
		if f.cats[i].ID == c.ID {
			f.cats[i] = *c
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeWriter) Delete(_ context.Context, id string, force bool) error {
	f.deleted, f.force = id, force
	return f.deleteErr
}

func (f *fakeWriter) Reorder(_ context.Context, items []models.ReorderItem) error {
	f.reorder = items
	return f.reordErr
}

func (f *fakeWriter) NextSortOrder(_ context.Context, parentID *string) (int, error) {
	n := 0
	for _, c := range f.cats {
		if (c.ParentID == nil && parentID == nil) || (c.ParentID != nil && parentID != nil && *c.ParentID == *parentID) {
			n++
		}
	}
	return n, nil
}

// --- cache ---

type fakeCache struct {
	invalidated []string
	warmErr     error
	health      cache.Health
}

func (f *fakeCache) Invalidate(_ context.Context, op cache.Operation, id string) {
	f.invalidated = append(f.invalidated, string(op)+":"+id)
}
func (f *fakeCache) Warmup(context.Context) error { return f.warmErr }
func (f *fakeCache) Health() cache.Health         { return f.health }
func (f *fakeCache) CacheStats() []cache.Stats {
	return []cache.Stats{{Name: cache.NameList, Capacity: 100}}
}

// --- recorder ---

type fakeRecorder struct {
	codes           []string
	inconsistent    int
	changed, failed int
}

func (f *fakeRecorder) ValidationFailed(codes ...string) { f.codes = append(f.codes, codes...) }
func (f *fakeRecorder) SetInconsistent(n int)            { f.inconsistent = n }
func (f *fakeRecorder) AudioFixes(changed, failed int)   { f.changed, f.failed = changed, failed }

// --- audio ---

type fakeAudios struct {
	items   []models.Audio
	saved   []models.Audio
	saveErr error
	listErr error
}

func (f *fakeAudios) List(_ context.Context, limit, offset int) ([]models.Audio, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if offset >= len(f.items) {
		return []models.Audio{}, nil
	}
	end := min(offset+limit, len(f.items))
	return f.items[offset:end], nil
}

func (f *fakeAudios) FindByID(_ context.Context, id string) (*models.Audio, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			a := f.items[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAudios) FindByIDs(_ context.Context, ids []string) ([]models.Audio, error) {
	out := []models.Audio{}
	for _, id := range ids {
		if a, _ := f.FindByID(context.Background(), id); a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAudios) UpdateCategoryFields(_ context.Context, a *models.Audio) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *a)
	return nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

var errDB = errors.New("pq: connection refused at 10.0.0.5")

// --- helpers ---

type apiResponse struct {
	Success  bool                  `json:"success"`
	Data     json.RawMessage       `json:"data"`
	Error    string                `json:"error"`
	Errors   []taxonomy.FieldError `json:"errors"`
	Warnings []string              `json:"warnings"`
}

// serve routes one request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern string, h http.HandlerFunc, target, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func decodeData[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", resp.Data, err)
	}
	return v
}

func hasCode(errs []taxonomy.FieldError, code taxonomy.Code) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}
