// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"medaudio/internal/models"
)

func TestPublicListParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   models.ListParams
	}{
		{"defaults", "/api/categories", models.ListParams{}},
		{
			"all filters",
			"/api/categories?level=2&parentId=cardio&active=false&includeCount=true",
			models.ListParams{Level: 2, ParentID: "cardio", IncludeInactive: true, IncludeCount: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{cats: sampleCategories()}
			rec, resp := serve(t, http.MethodGet, "/api/categories", NewPublic(reader).List, tt.target, "")

			if rec.Code != http.StatusOK || !resp.Success {
				t.Fatalf("status %d success %v", rec.Code, resp.Success)
			}
			if reader.lastParams != tt.want {
				t.Errorf("params: got %+v, want %+v", reader.lastParams, tt.want)
			}
			if got := decodeData[[]models.Category](t, resp); len(got) != 4 {
				t.Errorf("got %d categories, want 4", len(got))
			}
		})
	}
}

func TestPublicListBadQuery(t *testing.T) {
	for _, target := range []string{
		"/api/categories?level=3",
		"/api/categories?level=abc",
		"/api/categories?active=maybe",
		"/api/categories?includeCount=2x",
	} {
		t.Run(target, func(t *testing.T) {
			rec, resp := serve(t, http.MethodGet, "/api/categories", NewPublic(&fakeReader{}).List, target, "")
			if rec.Code != http.StatusBadRequest || resp.Success {
				t.Errorf("status: got %d, want 400", rec.Code)
			}
		})
	}
}

func TestPublicListHidesDatabaseErrors(t *testing.T) {
	rec, resp := serve(t, http.MethodGet, "/api/categories", NewPublic(&fakeReader{err: errDB}).List, "/api/categories", "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Errorf("response leaks database error: %s", rec.Body.String())
	}
	if resp.Error == "" {
		t.Error("expected a generic error message")
	}
}

func TestPublicTree(t *testing.T) {
	rec, resp := serve(t, http.MethodGet, "/api/categories/tree",
		NewPublic(&fakeReader{cats: sampleCategories()}).Tree, "/api/categories/tree?includeCount=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	tree := decodeData[[]models.TreeNode](t, resp)
	if len(tree) != 2 || tree[0].ID != "cardio" || tree[1].ID != "neuro" {
		t.Fatalf("roots: got %+v", tree)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].ID != "arrhythmia" {
		t.Errorf("cardio children: got %+v", tree[0].Children)
	}
}

func TestPublicStats(t *testing.T) {
	rec, resp := serve(t, http.MethodGet, "/api/categories/stats",
		NewPublic(&fakeReader{cats: sampleCategories()}).Stats, "/api/categories/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if st := decodeData[models.CategoryStats](t, resp); st.Total != 4 {
		t.Errorf("total: got %d, want 4", st.Total)
	}
}

func TestPublicOptions(t *testing.T) {
	h := NewPublic(&fakeReader{cats: sampleCategories()}).Options

	t.Run("flat", func(t *testing.T) {
		_, resp := serve(t, http.MethodGet, "/api/categories/options", h, "/api/categories/options", "")
		opts := decodeData[[]models.CategoryOption](t, resp)
		labels := []string{}
		for _, o := range opts {
			labels = append(labels, o.Label)
		}
		want := "心血管,心血管 / 心律失常,神经,神经 / 脑卒中"
		if got := strings.Join(labels, ","); got != want {
			t.Errorf("labels: got %q, want %q", got, want)
		}
	})

	t.Run("hierarchical secondary only", func(t *testing.T) {
		_, resp := serve(t, http.MethodGet, "/api/categories/options", h, "/api/categories/options?hierarchical=true&level=2", "")
		opts := decodeData[[]models.CategoryOption](t, resp)
		if len(opts) != 2 {
			t.Fatalf("got %d groups, want 2", len(opts))
		}
		if !opts[0].Disabled || len(opts[0].Children) != 1 {
			t.Errorf("group header: got %+v", opts[0])
		}
	})
}

func TestPublicPath(t *testing.T) {
	reader := &fakeReader{cats: sampleCategories()}
	_, resp := serve(t, http.MethodGet, "/api/categories/path", NewPublic(reader).Path,
		"/api/categories/path?subcategoryId=stroke", "")

	path := decodeData[models.CategoryPath](t, resp)
	if strings.Join(path.Breadcrumb, " > ") != "神经 > 脑卒中" {
		t.Errorf("breadcrumb: got %v", path.Breadcrumb)
	}
	if !reader.lastParams.IncludeInactive {
		t.Error("path should resolve inactive categories too")
	}
}

func TestPublicGet(t *testing.T) {
	h := NewPublic(&fakeReader{cats: sampleCategories()}).Get

	rec, resp := serve(t, http.MethodGet, "/api/categories/{id}", h, "/api/categories/stroke", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if c := decodeData[models.Category](t, resp); c.Name != "脑卒中" || c.ParentID == nil || *c.ParentID != "neuro" {
		t.Errorf("category: got %+v", c)
	}

	rec, _ = serve(t, http.MethodGet, "/api/categories/{id}", h, "/api/categories/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want 404", rec.Code)
	}
}
