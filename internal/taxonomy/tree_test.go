// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"slices"
	"testing"

	"medaudio/internal/models"
)

func ids(cats []models.Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.ID)
	}
	return out
}

func TestBuildTreeOrder(t *testing.T) {
	cats := []models.Category{
		secondary("b2", "b", "b-two", 2),
		primary("b", "B", 2),
		secondary("a1", "a", "a-one", 1),
		primary("a", "A", 1),
		secondary("b1", "b", "b-one", 1),
		secondary("b0", "b", "b-zero-tie", 1),
	}

	tree := BuildTree(cats)
	if len(tree) != 2 {
		t.Fatalf("got %d roots, want 2", len(tree))
	}
	if tree[0].ID != "a" || tree[1].ID != "b" {
		t.Errorf("root order: got %s,%s, want a,b", tree[0].ID, tree[1].ID)
	}
	gotB := []string{}
	for _, c := range tree[1].Children {
		gotB = append(gotB, c.ID)
	}
	// b1 and b0 share sortOrder 1 and keep their input order.
	want := []string{"b1", "b0", "b2"}
	if !slices.Equal(gotB, want) {
		t.Errorf("children of b: got %v, want %v", gotB, want)
	}
	if tree[0].Children[0].Children == nil {
		t.Error("leaf children should be an empty slice")
	}
}

func TestBuildTreeDropsInactiveAndOrphans(t *testing.T) {
	cats := sampleCategories()
	cats[1].IsActive = false // neuro, takes stroke with it
	cats = append(cats, secondary("orphan", "ghost", "orphan", 0))
	inactiveChild := secondary("inactive-child", "cardio", "x", 9)
	inactiveChild.IsActive = false
	cats = append(cats, inactiveChild)

	got := ids(FlattenTree(BuildTree(cats)))
	want := []string{"cardio", "arrhythmia", "hypertension"}
	if !slices.Equal(got, want) {
		t.Errorf("active tree: got %v, want %v", got, want)
	}

	all := ids(FlattenTree(BuildTree(cats, IncludeInactive())))
	for _, id := range []string{"neuro", "stroke", "inactive-child"} {
		if !slices.Contains(all, id) {
			t.Errorf("IncludeInactive tree missing %s: %v", id, all)
		}
	}
	if slices.Contains(all, "orphan") {
		t.Error("orphaned secondary must not appear in the tree")
	}
}

// TestFlattenBuildRoundTrip checks that flattening a built tree yields
// exactly the ids of the active rows.
func TestFlattenBuildRoundTrip(t *testing.T) {
	cats := sampleCategories()
	extra := secondary("inactive", "neuro", "inactive", 3)
	extra.IsActive = false
	cats = append(cats, extra)

	var wantIDs []string
	for _, c := range cats {
		if c.IsActive {
			wantIDs = append(wantIDs, c.ID)
		}
	}

	got := ids(FlattenTree(BuildTree(cats)))
	slices.Sort(got)
	slices.Sort(wantIDs)
	if !slices.Equal(got, wantIDs) {
		t.Errorf("round trip: got %v, want %v", got, wantIDs)
	}
}

func TestFlattenTreeOrder(t *testing.T) {
	got := ids(FlattenTree(BuildTree(sampleCategories())))
	want := []string{"cardio", "arrhythmia", "hypertension", "neuro", "stroke"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFindNode(t *testing.T) {
	tree := BuildTree(sampleCategories())
	n, ok := FindNode(tree, "stroke")
	if !ok || n.Name != "脑卒中" {
		t.Errorf("FindNode(stroke) = %v, %v", n, ok)
	}
	if _, ok := FindNode(tree, "missing"); ok {
		t.Error("FindNode(missing) should fail")
	}
}

func TestGetPath(t *testing.T) {
	cats := sampleCategories()

	tests := []struct {
		name       string
		catID      string
		subID      string
		wantCat    string
		wantSub    string
		breadcrumb []string
	}{
		{"both", "cardio", "arrhythmia", "cardio", "arrhythmia", []string{"心血管", "心律失常"}},
		{"subcategory only", "", "stroke", "neuro", "stroke", []string{"神经", "脑卒中"}},
		{"category only", "neuro", "", "neuro", "", []string{"神经"}},
		{"unknown", "ghost", "", "", "", []string{}},
		{"nothing", "", "", "", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := GetPath(cats, tt.catID, tt.subID)
			gotCat, gotSub := "", ""
			if p.Category != nil {
				gotCat = p.Category.ID
			}
			if p.Subcategory != nil {
				gotSub = p.Subcategory.ID
			}
			if gotCat != tt.wantCat || gotSub != tt.wantSub {
				t.Errorf("got (%q,%q), want (%q,%q)", gotCat, gotSub, tt.wantCat, tt.wantSub)
			}
			if !slices.Equal(p.Breadcrumb, tt.breadcrumb) {
				t.Errorf("breadcrumb: got %v, want %v", p.Breadcrumb, tt.breadcrumb)
			}
		})
	}
}

func TestGenerateOptions(t *testing.T) {
	cats := sampleCategories()
	cats[4].IsActive = false // stroke

	t.Run("all levels active only", func(t *testing.T) {
		opts := GenerateOptions(cats, OptionFilter{ActiveOnly: true})
		var labels []string
		for _, o := range opts {
			labels = append(labels, o.Label)
		}
		want := []string{"心血管", "心血管 / 心律失常", "心血管 / 高血压", "神经"}
		if !slices.Equal(labels, want) {
			t.Errorf("labels: got %v, want %v", labels, want)
		}
	})

	t.Run("inactive listed as disabled", func(t *testing.T) {
		opts := GenerateOptions(cats, OptionFilter{Level: models.LevelSecondary})
		if len(opts) != 3 {
			t.Fatalf("got %d options, want 3", len(opts))
		}
		last := opts[2]
		if last.Value != "stroke" || !last.Disabled {
			t.Errorf("expected disabled stroke option, got %+v", last)
		}
	})

	t.Run("primaries only", func(t *testing.T) {
		opts := GenerateOptions(cats, OptionFilter{Level: models.LevelPrimary, ActiveOnly: true})
		if len(opts) != 2 {
			t.Errorf("got %d options, want 2", len(opts))
		}
	})
}

func TestGenerateHierarchicalOptions(t *testing.T) {
	cats := append(sampleCategories(), primary("empty", "空", 3))

	opts := GenerateHierarchicalOptions(cats, OptionFilter{ActiveOnly: true})
	if len(opts) != 3 {
		t.Fatalf("got %d roots, want 3", len(opts))
	}
	if len(opts[0].Children) != 2 || opts[0].Children[0].Label != "心律失常" {
		t.Errorf("cardio children: %+v", opts[0].Children)
	}

	opts = GenerateHierarchicalOptions(cats, OptionFilter{Level: models.LevelPrimary, ActiveOnly: true})
	for _, o := range opts {
		if len(o.Children) != 0 {
			t.Errorf("level 1 filter should omit children, %s has %d", o.Value, len(o.Children))
		}
	}

	opts = GenerateHierarchicalOptions(cats, OptionFilter{Level: models.LevelSecondary, ActiveOnly: true})
	if len(opts) != 2 {
		t.Fatalf("level 2 filter: got %d groups, want 2", len(opts))
	}
	for _, o := range opts {
		if !o.Disabled {
			t.Errorf("group header %s should be disabled", o.Value)
		}
	}
}
