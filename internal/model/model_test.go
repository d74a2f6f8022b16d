package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nikbrunner/shelf/internal/model"
)

// Helper functions for pointers
func stringPtr(s string) *string { return &s }

func TestBookmark_JSONFieldNames(t *testing.T) {
	b := model.Bookmark{
		ID:         "b1",
		Title:      "TanStack Router",
		URL:        "https://tanstack.com/router",
		Tags:       []string{"react", "routing"},
		VisitCount: 3,
		Shared:     true,
		ShareID:    "s1",
		CreatedAt:  time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	for _, key := range []string{"id", "title", "url", "tags", "visitCount", "isBroken", "shared", "shareId", "createdAt"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected JSON key %q in %s", key, data)
		}
	}
	if _, ok := raw["description"]; ok {
		t.Error("empty description should be omitted")
	}
}

func TestNewBookmark(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b := model.NewBookmark(model.NewBookmarkParams{
		Draft: model.Draft{
			Title: "  Go Guide ",
			URL:   " https://go.dev ",
			Tags:  []string{"go", " go", "", "docs"},
		},
		Now: now,
	})

	if b.ID == "" {
		t.Error("expected generated ID")
	}
	if b.Title != "Go Guide" {
		t.Errorf("expected trimmed title, got %q", b.Title)
	}
	if b.URL != "https://go.dev" {
		t.Errorf("expected trimmed URL, got %q", b.URL)
	}
	if len(b.Tags) != 2 || b.Tags[0] != "go" || b.Tags[1] != "docs" {
		t.Errorf("expected tags [go docs], got %v", b.Tags)
	}
	if !b.CreatedAt.Equal(now) || !b.UpdatedAt.Equal(now) {
		t.Errorf("expected timestamps %v, got %v / %v", now, b.CreatedAt, b.UpdatedAt)
	}
	if b.Shared || b.ShareID != "" {
		t.Error("new bookmark must not be shared")
	}
}

func TestPatch_Prune(t *testing.T) {
	current := model.Bookmark{
		ID:          "b1",
		Title:       "Go",
		URL:         "https://go.dev",
		Description: "docs",
		Tags:        []string{"go", "lang"},
	}

	tags := []string{"lang", "go"}
	p := model.Patch{
		Title:       stringPtr("Go"),
		URL:         stringPtr("https://go.dev/doc"),
		Description: stringPtr("docs"),
		Tags:        &tags,
	}.Prune(current)

	if p.Title != nil {
		t.Error("unchanged title should be pruned")
	}
	if p.Description != nil {
		t.Error("unchanged description should be pruned")
	}
	if p.Tags != nil {
		t.Error("tags equal as a set should be pruned")
	}
	if p.URL == nil || *p.URL != "https://go.dev/doc" {
		t.Error("changed URL must survive pruning")
	}
	if p.IsEmpty() {
		t.Error("patch with URL change is not empty")
	}

	fields := p.Fields()
	if len(fields) != 1 || fields[0] != "url" {
		t.Errorf("expected fields [url], got %v", fields)
	}
}

func TestPatch_PruneComparesTrimmed(t *testing.T) {
	current := model.Bookmark{ID: "b1", Title: "Go", URL: "https://go.dev"}

	p := model.Patch{
		Title: stringPtr("  Go "),
		URL:   stringPtr(" https://go.dev\t"),
	}.Prune(current)

	if !p.IsEmpty() {
		t.Errorf("whitespace-only changes should be pruned, got fields %v", p.Fields())
	}
}

func TestBookmark_Apply(t *testing.T) {
	now := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	b := model.Bookmark{ID: "b1", Title: "Old", URL: "https://a.example", Category: "dev"}

	got := b.Apply(model.Patch{Title: stringPtr(" New ")}, now)

	if got.Title != "New" {
		t.Errorf("expected title New, got %q", got.Title)
	}
	if got.URL != "https://a.example" || got.Category != "dev" {
		t.Error("omitted fields must keep their values")
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("expected UpdatedAt %v, got %v", now, got.UpdatedAt)
	}
	if b.Title != "Old" {
		t.Error("Apply must not mutate the receiver")
	}
}

func TestCollection_WithAddedIsIdempotent(t *testing.T) {
	c := model.Collection{ID: "c1", Name: "Reading", BookmarkIDs: []string{"a"}}

	once := c.WithAdded([]string{"x"})
	twice := once.WithAdded([]string{"x"})

	count := 0
	for _, id := range twice.BookmarkIDs {
		if id == "x" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected x exactly once, got %d in %v", count, twice.BookmarkIDs)
	}
	if len(c.BookmarkIDs) != 1 {
		t.Error("WithAdded must not mutate the receiver")
	}
}

func TestCollection_WithRemoved(t *testing.T) {
	c := model.Collection{ID: "c1", BookmarkIDs: []string{"a", "b", "c"}}

	got := c.WithRemoved([]string{"b", "missing"})

	if len(got.BookmarkIDs) != 2 || got.BookmarkIDs[0] != "a" || got.BookmarkIDs[1] != "c" {
		t.Errorf("expected [a c], got %v", got.BookmarkIDs)
	}
	again := got.WithRemoved([]string{"b"})
	if len(again.BookmarkIDs) != 2 {
		t.Error("removing an absent id should be a no-op")
	}
}

func TestSnapshot_Lookups(t *testing.T) {
	snap := model.NewSnapshot(
		[]model.Bookmark{
			{ID: "b1", Title: "One", Tags: []string{"go"}},
			{ID: "b2", Title: "Two", Tags: []string{"rust", "go"}},
		},
		[]model.Collection{
			{ID: "c1", Name: "Reading", BookmarkIDs: []string{"b2", "gone", "b1"}},
		},
		7,
	)

	if snap.GetBookmarkByID("b2") == nil || snap.GetBookmarkByID("nope") != nil {
		t.Error("GetBookmarkByID lookup mismatch")
	}
	if snap.GetCollectionByID("c1") == nil || snap.GetCollectionByID("c2") != nil {
		t.Error("GetCollectionByID lookup mismatch")
	}
	if snap.BookmarkPosition("b2") != 1 || snap.BookmarkPosition("gone") != -1 {
		t.Error("BookmarkPosition mismatch")
	}

	members := snap.GetBookmarksInCollection("c1")
	if len(members) != 2 || members[0].ID != "b2" || members[1].ID != "b1" {
		t.Errorf("expected dangling id skipped and order kept, got %v", members)
	}
	if got := snap.GetBookmarksInCollection("missing"); got != nil {
		t.Errorf("expected nil for unknown collection, got %v", got)
	}
	if cs := snap.GetCollectionsForBookmark("b1"); len(cs) != 1 {
		t.Errorf("expected b1 in one collection, got %d", len(cs))
	}

	tags := snap.AllTags()
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "rust" {
		t.Errorf("expected [go rust], got %v", tags)
	}
}

func TestTagsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"same order", []string{"a", "b"}, []string{"a", "b"}, true},
		{"different order", []string{"a", "b"}, []string{"b", "a"}, true},
		{"duplicates ignored", []string{"a", "a", "b"}, []string{"b", "a"}, true},
		{"different sets", []string{"a"}, []string{"b"}, false},
		{"both empty", nil, []string{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := model.TagsEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("TagsEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	got := model.ParseTags(" go, rust ,, go ")
	if len(got) != 2 || got[0] != "go" || got[1] != "rust" {
		t.Errorf("expected [go rust], got %v", got)
	}
}

func TestQueryEnums_RoundTrip(t *testing.T) {
	for k := model.SortNewest; k <= model.SortVisits; k++ {
		parsed, err := model.ParseSortKey(k.String())
		if err != nil || parsed != k {
			t.Errorf("ParseSortKey(%q) = %v, %v", k.String(), parsed, err)
		}
	}
	for f := model.FilterAll; f <= model.FilterShared; f++ {
		parsed, err := model.ParseStatusFilter(f.String())
		if err != nil || parsed != f {
			t.Errorf("ParseStatusFilter(%q) = %v, %v", f.String(), parsed, err)
		}
	}
	if model.SortVisits.Next() != model.SortNewest {
		t.Error("sort key should wrap around")
	}
	if model.FilterShared.Next() != model.FilterAll {
		t.Error("status filter should wrap around")
	}
	if _, err := model.ParseSortKey("bogus"); err == nil {
		t.Error("expected error for unknown sort key")
	}
}

func TestScope(t *testing.T) {
	if !model.CollectionScope("c1").IsCollection("c1") {
		t.Error("expected collection scope to match its id")
	}
	if model.AllScope().IsCollection("") {
		t.Error("all scope is not a collection")
	}
	if model.DefaultQuery().Scope != model.AllScope() {
		t.Error("default query should be scoped to all")
	}
}
