package search_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/search"
)

func bookmarks(titles ...string) []model.Bookmark {
	result := make([]model.Bookmark, len(titles))
	for i, title := range titles {
		result[i] = model.Bookmark{ID: title, Title: title, URL: "https://example.com"}
	}
	return result
}

func titlesOf(results []search.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Bookmark.Title
	}
	return out
}

func TestFuzzy(t *testing.T) {
	tests := []struct {
		name      string
		bookmarks []model.Bookmark
		query     string
		wantLen   int
		wantFirst string
	}{
		{"empty query", bookmarks("GitHub"), "", 0, ""},
		{"exact match", bookmarks("GitHub", "GitLab"), "GitHub", 1, "GitHub"},
		{"fuzzy match", bookmarks("TanStack Router", "React Router"), "tanrou", 1, "TanStack Router"},
		{"multiple matches", bookmarks("GitHub", "GitLab", "Gitea"), "git", 3, ""},
		{"no match", bookmarks("GitHub"), "xyz123", 0, ""},
		{"case insensitive", bookmarks("GitHub"), "github", 1, "GitHub"},
		{"exact ranks first", bookmarks("React Router Documentation", "Router"), "router", 2, "Router"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := search.Fuzzy(tt.bookmarks, tt.query, 0)
			assert.Equal(t, len(results), tt.wantLen, "got %v", titlesOf(results))
			if tt.wantFirst != "" {
				assert.Equal(t, results[0].Bookmark.Title, tt.wantFirst)
			}
		})
	}
}

func TestFuzzy_Limit(t *testing.T) {
	results := search.Fuzzy(bookmarks("GitHub", "GitLab", "Gitea"), "git", 2)

	assert.Equal(t, len(results), 2)
}

func TestSnapshot(t *testing.T) {
	snap := model.NewSnapshot(bookmarks("Go Tour", "Rust Book"), nil, 1)

	results := search.Snapshot(snap, "tour", 0)

	assert.DeepEqual(t, titlesOf(results), []string{"Go Tour"})
	assert.DeepEqual(t, results[0].MatchedIndexes, []int{3, 4, 5, 6})
}
