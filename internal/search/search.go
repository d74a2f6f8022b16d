// Package search ranks bookmarks by fuzzy title match for quick lookup.
package search

import (
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result is a fuzzy match. MatchedIndexes point into Bookmark.Title.
type Result struct {
	Bookmark       model.Bookmark
	MatchedIndexes []int
	Score          int
}

// titles implements fuzzy.Source.
type titles []model.Bookmark

func (t titles) String(i int) string { return t[i].Title }
func (t titles) Len() int            { return len(t) }

// Fuzzy matches query against bookmark titles, best match first. An empty
// query matches nothing. limit <= 0 returns every match.
func Fuzzy(bookmarks []model.Bookmark, query string, limit int) []Result {
	if query == "" || len(bookmarks) == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(query, titles(bookmarks))
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Bookmark:       bookmarks[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// Snapshot searches every bookmark of snap.
func Snapshot(snap *model.Snapshot, query string, limit int) []Result {
	return Fuzzy(snap.Bookmarks, query, limit)
}
