// Package projection derives the ordered, filtered list of bookmarks a view
// displays. Everything here is a pure function of a snapshot and a query.
package projection

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nikbrunner/shelf/internal/model"
)

// Engine projects snapshots for one display locale.
type Engine struct {
	locale language.Tag
}

// NewEngine creates an Engine that collates titles and categories for locale.
// An unparsable locale falls back to English.
func NewEngine(locale string) *Engine {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Engine{locale: tag}
}

// Locale returns the collation locale.
func (e *Engine) Locale() language.Tag {
	return e.locale
}

// Project runs scope, search, status filter and sort in that order.
// Each stage only narrows the previous result. The returned slice is new,
// but the bookmarks share their Tags with the snapshot.
func (e *Engine) Project(snap *model.Snapshot, q model.ViewQuery) []model.Bookmark {
	if snap == nil || len(snap.Bookmarks) == 0 {
		return []model.Bookmark{}
	}

	result, ok := scope(snap, q.Scope)
	if !ok {
		return []model.Bookmark{}
	}
	result = search(result, q.SearchText)
	result = filterStatus(result, q.StatusFilter)
	e.sortBookmarks(result, q.SortKey)
	return result
}

// IDs extracts the bookmark ids of a projection in display order.
func IDs(bookmarks []model.Bookmark) []string {
	ids := make([]string, len(bookmarks))
	for i, b := range bookmarks {
		ids[i] = b.ID
	}
	return ids
}

// scope keeps bookmarks in snapshot order. ok is false when the scoped
// collection does not exist.
func scope(snap *model.Snapshot, s model.Scope) ([]model.Bookmark, bool) {
	if s.Kind != model.ScopeCollection {
		result := make([]model.Bookmark, len(snap.Bookmarks))
		copy(result, snap.Bookmarks)
		return result, true
	}

	c := snap.GetCollectionByID(s.CollectionID)
	if c == nil {
		return nil, false
	}

	members := make(map[string]bool, len(c.BookmarkIDs))
	for _, id := range c.BookmarkIDs {
		members[id] = true
	}

	result := make([]model.Bookmark, 0, len(c.BookmarkIDs))
	for _, b := range snap.Bookmarks {
		if members[b.ID] {
			result = append(result, b)
		}
	}
	return result, true
}

// search keeps bookmarks whose title, description or a tag contains text,
// ignoring case.
func search(bookmarks []model.Bookmark, text string) []model.Bookmark {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return bookmarks
	}

	result := bookmarks[:0]
	for _, b := range bookmarks {
		if Matches(b, needle) {
			result = append(result, b)
		}
	}
	return result
}

// Matches reports whether a bookmark matches an already lower-cased needle.
func Matches(b model.Bookmark, needle string) bool {
	if strings.Contains(strings.ToLower(b.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(b.Description), needle) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func filterStatus(bookmarks []model.Bookmark, f model.StatusFilter) []model.Bookmark {
	var keep func(model.Bookmark) bool
	switch f {
	case model.FilterWorking:
		keep = func(b model.Bookmark) bool { return !b.IsBroken }
	case model.FilterBroken:
		keep = func(b model.Bookmark) bool { return b.IsBroken }
	case model.FilterShared:
		keep = func(b model.Bookmark) bool { return b.Shared }
	default:
		return bookmarks
	}

	result := bookmarks[:0]
	for _, b := range bookmarks {
		if keep(b) {
			result = append(result, b)
		}
	}
	return result
}

// sortBookmarks sorts in place. The input is in snapshot order, so a stable
// sort breaks ties by insertion order.
func (e *Engine) sortBookmarks(bookmarks []model.Bookmark, key model.SortKey) {
	var less func(a, b model.Bookmark) bool

	switch key {
	case model.SortNewest:
		less = func(a, b model.Bookmark) bool { return a.CreatedAt.After(b.CreatedAt) }
	case model.SortOldest:
		less = func(a, b model.Bookmark) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case model.SortTitle:
		c := collate.New(e.locale)
		less = func(a, b model.Bookmark) bool { return c.CompareString(a.Title, b.Title) < 0 }
	case model.SortCategory:
		c := collate.New(e.locale)
		less = func(a, b model.Bookmark) bool { return c.CompareString(a.Category, b.Category) < 0 }
	case model.SortVisits:
		less = func(a, b model.Bookmark) bool { return a.VisitCount > b.VisitCount }
	default:
		return
	}

	sort.SliceStable(bookmarks, func(i, j int) bool {
		return less(bookmarks[i], bookmarks[j])
	})
}
