package model

import (
	"strings"
	"time"
)

// Collection is a named, ordered set of bookmark IDs.
// BookmarkIDs may reference bookmarks that no longer exist.
type Collection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	BookmarkIDs []string  `json:"bookmarkIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCollectionParams holds parameters for creating a new Collection.
type NewCollectionParams struct {
	Name        string
	BookmarkIDs []string
	Now         time.Time
}

// NewCollection creates a Collection with generated UUID.
func NewCollection(params NewCollectionParams) Collection {
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	return Collection{
		ID:          GenerateUUID(),
		Name:        strings.TrimSpace(params.Name),
		BookmarkIDs: UniqueIDs(params.BookmarkIDs),
		CreatedAt:   now,
	}
}

// Contains reports whether id is a member of the collection.
func (c Collection) Contains(id string) bool {
	for _, bid := range c.BookmarkIDs {
		if bid == id {
			return true
		}
	}
	return false
}

// WithAdded returns a copy with ids appended, skipping ones already present.
func (c Collection) WithAdded(ids []string) Collection {
	merged := make([]string, 0, len(c.BookmarkIDs)+len(ids))
	merged = append(merged, c.BookmarkIDs...)
	merged = append(merged, ids...)
	c.BookmarkIDs = UniqueIDs(merged)
	return c
}

// WithRemoved returns a copy without the given ids.
func (c Collection) WithRemoved(ids []string) Collection {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := make([]string, 0, len(c.BookmarkIDs))
	for _, id := range c.BookmarkIDs {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	c.BookmarkIDs = kept
	return c
}

// UniqueIDs removes empty and duplicate ids, keeping first occurrence order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
