package model

import "fmt"

// ScopeKind distinguishes the "all bookmarks" view from a single collection.
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeCollection
)

// Scope restricts a view to all bookmarks or to one collection.
type Scope struct {
	Kind         ScopeKind
	CollectionID string // set only for ScopeCollection
}

// AllScope returns the scope covering every bookmark.
func AllScope() Scope {
	return Scope{Kind: ScopeAll}
}

// CollectionScope returns a scope restricted to collection id.
func CollectionScope(id string) Scope {
	return Scope{Kind: ScopeCollection, CollectionID: id}
}

// IsCollection reports whether the scope targets the given collection.
func (s Scope) IsCollection(id string) bool {
	return s.Kind == ScopeCollection && s.CollectionID == id
}

// String implements fmt.Stringer.
func (s Scope) String() string {
	if s.Kind == ScopeCollection {
		return "collection:" + s.CollectionID
	}
	return "all"
}

// StatusFilter narrows a view by link health or sharing state.
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterWorking
	FilterBroken
	FilterShared
)

var statusFilterNames = [...]string{"all", "working", "broken", "shared"}

// String implements fmt.Stringer.
func (f StatusFilter) String() string {
	if f < 0 || int(f) >= len(statusFilterNames) {
		return fmt.Sprintf("StatusFilter(%d)", int(f))
	}
	return statusFilterNames[f]
}

// Next cycles to the following filter.
func (f StatusFilter) Next() StatusFilter {
	return (f + 1) % StatusFilter(len(statusFilterNames))
}

// ParseStatusFilter converts a name like "broken" to a StatusFilter.
func ParseStatusFilter(s string) (StatusFilter, error) {
	for i, name := range statusFilterNames {
		if name == s {
			return StatusFilter(i), nil
		}
	}
	return FilterAll, fmt.Errorf("unknown status filter %q", s)
}

// SortKey selects the projection ordering.
type SortKey int

const (
	SortNewest SortKey = iota
	SortOldest
	SortTitle
	SortCategory
	SortVisits
)

var sortKeyNames = [...]string{"newest", "oldest", "title", "category", "visits"}

// String implements fmt.Stringer.
func (k SortKey) String() string {
	if k < 0 || int(k) >= len(sortKeyNames) {
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
	return sortKeyNames[k]
}

// Next cycles to the following sort key.
func (k SortKey) Next() SortKey {
	return (k + 1) % SortKey(len(sortKeyNames))
}

// ParseSortKey converts a name like "visits" to a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	for i, name := range sortKeyNames {
		if name == s {
			return SortKey(i), nil
		}
	}
	return SortNewest, fmt.Errorf("unknown sort key %q", s)
}

// ViewQuery describes what a view displays. It is comparable so it can
// key a projection cache.
type ViewQuery struct {
	Scope        Scope
	SearchText   string
	StatusFilter StatusFilter
	SortKey      SortKey
}

// DefaultQuery shows every bookmark, newest first.
func DefaultQuery() ViewQuery {
	return ViewQuery{Scope: AllScope(), StatusFilter: FilterAll, SortKey: SortNewest}
}
