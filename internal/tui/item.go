package tui

import "github.com/nikbrunner/shelf/internal/model"

// ItemKind distinguishes the "all bookmarks" entry from a collection in
// the sidebar.
type ItemKind int

const (
	ItemAll ItemKind = iota
	ItemCollection
)

// Item is one sidebar row.
type Item struct {
	Kind       ItemKind
	Collection *model.Collection
	Count      int // bookmarks that resolve, dangling ids excluded
}

// ID returns the collection id, or "" for the all entry.
func (i Item) ID() string {
	if i.Kind == ItemCollection {
		return i.Collection.ID
	}
	return ""
}

// Title returns a display title for the item.
func (i Item) Title() string {
	if i.Kind == ItemCollection {
		return i.Collection.Name
	}
	return "All bookmarks"
}

// Scope returns the view scope the item selects.
func (i Item) Scope() model.Scope {
	if i.Kind == ItemCollection {
		return model.CollectionScope(i.Collection.ID)
	}
	return model.AllScope()
}

// IsCollection returns true if this item is a collection.
func (i Item) IsCollection() bool {
	return i.Kind == ItemCollection
}

// sidebarItems builds the sidebar rows from a snapshot.
func sidebarItems(snap *model.Snapshot) []Item {
	items := make([]Item, 0, len(snap.Collections)+1)
	items = append(items, Item{Kind: ItemAll, Count: len(snap.Bookmarks)})
	for i := range snap.Collections {
		c := &snap.Collections[i]
		items = append(items, Item{
			Kind:       ItemCollection,
			Collection: c,
			Count:      len(snap.GetBookmarksInCollection(c.ID)),
		})
	}
	return items
}
