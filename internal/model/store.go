package model

// Snapshot is an immutable view of all bookmarks and collections as loaded
// from a backing store. Version increases with every refresh.
// Slices are shared between readers and must not be modified.
type Snapshot struct {
	Bookmarks   []Bookmark   `json:"bookmarks"`
	Collections []Collection `json:"collections"`
	Version     uint64       `json:"-"`

	bookmarkIndex   map[string]int
	collectionIndex map[string]int
}

// NewSnapshot builds an indexed Snapshot. Bookmark order is preserved and
// serves as the insertion-order tie breaker for sorting.
func NewSnapshot(bookmarks []Bookmark, collections []Collection, version uint64) *Snapshot {
	if bookmarks == nil {
		bookmarks = []Bookmark{}
	}
	if collections == nil {
		collections = []Collection{}
	}

	s := &Snapshot{
		Bookmarks:       bookmarks,
		Collections:     collections,
		Version:         version,
		bookmarkIndex:   make(map[string]int, len(bookmarks)),
		collectionIndex: make(map[string]int, len(collections)),
	}
	for i, b := range bookmarks {
		if _, dup := s.bookmarkIndex[b.ID]; !dup {
			s.bookmarkIndex[b.ID] = i
		}
	}
	for i, c := range collections {
		if _, dup := s.collectionIndex[c.ID]; !dup {
			s.collectionIndex[c.ID] = i
		}
	}
	return s
}

// EmptySnapshot returns a snapshot with no entities at version 0.
func EmptySnapshot() *Snapshot {
	return NewSnapshot(nil, nil, 0)
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Snapshot) GetBookmarkByID(id string) *Bookmark {
	if i, ok := s.bookmarkIndex[id]; ok {
		return &s.Bookmarks[i]
	}
	return nil
}

// GetCollectionByID finds a collection by ID, returns nil if not found.
func (s *Snapshot) GetCollectionByID(id string) *Collection {
	if i, ok := s.collectionIndex[id]; ok {
		return &s.Collections[i]
	}
	return nil
}

// BookmarkPosition returns the insertion index of a bookmark, or -1.
func (s *Snapshot) BookmarkPosition(id string) int {
	if i, ok := s.bookmarkIndex[id]; ok {
		return i
	}
	return -1
}

// GetBookmarksInCollection resolves a collection's members in collection
// order. Dangling ids are skipped.
func (s *Snapshot) GetBookmarksInCollection(collectionID string) []Bookmark {
	c := s.GetCollectionByID(collectionID)
	if c == nil {
		return nil
	}
	var result []Bookmark
	for _, id := range c.BookmarkIDs {
		if b := s.GetBookmarkByID(id); b != nil {
			result = append(result, *b)
		}
	}
	return result
}

// GetCollectionsForBookmark returns the collections that list bookmarkID.
func (s *Snapshot) GetCollectionsForBookmark(bookmarkID string) []Collection {
	var result []Collection
	for _, c := range s.Collections {
		if c.Contains(bookmarkID) {
			result = append(result, c)
		}
	}
	return result
}

// AllTags returns every distinct tag in first-seen order.
func (s *Snapshot) AllTags() []string {
	var all []string
	for _, b := range s.Bookmarks {
		all = append(all, b.Tags...)
	}
	return NormalizeTags(all)
}
