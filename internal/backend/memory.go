package backend

import (
	"context"
	"strings"
	"sync"
	"time"

	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/model"
)

// Memory is a process-local Backend. It is the reference implementation
// the other backends are tested against, and the state behind JSONFile.
type Memory struct {
	mu          sync.Mutex
	bookmarks   []model.Bookmark
	collections []model.Collection
	now         func() time.Time
}

// MemoryOption configures a Memory backend.
type MemoryOption func(*Memory)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithData seeds the backend. The slices are copied.
func WithData(bookmarks []model.Bookmark, collections []model.Collection) MemoryOption {
	return func(m *Memory) {
		m.bookmarks = copyBookmarks(bookmarks)
		m.collections = copyCollections(collections)
	}
}

// NewMemory creates an empty in-memory backend.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		bookmarks:   []model.Bookmark{},
		collections: []model.Collection{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.Transport("list bookmarks", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBookmarks(m.bookmarks), nil
}

func (m *Memory) ListCollections(ctx context.Context) ([]model.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.Transport("list collections", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyCollections(m.collections), nil
}

func (m *Memory) CreateBookmark(ctx context.Context, draft model.Draft) (*model.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.Transport("create bookmark", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b := model.NewBookmark(model.NewBookmarkParams{Draft: draft, Now: m.now()})
	m.bookmarks = append(m.bookmarks, b)
	return copyBookmark(b), nil
}

func (m *Memory) UpdateBookmark(ctx context.Context, id string, patch model.Patch) (*model.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.Transport("update bookmark", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.bookmarkIndex(id)
	if i < 0 {
		return nil, domainerrors.NotFoundf("bookmark %s not found", id)
	}
	m.bookmarks[i] = m.bookmarks[i].Apply(patch, m.now())
	return copyBookmark(m.bookmarks[i]), nil
}

// DeleteBookmark removes a bookmark. Collections keep the dangling id.
func (m *Memory) DeleteBookmark(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.Transport("delete bookmark", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.bookmarkIndex(id)
	if i < 0 {
		return domainerrors.NotFoundf("bookmark %s not found", id)
	}
	m.bookmarks = append(m.bookmarks[:i], m.bookmarks[i+1:]...)
	return nil
}

func (m *Memory) ShareBookmarks(ctx context.Context, ids []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domainerrors.Transport("share bookmarks", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids = model.UniqueIDs(ids)
	positions := make([]int, 0, len(ids))
	for _, id := range ids {
		i := m.bookmarkIndex(id)
		if i < 0 {
			return "", domainerrors.NotFoundf("bookmark %s not found", id)
		}
		positions = append(positions, i)
	}

	shareID, err := NewShareID()
	if err != nil {
		return "", domainerrors.Transport("share bookmarks", err)
	}
	for _, i := range positions {
		m.bookmarks[i].Shared = true
		m.bookmarks[i].ShareID = shareID
	}
	return shareID, nil
}

func (m *Memory) CreateCollection(ctx context.Context, name string, ids []string) (*model.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.Transport("create collection", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return nil, domainerrors.Validation("collection name is required")
	}
	if err := m.requireBookmarks(ids); err != nil {
		return nil, err
	}

	c := model.NewCollection(model.NewCollectionParams{Name: name, BookmarkIDs: ids, Now: m.now()})
	m.collections = append(m.collections, c)
	return copyCollection(c), nil
}

func (m *Memory) RenameCollection(ctx context.Context, id, name string) (*model.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.Transport("rename collection", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return nil, domainerrors.Validation("collection name is required")
	}
	i := m.collectionIndex(id)
	if i < 0 {
		return nil, domainerrors.NotFoundf("collection %s not found", id)
	}
	m.collections[i].Name = strings.TrimSpace(name)
	return copyCollection(m.collections[i]), nil
}

// DeleteCollection removes a collection. Its bookmarks are kept.
func (m *Memory) DeleteCollection(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.Transport("delete collection", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.collectionIndex(id)
	if i < 0 {
		return domainerrors.NotFoundf("collection %s not found", id)
	}
	m.collections = append(m.collections[:i], m.collections[i+1:]...)
	return nil
}

func (m *Memory) AddToCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.Transport("add to collection", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.collectionIndex(id)
	if i < 0 {
		return nil, domainerrors.NotFoundf("collection %s not found", id)
	}
	if err := m.requireBookmarks(ids); err != nil {
		return nil, err
	}
	m.collections[i] = m.collections[i].WithAdded(ids)
	return copyCollection(m.collections[i]), nil
}

func (m *Memory) RemoveFromCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.Transport("remove from collection", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.collectionIndex(id)
	if i < 0 {
		return nil, domainerrors.NotFoundf("collection %s not found", id)
	}
	m.collections[i] = m.collections[i].WithRemoved(ids)
	return copyCollection(m.collections[i]), nil
}

// SharedBookmarks returns the bookmarks shared under shareID in insertion
// order. An unknown share id yields an empty list.
func (m *Memory) SharedBookmarks(ctx context.Context, shareID string) ([]model.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.Transport("shared bookmarks", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	result := []model.Bookmark{}
	for _, b := range m.bookmarks {
		if shareID != "" && b.ShareID == shareID {
			result = append(result, *copyBookmark(b))
		}
	}
	return result, nil
}

func (m *Memory) SetLinkStatus(ctx context.Context, id string, broken bool, checkedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.Transport("set link status", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.bookmarkIndex(id)
	if i < 0 {
		return domainerrors.NotFoundf("bookmark %s not found", id)
	}
	checked := checkedAt
	m.bookmarks[i].IsBroken = broken
	m.bookmarks[i].LastChecked = &checked
	return nil
}

func (m *Memory) RecordVisit(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.Transport("record visit", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.bookmarkIndex(id)
	if i < 0 {
		return domainerrors.NotFoundf("bookmark %s not found", id)
	}
	m.bookmarks[i].VisitCount++
	return nil
}

// state returns deep copies of the current data. Callers hold m.mu or
// otherwise own m exclusively.
func (m *Memory) state() ([]model.Bookmark, []model.Collection) {
	return copyBookmarks(m.bookmarks), copyCollections(m.collections)
}

func (m *Memory) restore(bookmarks []model.Bookmark, collections []model.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookmarks = bookmarks
	m.collections = collections
}

func (m *Memory) snapshot() ([]model.Bookmark, []model.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state()
}

func (m *Memory) bookmarkIndex(id string) int {
	for i, b := range m.bookmarks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) collectionIndex(id string) int {
	for i, c := range m.collections {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// requireBookmarks rejects ids that name no existing bookmark.
func (m *Memory) requireBookmarks(ids []string) error {
	var missing []string
	for _, id := range ids {
		if m.bookmarkIndex(id) < 0 {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return domainerrors.ValidationWithDetails(
			"one or more bookmarks are invalid",
			map[string]string{"bookmark_ids": strings.Join(missing, ",")},
		)
	}
	return nil
}

func copyBookmark(b model.Bookmark) *model.Bookmark {
	if b.Tags != nil {
		b.Tags = append([]string(nil), b.Tags...)
	}
	if b.LastChecked != nil {
		t := *b.LastChecked
		b.LastChecked = &t
	}
	return &b
}

func copyBookmarks(bookmarks []model.Bookmark) []model.Bookmark {
	result := make([]model.Bookmark, len(bookmarks))
	for i, b := range bookmarks {
		result[i] = *copyBookmark(b)
	}
	return result
}

func copyCollection(c model.Collection) *model.Collection {
	c.BookmarkIDs = append([]string{}, c.BookmarkIDs...)
	return &c
}

func copyCollections(collections []model.Collection) []model.Collection {
	result := make([]model.Collection, len(collections))
	for i, c := range collections {
		result[i] = *copyCollection(c)
	}
	return result
}
