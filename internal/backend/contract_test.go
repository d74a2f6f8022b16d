package backend_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/shelf/internal/backend"
	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/model"
)

type fullBackend interface {
	backend.Backend
	backend.SharedReader
	backend.LinkStatusWriter
	backend.VisitRecorder
}

// backends returns a constructor per local implementation so every
// behavior below is checked against each of them.
func backends() map[string]func(t *testing.T) fullBackend {
	return map[string]func(t *testing.T) fullBackend{
		"memory": func(t *testing.T) fullBackend {
			return backend.NewMemory()
		},
		"json": func(t *testing.T) fullBackend {
			j, err := backend.NewJSONFile(filepath.Join(t.TempDir(), "bookmarks.json"))
			assert.NilError(t, err)
			return j
		},
		"sqlite": func(t *testing.T) fullBackend {
			return newTestSQLite(t)
		},
		"redis": func(t *testing.T) fullBackend {
			r, _ := newTestRedis(t)
			return r
		},
	}
}

// newTestRedis starts an in-process Redis server for one test.
func newTestRedis(t *testing.T) (*backend.Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	r := backend.NewRedis(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = r.Close() })
	return r, srv
}

func newTestSQLite(t *testing.T) *backend.SQLite {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := backend.NewSQLite("file:" + name + "?mode=memory&cache=shared")
	assert.NilError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func forEachBackend(t *testing.T, fn func(t *testing.T, b fullBackend)) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			fn(t, open(t))
		})
	}
}

func mustCreate(t *testing.T, b backend.Backend, title, url string, tags ...string) *model.Bookmark {
	t.Helper()
	created, err := b.CreateBookmark(context.Background(), model.Draft{Title: title, URL: url, Tags: tags})
	assert.NilError(t, err)
	return created
}

func bookmarkIDs(bms []model.Bookmark) []string {
	ids := make([]string, len(bms))
	for i, b := range bms {
		ids[i] = b.ID
	}
	return ids
}

func TestBackend_CreateAndList(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b fullBackend) {
		ctx := context.Background()

		first := mustCreate(t, b, "  Rust Book ", "https://doc.rust-lang.org/book/", "rust", "Rust")
		second := mustCreate(t, b, "Go Guide", "https://go.dev/doc/")

		assert.Assert(t, first.ID != "")
		assert.Equal(t, first.Title, "Rust Book")
		assert.Assert(t, !first.CreatedAt.IsZero())

		got, err := b.ListBookmarks(ctx)
		assert.NilError(t, err)
		assert.DeepEqual(t, bookmarkIDs(got), []string{first.ID, second.ID})
		assert.DeepEqual(t, got[0].Tags, first.Tags)
		assert.Equal(t, got[0].URL, "https://doc.rust-lang.org/book/")
		assert.Assert(t, !got[0].Shared)
	})
}

func TestBackend_UpdateBookmark(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b fullBackend) {
		ctx := context.Background()
		created := mustCreate(t, b, "Old", "https://example.com")

		title := "New"
		tags := []string{"docs"}
		updated, err := b.UpdateBookmark(ctx, created.ID, model.Patch{Title: &title, Tags: &tags})
		assert.NilError(t, err)
		assert.Equal(t, updated.Title, "New")
		assert.Equal(t, updated.URL, "https://example.com")
		assert.DeepEqual(t, updated.Tags, []string{"docs"})

		got, err := b.ListBookmarks(ctx)
		assert.NilError(t, err)
		assert.Equal(t, got[0].Title, "New")

		_, err = b.UpdateBookmark(ctx, "missing", model.Patch{Title: &title})
		assert.Assert(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)
	})
}

func TestBackend_DeleteBookmarkLeavesDanglingMembership(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b fullBackend) {
		ctx := context.Background()
		keep := mustCreate(t, b, "Keep", "https://keep.example.com")
		gone := mustCreate(t, b, "Gone", "https://gone.example.com")
		c, err := b.CreateCollection(ctx, "Reading", []string{keep.ID, gone.ID})
		assert.NilError(t, err)

		assert.NilError(t, b.DeleteBookmark(ctx, gone.ID))

		err = b.DeleteBookmark(ctx, gone.ID)
		assert.Assert(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)

		bms, err := b.ListBookmarks(ctx)
		assert.NilError(t, err)
		assert.DeepEqual(t, bookmarkIDs(bms), []string{keep.ID})

		cols, err := b.ListCollections(ctx)
		assert.NilError(t, err)
		assert.Equal(t, len(cols), 1)
		assert.Equal(t, cols[0].ID, c.ID)
		assert.DeepEqual(t, cols[0].BookmarkIDs, []string{keep.ID, gone.ID})
	})
}

func TestBackend_ShareBookmarks(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b fullBackend) {
		ctx := context.Background()
		a := mustCreate(t, b, "A", "https://a.example.com")
		c := mustCreate(t, b, "C", "https://c.example.com")
		mustCreate(t, b, "Private", "https://p.example.com")

		shareID, err := b.ShareBookmarks(ctx, []string{a.ID, c.ID, a.ID})
		assert.NilError(t, err)
		assert.Equal(t, len(shareID), 21)

		shared, err := b.SharedBookmarks(ctx, shareID)
		assert.NilError(t, err)
		assert.DeepEqual(t, bookmarkIDs(shared), []string{a.ID, c.ID})
		for _, s := range shared {
			assert.Assert(t, s.Shared)
			assert.Equal(t, s.ShareID, shareID)
		}

		none, err := b.SharedBookmarks(ctx, "unknown")
		assert.NilError(t, err)
		assert.Equal(t, len(none), 0)
	})
}

func TestBackend_ShareIsAllOrNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b fullBackend) {
		ctx := context.Background()
		a := mustCreate(t, b, "A", "https://a.example.com")

		_, err := b.ShareBookmarks(ctx, []string{a.ID, "missing"})
		assert.Assert(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)

		bms, err := b.ListBookmarks(ctx)
		assert.NilError(t, err)
		assert.Assert(t, !bms[0].Shared)
		assert.Equal(t, bms[0].ShareID, "")
	})
}

func TestBackend_CollectionLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b fullBackend) {
		ctx := context.Background()
		x := mustCreate(t, b, "X", "https://x.example.com")
		y := mustCreate(t, b, "Y", "https://y.example.com")

		c, err := b.CreateCollection(ctx, "  Reading  ", []string{x.ID})
		assert.NilError(t, err)
		assert.Equal(t, c.Name, "Reading")
		assert.DeepEqual(t, c.BookmarkIDs, []string{x.ID})

		renamed, err := b.RenameCollection(ctx, c.ID, "Later")
		assert.NilError(t, err)
		assert.Equal(t, renamed.Name, "Later")

		added, err := b.AddToCollection(ctx, c.ID, []string{y.ID, x.ID, y.ID})
		assert.NilError(t, err)
		assert.DeepEqual(t, added.BookmarkIDs, []string{x.ID, y.ID})

		again, err := b.AddToCollection(ctx, c.ID, []string{x.ID})
		assert.NilError(t, err)
		assert.DeepEqual(t, again.BookmarkIDs, []string{x.ID, y.ID})

		removed, err := b.RemoveFromCollection(ctx, c.ID, []string{x.ID, "never-there"})
		assert.NilError(t, err)
		assert.DeepEqual(t, removed.BookmarkIDs, []string{y.ID})

		assert.NilError(t, b.DeleteCollection(ctx, c.ID))
		cols, err := b.ListCollections(ctx)
		assert.NilError(t, err)
		assert.Equal(t, len(cols), 0)

		bms, err := b.ListBookmarks(ctx)
		assert.NilError(t, err)
		assert.Equal(t, len(bms), 2)
	})
}

func TestBackend_CollectionErrors(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b fullBackend) {
		ctx := context.Background()
		x := mustCreate(t, b, "X", "https://x.example.com")

		_, err := b.CreateCollection(ctx, "Bad", []string{x.ID, "missing"})
		assert.Assert(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)

		_, err = b.CreateCollection(ctx, "   ", nil)
		assert.Assert(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)

		_, err = b.RenameCollection(ctx, "missing", "Name")
		assert.Assert(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)

		_, err = b.AddToCollection(ctx, "missing", []string{x.ID})
		assert.Assert(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)

		_, err = b.RemoveFromCollection(ctx, "missing", []string{x.ID})
		assert.Assert(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)

		err = b.DeleteCollection(ctx, "missing")
		assert.Assert(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)

		cols, err := b.ListCollections(ctx)
		assert.NilError(t, err)
		assert.Equal(t, len(cols), 0)
	})
}

func TestBackend_LinkStatusAndVisits(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b fullBackend) {
		ctx := context.Background()
		x := mustCreate(t, b, "X", "https://x.example.com")
		checked := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		assert.NilError(t, b.SetLinkStatus(ctx, x.ID, true, checked))
		assert.NilError(t, b.RecordVisit(ctx, x.ID))
		assert.NilError(t, b.RecordVisit(ctx, x.ID))

		bms, err := b.ListBookmarks(ctx)
		assert.NilError(t, err)
		assert.Assert(t, bms[0].IsBroken)
		assert.Assert(t, bms[0].LastChecked != nil)
		assert.Assert(t, bms[0].LastChecked.Equal(checked))
		assert.Equal(t, bms[0].VisitCount, 2)

		err = b.RecordVisit(ctx, "missing")
		assert.Assert(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)
	})
}

func TestBackend_CanceledContext(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b fullBackend) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := b.ListBookmarks(ctx)
		assert.Assert(t, err != nil)
	})
}
