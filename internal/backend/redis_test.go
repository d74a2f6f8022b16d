package backend_test

import (
	"context"
	"encoding/json"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/shelf/internal/backend"
	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/model"
)

func TestRedis_KeyLayoutAndOrder(t *testing.T) {
	r, srv := newTestRedis(t)
	ctx := context.Background()

	first := mustCreate(t, r, "First", "https://first.example.com")
	second := mustCreate(t, r, "Second", "https://second.example.com")

	raw, err := srv.Get(backend.BookmarkKey(first.ID))
	assert.NilError(t, err)
	var stored model.Bookmark
	assert.NilError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, stored.Title, "First")

	order, err := srv.ZMembers("shelf:bookmarks:order")
	assert.NilError(t, err)
	assert.DeepEqual(t, order, []string{first.ID, second.ID})

	assert.NilError(t, r.DeleteBookmark(ctx, first.ID))
	assert.Assert(t, !srv.Exists(backend.BookmarkKey(first.ID)))

	third := mustCreate(t, r, "Third", "https://third.example.com")
	order, err = srv.ZMembers("shelf:bookmarks:order")
	assert.NilError(t, err)
	assert.DeepEqual(t, order, []string{second.ID, third.ID})
}

func TestRedis_ReshareMovesBookmark(t *testing.T) {
	r, srv := newTestRedis(t)
	ctx := context.Background()
	a := mustCreate(t, r, "A", "https://a.example.com")
	b := mustCreate(t, r, "B", "https://b.example.com")

	older, err := r.ShareBookmarks(ctx, []string{a.ID, b.ID})
	assert.NilError(t, err)
	newer, err := r.ShareBookmarks(ctx, []string{b.ID})
	assert.NilError(t, err)

	// the older set still lists b; reads filter by the bookmark's share id
	members, err := srv.Members(backend.ShareKey(older))
	assert.NilError(t, err)
	assert.Equal(t, len(members), 2)

	shared, err := r.SharedBookmarks(ctx, older)
	assert.NilError(t, err)
	assert.DeepEqual(t, bookmarkIDs(shared), []string{a.ID})

	shared, err = r.SharedBookmarks(ctx, newer)
	assert.NilError(t, err)
	assert.DeepEqual(t, bookmarkIDs(shared), []string{b.ID})
}

func TestRedis_ToleratesSparseJSON(t *testing.T) {
	r, srv := newTestRedis(t)
	ctx := context.Background()

	assert.NilError(t, srv.Set(backend.BookmarkKey("x"), `{"id":"x","title":"X","url":"https://x.example.com"}`))
	_, err := srv.ZAdd("shelf:bookmarks:order", 1, "x")
	assert.NilError(t, err)
	assert.NilError(t, srv.Set(backend.CollectionKey("c"), `{"id":"c","name":"C"}`))
	_, err = srv.ZAdd("shelf:collections:order", 1, "c")
	assert.NilError(t, err)

	bms, err := r.ListBookmarks(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(bms), 1)
	assert.Assert(t, bms[0].Tags != nil)

	cols, err := r.ListCollections(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(cols), 1)
	assert.Assert(t, cols[0].BookmarkIDs != nil)
}

func TestRedis_ServerErrorsAreTransport(t *testing.T) {
	r, srv := newTestRedis(t)
	ctx := context.Background()
	x := mustCreate(t, r, "X", "https://x.example.com")

	srv.SetError("LOADING server is loading")

	_, err := r.ListBookmarks(ctx)
	assert.Assert(t, domainerrors.Is(err, domainerrors.ErrTransport), "got %v", err)

	title := "Y"
	_, err = r.UpdateBookmark(ctx, x.ID, model.Patch{Title: &title})
	assert.Assert(t, domainerrors.Is(err, domainerrors.ErrTransport), "got %v", err)

	err = r.DeleteCollection(ctx, "c")
	assert.Assert(t, domainerrors.Is(err, domainerrors.ErrTransport), "got %v", err)

	srv.SetError("")
	_, err = r.ListBookmarks(ctx)
	assert.NilError(t, err)
}
