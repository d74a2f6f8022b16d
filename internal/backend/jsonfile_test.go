package backend_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/shelf/internal/backend"
	domainerrors "github.com/nikbrunner/shelf/internal/errors"
)

func TestJSONFile_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "bookmarks.json")

	j, err := backend.NewJSONFile(path)
	assert.NilError(t, err)
	assert.Equal(t, j.Path(), path)

	b := mustCreate(t, j, "Persisted", "https://example.com", "go")
	_, err = j.CreateCollection(ctx, "Reading", []string{b.ID})
	assert.NilError(t, err)

	reopened, err := backend.NewJSONFile(path)
	assert.NilError(t, err)

	bms, err := reopened.ListBookmarks(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(bms), 1)
	assert.Equal(t, bms[0].ID, b.ID)
	assert.DeepEqual(t, bms[0].Tags, []string{"go"})

	cols, err := reopened.ListCollections(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, cols[0].BookmarkIDs, []string{b.ID})
}

func TestJSONFile_RollsBackWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "store")
	j, err := backend.NewJSONFile(filepath.Join(dir, "bookmarks.json"))
	assert.NilError(t, err)

	// a regular file where the directory should be makes every save fail
	assert.NilError(t, os.WriteFile(dir, []byte("x"), 0644))

	_, err = j.CreateBookmark(ctx, draft("Lost", "https://example.com"))
	assert.Assert(t, domainerrors.Is(err, domainerrors.ErrTransport), "got %v", err)

	bms, err := j.ListBookmarks(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(bms), 0)
}

func TestJSONFile_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.json")
	assert.NilError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := backend.NewJSONFile(path)
	assert.Assert(t, err != nil)
}
