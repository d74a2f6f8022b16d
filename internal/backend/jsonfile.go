package backend

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/model"
)

// fileData is the on-disk layout of a JSON store.
type fileData struct {
	Bookmarks   []model.Bookmark   `json:"bookmarks"`
	Collections []model.Collection `json:"collections"`
}

// JSONFile is a Backend persisted as a single JSON file. Every successful
// mutation rewrites the file; a failed write rolls the change back.
type JSONFile struct {
	path string
	mem  *Memory
	mu   sync.Mutex
}

// NewJSONFile loads path, or starts empty if the file doesn't exist.
func NewJSONFile(path string, opts ...MemoryOption) (*JSONFile, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var fd fileData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fd); err != nil {
			return nil, err
		}
	}

	opts = append([]MemoryOption{WithData(fd.Bookmarks, fd.Collections)}, opts...)
	return &JSONFile{path: path, mem: NewMemory(opts...)}, nil
}

// Path returns the storage file path.
func (j *JSONFile) Path() string {
	return j.path
}

func (j *JSONFile) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	return j.mem.ListBookmarks(ctx)
}

func (j *JSONFile) ListCollections(ctx context.Context) ([]model.Collection, error) {
	return j.mem.ListCollections(ctx)
}

func (j *JSONFile) SharedBookmarks(ctx context.Context, shareID string) ([]model.Bookmark, error) {
	return j.mem.SharedBookmarks(ctx, shareID)
}

func (j *JSONFile) CreateBookmark(ctx context.Context, draft model.Draft) (*model.Bookmark, error) {
	return mutate(j, func() (*model.Bookmark, error) { return j.mem.CreateBookmark(ctx, draft) })
}

func (j *JSONFile) UpdateBookmark(ctx context.Context, id string, patch model.Patch) (*model.Bookmark, error) {
	return mutate(j, func() (*model.Bookmark, error) { return j.mem.UpdateBookmark(ctx, id, patch) })
}

func (j *JSONFile) DeleteBookmark(ctx context.Context, id string) error {
	_, err := mutate(j, func() (struct{}, error) { return struct{}{}, j.mem.DeleteBookmark(ctx, id) })
	return err
}

func (j *JSONFile) ShareBookmarks(ctx context.Context, ids []string) (string, error) {
	return mutate(j, func() (string, error) { return j.mem.ShareBookmarks(ctx, ids) })
}

func (j *JSONFile) CreateCollection(ctx context.Context, name string, ids []string) (*model.Collection, error) {
	return mutate(j, func() (*model.Collection, error) { return j.mem.CreateCollection(ctx, name, ids) })
}

func (j *JSONFile) RenameCollection(ctx context.Context, id, name string) (*model.Collection, error) {
	return mutate(j, func() (*model.Collection, error) { return j.mem.RenameCollection(ctx, id, name) })
}

func (j *JSONFile) DeleteCollection(ctx context.Context, id string) error {
	_, err := mutate(j, func() (struct{}, error) { return struct{}{}, j.mem.DeleteCollection(ctx, id) })
	return err
}

func (j *JSONFile) AddToCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	return mutate(j, func() (*model.Collection, error) { return j.mem.AddToCollection(ctx, id, ids) })
}

func (j *JSONFile) RemoveFromCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	return mutate(j, func() (*model.Collection, error) { return j.mem.RemoveFromCollection(ctx, id, ids) })
}

func (j *JSONFile) SetLinkStatus(ctx context.Context, id string, broken bool, checkedAt time.Time) error {
	_, err := mutate(j, func() (struct{}, error) {
		return struct{}{}, j.mem.SetLinkStatus(ctx, id, broken, checkedAt)
	})
	return err
}

func (j *JSONFile) RecordVisit(ctx context.Context, id string) error {
	_, err := mutate(j, func() (struct{}, error) { return struct{}{}, j.mem.RecordVisit(ctx, id) })
	return err
}

// mutate runs op and persists the result, restoring the previous state if
// the file cannot be written.
func mutate[T any](j *JSONFile, op func() (T, error)) (T, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	bookmarks, collections := j.mem.snapshot()
	result, err := op()
	if err != nil {
		return result, err
	}

	if err := j.save(); err != nil {
		j.mem.restore(bookmarks, collections)
		var zero T
		return zero, domainerrors.Transport("save "+j.path, err)
	}
	return result, nil
}

// save writes the file through a temp file and rename.
func (j *JSONFile) save() error {
	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	bookmarks, collections := j.mem.snapshot()
	data, err := json.MarshalIndent(fileData{Bookmarks: bookmarks, Collections: collections}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".shelf-*.json")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), j.path)
}
