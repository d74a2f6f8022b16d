// Package backend defines the backing store contract and its
// implementations: in-memory, JSON file, SQLite, Redis and a REST client
// for the hosted bookmark API.
package backend

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/nikbrunner/shelf/internal/model"
)

// Backend is the remote-or-local store of bookmarks and collections.
// Implementations return errors from internal/errors: NotFound when the
// target id is unknown, Validation for rejected input and Transport for
// everything else.
type Backend interface {
	ListBookmarks(ctx context.Context) ([]model.Bookmark, error)
	ListCollections(ctx context.Context) ([]model.Collection, error)

	CreateBookmark(ctx context.Context, draft model.Draft) (*model.Bookmark, error)
	UpdateBookmark(ctx context.Context, id string, patch model.Patch) (*model.Bookmark, error)
	DeleteBookmark(ctx context.Context, id string) error

	// ShareBookmarks shares all ids under one new share id. It either
	// shares every bookmark or none.
	ShareBookmarks(ctx context.Context, ids []string) (string, error)

	CreateCollection(ctx context.Context, name string, ids []string) (*model.Collection, error)
	RenameCollection(ctx context.Context, id, name string) (*model.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
	AddToCollection(ctx context.Context, id string, ids []string) (*model.Collection, error)
	RemoveFromCollection(ctx context.Context, id string, ids []string) (*model.Collection, error)
}

// SharedReader reads the bookmarks published under a share id.
type SharedReader interface {
	SharedBookmarks(ctx context.Context, shareID string) ([]model.Bookmark, error)
}

// LinkStatusWriter records the outcome of a link health check.
type LinkStatusWriter interface {
	SetLinkStatus(ctx context.Context, id string, broken bool, checkedAt time.Time) error
}

// VisitRecorder counts bookmark opens.
type VisitRecorder interface {
	RecordVisit(ctx context.Context, id string) error
}

// TokenSource provides the bearer token for authenticated requests.
type TokenSource interface {
	Token() string
}

// NewShareID generates a URL-safe share id (21 character NanoID).
func NewShareID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate share id: %w", err)
	}
	return id, nil
}
