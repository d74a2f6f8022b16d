// Package coordinator performs bookmark and collection mutations against a
// backend and keeps the entity store consistent by reloading after every
// write.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/shelf/internal/backend"
	"github.com/nikbrunner/shelf/internal/entity"
	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/validation"
)

// DefaultBulkConcurrency bounds in-flight requests of a bulk delete when
// no limit is configured.
const DefaultBulkConcurrency = 8

// ViewState is the part of the view a mutation reads or resets.
type ViewState interface {
	Scope() model.Scope
	ClearSelection()
	// CollectionRemoved resets the scope to all bookmarks if id is the
	// active collection.
	CollectionRemoved(id string)
	// Refreshed is called after a new snapshot replaced the old one.
	Refreshed(snap *model.Snapshot)
}

// Params holds the dependencies of a Coordinator.
type Params struct {
	Backend         backend.Backend
	Store           *entity.Store
	View            ViewState // optional
	Validator       *validation.Validator
	Logger          logger.Logger
	BulkConcurrency int
}

// Coordinator is safe for concurrent use. Every entry point may block on
// the backend and ends with at most one store refresh.
type Coordinator struct {
	backend   backend.Backend
	store     *entity.Store
	view      ViewState
	validate  *validation.Validator
	log       logger.Logger
	bulkLimit int
}

// New creates a Coordinator. Missing optional dependencies get defaults.
func New(p Params) *Coordinator {
	c := &Coordinator{
		backend:   p.Backend,
		store:     p.Store,
		view:      p.View,
		validate:  p.Validator,
		log:       p.Logger,
		bulkLimit: p.BulkConcurrency,
	}
	if c.store == nil {
		c.store = entity.NewStore()
	}
	if c.view == nil {
		c.view = detachedView{}
	}
	if c.validate == nil {
		c.validate = validation.New()
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	if c.bulkLimit <= 0 {
		c.bulkLimit = DefaultBulkConcurrency
	}
	return c
}

// Store returns the entity store the coordinator refreshes.
func (c *Coordinator) Store() *entity.Store {
	return c.store
}

// Backend returns the underlying backend.
func (c *Coordinator) Backend() backend.Backend {
	return c.backend
}

// Refresh lists bookmarks and collections concurrently and replaces the
// snapshot. A refresh that finishes after a newer one is discarded.
func (c *Coordinator) Refresh(ctx context.Context) (*model.Snapshot, error) {
	ticket := c.store.BeginRefresh()
	start := time.Now()

	var (
		bookmarks   []model.Bookmark
		collections []model.Collection
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookmarks, err = c.backend.ListBookmarks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		collections, err = c.backend.ListCollections(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.Warn("refresh failed", logger.Error(err))
		return c.store.Snapshot(), domainerrors.AsTransport("refresh", err)
	}

	snap, applied := c.store.Replace(ticket, bookmarks, collections)
	c.log.Debug("refreshed",
		logger.Uint64("version", snap.Version),
		logger.Int("bookmarks", len(snap.Bookmarks)),
		logger.Int("collections", len(snap.Collections)),
		logger.Bool("applied", applied),
		logger.Duration("took", time.Since(start)),
	)
	if applied {
		c.view.Refreshed(snap)
	}
	return snap, nil
}

// AddBookmark creates a bookmark. When the view is scoped to a collection
// the new bookmark also joins that collection.
func (c *Coordinator) AddBookmark(ctx context.Context, draft model.Draft) (*model.Bookmark, error) {
	if err := c.validate.Draft(draft); err != nil {
		return nil, err
	}

	created, err := c.backend.CreateBookmark(ctx, draft)
	if err != nil {
		c.log.Error("create bookmark failed", logger.String("url", draft.URL), logger.Error(err))
		return nil, domainerrors.AsTransport("create bookmark", err)
	}
	if created == nil {
		return nil, domainerrors.Transport("create bookmark", fmt.Errorf("backend returned no bookmark"))
	}
	c.log.Info("bookmark created", logger.String("id", created.ID))

	var memberErr error
	if scope := c.view.Scope(); scope.Kind == model.ScopeCollection {
		if _, err := c.backend.AddToCollection(ctx, scope.CollectionID, []string{created.ID}); err != nil {
			c.log.Error("add new bookmark to collection failed",
				logger.String("id", created.ID),
				logger.String("collection", scope.CollectionID),
				logger.Error(err))
			memberErr = domainerrors.AsTransport("add to collection "+scope.CollectionID, err)
		}
	}

	_, refreshErr := c.Refresh(ctx)
	return created, domainerrors.Join(memberErr, refreshErr)
}

// EditBookmark applies the fields of patch that differ from the current
// snapshot. A patch that changes nothing makes no backend call.
func (c *Coordinator) EditBookmark(ctx context.Context, id string, patch model.Patch) (*model.Bookmark, error) {
	if err := c.validate.Patch(patch); err != nil {
		return nil, err
	}

	if current := c.store.Snapshot().GetBookmarkByID(id); current != nil {
		patch = patch.Prune(*current)
		if patch.IsEmpty() {
			c.log.Debug("edit is a no-op", logger.String("id", id))
			unchanged := *current
			return &unchanged, nil
		}
	}

	updated, err := c.backend.UpdateBookmark(ctx, id, patch)
	if err != nil {
		c.log.Error("update bookmark failed", logger.String("id", id), logger.Error(err))
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			_, _ = c.Refresh(ctx)
		}
		return nil, domainerrors.AsTransport("update bookmark", err)
	}
	c.log.Info("bookmark updated", logger.String("id", id), logger.Strings("fields", patch.Fields()))

	_, refreshErr := c.Refresh(ctx)
	return updated, refreshErr
}

// DeleteBookmark deletes one bookmark. Collections listing it are left as
// they are.
func (c *Coordinator) DeleteBookmark(ctx context.Context, id string) error {
	if err := c.backend.DeleteBookmark(ctx, id); err != nil {
		c.log.Error("delete bookmark failed", logger.String("id", id), logger.Error(err))
		return domainerrors.AsTransport("delete bookmark", err)
	}
	c.log.Info("bookmark deleted", logger.String("id", id))

	_, err := c.Refresh(ctx)
	return err
}

// BulkShare shares ids under a single new share id in one request. On
// success the selection is cleared.
func (c *Coordinator) BulkShare(ctx context.Context, ids []string) (string, error) {
	ids = model.UniqueIDs(ids)
	if err := c.validate.IDs("bookmark_ids", ids); err != nil {
		return "", err
	}

	shareID, err := c.backend.ShareBookmarks(ctx, ids)
	if err != nil {
		c.log.Error("share failed", logger.Int("count", len(ids)), logger.Error(err))
		return "", domainerrors.AsTransport("share bookmarks", err)
	}
	if shareID == "" {
		return "", domainerrors.Transport("share bookmarks", fmt.Errorf("backend returned no share id"))
	}
	c.log.Info("bookmarks shared", logger.String("share_id", shareID), logger.Int("count", len(ids)))

	c.view.ClearSelection()
	_, refreshErr := c.Refresh(ctx)
	return shareID, refreshErr
}

// CreateCollection creates a collection holding ids.
func (c *Coordinator) CreateCollection(ctx context.Context, name string, ids []string) (*model.Collection, error) {
	name, err := c.validate.CollectionName(name)
	if err != nil {
		return nil, err
	}
	ids = model.UniqueIDs(ids)

	created, err := c.backend.CreateCollection(ctx, name, ids)
	if err != nil {
		c.log.Error("create collection failed", logger.String("name", name), logger.Error(err))
		return nil, domainerrors.AsTransport("create collection", err)
	}
	if created == nil {
		return nil, domainerrors.Transport("create collection", fmt.Errorf("backend returned no collection"))
	}
	c.log.Info("collection created", logger.String("id", created.ID), logger.Int("bookmarks", len(ids)))

	_, refreshErr := c.Refresh(ctx)
	return created, refreshErr
}

// RenameCollection renames a collection.
func (c *Coordinator) RenameCollection(ctx context.Context, id, name string) (*model.Collection, error) {
	name, err := c.validate.CollectionName(name)
	if err != nil {
		return nil, err
	}

	renamed, err := c.backend.RenameCollection(ctx, id, name)
	if err != nil {
		c.log.Error("rename collection failed", logger.String("id", id), logger.Error(err))
		return nil, domainerrors.AsTransport("rename collection", err)
	}
	c.log.Info("collection renamed", logger.String("id", id))

	_, refreshErr := c.Refresh(ctx)
	return renamed, refreshErr
}

// DeleteCollection deletes a collection but none of its bookmarks. If it
// was the active scope the view falls back to all bookmarks.
func (c *Coordinator) DeleteCollection(ctx context.Context, id string) error {
	if err := c.backend.DeleteCollection(ctx, id); err != nil {
		c.log.Error("delete collection failed", logger.String("id", id), logger.Error(err))
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			// already gone upstream
			c.view.CollectionRemoved(id)
			if _, refreshErr := c.Refresh(ctx); refreshErr != nil {
				c.log.Warn("refresh after missing collection failed", logger.Error(refreshErr))
			}
		}
		return domainerrors.AsTransport("delete collection", err)
	}
	c.log.Info("collection deleted", logger.String("id", id))

	c.view.CollectionRemoved(id)
	_, err := c.Refresh(ctx)
	return err
}

// AddBookmarksToCollection adds ids to a collection with set semantics.
// If the snapshot shows every id already present the backend is skipped.
// On success the selection is cleared.
func (c *Coordinator) AddBookmarksToCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	ids = model.UniqueIDs(ids)
	if err := c.validate.IDs("bookmark_ids", ids); err != nil {
		return nil, err
	}

	if current := c.store.Snapshot().GetCollectionByID(id); current != nil && containsAll(*current, ids) {
		c.log.Debug("add to collection is a no-op", logger.String("collection", id))
		c.view.ClearSelection()
		return copyCollection(*current), nil
	}

	updated, err := c.backend.AddToCollection(ctx, id, ids)
	if err != nil {
		c.log.Error("add to collection failed", logger.String("collection", id), logger.Error(err))
		return nil, domainerrors.AsTransport("add to collection", err)
	}
	c.log.Info("added to collection", logger.String("collection", id), logger.Int("count", len(ids)))

	c.view.ClearSelection()
	_, refreshErr := c.Refresh(ctx)
	return updated, refreshErr
}

// RemoveBookmarksFromCollection removes ids from a collection. If the
// snapshot shows none of them present the backend is skipped. On success
// the selection is cleared.
func (c *Coordinator) RemoveBookmarksFromCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	ids = model.UniqueIDs(ids)
	if err := c.validate.IDs("bookmark_ids", ids); err != nil {
		return nil, err
	}

	if current := c.store.Snapshot().GetCollectionByID(id); current != nil && containsNone(*current, ids) {
		c.log.Debug("remove from collection is a no-op", logger.String("collection", id))
		c.view.ClearSelection()
		return copyCollection(*current), nil
	}

	updated, err := c.backend.RemoveFromCollection(ctx, id, ids)
	if err != nil {
		c.log.Error("remove from collection failed", logger.String("collection", id), logger.Error(err))
		return nil, domainerrors.AsTransport("remove from collection", err)
	}
	c.log.Info("removed from collection", logger.String("collection", id), logger.Int("count", len(ids)))

	c.view.ClearSelection()
	_, refreshErr := c.Refresh(ctx)
	return updated, refreshErr
}

func containsAll(c model.Collection, ids []string) bool {
	for _, id := range ids {
		if !c.Contains(id) {
			return false
		}
	}
	return true
}

func containsNone(c model.Collection, ids []string) bool {
	for _, id := range ids {
		if c.Contains(id) {
			return false
		}
	}
	return true
}

func copyCollection(c model.Collection) *model.Collection {
	c.BookmarkIDs = append([]string{}, c.BookmarkIDs...)
	return &c
}

// detachedView is used when no view is attached, e.g. for CLI imports.
type detachedView struct{}

func (detachedView) Scope() model.Scope          { return model.AllScope() }
func (detachedView) ClearSelection()             {}
func (detachedView) CollectionRemoved(id string) {}
func (detachedView) Refreshed(*model.Snapshot)   {}
