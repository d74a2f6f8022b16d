// Package view wires the entity store, projection, selection and mutation
// coordinator into one controller that a UI drives with intents.
package view

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/nikbrunner/shelf/internal/backend"
	"github.com/nikbrunner/shelf/internal/coordinator"
	"github.com/nikbrunner/shelf/internal/entity"
	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/projection"
	"github.com/nikbrunner/shelf/internal/selection"
)

// Params configures a Controller.
type Params struct {
	Backend         backend.Backend
	Session         Session
	Theme           Theme
	Locale          string
	ShareBaseURL    string
	BulkConcurrency int
	Logger          logger.Logger
}

// Controller holds the state of one bookmark view. Query and selection
// changes are synchronous; mutations block on the backend and may be run
// from a goroutine.
type Controller struct {
	mu    sync.Mutex
	query model.ViewQuery

	store     *entity.Store
	cache     *projection.Cache
	selection *selection.Tracker
	coord     *coordinator.Coordinator
	backend   backend.Backend

	session   Session
	theme     Theme
	shareBase string
	log       logger.Logger
}

// New creates a Controller showing all bookmarks, newest first. Call
// Refresh to load the first snapshot.
func New(p Params) *Controller {
	log := p.Logger
	if log == nil {
		log = logger.Nop()
	}
	session := p.Session
	if session == nil {
		session = NewStaticSession("", "")
	}
	theme := p.Theme
	if theme == "" {
		theme = ThemeDark
	}

	c := &Controller{
		query:     model.DefaultQuery(),
		store:     entity.NewStore(),
		cache:     projection.NewCache(projection.NewEngine(p.Locale)),
		selection: selection.New(),
		backend:   p.Backend,
		session:   session,
		theme:     theme,
		shareBase: p.ShareBaseURL,
		log:       log,
	}
	c.coord = coordinator.New(coordinator.Params{
		Backend:         p.Backend,
		Store:           c.store,
		View:            c,
		Logger:          log,
		BulkConcurrency: p.BulkConcurrency,
	})
	return c
}

// Session returns the injected session.
func (c *Controller) Session() Session {
	return c.session
}

// Theme returns the theme preference the view was created with.
func (c *Controller) Theme() Theme {
	return c.theme
}

// Snapshot returns the current entity snapshot.
func (c *Controller) Snapshot() *model.Snapshot {
	return c.store.Snapshot()
}

// Query returns the current view query.
func (c *Controller) Query() model.ViewQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Scope returns the active scope.
func (c *Controller) Scope() model.Scope {
	return c.Query().Scope
}

// Refresh reloads the snapshot from the backend.
func (c *Controller) Refresh(ctx context.Context) error {
	_, err := c.coord.Refresh(ctx)
	return err
}

// setQuery applies update and clears the selection if the query changed.
func (c *Controller) setQuery(update func(q *model.ViewQuery)) bool {
	c.mu.Lock()
	before := c.query
	update(&c.query)
	changed := c.query != before
	c.mu.Unlock()

	if changed {
		c.selection.Clear()
	}
	return changed
}

// SetScope switches between all bookmarks and a collection.
func (c *Controller) SetScope(s model.Scope) {
	c.setQuery(func(q *model.ViewQuery) { q.Scope = s })
}

// SetSearch sets the free text filter.
func (c *Controller) SetSearch(text string) {
	c.setQuery(func(q *model.ViewQuery) { q.SearchText = text })
}

// SetStatusFilter sets the link health or sharing filter.
func (c *Controller) SetStatusFilter(f model.StatusFilter) {
	c.setQuery(func(q *model.ViewQuery) { q.StatusFilter = f })
}

// SetSortKey sets the ordering.
func (c *Controller) SetSortKey(k model.SortKey) {
	c.setQuery(func(q *model.ViewQuery) { q.SortKey = k })
}

// Projection returns the bookmarks to display and drops selected ids that
// are no longer visible. Callers must not modify the returned slice.
func (c *Controller) Projection() []model.Bookmark {
	return c.project(c.store.Snapshot())
}

func (c *Controller) project(snap *model.Snapshot) []model.Bookmark {
	bookmarks := c.cache.Project(snap, c.Query())
	if dropped := c.selection.Retain(projection.IDs(bookmarks)); dropped > 0 {
		c.log.Debug("selection reconciled", logger.Int("dropped", dropped))
	}
	return bookmarks
}

// Refreshed reconciles the view with a new snapshot: a scope pointing at a
// collection that no longer exists falls back to all bookmarks, and
// selected ids that left the projection are dropped.
func (c *Controller) Refreshed(snap *model.Snapshot) {
	if scope := c.Scope(); scope.Kind == model.ScopeCollection && snap.GetCollectionByID(scope.CollectionID) == nil {
		c.log.Info("active collection vanished", logger.String("collection", scope.CollectionID))
		c.SetScope(model.AllScope())
	}
	c.project(snap)
}

// visible reports whether id is part of the current projection.
func (c *Controller) visible(id string) bool {
	for _, b := range c.Projection() {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Toggle flips the selection of id and returns whether it is now selected.
// Ids outside the projection are ignored.
func (c *Controller) Toggle(id string) bool {
	if !c.visible(id) {
		return false
	}
	return c.selection.Flip(id)
}

// SetSelected includes or excludes id. Including an id outside the
// projection is ignored.
func (c *Controller) SetSelected(id string, included bool) {
	if included && !c.visible(id) {
		return
	}
	c.selection.Toggle(id, included)
}

// SelectAll selects every visible bookmark, or clears the selection if
// exactly those are already selected.
func (c *Controller) SelectAll() {
	c.selection.SelectAll(projection.IDs(c.Projection()))
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.selection.Clear()
}

// IsSelected reports whether id is selected.
func (c *Controller) IsSelected(id string) bool {
	return c.selection.IsSelected(id)
}

// Selected returns the selected ids, sorted.
func (c *Controller) Selected() []string {
	return c.selection.IDs()
}

// selectedVisible reconciles the selection with the projection and
// returns it. Bulk intents act on this, never on the raw tracker.
func (c *Controller) selectedVisible() []string {
	c.Projection()
	return c.selection.IDs()
}

// SelectionSize returns the number of selected bookmarks.
func (c *Controller) SelectionSize() int {
	return c.selection.Size()
}

// CollectionRemoved falls back to all bookmarks when id is the active
// collection.
func (c *Controller) CollectionRemoved(id string) {
	c.mu.Lock()
	active := c.query.Scope.IsCollection(id)
	c.mu.Unlock()
	if active {
		c.SetScope(model.AllScope())
	}
}

// AddBookmark creates a bookmark in the active scope.
func (c *Controller) AddBookmark(ctx context.Context, draft model.Draft) (*model.Bookmark, error) {
	return c.coord.AddBookmark(ctx, draft)
}

// EditBookmark applies patch to bookmark id.
func (c *Controller) EditBookmark(ctx context.Context, id string, patch model.Patch) (*model.Bookmark, error) {
	return c.coord.EditBookmark(ctx, id, patch)
}

// DeleteBookmark deletes one bookmark.
func (c *Controller) DeleteBookmark(ctx context.Context, id string) error {
	return c.coord.DeleteBookmark(ctx, id)
}

// BulkDelete deletes the selected bookmarks.
func (c *Controller) BulkDelete(ctx context.Context) coordinator.BulkResult {
	return c.coord.BulkDelete(ctx, c.selectedVisible())
}

// BulkShare shares the selected bookmarks and returns the share id.
func (c *Controller) BulkShare(ctx context.Context) (string, error) {
	return c.coord.BulkShare(ctx, c.selectedVisible())
}

// AddSelectionToCollection adds the selected bookmarks to collection id.
func (c *Controller) AddSelectionToCollection(ctx context.Context, id string) (*model.Collection, error) {
	return c.coord.AddBookmarksToCollection(ctx, id, c.selectedVisible())
}

// RemoveSelectionFromCollection removes the selected bookmarks from
// collection id.
func (c *Controller) RemoveSelectionFromCollection(ctx context.Context, id string) (*model.Collection, error) {
	return c.coord.RemoveBookmarksFromCollection(ctx, id, c.selectedVisible())
}

// CreateCollection creates a collection holding ids and switches the view
// to it.
func (c *Controller) CreateCollection(ctx context.Context, name string, ids []string) (*model.Collection, error) {
	created, err := c.coord.CreateCollection(ctx, name, ids)
	if created != nil {
		c.SetScope(model.CollectionScope(created.ID))
	}
	return created, err
}

// RenameCollection renames collection id.
func (c *Controller) RenameCollection(ctx context.Context, id, name string) (*model.Collection, error) {
	return c.coord.RenameCollection(ctx, id, name)
}

// DeleteCollection deletes collection id, keeping its bookmarks.
func (c *Controller) DeleteCollection(ctx context.Context, id string) error {
	return c.coord.DeleteCollection(ctx, id)
}

// RecordVisit counts an opened bookmark when the backend tracks visits.
func (c *Controller) RecordVisit(ctx context.Context, id string) error {
	recorder, ok := c.backend.(backend.VisitRecorder)
	if !ok {
		return nil
	}
	if err := recorder.RecordVisit(ctx, id); err != nil {
		return domainerrors.AsTransport("record visit", err)
	}
	return c.Refresh(ctx)
}

// ShareURL builds the public link for a share id.
func (c *Controller) ShareURL(shareID string) string {
	base := strings.TrimRight(c.shareBase, "/")
	if base == "" {
		return "/shared/" + url.PathEscape(shareID)
	}
	return base + "/shared/" + url.PathEscape(shareID)
}
