package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/shelf/internal/browser"
	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/tui/layout"
	"github.com/nikbrunner/shelf/internal/view"
)

// DefaultOpTimeout bounds a single background operation, bulk ones
// included.
const DefaultOpTimeout = 2 * time.Minute

// App is the main bubbletea model. All bookmark state lives in the view
// controller; App only adds cursor, focus and modal state on top.
type App struct {
	ctrl         *view.Controller
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig
	timeout      time.Duration
	copy         func(string) error
	openURL      func(string) error
	completer    Completer
	log          logger.Logger

	mode          Mode
	focus         Pane
	sidebarCursor int
	cursor        int

	search   textinput.Model
	form     BookmarkForm
	nameForm NameForm
	picker   CollectionPicker
	confirm  ConfirmState

	status    string
	statusErr bool
	busy      int // operations in flight

	// For gg command
	lastKeyWasG bool

	// Window dimensions
	width  int
	height int
}

// Completer fills in what a draft leaves blank, typically from the page
// behind its URL.
type Completer interface {
	Complete(ctx context.Context, d model.Draft) (model.Draft, error)
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Controller   *view.Controller
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, derived from the controller's theme if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Timeout      time.Duration        // optional, DefaultOpTimeout if zero
	Clipboard    func(string) error   // optional, system clipboard if nil
	OpenURL      func(string) error   // optional, default browser if nil
	Completer    Completer            // optional, fills blank titles of new bookmarks
	Logger       logger.Logger        // optional
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := StylesFor(params.Controller.Theme())
	if params.Styles != nil {
		styles = *params.Styles
	}
	cfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		cfg = *params.LayoutConfig
	}

	app := App{
		ctrl:         params.Controller,
		keys:         keys,
		styles:       styles,
		layoutConfig: cfg,
		timeout:      params.Timeout,
		copy:         params.Clipboard,
		openURL:      params.OpenURL,
		completer:    params.Completer,
		log:          params.Logger,
		focus:        PaneBookmarks,
		search:       newInput("Search...", cfg.Input.SearchCharLimit, cfg.Input.SearchWidth),
		form:         NewBookmarkForm(cfg),
		nameForm:     NewNameForm(cfg),
		picker:       NewCollectionPicker(cfg),
		width:        80,
		height:       24,
	}
	if app.timeout <= 0 {
		app.timeout = DefaultOpTimeout
	}
	if app.copy == nil {
		app.copy = clipboard.WriteAll
	}
	if app.openURL == nil {
		app.openURL = browser.Open
	}
	if app.log == nil {
		app.log = logger.Nop()
	}
	return app
}

// WithDimensions returns a copy sized to width x height.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode { return a.mode }

// Focus returns the focused pane.
func (a App) Focus() Pane { return a.focus }

// Cursor returns the bookmark list cursor.
func (a App) Cursor() int { return a.cursor }

// SidebarCursor returns the collection sidebar cursor.
func (a App) SidebarCursor() int { return a.sidebarCursor }

// Status returns the status line and whether it reports an error.
func (a App) Status() (string, bool) { return a.status, a.statusErr }

// Busy reports whether a background operation is in flight.
func (a App) Busy() bool { return a.busy > 0 }

// Messages produced by background commands.
type (
	refreshedMsg struct{ err error }

	opDoneMsg struct {
		mode   Mode // modal that started the operation
		status string
		done   bool // the change reached the backend
		err    error
	}
)

// opFunc performs one backend operation and reports what to show.
type opFunc func(ctx context.Context) (status string, done bool, err error)

// run executes fn off the UI goroutine.
func (a *App) run(fn opFunc) tea.Cmd {
	a.busy++
	mode, timeout := a.mode, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		status, done, err := fn(ctx)
		return opDoneMsg{mode: mode, status: status, done: done, err: err}
	}
}

func (a *App) refreshCmd() tea.Cmd {
	a.busy++
	ctrl, timeout := a.ctrl, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return refreshedMsg{err: ctrl.Refresh(ctx)}
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.refreshCmd()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case refreshedMsg:
		a.busy--
		if msg.err != nil {
			a.setError(msg.err)
		}
		a.clampCursors()
		return a, nil

	case opDoneMsg:
		a.busy--
		a.finishOp(msg)
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeSearch:
			return a.updateSearch(msg)
		case ModeAddBookmark, ModeEditBookmark:
			return a.updateBookmarkForm(msg)
		case ModeAddCollection, ModeRenameCollection:
			return a.updateNameForm(msg)
		case ModePickCollection:
			return a.updatePicker(msg)
		case ModeConfirmDelete:
			return a.updateConfirm(msg)
		case ModeHelp:
			a.mode = ModeNormal
			return a, nil
		default:
			return a.updateNormal(msg)
		}
	}
	return a, nil
}

func (a *App) finishOp(msg opDoneMsg) {
	modal := msg.mode != ModeNormal && msg.mode != ModeSearch
	if msg.done || msg.err == nil {
		if modal && a.mode == msg.mode {
			a.mode = ModeNormal
		}
	} else if modal && a.mode == msg.mode {
		switch a.mode {
		case ModeAddBookmark, ModeEditBookmark:
			a.form.Err = msg.err
		case ModeAddCollection, ModeRenameCollection:
			a.nameForm.Err = msg.err
		default:
			a.mode = ModeNormal
		}
	}

	if msg.err != nil {
		a.log.Warn("operation failed", logger.String("status", msg.status), logger.Error(msg.err))
		a.setError(msg.err)
		if msg.status != "" {
			a.status = msg.status + ": " + a.status
		}
	} else {
		a.setStatus(msg.status)
	}
	a.syncSidebar()
	a.clampCursors()
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.status = describeError(err)
	a.statusErr = true
}

// updateNormal handles keys in the main view.
func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.setCursor(0)
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false
	a.status = ""

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp

	case key.Matches(msg, a.keys.Down):
		a.setCursor(a.activeCursor() + 1)

	case key.Matches(msg, a.keys.Up):
		a.setCursor(a.activeCursor() - 1)

	case key.Matches(msg, a.keys.Bottom):
		a.setCursor(a.activeLen() - 1)

	case key.Matches(msg, a.keys.Left):
		a.focus = PaneCollections
		a.syncSidebar()

	case key.Matches(msg, a.keys.Right):
		a.focus = PaneBookmarks

	case key.Matches(msg, a.keys.Open):
		return a.open()

	case key.Matches(msg, a.keys.Toggle):
		if b := a.currentBookmark(); b != nil && a.focus == PaneBookmarks {
			a.ctrl.Toggle(b.ID)
			a.setCursor(a.cursor + 1)
		}

	case key.Matches(msg, a.keys.SelectAll):
		a.ctrl.SelectAll()

	case key.Matches(msg, a.keys.Clear):
		if a.ctrl.SelectionSize() > 0 {
			a.ctrl.ClearSelection()
		} else if a.ctrl.Query().SearchText != "" {
			a.ctrl.SetSearch("")
			a.cursor = 0
		}

	case key.Matches(msg, a.keys.Search):
		a.search.SetValue(a.ctrl.Query().SearchText)
		a.search.CursorEnd()
		a.search.Focus()
		a.mode = ModeSearch

	case key.Matches(msg, a.keys.Sort):
		a.ctrl.SetSortKey(a.ctrl.Query().SortKey.Next())
		a.cursor = 0

	case key.Matches(msg, a.keys.StatusFilter):
		a.ctrl.SetStatusFilter(a.ctrl.Query().StatusFilter.Next())
		a.cursor = 0

	case key.Matches(msg, a.keys.AddBookmark):
		a.form.Open(nil)
		a.mode = ModeAddBookmark

	case key.Matches(msg, a.keys.Edit):
		if a.focus == PaneCollections {
			a.startRename()
		} else if b := a.currentBookmark(); b != nil {
			a.form.Open(b)
			a.mode = ModeEditBookmark
		}

	case key.Matches(msg, a.keys.Rename):
		a.startRename()

	case key.Matches(msg, a.keys.AddCollection):
		a.nameForm.Open("", "", a.ctrl.Selected())
		a.mode = ModeAddCollection

	case key.Matches(msg, a.keys.Delete):
		a.startDelete()

	case key.Matches(msg, a.keys.Share):
		if !a.ensureSelection() {
			break
		}
		ctrl, copyFn := a.ctrl, a.copy
		return a, a.run(func(ctx context.Context) (string, bool, error) {
			shareID, err := ctrl.BulkShare(ctx)
			if shareID == "" {
				return "share failed", false, err
			}
			link := ctrl.ShareURL(shareID)
			if cerr := copyFn(link); cerr != nil {
				return "Shared " + link, true, err
			}
			return "Shared, link copied: " + link, true, err
		})

	case key.Matches(msg, a.keys.AddToCollection):
		if !a.ensureSelection() {
			break
		}
		collections := a.ctrl.Snapshot().Collections
		if len(collections) == 0 {
			a.setStatus("No collections yet, press A to create one")
			break
		}
		a.picker.Open(collections)
		a.mode = ModePickCollection

	case key.Matches(msg, a.keys.RemoveFromScope):
		scope := a.ctrl.Scope()
		if scope.Kind != model.ScopeCollection {
			a.setStatus("Not inside a collection")
			break
		}
		if !a.ensureSelection() {
			break
		}
		ctrl, n := a.ctrl, a.ctrl.SelectionSize()
		return a, a.run(func(ctx context.Context) (string, bool, error) {
			c, err := ctrl.RemoveSelectionFromCollection(ctx, scope.CollectionID)
			if c == nil {
				return "remove from collection failed", false, err
			}
			return fmt.Sprintf("Removed %s from %s", plural(n, "bookmark"), c.Name), true, err
		})

	case key.Matches(msg, a.keys.YankURL):
		if b := a.currentBookmark(); b != nil {
			a.yank(b.URL, "URL")
		}

	case key.Matches(msg, a.keys.YankShareURL):
		if b := a.currentBookmark(); b != nil {
			if !b.Shared || b.ShareID == "" {
				a.setStatus("Bookmark is not shared, press s to share it")
			} else {
				a.yank(a.ctrl.ShareURL(b.ShareID), "share link")
			}
		}

	case key.Matches(msg, a.keys.Refresh):
		return a, a.refreshCmd()
	}
	return a, nil
}

// open enters a collection from the sidebar or opens a bookmark.
func (a App) open() (tea.Model, tea.Cmd) {
	if a.focus == PaneCollections {
		items := sidebarItems(a.ctrl.Snapshot())
		if a.sidebarCursor < len(items) {
			a.ctrl.SetScope(items[a.sidebarCursor].Scope())
			a.focus = PaneBookmarks
			a.cursor = 0
		}
		return a, nil
	}

	b := a.currentBookmark()
	if b == nil {
		return a, nil
	}
	if err := a.openURL(b.URL); err != nil {
		a.setError(err)
		return a, nil
	}
	ctrl, id, title := a.ctrl, b.ID, b.Title
	return a, a.run(func(ctx context.Context) (string, bool, error) {
		return "Opened " + title, true, ctrl.RecordVisit(ctx, id)
	})
}

func (a *App) startRename() {
	id := ""
	if a.focus == PaneCollections {
		items := sidebarItems(a.ctrl.Snapshot())
		if a.sidebarCursor < len(items) {
			id = items[a.sidebarCursor].ID()
		}
	} else if scope := a.ctrl.Scope(); scope.Kind == model.ScopeCollection {
		id = scope.CollectionID
	}
	c := a.ctrl.Snapshot().GetCollectionByID(id)
	if c == nil {
		a.setStatus("Select a collection to rename")
		return
	}
	a.nameForm.Open(c.Name, c.ID, nil)
	a.mode = ModeRenameCollection
}

func (a *App) startDelete() {
	if a.focus == PaneCollections {
		items := sidebarItems(a.ctrl.Snapshot())
		if a.sidebarCursor >= len(items) || !items[a.sidebarCursor].IsCollection() {
			return
		}
		c := items[a.sidebarCursor].Collection
		a.confirm = ConfirmState{Kind: ConfirmCollection, IDs: []string{c.ID}, Label: c.Name}
		a.mode = ModeConfirmDelete
		return
	}

	if n := a.ctrl.SelectionSize(); n > 0 {
		a.confirm = ConfirmState{Kind: ConfirmBookmarks, IDs: a.ctrl.Selected(), Label: plural(n, "selected bookmark")}
		a.mode = ModeConfirmDelete
		return
	}
	if b := a.currentBookmark(); b != nil {
		a.confirm = ConfirmState{Kind: ConfirmBookmarks, IDs: []string{b.ID}, Label: b.Title}
		a.mode = ModeConfirmDelete
	}
}

// ensureSelection selects the bookmark under the cursor when nothing is
// selected. Returns false when there is nothing to act on.
func (a *App) ensureSelection() bool {
	if a.ctrl.SelectionSize() > 0 {
		return true
	}
	b := a.currentBookmark()
	if b == nil {
		a.setStatus("Nothing selected")
		return false
	}
	a.ctrl.Toggle(b.ID)
	return true
}

func (a *App) yank(text, what string) {
	if err := a.copy(text); err != nil {
		a.setError(fmt.Errorf("copy %s: %w", what, err))
		return
	}
	a.setStatus("Copied " + what)
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.search.Blur()
		a.mode = ModeNormal
		return a, nil
	case "esc":
		a.search.Blur()
		a.search.Reset()
		a.ctrl.SetSearch("")
		a.mode = ModeNormal
		a.cursor = 0
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if a.search.Value() != a.ctrl.Query().SearchText {
		a.ctrl.SetSearch(a.search.Value())
		a.cursor = 0
	}
	return a, cmd
}

func (a App) updateBookmarkForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = ModeNormal
		return a, nil
	case "tab", "down":
		a.form.Cycle(1)
		return a, nil
	case "shift+tab", "up":
		a.form.Cycle(-1)
		return a, nil
	case "enter":
		return a, a.submitBookmarkForm()
	}

	var cmd tea.Cmd
	a.form.Inputs[a.form.Focus], cmd = a.form.Inputs[a.form.Focus].Update(msg)
	return a, cmd
}

func (a *App) submitBookmarkForm() tea.Cmd {
	ctrl := a.ctrl
	a.form.Err = nil
	if a.mode == ModeEditBookmark {
		id, patch := a.form.EditID, a.form.Patch()
		return a.run(func(ctx context.Context) (string, bool, error) {
			b, err := ctrl.EditBookmark(ctx, id, patch)
			if b == nil {
				return "", false, err
			}
			return "Saved " + b.Title, true, err
		})
	}

	draft, completer, log := a.form.Draft(), a.completer, a.log
	return a.run(func(ctx context.Context) (string, bool, error) {
		if completer != nil {
			var err error
			if draft, err = completer.Complete(ctx, draft); err != nil {
				log.Warn("page metadata unavailable", logger.String("url", draft.URL), logger.Error(err))
			}
		}
		b, err := ctrl.AddBookmark(ctx, draft)
		if b == nil {
			return "", false, err
		}
		return "Added " + b.Title, true, err
	})
}

func (a App) updateNameForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = ModeNormal
		return a, nil
	case "enter":
		return a, a.submitNameForm()
	}

	var cmd tea.Cmd
	a.nameForm.Input, cmd = a.nameForm.Input.Update(msg)
	return a, cmd
}

func (a *App) submitNameForm() tea.Cmd {
	ctrl, name := a.ctrl, a.nameForm.Input.Value()
	a.nameForm.Err = nil
	if a.mode == ModeRenameCollection {
		id := a.nameForm.TargetID
		return a.run(func(ctx context.Context) (string, bool, error) {
			c, err := ctrl.RenameCollection(ctx, id, name)
			if c == nil {
				return "", false, err
			}
			return "Renamed to " + c.Name, true, err
		})
	}

	ids := a.nameForm.IDs
	a.focus = PaneBookmarks
	return a.run(func(ctx context.Context) (string, bool, error) {
		c, err := ctrl.CreateCollection(ctx, name, ids)
		if c == nil {
			return "", false, err
		}
		return "Created " + c.Name, true, err
	})
}

func (a App) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = ModeNormal
		return a, nil
	case "down", "ctrl+n", "ctrl+j":
		a.picker.Cursor = min(a.picker.Cursor+1, max(len(a.picker.Filtered)-1, 0))
		return a, nil
	case "up", "ctrl+p", "ctrl+k":
		a.picker.Cursor = max(a.picker.Cursor-1, 0)
		return a, nil
	case "enter":
		target := a.picker.Current()
		if target == nil {
			return a, nil
		}
		ctrl, id, name, n := a.ctrl, target.ID, target.Name, a.ctrl.SelectionSize()
		cmd := a.run(func(ctx context.Context) (string, bool, error) {
			c, err := ctrl.AddSelectionToCollection(ctx, id)
			if c == nil {
				return "add to " + name + " failed", false, err
			}
			return fmt.Sprintf("Added %s to %s", plural(n, "bookmark"), name), true, err
		})
		a.mode = ModeNormal
		return a, cmd
	}

	var cmd tea.Cmd
	a.picker.Filter, cmd = a.picker.Filter.Update(msg)
	a.picker.Apply()
	return a, cmd
}

func (a App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		cmd := a.runDelete()
		a.mode = ModeNormal
		return a, cmd
	case "n", "esc", "q":
		a.mode = ModeNormal
	}
	return a, nil
}

func (a *App) runDelete() tea.Cmd {
	ctrl, confirm := a.ctrl, a.confirm

	if confirm.Kind == ConfirmCollection {
		id := confirm.IDs[0]
		return a.run(func(ctx context.Context) (string, bool, error) {
			if err := ctrl.DeleteCollection(ctx, id); err != nil {
				return "delete collection failed", false, err
			}
			return "Deleted collection " + confirm.Label, true, nil
		})
	}

	if ctrl.SelectionSize() == 0 {
		id := confirm.IDs[0]
		return a.run(func(ctx context.Context) (string, bool, error) {
			if err := ctrl.DeleteBookmark(ctx, id); err != nil {
				return "delete failed", false, err
			}
			return "Deleted " + confirm.Label, true, nil
		})
	}

	return a.run(func(ctx context.Context) (string, bool, error) {
		result := ctrl.BulkDelete(ctx)
		status := "Deleted " + plural(len(result.Succeeded), "bookmark")
		if len(result.Failed) > 0 {
			status += fmt.Sprintf(", %d failed", len(result.Failed))
		}
		return status, true, result.Err()
	})
}

// currentBookmark returns a copy of the bookmark under the cursor.
func (a App) currentBookmark() *model.Bookmark {
	bookmarks := a.ctrl.Projection()
	if a.cursor < 0 || a.cursor >= len(bookmarks) {
		return nil
	}
	b := bookmarks[a.cursor]
	return &b
}

func (a App) activeCursor() int {
	if a.focus == PaneCollections {
		return a.sidebarCursor
	}
	return a.cursor
}

func (a App) activeLen() int {
	if a.focus == PaneCollections {
		return len(a.ctrl.Snapshot().Collections) + 1
	}
	return len(a.ctrl.Projection())
}

func (a *App) setCursor(i int) {
	i = min(max(i, 0), max(a.activeLen()-1, 0))
	if a.focus == PaneCollections {
		a.sidebarCursor = i
	} else {
		a.cursor = i
	}
}

func (a *App) clampCursors() {
	a.cursor = min(max(a.cursor, 0), max(len(a.ctrl.Projection())-1, 0))
	a.sidebarCursor = min(max(a.sidebarCursor, 0), len(a.ctrl.Snapshot().Collections))
}

// syncSidebar points the sidebar cursor at the active scope.
func (a *App) syncSidebar() {
	scope := a.ctrl.Scope()
	for i, item := range sidebarItems(a.ctrl.Snapshot()) {
		if item.Scope() == scope {
			a.sidebarCursor = i
			return
		}
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
