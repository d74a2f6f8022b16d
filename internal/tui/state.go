package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/shelf/internal/metadata"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/tui/layout"
)

// Mode is the interaction mode of the App.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeAddBookmark
	ModeEditBookmark
	ModeAddCollection
	ModeRenameCollection
	ModePickCollection
	ModeConfirmDelete
	ModeHelp
)

// Pane identifies the focused column.
type Pane int

const (
	PaneCollections Pane = iota
	PaneBookmarks
)

// newInput creates a text input with a static cursor. A blinking cursor
// schedules timer commands on every keystroke.
func newInput(placeholder string, limit, width int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Width = width
	input.Cursor.SetMode(cursor.CursorStatic)
	return input
}

// Form field indexes of BookmarkForm.
const (
	fieldTitle = iota
	fieldURL
	fieldTags
	fieldDescription
	fieldCount
)

// BookmarkForm holds the add/edit bookmark modal.
type BookmarkForm struct {
	Inputs [fieldCount]textinput.Model
	Focus  int
	EditID string // empty when adding
	Err    error  // last failed submit
}

// NewBookmarkForm creates an empty form.
func NewBookmarkForm(cfg layout.LayoutConfig) BookmarkForm {
	var f BookmarkForm
	f.Inputs[fieldTitle] = newInput("Title", cfg.Input.TitleCharLimit, cfg.Input.StandardWidth)
	f.Inputs[fieldURL] = newInput("https://...", cfg.Input.URLCharLimit, cfg.Input.StandardWidth)
	f.Inputs[fieldTags] = newInput("tag1, tag2, tag3", cfg.Input.TagsCharLimit, cfg.Input.StandardWidth)
	f.Inputs[fieldDescription] = newInput("Description", cfg.Input.DescriptionCharLimit, cfg.Input.StandardWidth)
	return f
}

// Open resets the form, fills it from b when editing, and focuses the
// first field.
func (f *BookmarkForm) Open(b *model.Bookmark) {
	for i := range f.Inputs {
		f.Inputs[i].Reset()
		f.Inputs[i].Blur()
	}
	f.EditID = ""
	f.Err = nil
	if b != nil {
		f.EditID = b.ID
		f.Inputs[fieldTitle].SetValue(b.Title)
		f.Inputs[fieldURL].SetValue(b.URL)
		f.Inputs[fieldTags].SetValue(strings.Join(b.Tags, ", "))
		f.Inputs[fieldDescription].SetValue(b.Description)
	}
	f.Focus = fieldTitle
	f.Inputs[f.Focus].Focus()
}

// Cycle moves focus by delta, wrapping around.
func (f *BookmarkForm) Cycle(delta int) {
	f.Inputs[f.Focus].Blur()
	f.Focus = (f.Focus + delta + fieldCount) % fieldCount
	f.Inputs[f.Focus].Focus()
}

// Draft returns the form content as a new bookmark.
func (f *BookmarkForm) Draft() model.Draft {
	return model.Draft{
		Title:       strings.TrimSpace(f.Inputs[fieldTitle].Value()),
		URL:         metadata.CleanURL(f.Inputs[fieldURL].Value()),
		Tags:        model.ParseTags(f.Inputs[fieldTags].Value()),
		Description: strings.TrimSpace(f.Inputs[fieldDescription].Value()),
	}
}

// Patch returns the form content as an update. Every field is set; the
// coordinator drops the unchanged ones.
func (f *BookmarkForm) Patch() model.Patch {
	d := f.Draft()
	return model.Patch{
		Title:       &d.Title,
		URL:         &d.URL,
		Tags:        &d.Tags,
		Description: &d.Description,
	}
}

// NameForm holds the single input of the collection create/rename modal.
type NameForm struct {
	Input    textinput.Model
	TargetID string   // collection being renamed
	IDs      []string // initial members of a new collection
	Err      error
}

// NewNameForm creates an empty NameForm.
func NewNameForm(cfg layout.LayoutConfig) NameForm {
	return NameForm{Input: newInput("Collection name", cfg.Input.NameCharLimit, cfg.Input.StandardWidth)}
}

// Open resets the form with an initial value.
func (n *NameForm) Open(value, targetID string, ids []string) {
	n.Input.Reset()
	n.Input.SetValue(value)
	n.Input.CursorEnd()
	n.Input.Focus()
	n.TargetID = targetID
	n.IDs = ids
	n.Err = nil
}

// CollectionPicker holds the "add to collection" modal.
type CollectionPicker struct {
	Filter   textinput.Model
	All      []model.Collection
	Filtered []model.Collection
	Cursor   int
}

// NewCollectionPicker creates an empty picker.
func NewCollectionPicker(cfg layout.LayoutConfig) CollectionPicker {
	return CollectionPicker{Filter: newInput("Filter collections...", cfg.Input.NameCharLimit, cfg.Input.StandardWidth)}
}

// Open resets the picker over collections.
func (p *CollectionPicker) Open(collections []model.Collection) {
	p.Filter.Reset()
	p.Filter.Focus()
	p.All = collections
	p.Cursor = 0
	p.Apply()
}

// Apply re-filters the collections by the filter text.
func (p *CollectionPicker) Apply() {
	needle := strings.ToLower(strings.TrimSpace(p.Filter.Value()))
	p.Filtered = p.Filtered[:0]
	for _, c := range p.All {
		if needle == "" || strings.Contains(strings.ToLower(c.Name), needle) {
			p.Filtered = append(p.Filtered, c)
		}
	}
	p.Cursor = min(p.Cursor, max(len(p.Filtered)-1, 0))
}

// Current returns the highlighted collection, or nil.
func (p *CollectionPicker) Current() *model.Collection {
	if p.Cursor < 0 || p.Cursor >= len(p.Filtered) {
		return nil
	}
	return &p.Filtered[p.Cursor]
}

// ConfirmKind is what a delete confirmation deletes.
type ConfirmKind int

const (
	ConfirmBookmarks ConfirmKind = iota
	ConfirmCollection
)

// ConfirmState holds the pending delete.
type ConfirmState struct {
	Kind  ConfirmKind
	IDs   []string // bookmarks, or the single collection
	Label string
}
