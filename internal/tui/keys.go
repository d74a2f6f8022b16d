package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up              key.Binding
	Down            key.Binding
	Left            key.Binding
	Right           key.Binding
	Top             key.Binding
	Bottom          key.Binding
	Open            key.Binding
	Toggle          key.Binding
	SelectAll       key.Binding
	Clear           key.Binding
	AddBookmark     key.Binding
	AddCollection   key.Binding
	Edit            key.Binding
	Rename          key.Binding
	Delete          key.Binding
	Share           key.Binding
	AddToCollection key.Binding
	RemoveFromScope key.Binding
	Sort            key.Binding
	StatusFilter    key.Binding
	Search          key.Binding
	YankURL         key.Binding
	YankShareURL    key.Binding
	Refresh         key.Binding
	Help            key.Binding
	Quit            key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "collections"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right", "tab"),
			key.WithHelp("l/right", "bookmarks"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "select"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("V", "ctrl+a"),
			key.WithHelp("V", "select all"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "clear"),
		),
		AddBookmark: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add bookmark"),
		),
		AddCollection: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "new collection"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename collection"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Share: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "share"),
		),
		AddToCollection: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "add to collection"),
		),
		RemoveFromScope: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove from collection"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "cycle sort"),
		),
		StatusFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		YankURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yank URL"),
		),
		YankShareURL: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "yank share link"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HelpBindings lists the bindings shown in the help overlay, in order.
func (k KeyMap) HelpBindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Left, k.Right, k.Top, k.Bottom, k.Open,
		k.Toggle, k.SelectAll, k.Clear,
		k.AddBookmark, k.Edit, k.Delete, k.Share, k.AddToCollection, k.RemoveFromScope,
		k.AddCollection, k.Rename,
		k.Search, k.Sort, k.StatusFilter,
		k.YankURL, k.YankShareURL, k.Refresh, k.Help, k.Quit,
	}
}
