package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/shelf/internal/view"
)

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Pane         lipgloss.Style
	PaneActive   lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style // cursor row
	Marked       lipgloss.Style // rows in the bulk selection
	URL          lipgloss.Style
	Tag          lipgloss.Style
	Date         lipgloss.Style
	Broken       lipgloss.Style
	Shared       lipgloss.Style
	Header       lipgloss.Style
	Help         lipgloss.Style
	Empty        lipgloss.Style
	Status       lipgloss.Style
	StatusError  lipgloss.Style
	Modal        lipgloss.Style
	HintKey      lipgloss.Style // Key portion of hints (e.g., "Enter", "j/k")
	HintDesc     lipgloss.Style // Description portion of hints (e.g., "confirm", "move")
}

// palette is the set of colors a theme picks from.
type palette struct {
	primary lipgloss.Color // main text
	subtle  lipgloss.Color // secondary text
	accent  lipgloss.Color // desaturated teal
	border  lipgloss.Color // inactive borders
	danger  lipgloss.Color
	onMark  lipgloss.Color
}

var palettes = map[view.Theme]palette{
	view.ThemeDark: {
		primary: "#A0A0A0",
		subtle:  "#606060",
		accent:  "#5F8787",
		border:  "#505050",
		danger:  "#AF5F5F",
		onMark:  "#1A1A1A",
	},
	view.ThemeLight: {
		primary: "#505050",
		subtle:  "#888888",
		accent:  "#4A7070",
		border:  "#888888",
		danger:  "#A04040",
		onMark:  "#F5F5F5",
	},
}

// DefaultStyles returns the dark theme.
func DefaultStyles() Styles {
	return StylesFor(view.ThemeDark)
}

// StylesFor returns the styles of a theme.
// Industrial design: grayscale with single desaturated teal accent.
func StylesFor(theme view.Theme) Styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[view.ThemeDark]
	}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(p.border).
			Padding(0, 1),

		PaneActive: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(p.accent).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),

		Item: lipgloss.NewStyle().
			Foreground(p.primary),

		ItemSelected: lipgloss.NewStyle().
			Background(p.accent).
			Foreground(p.onMark),

		Marked: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),

		URL: lipgloss.NewStyle().
			Foreground(p.subtle),

		Tag: lipgloss.NewStyle().
			Foreground(p.subtle),

		Date: lipgloss.NewStyle().
			Foreground(p.subtle),

		Broken: lipgloss.NewStyle().
			Foreground(p.danger),

		Shared: lipgloss.NewStyle().
			Foreground(p.accent),

		Header: lipgloss.NewStyle().
			Foreground(p.subtle).
			PaddingLeft(1),

		Help: lipgloss.NewStyle().
			Foreground(p.subtle).
			PaddingTop(1),

		Empty: lipgloss.NewStyle().
			Foreground(p.subtle),

		Status: lipgloss.NewStyle().
			Foreground(p.accent).
			PaddingLeft(1),

		StatusError: lipgloss.NewStyle().
			Foreground(p.danger).
			PaddingLeft(1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),

		HintKey: lipgloss.NewStyle().
			Foreground(p.subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(p.subtle),
	}
}
