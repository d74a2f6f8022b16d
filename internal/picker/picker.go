// Package picker is a small bubbletea program for choosing one of the
// quick search results.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Picker lists search results and returns the chosen bookmark.
type Picker struct {
	results   []search.Result
	query     string
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a Picker over results.
func New(results []search.Result, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			p.cancelled = true
			return p, tea.Quit
		case "enter":
			if len(p.results) == 0 {
				p.cancelled = true
			} else {
				p.selected = true
			}
			return p, tea.Quit
		case "down", "j", "ctrl+n":
			p.move(1)
		case "up", "k", "ctrl+p":
			p.move(-1)
		case "g":
			p.cursor = 0
		case "G":
			p.cursor = max(len(p.results)-1, 0)
		}
	}
	return p, nil
}

func (p *Picker) move(delta int) {
	p.cursor = min(max(p.cursor+delta, 0), max(len(p.results)-1, 0))
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	for i, result := range p.results {
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		fmt.Fprintf(&b, "%s%s\n", cursor, highlight(result, style))
		fmt.Fprintf(&b, "   %s\n", urlStyle.Render(result.Bookmark.URL))
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("j/k: move  Enter: open  q/Esc: cancel"))
	return b.String()
}

// highlight renders the title with the fuzzy matched runes emphasized.
func highlight(r search.Result, base lipgloss.Style) string {
	if len(r.MatchedIndexes) == 0 {
		return base.Render(r.Bookmark.Title)
	}
	matched := make(map[int]bool, len(r.MatchedIndexes))
	for _, i := range r.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder
	for i, ch := range r.Bookmark.Title {
		if matched[i] {
			b.WriteString(matchStyle.Inherit(base).Render(string(ch)))
		} else {
			b.WriteString(base.Render(string(ch)))
		}
	}
	return b.String()
}

// SelectedBookmark returns the chosen bookmark, or nil if cancelled.
func (p Picker) SelectedBookmark() *model.Bookmark {
	if p.cancelled || !p.selected || p.cursor >= len(p.results) {
		return nil
	}
	b := p.results[p.cursor].Bookmark
	return &b
}

// Cancelled reports whether the user left without choosing.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
