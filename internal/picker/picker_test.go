package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/search"
)

func twoResults() []search.Result {
	return []search.Result{
		{Bookmark: model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"}},
		{Bookmark: model.Bookmark{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"}},
	}
}

func press(p Picker, key string) (Picker, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, cmd := p.Update(msg)
	return m.(Picker), cmd
}

func TestPicker_Navigation(t *testing.T) {
	p := New(twoResults(), "git")
	assert.Equal(t, p.cursor, 0)

	p, _ = press(p, "j")
	assert.Equal(t, p.cursor, 1)

	p, _ = press(p, "down")
	assert.Equal(t, p.cursor, 1, "cursor stays on the last result")

	p, _ = press(p, "k")
	p, _ = press(p, "k")
	assert.Equal(t, p.cursor, 0, "cursor stays on the first result")

	p, _ = press(p, "G")
	assert.Equal(t, p.cursor, 1)
	p, _ = press(p, "g")
	assert.Equal(t, p.cursor, 0)
}

func TestPicker_EnterSelects(t *testing.T) {
	p := New(twoResults(), "git")
	p, _ = press(p, "j")

	p, cmd := press(p, "enter")

	assert.Assert(t, cmd != nil)
	assert.Assert(t, !p.Cancelled())
	b := p.SelectedBookmark()
	assert.Assert(t, b != nil)
	assert.Equal(t, b.ID, "b2")
}

func TestPicker_Cancel(t *testing.T) {
	for _, key := range []string{"esc", "q"} {
		t.Run(key, func(t *testing.T) {
			p, cmd := press(New(twoResults(), "git"), key)

			assert.Assert(t, cmd != nil)
			assert.Assert(t, p.Cancelled())
			assert.Assert(t, p.SelectedBookmark() == nil)
		})
	}
}

func TestPicker_EnterWithoutResults(t *testing.T) {
	p, _ := press(New(nil, "nothing"), "enter")

	assert.Assert(t, p.Cancelled())
	assert.Assert(t, p.SelectedBookmark() == nil)
}

func TestPicker_View(t *testing.T) {
	view := New(twoResults(), "git").View()

	assert.Assert(t, strings.Contains(view, "Search: git (2 results)"))
	assert.Assert(t, strings.Contains(view, "https://gitlab.com"))
	assert.Assert(t, strings.Contains(view, "> "))
}
