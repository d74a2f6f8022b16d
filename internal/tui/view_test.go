package tui_test

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/shelf/internal/backend"
	"github.com/nikbrunner/shelf/internal/tui"
	"github.com/nikbrunner/shelf/internal/tui/layout"
)

// render returns the plain text of the current view.
func render(app tui.App) string {
	return layout.StripANSI(app.View())
}

func TestView_MainPanes(t *testing.T) {
	_, app := newHarness(t)
	out := render(app)

	for _, want := range []string{
		"Collections",
		"> All bookmarks (3)",
		"Languages (2)",
		"[ ] Dead Link !",
		"[ ] Go Tour",
		"sort:newest",
		"filter:all",
		"@ada@example.com",
		"https://gone.example.com",
		"Status:  broken",
	} {
		assert.Assert(t, strings.Contains(out, want), "missing %q in:\n%s", want, out)
	}
}

func TestView_SelectionMarkers(t *testing.T) {
	_, app := newHarness(t)

	app = press(t, app, " ")
	out := render(app)
	assert.Assert(t, strings.Contains(out, "[x] Dead Link"), out)
	assert.Assert(t, strings.Contains(out, "1 selected"), out)
}

func TestView_CollectionScope(t *testing.T) {
	_, app := newHarness(t)

	app = press(t, app, "h", "j", "enter")
	out := render(app)
	assert.Assert(t, strings.Contains(out, "> Languages (2)"), out)
	assert.Assert(t, strings.Contains(out, "Languages (2)"), out)
	assert.Assert(t, !strings.Contains(out, "Dead Link"), out)
	assert.Assert(t, strings.Contains(out, "In: Languages"), out)
}

func TestView_EmptyAndNoMatches(t *testing.T) {
	_, app := newHarness(t, backend.WithData(nil, nil))
	assert.Assert(t, strings.Contains(render(app), "(empty)"))

	_, app = newHarness(t)
	app = press(t, app, "/")
	app = typeText(t, app, "nothing like this")
	assert.Assert(t, strings.Contains(render(app), "(no matches)"))
}

func TestView_Modals(t *testing.T) {
	_, app := newHarness(t)

	out := render(press(t, app, "a"))
	assert.Assert(t, strings.Contains(out, "Add Bookmark"), out)
	assert.Assert(t, strings.Contains(out, "Tags (comma-separated):"), out)

	out = render(press(t, app, "e"))
	assert.Assert(t, strings.Contains(out, "Edit Bookmark"), out)
	assert.Assert(t, strings.Contains(out, "Dead Link"), out)

	out = render(press(t, app, "d"))
	assert.Assert(t, strings.Contains(out, "Delete Dead Link?"), out)

	out = render(press(t, app, "h", "j", "d"))
	assert.Assert(t, strings.Contains(out, `Delete collection "Languages"?`), out)
	assert.Assert(t, strings.Contains(out, "Bookmarks in it are kept."), out)

	out = render(press(t, app, "m"))
	assert.Assert(t, strings.Contains(out, "Add 1 bookmark to..."), out)
	assert.Assert(t, strings.Contains(out, "▸ Languages"), out)

	out = render(press(t, app, "V", "A"))
	assert.Assert(t, strings.Contains(out, "New Collection"), out)
	assert.Assert(t, strings.Contains(out, "with 3 selected bookmarks"), out)
}

func TestView_FormErrorShown(t *testing.T) {
	_, app := newHarness(t)

	app = press(t, app, "a", "enter")
	out := render(app)
	assert.Assert(t, strings.Contains(out, "title is required, url is required"), out)
}

func TestView_HelpOverlay(t *testing.T) {
	_, app := newHarness(t)

	out := render(press(t, app, "?"))
	for _, want := range []string{"add bookmark", "new collection", "share", "cycle sort", "yank share link"} {
		assert.Assert(t, strings.Contains(out, want), "missing %q", want)
	}
}

func TestView_StatusLine(t *testing.T) {
	_, app := newHarness(t)

	app = press(t, app, "j", "y")
	assert.Assert(t, strings.Contains(render(app), "Copied URL"))

	app = press(t, app, "j")
	assert.Assert(t, !strings.Contains(render(app), "Copied URL"), "next key clears the status")
}

func TestView_SharedLinkInDetail(t *testing.T) {
	h, app := newHarness(t)

	app = press(t, app, "s")
	out := render(app)
	link := h.ctrl.ShareURL(h.bookmark(t, "3").ShareID)
	assert.Assert(t, strings.Contains(out, "Dead Link ! ~"), out)
	assert.Assert(t, strings.Contains(out, "Shared:  "+link[:15]), out)
}
