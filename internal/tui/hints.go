package tui

import (
	"strings"

	"github.com/nikbrunner/shelf/internal/model"
)

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for bottom bar: "j/k:move h:back l:open"
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (j/k, h/l, etc.)
	Edit   []Hint // Edit hints (a, e, d, etc.)
	Action []Hint // Action hints (Enter, Tab, etc.)
	System []Hint // System hints (?, q, Esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() HintSet {
	switch a.mode {
	case ModeNormal:
		if a.focus == PaneCollections {
			return a.getSidebarHints()
		}
		return a.getNormalModeHints()
	case ModeSearch:
		return a.getSearchModeHints()
	case ModeAddBookmark, ModeEditBookmark:
		return a.getBookmarkFormHints()
	case ModeAddCollection, ModeRenameCollection:
		return a.getNameFormHints()
	case ModePickCollection:
		return a.getPickerHints()
	case ModeConfirmDelete:
		return a.getConfirmDeleteHints()
	case ModeHelp:
		// Help overlay covers screen, minimal hints
		return HintSet{
			System: []Hint{{Key: "any key", Desc: "close"}},
		}
	default:
		return HintSet{}
	}
}

// getNormalModeHints returns hints for the bookmark list.
func (a App) getNormalModeHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "h", Desc: "collections"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "open"},
			{Key: "Space", Desc: "select"},
			{Key: "/", Desc: "search"},
			{Key: "o", Desc: "sort"},
			{Key: "f", Desc: "filter"},
		},
		Edit: []Hint{
			{Key: "a", Desc: "add"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "del"},
			{Key: "s", Desc: "share"},
			{Key: "m", Desc: "collect"},
		},
		System: []Hint{
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
	if a.ctrl.Scope().Kind == model.ScopeCollection {
		hints.Edit = append(hints.Edit, Hint{Key: "x", Desc: "uncollect"})
	}
	if a.ctrl.SelectionSize() > 0 {
		hints.System = append([]Hint{{Key: "Esc", Desc: "unselect"}}, hints.System...)
	}
	return hints
}

// getSidebarHints returns hints for the collection sidebar.
func (a App) getSidebarHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "l", Desc: "bookmarks"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "open"},
		},
		Edit: []Hint{
			{Key: "A", Desc: "new"},
			{Key: "r", Desc: "rename"},
			{Key: "d", Desc: "del"},
		},
		System: []Hint{
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
}

// getSearchModeHints returns hints for ModeSearch (live search).
func (a App) getSearchModeHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "type", Desc: "search"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "keep"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "clear"},
		},
	}
}

// getBookmarkFormHints returns hints for ModeAddBookmark/ModeEditBookmark.
func (a App) getBookmarkFormHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "Tab", Desc: "next"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "save"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

// getNameFormHints returns hints for ModeAddCollection/ModeRenameCollection.
func (a App) getNameFormHints() HintSet {
	return HintSet{
		Action: []Hint{
			{Key: "Enter", Desc: "save"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

// getPickerHints returns hints for ModePickCollection.
func (a App) getPickerHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "↑/↓", Desc: "nav"},
			{Key: "type", Desc: "filter"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "add"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

// getConfirmDeleteHints returns hints for ModeConfirmDelete.
// Returns empty - hints are shown inside the modal itself.
func (a App) getConfirmDeleteHints() HintSet {
	return HintSet{}
}
