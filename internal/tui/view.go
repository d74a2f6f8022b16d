package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/tui/layout"
)

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

// renderView creates the sidebar | list | detail view.
func (a App) renderView() string {
	switch a.mode {
	case ModeHelp:
		return a.renderHelpOverlay()
	case ModeNormal, ModeSearch:
	default:
		return a.renderModal()
	}

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	widths := layout.CalculatePaneWidths(a.width, a.layoutConfig.Pane)

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.renderSidebarPane(widths.Sidebar, paneHeight),
		a.renderListPane(widths.List, paneHeight),
		a.renderDetailPane(widths.Detail, paneHeight),
	)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), columns, a.renderHelpBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader renders the scope and query summary above the panes.
func (a App) renderHeader() string {
	q := a.ctrl.Query()
	parts := []string{"shelf", a.scopeName()}
	parts = append(parts, "sort:"+q.SortKey.String(), "filter:"+q.StatusFilter.String())
	if n := a.ctrl.SelectionSize(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if a.busy > 0 {
		parts = append(parts, "working...")
	}
	if user := a.ctrl.Session().User(); user != "" {
		parts = append(parts, "@"+user)
	}

	line := strings.Join(parts, "  ")
	line, _ = layout.TruncateText(line, max(a.width-4, 1), a.layoutConfig.Text)
	return a.styles.Header.Render(line)
}

func (a App) scopeName() string {
	scope := a.ctrl.Scope()
	if scope.Kind == model.ScopeCollection {
		if c := a.ctrl.Snapshot().GetCollectionByID(scope.CollectionID); c != nil {
			return c.Name
		}
	}
	return "All bookmarks"
}

// paneStyle returns the active style for the focused pane.
func (a App) paneStyle(pane Pane) lipgloss.Style {
	if a.focus == pane && a.mode == ModeNormal {
		return a.styles.PaneActive
	}
	return a.styles.Pane
}

func (a App) renderSidebarPane(width, height int) string {
	var content strings.Builder

	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)
	visibleHeight := layout.CalculateVisibleHeight(height, a.layoutConfig.Pane.ListHeaderLines)

	content.WriteString(a.styles.Title.Render("Collections") + "\n\n")

	items := sidebarItems(a.ctrl.Snapshot())
	scope := a.ctrl.Scope()
	offset := layout.CalculateViewportOffset(a.sidebarCursor, len(items), visibleHeight)
	for i, item := range items {
		if i < offset {
			continue
		}
		if i >= offset+visibleHeight {
			break
		}
		prefix := "  "
		if item.Scope() == scope {
			prefix = "> "
		}
		suffix := fmt.Sprintf(" (%d)", item.Count)
		line, _ := layout.TruncateWithPrefixSuffix(item.Title(), itemWidth, prefix, suffix, a.layoutConfig.Text)

		if a.focus == PaneCollections && i == a.sidebarCursor {
			content.WriteString(a.styles.ItemSelected.Render(layout.PadRight(line, itemWidth)) + "\n")
		} else {
			content.WriteString(a.styles.Item.Render(line) + "\n")
		}
	}

	return a.paneStyle(PaneCollections).
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) renderListPane(width, height int) string {
	var content strings.Builder

	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)
	visibleHeight := layout.CalculateVisibleHeight(height, a.layoutConfig.Pane.ListHeaderLines)
	bookmarks := a.ctrl.Projection()

	title := fmt.Sprintf("%s (%d)", a.scopeName(), len(bookmarks))
	title, _ = layout.TruncateText(title, itemWidth, a.layoutConfig.Text)
	content.WriteString(a.styles.Title.Render(title) + "\n")

	// Second header line: search input or indicator
	switch {
	case a.mode == ModeSearch:
		content.WriteString("/" + a.search.View() + "\n")
	case a.ctrl.Query().SearchText != "":
		content.WriteString(a.styles.Tag.Render("/"+a.ctrl.Query().SearchText) + "\n")
	default:
		content.WriteString("\n")
	}

	if len(bookmarks) == 0 {
		if a.ctrl.Query().SearchText != "" || a.ctrl.Query().StatusFilter != model.FilterAll {
			content.WriteString(a.styles.Empty.Render("(no matches)"))
		} else {
			content.WriteString(a.styles.Empty.Render("(empty)"))
		}
	} else {
		// Calculate viewport offset to keep cursor visible
		offset := layout.CalculateViewportOffset(a.cursor, len(bookmarks), visibleHeight)
		for i, b := range bookmarks {
			if i < offset {
				continue
			}
			if i >= offset+visibleHeight {
				break
			}
			isCursor := a.focus == PaneBookmarks && i == a.cursor
			content.WriteString(a.renderBookmarkRow(b, isCursor, itemWidth) + "\n")
		}
	}

	return a.paneStyle(PaneBookmarks).
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderBookmarkRow renders "[x] Title" with broken and shared markers.
func (a App) renderBookmarkRow(b model.Bookmark, isCursor bool, maxWidth int) string {
	isMarked := a.ctrl.IsSelected(b.ID)

	prefix := "[ ] "
	if isMarked {
		prefix = "[x] "
	}
	var suffix string
	if b.IsBroken {
		suffix += " !"
	}
	if b.Shared {
		suffix += " ~"
	}

	line, _ := layout.TruncateWithPrefixSuffix(b.Title, maxWidth, prefix, suffix, a.layoutConfig.Text)

	switch {
	case isCursor:
		return a.styles.ItemSelected.Render(layout.PadRight(line, maxWidth))
	case isMarked:
		return a.styles.Marked.Render(line)
	case b.IsBroken:
		return a.styles.Broken.Render(line)
	}
	return a.styles.Item.Render(line)
}

func (a App) renderDetailPane(width, height int) string {
	var content strings.Builder

	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)
	trunc := func(s string) string {
		out, _ := layout.TruncateText(s, itemWidth, a.layoutConfig.Text)
		return out
	}

	b := a.currentBookmark()
	if b == nil {
		content.WriteString(a.styles.Empty.Render("(nothing selected)"))
	} else {
		content.WriteString(a.styles.Title.Render(trunc(b.Title)) + "\n")
		content.WriteString(a.styles.URL.Render(trunc(b.URL)) + "\n\n")

		if b.Description != "" {
			content.WriteString(lipgloss.NewStyle().Width(itemWidth).Render(b.Description) + "\n\n")
		}

		if len(b.Tags) > 0 {
			tags := make([]string, len(b.Tags))
			for i, tag := range b.Tags {
				tags[i] = "#" + tag
			}
			content.WriteString(a.styles.Tag.Render(trunc(strings.Join(tags, " "))) + "\n")
		}
		if b.Category != "" {
			content.WriteString(a.styles.Tag.Render(trunc("Category: "+b.Category)) + "\n")
		}
		if names := a.collectionNames(b.ID); names != "" {
			content.WriteString(a.styles.Tag.Render(trunc("In: "+names)) + "\n")
		}
		content.WriteString("\n")

		content.WriteString(a.styles.Date.Render("Created: "+b.CreatedAt.Format("2006-01-02")) + "\n")
		content.WriteString(a.styles.Date.Render(fmt.Sprintf("Visits:  %d", b.VisitCount)) + "\n")

		switch {
		case b.IsBroken:
			content.WriteString(a.styles.Broken.Render("Status:  broken"+checkedSuffix(b.LastChecked)) + "\n")
		case b.LastChecked != nil:
			content.WriteString(a.styles.Date.Render("Status:  ok"+checkedSuffix(b.LastChecked)) + "\n")
		}
		if b.Shared && b.ShareID != "" {
			content.WriteString(a.styles.Shared.Render(trunc("Shared:  "+a.ctrl.ShareURL(b.ShareID))) + "\n")
		}
	}

	return a.styles.Pane.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) collectionNames(bookmarkID string) string {
	collections := a.ctrl.Snapshot().GetCollectionsForBookmark(bookmarkID)
	names := make([]string, len(collections))
	for i, c := range collections {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

func checkedSuffix(t *time.Time) string {
	if t == nil {
		return ""
	}
	return " (checked " + formatTimeAgo(*t) + ")"
}

// renderModal renders the centered dialog of the current mode.
func (a App) renderModal() string {
	var title, content strings.Builder

	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal)
	modalStyle := a.styles.Modal.Width(modalWidth)

	switch a.mode {
	case ModeAddBookmark, ModeEditBookmark:
		if a.mode == ModeAddBookmark {
			title.WriteString("Add Bookmark\n\n")
		} else {
			title.WriteString("Edit Bookmark\n\n")
		}
		labels := [fieldCount]string{"Title:", "URL:", "Tags (comma-separated):", "Description:"}
		for i, label := range labels {
			if i > 0 {
				content.WriteString("\n\n")
			}
			content.WriteString(label + "\n")
			content.WriteString(a.form.Inputs[i].View())
		}
		a.writeFormError(&content, a.form.Err)

	case ModeAddCollection:
		title.WriteString("New Collection\n\n")
		content.WriteString("Name:\n")
		content.WriteString(a.nameForm.Input.View())
		if n := len(a.nameForm.IDs); n > 0 {
			content.WriteString("\n\n" + a.styles.Help.Render("with "+plural(n, "selected bookmark")))
		}
		a.writeFormError(&content, a.nameForm.Err)

	case ModeRenameCollection:
		title.WriteString("Rename Collection\n\n")
		content.WriteString("Name:\n")
		content.WriteString(a.nameForm.Input.View())
		a.writeFormError(&content, a.nameForm.Err)

	case ModePickCollection:
		title.WriteString(fmt.Sprintf("Add %s to...\n\n", plural(a.ctrl.SelectionSize(), "bookmark")))
		content.WriteString(a.picker.Filter.View() + "\n\n")
		if len(a.picker.Filtered) == 0 {
			content.WriteString(a.styles.Empty.Render("(no collections match)"))
		} else {
			start, end := layout.CalculateVisibleListItems(a.layoutConfig.Modal.PickerMaxVisible, a.picker.Cursor, len(a.picker.Filtered))
			for i := start; i < end; i++ {
				c := a.picker.Filtered[i]
				if i == a.picker.Cursor {
					content.WriteString(a.styles.ItemSelected.Render("▸ "+c.Name) + "\n")
				} else {
					content.WriteString(a.styles.Item.Render("  "+c.Name) + "\n")
				}
			}
		}

	case ModeConfirmDelete:
		if a.confirm.Kind == ConfirmCollection {
			title.WriteString("Delete collection \"" + a.confirm.Label + "\"?\n\n")
			content.WriteString(a.styles.Help.Render("Bookmarks in it are kept.") + "\n\n")
		} else {
			title.WriteString("Delete " + a.confirm.Label + "?\n\n")
			content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		}
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "y/Enter", Desc: "confirm"},
			{Key: "n/Esc", Desc: "cancel"},
		}))
	}

	if hints := a.getContextualHints().All(); len(hints) > 0 {
		content.WriteString("\n\n" + a.renderHintsInline(hints))
	}

	modal := modalStyle.Render(a.styles.Title.Render(title.String()) + content.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}

func (a App) writeFormError(content *strings.Builder, err error) {
	if err == nil {
		return
	}
	content.WriteString("\n\n" + a.styles.StatusError.Render(describeError(err)))
}

// renderHelpBar renders the status line and the contextual hints.
func (a App) renderHelpBar() string {
	var lines []string

	// Line 1: status message or an empty gap
	switch {
	case a.status == "":
		lines = append(lines, "")
	case a.statusErr:
		lines = append(lines, a.styles.StatusError.Render("✗ "+a.status))
	default:
		lines = append(lines, a.styles.Status.Render(a.status))
	}

	if hints := a.renderHints(a.getContextualHints()); hints != "" {
		lines = append(lines, hints)
	}
	return strings.Join(lines, "\n")
}

// renderHelpOverlay lists every key binding.
func (a App) renderHelpOverlay() string {
	var content strings.Builder
	content.WriteString(a.styles.Title.Render("keys") + "\n\n")

	keyStyle := lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpKeyColumnWidth)
	for _, b := range a.keys.HelpBindings() {
		h := b.Help()
		content.WriteString(keyStyle.Render(h.Key) + h.Desc + "\n")
	}
	content.WriteString("\n" + a.styles.Help.Render("[any key] close"))

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(content.String()),
	)
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	} else if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

// describeError renders err for the status line. Validation errors list
// their fields.
func describeError(err error) string {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeValidation {
		if fields, ok := domainErr.Details.(map[string]string); ok && len(fields) > 0 {
			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			parts := make([]string, len(names))
			for i, name := range names {
				parts[i] = name + " " + fields[name]
			}
			return strings.Join(parts, ", ")
		}
	}
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}
