package layout

// PaneLayout holds the widths of the sidebar, bookmark list and detail
// panes.
type PaneLayout struct {
	Sidebar int
	List    int
	Detail  int
}

// CalculatePaneHeight computes the content height for panes.
// Returns at least MinHeight.
func CalculatePaneHeight(terminalHeight int, cfg PaneConfig) int {
	return max(terminalHeight-cfg.HeightReduction, cfg.MinHeight)
}

// CalculatePaneWidths splits the terminal width into three panes. The
// sidebar and detail panes take their configured share, the list takes the
// rest. Minimum widths win over the terminal width.
func CalculatePaneWidths(terminalWidth int, cfg PaneConfig) PaneLayout {
	available := max(terminalWidth-cfg.WidthOffset, 0)

	sidebar := max(available*cfg.SidebarPercent/100, cfg.MinSidebarWidth)
	detail := max(available*cfg.DetailPercent/100, cfg.MinDetailWidth)
	list := max(available-sidebar-detail, cfg.MinListWidth)

	return PaneLayout{Sidebar: sidebar, List: list, Detail: detail}
}

// CalculateItemWidth computes the width available for item content.
func CalculateItemWidth(paneWidth int, cfg PaneConfig) int {
	return max(paneWidth-cfg.ContentPadding, 1)
}

// CalculateVisibleHeight computes the visible item count in a pane.
func CalculateVisibleHeight(paneHeight, headerLines int) int {
	return max(paneHeight-headerLines, 1)
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected item visible within the viewport.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := max(selected-viewportHeight/2, 0)
	return min(offset, total-viewportHeight)
}
