package layout

// CalculateModalWidth computes responsive modal width based on percentage of terminal width.
// Uses WidthPercent of terminal width, clamped between MinWidth and MaxWidth,
// and never wider than the terminal minus a margin.
func CalculateModalWidth(terminalWidth int, cfg ModalConfig) int {
	width := terminalWidth * cfg.WidthPercent / 100
	width = min(max(width, cfg.MinWidth), cfg.MaxWidth)
	width = min(width, terminalWidth-4)
	return max(width, 1)
}

// CalculateVisibleListItems computes the start and end indices for a scrollable list.
// Returns (start, end) where items[start:end] should be displayed.
func CalculateVisibleListItems(maxVisible, selectedIdx, totalItems int) (start, end int) {
	if totalItems <= maxVisible {
		return 0, totalItems
	}

	if selectedIdx >= maxVisible {
		start = selectedIdx - maxVisible + 1
	}
	end = min(start+maxVisible, totalItems)
	return start, end
}
