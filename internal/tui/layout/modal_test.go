package layout

import "testing"

func TestCalculateModalWidth(t *testing.T) {
	cfg := DefaultConfig().Modal

	tests := []struct {
		name          string
		terminalWidth int
		want          int
	}{
		{"half of a large terminal", 120, 60},
		{"clamped to max", 200, 80},
		{"clamped to min", 60, 44},
		{"never wider than the terminal", 40, 36}, // 40 - 4
		{"tiny terminal clamps to 1", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateModalWidth(tt.terminalWidth, cfg)
			if got != tt.want {
				t.Errorf("CalculateModalWidth(%d) = %d, want %d", tt.terminalWidth, got, tt.want)
			}
		})
	}
}

func TestCalculateVisibleListItems(t *testing.T) {
	tests := []struct {
		name       string
		maxVisible int
		sel        int
		total      int
		wantStart  int
		wantEnd    int
	}{
		{"all fit", 8, 0, 5, 0, 5},
		{"selection on first page", 8, 2, 20, 0, 8},
		{"selection scrolled", 8, 10, 20, 3, 11},
		{"selection at end", 8, 19, 20, 12, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CalculateVisibleListItems(tt.maxVisible, tt.sel, tt.total)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("CalculateVisibleListItems(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.maxVisible, tt.sel, tt.total, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
