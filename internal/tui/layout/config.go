package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig holds pane dimension configuration.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: app padding (1) + header (1) + pane borders (2) + status (1) + help bar (2) = 7
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// WidthOffset is subtracted before splitting the width.
	// Accounts for app padding and the borders of three panes.
	WidthOffset int

	// SidebarPercent and DetailPercent are shares of the remaining width.
	// The bookmark list gets the rest.
	SidebarPercent int
	DetailPercent  int

	MinSidebarWidth int
	MinListWidth    int
	MinDetailWidth  int

	// ContentPadding is subtracted from pane width for item rendering.
	// Accounts for pane border/padding on each side.
	ContentPadding int

	// ListHeaderLines are the lines above the rows of a list pane.
	ListHeaderLines int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// PickerMaxVisible: max collections shown in the collection picker.
	PickerMaxVisible int

	// HelpKeyColumnWidth: width of the key column in the help overlay.
	HelpKeyColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TitleCharLimit       int
	URLCharLimit         int
	TagsCharLimit        int
	DescriptionCharLimit int
	SearchCharLimit      int
	NameCharLimit        int

	// StandardWidth is used for every form input.
	StandardWidth int
	// SearchWidth is used for the inline search input.
	SearchWidth int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction: 7,
			MinHeight:       5,
			WidthOffset:     10,
			SidebarPercent:  22,
			DetailPercent:   33,
			MinSidebarWidth: 16,
			MinListWidth:    24,
			MinDetailWidth:  20,
			ContentPadding:  4,
			ListHeaderLines: 2,
		},
		Modal: ModalConfig{
			WidthPercent:       50,
			MinWidth:           44,
			MaxWidth:           80,
			PickerMaxVisible:   8,
			HelpKeyColumnWidth: 12,
		},
		Input: InputConfig{
			TitleCharLimit:       200,
			URLCharLimit:         2048,
			TagsCharLimit:        200,
			DescriptionCharLimit: 500,
			SearchCharLimit:      100,
			NameCharLimit:        100,
			StandardWidth:        40,
			SearchWidth:          30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
