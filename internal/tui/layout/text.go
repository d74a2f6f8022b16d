package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiRegex matches ANSI escape sequences.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// VisibleLength returns the visible length of a string (excluding ANSI codes).
func VisibleLength(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// TruncateText truncates text to maxWidth with ellipsis.
// Returns the truncated text and whether truncation occurred.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}

	ellipsisLen := utf8.RuneCountInString(cfg.Ellipsis)
	if utf8.RuneCountInString(text) <= maxWidth {
		return text, false
	}

	// Not enough room for any text + ellipsis
	if maxWidth <= ellipsisLen {
		runes := []rune(cfg.Ellipsis)
		return string(runes[:maxWidth]), true
	}

	runes := []rune(text)
	return string(runes[:maxWidth-ellipsisLen]) + cfg.Ellipsis, true
}

// TruncateWithPrefixSuffix truncates text while preserving prefix and suffix.
// Example: TruncateWithPrefixSuffix("Reading list", 12, "> ", " (3)", cfg) -> "> Rea... (3)"
// Returns the truncated text and whether truncation occurred.
func TruncateWithPrefixSuffix(text string, maxWidth int, prefix, suffix string, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}

	combined := prefix + text + suffix
	if utf8.RuneCountInString(combined) <= maxWidth {
		return combined, false
	}

	overhead := utf8.RuneCountInString(prefix) + utf8.RuneCountInString(suffix) + utf8.RuneCountInString(cfg.Ellipsis)
	if overhead >= maxWidth {
		// Not enough room even for prefix + ellipsis + suffix
		return TruncateText(combined, maxWidth, cfg)
	}

	runes := []rune(text)
	return prefix + string(runes[:maxWidth-overhead]) + cfg.Ellipsis + suffix, true
}

// PadRight pads s with spaces to width visible characters.
func PadRight(s string, width int) string {
	if n := VisibleLength(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
