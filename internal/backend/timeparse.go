package backend

import (
	"strings"
	"time"
)

// timeLayouts covers RFC 3339 and the naive ISO formats some servers emit.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTime parses s leniently. Naive timestamps are taken as UTC and
// anything unparsable becomes the zero time, which sorts as oldest.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
