// Package exporter writes bookmarks as Netscape bookmark HTML, which every
// browser can import. Collections become folders.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/shelf/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders snap. Each collection is a folder listing its members
// in collection order; a bookmark in several collections appears in each.
// Bookmarks outside every collection follow at the root.
func ExportHTML(snap *model.Snapshot) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	inCollection := make(map[string]bool)
	for _, c := range snap.Collections {
		fmt.Fprintf(&b, "    <DT><H3 ADD_DATE=\"%d\">%s</H3>\n", unix(c.CreatedAt), html.EscapeString(c.Name))
		b.WriteString("    <DL><p>\n")
		for _, bm := range snap.GetBookmarksInCollection(c.ID) {
			writeBookmark(&b, bm, 2)
			inCollection[bm.ID] = true
		}
		b.WriteString("    </DL><p>\n")
	}

	for _, bm := range snap.Bookmarks {
		if !inCollection[bm.ID] {
			writeBookmark(&b, bm, 1)
		}
	}

	b.WriteString("</DL><p>\n")
	return b.String()
}

func writeBookmark(b *strings.Builder, bm model.Bookmark, indent int) {
	prefix := strings.Repeat("    ", indent)
	fmt.Fprintf(b, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\"", prefix, html.EscapeString(bm.URL), unix(bm.CreatedAt))
	if len(bm.Tags) > 0 {
		fmt.Fprintf(b, " TAGS=\"%s\"", html.EscapeString(strings.Join(bm.Tags, ",")))
	}
	fmt.Fprintf(b, ">%s</A>\n", html.EscapeString(bm.Title))
	if bm.Description != "" {
		fmt.Fprintf(b, "%s<DD>%s\n", prefix, html.EscapeString(bm.Description))
	}
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// WriteFile renders snap to path, creating parent directories.
func WriteFile(path string, snap *model.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(ExportHTML(snap)), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
