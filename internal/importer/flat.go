package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nikbrunner/shelf/internal/model"
)

// Format names a supported export format.
type Format string

const (
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for files that are neither HTML, JSON
// nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML, nil
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Parse reads r in the given format.
func Parse(r io.Reader, format Format) (*Document, error) {
	switch format {
	case FormatHTML:
		return ParseHTML(r)
	case FormatJSON:
		return ParseJSON(r)
	case FormatCSV:
		return ParseCSV(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// jsonEntry is one element of a JSON export.
type jsonEntry struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Collections []string `json:"collections"`
}

// ParseJSON parses a JSON array of bookmarks:
//
//	[{"url": "https://go.dev", "title": "Go", "collections": ["Languages"]}]
//
// Entries without a url are skipped; a missing title falls back to the url.
func ParseJSON(r io.Reader) (*Document, error) {
	var items []jsonEntry
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	b := newFlatBuilder()
	for _, item := range items {
		b.add(item.URL, item.Title, item.Description, item.Category, item.Tags, item.Collections)
	}
	return b.doc, nil
}

// ParseCSV parses CSV with a header row. Recognised columns are url,
// title, description, category, tags and collections; the last two hold
// ";" separated lists. Only url is required.
func ParseCSV(r io.Reader) (*Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["url"]; !ok {
		return nil, errors.New("CSV has no url column")
	}

	b := newFlatBuilder()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		b.add(field("url"), field("title"), field("description"), field("category"),
			splitList(field("tags")), splitList(field("collections")))
	}
	return b.doc, nil
}

// flatBuilder collects entries of the list formats and their collection
// names in order of first use.
type flatBuilder struct {
	doc  *Document
	seen map[string]bool
}

func newFlatBuilder() *flatBuilder {
	return &flatBuilder{doc: &Document{}, seen: make(map[string]bool)}
}

func (b *flatBuilder) add(url, title, description, category string, tags, collections []string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = url
	}

	entry := Entry{
		Draft: model.Draft{
			Title:       title,
			URL:         url,
			Description: strings.TrimSpace(description),
			Tags:        model.NormalizeTags(tags),
			Category:    strings.TrimSpace(category),
		},
	}
	for _, name := range model.NormalizeTags(collections) {
		entry.Collections = append(entry.Collections, name)
		if !b.seen[name] {
			b.seen[name] = true
			b.doc.Collections = append(b.doc.Collections, name)
		}
	}
	b.doc.Entries = append(b.doc.Entries, entry)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}
