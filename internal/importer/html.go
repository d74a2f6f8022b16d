// Package importer reads bookmark exports (Netscape HTML as every browser
// writes it, JSON lists and CSV) and loads them into a backend.
package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/shelf/internal/model"
)

// FolderSeparator joins nested folder names into one collection name.
const FolderSeparator = " / "

// Entry is one bookmark of an export.
type Entry struct {
	Draft       model.Draft
	AddedAt     time.Time // zero when the export has no ADD_DATE
	Collections []string  // names of the collections the bookmark joins
}

// Document is a parsed export. Collections lists folder paths in document
// order; folders without bookmarks are kept.
type Document struct {
	Entries     []Entry
	Collections []string
}

// ParseHTML parses Netscape bookmark HTML.
func ParseHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	seen := make(map[string]bool)

	var (
		folderStack []string // full paths of the open folders
		pending     string   // folder waiting to be pushed on the next DL
	)

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name == "" {
					return
				}
				path := name
				if len(folderStack) > 0 {
					path = folderStack[len(folderStack)-1] + FolderSeparator + name
				}
				if !seen[path] {
					seen[path] = true
					doc.Collections = append(doc.Collections, path)
				}
				pending = path
				return

			case "a":
				href := strings.TrimSpace(getAttr(n, "href"))
				if href == "" {
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}

				entry := Entry{
					Draft: model.Draft{
						Title: title,
						URL:   href,
						Tags:  model.ParseTags(getAttr(n, "tags")),
					},
				}
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						entry.AddedAt = time.Unix(ts, 0).UTC()
					}
				}
				if len(folderStack) > 0 {
					entry.Collections = []string{folderStack[len(folderStack)-1]}
				}
				doc.Entries = append(doc.Entries, entry)
				return

			case "dd":
				if len(doc.Entries) > 0 && pending == "" {
					last := &doc.Entries[len(doc.Entries)-1]
					if last.Draft.Description == "" {
						last.Draft.Description = ownText(n)
					}
				}

			case "dl":
				pushed := false
				if pending != "" {
					folderStack = append(folderStack, pending)
					pending = ""
					pushed = true
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(root)
	return doc, nil
}

// ownText returns the text directly inside n, ignoring nested elements.
func ownText(n *html.Node) string {
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(text.String())
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
