// Package metadata fills in bookmark titles and descriptions from the
// page itself when the user leaves them out.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/shelf/internal/model"
)

const (
	userAgent   = "Mozilla/5.0 (compatible; shelf/1.0)"
	maxBodyRead = 2 << 20
)

var (
	ErrRequest = errors.New("page request failed")
	ErrNotHTML = errors.New("page is not HTML")
)

// Page is what a document says about itself.
type Page struct {
	Title       string
	Description string
}

// Client fetches pages.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// NewClientWith uses an existing HTTP client, e.g. an httptest one.
func NewClientWith(c *http.Client) *Client {
	return &Client{httpClient: c}
}

// Fetch downloads url and reads its <title> and description meta tags.
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrRequest, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("%w: %s", ErrNotHTML, ct)
	}

	return Parse(io.LimitReader(resp.Body, maxBodyRead))
}

// Parse reads title and description from an HTML document. The
// description comes from meta name=description, then og:description.
// og:title stands in for a missing <title>.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var (
		page                   Page
		ogTitle, ogDescription string
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if page.Title == "" {
					page.Title = collapse(textContent(n))
				}
			case "meta":
				content := collapse(attr(n, "content"))
				switch {
				case strings.EqualFold(attr(n, "name"), "description"):
					if page.Description == "" {
						page.Description = content
					}
				case attr(n, "property") == "og:description":
					ogDescription = content
				case attr(n, "property") == "og:title":
					ogTitle = content
				}
			case "body":
				// Metadata lives in <head>
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if page.Title == "" {
		page.Title = ogTitle
	}
	if page.Description == "" {
		page.Description = ogDescription
	}
	return &page, nil
}

// Complete fills the blank title and description of d from its page. When
// the page cannot be read the title falls back to the URL and the error is
// returned alongside the usable draft.
func (c *Client) Complete(ctx context.Context, d model.Draft) (model.Draft, error) {
	if strings.TrimSpace(d.Title) != "" && strings.TrimSpace(d.Description) != "" {
		return d, nil
	}
	if strings.TrimSpace(d.URL) == "" {
		return d, nil
	}

	page, err := c.Fetch(ctx, d.URL)
	if err != nil {
		if strings.TrimSpace(d.Title) == "" {
			d.Title = d.URL
		}
		return d, err
	}

	if strings.TrimSpace(d.Title) == "" {
		d.Title = page.Title
		if d.Title == "" {
			d.Title = d.URL
		}
	}
	if strings.TrimSpace(d.Description) == "" {
		d.Description = page.Description
	}
	return d, nil
}

// CleanURL adds https:// to a URL typed without a scheme.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
