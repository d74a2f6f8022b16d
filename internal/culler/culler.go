// Package culler checks bookmark URLs for dead links and records the
// outcome on the backend.
package culler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/shelf/internal/backend"
	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/model"
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check result for a single bookmark.
type Result struct {
	Bookmark   model.Bookmark
	Status     Status
	StatusCode int    // 0 if the connection failed
	Error      string // readable reason for unreachable URLs
	Private    bool   // 404 on an excluded domain, likely needs auth
}

// Broken reports whether the bookmark should be flagged as broken.
// Private results are left alone.
func (r Result) Broken() bool {
	return r.Status != Healthy && !r.Private
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

const maxBodyRead = 1 << 20

// Checker checks URLs with bounded concurrency.
type Checker struct {
	client      *http.Client
	concurrency int
	exclude     map[string]bool
	log         logger.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithClient replaces the HTTP client, e.g. in tests.
func WithClient(c *http.Client) Option {
	return func(ch *Checker) { ch.client = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(ch *Checker) { ch.log = l }
}

// New creates a Checker. excludeDomains lists hosts (and their
// subdomains) whose 404s are treated as private rather than dead.
func New(concurrency int, timeout time.Duration, excludeDomains []string, opts ...Option) *Checker {
	if concurrency <= 0 {
		concurrency = 10
	}
	c := &Checker{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		concurrency: concurrency,
		exclude:     make(map[string]bool, len(excludeDomains)),
		log:         logger.Nop(),
	}
	for _, domain := range excludeDomains {
		c.exclude[strings.ToLower(domain)] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check checks every bookmark and returns results in input order.
func (c *Checker) Check(ctx context.Context, bookmarks []model.Bookmark, onProgress ProgressFunc) []Result {
	if len(bookmarks) == 0 {
		return nil
	}

	// Suppress noisy HTTP client logging (protocol errors, unsolicited responses, etc.)
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	results := make([]Result, len(bookmarks))
	var (
		progressMu sync.Mutex
		completed  int
	)

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i := range bookmarks {
		g.Go(func() error {
			results[i] = c.checkOne(ctx, bookmarks[i])
			if onProgress != nil {
				progressMu.Lock()
				completed++
				onProgress(completed, len(bookmarks))
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	healthy := 0
	for _, r := range results {
		if r.Status == Healthy {
			healthy++
		}
	}
	c.log.Info("link check finished",
		logger.Int("checked", len(results)),
		logger.Int("healthy", healthy))
	return results
}

// checkOne tries HEAD first and falls back to GET for servers that reject
// HEAD.
func (c *Checker) checkOne(ctx context.Context, b model.Bookmark) Result {
	result := Result{Bookmark: b}

	code, err := c.do(ctx, http.MethodHead, b.URL)
	var protoErr *http.ProtocolError
	if err != nil || code == http.StatusMethodNotAllowed || code == http.StatusBadRequest || errors.As(err, &protoErr) {
		code, err = c.do(ctx, http.MethodGet, b.URL)
	}
	if err != nil {
		result.Status = Unreachable
		result.Error = normalizeError(err.Error())
		return result
	}

	result.StatusCode = code
	switch {
	case code >= 200 && code < 400:
		result.Status = Healthy
	case code == http.StatusNotFound || code == http.StatusGone:
		if isExcludedDomain(b.URL, c.exclude) {
			result.Status = Unreachable
			result.Private = true
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		result.Status = Unreachable
		result.Error = http.StatusText(code)
	}
	return result
}

func (c *Checker) do(ctx context.Context, method, link string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "shelf-linkcheck/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if method == http.MethodGet {
		_, _ = io.CopyN(io.Discard, resp.Body, maxBodyRead)
	}
	return resp.StatusCode, nil
}

// Summary counts the outcome of Apply.
type Summary struct {
	Checked int
	Broken  int
	Skipped int // private results, not written
}

// Apply writes the health of every non-private result to w, stamped with
// checkedAt. Failed writes are joined into the returned error; the others
// still go through.
func Apply(ctx context.Context, w backend.LinkStatusWriter, results []Result, checkedAt time.Time) (Summary, error) {
	var (
		summary Summary
		errs    []error
	)
	for _, r := range results {
		if r.Private {
			summary.Skipped++
			continue
		}
		if err := w.SetLinkStatus(ctx, r.Bookmark.ID, r.Broken(), checkedAt); err != nil {
			errs = append(errs, domainerrors.AsTransport("set link status "+r.Bookmark.ID, err))
			continue
		}
		summary.Checked++
		if r.Broken() {
			summary.Broken++
		}
	}
	return summary, domainerrors.Join(errs...)
}

// isExcludedDomain checks if the URL's host is an excluded domain or one
// of its subdomains.
func isExcludedDomain(rawURL string, exclude map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if exclude[host] {
		return true
	}
	for domain := range exclude {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
