package metadata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/shelf/internal/metadata"
	"github.com/nikbrunner/shelf/internal/model"
)

const page = `<!DOCTYPE html>
<html><head>
  <title>
    The Go   Programming Language
  </title>
  <meta name="Description" content="Build simple, secure, scalable systems.">
  <meta property="og:description" content="ignored">
</head>
<body><title>not this one</title></body></html>`

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  metadata.Page
	}{
		{
			name:  "title and description",
			input: page,
			want:  metadata.Page{Title: "The Go Programming Language", Description: "Build simple, secure, scalable systems."},
		},
		{
			name:  "open graph fallback",
			input: `<html><head><meta property="og:title" content="OG Title"><meta property="og:description" content="OG text"></head></html>`,
			want:  metadata.Page{Title: "OG Title", Description: "OG text"},
		},
		{
			name:  "nothing",
			input: `<html><body><p>hi</p></body></html>`,
			want:  metadata.Page{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := metadata.Parse(strings.NewReader(tt.input))
			assert.NilError(t, err)
			assert.DeepEqual(t, *got, tt.want)
		})
	}
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/go", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})
	r.Get("/json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newSite(t)
	c := metadata.NewClientWith(srv.Client())

	got, err := c.Fetch(context.Background(), srv.URL+"/go")
	assert.NilError(t, err)
	assert.Equal(t, got.Title, "The Go Programming Language")

	_, err = c.Fetch(context.Background(), srv.URL+"/json")
	assert.ErrorIs(t, err, metadata.ErrNotHTML)

	_, err = c.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, metadata.ErrRequest)
}

func TestComplete(t *testing.T) {
	srv := newSite(t)
	c := metadata.NewClient(5 * time.Second)
	ctx := context.Background()

	d, err := c.Complete(ctx, model.Draft{URL: srv.URL + "/go"})
	assert.NilError(t, err)
	assert.Equal(t, d.Title, "The Go Programming Language")
	assert.Equal(t, d.Description, "Build simple, secure, scalable systems.")

	d, err = c.Complete(ctx, model.Draft{URL: srv.URL + "/go", Title: "Mine"})
	assert.NilError(t, err)
	assert.Equal(t, d.Title, "Mine")
	assert.Equal(t, d.Description, "Build simple, secure, scalable systems.")

	d, err = c.Complete(ctx, model.Draft{URL: srv.URL + "/missing"})
	assert.ErrorIs(t, err, metadata.ErrRequest)
	assert.Equal(t, d.Title, srv.URL+"/missing")
}

func TestCleanURL(t *testing.T) {
	assert.Equal(t, metadata.CleanURL(" go.dev "), "https://go.dev")
	assert.Equal(t, metadata.CleanURL("http://x.org"), "http://x.org")
	assert.Equal(t, metadata.CleanURL(""), "")
}
