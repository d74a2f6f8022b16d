package shareserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/shelf/internal/backend"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/shareserver"
)

type sharedJSON struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Tags       []string `json:"tags"`
	VisitCount *int     `json:"visitCount"`
}

func newServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mem := backend.NewMemory(backend.WithData([]model.Bookmark{
		{ID: "1", Title: "Rust Book", URL: "https://doc.rust-lang.org/book", Tags: []string{"rust"}, VisitCount: 7, CreatedAt: t0},
		{ID: "2", Title: "Go Tour", URL: "https://go.dev/tour", CreatedAt: t0},
	}, nil))
	shareID, err := mem.ShareBookmarks(context.Background(), []string{"1"})
	assert.NilError(t, err)

	srv := shareserver.New(shareserver.Params{
		Addr:           ":0",
		Reader:         mem,
		AllowedOrigins: []string{"https://app.example.com"},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, shareID
}

func TestShared(t *testing.T) {
	ts, shareID := newServer(t)

	resp, err := http.Get(ts.URL + "/shared/" + shareID)
	assert.NilError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, resp.Header.Get("Content-Type"), "application/json")

	var got []sharedJSON
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].ID, "1")
	assert.DeepEqual(t, got[0].Tags, []string{"rust"})
	assert.Assert(t, got[0].VisitCount == nil, "visit counts stay private")
}

func TestShared_UnknownIsEmpty(t *testing.T) {
	ts, _ := newServer(t)

	resp, err := http.Get(ts.URL + "/shared/nope")
	assert.NilError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, resp.StatusCode, http.StatusOK)
	var got []sharedJSON
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, len(got), 0)
}

func TestCORS(t *testing.T) {
	ts, shareID := newServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/shared/"+shareID, nil)
	assert.NilError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := http.DefaultClient.Do(req)
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.Header.Get("Access-Control-Allow-Origin"), "https://app.example.com")

	req.Header.Set("Origin", "https://evil.example.com")
	resp2, err := http.DefaultClient.Do(req)
	assert.NilError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, resp2.Header.Get("Access-Control-Allow-Origin"), "")
}

func TestHealthz(t *testing.T) {
	ts, _ := newServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	var body map[string]any
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, body["status"], "ok")
}
