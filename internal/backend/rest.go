package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/model"
)

// REST is a Backend talking to the hosted bookmark API over HTTP.
type REST struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewREST creates a client for the API at baseURL. tokens may be nil for
// anonymous access, which only SharedBookmarks supports.
func NewREST(baseURL string, timeout time.Duration, tokens TokenSource) *REST {
	return &REST{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// bookmarkDTO is the API's bookmark document.
type bookmarkDTO struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
	Category    string          `json:"category"`
	VisitCount  int             `json:"visit_count"`
	IsBroken    bool            `json:"is_broken"`
	LastChecked *string         `json:"last_checked"`
	Shared      json.RawMessage `json:"shared"`
	ShareID     string          `json:"share_id"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type collectionDTO struct {
	ID        string   `json:"_id"`
	Name      string   `json:"name"`
	Bookmarks []string `json:"bookmarks"`
	CreatedAt string   `json:"created_at"`
}

type bookmarkBody struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category,omitempty"`
	Shared      bool     `json:"shared"`
}

type idsBody struct {
	BookmarkIDs []string `json:"bookmark_ids"`
}

type collectionBody struct {
	Name        string   `json:"name"`
	BookmarkIDs []string `json:"bookmark_ids"`
}

type nameBody struct {
	Name string `json:"name"`
}

type shareResponse struct {
	ShareID string `json:"share_id"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

func (d bookmarkDTO) toModel() model.Bookmark {
	b := model.Bookmark{
		ID:          d.ID,
		Title:       d.Title,
		URL:         d.URL,
		Description: d.Description,
		Tags:        d.Tags,
		Category:    d.Category,
		VisitCount:  d.VisitCount,
		IsBroken:    d.IsBroken,
		ShareID:     d.ShareID,
		CreatedAt:   parseTime(d.CreatedAt),
		UpdatedAt:   parseTime(d.UpdatedAt),
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if d.LastChecked != nil && *d.LastChecked != "" {
		t := parseTime(*d.LastChecked)
		b.LastChecked = &t
	}

	// "shared" is either a flag or the share id itself
	var flag bool
	var shareID string
	switch {
	case json.Unmarshal(d.Shared, &flag) == nil:
		b.Shared = flag
	case json.Unmarshal(d.Shared, &shareID) == nil && shareID != "":
		b.Shared = true
		if b.ShareID == "" {
			b.ShareID = shareID
		}
	}
	return b
}

func (d collectionDTO) toModel() model.Collection {
	ids := d.Bookmarks
	if ids == nil {
		ids = []string{}
	}
	return model.Collection{
		ID:          d.ID,
		Name:        d.Name,
		BookmarkIDs: ids,
		CreatedAt:   parseTime(d.CreatedAt),
	}
}

func (c *REST) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	var dtos []bookmarkDTO
	if err := c.do(ctx, http.MethodGet, "/bookmarks/", nil, &dtos, true); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return toModelBookmarks(dtos), nil
}

func (c *REST) ListCollections(ctx context.Context) ([]model.Collection, error) {
	var dtos []collectionDTO
	if err := c.do(ctx, http.MethodGet, "/collections/", nil, &dtos, true); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	collections := make([]model.Collection, len(dtos))
	for i, d := range dtos {
		collections[i] = d.toModel()
	}
	return collections, nil
}

// CreateBookmark posts the draft. The API may answer with only a status
// message, in which case the new bookmark is located by URL.
func (c *REST) CreateBookmark(ctx context.Context, draft model.Draft) (*model.Bookmark, error) {
	body := bookmarkBody{
		Title:       draft.Title,
		URL:         draft.URL,
		Description: draft.Description,
		Tags:        model.NormalizeTags(draft.Tags),
		Category:    draft.Category,
	}

	var dto bookmarkDTO
	if err := c.do(ctx, http.MethodPost, "/bookmarks/add", body, &dto, true); err != nil {
		return nil, fmt.Errorf("create bookmark: %w", err)
	}
	if dto.ID != "" {
		b := dto.toModel()
		return &b, nil
	}

	all, err := c.ListBookmarks(ctx)
	if err != nil {
		return nil, err
	}
	want := comparableURL(draft.URL)
	for i := len(all) - 1; i >= 0; i-- {
		if comparableURL(all[i].URL) == want {
			return &all[i], nil
		}
	}
	return nil, domainerrors.Transport("create bookmark", fmt.Errorf("created bookmark %s not found in listing", draft.URL))
}

// UpdateBookmark sends the full document, as the API replaces every field.
func (c *REST) UpdateBookmark(ctx context.Context, id string, patch model.Patch) (*model.Bookmark, error) {
	all, err := c.ListBookmarks(ctx)
	if err != nil {
		return nil, err
	}
	var current *model.Bookmark
	for i := range all {
		if all[i].ID == id {
			current = &all[i]
			break
		}
	}
	if current == nil {
		return nil, domainerrors.NotFoundf("bookmark %s not found", id)
	}

	updated := current.Apply(patch, time.Now())
	body := bookmarkBody{
		Title:       updated.Title,
		URL:         updated.URL,
		Description: updated.Description,
		Tags:        updated.Tags,
		Category:    updated.Category,
		Shared:      updated.Shared,
	}

	var dto bookmarkDTO
	if err := c.do(ctx, http.MethodPut, "/bookmarks/edit/"+url.PathEscape(id), body, &dto, true); err != nil {
		return nil, fmt.Errorf("update bookmark: %w", err)
	}
	if dto.ID != "" {
		b := dto.toModel()
		return &b, nil
	}
	return &updated, nil
}

func (c *REST) DeleteBookmark(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/bookmarks/delete/"+url.PathEscape(id), nil, nil, true); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

func (c *REST) ShareBookmarks(ctx context.Context, ids []string) (string, error) {
	var resp shareResponse
	if err := c.do(ctx, http.MethodPost, "/bookmarks/share", idsBody{BookmarkIDs: model.UniqueIDs(ids)}, &resp, true); err != nil {
		return "", fmt.Errorf("share bookmarks: %w", err)
	}
	if resp.ShareID == "" {
		return "", domainerrors.Transport("share bookmarks", fmt.Errorf("response has no share_id"))
	}
	return resp.ShareID, nil
}

func (c *REST) CreateCollection(ctx context.Context, name string, ids []string) (*model.Collection, error) {
	body := collectionBody{Name: strings.TrimSpace(name), BookmarkIDs: model.UniqueIDs(ids)}
	return c.collectionRequest(ctx, "create collection", http.MethodPost, "/collections/", body)
}

func (c *REST) RenameCollection(ctx context.Context, id, name string) (*model.Collection, error) {
	body := nameBody{Name: strings.TrimSpace(name)}
	return c.collectionRequest(ctx, "rename collection", http.MethodPut, "/collections/"+url.PathEscape(id)+"/rename", body)
}

func (c *REST) DeleteCollection(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/collections/"+url.PathEscape(id), nil, nil, true); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

func (c *REST) AddToCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	body := idsBody{BookmarkIDs: model.UniqueIDs(ids)}
	return c.collectionRequest(ctx, "add to collection", http.MethodPost, "/collections/"+url.PathEscape(id)+"/add-bookmarks", body)
}

func (c *REST) RemoveFromCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	body := idsBody{BookmarkIDs: model.UniqueIDs(ids)}
	return c.collectionRequest(ctx, "remove from collection", http.MethodPost, "/collections/"+url.PathEscape(id)+"/remove-bookmarks", body)
}

// SharedBookmarks reads a public share. No token is sent.
func (c *REST) SharedBookmarks(ctx context.Context, shareID string) ([]model.Bookmark, error) {
	var dtos []bookmarkDTO
	if err := c.do(ctx, http.MethodGet, "/shared/"+url.PathEscape(shareID), nil, &dtos, false); err != nil {
		return nil, fmt.Errorf("shared bookmarks: %w", err)
	}
	return toModelBookmarks(dtos), nil
}

func (c *REST) collectionRequest(ctx context.Context, op, method, path string, body any) (*model.Collection, error) {
	var dto collectionDTO
	if err := c.do(ctx, method, path, body, &dto, true); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if dto.ID == "" {
		return nil, domainerrors.Transport(op, fmt.Errorf("response has no collection"))
	}
	col := dto.toModel()
	return &col, nil
}

// do sends one request and decodes a JSON response into out when out is
// non-nil. Status codes map onto the error taxonomy: 404 is NotFound,
// 400 and 422 are Validation, anything else is Transport.
func (c *REST) do(ctx context.Context, method, path string, body, out any, auth bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return domainerrors.Transport("marshal request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domainerrors.Transport("create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainerrors.Transport(method+" "+path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domainerrors.Transport("read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := errorDetail(data, resp.StatusCode)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return domainerrors.NotFound(detail)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return domainerrors.Validation(detail)
		default:
			return domainerrors.Transport(fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode), fmt.Errorf("%s", detail))
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domainerrors.Transport("unmarshal response", err)
	}
	return nil
}

func errorDetail(data []byte, status int) string {
	var e errorResponse
	if err := json.Unmarshal(data, &e); err == nil && len(e.Detail) > 0 {
		var s string
		if err := json.Unmarshal(e.Detail, &s); err == nil {
			return s
		}
		return string(e.Detail)
	}
	return fmt.Sprintf("HTTP %d error", status)
}

func toModelBookmarks(dtos []bookmarkDTO) []model.Bookmark {
	bookmarks := make([]model.Bookmark, len(dtos))
	for i, d := range dtos {
		bookmarks[i] = d.toModel()
	}
	return bookmarks
}

// comparableURL strips the parts a server may normalize away.
func comparableURL(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimRight(s, "/")
}
