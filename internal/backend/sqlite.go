package backend

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/model"
)

//go:embed migrations
var migrations embed.FS

// SQLite is a Backend stored in a SQLite database.
type SQLite struct {
	db  *sqlx.DB
	dsn string
	now func() time.Time
}

type bookmarkRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	URL         string         `db:"url"`
	Description string         `db:"description"`
	Tags        string         `db:"tags"`
	Category    string         `db:"category"`
	VisitCount  int            `db:"visit_count"`
	IsBroken    bool           `db:"is_broken"`
	LastChecked sql.NullString `db:"last_checked"`
	ShareID     string         `db:"share_id"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
}

const bookmarkColumns = `id, title, url, description, tags, category, visit_count,
	is_broken, last_checked, share_id, created_at, updated_at`

type collectionRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
}

type memberRow struct {
	CollectionID string `db:"collection_id"`
	BookmarkID   string `db:"bookmark_id"`
}

// NewSQLite opens the database at dsn and runs pending migrations.
// A plain file path has its directory created first; "file:" URIs are
// passed through as is.
func NewSQLite(dsn string) (*SQLite, error) {
	if !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps the pragmas below in effect for every query
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db, dsn: dsn, now: time.Now}, nil
}

func migrate(db *sqlx.DB) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("sub migrations fs: %w", err)
	}

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(sub)
	defer goose.SetBaseFS(nil)
	if err := goose.Up(db.DB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Path returns the data source name the database was opened with.
func (s *SQLite) Path() string {
	return s.dsn
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	var rows []bookmarkRow
	err := s.db.SelectContext(ctx, &rows, `SELECT `+bookmarkColumns+` FROM bookmarks ORDER BY seq`)
	if err != nil {
		return nil, domainerrors.Transport("list bookmarks", err)
	}
	return toBookmarks(rows), nil
}

func (s *SQLite) ListCollections(ctx context.Context) ([]model.Collection, error) {
	var rows []collectionRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, created_at FROM collections ORDER BY seq`); err != nil {
		return nil, domainerrors.Transport("list collections", err)
	}

	var members []memberRow
	err := s.db.SelectContext(ctx, &members, `
		SELECT collection_id, bookmark_id FROM collection_bookmarks
		ORDER BY collection_id, position
	`)
	if err != nil {
		return nil, domainerrors.Transport("list collection members", err)
	}

	byCollection := make(map[string][]string, len(rows))
	for _, m := range members {
		byCollection[m.CollectionID] = append(byCollection[m.CollectionID], m.BookmarkID)
	}

	collections := make([]model.Collection, 0, len(rows))
	for _, r := range rows {
		c := r.toModel()
		if ids, ok := byCollection[r.ID]; ok {
			c.BookmarkIDs = ids
		}
		collections = append(collections, c)
	}
	return collections, nil
}

func (s *SQLite) CreateBookmark(ctx context.Context, draft model.Draft) (*model.Bookmark, error) {
	b := model.NewBookmark(model.NewBookmarkParams{Draft: draft, Now: s.now()})
	r := fromBookmark(b)

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO bookmarks (`+bookmarkColumns+`)
		VALUES (:id, :title, :url, :description, :tags, :category, :visit_count,
			:is_broken, :last_checked, :share_id, :created_at, :updated_at)
	`, r)
	if err != nil {
		return nil, domainerrors.Transport("create bookmark", err)
	}
	return &b, nil
}

func (s *SQLite) UpdateBookmark(ctx context.Context, id string, patch model.Patch) (*model.Bookmark, error) {
	var updated model.Bookmark
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getBookmark(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = current.Apply(patch, s.now())
		_, err = tx.NamedExecContext(ctx, `
			UPDATE bookmarks SET title = :title, url = :url, description = :description,
				tags = :tags, category = :category, updated_at = :updated_at
			WHERE id = :id
		`, fromBookmark(updated))
		return err
	})
	if err != nil {
		return nil, domainerrors.AsTransport("update bookmark", err)
	}
	return &updated, nil
}

// DeleteBookmark removes a bookmark. Collection memberships stay dangling.
func (s *SQLite) DeleteBookmark(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return domainerrors.Transport("delete bookmark", err)
	}
	return requireAffected(res, "bookmark", id)
}

func (s *SQLite) ShareBookmarks(ctx context.Context, ids []string) (string, error) {
	ids = model.UniqueIDs(ids)
	shareID, err := NewShareID()
	if err != nil {
		return "", domainerrors.Transport("share bookmarks", err)
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireBookmarks(ctx, tx, ids, domainerrors.NotFound); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		query, args, err := sqlx.In(`UPDATE bookmarks SET share_id = ? WHERE id IN (?)`, shareID, ids)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
		return err
	})
	if err != nil {
		return "", domainerrors.AsTransport("share bookmarks", err)
	}
	return shareID, nil
}

func (s *SQLite) CreateCollection(ctx context.Context, name string, ids []string) (*model.Collection, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domainerrors.Validation("collection name is required")
	}
	c := model.NewCollection(model.NewCollectionParams{Name: name, BookmarkIDs: ids, Now: s.now()})

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireBookmarks(ctx, tx, c.BookmarkIDs, domainerrors.Validation); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO collections (id, name, created_at) VALUES (?, ?, ?)`,
			c.ID, c.Name, formatTime(c.CreatedAt))
		if err != nil {
			return err
		}
		return insertMembers(ctx, tx, c.ID, c.BookmarkIDs, 0)
	})
	if err != nil {
		return nil, domainerrors.AsTransport("create collection", err)
	}
	return &c, nil
}

func (s *SQLite) RenameCollection(ctx context.Context, id, name string) (*model.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("collection name is required")
	}

	var c *model.Collection
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE collections SET name = ? WHERE id = ?`, name, id)
		if err != nil {
			return err
		}
		if err := requireAffected(res, "collection", id); err != nil {
			return err
		}
		c, err = getCollection(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, domainerrors.AsTransport("rename collection", err)
	}
	return c, nil
}

func (s *SQLite) DeleteCollection(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM collection_bookmarks WHERE collection_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(res, "collection", id)
	})
	return domainerrors.AsTransport("delete collection", err)
}

func (s *SQLite) AddToCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	var c *model.Collection
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getCollection(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := requireBookmarks(ctx, tx, ids, domainerrors.Validation); err != nil {
			return err
		}

		var fresh []string
		for _, bid := range model.UniqueIDs(ids) {
			if !current.Contains(bid) {
				fresh = append(fresh, bid)
			}
		}
		if err := insertMembers(ctx, tx, id, fresh, len(current.BookmarkIDs)); err != nil {
			return err
		}
		c, err = getCollection(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, domainerrors.AsTransport("add to collection", err)
	}
	return c, nil
}

func (s *SQLite) RemoveFromCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	var c *model.Collection
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getCollection(ctx, tx, id); err != nil {
			return err
		}
		ids = model.UniqueIDs(ids)
		if len(ids) > 0 {
			query, args, err := sqlx.In(`DELETE FROM collection_bookmarks WHERE collection_id = ? AND bookmark_id IN (?)`, id, ids)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
				return err
			}
		}
		var err error
		c, err = getCollection(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, domainerrors.AsTransport("remove from collection", err)
	}
	return c, nil
}

func (s *SQLite) SharedBookmarks(ctx context.Context, shareID string) ([]model.Bookmark, error) {
	if shareID == "" {
		return []model.Bookmark{}, nil
	}
	var rows []bookmarkRow
	err := s.db.SelectContext(ctx, &rows, `SELECT `+bookmarkColumns+` FROM bookmarks WHERE share_id = ? ORDER BY seq`, shareID)
	if err != nil {
		return nil, domainerrors.Transport("shared bookmarks", err)
	}
	return toBookmarks(rows), nil
}

func (s *SQLite) SetLinkStatus(ctx context.Context, id string, broken bool, checkedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE bookmarks SET is_broken = ?, last_checked = ? WHERE id = ?`,
		broken, formatTime(checkedAt), id)
	if err != nil {
		return domainerrors.Transport("set link status", err)
	}
	return requireAffected(res, "bookmark", id)
}

func (s *SQLite) RecordVisit(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE bookmarks SET visit_count = visit_count + 1 WHERE id = ?`, id)
	if err != nil {
		return domainerrors.Transport("record visit", err)
	}
	return requireAffected(res, "bookmark", id)
}

func (s *SQLite) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func getBookmark(ctx context.Context, tx *sqlx.Tx, id string) (model.Bookmark, error) {
	var r bookmarkRow
	err := tx.GetContext(ctx, &r, `SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bookmark{}, domainerrors.NotFoundf("bookmark %s not found", id)
	}
	if err != nil {
		return model.Bookmark{}, err
	}
	return r.toModel(), nil
}

func getCollection(ctx context.Context, tx *sqlx.Tx, id string) (*model.Collection, error) {
	var r collectionRow
	err := tx.GetContext(ctx, &r, `SELECT id, name, created_at FROM collections WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("collection %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	c := r.toModel()
	err = tx.SelectContext(ctx, &c.BookmarkIDs, `
		SELECT bookmark_id FROM collection_bookmarks WHERE collection_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	if c.BookmarkIDs == nil {
		c.BookmarkIDs = []string{}
	}
	return &c, nil
}

func insertMembers(ctx context.Context, tx *sqlx.Tx, collectionID string, ids []string, offset int) error {
	for i, bid := range ids {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO collection_bookmarks (collection_id, bookmark_id, position)
			VALUES (?, ?, ?)
		`, collectionID, bid, offset+i)
		if err != nil {
			return err
		}
	}
	return nil
}

// requireBookmarks fails with mkErr if any id names no bookmark.
func requireBookmarks(ctx context.Context, tx *sqlx.Tx, ids []string, mkErr func(string) *domainerrors.Error) error {
	ids = model.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM bookmarks WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	var count int
	if err := tx.GetContext(ctx, &count, tx.Rebind(query), args...); err != nil {
		return err
	}
	if count != len(ids) {
		return mkErr("one or more bookmarks are invalid")
	}
	return nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domainerrors.Transport("rows affected", err)
	}
	if n == 0 {
		return domainerrors.NotFoundf("%s %s not found", kind, id)
	}
	return nil
}

func fromBookmark(b model.Bookmark) bookmarkRow {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	r := bookmarkRow{
		ID:          b.ID,
		Title:       b.Title,
		URL:         b.URL,
		Description: b.Description,
		Tags:        string(tagsJSON),
		Category:    b.Category,
		VisitCount:  b.VisitCount,
		IsBroken:    b.IsBroken,
		ShareID:     b.ShareID,
		CreatedAt:   formatTime(b.CreatedAt),
		UpdatedAt:   formatTime(b.UpdatedAt),
	}
	if b.LastChecked != nil {
		r.LastChecked = sql.NullString{String: formatTime(*b.LastChecked), Valid: true}
	}
	return r
}

func (r bookmarkRow) toModel() model.Bookmark {
	b := model.Bookmark{
		ID:          r.ID,
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description,
		Category:    r.Category,
		VisitCount:  r.VisitCount,
		IsBroken:    r.IsBroken,
		ShareID:     r.ShareID,
		Shared:      r.ShareID != "",
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(r.Tags), &b.Tags); err != nil || b.Tags == nil {
		b.Tags = []string{}
	}
	if r.LastChecked.Valid {
		t := parseTime(r.LastChecked.String)
		b.LastChecked = &t
	}
	return b
}

func toBookmarks(rows []bookmarkRow) []model.Bookmark {
	bookmarks := make([]model.Bookmark, len(rows))
	for i, r := range rows {
		bookmarks[i] = r.toModel()
	}
	return bookmarks
}

func (r collectionRow) toModel() model.Collection {
	return model.Collection{
		ID:          r.ID,
		Name:        r.Name,
		BookmarkIDs: []string{},
		CreatedAt:   parseTime(r.CreatedAt),
	}
}
