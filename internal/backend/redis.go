package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/model"
)

// reader is the read subset shared by *redis.Client and *redis.Tx.
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// maxTxAttempts bounds optimistic transaction retries when a watched key
// changes underneath us.
const maxTxAttempts = 5

// Redis is a Backend storing each entity as a JSON value. Sorted sets keep
// insertion order so projections break ties the same way as other backends.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedis creates a Redis backend on an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	return NewRedis(client), nil
}

// Close closes the client.
func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	ids, err := s.client.ZRange(ctx, keyBookmarkOrder, 0, -1).Result()
	if err != nil {
		return nil, domainerrors.Transport("list bookmark ids", err)
	}
	found, err := s.getBookmarks(ctx, s.client, ids)
	if err != nil {
		return nil, domainerrors.Transport("list bookmarks", err)
	}

	bookmarks := make([]model.Bookmark, 0, len(ids))
	for _, id := range ids {
		// skip ids whose value vanished between the two reads
		if b, ok := found[id]; ok {
			bookmarks = append(bookmarks, b)
		}
	}
	return bookmarks, nil
}

func (s *Redis) ListCollections(ctx context.Context) ([]model.Collection, error) {
	ids, err := s.client.ZRange(ctx, keyCollectionOrder, 0, -1).Result()
	if err != nil {
		return nil, domainerrors.Transport("list collection ids", err)
	}

	collections := make([]model.Collection, 0, len(ids))
	if len(ids) == 0 {
		return collections, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = CollectionKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, domainerrors.Transport("list collections", err)
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var c model.Collection
		if err := json.Unmarshal([]byte(str), &c); err != nil {
			return nil, domainerrors.Transport("unmarshal collection", err)
		}
		if c.BookmarkIDs == nil {
			c.BookmarkIDs = []string{}
		}
		collections = append(collections, c)
	}
	return collections, nil
}

func (s *Redis) CreateBookmark(ctx context.Context, draft model.Draft) (*model.Bookmark, error) {
	b := model.NewBookmark(model.NewBookmarkParams{Draft: draft, Now: s.now()})

	data, err := json.Marshal(b)
	if err != nil {
		return nil, domainerrors.Transport("marshal bookmark", err)
	}
	seq, err := s.client.Incr(ctx, keyBookmarkSeq).Result()
	if err != nil {
		return nil, domainerrors.Transport("create bookmark", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, BookmarkKey(b.ID), data, 0)
		pipe.ZAdd(ctx, keyBookmarkOrder, redis.Z{Score: float64(seq), Member: b.ID})
		return nil
	})
	if err != nil {
		return nil, domainerrors.Transport("create bookmark", err)
	}
	return &b, nil
}

func (s *Redis) UpdateBookmark(ctx context.Context, id string, patch model.Patch) (*model.Bookmark, error) {
	var updated model.Bookmark
	err := s.watch(ctx, func(tx *redis.Tx) error {
		current, err := s.getBookmark(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = current.Apply(patch, s.now())
		return setJSON(ctx, tx, BookmarkKey(id), updated)
	}, BookmarkKey(id))
	if err != nil {
		return nil, domainerrors.AsTransport("update bookmark", err)
	}
	return &updated, nil
}

// DeleteBookmark removes a bookmark. Collections keep the dangling id.
func (s *Redis) DeleteBookmark(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, BookmarkKey(id))
		pipe.ZRem(ctx, keyBookmarkOrder, id)
		return nil
	})
	if err != nil {
		return domainerrors.Transport("delete bookmark", err)
	}
	if del.Val() == 0 {
		return domainerrors.NotFoundf("bookmark %s not found", id)
	}
	return nil
}

func (s *Redis) ShareBookmarks(ctx context.Context, ids []string) (string, error) {
	ids = model.UniqueIDs(ids)
	shareID, err := NewShareID()
	if err != nil {
		return "", domainerrors.Transport("share bookmarks", err)
	}
	if len(ids) == 0 {
		return shareID, nil
	}

	err = s.watch(ctx, func(tx *redis.Tx) error {
		found, err := s.getBookmarks(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				return domainerrors.NotFoundf("bookmark %s not found", id)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			members := make([]interface{}, 0, len(ids))
			for _, id := range ids {
				b := found[id]
				b.Shared = true
				b.ShareID = shareID
				data, err := json.Marshal(b)
				if err != nil {
					return err
				}
				pipe.Set(ctx, BookmarkKey(id), data, 0)
				members = append(members, id)
			}
			pipe.SAdd(ctx, ShareKey(shareID), members...)
			return nil
		})
		return err
	}, bookmarkKeys(ids)...)
	if err != nil {
		return "", domainerrors.AsTransport("share bookmarks", err)
	}
	return shareID, nil
}

func (s *Redis) CreateCollection(ctx context.Context, name string, ids []string) (*model.Collection, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domainerrors.Validation("collection name is required")
	}
	c := model.NewCollection(model.NewCollectionParams{Name: name, BookmarkIDs: ids, Now: s.now()})
	if err := s.requireBookmarks(ctx, c.BookmarkIDs); err != nil {
		return nil, domainerrors.AsTransport("create collection", err)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return nil, domainerrors.Transport("marshal collection", err)
	}
	seq, err := s.client.Incr(ctx, keyCollectionSeq).Result()
	if err != nil {
		return nil, domainerrors.Transport("create collection", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, CollectionKey(c.ID), data, 0)
		pipe.ZAdd(ctx, keyCollectionOrder, redis.Z{Score: float64(seq), Member: c.ID})
		return nil
	})
	if err != nil {
		return nil, domainerrors.Transport("create collection", err)
	}
	return &c, nil
}

func (s *Redis) RenameCollection(ctx context.Context, id, name string) (*model.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("collection name is required")
	}
	return s.updateCollection(ctx, "rename collection", id, func(c model.Collection) (model.Collection, error) {
		c.Name = name
		return c, nil
	})
}

func (s *Redis) DeleteCollection(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, CollectionKey(id))
		pipe.ZRem(ctx, keyCollectionOrder, id)
		return nil
	})
	if err != nil {
		return domainerrors.Transport("delete collection", err)
	}
	if del.Val() == 0 {
		return domainerrors.NotFoundf("collection %s not found", id)
	}
	return nil
}

func (s *Redis) AddToCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	if err := s.requireBookmarks(ctx, ids); err != nil {
		return nil, domainerrors.AsTransport("add to collection", err)
	}
	return s.updateCollection(ctx, "add to collection", id, func(c model.Collection) (model.Collection, error) {
		return c.WithAdded(ids), nil
	})
}

func (s *Redis) RemoveFromCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	return s.updateCollection(ctx, "remove from collection", id, func(c model.Collection) (model.Collection, error) {
		return c.WithRemoved(ids), nil
	})
}

func (s *Redis) SharedBookmarks(ctx context.Context, shareID string) ([]model.Bookmark, error) {
	result := []model.Bookmark{}
	if shareID == "" {
		return result, nil
	}

	ids, err := s.client.SMembers(ctx, ShareKey(shareID)).Result()
	if err != nil {
		return nil, domainerrors.Transport("shared bookmark ids", err)
	}
	all, err := s.ListBookmarks(ctx)
	if err != nil {
		return nil, err
	}

	members := make(map[string]bool, len(ids))
	for _, id := range ids {
		members[id] = true
	}
	// a bookmark re-shared later belongs to the newer share only
	for _, b := range all {
		if members[b.ID] && b.ShareID == shareID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (s *Redis) SetLinkStatus(ctx context.Context, id string, broken bool, checkedAt time.Time) error {
	err := s.modifyBookmark(ctx, id, func(b *model.Bookmark) {
		checked := checkedAt
		b.IsBroken = broken
		b.LastChecked = &checked
	})
	return domainerrors.AsTransport("set link status", err)
}

func (s *Redis) RecordVisit(ctx context.Context, id string) error {
	err := s.modifyBookmark(ctx, id, func(b *model.Bookmark) { b.VisitCount++ })
	return domainerrors.AsTransport("record visit", err)
}

func (s *Redis) modifyBookmark(ctx context.Context, id string, fn func(b *model.Bookmark)) error {
	return s.watch(ctx, func(tx *redis.Tx) error {
		b, err := s.getBookmark(ctx, tx, id)
		if err != nil {
			return err
		}
		fn(&b)
		return setJSON(ctx, tx, BookmarkKey(id), b)
	}, BookmarkKey(id))
}

func (s *Redis) updateCollection(ctx context.Context, op, id string, fn func(model.Collection) (model.Collection, error)) (*model.Collection, error) {
	var updated model.Collection
	err := s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, CollectionKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return domainerrors.NotFoundf("collection %s not found", id)
		}
		if err != nil {
			return err
		}
		var current model.Collection
		if err := json.Unmarshal(data, &current); err != nil {
			return err
		}
		updated, err = fn(current)
		if err != nil {
			return err
		}
		return setJSON(ctx, tx, CollectionKey(id), updated)
	}, CollectionKey(id))
	if err != nil {
		return nil, domainerrors.AsTransport(op, err)
	}
	if updated.BookmarkIDs == nil {
		updated.BookmarkIDs = []string{}
	}
	return &updated, nil
}

// watch runs fn in an optimistic transaction over keys, retrying when a
// watched key changed before EXEC.
func (s *Redis) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (s *Redis) getBookmark(ctx context.Context, c reader, id string) (model.Bookmark, error) {
	data, err := c.Get(ctx, BookmarkKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Bookmark{}, domainerrors.NotFoundf("bookmark %s not found", id)
	}
	if err != nil {
		return model.Bookmark{}, err
	}
	var b model.Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return model.Bookmark{}, err
	}
	return b, nil
}

// getBookmarks reads ids with one MGET; missing ids are absent from the map.
func (s *Redis) getBookmarks(ctx context.Context, c reader, ids []string) (map[string]model.Bookmark, error) {
	found := make(map[string]model.Bookmark, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	values, err := c.MGet(ctx, bookmarkKeys(ids)...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var b model.Bookmark
		if err := json.Unmarshal([]byte(str), &b); err != nil {
			return nil, err
		}
		if b.Tags == nil {
			b.Tags = []string{}
		}
		found[b.ID] = b
	}
	return found, nil
}

func (s *Redis) requireBookmarks(ctx context.Context, ids []string) error {
	ids = model.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	n, err := s.client.Exists(ctx, bookmarkKeys(ids)...).Result()
	if err != nil {
		return err
	}
	if int(n) != len(ids) {
		return domainerrors.Validation("one or more bookmarks are invalid")
	}
	return nil
}

func setJSON(ctx context.Context, tx *redis.Tx, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		return nil
	})
	return err
}
