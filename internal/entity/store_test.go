package entity_test

import (
	"sync"
	"testing"

	"github.com/nikbrunner/shelf/internal/entity"
	"github.com/nikbrunner/shelf/internal/model"
	"gotest.tools/v3/assert"
)

func TestStore_StartsEmpty(t *testing.T) {
	s := entity.NewStore()

	snap := s.Snapshot()
	assert.Assert(t, snap != nil)
	assert.Equal(t, len(snap.Bookmarks), 0)
	assert.Equal(t, len(snap.Collections), 0)
	assert.Equal(t, s.Version(), uint64(0))
}

func TestStore_ReplaceBumpsVersion(t *testing.T) {
	s := entity.NewStore()

	first := s.Load([]model.Bookmark{{ID: "b1"}}, nil)
	second := s.Load([]model.Bookmark{{ID: "b1"}, {ID: "b2"}}, nil)

	assert.Equal(t, first.Version, uint64(1))
	assert.Equal(t, second.Version, uint64(2))
	assert.Equal(t, len(s.Snapshot().Bookmarks), 2)
	// the earlier snapshot is untouched
	assert.Equal(t, len(first.Bookmarks), 1)
}

func TestStore_StaleRefreshIsDropped(t *testing.T) {
	s := entity.NewStore()

	older := s.BeginRefresh()
	newer := s.BeginRefresh()

	_, applied := s.Replace(newer, []model.Bookmark{{ID: "new"}}, nil)
	assert.Assert(t, applied)

	snap, applied := s.Replace(older, []model.Bookmark{{ID: "old"}}, nil)
	assert.Assert(t, !applied)
	assert.Equal(t, snap.Bookmarks[0].ID, "new")
	assert.Equal(t, s.Snapshot().Bookmarks[0].ID, "new")
}

func TestStore_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	s := entity.NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Load([]model.Bookmark{{ID: "a"}, {ID: "b"}}, []model.Collection{{ID: "c", BookmarkIDs: []string{"a", "b"}}})
		}()
		go func() {
			defer wg.Done()
			snap := s.Snapshot()
			if len(snap.Collections) == 1 && len(snap.Bookmarks) != 2 {
				t.Errorf("observed partially updated snapshot: %+v", snap)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, s.Version(), uint64(50))
}
