// Package entity holds the authoritative working set of bookmarks and
// collections for a session.
package entity

import (
	"sync"
	"sync/atomic"

	"github.com/nikbrunner/shelf/internal/model"
)

// Store owns the current snapshot. Readers never lock: a refresh swaps in
// a new snapshot wholesale, so a reader sees either the old or the new one.
type Store struct {
	current atomic.Pointer[model.Snapshot]

	mu      sync.Mutex // serializes writers
	version uint64
	applied uint64 // highest refresh ticket applied so far
	ticket  uint64
}

// NewStore creates a Store holding an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(model.EmptySnapshot())
	return s
}

// Snapshot returns the current snapshot. Never nil.
func (s *Store) Snapshot() *model.Snapshot {
	return s.current.Load()
}

// Version returns the version of the current snapshot.
func (s *Store) Version() uint64 {
	return s.Snapshot().Version
}

// BeginRefresh hands out a ticket that orders concurrent refreshes by the
// time they started listing.
func (s *Store) BeginRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	return s.ticket
}

// Replace installs a new snapshot built from the given entities, unless a
// refresh that started later has already been applied. Returns the
// installed snapshot and whether it was applied.
func (s *Store) Replace(ticket uint64, bookmarks []model.Bookmark, collections []model.Collection) (*model.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket <= s.applied {
		return s.current.Load(), false
	}
	s.applied = ticket
	s.version++

	snap := model.NewSnapshot(bookmarks, collections, s.version)
	s.current.Store(snap)
	return snap, true
}

// Load installs entities unconditionally. Used to seed a session.
func (s *Store) Load(bookmarks []model.Bookmark, collections []model.Collection) *model.Snapshot {
	snap, _ := s.Replace(s.BeginRefresh(), bookmarks, collections)
	return snap
}
