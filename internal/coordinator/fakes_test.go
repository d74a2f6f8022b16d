package coordinator_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikbrunner/shelf/internal/backend"
	"github.com/nikbrunner/shelf/internal/model"
)

// spyBackend wraps the in-memory backend, counting calls and injecting
// per-id failures.
type spyBackend struct {
	*backend.Memory

	mu          sync.Mutex
	calls       map[string]int
	deleteErrs  map[string]error
	shareErr    error
	listErr     error
	deleteDelay time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	// gate, when set, blocks the next ListBookmarks after it has read
	// its data; entered is signaled once the call is waiting.
	gate    chan struct{}
	entered chan struct{}
}

func newSpy(bookmarks []model.Bookmark, collections []model.Collection) *spyBackend {
	return &spyBackend{
		Memory:     backend.NewMemory(backend.WithData(bookmarks, collections)),
		calls:      make(map[string]int),
		deleteErrs: make(map[string]error),
	}
}

func (s *spyBackend) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
}

func (s *spyBackend) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *spyBackend) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for name, c := range s.calls {
		if name != "ListBookmarks" && name != "ListCollections" {
			n += c
		}
	}
	return n
}

func (s *spyBackend) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

func (s *spyBackend) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	s.record("ListBookmarks")
	s.mu.Lock()
	listErr, gate, entered := s.listErr, s.gate, s.entered
	s.gate, s.entered = nil, nil
	s.mu.Unlock()

	if listErr != nil {
		return nil, listErr
	}
	bms, err := s.Memory.ListBookmarks(ctx)
	if gate != nil {
		close(entered)
		<-gate
	}
	return bms, err
}

func (s *spyBackend) ListCollections(ctx context.Context) ([]model.Collection, error) {
	s.record("ListCollections")
	return s.Memory.ListCollections(ctx)
}

func (s *spyBackend) CreateBookmark(ctx context.Context, d model.Draft) (*model.Bookmark, error) {
	s.record("CreateBookmark")
	return s.Memory.CreateBookmark(ctx, d)
}

func (s *spyBackend) UpdateBookmark(ctx context.Context, id string, p model.Patch) (*model.Bookmark, error) {
	s.record("UpdateBookmark")
	return s.Memory.UpdateBookmark(ctx, id, p)
}

func (s *spyBackend) DeleteBookmark(ctx context.Context, id string) error {
	s.record("DeleteBookmark")

	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		max := s.maxInFlight.Load()
		if n <= max || s.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}
	if s.deleteDelay > 0 {
		time.Sleep(s.deleteDelay)
	}

	s.mu.Lock()
	err := s.deleteErrs[id]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Memory.DeleteBookmark(ctx, id)
}

func (s *spyBackend) ShareBookmarks(ctx context.Context, ids []string) (string, error) {
	s.record("ShareBookmarks")
	if s.shareErr != nil {
		return "", s.shareErr
	}
	return s.Memory.ShareBookmarks(ctx, ids)
}

func (s *spyBackend) CreateCollection(ctx context.Context, name string, ids []string) (*model.Collection, error) {
	s.record("CreateCollection")
	return s.Memory.CreateCollection(ctx, name, ids)
}

func (s *spyBackend) RenameCollection(ctx context.Context, id, name string) (*model.Collection, error) {
	s.record("RenameCollection")
	return s.Memory.RenameCollection(ctx, id, name)
}

func (s *spyBackend) DeleteCollection(ctx context.Context, id string) error {
	s.record("DeleteCollection")
	return s.Memory.DeleteCollection(ctx, id)
}

func (s *spyBackend) AddToCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	s.record("AddToCollection")
	return s.Memory.AddToCollection(ctx, id, ids)
}

func (s *spyBackend) RemoveFromCollection(ctx context.Context, id string, ids []string) (*model.Collection, error) {
	s.record("RemoveFromCollection")
	return s.Memory.RemoveFromCollection(ctx, id, ids)
}

// fakeView records what the coordinator asks of the view.
type fakeView struct {
	mu        sync.Mutex
	scope     model.Scope
	clears    int
	removed   []string
	refreshed []uint64
}

func (v *fakeView) Scope() model.Scope {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scope
}

func (v *fakeView) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clears++
}

func (v *fakeView) CollectionRemoved(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.removed = append(v.removed, id)
	if v.scope.IsCollection(id) {
		v.scope = model.AllScope()
	}
}

func (v *fakeView) Refreshed(snap *model.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshed = append(v.refreshed, snap.Version)
}

func (v *fakeView) refreshedVersions() []uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]uint64(nil), v.refreshed...)
}

func (v *fakeView) clearCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clears
}
