package selection_test

import (
	"sync"
	"testing"

	"github.com/nikbrunner/shelf/internal/selection"
	"gotest.tools/v3/assert"
)

func TestTracker_Toggle(t *testing.T) {
	s := selection.New()

	s.Toggle("a", true)
	s.Toggle("b", true)
	s.Toggle("a", true)
	assert.Equal(t, s.Size(), 2)
	assert.Assert(t, s.IsSelected("a"))

	s.Toggle("a", false)
	s.Toggle("missing", false)
	assert.Equal(t, s.Size(), 1)
	assert.Assert(t, !s.IsSelected("a"))
	assert.DeepEqual(t, s.IDs(), []string{"b"})
}

func TestTracker_Flip(t *testing.T) {
	s := selection.New()

	assert.Assert(t, s.Flip("x"))
	assert.Assert(t, s.IsSelected("x"))
	assert.Assert(t, !s.Flip("x"))
	assert.Equal(t, s.Size(), 0)
}

func TestTracker_SelectAllToggles(t *testing.T) {
	projection := []string{"3", "1", "2"}
	s := selection.New()

	s.SelectAll(projection)
	assert.DeepEqual(t, s.IDs(), []string{"1", "2", "3"})

	s.SelectAll(projection)
	assert.Equal(t, s.Size(), 0)

	s.SelectAll(projection)
	assert.Equal(t, s.Size(), 3)
}

func TestTracker_SelectAllFromPartial(t *testing.T) {
	s := selection.New()
	s.Toggle("1", true)

	s.SelectAll([]string{"1", "2"})

	assert.DeepEqual(t, s.IDs(), []string{"1", "2"})
}

func TestTracker_SelectAllReplacesForeignIDs(t *testing.T) {
	s := selection.New()
	s.Toggle("gone", true)
	s.Toggle("1", true)

	// same size but different members selects the projection
	s.SelectAll([]string{"1", "2"})

	assert.DeepEqual(t, s.IDs(), []string{"1", "2"})
}

func TestTracker_SelectAllEmptyProjection(t *testing.T) {
	s := selection.New()

	s.SelectAll(nil)
	assert.Equal(t, s.Size(), 0)

	s.Toggle("a", true)
	s.SelectAll(nil)
	assert.Equal(t, s.Size(), 0)
}

func TestTracker_ClearIsIdempotent(t *testing.T) {
	s := selection.New()
	s.Toggle("a", true)

	s.Clear()
	s.Clear()

	assert.Equal(t, s.Size(), 0)
	assert.DeepEqual(t, s.IDs(), []string{})
}

func TestTracker_RetainKeepsSubsetOfProjection(t *testing.T) {
	s := selection.New()
	s.SelectAll([]string{"a", "b", "c"})

	dropped := s.Retain([]string{"c", "a", "z"})

	assert.Equal(t, dropped, 1)
	assert.DeepEqual(t, s.IDs(), []string{"a", "c"})
	for _, id := range s.IDs() {
		assert.Assert(t, id == "a" || id == "c")
	}
}

func TestTracker_ConcurrentClear(t *testing.T) {
	s := selection.New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Toggle("x", true)
		}()
		go func() {
			defer wg.Done()
			s.Clear()
		}()
	}
	wg.Wait()
	s.Clear()

	assert.Equal(t, s.Size(), 0)
}
