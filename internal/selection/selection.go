// Package selection tracks which bookmarks of the current projection are
// selected for a bulk operation.
package selection

import (
	"sort"
	"sync"
)

// Tracker holds the selected bookmark ids. It is safe for concurrent use,
// so a finishing background operation may clear it while the view updates.
type Tracker struct {
	mu       sync.Mutex
	selected map[string]bool
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{selected: make(map[string]bool)}
}

// Toggle includes or excludes a single id.
func (t *Tracker) Toggle(id string, included bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if included {
		t.selected[id] = true
	} else {
		delete(t.selected, id)
	}
}

// Flip inverts the selection state of id and returns the new state.
func (t *Tracker) Flip(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.selected[id] {
		delete(t.selected, id)
		return false
	}
	t.selected[id] = true
	return true
}

// SelectAll selects exactly projectionIDs. If the selection already equals
// that set it is cleared instead.
func (t *Tracker) SelectAll(projectionIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	want := make(map[string]bool, len(projectionIDs))
	for _, id := range projectionIDs {
		want[id] = true
	}

	if len(want) == len(t.selected) {
		same := true
		for id := range want {
			if !t.selected[id] {
				same = false
				break
			}
		}
		if same {
			t.selected = make(map[string]bool)
			return
		}
	}
	t.selected = want
}

// Clear empties the selection. Calling it on an empty tracker is a no-op.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.selected) > 0 {
		t.selected = make(map[string]bool)
	}
}

// IsSelected reports whether id is selected.
func (t *Tracker) IsSelected(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected[id]
}

// Size returns the number of selected ids.
func (t *Tracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.selected)
}

// IDs returns a sorted copy of the selected ids.
func (t *Tracker) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.selected))
	for id := range t.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Retain drops every selected id that is not in visible and returns how
// many were dropped.
func (t *Tracker) Retain(visible []string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.selected) == 0 {
		return 0
	}

	keep := make(map[string]bool, len(visible))
	for _, id := range visible {
		keep[id] = true
	}

	dropped := 0
	for id := range t.selected {
		if !keep[id] {
			delete(t.selected, id)
			dropped++
		}
	}
	return dropped
}
