package presenter

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
)

// Fixed filter item ids.
const (
	FilterEverything = "everything"
	FilterStarred    = "starred"
	FilterArchived   = "archived"
)

var filterDefs = []struct {
	id    string
	label string
	scope models.Scope
}{
	{FilterEverything, "Everything", models.Everything()},
	{FilterStarred, "Starred", models.Starred()},
	{FilterArchived, "Archived", models.Archived()},
}

// FilterScope returns the scope behind a filter id.
func FilterScope(id string) (models.Scope, bool) {
	for _, d := range filterDefs {
		if d.id == id {
			return d.scope, true
		}
	}
	return models.Scope{}, false
}

// FilterID returns the filter id of scope, or "" for a category scope.
func FilterID(scope models.Scope) string {
	for _, d := range filterDefs {
		if d.scope == scope {
			return d.id
		}
	}
	return ""
}

// FilterList is the fixed Everything/Starred/Archived list. Only the
// counts change.
type FilterList struct {
	notes NoteQuerier

	refreshMu sync.Mutex

	mu       sync.RWMutex
	counts   [3]int
	selected string
	state    State
}

// NewFilterList creates the filter list presenter.
func NewFilterList(notes NoteQuerier) *FilterList {
	return &FilterList{notes: notes}
}

// Refresh re-reads the three counts from the store.
func (f *FilterList) Refresh(ctx context.Context) error {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()
	f.setState(StateRefreshing)
	defer f.setState(StateIdle)

	var counts [3]int
	for i, d := range filterDefs {
		n, err := f.notes.Count(ctx, d.scope)
		if err != nil {
			return err
		}
		counts[i] = n
	}

	f.mu.Lock()
	f.counts = counts
	f.mu.Unlock()
	return nil
}

// Select marks a filter as selected.
func (f *FilterList) Select(id string) error {
	if _, ok := FilterScope(id); !ok {
		return fmt.Errorf("%w: filter %q", apperr.ErrNotFound, id)
	}
	f.mu.Lock()
	f.selected = id
	f.mu.Unlock()
	return nil
}

// Deselect clears the selection.
func (f *FilterList) Deselect() {
	f.mu.Lock()
	f.selected = ""
	f.mu.Unlock()
}

// Selected returns the selected filter id, or "".
func (f *FilterList) Selected() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.selected
}

// Increment bumps the badge of filter id without a query.
func (f *FilterList) Increment(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range filterDefs {
		if d.id == id {
			f.counts[i]++
		}
	}
}

// Items returns a snapshot of the list model.
func (f *FilterList) Items() []ListItem {
	f.mu.RLock()
	defer f.mu.RUnlock()
	items := make([]ListItem, len(filterDefs))
	for i, d := range filterDefs {
		items[i] = ListItem{
			ItemID:        d.id,
			PrimaryText:   d.label,
			SecondaryText: strconv.Itoa(f.counts[i]),
			Selected:      d.id == f.selected,
		}
	}
	return items
}

// State reports whether a refresh is in flight.
func (f *FilterList) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *FilterList) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}
