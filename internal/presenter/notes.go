package presenter

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
)

// NoteList shows the notes of the current scope, filtered by keyword and
// ordered by sorting.
type NoteList struct {
	notes NoteQuerier
	now   func() time.Time

	refreshMu sync.Mutex

	mu       sync.RWMutex
	scope    models.Scope
	keyword  string
	sorting  models.Sorting
	notesBuf []*models.Note
	selected string
	state    State
}

// NewNoteList creates the note list presenter.
func NewNoteList(notes NoteQuerier, sorting models.Sorting, now func() time.Time) *NoteList {
	if now == nil {
		now = time.Now
	}
	return &NoteList{notes: notes, sorting: sorting, now: now}
}

// SetScope switches the list to scope and re-queries. The selected note
// is always cleared.
func (l *NoteList) SetScope(ctx context.Context, scope models.Scope) error {
	l.mu.Lock()
	l.scope = scope
	l.selected = ""
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// SetKeyword changes the keyword filter and re-queries.
func (l *NoteList) SetKeyword(ctx context.Context, keyword string) error {
	l.mu.Lock()
	l.keyword = strings.TrimSpace(keyword)
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// SetSorting changes the sort order and re-queries.
func (l *NoteList) SetSorting(ctx context.Context, sorting models.Sorting) error {
	if !sorting.Valid() {
		return fmt.Errorf("%w: sorting %d", apperr.ErrInvalidArgument, sorting)
	}
	l.mu.Lock()
	l.sorting = sorting
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// Refresh re-runs the query for the current scope. With no scope the list
// is empty. A selected note that left the result is deselected.
func (l *NoteList) Refresh(ctx context.Context) error {
	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()
	l.setState(StateRefreshing)
	defer l.setState(StateIdle)

	l.mu.RLock()
	scope, sorting, keyword := l.scope, l.sorting, l.keyword
	l.mu.RUnlock()

	var result []*models.Note
	if !scope.IsZero() {
		var err error
		result, err = l.notes.Find(ctx, scope, sorting, keyword)
		if err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scope != scope {
		// Scope moved on while querying; the newer refresh owns the model.
		return nil
	}
	l.notesBuf = result
	if l.indexOf(l.selected) < 0 {
		l.selected = ""
	}
	return nil
}

// Select marks a listed note as selected. An empty id clears it.
func (l *NoteList) Select(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id != "" && l.indexOf(id) < 0 {
		return fmt.Errorf("%w: note %s", apperr.ErrNotFound, id)
	}
	l.selected = id
	return nil
}

// Insert prepends a freshly created note and selects it.
func (l *NoteList) Insert(n *models.Note) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notesBuf = append([]*models.Note{n}, l.notesBuf...)
	l.selected = n.ID
}

// Scope returns the current scope.
func (l *NoteList) Scope() models.Scope {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scope
}

// Keyword returns the current keyword filter.
func (l *NoteList) Keyword() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.keyword
}

// Sorting returns the current sort order.
func (l *NoteList) Sorting() models.Sorting {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sorting
}

// Selected returns the selected note id, or "".
func (l *NoteList) Selected() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.selected
}

// Items returns a snapshot of the list model.
func (l *NoteList) Items() []ListItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	now := l.now()
	items := make([]ListItem, len(l.notesBuf))
	for i, n := range l.notesBuf {
		items[i] = ListItem{
			ItemID:        n.ID,
			PrimaryText:   n.Title,
			SecondaryText: n.Description,
			TertiaryText:  RelativeTime(n.UpdatedAt(), now),
			Selected:      n.ID == l.selected,
		}
	}
	return items
}

// State reports whether a refresh is in flight.
func (l *NoteList) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *NoteList) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *NoteList) indexOf(id string) int {
	return slices.IndexFunc(l.notesBuf, func(n *models.Note) bool { return n.ID == id })
}
