package presenter

import (
	"context"
	"fmt"
	"sync"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
)

// Editor holds the note loaded for the selected note id.
type Editor struct {
	notes NoteQuerier

	mu   sync.RWMutex
	note *models.Note
}

// NewEditor creates the editor state.
func NewEditor(notes NoteQuerier) *Editor {
	return &Editor{notes: notes}
}

// Load loads the note with id. An empty id empties the editor; a missing
// note empties it and returns ErrNotFound.
func (e *Editor) Load(ctx context.Context, id string) error {
	if id == "" {
		e.Set(nil)
		return nil
	}
	n, err := e.notes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	e.Set(n)
	if n == nil {
		return fmt.Errorf("%w: note %s", apperr.ErrNotFound, id)
	}
	return nil
}

// Set replaces the loaded note.
func (e *Editor) Set(n *models.Note) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n != nil {
		n = n.Clone()
	}
	e.note = n
}

// Note returns a copy of the loaded note, or nil.
func (e *Editor) Note() *models.Note {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.note == nil {
		return nil
	}
	return e.note.Clone()
}
