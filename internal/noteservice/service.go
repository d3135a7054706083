// Package noteservice implements the note and category operations on top
// of the note store and the category registry.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
	"github.com/starford/inkpad/internal/notestore"
)

// Categories is the subset of the category registry the service needs.
type Categories interface {
	Find(ctx context.Context) ([]string, error)
	Has(ctx context.Context, name string) (bool, error)
	Add(ctx context.Context, name string) error
	Rename(ctx context.Context, oldName, newName string) error
	Remove(ctx context.Context, name string) error
}

// Service coordinates the note store and the category registry.
type Service struct {
	store      notestore.NoteStore
	categories Categories
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for background failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new note service.
func NewService(store notestore.NoteStore, categories Categories, opts ...Option) *Service {
	s := &Service{
		store:      store,
		categories: categories,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetNote returns the note with id or ErrNotFound.
func (s *Service) GetNote(ctx context.Context, id string) (*models.Note, error) {
	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: note %s", apperr.ErrNotFound, id)
	}
	return n, nil
}

// ListNotes returns the notes of scope, filtered by keyword.
func (s *Service) ListNotes(ctx context.Context, scope models.Scope, sorting models.Sorting, keyword string) ([]*models.Note, error) {
	return s.store.Find(ctx, scope, sorting, keyword)
}

// CountNotes returns the number of notes in scope.
func (s *Service) CountNotes(ctx context.Context, scope models.Scope) (int, error) {
	return s.store.Count(ctx, scope)
}

// CreateNote adds a blank note under scope. The note inherits the
// attributes the scope implies: starred, archived or its category.
func (s *Service) CreateNote(ctx context.Context, scope models.Scope) (*models.Note, error) {
	return s.CreateFromText(ctx, scope, "")
}

// CreateFromText adds a note holding text under scope.
func (s *Service) CreateFromText(ctx context.Context, scope models.Scope, text string) (*models.Note, error) {
	if scope.IsZero() {
		return nil, apperr.ErrInvalidScope
	}
	if scope.Kind == models.ScopeCategory {
		if err := s.requireCategory(ctx, scope.Category); err != nil {
			return nil, err
		}
	}
	n := models.FromText(text, s.now())
	scope.Apply(n)
	return s.store.AddOrUpdate(ctx, n)
}

// SerializeNote returns the raw text of a note.
func (s *Service) SerializeNote(ctx context.Context, id string) (string, error) {
	n, err := s.GetNote(ctx, id)
	if err != nil {
		return "", err
	}
	return n.RawText(), nil
}

// UpdateText replaces the content of a note.
func (s *Service) UpdateText(ctx context.Context, id, text string) (*models.Note, error) {
	return s.mutate(ctx, id, func(n *models.Note) error {
		n.Update(text, s.now())
		return nil
	})
}

// SetHashTags assigns the tag set of a note.
func (s *Service) SetHashTags(ctx context.Context, id string, tags []string) (*models.Note, error) {
	return s.mutate(ctx, id, func(n *models.Note) error {
		n.SetHashTags(tags)
		n.Touch(s.now())
		return nil
	})
}

// SetStarred stars or unstars a note.
func (s *Service) SetStarred(ctx context.Context, id string, starred bool) (*models.Note, error) {
	return s.mutate(ctx, id, func(n *models.Note) error {
		n.Starred = starred
		n.Touch(s.now())
		return nil
	})
}

// MoveToCategory assigns a note to category. An empty category
// uncategorizes the note; any other name must exist in the registry.
func (s *Service) MoveToCategory(ctx context.Context, id, category string) (*models.Note, error) {
	if category != "" {
		if err := s.requireCategory(ctx, category); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, id, func(n *models.Note) error {
		n.Category = category
		n.Touch(s.now())
		return nil
	})
}

// Archive soft-deletes a note.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.store.ArchiveByID(ctx, id)
}

// Unarchive restores an archived note.
func (s *Service) Unarchive(ctx context.Context, id string) error {
	return s.store.UnarchiveByID(ctx, id)
}

// ArchiveScope archives every live note of scope. Under the archived
// scope it restores every archived note instead.
func (s *Service) ArchiveScope(ctx context.Context, scope models.Scope) (int64, error) {
	switch scope.Kind {
	case models.ScopeEverything:
		return s.store.ArchiveByEverything(ctx)
	case models.ScopeStarred:
		return s.store.ArchiveByStarred(ctx)
	case models.ScopeCategory:
		return s.store.ArchiveByCategory(ctx, scope.Category)
	case models.ScopeArchived:
		return s.store.UnarchiveAll(ctx)
	}
	return 0, apperr.ErrInvalidScope
}

// Duplicate stores a copy of a note under a new id.
func (s *Service) Duplicate(ctx context.Context, id string) (*models.Note, error) {
	n, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.AddOrUpdate(ctx, n.Duplicate(s.now()))
}

// Trash archives a live note and hard-deletes an archived one. It returns
// the note as it was before and whether it was deleted for good.
func (s *Service) Trash(ctx context.Context, id string) (*models.Note, bool, error) {
	n, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !n.Archived {
		return n, false, s.store.ArchiveByID(ctx, id)
	}
	removed, err := s.store.RemoveByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return removed, true, nil
}

// EmptyArchive hard-deletes every archived note.
func (s *Service) EmptyArchive(ctx context.Context) (int64, error) {
	return s.store.RemoveByArchived(ctx)
}

// RemoveAllNotes hard-deletes every note.
func (s *Service) RemoveAllNotes(ctx context.Context) (int64, error) {
	return s.store.RemoveAll(ctx)
}

func (s *Service) mutate(ctx context.Context, id string, fn func(n *models.Note) error) (*models.Note, error) {
	n, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(n); err != nil {
		return nil, err
	}
	return s.store.AddOrUpdate(ctx, n)
}

func (s *Service) requireCategory(ctx context.Context, name string) error {
	ok, err := s.categories.Has(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: category %q", apperr.ErrNotFound, name)
	}
	return nil
}
