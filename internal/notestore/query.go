package notestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
)

// scopeClause returns the WHERE predicate selecting the notes of scope.
// Archived notes only ever match the archived scope.
func scopeClause(scope models.Scope) (string, []any, error) {
	switch scope.Kind {
	case models.ScopeEverything:
		return "archived = 0", nil, nil
	case models.ScopeStarred:
		return "starred = 1 AND archived = 0", nil, nil
	case models.ScopeArchived:
		return "archived = 1", nil, nil
	case models.ScopeCategory:
		return "archived = 0 AND category = ?", []any{scope.Category}, nil
	}
	return "", nil, apperr.ErrInvalidScope
}

// orderBy maps a sort key to an ORDER BY clause. Ties always fall back
// to insertion order so repeated queries return identical sequences.
func orderBy(sorting models.Sorting) string {
	dir := "ASC"
	if sorting.Descending() {
		dir = "DESC"
	}
	var col string
	switch sorting {
	case models.SortTitleAsc, models.SortTitleDesc:
		col = "title COLLATE NOCASE"
	case models.SortCreatedAsc, models.SortCreatedDesc:
		col = "created_at"
	default:
		col = "updated_at"
	}
	return fmt.Sprintf("%s %s, seq ASC", col, dir)
}

// Find returns the notes of scope ordered by sorting. A non-empty keyword
// keeps only notes whose searchable text contains it, ignoring case.
func (s *Store) Find(ctx context.Context, scope models.Scope, sorting models.Sorting, keyword string) ([]*models.Note, error) {
	where, args, err := scopeClause(scope)
	if err != nil {
		return nil, err
	}
	if !sorting.Valid() {
		return nil, fmt.Errorf("%w: sorting %d", apperr.ErrInvalidArgument, int(sorting))
	}
	if kw := strings.ToLower(strings.TrimSpace(keyword)); kw != "" {
		where += " AND instr(search_key, ?) > 0"
		args = append(args, kw)
	}

	var rows []noteRow
	query := `SELECT ` + noteColumns + ` FROM notes WHERE ` + where + ` ORDER BY ` + orderBy(sorting)
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperr.Storage("notestore: find notes", err)
	}
	return toNotes(rows)
}

// FindAll returns every live (non-archived) note.
func (s *Store) FindAll(ctx context.Context, sorting models.Sorting, keyword string) ([]*models.Note, error) {
	return s.Find(ctx, models.Everything(), sorting, keyword)
}

// FindByStarred returns live starred notes.
func (s *Store) FindByStarred(ctx context.Context, sorting models.Sorting, keyword string) ([]*models.Note, error) {
	return s.Find(ctx, models.Starred(), sorting, keyword)
}

// FindByArchived returns archived notes.
func (s *Store) FindByArchived(ctx context.Context, sorting models.Sorting, keyword string) ([]*models.Note, error) {
	return s.Find(ctx, models.Archived(), sorting, keyword)
}

// FindByCategory returns live notes of category.
func (s *Store) FindByCategory(ctx context.Context, category string, sorting models.Sorting, keyword string) ([]*models.Note, error) {
	return s.Find(ctx, models.InCategory(category), sorting, keyword)
}

// Count returns the number of notes in scope without loading them.
func (s *Store) Count(ctx context.Context, scope models.Scope) (int, error) {
	where, args, err := scopeClause(scope)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM notes WHERE `+where, args...); err != nil {
		return 0, apperr.Storage("notestore: count notes", err)
	}
	return n, nil
}

// CountAll counts live notes.
func (s *Store) CountAll(ctx context.Context) (int, error) {
	return s.Count(ctx, models.Everything())
}

// CountByStarred counts live starred notes.
func (s *Store) CountByStarred(ctx context.Context) (int, error) {
	return s.Count(ctx, models.Starred())
}

// CountByArchived counts archived notes.
func (s *Store) CountByArchived(ctx context.Context) (int, error) {
	return s.Count(ctx, models.Archived())
}

// CountByCategory counts live notes of category.
func (s *Store) CountByCategory(ctx context.Context, category string) (int, error) {
	return s.Count(ctx, models.InCategory(category))
}
