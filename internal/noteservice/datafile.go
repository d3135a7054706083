package noteservice

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/starford/inkpad/internal/notestore"
)

// ImportDatafile loads a JSON-per-line note datafile. Categories named by
// the notes are added to the registry before any note is written, so an
// imported note never references a missing category.
func (s *Service) ImportDatafile(ctx context.Context, r io.Reader) (int, error) {
	notes, err := notestore.ReadDatafile(r)
	if err != nil {
		return 0, err
	}

	var names []string
	for _, n := range notes {
		if n.Category != "" && !slices.Contains(names, n.Category) {
			names = append(names, n.Category)
		}
	}
	added, err := s.ensureCategories(ctx, names)
	if err != nil {
		return 0, err
	}

	imported, err := s.store.ImportNotes(ctx, notes)
	if err != nil {
		return 0, err
	}
	s.logger.Info("datafile imported",
		slog.Int("notes", imported),
		slog.Int("categories_added", added))
	return imported, nil
}

// ExportDatafile writes every note to w in the datafile format.
func (s *Service) ExportDatafile(ctx context.Context, w io.Writer) (int, error) {
	return s.store.ExportDatafile(ctx, w)
}

// ensureCategories adds the names missing from the registry and reports
// how many were added.
func (s *Service) ensureCategories(ctx context.Context, names []string) (int, error) {
	added := 0
	for _, name := range names {
		ok, err := s.categories.Has(ctx, name)
		if err != nil {
			return added, err
		}
		if ok {
			continue
		}
		if err := s.categories.Add(ctx, name); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
