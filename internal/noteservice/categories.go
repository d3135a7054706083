package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/inkpad/internal/apperr"
)

// Category operations span two stores that cannot share a transaction.
// Notes are always updated first and the registry second; when the
// registry write fails the note update is reverted. A registry entry is
// never committed for a note change that did not happen.

// ListCategories returns the registry's category names.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	return s.categories.Find(ctx)
}

// AddCategory creates an empty category.
func (s *Service) AddCategory(ctx context.Context, name string) error {
	return s.categories.Add(ctx, name)
}

// UpdateCategory renames a category and every note that references it.
func (s *Service) UpdateCategory(ctx context.Context, oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("%w: category name is empty", apperr.ErrInvalidArgument)
	}
	if err := s.requireCategory(ctx, oldName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	taken, err := s.categories.Has(ctx, newName)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: category %q", apperr.ErrAlreadyExists, newName)
	}

	moved, err := s.store.RenameCategory(ctx, oldName, newName)
	if err != nil {
		return err
	}
	if err := s.categories.Rename(ctx, oldName, newName); err != nil {
		if _, undoErr := s.store.RenameCategory(ctx, newName, oldName); undoErr != nil {
			s.logger.Error("revert category rename",
				slog.String("from", newName),
				slog.String("to", oldName),
				slog.String("error", undoErr.Error()))
			return errors.Join(err, undoErr)
		}
		return err
	}

	s.logger.Info("category renamed",
		slog.String("from", oldName),
		slog.String("to", newName),
		slog.Int64("notes", moved))
	return nil
}

// RemoveCategory deletes a category. Its notes become uncategorized and,
// when cascadeArchive is set, archived.
func (s *Service) RemoveCategory(ctx context.Context, name string, cascadeArchive bool) error {
	if err := s.requireCategory(ctx, name); err != nil {
		return err
	}

	members, err := s.store.ClearCategory(ctx, name, cascadeArchive)
	if err != nil {
		return err
	}
	if err := s.categories.Remove(ctx, name); err != nil {
		if undoErr := s.store.RestoreCategory(ctx, name, members); undoErr != nil {
			s.logger.Error("revert category removal",
				slog.String("category", name),
				slog.String("error", undoErr.Error()))
			return errors.Join(err, undoErr)
		}
		return err
	}

	s.logger.Info("category removed",
		slog.String("category", name),
		slog.Bool("archived", cascadeArchive),
		slog.Int("notes", len(members)))
	return nil
}
