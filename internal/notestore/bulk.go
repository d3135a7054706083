package notestore

import (
	"context"
	"fmt"

	"github.com/starford/inkpad/internal/apperr"
)

// Membership records a note's state before its category was cleared, so
// the change can be reverted.
type Membership struct {
	ID        string `db:"id"`
	Archived  bool   `db:"archived"`
	UpdatedAt int64  `db:"updated_at"`
}

func (s *Store) setArchived(ctx context.Context, id string, archived bool) error {
	n, err := s.exec(ctx, "notestore: set archived",
		`UPDATE notes SET archived = ?, updated_at = max(?, created_at) WHERE id = ?`,
		archived, s.now().UnixMilli(), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: note %s", apperr.ErrNotFound, id)
	}
	return nil
}

// ArchiveByID soft-deletes one note.
func (s *Store) ArchiveByID(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, true)
}

// UnarchiveByID restores one archived note.
func (s *Store) UnarchiveByID(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, false)
}

// ArchiveByEverything archives every live note in one statement.
func (s *Store) ArchiveByEverything(ctx context.Context) (int64, error) {
	return s.exec(ctx, "notestore: archive all",
		`UPDATE notes SET archived = 1, updated_at = max(?, created_at) WHERE archived = 0`,
		s.now().UnixMilli())
}

// ArchiveByStarred archives every live starred note.
func (s *Store) ArchiveByStarred(ctx context.Context) (int64, error) {
	return s.exec(ctx, "notestore: archive starred",
		`UPDATE notes SET archived = 1, updated_at = max(?, created_at) WHERE starred = 1 AND archived = 0`,
		s.now().UnixMilli())
}

// ArchiveByCategory archives every live note of category.
func (s *Store) ArchiveByCategory(ctx context.Context, category string) (int64, error) {
	return s.exec(ctx, "notestore: archive category",
		`UPDATE notes SET archived = 1, updated_at = max(?, created_at) WHERE category = ? AND archived = 0`,
		s.now().UnixMilli(), category)
}

// UnarchiveAll restores every archived note.
func (s *Store) UnarchiveAll(ctx context.Context) (int64, error) {
	return s.exec(ctx, "notestore: unarchive all",
		`UPDATE notes SET archived = 0, updated_at = max(?, created_at) WHERE archived = 1`,
		s.now().UnixMilli())
}

// RenameCategory moves every note of oldName, archived or not, to newName.
func (s *Store) RenameCategory(ctx context.Context, oldName, newName string) (int64, error) {
	return s.exec(ctx, "notestore: rename category",
		`UPDATE notes SET category = ?, updated_at = max(?, created_at) WHERE category = ?`,
		newName, s.now().UnixMilli(), oldName)
}

// ClearCategory uncategorizes every note of name, archiving them too when
// archive is set. It returns the prior state of the affected notes.
func (s *Store) ClearCategory(ctx context.Context, name string, archive bool) ([]Membership, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.Storage("notestore: begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var members []Membership
	if err := tx.SelectContext(ctx, &members,
		`SELECT id, archived, updated_at FROM notes WHERE category = ? ORDER BY seq`, name); err != nil {
		return nil, apperr.Storage("notestore: select category members", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE notes
		SET category   = NULL,
		    archived   = CASE WHEN ? THEN 1 ELSE archived END,
		    updated_at = max(?, created_at)
		WHERE category = ?`,
		archive, s.now().UnixMilli(), name); err != nil {
		return nil, apperr.Storage("notestore: clear category", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Storage("notestore: commit", err)
	}
	return members, nil
}

// RestoreCategory reverts a ClearCategory using the memberships it returned.
func (s *Store) RestoreCategory(ctx context.Context, name string, members []Membership) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Storage("notestore: begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, m := range members {
		if _, err := tx.ExecContext(ctx,
			`UPDATE notes SET category = ?, archived = ?, updated_at = ? WHERE id = ?`,
			name, m.Archived, m.UpdatedAt, m.ID); err != nil {
			return apperr.Storage("notestore: restore category", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperr.Storage("notestore: commit", err)
	}
	return nil
}
