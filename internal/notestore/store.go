package notestore

import (
	"context"
	"io"

	"github.com/starford/inkpad/internal/models"
)

// NoteStore defines the note persistence operations. Consumers should
// depend on this interface rather than the concrete *Store.
type NoteStore interface {
	FindByID(ctx context.Context, id string) (*models.Note, error)
	Find(ctx context.Context, scope models.Scope, sorting models.Sorting, keyword string) ([]*models.Note, error)
	Count(ctx context.Context, scope models.Scope) (int, error)

	AddOrUpdate(ctx context.Context, n *models.Note) (*models.Note, error)
	RemoveByID(ctx context.Context, id string) (*models.Note, error)
	RemoveAll(ctx context.Context) (int64, error)
	RemoveByArchived(ctx context.Context) (int64, error)

	ArchiveByID(ctx context.Context, id string) error
	UnarchiveByID(ctx context.Context, id string) error
	ArchiveByEverything(ctx context.Context) (int64, error)
	ArchiveByStarred(ctx context.Context) (int64, error)
	ArchiveByCategory(ctx context.Context, category string) (int64, error)
	UnarchiveAll(ctx context.Context) (int64, error)

	RenameCategory(ctx context.Context, oldName, newName string) (int64, error)
	ClearCategory(ctx context.Context, name string, archive bool) ([]Membership, error)
	RestoreCategory(ctx context.Context, name string, members []Membership) error

	ImportNotes(ctx context.Context, notes []*models.Note) (int, error)
	ExportDatafile(ctx context.Context, w io.Writer) (int, error)
}

// Verify *Store satisfies NoteStore at compile time.
var _ NoteStore = (*Store)(nil)
