package notestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
)

const noteColumns = `id, title, description, full_text, searchable_text, search_key,
	hash_tags, category, starred, archived, created_at, updated_at`

const upsertSQL = `
	INSERT INTO notes (` + noteColumns + `)
	VALUES (:id, :title, :description, :full_text, :searchable_text, :search_key,
		:hash_tags, :category, :starred, :archived, :created_at, :updated_at)
	ON CONFLICT(id) DO UPDATE SET
		title           = excluded.title,
		description     = excluded.description,
		full_text       = excluded.full_text,
		searchable_text = excluded.searchable_text,
		search_key      = excluded.search_key,
		hash_tags       = excluded.hash_tags,
		category        = excluded.category,
		starred         = excluded.starred,
		archived        = excluded.archived,
		updated_at      = max(excluded.updated_at, notes.created_at)
`

// noteRow is a row of the notes table.
type noteRow struct {
	ID             string         `db:"id"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	FullText       string         `db:"full_text"`
	SearchableText string         `db:"searchable_text"`
	SearchKey      string         `db:"search_key"`
	HashTags       string         `db:"hash_tags"`
	Category       sql.NullString `db:"category"`
	Starred        bool           `db:"starred"`
	Archived       bool           `db:"archived"`
	CreatedAt      int64          `db:"created_at"`
	UpdatedAt      int64          `db:"updated_at"`
}

func toRow(n *models.Note) noteRow {
	tags, _ := json.Marshal(n.HashTags)
	return noteRow{
		ID:             n.ID,
		Title:          n.Title,
		Description:    n.Description,
		FullText:       n.FullText,
		SearchableText: n.SearchableText,
		SearchKey:      strings.ToLower(n.SearchableText),
		HashTags:       string(tags),
		Category:       sql.NullString{String: n.Category, Valid: n.Category != ""},
		Starred:        n.Starred,
		Archived:       n.Archived,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.LastUpdatedAt,
	}
}

func (r noteRow) toNote() (*models.Note, error) {
	tags := []string{}
	if r.HashTags != "" {
		if err := json.Unmarshal([]byte(r.HashTags), &tags); err != nil {
			return nil, apperr.Storage(fmt.Sprintf("notestore: decode hash tags of %s", r.ID), err)
		}
	}
	return &models.Note{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		FullText:       r.FullText,
		SearchableText: r.SearchableText,
		HashTags:       tags,
		Category:       r.Category.String,
		Starred:        r.Starred,
		Archived:       r.Archived,
		LastUpdatedAt:  r.UpdatedAt,
		CreatedAt:      r.CreatedAt,
	}, nil
}

func toNotes(rows []noteRow) ([]*models.Note, error) {
	out := make([]*models.Note, 0, len(rows))
	for _, r := range rows {
		n, err := r.toNote()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// prepare returns the document that will be written for n: derived
// fields recomputed, id and timestamps filled in.
func (s *Store) prepare(n *models.Note) *models.Note {
	doc := n.Clone()
	doc.Derive()
	if doc.CreatedAt == 0 {
		doc.CreatedAt = s.now().UnixMilli()
	}
	if doc.LastUpdatedAt < doc.CreatedAt {
		doc.LastUpdatedAt = doc.CreatedAt
	}
	if doc.ID == "" {
		doc.ID = newID()
	}
	return doc
}

func upsert(ctx context.Context, e sqlx.ExtContext, doc *models.Note) error {
	if _, err := sqlx.NamedExecContext(ctx, e, upsertSQL, toRow(doc)); err != nil {
		return apperr.Storage("notestore: upsert note", err)
	}
	return nil
}

// AddOrUpdate inserts n when it has no id (assigning one) and otherwise
// replaces the document stored at its id. createdAt of an existing
// document is never overwritten and lastUpdatedAt is raised to it when
// older. It returns the persisted document.
func (s *Store) AddOrUpdate(ctx context.Context, n *models.Note) (*models.Note, error) {
	doc := s.prepare(n)
	if err := upsert(ctx, s.db, doc); err != nil {
		return nil, err
	}
	saved, err := s.FindByID(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, apperr.Storage("notestore: reload note", fmt.Errorf("note %s vanished after write", doc.ID))
	}
	return saved, nil
}

// FindByID returns the note with id, or nil when there is none.
func (s *Store) FindByID(ctx context.Context, id string) (*models.Note, error) {
	return findByID(ctx, s.db, id)
}

func findByID(ctx context.Context, q sqlx.QueryerContext, id string) (*models.Note, error) {
	var row noteRow
	err := sqlx.GetContext(ctx, q, &row, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("notestore: get note", err)
	}
	return row.toNote()
}

// RemoveByID hard-deletes a note and returns the deleted document.
func (s *Store) RemoveByID(ctx context.Context, id string) (*models.Note, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.Storage("notestore: begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	n, err := findByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: note %s", apperr.ErrNotFound, id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return nil, apperr.Storage("notestore: delete note", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Storage("notestore: commit", err)
	}
	return n, nil
}

// RemoveAll hard-deletes every note.
func (s *Store) RemoveAll(ctx context.Context) (int64, error) {
	return s.exec(ctx, "notestore: delete all", `DELETE FROM notes`)
}

// RemoveByArchived hard-deletes every archived note.
func (s *Store) RemoveByArchived(ctx context.Context) (int64, error) {
	return s.exec(ctx, "notestore: delete archived", `DELETE FROM notes WHERE archived = 1`)
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperr.Storage(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Storage(op, err)
	}
	return n, nil
}
