package notestore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
)

// maxDocumentSize bounds one datafile line.
const maxDocumentSize = 64 << 20

// datafileLine captures the bookkeeping keys of an append-only datafile.
type datafileLine struct {
	ID           string `json:"_id"`
	Deleted      bool   `json:"$$deleted"`
	IndexCreated any    `json:"$$indexCreated"`
}

// ImportDatafile reads a datafile and writes its notes with ImportNotes.
// Categories are written as-is; callers that keep a category registry
// register them first.
func (s *Store) ImportDatafile(ctx context.Context, r io.Reader) (int, error) {
	notes, err := ReadDatafile(r)
	if err != nil {
		return 0, err
	}
	return s.ImportNotes(ctx, notes)
}

// ReadDatafile parses a JSON-per-line note datafile. Lines are applied in
// order: a later line for the same _id replaces the earlier one and a
// $$deleted line drops it. Notes are returned in first-seen order.
func ReadDatafile(r io.Reader) ([]*models.Note, error) {
	docs := make(map[string]*models.Note)
	listed := make(map[string]bool)
	var order []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxDocumentSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var meta datafileLine
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, apperr.Storage(fmt.Sprintf("notestore: parse datafile line %d", lineNo), err)
		}
		if meta.IndexCreated != nil || meta.ID == "" {
			continue
		}
		if meta.Deleted {
			delete(docs, meta.ID)
			continue
		}
		var n models.Note
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, apperr.Storage(fmt.Sprintf("notestore: parse datafile line %d", lineNo), err)
		}
		if !listed[n.ID] {
			listed[n.ID] = true
			order = append(order, n.ID)
		}
		docs[n.ID] = &n
	}
	if err := sc.Err(); err != nil {
		return nil, apperr.Storage("notestore: read datafile", err)
	}

	notes := make([]*models.Note, 0, len(docs))
	for _, id := range order {
		if n, ok := docs[id]; ok {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

// ImportNotes writes notes in one transaction, keeping their ids and
// timestamps. Existing documents with the same ids are replaced.
func (s *Store) ImportNotes(ctx context.Context, notes []*models.Note) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperr.Storage("notestore: begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	imported := 0
	for _, n := range notes {
		// Stored searchable text may be stale; always rederive it.
		if err := upsert(ctx, tx, s.prepare(n)); err != nil {
			return 0, err
		}
		imported++
	}
	if err := tx.Commit(); err != nil {
		return 0, apperr.Storage("notestore: commit", err)
	}
	return imported, nil
}

// ExportDatafile writes every note, one JSON document per line, in
// insertion order.
func (s *Store) ExportDatafile(ctx context.Context, w io.Writer) (int, error) {
	var rows []noteRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+noteColumns+` FROM notes ORDER BY seq`); err != nil {
		return 0, apperr.Storage("notestore: export notes", err)
	}
	notes, err := toNotes(rows)
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, n := range notes {
		if err := enc.Encode(n); err != nil {
			return 0, fmt.Errorf("notestore: encode %s: %w", n.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, apperr.Storage("notestore: write datafile", err)
	}
	return len(notes), nil
}
