// Package models defines the domain types for Inkpad.
package models

import (
	"slices"
	"strings"
	"time"

	"github.com/starford/inkpad/internal/parser"
)

// Note is the persisted note document. The JSON form is the on-disk
// document format, so field names must not change.
type Note struct {
	ID             string   `json:"_id,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	FullText       string   `json:"fullText"`
	SearchableText string   `json:"searchableText"`
	HashTags       []string `json:"hashTags"`
	Category       string   `json:"category,omitempty"`
	Starred        bool     `json:"starred"`
	Archived       bool     `json:"archived"`
	LastUpdatedAt  int64    `json:"lastUpdatedAt"`
	CreatedAt      int64    `json:"createdAt"`
}

// NewNote returns a blank, unsaved note stamped with now.
func NewNote(now time.Time) *Note {
	ms := now.UnixMilli()
	return &Note{
		HashTags:      []string{},
		CreatedAt:     ms,
		LastUpdatedAt: ms,
	}
}

// FromText builds an unsaved note from raw note text.
func FromText(text string, now time.Time) *Note {
	n := NewNote(now)
	n.Update(text, now)
	return n
}

// Update replaces the content and recomputes every derived field.
func (n *Note) Update(text string, now time.Time) {
	n.FullText = text
	n.Title = parser.Title(text)
	n.Derive()
	n.Touch(now)
}

// Derive recomputes description and searchable text from FullText. The
// title is only derived when it has not been set.
func (n *Note) Derive() {
	if n.Title == "" {
		n.Title = parser.Title(n.FullText)
	}
	n.Description = parser.Description(n.FullText)
	n.SearchableText = parser.StripMarkdown(n.FullText)
	if n.HashTags == nil {
		n.HashTags = []string{}
	}
}

// Touch bumps LastUpdatedAt, never letting it fall behind CreatedAt.
func (n *Note) Touch(now time.Time) {
	ms := now.UnixMilli()
	if ms < n.CreatedAt {
		ms = n.CreatedAt
	}
	n.LastUpdatedAt = ms
}

// SetHashTags assigns the tag set, dropping blanks and duplicates while
// keeping first-seen order.
func (n *Note) SetHashTags(tags []string) {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	n.HashTags = out
}

// Clone returns a deep copy.
func (n *Note) Clone() *Note {
	c := *n
	c.HashTags = slices.Clone(n.HashTags)
	if c.HashTags == nil {
		c.HashTags = []string{}
	}
	return &c
}

// Duplicate returns an unsaved copy with fresh timestamps.
func (n *Note) Duplicate(now time.Time) *Note {
	c := n.Clone()
	c.ID = ""
	c.CreatedAt = now.UnixMilli()
	c.LastUpdatedAt = c.CreatedAt
	return c
}

// RawText serializes the note for export.
func (n *Note) RawText() string {
	return n.FullText
}

// UpdatedAt returns LastUpdatedAt as a time.Time.
func (n *Note) UpdatedAt() time.Time {
	return time.UnixMilli(n.LastUpdatedAt)
}
