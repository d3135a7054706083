package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/inkpad/internal/parser"
)

func TestFromText_DerivesFields(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	n := FromText("# Groceries\nBuy **milk** today\nand bread", now)

	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "Buy milk today and bread", n.Description)
	assert.Equal(t, parser.StripMarkdown(n.FullText), n.SearchableText)
	assert.Equal(t, now.UnixMilli(), n.CreatedAt)
	assert.Equal(t, now.UnixMilli(), n.LastUpdatedAt)
	assert.False(t, n.Starred)
	assert.False(t, n.Archived)
	assert.Empty(t, n.ID)
	assert.NotNil(t, n.HashTags)
}

func TestUpdate_RecomputesDerivedFields(t *testing.T) {
	created := time.UnixMilli(1000)
	n := FromText("old title\nold body", created)

	n.Update("new title\n*new* body", time.UnixMilli(5000))
	assert.Equal(t, "new title", n.Title)
	assert.Equal(t, "new body", n.Description)
	assert.Equal(t, "new title\nnew body", n.SearchableText)
	assert.Equal(t, int64(1000), n.CreatedAt)
	assert.Equal(t, int64(5000), n.LastUpdatedAt)
}

func TestTouch_NeverBeforeCreated(t *testing.T) {
	n := NewNote(time.UnixMilli(5000))
	n.Touch(time.UnixMilli(10))
	assert.Equal(t, int64(5000), n.LastUpdatedAt)
}

func TestDerive_KeepsExplicitTitle(t *testing.T) {
	n := &Note{Title: "Explicit", FullText: "first line\nsecond"}
	n.Derive()
	assert.Equal(t, "Explicit", n.Title)
	assert.Equal(t, "second", n.Description)
}

func TestSetHashTags_DedupesInOrder(t *testing.T) {
	n := NewNote(time.Now())
	n.SetHashTags([]string{"b", " a ", "b", "", "c"})
	assert.Equal(t, []string{"b", "a", "c"}, n.HashTags)
}

func TestDuplicate(t *testing.T) {
	n := FromText("hello", time.UnixMilli(1000))
	n.ID = "abc"
	n.Category = "Work"
	n.Starred = true
	n.SetHashTags([]string{"x"})

	d := n.Duplicate(time.UnixMilli(9000))
	assert.Empty(t, d.ID)
	assert.Equal(t, n.FullText, d.FullText)
	assert.Equal(t, "Work", d.Category)
	assert.True(t, d.Starred)
	assert.Equal(t, int64(9000), d.CreatedAt)

	d.HashTags[0] = "changed"
	assert.Equal(t, "x", n.HashTags[0], "duplicate must not share tag storage")
}

func TestNote_DocumentFieldNames(t *testing.T) {
	n := FromText("hello", time.UnixMilli(1000))
	n.ID = "id1"
	n.Category = "Work"

	raw, err := json.Marshal(n)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, k := range []string{"_id", "title", "description", "fullText", "searchableText", "hashTags", "category", "starred", "archived", "lastUpdatedAt", "createdAt"} {
		assert.Contains(t, doc, k)
	}
}

func TestNote_NullCategoryDecodes(t *testing.T) {
	var n Note
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"x","fullText":"a","category":null}`), &n))
	assert.Equal(t, "", n.Category)
}
