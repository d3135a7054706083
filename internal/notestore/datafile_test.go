package notestore

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/inkpad/internal/models"
)

const sampleDatafile = `{"_id":"a1","title":"Groceries","fullText":"Groceries\nmilk","searchableText":"stale","hashTags":["home"],"category":"Home","starred":true,"archived":false,"lastUpdatedAt":2000,"createdAt":1000}
{"_id":"b2","title":"Draft","fullText":"Draft","hashTags":[],"category":null,"starred":false,"archived":false,"lastUpdatedAt":1500,"createdAt":1500}
{"$$indexCreated":{"fieldName":"category"}}
{"_id":"a1","title":"Groceries","fullText":"Groceries\nmilk and eggs","hashTags":["home"],"category":"Home","starred":true,"archived":false,"lastUpdatedAt":3000,"createdAt":1000}
{"_id":"b2","$$deleted":true}

{"_id":"c3","title":"Old","fullText":"Old","hashTags":[],"starred":false,"archived":true,"lastUpdatedAt":900,"createdAt":800}
`

func TestImportDatafile(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	n, err := s.ImportDatafile(ctx, strings.NewReader(sampleDatafile))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	a, err := s.FindByID(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Groceries\nmilk and eggs", a.FullText, "last line wins")
	assert.Equal(t, "Groceries\nmilk and eggs", a.SearchableText)
	assert.Equal(t, "Home", a.Category)
	assert.Equal(t, int64(1000), a.CreatedAt)
	assert.Equal(t, int64(3000), a.LastUpdatedAt)
	assert.Equal(t, []string{"home"}, a.HashTags)

	b, err := s.FindByID(ctx, "b2")
	require.NoError(t, err)
	assert.Nil(t, b, "tombstoned documents are dropped")

	c, err := s.FindByID(ctx, "c3")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Archived)
	assert.Empty(t, c.Category)
}

func TestImportDatafile_BadLine(t *testing.T) {
	s := testStore(t)
	_, err := s.ImportDatafile(context.Background(), strings.NewReader("{not json}\n"))
	require.Error(t, err)

	count, _ := s.CountAll(context.Background())
	assert.Zero(t, count)
}

func TestExportDatafile(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	first := add(t, s, "first <b>", func(n *models.Note) { n.Category = "A" })
	second := add(t, s, "second", nil)

	var buf bytes.Buffer
	n, err := s.ExportDatafile(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"first <b>"`)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &doc))
	assert.Equal(t, second.ID, doc["_id"])
	assert.NotContains(t, doc, "category")

	// Exported files import back into an empty store unchanged.
	other := testStore(t)
	_, err = other.ImportDatafile(ctx, &buf)
	require.NoError(t, err)
	got, err := other.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestReadDatafile_ReaddedAfterTombstone(t *testing.T) {
	data := `{"_id":"a1","fullText":"one","hashTags":[],"createdAt":1,"lastUpdatedAt":1}
{"_id":"a1","$$deleted":true}
{"_id":"a1","fullText":"two","hashTags":[],"createdAt":1,"lastUpdatedAt":2}
`
	notes, err := ReadDatafile(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "two", notes[0].FullText)
}
