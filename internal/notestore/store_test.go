package notestore

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
	"github.com/starford/inkpad/internal/parser"
)

// fixedClock ticks one millisecond per call so timestamps are distinct
// unless a test pins them.
func fixedClock() func() time.Time {
	var ms atomic.Int64
	ms.Store(1_700_000_000_000)
	return func() time.Time { return time.UnixMilli(ms.Add(1)) }
}

func testStore(t *testing.T) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "inkpad-test-*.db")
	require.NoError(t, err)
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := Open(f.Name(), WithClock(fixedClock()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func add(t *testing.T, s *Store, text string, mutate func(n *models.Note)) *models.Note {
	t.Helper()
	n := models.FromText(text, s.now())
	if mutate != nil {
		mutate(n)
	}
	saved, err := s.AddOrUpdate(context.Background(), n)
	require.NoError(t, err)
	return saved
}

func ids(notes []*models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestSchemaCreation(t *testing.T) {
	s := testStore(t)
	var count int
	require.NoError(t, s.db.Get(&count, `SELECT count(*) FROM notes`))
	assert.Zero(t, count)
}

func TestAddOrUpdate_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	in := models.FromText("# Title\nBuy **milk** today", time.UnixMilli(1000))
	in.Category = "Home"
	in.Starred = true
	in.SetHashTags([]string{"shopping", "weekly"})

	saved, err := s.AddOrUpdate(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Empty(t, in.ID, "input must not be mutated")

	got, err := s.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in.FullText, got.FullText)
	assert.Equal(t, "Home", got.Category)
	assert.True(t, got.Starred)
	assert.False(t, got.Archived)
	assert.Equal(t, []string{"shopping", "weekly"}, got.HashTags)
	assert.Equal(t, parser.StripMarkdown(in.FullText), got.SearchableText)
	assert.Equal(t, int64(1000), got.CreatedAt)
}

func TestAddOrUpdate_ReplacesAndKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	n := add(t, s, "first", nil)

	n.Update("second", time.UnixMilli(n.CreatedAt+5000))
	n.CreatedAt = 1
	updated, err := s.AddOrUpdate(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, "second", updated.FullText)
	assert.Equal(t, "second", updated.SearchableText)

	got, _ := s.FindByID(ctx, n.ID)
	assert.NotEqual(t, int64(1), got.CreatedAt)
	assert.GreaterOrEqual(t, got.LastUpdatedAt, got.CreatedAt)

	count, _ := s.CountAll(ctx)
	assert.Equal(t, 1, count)
}

func TestAddOrUpdate_ReplaceClampsUpdatedAtToStoredCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	n := add(t, s, "first", func(n *models.Note) {
		n.CreatedAt = 5000
		n.LastUpdatedAt = 5000
	})

	replacement := n.Clone()
	replacement.CreatedAt = 10
	replacement.LastUpdatedAt = 10
	saved, err := s.AddOrUpdate(ctx, replacement)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), saved.CreatedAt)
	assert.Equal(t, int64(5000), saved.LastUpdatedAt)

	got, err := s.FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.LastUpdatedAt, got.CreatedAt)
}

func TestAddOrUpdate_StaleSearchableTextIsRederived(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	n := models.FromText("fresh *words*", s.now())
	n.SearchableText = "stale"

	saved, err := s.AddOrUpdate(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, "fresh words", saved.SearchableText)
}

func TestFindByID_Missing(t *testing.T) {
	got, err := testStore(t).FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestArchivedExclusion(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	live := add(t, s, "live", func(n *models.Note) { n.Category = "A"; n.Starred = true })
	gone := add(t, s, "gone", func(n *models.Note) { n.Category = "A"; n.Starred = true; n.Archived = true })

	for _, scope := range []models.Scope{models.Everything(), models.Starred(), models.InCategory("A")} {
		notes, err := s.Find(ctx, scope, models.SortUpdatedDesc, "")
		require.NoError(t, err)
		assert.Equal(t, []string{live.ID}, ids(notes), scope.String())
	}
	archived, err := s.FindByArchived(ctx, models.SortUpdatedDesc, "")
	require.NoError(t, err)
	assert.Equal(t, []string{gone.ID}, ids(archived))
}

func TestCountConsistency(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	add(t, s, "a", nil)
	add(t, s, "b", func(n *models.Note) { n.Starred = true })
	add(t, s, "c", func(n *models.Note) { n.Category = "Work" })
	add(t, s, "d", func(n *models.Note) { n.Category = "Work"; n.Archived = true })
	add(t, s, "e", func(n *models.Note) { n.Starred = true; n.Archived = true })

	scopes := []models.Scope{models.Everything(), models.Starred(), models.Archived(), models.InCategory("Work"), models.InCategory("none")}
	for _, scope := range scopes {
		for _, sorting := range []models.Sorting{models.SortTitleAsc, models.SortCreatedDesc} {
			notes, err := s.Find(ctx, scope, sorting, "")
			require.NoError(t, err)
			count, err := s.Count(ctx, scope)
			require.NoError(t, err)
			assert.Equal(t, len(notes), count, scope.String())
		}
	}

	all, _ := s.CountAll(ctx)
	starred, _ := s.CountByStarred(ctx)
	archived, _ := s.CountByArchived(ctx)
	work, _ := s.CountByCategory(ctx, "Work")
	assert.Equal(t, 3, all)
	assert.Equal(t, 1, starred)
	assert.Equal(t, 2, archived)
	assert.Equal(t, 1, work)
}

func TestFind_NoScope(t *testing.T) {
	_, err := testStore(t).Find(context.Background(), models.Scope{}, models.SortTitleAsc, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidScope)
}

func TestKeywordFilter(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	n := add(t, s, "Buy **milk** today", nil)
	add(t, s, "unrelated", nil)

	hit, err := s.FindAll(ctx, models.SortUpdatedDesc, "milk")
	require.NoError(t, err)
	assert.Equal(t, []string{n.ID}, ids(hit))

	hit, err = s.FindAll(ctx, models.SortUpdatedDesc, "MILK TO")
	require.NoError(t, err)
	assert.Equal(t, []string{n.ID}, ids(hit), "match is case-insensitive over stripped text")

	miss, err := s.FindAll(ctx, models.SortUpdatedDesc, "bread")
	require.NoError(t, err)
	assert.Empty(t, miss)

	miss, err = s.FindAll(ctx, models.SortUpdatedDesc, "**")
	require.NoError(t, err)
	assert.Empty(t, miss, "markup is not searchable")
}

func TestSorting(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	b := add(t, s, "banana", func(n *models.Note) { n.CreatedAt, n.LastUpdatedAt = 100, 300 })
	a := add(t, s, "Apple", func(n *models.Note) { n.CreatedAt, n.LastUpdatedAt = 200, 200 })
	c := add(t, s, "cherry", func(n *models.Note) { n.CreatedAt, n.LastUpdatedAt = 300, 100 })

	cases := map[models.Sorting][]string{
		models.SortTitleAsc:    {a.ID, b.ID, c.ID},
		models.SortTitleDesc:   {c.ID, b.ID, a.ID},
		models.SortUpdatedAsc:  {c.ID, a.ID, b.ID},
		models.SortUpdatedDesc: {b.ID, a.ID, c.ID},
		models.SortCreatedAsc:  {b.ID, a.ID, c.ID},
		models.SortCreatedDesc: {c.ID, a.ID, b.ID},
	}
	for sorting, want := range cases {
		notes, err := s.FindAll(ctx, sorting, "")
		require.NoError(t, err)
		assert.Equal(t, want, ids(notes), sorting.String())
	}
}

func TestSortStability(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	var want []string
	for _, text := range []string{"one", "two", "three", "four"} {
		n := add(t, s, text, func(n *models.Note) { n.CreatedAt, n.LastUpdatedAt = 500, 500 })
		want = append(want, n.ID)
	}

	first, err := s.FindAll(ctx, models.SortUpdatedAsc, "")
	require.NoError(t, err)
	second, err := s.FindAll(ctx, models.SortUpdatedAsc, "")
	require.NoError(t, err)
	assert.Equal(t, want, ids(first), "ties keep insertion order")
	assert.Equal(t, ids(first), ids(second))

	desc, err := s.FindAll(ctx, models.SortUpdatedDesc, "")
	require.NoError(t, err)
	assert.Equal(t, want, ids(desc))
}

func TestRemoveByID(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	n := add(t, s, "bye", nil)

	removed, err := s.RemoveByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "bye", removed.FullText)

	got, _ := s.FindByID(ctx, n.ID)
	assert.Nil(t, got)

	_, err = s.RemoveByID(ctx, n.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveAllAndArchived(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	add(t, s, "a", nil)
	add(t, s, "b", func(n *models.Note) { n.Archived = true })

	n, err := s.RemoveByArchived(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	count, _ := s.CountByArchived(ctx)
	assert.Zero(t, count)

	n, err = s.RemoveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	count, _ = s.CountAll(ctx)
	assert.Zero(t, count)
}

func TestArchiveOperations(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	a := add(t, s, "a", nil)
	b := add(t, s, "b", func(n *models.Note) { n.Starred = true })
	c := add(t, s, "c", func(n *models.Note) { n.Category = "Work" })

	require.NoError(t, s.ArchiveByID(ctx, a.ID))
	got, _ := s.FindByID(ctx, a.ID)
	assert.True(t, got.Archived)
	assert.GreaterOrEqual(t, got.LastUpdatedAt, a.LastUpdatedAt)

	require.NoError(t, s.UnarchiveByID(ctx, a.ID))
	assert.ErrorIs(t, s.ArchiveByID(ctx, "missing"), apperr.ErrNotFound)

	n, err := s.ArchiveByStarred(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, _ = s.FindByID(ctx, b.ID)
	assert.True(t, got.Archived)

	n, err = s.ArchiveByCategory(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, _ = s.FindByID(ctx, c.ID)
	assert.True(t, got.Archived)

	n, err = s.UnarchiveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.ArchiveByEverything(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	count, _ := s.CountAll(ctx)
	assert.Zero(t, count)
}

func TestRenameCategory(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	n1 := add(t, s, "n1", func(n *models.Note) { n.Category = "A" })
	n2 := add(t, s, "n2", func(n *models.Note) { n.Category = "A"; n.Archived = true })
	add(t, s, "other", func(n *models.Note) { n.Category = "C" })

	changed, err := s.RenameCategory(ctx, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	for _, id := range []string{n1.ID, n2.ID} {
		got, _ := s.FindByID(ctx, id)
		assert.Equal(t, "B", got.Category)
	}
	left, _ := s.CountByCategory(ctx, "A")
	assert.Zero(t, left)
}

func TestClearAndRestoreCategory(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	n1 := add(t, s, "n1", func(n *models.Note) { n.Category = "A" })
	n2 := add(t, s, "n2", func(n *models.Note) { n.Category = "A"; n.Archived = true })

	members, err := s.ClearCategory(ctx, "A", true)
	require.NoError(t, err)
	require.Len(t, members, 2)

	got, _ := s.FindByID(ctx, n1.ID)
	assert.Empty(t, got.Category)
	assert.True(t, got.Archived)

	require.NoError(t, s.RestoreCategory(ctx, "A", members))
	got, _ = s.FindByID(ctx, n1.ID)
	assert.Equal(t, "A", got.Category)
	assert.False(t, got.Archived)
	assert.Equal(t, n1.LastUpdatedAt, got.LastUpdatedAt)
	got, _ = s.FindByID(ctx, n2.ID)
	assert.True(t, got.Archived)
}

func TestClearCategory_WithoutArchive(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	n1 := add(t, s, "n1", func(n *models.Note) { n.Category = "A" })

	_, err := s.ClearCategory(ctx, "A", false)
	require.NoError(t, err)
	got, _ := s.FindByID(ctx, n1.ID)
	assert.Empty(t, got.Category)
	assert.False(t, got.Archived)
}
