package noteservice

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
)

const workDatafile = `{"_id":"a1","fullText":"Standup\nnotes","hashTags":[],"category":"Work","starred":false,"archived":false,"createdAt":1000,"lastUpdatedAt":1000}
{"_id":"b2","fullText":"Retro","hashTags":[],"category":"Work","starred":false,"archived":false,"createdAt":2000,"lastUpdatedAt":2000}
{"_id":"c3","fullText":"Groceries","hashTags":[],"category":"Home","starred":false,"archived":false,"createdAt":3000,"lastUpdatedAt":3000}
{"_id":"d4","fullText":"Loose","hashTags":[],"starred":false,"archived":false,"createdAt":4000,"lastUpdatedAt":4000}
`

func TestImportDatafile_RegistersCategories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "Home")

	n, err := f.svc.ImportDatafile(ctx, strings.NewReader(workDatafile))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	names, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "Work"}, names)

	count, err := f.svc.CountNotes(ctx, models.InCategory("Work"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// The imported category behaves like any other one.
	_, err = f.svc.MoveToCategory(ctx, "d4", "Work")
	require.NoError(t, err)
	require.NoError(t, f.svc.RemoveCategory(ctx, "Work", false))
	count, err = f.svc.CountNotes(ctx, models.InCategory("Work"))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportDatafile_RegistryFailureWritesNoNotes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.reg.failWrites = true

	_, err := f.svc.ImportDatafile(ctx, strings.NewReader(workDatafile))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrStorage))

	count, err := f.svc.CountNotes(ctx, models.Everything())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestExportDatafile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	_, err := src.svc.ImportDatafile(ctx, strings.NewReader(workDatafile))
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := src.svc.ExportDatafile(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	dst := newFixture(t)
	n, err = dst.svc.ImportDatafile(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	names, err := dst.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "Work"}, names)
}
