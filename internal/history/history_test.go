package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/site"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func finalizedReport(buildID string, populate func(*site.Report)) *site.Report {
	r := site.NewReport(buildID)
	if populate != nil {
		populate(r)
	}
	r.Finalize()
	return r
}

func TestSQLiteStore_RecordAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	report := finalizedReport("build-1", func(r *site.Report) {
		r.PagesRendered = 5
		r.PagesSkipped = 2
		r.AddIssue(site.IssueDanglingLink, site.SeverityWarning, "guide/setup", "unknown page")
	})
	require.NoError(t, store.Record(ctx, report))

	got, err := store.Get(ctx, "build-1")
	require.NoError(t, err)
	assert.Equal(t, "build-1", got.BuildID)
	assert.Equal(t, site.OutcomeWarning, got.Outcome)
	assert.Equal(t, 5, got.PagesRendered)
	assert.Equal(t, 2, got.PagesSkipped)
	assert.Equal(t, 1, got.IssueCount)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, site.IssueDanglingLink, got.Issues[0].Code)
}

func TestSQLiteStore_GetUnknownBuild(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "no-such-build")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestSQLiteStore_RecentNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"build-1", "build-2", "build-3"} {
		require.NoError(t, store.Record(ctx, finalizedReport(id, nil)))
	}

	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "build-3", records[0].BuildID)
	assert.Equal(t, "build-2", records[1].BuildID)
}

func TestSQLiteStore_DuplicateBuildIDRejected(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, finalizedReport("build-1", nil)))
	err := store.Record(ctx, finalizedReport("build-1", nil))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryHistory))
}
