package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducnd58233/dataset-cache/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)

	ops := []*domain.Operation{
		{Kind: domain.OpDownload, Source: "https://example.com/a.zip", Destination: "/tmp/a.zip", MIMEType: "application/zip", Succeeded: true, Message: "Download successful"},
		{Kind: domain.OpExtract, Source: "/tmp/a.zip", Destination: "/tmp/out", Succeeded: false, Message: "Invalid or corrupted archive file"},
	}
	for _, op := range ops {
		require.NoError(t, store.Record(op))
		assert.NotZero(t, op.ID)
		assert.False(t, op.CreatedAt.IsZero())
	}

	recent, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first
	assert.Equal(t, domain.OpExtract, recent[0].Kind)
	assert.Equal(t, domain.OpDownload, recent[1].Kind)
	assert.Equal(t, "application/zip", recent[1].MIMEType)
	assert.True(t, recent[1].Succeeded)
}

func TestRecent_Limit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(&domain.Operation{Kind: domain.OpCleanup, Succeeded: true}))
	}

	recent, err := store.Recent(3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestPruneOlderThan(t *testing.T) {
	store := newTestStore(t)

	old := &domain.Operation{
		Kind:      domain.OpDownload,
		Succeeded: true,
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	fresh := &domain.Operation{Kind: domain.OpDownload, Succeeded: true}
	require.NoError(t, store.Record(old))
	require.NoError(t, store.Record(fresh))

	pruned, err := store.PruneOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	recent, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, fresh.ID, recent[0].ID)
}
