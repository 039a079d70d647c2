package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
	"github.com/voiceforge-labs/voiceforge-cli/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

// ==================== Store Creation Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "voiceforge.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	assert.NoError(t, store.db.Ping())
}

func TestMigrations_Idempotent(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	require.NoError(t, store.db.QueryRow(
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

// ==================== Fragment Store Tests ====================

func TestFragmentStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and retrieve fragments", func(t *testing.T) {
		store := setupTestStore(t)
		fragments := store.FragmentStore()

		batch := []domain.Fragment{
			{ID: "frag-1", Content: "First paragraph.", SourceURI: "/kb/doc.txt"},
			{ID: "frag-2", Content: "Second paragraph.", SourceURI: "/kb/doc.txt"},
		}
		require.NoError(t, fragments.SaveFragments(ctx, batch))

		got, err := fragments.GetFragment(ctx, "frag-1")
		require.NoError(t, err)
		assert.Equal(t, "First paragraph.", got.Content)
		assert.Equal(t, "/kb/doc.txt", got.SourceURI)
		assert.False(t, got.CreatedAt.IsZero())

		count, err := fragments.CountFragments(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		store := setupTestStore(t)
		require.NoError(t, store.FragmentStore().SaveFragments(ctx, nil))

		count, err := store.FragmentStore().CountFragments(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("missing fragment is not found", func(t *testing.T) {
		store := setupTestStore(t)
		_, err := store.FragmentStore().GetFragment(ctx, "absent")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("explicit timestamps are preserved", func(t *testing.T) {
		store := setupTestStore(t)
		created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, store.FragmentStore().SaveFragments(ctx, []domain.Fragment{
			{ID: "frag-1", Content: "text", SourceURI: "/kb/a.txt", CreatedAt: created},
		}))

		got, err := store.FragmentStore().GetFragment(ctx, "frag-1")
		require.NoError(t, err)
		assert.True(t, got.CreatedAt.Equal(created))
	})
}

// ==================== Ledger Tests ====================

func TestProcessedLedgers(t *testing.T) {
	ctx := context.Background()

	t.Run("add and check", func(t *testing.T) {
		store := setupTestStore(t)
		ledger := store.IngestLedger()

		ok, err := ledger.Contains(ctx, "/kb/doc.txt")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, ledger.Add(ctx, "/kb/doc.txt"))

		ok, err = ledger.Contains(ctx, "/kb/doc.txt")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("adding twice is harmless", func(t *testing.T) {
		store := setupTestStore(t)
		ledger := store.IngestLedger()

		require.NoError(t, ledger.Add(ctx, "/kb/doc.txt"))
		require.NoError(t, ledger.Add(ctx, "/kb/doc.txt"))

		uris, err := ledger.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"/kb/doc.txt"}, uris)
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		store := setupTestStore(t)
		ledger := store.TranscriptLedger()

		require.NoError(t, ledger.Add(ctx, "/calls/z.txt", "/calls/a.txt"))
		require.NoError(t, ledger.Add(ctx, "/calls/m.txt"))

		uris, err := ledger.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"/calls/z.txt", "/calls/a.txt", "/calls/m.txt"}, uris)
	})

	t.Run("ledgers are independent", func(t *testing.T) {
		store := setupTestStore(t)

		require.NoError(t, store.IngestLedger().Add(ctx, "/kb/doc.txt"))

		ok, err := store.TranscriptLedger().Contains(ctx, "/kb/doc.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// ==================== KV Store Tests ====================

func TestKVStore(t *testing.T) {
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		store := setupTestStore(t)
		kv := store.KVStore()

		require.NoError(t, kv.Set(ctx, driven.KeyLastUpdated, "2026-03-01T12:00:00Z"))

		value, err := kv.Get(ctx, driven.KeyLastUpdated)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-01T12:00:00Z", value)
	})

	t.Run("set replaces previous value", func(t *testing.T) {
		store := setupTestStore(t)
		kv := store.KVStore()

		require.NoError(t, kv.Set(ctx, "marker", "one"))
		require.NoError(t, kv.Set(ctx, "marker", "two"))

		value, err := kv.Get(ctx, "marker")
		require.NoError(t, err)
		assert.Equal(t, "two", value)
	})

	t.Run("missing key is not found", func(t *testing.T) {
		store := setupTestStore(t)
		_, err := store.KVStore().Get(ctx, "absent")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
