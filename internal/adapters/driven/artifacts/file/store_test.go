package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/domain"
)

func TestNewStore(t *testing.T) {
	t.Run("creates the artifact directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "artifacts")

		store, err := NewStore(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, store.Dir())
		assert.DirExists(t, dir)
	})
}

func TestStore_Prompt(t *testing.T) {
	ctx := context.Background()

	t.Run("save and read back", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.SavePrompt(ctx, "You are a helpful voice agent."))

		prompt, err := store.CurrentPrompt(ctx)
		require.NoError(t, err)
		assert.Equal(t, "You are a helpful voice agent.", prompt)
	})

	t.Run("absent prompt is not found", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		_, err = store.CurrentPrompt(ctx)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("save overwrites wholesale", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.SavePrompt(ctx, "first version"))
		require.NoError(t, store.SavePrompt(ctx, "second version"))

		prompt, err := store.CurrentPrompt(ctx)
		require.NoError(t, err)
		assert.Equal(t, "second version", prompt)
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewStore(dir)
		require.NoError(t, err)

		require.NoError(t, store.SavePrompt(ctx, "content"))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "current_prompt.md", entries[0].Name())
	})
}

func TestStore_FirstMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("save and read back", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.SaveFirstMessage(ctx, "Hi, thanks for calling!"))

		msg, err := store.CurrentFirstMessage(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Hi, thanks for calling!", msg)
	})

	t.Run("absent message is not found", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		_, err = store.CurrentFirstMessage(ctx)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("slots are independent", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.SavePrompt(ctx, "the prompt"))

		_, err = store.CurrentFirstMessage(ctx)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
