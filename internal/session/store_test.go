package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveAndGetRoundtrip(t *testing.T) {
	store := newStore(t)

	err := store.Save(&domain.Session{
		ID: "chat1",
		Messages: []domain.Message{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi"},
		},
	})
	require.NoError(t, err)

	got, err := store.Get("chat1")
	require.NoError(t, err)
	assert.Equal(t, "chat1", got.ID)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestGetMissingSession(t *testing.T) {
	store := newStore(t)
	_, err := store.Get("nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSaveRejectsEmptyID(t *testing.T) {
	store := newStore(t)
	assert.Error(t, store.Save(&domain.Session{}))
}

func TestAppendCreatesAndExtends(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Append("chat1", domain.Message{Role: "user", Content: "first"}))
	require.NoError(t, store.Append("chat1",
		domain.Message{Role: "assistant", Content: "second"},
		domain.Message{Role: "user", Content: "third"},
	))

	got, err := store.Get("chat1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "first", got.Messages[0].Content)
	assert.Equal(t, "third", got.Messages[2].Content)
}

func TestDelete(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Append("chat1", domain.Message{Role: "user", Content: "hi"}))

	require.NoError(t, store.Delete("chat1"))
	_, err := store.Get("chat1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete("chat1"), domain.ErrSessionNotFound)
}

func TestList(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Append("alpha", domain.Message{Role: "user", Content: "a"}))
	require.NoError(t, store.Append("beta", domain.Message{Role: "user", Content: "b"}))

	ids, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, ids)
}

func TestIDSanitization(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	// path separators in an id must not escape the store directory
	require.NoError(t, store.Append("../evil/../../id", domain.Message{Role: "user", Content: "x"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
	assert.NotContains(t, entries[0].Name(), "/")
}
