package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("2024-03-01/tasks.csv", []byte("title\nEssay\n"))
	require.NoError(t, err)
	require.Equal(t, "2024-03-01/tasks.csv", name)

	f, err := store.Open(name)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Equal(t, "title\nEssay\n", string(body))

	require.NoError(t, store.Delete(name))
	require.NoError(t, store.Delete(name))
	_, err = store.Open(name)
	require.Error(t, err)
}

func TestLocalStorageSaveStream(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveStream("data.json", strings.NewReader(`{"tasks":[]}`))
	require.NoError(t, err)
	raw, err := os.ReadFile(filepath.Join(store.Dir(), "data.json"))
	require.NoError(t, err)
	require.Equal(t, `{"tasks":[]}`, string(raw))
}

func TestLocalStorageRejectsEscapingNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../outside.csv", "/etc/passwd", ""} {
		_, err := store.Save(name, []byte("x"))
		require.ErrorIs(t, err, ErrOutsideBase, name)
	}
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("old/tasks.pdf", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("fresh.csv", []byte("new"))
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(store.Dir(), "old", "tasks.pdf"), past, past))

	deleted, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old/tasks.pdf"}, deleted)

	_, err = os.Stat(filepath.Join(store.Dir(), "fresh.csv"))
	require.NoError(t, err)
}
