package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	assert.Equal(t, "", backend.Path())
	assert.False(t, backend.IsClosed())

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestOpenBackend_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "qa_db")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, backend.Path())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not_a_dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	backend, err := OpenBackend(file, false)
	assert.Error(t, err)
	assert.Nil(t, backend)
}

func TestNewEntryRepository_EmptyCollection(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	repo, err := NewEntryRepository(backend, "")
	assert.Error(t, err)
	assert.Nil(t, repo)
}
