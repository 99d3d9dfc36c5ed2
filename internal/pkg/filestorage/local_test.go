package filestorage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniadmin/internal/pkg/filestorage"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := filestorage.NewLocalStorage(dir, "/media/")
	require.NoError(t, err)

	key, err := store.Save(context.Background(), "syllabi/2025/01/31", "Outline.PDF", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "syllabi/2025/01/31/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.Equal(t, "/media/"+key, store.URL(key))

	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(content))

	require.NoError(t, store.Delete(context.Background(), key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(context.Background(), key))
}

func TestLocalStorage_DeleteStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	t.Cleanup(func() { _ = os.Remove(outside) })

	store, err := filestorage.NewLocalStorage(root, "/media")
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "../keep.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err, "file outside the storage root must survive")

	assert.Error(t, store.Delete(context.Background(), ""))
}
