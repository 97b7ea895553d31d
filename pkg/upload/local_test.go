package upload_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmpanozzoz/tachyon-api/pkg/upload"
)

func TestLocalStorage(t *testing.T) {
	t.Parallel()

	t.Run("save and read back", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		storage, err := upload.NewLocalStorage(dir, "/files/")
		require.NoError(t, err)

		f, release := bindFile(t, "avatar.png", pngHeader)
		defer release()

		stored, err := storage.Save(context.Background(), f, "avatars/user-1.png")
		require.NoError(t, err)
		assert.Equal(t, "avatar.png", stored.Filename)
		assert.Equal(t, int64(len(pngHeader)), stored.Size)
		assert.Equal(t, "image/png", stored.MIMEType)
		assert.Equal(t, ".png", stored.Extension)
		assert.Equal(t, "avatars/user-1.png", stored.RelativePath)

		content, err := os.ReadFile(filepath.Join(dir, "avatars", "user-1.png"))
		require.NoError(t, err)
		assert.Equal(t, pngHeader, content)

		assert.True(t, storage.Exists(context.Background(), "avatars/user-1.png"))
		assert.Equal(t, "/files/avatars/user-1.png", storage.URL(stored.RelativePath))
	})

	t.Run("rejects traversal outside the base directory", func(t *testing.T) {
		t.Parallel()

		storage, err := upload.NewLocalStorage(t.TempDir(), "/files/")
		require.NoError(t, err)

		f, release := bindFile(t, "evil.txt", []byte("x"))
		defer release()

		_, err = storage.Save(context.Background(), f, "../outside.txt")
		assert.ErrorIs(t, err, upload.ErrInvalidPath)

		assert.ErrorIs(t, storage.Delete(context.Background(), "../outside.txt"), upload.ErrInvalidPath)
		assert.False(t, storage.Exists(context.Background(), "../outside.txt"))
	})

	t.Run("delete removes the file", func(t *testing.T) {
		t.Parallel()

		storage, err := upload.NewLocalStorage(t.TempDir(), "")
		require.NoError(t, err)

		f, release := bindFile(t, "doc.txt", []byte("hello"))
		defer release()

		_, err = storage.Save(context.Background(), f, "docs/doc.txt")
		require.NoError(t, err)

		require.NoError(t, storage.Delete(context.Background(), "docs/doc.txt"))
		assert.False(t, storage.Exists(context.Background(), "docs/doc.txt"))
	})

	t.Run("deleting a missing file fails", func(t *testing.T) {
		t.Parallel()

		storage, err := upload.NewLocalStorage(t.TempDir(), "")
		require.NoError(t, err)

		assert.ErrorIs(t, storage.Delete(context.Background(), "nope.txt"), upload.ErrFileNotFound)
	})

	t.Run("empty base directory rejected", func(t *testing.T) {
		t.Parallel()

		_, err := upload.NewLocalStorage("", "")
		assert.ErrorIs(t, err, upload.ErrInvalidConfig)
	})

	t.Run("cancelled context aborts the save", func(t *testing.T) {
		t.Parallel()

		storage, err := upload.NewLocalStorage(t.TempDir(), "")
		require.NoError(t, err)

		f, release := bindFile(t, "doc.txt", []byte("hello"))
		defer release()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = storage.Save(ctx, f, "docs/doc.txt")
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, storage.Exists(context.Background(), "docs/doc.txt"))
	})
}
