package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Store(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewLocalStoreWithFs(fs, "/files")
	ctx := context.Background()

	t.Run("writes content and returns checksum", func(t *testing.T) {
		content := "procedure body"
		info, err := store.Store(ctx, "proc/L3-PROC-2024-0001-v1.0.txt", strings.NewReader(content))
		require.NoError(t, err)

		assert.Equal(t, "/files/proc/L3-PROC-2024-0001-v1.0.txt", info.Path)
		assert.EqualValues(t, len(content), info.Size)

		sum := sha256.Sum256([]byte(content))
		assert.Equal(t, hex.EncodeToString(sum[:]), info.Checksum)

		stored, err := afero.ReadFile(fs, info.Path)
		require.NoError(t, err)
		assert.Equal(t, content, string(stored))
	})

	t.Run("path traversal stays under the root", func(t *testing.T) {
		info, err := store.Store(ctx, "../../etc/passwd", strings.NewReader("x"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(info.Path, "/files/"), "got %s", info.Path)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.Store(cancelled, "never.txt", strings.NewReader("x"))
		require.Error(t, err)
	})
}
