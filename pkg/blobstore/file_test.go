package blobstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreAbsent(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "snapshot.bin"))

	data, ok, err := store.Download(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestFileStoreUploadReplaces(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "snapshot.bin"))
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, []byte("first")))
	require.NoError(t, store.Upload(ctx, []byte("second")))

	data, ok, err := store.Download(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("second"), data)
}
