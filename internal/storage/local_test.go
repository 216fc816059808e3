package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreContentAddressed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "uploads/")
	require.NoError(t, err)

	data := []byte("jpeg bytes")
	ref, created, err := store.Save(ctx, data)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "/uploads/"+ObjectName(data), ref)

	again, created, err := store.Save(ctx, data)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, ref, again)

	stored, err := os.ReadFile(filepath.Join(dir, ObjectName(data)))
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	other, _, err := store.Save(ctx, []byte("other bytes"))
	require.NoError(t, err)
	assert.NotEqual(t, ref, other)
}

func TestLocalStoreDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	ref, _, err := store.Save(ctx, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, ObjectName([]byte("x"))))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Delete(ctx, ref))

	assert.ErrorIs(t, store.Delete(ctx, "/uploads/../etc/passwd"), ErrInvalidRef)
	assert.ErrorIs(t, store.Delete(ctx, "/elsewhere/a.jpg"), ErrInvalidRef)
}
