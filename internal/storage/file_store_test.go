package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/salespilots/paylock/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	kv, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	runKVStoreContract(t, kv)
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	_, err := storage.NewFileStore("")
	require.Error(t, err)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "config/payments", []byte(`{"version":7}`)))

	second, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, "config/payments")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":7}`, string(got))

	// Ключ со слешем экранируется и не создаёт подкаталогов
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.IsDir(), e.Name())
	}

	info, err := os.Stat(filepath.Join(dir, "config%2Fpayments.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, kv.Put(ctx, "config/payments", []byte{byte('0' + n)}))
		}(i)
	}
	wg.Wait()

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	got, err := kv.Get(ctx, "config/payments")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFileStore_LockedByOtherProcess(t *testing.T) {
	dir := t.TempDir()
	kv, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	// Имитируем другой процесс, удерживающий блокировку файла
	other := flock.New(filepath.Join(dir, "config%2Fpayments.json.lock"))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = other.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err = kv.Put(ctx, "config/payments", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
