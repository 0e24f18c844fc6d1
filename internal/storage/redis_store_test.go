package storage_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salespilots/paylock/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	// Этот тест требует запущенного Redis
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("Пропуск теста: переменная окружения REDIS_ADDR не установлена")
	}

	kv, err := storage.NewRedisStore(context.Background(), storage.RedisConfig{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		KeyPrefix: "paylock-test:" + uuid.NewString() + ":",
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, kv.Close()) }()

	runKVStoreContract(t, kv)
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	kv, err := storage.NewRedisStore(ctx, storage.RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Nil(t, kv)
	assert.Contains(t, err.Error(), "ошибка проверки соединения с Redis (ping)")
}
