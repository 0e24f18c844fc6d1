package storage

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisConfig содержит параметры подключения к Redis.
type RedisConfig struct {
	Addr      string // Адрес Redis (например, "localhost:6379")
	Password  string
	DB        int
	KeyPrefix string // Префикс ключей, например "paylock:"
}

// RedisStore реализует KVStore поверх Redis. SET/GET/DEL атомарны для одного ключа.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// Убедимся, что RedisStore удовлетворяет интерфейсу KVStore.
var _ KVStore = (*RedisStore)(nil)

// NewRedisStore подключается к Redis и проверяет соединение.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	log.Printf("Подключение к Redis %s...", cfg.Addr)

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Printf("Ошибка закрытия клиента Redis после неудачного пинга: %v", closeErr)
		}
		return nil, fmt.Errorf("ошибка проверки соединения с Redis (ping): %w", err)
	}

	log.Println("Подключение к Redis успешно установлено.")
	return NewRedisStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient оборачивает готовый клиент.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get возвращает значение по ключу.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		log.Printf("[Redis] Ошибка чтения ключа '%s': %v", key, err)
		return nil, fmt.Errorf("ошибка чтения из Redis: %w", err)
	}
	return value, nil
}

// Put сохраняет значение без срока жизни.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		log.Printf("[Redis] Ошибка записи ключа '%s': %v", key, err)
		return fmt.Errorf("ошибка записи в Redis: %w", err)
	}
	return nil
}

// Delete удаляет ключ. Отсутствие ключа не является ошибкой.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		log.Printf("[Redis] Ошибка удаления ключа '%s': %v", key, err)
		return fmt.Errorf("ошибка удаления из Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
