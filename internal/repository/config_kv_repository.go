package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/salespilots/paylock/internal/storage"
)

// postgresKVStore реализует storage.KVStore поверх таблицы config_records.
// Каждая операция - один SQL-оператор, поэтому запись атомарна.
type postgresKVStore struct {
	db *sqlx.DB
}

// NewPostgresKVStore создает KV-хранилище записей конфигурации в PostgreSQL.
func NewPostgresKVStore(db *sqlx.DB) storage.KVStore {
	return &postgresKVStore{db: db}
}

// Get возвращает значение по ключу или storage.ErrKeyNotFound.
func (r *postgresKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM config_records WHERE key=$1`
	var value []byte

	err := r.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrKeyNotFound
		}
		log.Printf("[ConfigKVRepo] Ошибка чтения ключа '%s': %v", key, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение записи: %w", err)
	}
	return value, nil
}

// Put вставляет или заменяет значение по ключу.
func (r *postgresKVStore) Put(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO config_records (key, value, updated_at) VALUES ($1, $2, NOW())
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		log.Printf("[ConfigKVRepo] Ошибка записи ключа '%s': %v", key, err)
		return fmt.Errorf("ошибка выполнения запроса на сохранение записи: %w", err)
	}
	log.Printf("[ConfigKVRepo] Запись '%s' сохранена", key)
	return nil
}

// Delete удаляет значение по ключу. Отсутствие записи не является ошибкой.
func (r *postgresKVStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM config_records WHERE key=$1`

	res, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		log.Printf("[ConfigKVRepo] Ошибка удаления ключа '%s': %v", key, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление записи: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Printf("[ConfigKVRepo] Запись '%s' для удаления не найдена", key)
	}
	return nil
}
