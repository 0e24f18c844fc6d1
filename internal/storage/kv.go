package storage

import (
	"context"
	"errors"
)

// KVStore - обобщённое хранилище ключ-значение для записей конфигурации.
// Put и Delete атомарны относительно одного ключа: Get никогда не видит частичную запись.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Кастомные ошибки хранилища.
var (
	ErrKeyNotFound    = errors.New("ключ не найден в хранилище")
	ErrObjectNotFound = errors.New("объект не найден в хранилище")
)
