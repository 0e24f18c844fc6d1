package storage

import (
	"context"
	"sync"
)

// MemoryStore - KVStore в памяти процесса. Используется в тестах и для локального запуска.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// Убедимся, что MemoryStore удовлетворяет интерфейсу KVStore.
var _ KVStore = (*MemoryStore)(nil)

// NewMemoryStore создает пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get возвращает копию значения по ключу.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put сохраняет копию значения.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete удаляет ключ. Удаление отсутствующего ключа не является ошибкой.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
