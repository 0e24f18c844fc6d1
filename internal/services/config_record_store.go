package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/salespilots/paylock/internal/lock"
	"github.com/salespilots/paylock/internal/storage"
	"github.com/salespilots/paylock/models"
)

const configKeyPrefix = "config/"

// ConfigRecordStore реализует lock.RecordStore поверх любого KV-хранилища.
// Запись целиком кодируется в JSON и пишется одним Put.
type ConfigRecordStore struct {
	kv storage.KVStore
}

// Убедимся, что ConfigRecordStore удовлетворяет интерфейсу lock.RecordStore.
var _ lock.RecordStore = (*ConfigRecordStore)(nil)

// NewConfigRecordStore создает адаптер хранения записей конфигурации.
func NewConfigRecordStore(kv storage.KVStore) *ConfigRecordStore {
	return &ConfigRecordStore{kv: kv}
}

// Load читает запись по имени или возвращает lock.ErrRecordNotFound.
func (s *ConfigRecordStore) Load(ctx context.Context, name string) (*models.ConfigurationRecord, error) {
	data, err := s.kv.Get(ctx, configKeyPrefix+name)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, lock.ErrRecordNotFound
		}
		return nil, fmt.Errorf("ошибка чтения записи '%s': %w", name, err)
	}

	var rec models.ConfigurationRecord
	if err = json.Unmarshal(data, &rec); err != nil {
		log.Printf("[ConfigRecordStore] Повреждённая запись '%s': %v", name, err)
		return nil, fmt.Errorf("ошибка декодирования записи '%s': %w", name, err)
	}
	return &rec, nil
}

// Save записывает запись целиком.
func (s *ConfigRecordStore) Save(ctx context.Context, record *models.ConfigurationRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("ошибка кодирования записи '%s': %w", record.Name, err)
	}
	if err = s.kv.Put(ctx, configKeyPrefix+record.Name, data); err != nil {
		return fmt.Errorf("ошибка сохранения записи '%s': %w", record.Name, err)
	}
	return nil
}

// Delete удаляет запись.
func (s *ConfigRecordStore) Delete(ctx context.Context, name string) error {
	if err := s.kv.Delete(ctx, configKeyPrefix+name); err != nil {
		return fmt.Errorf("ошибка удаления записи '%s': %w", name, err)
	}
	return nil
}
