package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	fileStorePerm      = 0o600
	fileStoreDirPerm   = 0o700
	fileLockRetryDelay = 50 * time.Millisecond
)

// FileStore - KVStore, хранящий каждый ключ в отдельном файле каталога.
// Запись выполняется через временный файл и rename; между процессами
// доступ сериализуется файловой блокировкой (flock) рядом с файлом значения.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// Убедимся, что FileStore удовлетворяет интерфейсу KVStore.
var _ KVStore = (*FileStore)(nil)

// NewFileStore создает файловое хранилище в каталоге dir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("не указан каталог файлового хранилища")
	}
	if err := os.MkdirAll(dir, fileStoreDirPerm); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога хранилища '%s': %w", dir, err)
	}
	log.Printf("[FileStore] Файловое хранилище инициализировано в '%s'", dir)
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

// Get читает значение под разделяемой блокировкой.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	fl := flock.New(path + ".lock")
	locked, err := fl.TryRLockContext(ctx, fileLockRetryDelay)
	if err != nil || !locked {
		return nil, fmt.Errorf("не удалось получить блокировку чтения '%s': %w", key, errOrCtx(ctx, err))
	}
	defer unlockFile(fl)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("ошибка чтения файла '%s': %w", path, err)
	}
	return data, nil
}

// Put атомарно заменяет значение под эксклюзивной блокировкой.
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	fl := flock.New(path + ".lock")
	locked, err := fl.TryLockContext(ctx, fileLockRetryDelay)
	if err != nil || !locked {
		return fmt.Errorf("не удалось получить блокировку записи '%s': %w", key, errOrCtx(ctx, err))
	}
	defer unlockFile(fl)

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := tmp.Name()
	// Удаляем временный файл, если до rename дело не дошло
	defer func() {
		if _, statErr := os.Stat(tmpPath); statErr == nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("ошибка записи временного файла: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("ошибка синхронизации временного файла: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия временного файла: %w", err)
	}
	if err = os.Chmod(tmpPath, fileStorePerm); err != nil {
		return fmt.Errorf("ошибка установки прав на файл: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("ошибка замены файла '%s': %w", path, err)
	}
	return nil
}

// Delete удаляет файл значения. Отсутствие файла не является ошибкой.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	fl := flock.New(path + ".lock")
	locked, err := fl.TryLockContext(ctx, fileLockRetryDelay)
	if err != nil || !locked {
		return fmt.Errorf("не удалось получить блокировку удаления '%s': %w", key, errOrCtx(ctx, err))
	}
	defer unlockFile(fl)

	if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка удаления файла '%s': %w", path, err)
	}
	return nil
}

func unlockFile(fl *flock.Flock) {
	if err := fl.Unlock(); err != nil {
		log.Printf("[FileStore] Ошибка снятия блокировки '%s': %v", fl.Path(), err)
	}
}

// errOrCtx возвращает err или, если блокировка не получена без ошибки, ошибку контекста.
func errOrCtx(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return errors.New("блокировка занята")
}
