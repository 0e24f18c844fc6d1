package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	tokenDirPerm      = 0o700
	tokenFilePerm     = 0o600
	tokenLockTimeout  = 5 * time.Second
	tokenLockInterval = 50 * time.Millisecond
)

// errNoToken возвращается, если вход ещё не выполнялся.
var errNoToken = errors.New("токен не найден, выполните 'paylockctl login'")

// tokenStore хранит JWT токен сессии в файле.
// Доступ из нескольких процессов сериализуется блокировкой файла <path>.lock.
type tokenStore struct {
	path string
}

func newTokenStore(path string) *tokenStore {
	return &tokenStore{path: path}
}

// Load читает сохранённый токен.
func (s *tokenStore) Load(ctx context.Context) (string, error) {
	var token string
	err := s.withLock(ctx, true, func() error {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return errNoToken
			}
			return fmt.Errorf("ошибка чтения файла токена: %w", err)
		}
		token = strings.TrimSpace(string(data))
		if token == "" {
			return errNoToken
		}
		return nil
	})
	return token, err
}

// Save атомарно записывает токен, доступный только владельцу.
func (s *tokenStore) Save(ctx context.Context, token string) error {
	return s.withLock(ctx, false, func() error {
		tmp := s.path + ".tmp"
		if err := os.WriteFile(tmp, []byte(token+"\n"), tokenFilePerm); err != nil {
			return fmt.Errorf("ошибка записи файла токена: %w", err)
		}
		if err := os.Rename(tmp, s.path); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("ошибка сохранения файла токена: %w", err)
		}
		slog.Debug("Токен сохранён", "path", s.path)
		return nil
	})
}

// Clear удаляет сохранённый токен.
func (s *tokenStore) Clear(ctx context.Context) error {
	return s.withLock(ctx, false, func() error {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("ошибка удаления файла токена: %w", err)
		}
		return nil
	})
}

// withLock выполняет fn под блокировкой файла токена: разделяемой для чтения, эксклюзивной для записи.
func (s *tokenStore) withLock(ctx context.Context, shared bool, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), tokenDirPerm); err != nil {
		return fmt.Errorf("ошибка создания каталога для токена: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, tokenLockTimeout)
	defer cancel()

	lockPath := s.path + ".lock"
	fileLock := flock.New(lockPath)

	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = fileLock.TryRLockContext(lockCtx, tokenLockInterval)
	} else {
		locked, err = fileLock.TryLockContext(lockCtx, tokenLockInterval)
	}
	if err != nil {
		return fmt.Errorf("не удалось заблокировать файл токена %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("файл токена %s занят другим процессом", lockPath)
	}
	defer func() {
		if errUnlock := fileLock.Unlock(); errUnlock != nil {
			slog.Error("Ошибка при снятии блокировки файла токена", "lockPath", lockPath, "error", errUnlock)
		}
	}()

	return fn()
}

// defaultTokenPath возвращает путь к файлу токена в пользовательском каталоге настроек.
func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "paylock", "token")
}
