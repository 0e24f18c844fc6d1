package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/salespilots/paylock/internal/mocks"
	"github.com/salespilots/paylock/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPostgresDB подменяет подключение к БД на sqlmock.
func mockPostgresDB(t *testing.T) {
	t.Helper()
	original := newPostgresDB
	t.Cleanup(func() { newPostgresDB = original })

	newPostgresDB = func(_ context.Context, _ string) (*sqlx.DB, error) {
		mockDB, _, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		return sqlx.NewDb(mockDB, "sqlmock"), nil
	}
}

func mockMinioClient(t *testing.T, files storage.FileStorage, err error) {
	t.Helper()
	original := newMinioClient
	t.Cleanup(func() { newMinioClient = original })

	newMinioClient = func(_ context.Context, _ storage.MinioConfig) (storage.FileStorage, error) {
		return files, err
	}
}

func testConfig(backend string) *config {
	return &config{
		DatabaseDSN:  "dummy-dsn-for-mock",
		JWTSecret:    testJWTSecret,
		StoreBackend: backend,
		AuthAttempts: defaultAuthAttempts,
		AuthWindow:   defaultAuthWindow,
		MinioBucket:  defaultMinioBucket,
	}
}

func TestSetupDependencies(t *testing.T) {
	t.Run("Ошибка: Некорректный DatabaseDSN", func(t *testing.T) {
		cfg := testConfig(backendMemory)
		cfg.DatabaseDSN = "невалидный dsn"

		_, err := setupDependencies(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка инициализации БД")
	})

	t.Run("Хранилище в памяти без MinIO", func(t *testing.T) {
		mockPostgresDB(t)

		deps, err := setupDependencies(context.Background(), testConfig(backendMemory))
		require.NoError(t, err)
		require.NotNil(t, deps)
		defer deps.close()

		assert.NotNil(t, deps.db)
		assert.NotNil(t, deps.authHandler)
		assert.NotNil(t, deps.configHandler)
		assert.NotNil(t, deps.authenticator)
		assert.NotNil(t, deps.metrics)
	})

	t.Run("Хранилище в PostgreSQL", func(t *testing.T) {
		mockPostgresDB(t)

		deps, err := setupDependencies(context.Background(), testConfig(backendPostgres))
		require.NoError(t, err)
		defer deps.close()
		assert.NotNil(t, deps.configHandler)
	})

	t.Run("Файловое хранилище", func(t *testing.T) {
		mockPostgresDB(t)
		cfg := testConfig(backendFile)
		cfg.FileStoreDir = t.TempDir()

		deps, err := setupDependencies(context.Background(), cfg)
		require.NoError(t, err)
		defer deps.close()
		assert.NotNil(t, deps.configHandler)
	})

	t.Run("Ошибка: Redis недоступен", func(t *testing.T) {
		mockPostgresDB(t)
		cfg := testConfig(backendRedis)
		cfg.RedisAddr = "127.0.0.1:1"

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_, err := setupDependencies(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка инициализации Redis")
	})

	t.Run("Ошибка: Некорректный MinIO Endpoint", func(t *testing.T) {
		mockPostgresDB(t)
		mockMinioClient(t, nil, errors.New("invalid endpoint"))
		cfg := testConfig(backendMemory)
		cfg.MinioEndpoint = "invalid-endpoint:!!!"

		_, err := setupDependencies(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка инициализации клиента MinIO")
	})

	t.Run("С объектным хранилищем", func(t *testing.T) {
		mockPostgresDB(t)
		mockMinioClient(t, mocks.NewFileStorage(t), nil)
		cfg := testConfig(backendMemory)
		cfg.MinioEndpoint = "localhost:9000"

		deps, err := setupDependencies(context.Background(), cfg)
		require.NoError(t, err)
		defer deps.close()
		assert.NotNil(t, deps.configHandler)
	})
}

func TestDependenciesClose(t *testing.T) {
	var order []int
	deps := &dependencies{
		closers: []func() error{
			func() error { order = append(order, 1); return nil },
			func() error { order = append(order, 2); return errors.New("close failed") },
			func() error { order = append(order, 3); return nil },
		},
	}

	deps.close()
	deps.close() // Повторный вызов ничего не делает

	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestSetupRouter(t *testing.T) {
	mockPostgresDB(t)
	deps, err := setupDependencies(context.Background(), testConfig(backendMemory))
	require.NoError(t, err)
	defer deps.close()

	r := setupRouter(deps)
	require.NotNil(t, r)

	routes := []struct {
		method  string
		pattern string
	}{
		{http.MethodGet, "/ping"},
		{http.MethodGet, "/metrics"},
		{http.MethodPost, "/api/register"},
		{http.MethodPost, "/api/login"},
		{http.MethodGet, "/api/configs/{name}/"},
		{http.MethodPost, "/api/configs/{name}/save"},
		{http.MethodPost, "/api/configs/{name}/confirm"},
		{http.MethodPost, "/api/configs/{name}/unlock"},
		{http.MethodPost, "/api/configs/{name}/lock"},
		{http.MethodPost, "/api/configs/{name}/reset"},
		{http.MethodGet, "/api/configs/{name}/qr-image"},
		{http.MethodPost, "/api/configs/{name}/qr-image"},
	}
	for _, rt := range routes {
		assert.True(t, hasRoute(r, rt.method, rt.pattern), "нет маршрута %s %s", rt.method, rt.pattern)
	}

	t.Run("Ping", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "pong\n", rr.Body.String())
	})

	t.Run("Метрики", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Конфигурации требуют аутентификации", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/configs/payments/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

// Вспомогательная функция для проверки наличия маршрута.
func hasRoute(r chi.Router, method, pattern string) bool {
	found := false
	// Ошибка от chi.Walk используется только для прерывания обхода
	_ = chi.Walk(r, func(m, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if m == method && route == pattern {
			found = true
			return errors.New("found")
		}
		return nil
	})
	return found
}
