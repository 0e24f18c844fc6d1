package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/salespilots/paylock/internal/handlers"
	"github.com/salespilots/paylock/internal/lock"
	"github.com/salespilots/paylock/internal/metrics"
	appmiddleware "github.com/salespilots/paylock/internal/middleware"
	"github.com/salespilots/paylock/internal/repository"
	"github.com/salespilots/paylock/internal/services"
	"github.com/salespilots/paylock/internal/storage"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	redisKeyPrefix         = "paylock:"
)

// Подменяются в тестах.
var (
	newPostgresDB  = repository.NewPostgresDB
	newMinioClient = func(ctx context.Context, cfg storage.MinioConfig) (storage.FileStorage, error) {
		return storage.NewMinioClient(ctx, cfg)
	}
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db            *sqlx.DB
	closers       []func() error // Закрываются в обратном порядке
	authHandler   *handlers.AuthHandler
	configHandler *handlers.ConfigHandler
	authenticator func(http.Handler) http.Handler
	metrics       *metrics.Metrics
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера PayLock...")

	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setupDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer deps.close()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      setupRouter(deps),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if cfg.CertFile != "" {
			log.Printf("Запуск HTTPS-сервера на порту %s...", cfg.Port)
			serveErr <- server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
			return
		}
		log.Printf("ВНИМАНИЕ: TLS не настроен, запуск HTTP-сервера на порту %s", cfg.Port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Получен сигнал завершения, останавливаем сервер...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	log.Println("Сервер остановлен.")
	return nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(ctx context.Context, cfg *config) (*dependencies, error) {
	deps := &dependencies{}

	// 1. Подключение к БД (пользователи всегда хранятся в PostgreSQL)
	db, err := newPostgresDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}
	deps.db = db
	deps.closers = append(deps.closers, db.Close)

	// 2. Хранилище записей конфигурации
	kv, err := setupKVStore(ctx, cfg, deps)
	if err != nil {
		deps.close()
		return nil, err
	}

	// 3. Объектное хранилище изображений QR-кодов (необязательно)
	var images services.QRImageService
	if cfg.MinioEndpoint != "" {
		files, minioErr := newMinioClient(ctx, storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioUser,
			SecretAccessKey: cfg.MinioPassword,
			UseSSL:          cfg.MinioUseSSL,
			BucketName:      cfg.MinioBucket,
		})
		if minioErr != nil {
			deps.close()
			return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", minioErr)
		}
		images = services.NewQRImageService(files)
	} else {
		log.Println("MinIO не настроен, загрузка изображений QR-кодов отключена.")
	}

	// 4. Сервисы
	secret := []byte(cfg.JWTSecret)
	userRepo := repository.NewPostgresUserRepository(db)
	authService := services.NewAuthService(userRepo, services.TokenIssuer{Secret: secret})
	verifier := services.NewCredentialVerifier(authService, services.AttemptLimit{
		Attempts: cfg.AuthAttempts,
		Window:   cfg.AuthWindow,
	})

	// 5. Машины блокировки
	deps.metrics = metrics.New()
	opts := []lock.Option{
		lock.WithNotifier(lock.LogNotifier{}),
		lock.WithNotifier(deps.metrics),
	}
	if images != nil {
		opts = append(opts, lock.WithResetHook(services.ResetCleanup(images)))
	}
	registry := lock.NewRegistry(services.NewConfigRecordStore(kv), verifier, opts...)

	// 6. Обработчики
	deps.authHandler = handlers.NewAuthHandler(authService)
	deps.configHandler = handlers.NewConfigHandler(registry, images)
	deps.authenticator = appmiddleware.NewAuthenticator(secret)

	return deps, nil
}

// setupKVStore создает хранилище записей по выбранному бэкенду.
func setupKVStore(ctx context.Context, cfg *config, deps *dependencies) (storage.KVStore, error) {
	log.Printf("Хранилище конфигураций: %s", cfg.StoreBackend)

	switch cfg.StoreBackend {
	case backendRedis:
		rs, err := storage.NewRedisStore(ctx, storage.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			KeyPrefix: redisKeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации Redis: %w", err)
		}
		deps.closers = append(deps.closers, rs.Close)
		return rs, nil
	case backendFile:
		fs, err := storage.NewFileStore(cfg.FileStoreDir)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации файлового хранилища: %w", err)
		}
		return fs, nil
	case backendMemory:
		log.Println("ВНИМАНИЕ: конфигурации хранятся в памяти и будут потеряны при перезапуске")
		return storage.NewMemoryStore(), nil
	default:
		return repository.NewPostgresKVStore(deps.db), nil
	}
}

// close освобождает ресурсы в порядке, обратном созданию.
func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Printf("Ошибка освобождения ресурса: %v", err)
		}
	}
	d.closers = nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})
	if deps.metrics != nil {
		r.Handle("/metrics", deps.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", deps.authHandler.Register)
		r.Post("/login", deps.authHandler.Login)

		// Приватные маршруты (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(deps.authenticator)

			r.Route("/configs/{name}", func(r chi.Router) {
				r.Get("/", deps.configHandler.GetState)
				r.Post("/save", deps.configHandler.RequestSave)
				r.Post("/confirm", deps.configHandler.ConfirmSave)
				r.Post("/unlock", deps.configHandler.Unlock)
				r.Post("/lock", deps.configHandler.Lock)
				r.Post("/reset", deps.configHandler.Reset)
				r.Get("/qr-image", deps.configHandler.DownloadQRImage)
				r.Post("/qr-image", deps.configHandler.UploadQRImage)
			})
		})
	})
	return r
}
