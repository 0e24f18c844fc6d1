package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultServerPort   = "8443"
	defaultStoreBackend = backendPostgres
	defaultFileStoreDir = "data/configs"
	defaultMinioBucket  = "paylock-qr-images"
	defaultAuthAttempts = 5
	defaultAuthWindow   = time.Minute
	minJWTSecretLength  = 32

	// Переменные окружения.
	envServerPort    = "SERVER_PORT"
	envTLSCertFile   = "TLS_CERT_FILE"
	envTLSKeyFile    = "TLS_KEY_FILE"
	envDatabaseDSN   = "DATABASE_DSN"
	envJWTSecret     = "JWT_SECRET" //nolint:gosec // Имя переменной окружения, а не секрет
	envStoreBackend  = "STORE_BACKEND"
	envRedisAddr     = "REDIS_ADDR"
	envRedisPassword = "REDIS_PASSWORD" //nolint:gosec // Имя переменной окружения
	envFileStoreDir  = "FILE_STORE_DIR"
	envMinioEndpoint = "MINIO_ENDPOINT"
	envMinioUser     = "MINIO_USER"
	envMinioPassword = "MINIO_PASSWORD" //nolint:gosec // Имя переменной окружения
	envMinioBucket   = "MINIO_BUCKET"
	envMinioUseSSL   = "MINIO_USE_SSL"
	envAuthAttempts  = "AUTH_RATE_LIMIT"
)

// Поддерживаемые хранилища записей конфигурации.
const (
	backendPostgres = "postgres"
	backendRedis    = "redis"
	backendFile     = "file"
	backendMemory   = "memory"
)

// config хранит конфигурацию сервера.
type config struct {
	Port        string
	CertFile    string
	KeyFile     string
	DatabaseDSN string
	JWTSecret   string

	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	FileStoreDir  string

	MinioEndpoint string // Пусто - загрузка изображений QR-кодов отключена
	MinioUser     string
	MinioPassword string
	MinioBucket   string
	MinioUseSSL   bool

	AuthAttempts int // Попыток ввода пароля на пользователя за AuthWindow
	AuthWindow   time.Duration
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Флаги имеют приоритет над переменными окружения.
func parseFlags() (*config, error) {
	cfg := &config{}

	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт HTTP(S)-сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.CertFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s)", envTLSCertFile))
	flag.StringVar(&cfg.KeyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", envTLSKeyFile))
	flag.StringVar(&cfg.DatabaseDSN, "database-dsn", "",
		fmt.Sprintf("Строка подключения к базе данных (env: %s)", envDatabaseDSN))
	flag.StringVar(&cfg.StoreBackend, "store", "",
		fmt.Sprintf("Хранилище конфигураций: postgres, redis, file, memory (env: %s)", envStoreBackend))
	flag.StringVar(&cfg.RedisAddr, "redis-addr", "",
		fmt.Sprintf("Адрес Redis для -store=redis (env: %s)", envRedisAddr))
	flag.StringVar(&cfg.FileStoreDir, "file-store-dir", "",
		fmt.Sprintf("Каталог для -store=file (env: %s, default: %s)", envFileStoreDir, defaultFileStoreDir))
	flag.StringVar(&cfg.MinioEndpoint, "minio-endpoint", "",
		fmt.Sprintf("Адрес MinIO для изображений QR-кодов (env: %s)", envMinioEndpoint))
	flag.IntVar(&cfg.AuthAttempts, "auth-rate-limit", 0,
		fmt.Sprintf("Попыток ввода пароля в минуту на пользователя (env: %s, default: %d)",
			envAuthAttempts, defaultAuthAttempts))

	flag.Parse()

	applyEnv(&cfg.Port, envServerPort, defaultServerPort)
	applyEnv(&cfg.CertFile, envTLSCertFile, "")
	applyEnv(&cfg.KeyFile, envTLSKeyFile, "")
	applyEnv(&cfg.DatabaseDSN, envDatabaseDSN, "")
	applyEnv(&cfg.StoreBackend, envStoreBackend, defaultStoreBackend)
	applyEnv(&cfg.RedisAddr, envRedisAddr, "")
	applyEnv(&cfg.FileStoreDir, envFileStoreDir, defaultFileStoreDir)
	applyEnv(&cfg.MinioEndpoint, envMinioEndpoint, "")
	applyEnv(&cfg.MinioBucket, envMinioBucket, defaultMinioBucket)
	cfg.JWTSecret = os.Getenv(envJWTSecret) // Секрет не принимаем флагом, чтобы он не попадал в ps
	cfg.RedisPassword = os.Getenv(envRedisPassword)
	cfg.MinioUser = os.Getenv(envMinioUser)
	cfg.MinioPassword = os.Getenv(envMinioPassword)
	cfg.MinioUseSSL = os.Getenv(envMinioUseSSL) == "true"
	cfg.AuthWindow = defaultAuthWindow

	if cfg.AuthAttempts == 0 {
		cfg.AuthAttempts = defaultAuthAttempts
		if value, ok := os.LookupEnv(envAuthAttempts); ok {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("некорректное значение %s: %q", envAuthAttempts, value)
			}
			cfg.AuthAttempts = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate проверяет обязательные параметры.
func (c *config) validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("секрет JWT (%s) должен содержать не менее %d символов", envJWTSecret, minJWTSecretLength)
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("сертификат и ключ TLS должны быть указаны вместе")
	}

	switch c.StoreBackend {
	case backendPostgres, backendFile, backendMemory:
	case backendRedis:
		if c.RedisAddr == "" {
			return errors.New("для хранилища redis не указан адрес (--redis-addr или " + envRedisAddr + ")")
		}
	default:
		return fmt.Errorf("неизвестное хранилище конфигураций: %q", c.StoreBackend)
	}
	return nil
}

// applyEnv заполняет пустое значение из переменной окружения или значением по умолчанию.
func applyEnv(dst *string, key, fallback string) {
	if *dst != "" {
		return
	}
	if value, ok := os.LookupEnv(key); ok {
		*dst = value
		return
	}
	*dst = fallback
}
