package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/salespilots/paylock/models"
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolationCode = "23505"
)

// UserRepository определяет методы для работы с данными пользователей в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

// postgresUserRepository реализует UserRepository для PostgreSQL.
type postgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository создает новый экземпляр репозитория пользователей для PostgreSQL.
func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

// CreateUser создает нового пользователя в базе данных.
// Возвращает ID созданного пользователя или ошибку.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`
	var userID int64

	err := r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash).Scan(&userID)
	if err != nil {
		// Проверяем на ошибку нарушения уникальности (duplicate key)
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Printf("[Repo] Имя пользователя '%s' уже занято", user.Username)
			return 0, ErrUsernameTaken
		}
		log.Printf("[Repo] Ошибка при создании пользователя '%s': %v", user.Username, err)
		return 0, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	log.Printf("[Repo] Создан пользователь '%s' (ID: %d)", user.Username, userID)
	return userID, nil
}

// selectUserQuery выбирает все колонки пользователя; условие добавляется вызывающим.
const selectUserQuery = `SELECT id, username, password_hash, created_at, updated_at FROM users`

// GetUserByUsername находит пользователя по имени (вход в систему).
func (r *postgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := r.getUser(ctx, selectUserQuery+` WHERE username=$1`, username)
	if err != nil {
		log.Printf("[Repo] Пользователь '%s' не получен: %v", username, err)
		return nil, err
	}
	return user, nil
}

// GetUserByID находит пользователя по ID.
// Используется для повторной проверки пароля владельца живой сессии.
func (r *postgresUserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	user, err := r.getUser(ctx, selectUserQuery+` WHERE id=$1`, userID)
	if err != nil {
		log.Printf("[Repo] Пользователь ID %d не получен: %v", userID, err)
		return nil, err
	}
	return user, nil
}

// getUser выполняет выборку одного пользователя и переводит sql.ErrNoRows в ErrUserNotFound.
func (r *postgresUserRepository) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}
	return &user, nil
}

// Кастомные ошибки репозитория.
var (
	ErrUserNotFound  = errors.New("пользователь не найден")
	ErrUsernameTaken = errors.New("имя пользователя уже занято")
)
