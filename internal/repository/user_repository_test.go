package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/salespilots/paylock/internal/repository"
	"github.com/salespilots/paylock/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	insertUserQuery  = regexp.QuoteMeta(`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`)
	userByNameQuery  = regexp.QuoteMeta(`SELECT id, username, password_hash, created_at, updated_at FROM users WHERE username=$1`)
	userByIDQuery    = regexp.QuoteMeta(`SELECT id, username, password_hash, created_at, updated_at FROM users WHERE id=$1`)
	userTableColumns = []string{"id", "username", "password_hash", "created_at", "updated_at"}
)

// Вспомогательная функция для создания мока БД и репозитория.
func setupUserRepoMock(t *testing.T) (repository.UserRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewPostgresUserRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name        string
		user        *models.User
		mockSetup   func(mock sqlmock.Sqlmock, user *models.User)
		expectedID  int64
		expectedErr error
	}{
		{
			name: "Успешное создание",
			user: &models.User{Username: "newuser", PasswordHash: "hash123"},
			mockSetup: func(mock sqlmock.Sqlmock, user *models.User) {
				rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(1))
				mock.ExpectQuery(insertUserQuery).WithArgs(user.Username, user.PasswordHash).WillReturnRows(rows)
			},
			expectedID: 1,
		},
		{
			name: "Имя пользователя занято",
			user: &models.User{Username: "existinguser", PasswordHash: "hash456"},
			mockSetup: func(mock sqlmock.Sqlmock, user *models.User) {
				mock.ExpectQuery(insertUserQuery).
					WithArgs(user.Username, user.PasswordHash).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			expectedErr: repository.ErrUsernameTaken,
		},
		{
			name: "Ошибка базы данных",
			user: &models.User{Username: "erroruser", PasswordHash: "hash789"},
			mockSetup: func(mock sqlmock.Sqlmock, user *models.User) {
				mock.ExpectQuery(insertUserQuery).
					WithArgs(user.Username, user.PasswordHash).
					WillReturnError(errors.New("database error"))
			},
			expectedErr: errors.New("ошибка выполнения запроса"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserRepoMock(t)
			tt.mockSetup(mock, tt.user)

			userID, err := repo.CreateUser(context.Background(), tt.user)

			assert.Equal(t, tt.expectedID, userID)
			switch {
			case tt.expectedErr == nil:
				require.NoError(t, err)
			case errors.Is(tt.expectedErr, repository.ErrUsernameTaken):
				require.ErrorIs(t, err, repository.ErrUsernameTaken)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "Не все ожидания мока были выполнены")
		})
	}
}

func TestGetUser(t *testing.T) {
	now := time.Now()
	testUser := &models.User{
		ID:           1,
		Username:     "testuser",
		PasswordHash: "hash123",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	userRows := func() *sqlmock.Rows {
		return sqlmock.NewRows(userTableColumns).
			AddRow(testUser.ID, testUser.Username, testUser.PasswordHash, testUser.CreatedAt, testUser.UpdatedAt)
	}
	byName := func(repo repository.UserRepository) (*models.User, error) {
		return repo.GetUserByUsername(context.Background(), "testuser")
	}
	byID := func(repo repository.UserRepository) (*models.User, error) {
		return repo.GetUserByID(context.Background(), 1)
	}

	tests := []struct {
		name         string
		call         func(repo repository.UserRepository) (*models.User, error)
		mockSetup    func(mock sqlmock.Sqlmock)
		expectedUser *models.User
		expectedErr  error
	}{
		{
			name: "Поиск по имени",
			call: byName,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(userByNameQuery).WithArgs("testuser").WillReturnRows(userRows())
			},
			expectedUser: testUser,
		},
		{
			name: "Имя не найдено",
			call: byName,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(userByNameQuery).WithArgs("testuser").WillReturnError(sql.ErrNoRows)
			},
			expectedErr: repository.ErrUserNotFound,
		},
		{
			name: "Поиск по ID",
			call: byID,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(userByIDQuery).WithArgs(int64(1)).WillReturnRows(userRows())
			},
			expectedUser: testUser,
		},
		{
			name: "ID не найден",
			call: byID,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(userByIDQuery).WithArgs(int64(1)).WillReturnError(sql.ErrNoRows)
			},
			expectedErr: repository.ErrUserNotFound,
		},
		{
			name: "Ошибка базы данных",
			call: byID,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(userByIDQuery).WithArgs(int64(1)).WillReturnError(errors.New("database error"))
			},
			expectedErr: errors.New("ошибка выполнения запроса"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserRepoMock(t)
			tt.mockSetup(mock)

			user, err := tt.call(repo)

			assert.Equal(t, tt.expectedUser, user)
			switch {
			case tt.expectedErr == nil:
				require.NoError(t, err)
			case errors.Is(tt.expectedErr, repository.ErrUserNotFound):
				require.ErrorIs(t, err, repository.ErrUserNotFound)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "Не все ожидания мока были выполнены")
		})
	}
}
