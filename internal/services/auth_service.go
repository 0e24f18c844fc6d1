package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/salespilots/paylock/internal/repository"
	"github.com/salespilots/paylock/models"
	"golang.org/x/crypto/bcrypt"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error) // Возвращает JWT токен или ошибку
	// VerifyPassword сверяет пароль с актуальным хешем пользователя userID.
	// Возвращает false без ошибки, если пароль неверен или пользователя больше нет.
	VerifyPassword(ctx context.Context, userID int64, password string) (bool, error)
}

// TokenIssuer - параметры выпуска JWT.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

const (
	defaultTokenTTL = 12 * time.Hour
	tokenIssuer     = "paylock-server"
)

// Структура для пользовательских данных в JWT (claims).
type jwtClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	now      func() time.Time
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) AuthService {
	if tokens.TTL <= 0 {
		tokens.TTL = defaultTokenTTL
	}
	if tokens.Issuer == "" {
		tokens.Issuer = tokenIssuer
	}
	return &authService{userRepo: userRepo, tokens: tokens, now: time.Now}
}

// Register регистрирует нового пользователя.
func (s *authService) Register(ctx context.Context, username, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[AuthService] Ошибка хеширования пароля для '%s': %v", username, err)
		return errors.New("внутренняя ошибка сервера при хешировании пароля")
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	if _, err = s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return ErrUsernameTaken
		}
		log.Printf("[AuthService] Непредвиденная ошибка репозитория при регистрации '%s': %v", username, err)
		return errors.New("внутренняя ошибка сервера при создании пользователя")
	}

	log.Printf("[AuthService] Пользователь '%s' успешно зарегистрирован", username)
	return nil
}

// Login аутентифицирует пользователя и возвращает JWT токен новой сессии.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials // Общая ошибка для несуществующего пользователя и неверного пароля
		}
		log.Printf("[AuthService] Ошибка репозитория при поиске '%s': %v", username, err)
		return "", errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("[AuthService] Неверный пароль для пользователя: %s", username)
		return "", ErrInvalidCredentials
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации JWT для '%s': %v", username, err)
		return "", errors.New("внутренняя ошибка сервера при генерации токена")
	}

	log.Printf("[AuthService] Пользователь '%s' успешно аутентифицирован", username)
	return token, nil
}

// VerifyPassword повторно проверяет пароль владельца сессии по актуальному хешу из БД.
// Ошибка возвращается только при недоступности репозитория.
func (s *authService) VerifyPassword(ctx context.Context, userID int64, password string) (bool, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AuthService] Проверка пароля для удалённого пользователя %d", userID)
			return false, nil
		}
		return false, fmt.Errorf("ошибка получения пользователя %d: %w", userID, err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		// Повреждённый хеш - это не "неверный пароль", а сбой данных
		return false, fmt.Errorf("ошибка сравнения хеша пароля пользователя %d: %w", userID, err)
	}
}

// generateJWT создает и подписывает JWT токен сессии пользователя.
func (s *authService) generateJWT(userID int64) (string, error) {
	now := s.now()
	claims := jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(), // Идентификатор сессии
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokens.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.tokens.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.tokens.Secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signedToken, nil
}

// Кастомные ошибки сервиса.
var (
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrUsernameTaken      = errors.New("имя пользователя уже занято")
)
