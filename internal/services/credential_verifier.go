package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/salespilots/paylock/internal/lock"
	"golang.org/x/time/rate"
)

// PasswordChecker - часть AuthService, нужная для повторной проверки пароля.
type PasswordChecker interface {
	VerifyPassword(ctx context.Context, userID int64, password string) (bool, error)
}

// AttemptLimit ограничивает частоту проверок пароля для одного пользователя.
type AttemptLimit struct {
	Attempts int           // Число попыток за окно; 0 отключает ограничение
	Window   time.Duration // Окно, за которое восстанавливаются Attempts попыток
}

// ErrTooManyAttempts возвращается, если пользователь исчерпал лимит попыток.
var ErrTooManyAttempts = errors.New("слишком много попыток ввода пароля, повторите позже")

// CredentialVerifier реализует lock.Verifier поверх сервиса аутентификации.
// Пароль всегда сверяется с актуальными данными пользователя живой сессии.
type CredentialVerifier struct {
	checker PasswordChecker
	limit   AttemptLimit

	now func() time.Time

	mu        sync.Mutex
	limiters  map[int64]*rate.Limiter
	lastSweep time.Time
}

// Убедимся, что CredentialVerifier удовлетворяет интерфейсу lock.Verifier.
var _ lock.Verifier = (*CredentialVerifier)(nil)

// NewCredentialVerifier создает верификатор с ограничением частоты попыток.
func NewCredentialVerifier(checker PasswordChecker, limit AttemptLimit) *CredentialVerifier {
	return &CredentialVerifier{
		checker:  checker,
		limit:    limit,
		now:      time.Now,
		limiters: make(map[int64]*rate.Limiter),
	}
}

// Verify проверяет пароль владельца сессии.
// Сбой проверки и превышение лимита попыток возвращают VerdictUnavailable, а не VerdictInvalid.
func (v *CredentialVerifier) Verify(ctx context.Context, session lock.Session, credential string) (lock.Verdict, error) {
	if session.UserID <= 0 {
		return lock.VerdictInvalid, errors.New("сессия не аутентифицирована")
	}
	if !v.allow(session.UserID) {
		log.Printf("[CredentialVerifier] Превышен лимит попыток для пользователя %d", session.UserID)
		return lock.VerdictUnavailable, ErrTooManyAttempts
	}

	ok, err := v.checker.VerifyPassword(ctx, session.UserID, credential)
	if err != nil {
		log.Printf("[CredentialVerifier] Проверка пароля пользователя %d недоступна: %v", session.UserID, err)
		return lock.VerdictUnavailable, err
	}
	if !ok {
		log.Printf("[CredentialVerifier] Неверный пароль пользователя %d", session.UserID)
		return lock.VerdictInvalid, nil
	}
	return lock.VerdictValid, nil
}

func (v *CredentialVerifier) allow(userID int64) bool {
	if v.limit.Attempts <= 0 || v.limit.Window <= 0 {
		return true
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if now.Sub(v.lastSweep) >= v.limit.Window {
		v.sweep(now)
		v.lastSweep = now
	}

	limiter, ok := v.limiters[userID]
	if !ok {
		every := v.limit.Window / time.Duration(v.limit.Attempts)
		limiter = rate.NewLimiter(rate.Every(every), v.limit.Attempts)
		v.limiters[userID] = limiter
	}
	return limiter.AllowN(now, 1)
}

// sweep удаляет лимитеры, полностью восстановившие попытки: они не отличаются от новых.
// Вызывается под v.mu не чаще раза за окно.
func (v *CredentialVerifier) sweep(now time.Time) {
	for userID, limiter := range v.limiters {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(v.limiters, userID)
		}
	}
}
