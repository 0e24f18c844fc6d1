package lock

import (
	"errors"
	"fmt"
)

// ErrorKind классифицирует отказ операции машины блокировки.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_error"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindAuthFailed        ErrorKind = "auth_failed"
	KindAuthUnavailable   ErrorKind = "auth_unavailable"
	KindPersistence       ErrorKind = "persistence_error"
)

// Error - ошибка операции машины блокировки.
// errors.Is сравнивает ошибки по виду, поэтому сентинелы ниже
// совпадают с любой ошибкой того же вида.
type Error struct {
	Kind    ErrorKind
	Message string // Сообщение для пользователя
	Err     error  // Исходная причина, если есть
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сообщает, совпадает ли вид ошибки с target.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Сентинелы для проверки через errors.Is.
var (
	ErrValidation        = &Error{Kind: KindValidation, Message: "ошибка валидации"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "недопустимый переход"}
	ErrAuthFailed        = &Error{Kind: KindAuthFailed, Message: "неверный пароль"}
	ErrAuthUnavailable   = &Error{Kind: KindAuthUnavailable, Message: "проверка пароля недоступна"}
	ErrPersistence       = &Error{Kind: KindPersistence, Message: "ошибка хранилища"}
)

// ErrRecordNotFound возвращается хранилищем записей, если запись отсутствует.
var ErrRecordNotFound = errors.New("запись конфигурации не найдена")

// ErrInvalidName возвращается реестром для недопустимого имени конфигурации.
var ErrInvalidName = errors.New("недопустимое имя конфигурации")

// KindOf возвращает вид ошибки машины или пустую строку.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}
