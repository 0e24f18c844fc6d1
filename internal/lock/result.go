package lock

import (
	"context"
	"errors"
	"log"
)

// Level - уровень важности результата операции.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Action - имя операции машины блокировки.
type Action string

const (
	ActionLoad    Action = "load"
	ActionSave    Action = "request_save"
	ActionConfirm Action = "confirm_save"
	ActionUnlock  Action = "unlock"
	ActionLock    Action = "lock"
	ActionReset   Action = "reset"
)

// Result - человекочитаемый итог операции для вызывающей стороны.
type Result struct {
	Config  string
	Action  Action
	Level   Level
	Kind    ErrorKind // Пусто для успешных операций
	Message string
	State   State // Состояние после операции
	Version int64 // Версия записи после операции, 0 если записи нет
}

// Notifier получает результаты всех операций машины.
// Вызывается под мьютексом машины и не должен обращаться к ней.
type Notifier interface {
	Notify(ctx context.Context, res Result)
}

// NotifierFunc адаптирует функцию к интерфейсу Notifier.
type NotifierFunc func(ctx context.Context, res Result)

// Notify вызывает f.
func (f NotifierFunc) Notify(ctx context.Context, res Result) {
	f(ctx, res)
}

// LogNotifier пишет результаты операций в стандартный лог.
type LogNotifier struct{}

// Notify логирует результат.
func (LogNotifier) Notify(_ context.Context, res Result) {
	if res.Level == LevelError {
		log.Printf("[ConfigLock:%s] %s: %s (kind=%s, state=%s)", res.Config, res.Action, res.Message, res.Kind, res.State)
		return
	}
	log.Printf("[ConfigLock:%s] %s: %s (state=%s, version=%d)",
		res.Config, res.Action, res.Message, res.State, res.Version)
}

// errorMessage извлекает пользовательское сообщение из ошибки машины.
func errorMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
