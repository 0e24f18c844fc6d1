package lock

import (
	"time"

	"github.com/salespilots/paylock/models"
)

// State - состояние блокировки защищённой конфигурации.
type State string

const (
	StateUninitialized State = "uninitialized" // Запись ещё не сохранялась или была сброшена
	StateUnlocked      State = "unlocked"      // Редактирование разрешено после повторной аутентификации
	StateLocked        State = "locked"        // Запись сохранена и защищена от изменений
)

// PendingKind - вид ожидающего подтверждения действия.
type PendingKind string

const (
	PendingNone   PendingKind = "none"
	PendingSave   PendingKind = "save"
	PendingUnlock PendingKind = "unlock"
	PendingReset  PendingKind = "reset"
)

// PendingAction - предложенное изменение, ожидающее подтверждения.
// Fields заполняется только для PendingSave.
type PendingAction struct {
	Kind        PendingKind
	ID          string
	Fields      models.Fields
	RequestedBy int64
	RequestedAt time.Time
}

// PendingBuffer хранит не более одного ожидающего действия.
// Не потокобезопасен: защищается мьютексом машины.
type PendingBuffer struct {
	action *PendingAction
}

// Set заменяет текущее ожидающее действие новым.
func (b *PendingBuffer) Set(action PendingAction) {
	action.Fields = action.Fields.Clone()
	b.action = &action
}

// Clear удаляет ожидающее действие.
func (b *PendingBuffer) Clear() {
	b.action = nil
}

// Peek возвращает копию ожидающего действия, не изменяя буфер.
// Если действия нет, возвращается действие вида PendingNone.
func (b *PendingBuffer) Peek() PendingAction {
	if b.action == nil {
		return PendingAction{Kind: PendingNone}
	}
	out := *b.action
	out.Fields = b.action.Fields.Clone()
	return out
}
