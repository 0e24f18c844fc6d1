// Package lock реализует машину состояний защищённой конфигурации:
// двухфазное сохранение, разблокировку по паролю и сброс.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/salespilots/paylock/models"
)

// RecordStore сохраняет одну именованную запись конфигурации.
// Load возвращает ErrRecordNotFound, если записи нет.
type RecordStore interface {
	Load(ctx context.Context, name string) (*models.ConfigurationRecord, error)
	Save(ctx context.Context, record *models.ConfigurationRecord) error
	Delete(ctx context.Context, name string) error
}

// Verdict - результат проверки пароля.
type Verdict int

const (
	VerdictInvalid Verdict = iota
	VerdictValid
	VerdictUnavailable
)

// Session описывает аутентифицированную сессию вызывающего.
type Session struct {
	UserID    int64
	SessionID string
}

// Verifier сверяет пароль с учётными данными живой сессии.
// Для VerdictUnavailable err содержит причину.
type Verifier interface {
	Verify(ctx context.Context, session Session, credential string) (Verdict, error)
}

// ResetHook вызывается после успешного сброса с удалённой записью (может быть nil).
type ResetHook func(ctx context.Context, removed *models.ConfigurationRecord)

// Option настраивает Machine.
type Option func(*Machine)

// WithClock задаёт источник времени.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithValidator задаёт правила проверки полей.
func WithValidator(v Validator) Option {
	return func(m *Machine) { m.validate = v }
}

// WithNotifier добавляет получателя результатов.
func WithNotifier(n Notifier) Option {
	return func(m *Machine) { m.notifiers = append(m.notifiers, n) }
}

// WithResetHook задаёт действие после успешного сброса.
func WithResetHook(h ResetHook) Option {
	return func(m *Machine) { m.onReset = h }
}

// WithIDGenerator задаёт генератор идентификаторов ожидающих действий.
func WithIDGenerator(gen func() string) Option {
	return func(m *Machine) { m.newID = gen }
}

// Snapshot - состояние машины для внешнего слоя.
type Snapshot struct {
	Name        string
	State       State
	Record      *models.ConfigurationRecord // nil, если запись не сохранена
	LastSavedAt *time.Time
	Pending     PendingKind
	PendingID   string
}

// Machine владеет состоянием одной записи конфигурации.
// Все переходы сериализуются мьютексом, включая вызовы Verifier и RecordStore.
type Machine struct {
	mu sync.Mutex

	name      string
	store     RecordStore
	verifier  Verifier
	validate  Validator
	notifiers []Notifier
	onReset   ResetHook
	now       func() time.Time
	newID     func() string

	loaded  bool
	state   State
	record  *models.ConfigurationRecord
	pending PendingBuffer
}

// NewMachine создаёт машину для записи name.
// Начальное состояние определяется по хранилищу при первом обращении.
func NewMachine(name string, store RecordStore, verifier Verifier, opts ...Option) *Machine {
	m := &Machine{
		name:     name,
		store:    store,
		verifier: verifier,
		validate: DefaultValidator(),
		now:      time.Now,
		newID:    uuid.NewString,
		state:    StateUninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name возвращает имя записи.
func (m *Machine) Name() string {
	return m.name
}

// GetState возвращает снимок состояния с полными значениями полей.
func (m *Machine) GetState(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(ctx); err != nil {
		m.fail(ctx, ActionLoad, err)
		return Snapshot{}, err
	}

	p := m.pending.Peek()
	snap := Snapshot{
		Name:      m.name,
		State:     m.state,
		Record:    m.record.Clone(),
		Pending:   p.Kind,
		PendingID: p.ID,
	}
	if m.record != nil {
		snap.LastSavedAt = snap.Record.LastSavedAt
	}
	return snap, nil
}

// RequestSave ставит предложенные поля в ожидание подтверждения.
// Сам по себе ничего не сохраняет; возвращает идентификатор ожидающего действия.
func (m *Machine) RequestSave(ctx context.Context, session Session, fields models.Fields) (string, Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(ctx); err != nil {
		return "", m.fail(ctx, ActionSave, err), err
	}
	// Ссылка на изображение проверяется всегда, независимо от подключённого валидатора.
	if err := Chain(m.validate, QRImageRefField(m.name, FieldQRImageBlob))(fields); err != nil {
		if KindOf(err) == "" {
			err = newError(KindValidation, err.Error(), nil)
		}
		return "", m.fail(ctx, ActionSave, err), err
	}

	id := m.newID()
	m.pending.Set(PendingAction{
		Kind:        PendingSave,
		ID:          id,
		Fields:      fields,
		RequestedBy: session.UserID,
		RequestedAt: m.now(),
	})

	switch m.state {
	case StateLocked:
		return id, m.emit(ctx, ActionSave, LevelWarning,
			"Конфигурация заблокирована: для применения изменений разблокируйте её паролем и подтвердите сохранение"), nil
	case StateUnlocked:
		return id, m.emit(ctx, ActionSave, LevelWarning,
			"Подтвердите изменение: после сохранения конфигурация снова будет заблокирована"), nil
	default:
		return id, m.emit(ctx, ActionSave, LevelWarning,
			"Подтвердите сохранение: после сохранения конфигурация будет заблокирована"), nil
	}
}

// ConfirmSave применяет ожидающий запрос на сохранение с идентификатором pendingID.
// Разрешено только из состояний Uninitialized и Unlocked; результатом всегда является Locked.
func (m *Machine) ConfirmSave(ctx context.Context, _ Session, pendingID string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(ctx); err != nil {
		return m.fail(ctx, ActionConfirm, err), err
	}

	p := m.pending.Peek()
	if p.Kind != PendingSave {
		err := newError(KindInvalidTransition, "нет запроса на сохранение, ожидающего подтверждения", nil)
		return m.fail(ctx, ActionConfirm, err), err
	}
	if p.ID != pendingID {
		err := newError(KindInvalidTransition, "запрос на сохранение устарел или не найден", nil)
		return m.fail(ctx, ActionConfirm, err), err
	}
	if m.state == StateLocked {
		err := newError(KindInvalidTransition, "конфигурация заблокирована: сначала разблокируйте её", nil)
		return m.fail(ctx, ActionConfirm, err), err
	}

	savedAt := m.now().UTC()
	next := &models.ConfigurationRecord{
		Name:        m.name,
		Fields:      p.Fields,
		LastSavedAt: &savedAt,
		Version:     1,
	}
	if m.record != nil {
		next.Version = m.record.Version + 1
	}

	// Состояние меняется только после успешной записи.
	if err := m.store.Save(ctx, next); err != nil {
		lerr := newError(KindPersistence, "не удалось сохранить конфигурацию, повторите подтверждение", err)
		return m.fail(ctx, ActionConfirm, lerr), lerr
	}

	m.record = next
	m.state = StateLocked
	m.pending.Clear()

	return m.emit(ctx, ActionConfirm, LevelSuccess,
		fmt.Sprintf("Конфигурация сохранена и заблокирована (версия %d)", next.Version)), nil
}

// RequestUnlock разблокирует конфигурацию после проверки пароля.
func (m *Machine) RequestUnlock(ctx context.Context, session Session, credential string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(ctx); err != nil {
		return m.fail(ctx, ActionUnlock, err), err
	}
	if m.state == StateUninitialized {
		err := newError(KindInvalidTransition, "конфигурация ещё не сохранена, разблокировать нечего", nil)
		return m.fail(ctx, ActionUnlock, err), err
	}

	// Сохранение, запрошенное в состоянии Locked, ждёт разблокировки и не отменяется ею.
	if m.pending.Peek().Kind != PendingSave {
		m.pending.Set(PendingAction{Kind: PendingUnlock, ID: m.newID(), RequestedBy: session.UserID, RequestedAt: m.now()})
		defer m.pending.Clear()
	}

	if err := m.verify(ctx, session, credential); err != nil {
		return m.fail(ctx, ActionUnlock, err), err
	}

	m.state = StateUnlocked
	return m.emit(ctx, ActionUnlock, LevelSuccess, "Конфигурация разблокирована для редактирования"), nil
}

// Lock повторно блокирует конфигурацию без сохранения. Повторный вызов ничего не меняет.
func (m *Machine) Lock(ctx context.Context, _ Session) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(ctx); err != nil {
		return m.fail(ctx, ActionLock, err), err
	}

	switch m.state {
	case StateUninitialized:
		err := newError(KindInvalidTransition, "конфигурация ещё не сохранена, блокировать нечего", nil)
		return m.fail(ctx, ActionLock, err), err
	case StateLocked:
		return m.emit(ctx, ActionLock, LevelSuccess, "Конфигурация уже заблокирована"), nil
	default:
		m.state = StateLocked
		m.pending.Clear()
		return m.emit(ctx, ActionLock, LevelSuccess, "Конфигурация заблокирована"), nil
	}
}

// RequestReset удаляет запись после проверки пароля из любого состояния.
func (m *Machine) RequestReset(ctx context.Context, session Session, credential string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(ctx); err != nil {
		return m.fail(ctx, ActionReset, err), err
	}

	m.pending.Set(PendingAction{Kind: PendingReset, ID: m.newID(), RequestedBy: session.UserID, RequestedAt: m.now()})
	defer m.pending.Clear()

	if err := m.verify(ctx, session, credential); err != nil {
		return m.fail(ctx, ActionReset, err), err
	}

	if err := m.store.Delete(ctx, m.name); err != nil {
		lerr := newError(KindPersistence, "не удалось удалить конфигурацию", err)
		return m.fail(ctx, ActionReset, lerr), lerr
	}

	removed := m.record
	m.record = nil
	m.state = StateUninitialized

	if m.onReset != nil && removed != nil {
		m.onReset(ctx, removed.Clone())
	}
	return m.emit(ctx, ActionReset, LevelSuccess, "Конфигурация сброшена"), nil
}

// ensureLoaded определяет начальное состояние по хранилищу.
// Неудачная загрузка не кэшируется: следующий вызов повторит попытку.
func (m *Machine) ensureLoaded(ctx context.Context) error {
	if m.loaded {
		return nil
	}

	rec, err := m.store.Load(ctx, m.name)
	switch {
	case errors.Is(err, ErrRecordNotFound), err == nil && rec == nil:
		m.state = StateUninitialized
		m.record = nil
	case err != nil:
		return newError(KindPersistence, "не удалось загрузить конфигурацию", err)
	case rec.LastSavedAt == nil:
		return newError(KindPersistence, "сохранённая конфигурация повреждена: нет времени сохранения", nil)
	default:
		m.state = StateLocked
		m.record = rec.Clone()
	}

	m.loaded = true
	return nil
}

// verify проверяет пароль и переводит вердикт в ошибку машины.
func (m *Machine) verify(ctx context.Context, session Session, credential string) error {
	if credential == "" {
		return newError(KindAuthFailed, "введите пароль", nil)
	}

	verdict, err := m.verifier.Verify(ctx, session, credential)
	switch verdict {
	case VerdictValid:
		return nil
	case VerdictUnavailable:
		return newError(KindAuthUnavailable, "проверка пароля недоступна, повторите попытку позже", err)
	default:
		return newError(KindAuthFailed, "неверный пароль", err)
	}
}

func (m *Machine) emit(ctx context.Context, action Action, level Level, message string) Result {
	return m.notify(ctx, m.result(action, level, message))
}

func (m *Machine) fail(ctx context.Context, action Action, err error) Result {
	res := m.result(action, LevelError, errorMessage(err))
	res.Kind = KindOf(err)
	return m.notify(ctx, res)
}

func (m *Machine) result(action Action, level Level, message string) Result {
	res := Result{
		Config:  m.name,
		Action:  action,
		Level:   level,
		Message: message,
		State:   m.state,
	}
	if m.record != nil {
		res.Version = m.record.Version
	}
	return res
}

func (m *Machine) notify(ctx context.Context, res Result) Result {
	for _, n := range m.notifiers {
		n.Notify(ctx, res)
	}
	return res
}
