package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/salespilots/paylock/internal/lock"
	"github.com/salespilots/paylock/internal/middleware"
	"github.com/salespilots/paylock/internal/services"
	"github.com/salespilots/paylock/models"
)

// retryAfterSeconds - значение Retry-After при недоступности проверки пароля.
const retryAfterSeconds = 30

// MachineRegistry выдаёт машину блокировки по имени конфигурации.
type MachineRegistry interface {
	Get(name string) (*lock.Machine, error)
}

// ConfigHandler обрабатывает HTTP-запросы к защищённым конфигурациям.
type ConfigHandler struct {
	registry MachineRegistry
	images   services.QRImageService // nil, если объектное хранилище не настроено
}

// NewConfigHandler создает новый экземпляр ConfigHandler.
func NewConfigHandler(registry MachineRegistry, images services.QRImageService) *ConfigHandler {
	return &ConfigHandler{registry: registry, images: images}
}

// GetState возвращает состояние конфигурации. Значения скрыты, пока она не разблокирована.
func (h *ConfigHandler) GetState(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}

	snap, err := m.GetState(r.Context())
	if err != nil {
		writeLockError(w, err)
		return
	}

	redacted := snap.Redacted()
	resp := models.ConfigStateResponse{
		Name:            redacted.Name,
		State:           string(redacted.State),
		LastSavedAt:     redacted.LastSavedAt,
		Redacted:        redacted.Record != nil && redacted.State != lock.StateUnlocked,
		PendingAction:   string(redacted.Pending),
		PendingActionID: redacted.PendingID,
	}
	if redacted.Record != nil {
		resp.Fields = redacted.Record.Fields
		resp.Version = redacted.Record.Version
	}
	writeJSON(w, http.StatusOK, resp)
}

// RequestSave ставит новые значения в ожидание подтверждения.
func (h *ConfigHandler) RequestSave(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req models.SaveConfigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	id, res, err := m.RequestSave(r.Context(), session, req.Fields)
	if err != nil {
		writeLockError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, models.SaveConfigResponse{
		PendingActionID: id,
		Result:          toResultResponse(res),
	})
}

// ConfirmSave подтверждает ожидающий запрос на сохранение.
func (h *ConfigHandler) ConfirmSave(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req models.ConfirmSaveRequest
	if err := decodeJSON(w, r, &req); err != nil || req.PendingActionID == "" {
		http.Error(w, "Не указан pending_action_id", http.StatusBadRequest)
		return
	}

	res, err := m.ConfirmSave(r.Context(), session, req.PendingActionID)
	writeResult(w, res, err)
}

// Unlock разблокирует конфигурацию после проверки пароля.
func (h *ConfigHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req models.CredentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	res, err := m.RequestUnlock(r.Context(), session, req.Password)
	writeResult(w, res, err)
}

// Lock повторно блокирует конфигурацию.
func (h *ConfigHandler) Lock(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	res, err := m.Lock(r.Context(), session)
	writeResult(w, res, err)
}

// Reset удаляет конфигурацию после проверки пароля.
func (h *ConfigHandler) Reset(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req models.CredentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	res, err := m.RequestReset(r.Context(), session, req.Password)
	writeResult(w, res, err)
}

// UploadQRImage сохраняет изображение QR-кода и возвращает ссылку для поля qrImageBlobRef.
// Загрузка разрешена, только пока конфигурация не заблокирована.
func (h *ConfigHandler) UploadQRImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		http.Error(w, "Хранилище изображений не настроено", http.StatusNotImplemented)
		return
	}
	m, ok := h.machine(w, r)
	if !ok {
		return
	}

	snap, err := m.GetState(r.Context())
	if err != nil {
		writeLockError(w, err)
		return
	}
	if snap.State == lock.StateLocked {
		http.Error(w, "Конфигурация заблокирована: сначала разблокируйте её", http.StatusConflict)
		return
	}

	if r.ContentLength <= 0 || r.ContentLength > services.MaxQRImageSize {
		http.Error(w, "Неверный или отсутствующий заголовок Content-Length", http.StatusBadRequest)
		return
	}

	body := http.MaxBytesReader(w, r.Body, services.MaxQRImageSize)
	ref, err := h.images.Upload(r.Context(), m.Name(), body, r.ContentLength, r.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedImage):
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		case errors.Is(err, services.ErrImageTooLarge):
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		default:
			log.Printf("[ConfigHandler:UploadQRImage] Ошибка загрузки изображения для '%s': %v", m.Name(), err)
			http.Error(w, "Внутренняя ошибка сервера при загрузке изображения", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, models.QRImageResponse{BlobRef: ref})
}

// DownloadQRImage отдаёт изображение QR-кода, на которое ссылается сохранённая конфигурация.
func (h *ConfigHandler) DownloadQRImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		http.Error(w, "Хранилище изображений не настроено", http.StatusNotImplemented)
		return
	}
	m, ok := h.machine(w, r)
	if !ok {
		return
	}

	snap, err := m.GetState(r.Context())
	if err != nil {
		writeLockError(w, err)
		return
	}
	if snap.Record == nil {
		http.Error(w, "Изображение не найдено", http.StatusNotFound)
		return
	}
	ref, _ := snap.Record.Fields.Get(lock.FieldQRImageBlob)

	body, info, err := h.images.Open(r.Context(), m.Name(), ref)
	if err != nil {
		if errors.Is(err, services.ErrImageNotFound) {
			http.Error(w, "Изображение не найдено", http.StatusNotFound)
			return
		}
		log.Printf("[ConfigHandler:DownloadQRImage] Ошибка получения изображения '%s': %v", ref, err)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}
	defer func() {
		if closeErr := body.Close(); closeErr != nil {
			log.Printf("[ConfigHandler:DownloadQRImage] Ошибка закрытия объекта: %v", closeErr)
		}
	}()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Cache-Control", "no-store")
	if _, err = io.Copy(w, body); err != nil {
		log.Printf("[ConfigHandler:DownloadQRImage] Ошибка отправки изображения '%s': %v", ref, err)
	}
}

// machine находит машину по параметру маршрута {name}.
func (h *ConfigHandler) machine(w http.ResponseWriter, r *http.Request) (*lock.Machine, bool) {
	m, err := h.registry.Get(chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, lock.ErrInvalidName) {
			http.Error(w, "Недопустимое имя конфигурации", http.StatusBadRequest)
			return nil, false
		}
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return nil, false
	}
	return m, true
}

// sessionFromRequest собирает сессию из данных, добавленных middleware аутентификации.
func sessionFromRequest(w http.ResponseWriter, r *http.Request) (lock.Session, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[ConfigHandler] Не удалось получить userID из контекста")
		http.Error(w, "Требуется аутентификация", http.StatusUnauthorized)
		return lock.Session{}, false
	}
	return lock.Session{
		UserID:    userID,
		SessionID: middleware.GetSessionIDFromContext(r.Context()),
	}, true
}

// writeResult отправляет результат операции со статусом, соответствующим виду ошибки.
func writeResult(w http.ResponseWriter, res lock.Result, err error) {
	status := http.StatusOK
	if err != nil {
		status = statusForError(err)
		if lock.KindOf(err) == lock.KindAuthUnavailable {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		}
	}
	writeJSON(w, status, toResultResponse(res))
}

// writeLockError отправляет ошибку, полученную без результата операции.
func writeLockError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), models.ResultResponse{
		Level:   string(lock.LevelError),
		Kind:    string(lock.KindOf(err)),
		Message: userMessage(err),
	})
}

func statusForError(err error) int {
	switch lock.KindOf(err) {
	case lock.KindValidation:
		return http.StatusBadRequest
	case lock.KindInvalidTransition:
		return http.StatusConflict
	case lock.KindAuthFailed:
		return http.StatusForbidden
	case lock.KindAuthUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage не раскрывает внутренние причины ошибок хранилища.
func userMessage(err error) string {
	var lerr *lock.Error
	if errors.As(err, &lerr) {
		return lerr.Message
	}
	return "Внутренняя ошибка сервера"
}

func toResultResponse(res lock.Result) models.ResultResponse {
	return models.ResultResponse{
		Level:   string(res.Level),
		Kind:    string(res.Kind),
		Message: res.Message,
		State:   string(res.State),
		Version: res.Version,
	}
}
