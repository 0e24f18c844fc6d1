package models

import "time"

// ConfigStateResponse - ответ на запрос состояния защищённой конфигурации.
// Пока конфигурация не разблокирована, значения полей частично скрыты.
type ConfigStateResponse struct {
	Name            string     `json:"name"`
	State           string     `json:"state"`
	Fields          Fields     `json:"fields,omitempty"`
	Version         int64      `json:"version"`
	LastSavedAt     *time.Time `json:"last_saved_at,omitempty"`
	Redacted        bool       `json:"redacted"`
	PendingAction   string     `json:"pending_action"`
	PendingActionID string     `json:"pending_action_id,omitempty"`
}

// SaveConfigRequest - тело запроса на сохранение (первый шаг).
type SaveConfigRequest struct {
	Fields Fields `json:"fields"`
}

// SaveConfigResponse возвращает идентификатор запроса, ожидающего подтверждения.
type SaveConfigResponse struct {
	PendingActionID string         `json:"pending_action_id"`
	Result          ResultResponse `json:"result"`
}

// ConfirmSaveRequest - тело запроса на подтверждение сохранения.
type ConfirmSaveRequest struct {
	PendingActionID string `json:"pending_action_id"`
}

// CredentialRequest - тело запросов разблокировки и сброса.
type CredentialRequest struct {
	Password string `json:"password"`
}

// ResultResponse - итог операции для отображения пользователю.
type ResultResponse struct {
	Level   string `json:"level"` // success, warning или error
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	State   string `json:"state"`
	Version int64  `json:"version"`
}

// QRImageResponse возвращает ссылку на загруженное изображение QR-кода.
type QRImageResponse struct {
	BlobRef string `json:"blob_ref"`
}
