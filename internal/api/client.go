// Package api содержит HTTP-клиент сервера PayLock.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/salespilots/paylock/models"
)

// maxErrorBodySize ограничивает чтение текста ошибки из ответа.
const maxErrorBodySize = 4 << 10

// ErrAuthorization сигнализирует об ошибке авторизации (401).
var ErrAuthorization = errors.New("ошибка авторизации")

// ErrNotFound возвращается, если запрошенный объект не найден (404).
var ErrNotFound = errors.New("не найдено")

// ResultError - отказ сервера в операции над конфигурацией.
// Result содержит вид ошибки и сообщение для пользователя.
type ResultError struct {
	StatusCode int
	Result     models.ResultResponse
	RetryAfter time.Duration // Заполняется для ответа 503
}

func (e *ResultError) Error() string {
	if e.Result.Kind != "" {
		return fmt.Sprintf("%s (%s, статус %d)", e.Result.Message, e.Result.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s (статус %d)", e.Result.Message, e.StatusCode)
}

// Client определяет интерфейс для взаимодействия с API сервера PayLock.
type Client interface {
	// Register регистрирует нового пользователя.
	Register(ctx context.Context, username, password string) error
	// Login аутентифицирует пользователя и возвращает JWT токен.
	Login(ctx context.Context, username, password string) (string, error)
	// GetConfig возвращает состояние конфигурации (значения скрыты, пока она заблокирована).
	GetConfig(ctx context.Context, name string) (*models.ConfigStateResponse, error)
	// RequestSave ставит новые значения в ожидание подтверждения.
	RequestSave(ctx context.Context, name string, fields models.Fields) (*models.SaveConfigResponse, error)
	// ConfirmSave подтверждает ожидающий запрос на сохранение.
	ConfirmSave(ctx context.Context, name, pendingID string) (*models.ResultResponse, error)
	// Unlock разблокирует конфигурацию паролем.
	Unlock(ctx context.Context, name, password string) (*models.ResultResponse, error)
	// Lock повторно блокирует конфигурацию.
	Lock(ctx context.Context, name string) (*models.ResultResponse, error)
	// Reset удаляет конфигурацию после проверки пароля.
	Reset(ctx context.Context, name, password string) (*models.ResultResponse, error)
	// UploadQRImage загружает изображение QR-кода и возвращает ссылку на него.
	UploadQRImage(ctx context.Context, name string, data io.Reader, size int64, contentType string) (string, error)
	// DownloadQRImage скачивает изображение QR-кода. Вызывающая сторона закрывает тело.
	DownloadQRImage(ctx context.Context, name string) (io.ReadCloser, string, error)
	// SetAuthToken устанавливает JWT токен для аутентифицированных запросов.
	SetAuthToken(token string)
}

// httpClient реализует интерфейс Client для взаимодействия с сервером по HTTP.
type httpClient struct {
	baseURL    string       // Базовый URL сервера, например "https://localhost:8443"
	httpClient *http.Client // HTTP клиент для выполнения запросов
	authToken  string       // JWT токен для аутентифицированных запросов
}

// NewHTTPClient создает новый экземпляр API клиента.
// Если hc равен nil, используется http.Client с таймаутом по умолчанию.
func NewHTTPClient(baseURL string, hc *http.Client) Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &httpClient{
		baseURL:    baseURL,
		httpClient: hc,
	}
}

// Register отправляет запрос на регистрацию на сервер.
func (c *httpClient) Register(ctx context.Context, username, password string) error {
	resp, err := c.postJSON(ctx, "/api/register", models.RegisterRequest{
		Username: username,
		Password: password,
	}, false)
	if err != nil {
		return fmt.Errorf("ошибка запроса на регистрацию: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("ошибка регистрации на сервере: статус %d: %s", resp.StatusCode, readErrorText(resp))
	}
	return nil
}

// Login отправляет запрос на вход на сервер и сохраняет токен.
func (c *httpClient) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := c.postJSON(ctx, "/api/login", models.LoginRequest{
		Username: username,
		Password: password,
	}, false)
	if err != nil {
		return "", fmt.Errorf("ошибка запроса на вход: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return "", errors.New("неверное имя пользователя или пароль")
		}
		return "", fmt.Errorf("ошибка входа на сервере: статус %d: %s", resp.StatusCode, readErrorText(resp))
	}

	var loginResponse models.LoginResponse
	if err = json.NewDecoder(resp.Body).Decode(&loginResponse); err != nil {
		return "", fmt.Errorf("ошибка декодирования ответа на вход: %w", err)
	}
	if loginResponse.Token == "" {
		return "", errors.New("сервер вернул пустой токен")
	}

	// Сохраняем токен в клиенте для последующих запросов
	c.authToken = loginResponse.Token
	return loginResponse.Token, nil
}

// GetConfig получает состояние конфигурации.
func (c *httpClient) GetConfig(ctx context.Context, name string) (*models.ConfigStateResponse, error) {
	configURL, err := c.configURL(name, "/")
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, configURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса состояния: %w", err)
	}
	if err = c.setAuthHeader(req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса состояния: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var state models.ConfigStateResponse
	if err = json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("ошибка декодирования состояния: %w", err)
	}
	return &state, nil
}

// RequestSave отправляет первый шаг сохранения.
func (c *httpClient) RequestSave(
	ctx context.Context,
	name string,
	fields models.Fields,
) (*models.SaveConfigResponse, error) {
	resp, err := c.postConfig(ctx, name, "/save", models.SaveConfigRequest{Fields: fields})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return nil, responseError(resp)
	}

	var out models.SaveConfigResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ошибка декодирования ответа на сохранение: %w", err)
	}
	return &out, nil
}

// ConfirmSave подтверждает сохранение.
func (c *httpClient) ConfirmSave(ctx context.Context, name, pendingID string) (*models.ResultResponse, error) {
	return c.resultCall(ctx, name, "/confirm", models.ConfirmSaveRequest{PendingActionID: pendingID})
}

// Unlock разблокирует конфигурацию.
func (c *httpClient) Unlock(ctx context.Context, name, password string) (*models.ResultResponse, error) {
	return c.resultCall(ctx, name, "/unlock", models.CredentialRequest{Password: password})
}

// Lock блокирует конфигурацию.
func (c *httpClient) Lock(ctx context.Context, name string) (*models.ResultResponse, error) {
	return c.resultCall(ctx, name, "/lock", struct{}{})
}

// Reset сбрасывает конфигурацию.
func (c *httpClient) Reset(ctx context.Context, name, password string) (*models.ResultResponse, error) {
	return c.resultCall(ctx, name, "/reset", models.CredentialRequest{Password: password})
}

// UploadQRImage загружает изображение QR-кода.
func (c *httpClient) UploadQRImage(
	ctx context.Context,
	name string,
	data io.Reader,
	size int64,
	contentType string,
) (string, error) {
	uploadURL, err := c.configURL(name, "/qr-image")
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, data)
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса на загрузку изображения: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", strconv.FormatInt(size, 10))
	if err = c.setAuthHeader(req); err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка выполнения запроса на загрузку изображения: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", responseError(resp)
	}

	var out models.QRImageResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ошибка декодирования ответа на загрузку изображения: %w", err)
	}
	return out.BlobRef, nil
}

// DownloadQRImage скачивает изображение QR-кода.
func (c *httpClient) DownloadQRImage(ctx context.Context, name string) (io.ReadCloser, string, error) {
	downloadURL, err := c.configURL(name, "/qr-image")
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка создания запроса на скачивание изображения: %w", err)
	}
	if err = c.setAuthHeader(req); err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка выполнения запроса на скачивание изображения: %w", err)
	}
	// НЕ закрываем resp.Body при успехе, вызывающая сторона должна это сделать
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", responseError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// SetAuthToken устанавливает токен аутентификации для клиента.
func (c *httpClient) SetAuthToken(token string) {
	c.authToken = token
}

// resultCall выполняет POST-операцию, отвечающую итогом ResultResponse.
func (c *httpClient) resultCall(ctx context.Context, name, action string, body any) (*models.ResultResponse, error) {
	resp, err := c.postConfig(ctx, name, action, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var out models.ResultResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ошибка декодирования итога операции: %w", err)
	}
	return &out, nil
}

func (c *httpClient) postConfig(ctx context.Context, name, action string, body any) (*http.Response, error) {
	configURL, err := c.configURL(name, action)
	if err != nil {
		return nil, err
	}
	resp, err := c.doJSON(ctx, configURL, body, true)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса %s для '%s': %w", strings.TrimPrefix(action, "/"), name, err)
	}
	return resp, nil
}

func (c *httpClient) postJSON(ctx context.Context, path string, body any, auth bool) (*http.Response, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования URL: %w", err)
	}
	return c.doJSON(ctx, endpoint, body, auth)
}

func (c *httpClient) doJSON(ctx context.Context, endpoint string, body any, auth bool) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования тела запроса: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		if err = c.setAuthHeader(req); err != nil {
			return nil, err
		}
	}
	return c.httpClient.Do(req)
}

// configURL формирует адрес операции над конфигурацией name.
func (c *httpClient) configURL(name, action string) (string, error) {
	u, err := url.JoinPath(c.baseURL, "/api/configs", url.PathEscape(name), action)
	if err != nil {
		return "", fmt.Errorf("ошибка формирования URL для '%s': %w", name, err)
	}
	return u, nil
}

// helper function to add auth header.
func (c *httpClient) setAuthHeader(req *http.Request) error {
	if c.authToken == "" {
		return errors.New("токен аутентификации отсутствует")
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	return nil
}

// responseError переводит неуспешный ответ в ошибку клиента.
func responseError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthorization
	case http.StatusNotFound:
		return ErrNotFound
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var result models.ResultResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodySize)).Decode(&result); err == nil {
			resErr := &ResultError{StatusCode: resp.StatusCode, Result: result}
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				resErr.RetryAfter = time.Duration(seconds) * time.Second
			}
			return resErr
		}
	}
	return fmt.Errorf("ошибка сервера: статус %d: %s", resp.StatusCode, readErrorText(resp))
}

func readErrorText(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
