package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/salespilots/paylock/internal/api"
	"github.com/salespilots/paylock/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-jwt-token"

func newTestClient(t *testing.T, handler http.HandlerFunc) api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewHTTPClient(server.URL, server.Client())
	client.SetAuthToken(testToken)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestHTTPClient_Register(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		expectedErrMsg string
	}{
		{
			name:   "Успех",
			status: http.StatusCreated,
		},
		{
			name:           "Имя занято",
			status:         http.StatusConflict,
			body:           "Имя пользователя уже занято",
			expectedErrMsg: "статус 409: Имя пользователя уже занято",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/register", r.URL.Path)
				assert.Empty(t, r.Header.Get("Authorization"))

				var req models.RegisterRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "merchant", req.Username)
				assert.Equal(t, "password123", req.Password)

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body + "\n"))
			})

			err := client.Register(context.Background(), "merchant", "password123")
			if tt.expectedErrMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErrMsg)
		})
	}
}

func TestHTTPClient_Login(t *testing.T) {
	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedToken  string
		expectedErrMsg string
	}{
		{
			name: "Успех",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/login", r.URL.Path)
				writeJSON(t, w, http.StatusOK, models.LoginResponse{Token: "new-token"})
			},
			expectedToken: "new-token",
		},
		{
			name: "Неверные креды",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			expectedErrMsg: "неверное имя пользователя или пароль",
		},
		{
			name: "Пустой токен",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, http.StatusOK, models.LoginResponse{})
			},
			expectedErrMsg: "пустой токен",
		},
		{
			name: "Ошибка сервера",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			},
			expectedErrMsg: "статус 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()
			client := api.NewHTTPClient(server.URL, nil)

			token, err := client.Login(context.Background(), "merchant", "password123")
			if tt.expectedErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedToken, token)
		})
	}
}

func TestHTTPClient_LoginStoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/login" {
			writeJSON(t, w, http.StatusOK, models.LoginResponse{Token: "session-token"})
			return
		}
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, models.ResultResponse{Level: "success", State: "locked"})
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.URL, nil)
	_, err := client.Login(context.Background(), "merchant", "password123")
	require.NoError(t, err)

	res, err := client.Lock(context.Background(), "payments")
	require.NoError(t, err)
	assert.Equal(t, "locked", res.State)
}

func TestHTTPClient_GetConfig(t *testing.T) {
	saved := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/configs/payments/", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, models.ConfigStateResponse{
			Name:          "payments",
			State:         "locked",
			Fields:        models.Fields{{Name: "upiId", Value: "*******bank"}},
			Version:       3,
			LastSavedAt:   &saved,
			Redacted:      true,
			PendingAction: "none",
		})
	})

	state, err := client.GetConfig(context.Background(), "payments")
	require.NoError(t, err)
	assert.Equal(t, "locked", state.State)
	assert.True(t, state.Redacted)
	assert.Equal(t, int64(3), state.Version)
	require.NotNil(t, state.LastSavedAt)
	assert.True(t, saved.Equal(*state.LastSavedAt))
	upi, ok := state.Fields.Get("upiId")
	assert.True(t, ok)
	assert.Equal(t, "*******bank", upi)
}

func TestHTTPClient_SaveAndConfirm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		switch r.URL.Path {
		case "/api/configs/payments/save":
			var req models.SaveConfigRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, models.Fields{{Name: "upiId", Value: "shop@okbank"}}, req.Fields)
			writeJSON(t, w, http.StatusAccepted, models.SaveConfigResponse{
				PendingActionID: "pending-1",
				Result:          models.ResultResponse{Level: "warning", State: "uninitialized"},
			})
		case "/api/configs/payments/confirm":
			var req models.ConfirmSaveRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "pending-1", req.PendingActionID)
			writeJSON(t, w, http.StatusOK, models.ResultResponse{Level: "success", State: "locked", Version: 1})
		default:
			t.Errorf("неожиданный путь %s", r.URL.Path)
		}
	})

	saveResp, err := client.RequestSave(context.Background(), "payments",
		models.Fields{{Name: "upiId", Value: "shop@okbank"}})
	require.NoError(t, err)
	assert.Equal(t, "pending-1", saveResp.PendingActionID)
	assert.Equal(t, "warning", saveResp.Result.Level)

	res, err := client.ConfirmSave(context.Background(), "payments", saveResp.PendingActionID)
	require.NoError(t, err)
	assert.Equal(t, "locked", res.State)
	assert.Equal(t, int64(1), res.Version)
}

func TestHTTPClient_ResultErrors(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		retryAfter      string
		kind            string
		expectedRetry   time.Duration
		expectedErrorIs error
	}{
		{
			name:   "Неверный пароль",
			status: http.StatusForbidden,
			kind:   "auth_failed",
		},
		{
			name:          "Проверка недоступна",
			status:        http.StatusServiceUnavailable,
			retryAfter:    "30",
			kind:          "auth_unavailable",
			expectedRetry: 30 * time.Second,
		},
		{
			name:            "Сессия истекла",
			status:          http.StatusUnauthorized,
			expectedErrorIs: api.ErrAuthorization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/configs/payments/unlock", r.URL.Path)
				var req models.CredentialRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "password123", req.Password)

				if tt.status == http.StatusUnauthorized {
					http.Error(w, "Невалидный токен", tt.status)
					return
				}
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				writeJSON(t, w, tt.status, models.ResultResponse{
					Level:   "error",
					Kind:    tt.kind,
					Message: "отказ",
					State:   "locked",
				})
			})

			_, err := client.Unlock(context.Background(), "payments", "password123")
			require.Error(t, err)

			if tt.expectedErrorIs != nil {
				require.ErrorIs(t, err, tt.expectedErrorIs)
				return
			}
			var resErr *api.ResultError
			require.True(t, errors.As(err, &resErr))
			assert.Equal(t, tt.status, resErr.StatusCode)
			assert.Equal(t, tt.kind, resErr.Result.Kind)
			assert.Equal(t, tt.expectedRetry, resErr.RetryAfter)
			assert.Contains(t, err.Error(), "отказ")
		})
	}
}

func TestHTTPClient_LockAndReset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/configs/payments/lock":
			writeJSON(t, w, http.StatusOK, models.ResultResponse{Level: "success", State: "locked", Version: 2})
		case "/api/configs/payments/reset":
			var req models.CredentialRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "password123", req.Password)
			writeJSON(t, w, http.StatusOK, models.ResultResponse{Level: "success", State: "uninitialized"})
		default:
			t.Errorf("неожиданный путь %s", r.URL.Path)
		}
	})

	res, err := client.Lock(context.Background(), "payments")
	require.NoError(t, err)
	assert.Equal(t, "locked", res.State)

	res, err = client.Reset(context.Background(), "payments", "password123")
	require.NoError(t, err)
	assert.Equal(t, "uninitialized", res.State)
	assert.Equal(t, int64(0), res.Version)
}

func TestHTTPClient_QRImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/configs/payments/qr-image", r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			assert.Equal(t, int64(3), r.ContentLength)
			data, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.Equal(t, "png", string(data))
			writeJSON(t, w, http.StatusCreated, models.QRImageResponse{BlobRef: "qr/payments/1.png"})
		case http.MethodGet:
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png"))
		}
	})

	ref, err := client.UploadQRImage(context.Background(), "payments", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "qr/payments/1.png", ref)

	body, contentType, err := client.DownloadQRImage(context.Background(), "payments")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "image/png", contentType)
}

func TestHTTPClient_DownloadQRImageNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Изображение не найдено", http.StatusNotFound)
	})

	_, _, err := client.DownloadQRImage(context.Background(), "payments")
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestHTTPClient_WithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("Сервер не должен был получить запрос без токена")
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.URL, nil)

	_, err := client.GetConfig(context.Background(), "payments")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "токен аутентификации отсутствует")

	_, err = client.Lock(context.Background(), "payments")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "токен аутентификации отсутствует")
}
