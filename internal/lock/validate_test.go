package lock_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/salespilots/paylock/internal/lock"
	"github.com/salespilots/paylock/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidator(t *testing.T) {
	validate := lock.DefaultValidator()

	tests := []struct {
		name    string
		fields  models.Fields
		wantErr string
	}{
		{
			name: "Корректная конфигурация",
			fields: models.Fields{
				{Name: lock.FieldUPIID, Value: "shop.name-1@okaxis"},
				{Name: lock.FieldQRCodeURL, Value: "https://pay.example.com/qr"},
				{Name: lock.FieldQRImageBlob, Value: "qr/payments/1.png"},
			},
		},
		{
			name:   "Только UPI",
			fields: models.Fields{{Name: lock.FieldUPIID, Value: "shop@ybl"}},
		},
		{
			name:    "Пустой набор",
			fields:  models.Fields{},
			wantErr: "не переданы поля",
		},
		{
			name:    "Пустое имя поля",
			fields:  models.Fields{{Name: " ", Value: "x"}, {Name: lock.FieldUPIID, Value: "shop@ybl"}},
			wantErr: "имя поля не может быть пустым",
		},
		{
			name:    "Нет UPI",
			fields:  models.Fields{{Name: lock.FieldQRCodeURL, Value: "https://pay.example.com"}},
			wantErr: "обязательное поле 'upiId'",
		},
		{
			name:    "UPI из пробелов",
			fields:  models.Fields{{Name: lock.FieldUPIID, Value: "   "}},
			wantErr: "обязательное поле 'upiId'",
		},
		{
			name:    "UPI без handle",
			fields:  models.Fields{{Name: lock.FieldUPIID, Value: "shop"}},
			wantErr: "формат name@bank",
		},
		{
			name:    "UPI с цифрой в начале handle",
			fields:  models.Fields{{Name: lock.FieldUPIID, Value: "shop@1bank"}},
			wantErr: "формат name@bank",
		},
		{
			name: "URL без схемы",
			fields: models.Fields{
				{Name: lock.FieldUPIID, Value: "shop@ybl"},
				{Name: lock.FieldQRCodeURL, Value: "pay.example.com/qr"},
			},
			wantErr: "http(s) URL",
		},
		{
			name: "URL со схемой ftp",
			fields: models.Fields{
				{Name: lock.FieldUPIID, Value: "shop@ybl"},
				{Name: lock.FieldQRCodeURL, Value: "ftp://pay.example.com/qr"},
			},
			wantErr: "http(s) URL",
		},
		{
			name: "Слишком длинное значение",
			fields: models.Fields{
				{Name: lock.FieldUPIID, Value: "shop@ybl"},
				{Name: "note", Value: strings.Repeat("x", 2049)},
			},
			wantErr: "слишком длинное",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.fields)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.ErrorIs(t, err, lock.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestChain_StopsAtFirstError(t *testing.T) {
	calls := 0
	first := func(models.Fields) error {
		calls++
		return errors.New("first")
	}
	second := func(models.Fields) error {
		calls++
		return nil
	}

	err := lock.Chain(first, second)(nil)
	require.EqualError(t, err, "first")
	assert.Equal(t, 1, calls)
}

func TestQRImageRefField(t *testing.T) {
	validate := lock.QRImageRefField("shop-a", lock.FieldQRImageBlob)

	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{name: "Своё изображение", ref: "qr/shop-a/3f0c.png"},
		{name: "Пустая ссылка", ref: ""},
		{name: "Изображение другой конфигурации", ref: "qr/shop-b/victim.png", wantErr: true},
		{name: "Общий префикс имени", ref: "qr/shop-ab/1.png", wantErr: true},
		{name: "Выход из каталога", ref: "qr/shop-a/../shop-b/victim.png", wantErr: true},
		{name: "Вложенный путь", ref: "qr/shop-a/nested/1.png", wantErr: true},
		{name: "Только префикс", ref: "qr/shop-a/", wantErr: true},
		{name: "Произвольный объект", ref: "vaults/1.kdbx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := models.Fields{
				{Name: lock.FieldUPIID, Value: "shop@ybl"},
				{Name: lock.FieldQRImageBlob, Value: tt.ref},
			}
			err := validate(fields)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, lock.ErrValidation)
			assert.Contains(t, err.Error(), "shop-a")
		})
	}

	t.Run("Поле отсутствует", func(t *testing.T) {
		require.NoError(t, validate(models.Fields{{Name: lock.FieldUPIID, Value: "shop@ybl"}}))
	})
}
