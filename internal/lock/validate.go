package lock

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/salespilots/paylock/models"
)

// Имена полей платёжной конфигурации витрины.
const (
	FieldUPIID       = "upiId"
	FieldQRCodeURL   = "qrCodeUrl"
	FieldQRImageBlob = "qrImageBlobRef"
)

const maxFieldValueLen = 2048

// upiIDPattern соответствует виртуальному платёжному адресу вида name@handle.
var upiIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,256}@[a-zA-Z][a-zA-Z0-9]{1,63}$`)

// Validator проверяет предложенные поля перед постановкой запроса на сохранение.
type Validator func(fields models.Fields) error

// Chain объединяет валидаторы; возвращается первая ошибка.
func Chain(validators ...Validator) Validator {
	return func(fields models.Fields) error {
		for _, v := range validators {
			if err := v(fields); err != nil {
				return err
			}
		}
		return nil
	}
}

// WellFormed проверяет, что набор не пуст, имена полей заданы, а значения не слишком длинные.
func WellFormed() Validator {
	return func(fields models.Fields) error {
		if len(fields) == 0 {
			return newError(KindValidation, "не переданы поля конфигурации", nil)
		}
		for _, f := range fields {
			if strings.TrimSpace(f.Name) == "" {
				return newError(KindValidation, "имя поля не может быть пустым", nil)
			}
			if len(f.Value) > maxFieldValueLen {
				return newError(KindValidation, fmt.Sprintf("значение поля '%s' слишком длинное", f.Name), nil)
			}
		}
		return nil
	}
}

// RequiredFields проверяет наличие непустых значений обязательных полей.
func RequiredFields(names ...string) Validator {
	return func(fields models.Fields) error {
		for _, name := range names {
			value, ok := fields.Get(name)
			if !ok || strings.TrimSpace(value) == "" {
				return newError(KindValidation, fmt.Sprintf("обязательное поле '%s' не заполнено", name), nil)
			}
		}
		return nil
	}
}

// UPIField проверяет формат UPI-адреса, если поле заполнено.
func UPIField(name string) Validator {
	return func(fields models.Fields) error {
		value, ok := fields.Get(name)
		if !ok || value == "" {
			return nil
		}
		if !upiIDPattern.MatchString(value) {
			return newError(KindValidation, fmt.Sprintf("поле '%s' должно иметь формат name@bank", name), nil)
		}
		return nil
	}
}

// URLField проверяет, что поле содержит абсолютный http(s) URL, если оно заполнено.
func URLField(name string) Validator {
	return func(fields models.Fields) error {
		value, ok := fields.Get(name)
		if !ok || value == "" {
			return nil
		}
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return newError(KindValidation, fmt.Sprintf("поле '%s' должно быть http(s) URL", name), nil)
		}
		return nil
	}
}

// QRImageRefPrefix возвращает префикс объектов изображений QR-кода конфигурации name.
func QRImageRefPrefix(name string) string {
	return "qr/" + name + "/"
}

// OwnsQRImageRef сообщает, указывает ли ref на изображение конфигурации name.
// Допускается только объект непосредственно под префиксом конфигурации.
func OwnsQRImageRef(name, ref string) bool {
	object, ok := strings.CutPrefix(ref, QRImageRefPrefix(name))
	return ok && object != "" && !strings.Contains(object, "/") && !strings.Contains(object, "..")
}

// QRImageRefField проверяет, что ссылка на изображение принадлежит конфигурации config, если поле заполнено.
func QRImageRefField(config, field string) Validator {
	return func(fields models.Fields) error {
		value, ok := fields.Get(field)
		if !ok || value == "" {
			return nil
		}
		if !OwnsQRImageRef(config, value) {
			return newError(KindValidation,
				fmt.Sprintf("поле '%s' должно ссылаться на изображение конфигурации '%s'", field, config), nil)
		}
		return nil
	}
}

// DefaultValidator - правила для платёжной конфигурации витрины.
func DefaultValidator() Validator {
	return Chain(
		WellFormed(),
		RequiredFields(FieldUPIID),
		UPIField(FieldUPIID),
		URLField(FieldQRCodeURL),
	)
}
