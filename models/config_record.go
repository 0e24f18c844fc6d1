package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Field представляет одно именованное строковое значение защищённой конфигурации.
type Field struct {
	Name  string
	Value string
}

// Fields - упорядоченный набор полей конфигурации.
// В JSON сериализуется как объект с сохранением порядка ключей.
type Fields []Field

// Get возвращает значение поля по имени.
func (f Fields) Get(name string) (string, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// Set возвращает набор с установленным значением поля.
// Существующее поле сохраняет свою позицию, новое добавляется в конец.
func (f Fields) Set(name, value string) Fields {
	for i := range f {
		if f[i].Name == name {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Name: name, Value: value})
}

// Clone возвращает независимую копию набора.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	copy(out, f)
	return out
}

// Equal сравнивает наборы с учётом порядка полей.
func (f Fields) Equal(other Fields) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON кодирует набор как JSON-объект в порядке полей.
func (f Fields) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON декодирует JSON-объект, сохраняя порядок ключей.
// Повторяющийся ключ перезаписывает значение на месте первого вхождения.
func (f *Fields) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("поля конфигурации должны быть JSON-объектом")
	}

	out := Fields{}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("неожиданный ключ поля: %v", tok)
		}
		var value string
		if err = dec.Decode(&value); err != nil {
			return fmt.Errorf("поле '%s' должно быть строкой: %w", name, err)
		}
		out = out.Set(name, value)
	}
	if _, err = dec.Token(); err != nil {
		return err
	}

	*f = out
	return nil
}

// ConfigurationRecord представляет сохранённую защищённую конфигурацию (например, платёжные реквизиты).
type ConfigurationRecord struct {
	Name        string     `json:"name"`
	Fields      Fields     `json:"fields"`
	LastSavedAt *time.Time `json:"last_saved_at,omitempty"` // Устанавливается только при успешном сохранении
	Version     int64      `json:"version"`                 // Увеличивается при каждом сохранении
}

// Clone возвращает глубокую копию записи.
func (r *ConfigurationRecord) Clone() *ConfigurationRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Fields = r.Fields.Clone()
	if r.LastSavedAt != nil {
		ts := *r.LastSavedAt
		out.LastSavedAt = &ts
	}
	return &out
}
