package lock

import "strings"

const visibleTail = 4

// Redacted возвращает снимок со скрытыми значениями полей.
// Пока конфигурация не разблокирована, значения показываются только частично.
func (s Snapshot) Redacted() Snapshot {
	if s.Record == nil || s.State == StateUnlocked {
		return s
	}
	rec := s.Record.Clone()
	for i := range rec.Fields {
		rec.Fields[i].Value = maskValue(rec.Fields[i].Value)
	}
	s.Record = rec
	s.LastSavedAt = rec.LastSavedAt
	return s
}

// maskValue оставляет видимыми последние символы значения.
// Короткие значения скрываются полностью.
func maskValue(v string) string {
	runes := []rune(v)
	if len(runes) <= visibleTail*2 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-visibleTail) + string(runes[len(runes)-visibleTail:])
}
