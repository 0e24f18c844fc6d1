package services

import "time"

// SetClock подменяет источник времени верификатора.
func (v *CredentialVerifier) SetClock(now func() time.Time) {
	v.now = now
}

// TrackedUsers возвращает число пользователей с активным лимитером.
func (v *CredentialVerifier) TrackedUsers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.limiters)
}
