package lock_test

import (
	"testing"

	"github.com/salespilots/paylock/internal/lock"
	"github.com/salespilots/paylock/models"
	"github.com/stretchr/testify/assert"
)

func TestPendingBuffer(t *testing.T) {
	var buf lock.PendingBuffer

	assert.Equal(t, lock.PendingNone, buf.Peek().Kind, "пустой буфер")

	fields := models.Fields{{Name: "upiId", Value: "a@bank"}}
	buf.Set(lock.PendingAction{Kind: lock.PendingSave, ID: "1", Fields: fields})
	fields[0].Value = "changed@bank"

	got := buf.Peek()
	assert.Equal(t, lock.PendingSave, got.Kind)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "a@bank", got.Fields[0].Value, "буфер хранит копию полей")

	got.Fields[0].Value = "peeked@bank"
	assert.Equal(t, "a@bank", buf.Peek().Fields[0].Value, "Peek возвращает копию")

	buf.Set(lock.PendingAction{Kind: lock.PendingUnlock, ID: "2"})
	assert.Equal(t, lock.PendingUnlock, buf.Peek().Kind, "новое действие заменяет старое")
	assert.Nil(t, buf.Peek().Fields)

	buf.Clear()
	assert.Equal(t, lock.PendingNone, buf.Peek().Kind)
	assert.Empty(t, buf.Peek().ID)
}
