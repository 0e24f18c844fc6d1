package lock_test

import (
	"context"
	"testing"

	"github.com/salespilots/paylock/internal/lock"
	"github.com/salespilots/paylock/internal/mocks"
	"github.com/salespilots/paylock/internal/services"
	"github.com/salespilots/paylock/internal/storage"
	"github.com/salespilots/paylock/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestMachine_Scenarios проходит базовый сценарий работы с защищённой конфигурацией
// на реальном хранилище: первое сохранение, неверный пароль, правка и сброс.
func TestMachine_Scenarios(t *testing.T) {
	ctx := context.Background()
	const correctPassword = "correct-password"

	records := services.NewConfigRecordStore(storage.NewMemoryStore())
	verifier := mocks.NewVerifier(t)
	verifier.EXPECT().Verify(mock.Anything, testSession, mock.AnythingOfType("string")).
		RunAndReturn(func(_ context.Context, _ lock.Session, credential string) (lock.Verdict, error) {
			if credential == correctPassword {
				return lock.VerdictValid, nil
			}
			return lock.VerdictInvalid, nil
		})
	m := lock.NewMachine(configName, records, verifier)

	saveAndConfirm := func(upiID string) (lock.Result, error) {
		id, _, err := m.RequestSave(ctx, testSession, models.Fields{{Name: lock.FieldUPIID, Value: upiID}})
		if err != nil {
			return lock.Result{}, err
		}
		return m.ConfirmSave(ctx, testSession, id)
	}

	steps := []struct {
		name        string
		run         func() (lock.Result, error)
		wantErr     error
		wantState   lock.State
		wantVersion int64
		wantUPI     string
		wantStored  bool
	}{
		{
			name:        "Первое сохранение a@upi",
			run:         func() (lock.Result, error) { return saveAndConfirm("a@upi") },
			wantState:   lock.StateLocked,
			wantVersion: 1,
			wantUPI:     "a@upi",
			wantStored:  true,
		},
		{
			name:        "Неверный пароль",
			run:         func() (lock.Result, error) { return m.RequestUnlock(ctx, testSession, "wrong-password") },
			wantErr:     lock.ErrAuthFailed,
			wantState:   lock.StateLocked,
			wantVersion: 1,
			wantUPI:     "a@upi",
			wantStored:  true,
		},
		{
			name:        "Верный пароль",
			run:         func() (lock.Result, error) { return m.RequestUnlock(ctx, testSession, correctPassword) },
			wantState:   lock.StateUnlocked,
			wantVersion: 1,
			wantUPI:     "a@upi",
			wantStored:  true,
		},
		{
			name:        "Правка на b@upi",
			run:         func() (lock.Result, error) { return saveAndConfirm("b@upi") },
			wantState:   lock.StateLocked,
			wantVersion: 2,
			wantUPI:     "b@upi",
			wantStored:  true,
		},
		{
			name:      "Сброс",
			run:       func() (lock.Result, error) { return m.RequestReset(ctx, testSession, correctPassword) },
			wantState: lock.StateUninitialized,
		},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			res, err := step.run()
			if step.wantErr != nil {
				require.ErrorIs(t, err, step.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, step.wantState, res.State)
			assert.Equal(t, step.wantVersion, res.Version)

			stored, err := records.Load(ctx, configName)
			if !step.wantStored {
				require.ErrorIs(t, err, lock.ErrRecordNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, step.wantVersion, stored.Version)
			upiID, _ := stored.Fields.Get(lock.FieldUPIID)
			assert.Equal(t, step.wantUPI, upiID)
		})
	}
}
