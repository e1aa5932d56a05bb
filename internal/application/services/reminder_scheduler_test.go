package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/phr/backend/internal/application/services"
)

type MockReminderJobs struct {
	mock.Mock
}

func (m *MockReminderJobs) SendMedicineReminders(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockReminderJobs) SendAppointmentReminders(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockReminderJobs) CleanupOld(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestReminderScheduler_RunOnce(t *testing.T) {
	t.Run("runs every job even when one fails", func(t *testing.T) {
		// Arrange
		jobs := new(MockReminderJobs)
		scheduler := services.NewReminderScheduler(jobs, time.Minute, fixedClock)

		jobs.On("SendMedicineReminders", mock.Anything, fixedNow).Return(0, errors.New("db down"))
		jobs.On("SendAppointmentReminders", mock.Anything, fixedNow).Return(2, nil)
		jobs.On("CleanupOld", mock.Anything, fixedNow).Return(int64(0), nil)

		// Act
		scheduler.RunOnce(context.Background())

		// Assert
		jobs.AssertExpectations(t)
	})
}

func TestReminderScheduler_Start(t *testing.T) {
	t.Run("stops when the context is cancelled", func(t *testing.T) {
		// Arrange
		jobs := new(MockReminderJobs)
		scheduler := services.NewReminderScheduler(jobs, 10*time.Millisecond, fixedClock)

		jobs.On("SendMedicineReminders", mock.Anything, mock.Anything).Return(0, nil)
		jobs.On("SendAppointmentReminders", mock.Anything, mock.Anything).Return(0, nil)
		jobs.On("CleanupOld", mock.Anything, mock.Anything).Return(int64(0), nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		// Act
		go func() {
			scheduler.Start(ctx)
			close(done)
		}()
		time.Sleep(35 * time.Millisecond)
		cancel()

		// Assert
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop")
		}
		assert.GreaterOrEqual(t, len(jobs.Calls), 6)
	})
}
