package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/phr/backend/pkg/retry"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func TestSchedule(t *testing.T) {
	cfg := retry.Config{MaxAttempts: 3, InitialDelay: time.Second, BackoffFactor: 2}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, retry.Schedule(cfg))

	capped := retry.Config{MaxAttempts: 4, InitialDelay: time.Second, BackoffFactor: 3, MaxDelay: 5 * time.Second}
	assert.Equal(t, []time.Duration{time.Second, 3 * time.Second, 5 * time.Second, 5 * time.Second}, retry.Schedule(capped))

	assert.Empty(t, retry.Schedule(retry.Config{}))
}

func TestDo(t *testing.T) {
	t.Run("stops after max attempts and waits between them", func(t *testing.T) {
		sleeper := &recordingSleeper{}
		cfg := retry.Config{MaxAttempts: 3, InitialDelay: time.Second, BackoffFactor: 2, Sleep: sleeper.Sleep}

		calls := 0
		err := retry.Do(context.Background(), cfg, func() error {
			calls++
			return errors.New("boom")
		})

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.waits)
		assert.Contains(t, err.Error(), "max retry attempts (3) exceeded: boom")
	})

	t.Run("returns nil on eventual success", func(t *testing.T) {
		sleeper := &recordingSleeper{}
		cfg := retry.Config{MaxAttempts: 5, InitialDelay: time.Millisecond, BackoffFactor: 2, Sleep: sleeper.Sleep}

		calls := 0
		err := retry.Do(context.Background(), cfg, func() error {
			calls++
			if calls < 2 {
				return errors.New("transient")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Len(t, sleeper.waits, 1)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		sleeper := &recordingSleeper{}
		cfg := retry.Config{MaxAttempts: 3, InitialDelay: time.Second, BackoffFactor: 2, Sleep: sleeper.Sleep}
		cause := errors.New("too large")

		calls := 0
		err := retry.Do(context.Background(), cfg, func() error {
			calls++
			return retry.Permanent(cause)
		})

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 1, calls)
		assert.Empty(t, sleeper.waits)
	})

	t.Run("aborts when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := retry.Do(ctx, retry.Config{MaxAttempts: 3, InitialDelay: time.Second}, func() error {
			return errors.New("never called")
		})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDoWithLog(t *testing.T) {
	sleeper := &recordingSleeper{}
	cfg := retry.Config{MaxAttempts: 3, InitialDelay: time.Second, BackoffFactor: 2, Sleep: sleeper.Sleep}

	var logged []int
	err := retry.DoWithLog(context.Background(), cfg, "gemini", func() error {
		return errors.New("unavailable")
	}, func(attempt int, err error, nextDelay time.Duration) {
		logged = append(logged, attempt)
	})

	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, logged)
	assert.Contains(t, err.Error(), "gemini: max retry attempts (3) exceeded")
}
