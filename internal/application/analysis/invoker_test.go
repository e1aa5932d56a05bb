package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
	"github.com/zatekoja/phr/backend/pkg/retry"
)

func TestInvoker_Invoke(t *testing.T) {
	t.Run("always failing model is attempted three times with doubling waits", func(t *testing.T) {
		// Arrange
		model := new(MockGenerativeModel)
		model.On("GenerateText", mock.Anything, "prompt").Return("", errUpstream)
		rec := &sleepRecorder{}
		inv := NewInvoker(model, testPolicy(rec), nil, Limits{})

		// Act
		out := inv.Invoke(context.Background(), "op", "prompt", nil)

		// Assert
		model.AssertNumberOfCalls(t, "GenerateText", 3)
		assert.Equal(t, 3, out.Attempts)
		assert.False(t, out.Success)
		assert.True(t, out.Fallback)
		assert.Equal(t, KindServiceUnavailable, out.Kind)
		assert.Equal(t, "AI service unavailable after 3 attempts: upstream exploded", out.Message)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, retry.Schedule(testPolicy(rec)))
	})

	t.Run("succeeds after a transient failure", func(t *testing.T) {
		model := new(MockGenerativeModel)
		model.On("GenerateText", mock.Anything, "prompt").Return("", errUpstream).Once()
		model.On("GenerateText", mock.Anything, "prompt").Return("ok", nil).Once()
		rec := &sleepRecorder{}
		inv := NewInvoker(model, testPolicy(rec), nil, Limits{})

		out := inv.Invoke(context.Background(), "op", "prompt", nil)

		assert.True(t, out.Success)
		assert.False(t, out.Fallback)
		assert.Equal(t, "ok", out.Text)
		assert.Equal(t, 2, out.Attempts)
		assert.Equal(t, []time.Duration{time.Second}, rec.delays)
	})

	t.Run("nil model short-circuits without attempts", func(t *testing.T) {
		sink := &recordingSink{}
		inv := NewInvoker(nil, testPolicy(&sleepRecorder{}), sink, Limits{})

		out := inv.Invoke(context.Background(), "op", "prompt", nil)

		assert.False(t, inv.Available())
		assert.Equal(t, 0, out.Attempts)
		assert.Equal(t, KindServiceUnavailable, out.Kind)
		assert.True(t, out.Fallback)
		require.Len(t, sink.snapshot(), 1)
		assert.Equal(t, OutcomeUnavailable, sink.snapshot()[0].Outcome)
	})

	t.Run("oversized attachment is rejected before any call", func(t *testing.T) {
		model := new(MockGenerativeModel)
		inv := NewInvoker(model, testPolicy(&sleepRecorder{}), nil, Limits{MaxUploadBytes: 4})

		out := inv.Invoke(context.Background(), "op", "prompt", &providers.Attachment{Data: []byte("too long")})

		model.AssertNotCalled(t, "GenerateWithAttachment", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, KindInputRejected, out.Kind)
		assert.Equal(t, 0, out.Attempts)
		assert.ErrorIs(t, out.Err, providers.ErrAttachmentTooLarge)
	})

	t.Run("blocked prompt is not retried", func(t *testing.T) {
		model := new(MockGenerativeModel)
		model.On("GenerateText", mock.Anything, "prompt").
			Return("", fmt.Errorf("%w: SAFETY", providers.ErrModelBlocked))
		rec := &sleepRecorder{}
		inv := NewInvoker(model, testPolicy(rec), nil, Limits{})

		out := inv.Invoke(context.Background(), "op", "prompt", nil)

		model.AssertNumberOfCalls(t, "GenerateText", 1)
		assert.Equal(t, KindInputRejected, out.Kind)
		assert.Empty(t, rec.delays)
	})

	t.Run("rejected input is logged as rejected", func(t *testing.T) {
		sink := &recordingSink{}
		inv := NewInvoker(new(MockGenerativeModel), testPolicy(&sleepRecorder{}), sink, Limits{MaxUploadBytes: 1})

		inv.Invoke(context.Background(), "op", "prompt", &providers.Attachment{Data: []byte("xx")})

		require.Len(t, sink.snapshot(), 1)
		assert.Equal(t, OutcomeRejected, sink.snapshot()[0].Outcome)
	})

	t.Run("unauthorized is not retried", func(t *testing.T) {
		model := new(MockGenerativeModel)
		model.On("GenerateText", mock.Anything, "prompt").Return("", providers.ErrModelUnauthorized)
		inv := NewInvoker(model, testPolicy(&sleepRecorder{}), nil, Limits{})

		out := inv.Invoke(context.Background(), "op", "prompt", nil)

		model.AssertNumberOfCalls(t, "GenerateText", 1)
		assert.Equal(t, KindServiceUnavailable, out.Kind)
		assert.Equal(t, 1, out.Attempts)
	})

	t.Run("logs each retry and the final outcome", func(t *testing.T) {
		model := new(MockGenerativeModel)
		model.On("GenerateText", mock.Anything, "prompt").Return("", errUpstream)
		sink := &recordingSink{}
		inv := NewInvoker(model, testPolicy(&sleepRecorder{}), sink, Limits{})

		inv.Invoke(context.Background(), "summarize", "prompt", nil)

		events := sink.snapshot()
		require.Len(t, events, 3)
		assert.Equal(t, OutcomeRetry, events[0].Outcome)
		assert.Equal(t, OutcomeRetry, events[1].Outcome)
		assert.Equal(t, OutcomeExhausted, events[2].Outcome)
		for _, e := range events {
			assert.Equal(t, "summarize", e.Operation)
			assert.False(t, e.Start.IsZero())
		}
	})
}

func TestAsyncLogSink(t *testing.T) {
	t.Run("never blocks when the buffer is full", func(t *testing.T) {
		sink := &AsyncLogSink{logger: zerolog.Nop(), events: make(chan InvocationEvent, 1)}

		done := make(chan struct{})
		go func() {
			for i := 0; i < 5; i++ {
				sink.Record(InvocationEvent{Operation: "op"})
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Record blocked")
		}
		assert.Equal(t, int64(4), sink.Dropped())
	})

	t.Run("record after close does not panic", func(t *testing.T) {
		sink := NewAsyncLogSink(zerolog.Nop(), 8)
		sink.Close()

		assert.NotPanics(t, func() { sink.Record(InvocationEvent{Operation: "late"}) })
		assert.Equal(t, int64(1), sink.Dropped())
	})

	t.Run("concurrent record and close", func(t *testing.T) {
		sink := NewAsyncLogSink(zerolog.Nop(), 4)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					sink.Record(InvocationEvent{Operation: "op"})
				}
			}()
		}
		sink.Close()
		wg.Wait()
	})

	t.Run("writes outcome and duration_ms", func(t *testing.T) {
		var buf bytes.Buffer
		sink := NewAsyncLogSink(zerolog.New(&buf), 4)
		sink.Record(InvocationEvent{
			Operation: "summarize_records",
			Duration:  1500 * time.Millisecond,
			Attempt:   3,
			Outcome:   OutcomeExhausted,
		})
		sink.Close()

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "exhausted", line["outcome"])
		assert.Equal(t, float64(1500), line["duration_ms"])
		assert.Equal(t, "summarize_records", line["operation"])
		assert.Equal(t, "warn", line["level"])
	})

	t.Run("close drains pending events", func(t *testing.T) {
		sink := NewAsyncLogSink(zerolog.Nop(), 8)
		sink.Record(InvocationEvent{Operation: "op", Outcome: OutcomeSuccess})
		sink.Close()
		sink.Close()
		assert.Equal(t, int64(0), sink.Dropped())
	})
}

func TestMetricsSink(t *testing.T) {
	t.Run("records and forwards every event", func(t *testing.T) {
		metrics, err := observability.InitMetrics()
		require.NoError(t, err)
		next := &recordingSink{}
		sink := NewMetricsSink(metrics, next)

		sink.Record(InvocationEvent{Operation: "analyze_symptoms", Outcome: OutcomeSuccess, Duration: time.Millisecond})

		require.Len(t, next.snapshot(), 1)
		assert.Equal(t, "analyze_symptoms", next.snapshot()[0].Operation)
	})

	t.Run("tolerates missing metrics and next", func(t *testing.T) {
		sink := NewMetricsSink(nil, nil)
		assert.NotPanics(t, func() { sink.Record(InvocationEvent{Operation: "op"}) })
	})
}
