package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/infrastructure/observability"
)

// Invocation outcomes as logged and exported as metric attributes
const (
	OutcomeSuccess     = "success"
	OutcomeRetry       = "retry"
	OutcomeExhausted   = "exhausted"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
)

// InvocationEvent describes one model call or retry step
type InvocationEvent struct {
	Operation string
	Start     time.Time
	Duration  time.Duration
	Attempt   int
	Outcome   string
	Kind      entities.FallbackKind
	Delay     time.Duration
	Err       error
}

// LogSink receives invocation events. Record must not block.
type LogSink interface {
	Record(event InvocationEvent)
}

// NopSink discards events
type NopSink struct{}

// Record implements LogSink
func (NopSink) Record(InvocationEvent) {}

// AsyncLogSink hands events to a background goroutine that writes them with
// zerolog. Events are dropped when the buffer is full.
type AsyncLogSink struct {
	logger  zerolog.Logger
	events  chan InvocationEvent
	dropped atomic.Int64
	wg      sync.WaitGroup

	// mu guards closed; Record holds it shared so Close cannot close the
	// channel under a send
	mu     sync.RWMutex
	closed bool
}

// NewAsyncLogSink starts the drain goroutine
func NewAsyncLogSink(logger zerolog.Logger, buffer int) *AsyncLogSink {
	if buffer <= 0 {
		buffer = 256
	}
	s := &AsyncLogSink{
		logger: logger,
		events: make(chan InvocationEvent, buffer),
	}
	s.wg.Add(1)
	go s.drain()
	return s
}

// Record implements LogSink. Events recorded after Close are dropped.
func (s *AsyncLogSink) Record(event InvocationEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.events <- event:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded
func (s *AsyncLogSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close flushes pending events and stops the drain goroutine
func (s *AsyncLogSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *AsyncLogSink) drain() {
	defer s.wg.Done()
	for event := range s.events {
		var e *zerolog.Event
		switch event.Outcome {
		case OutcomeSuccess:
			e = s.logger.Debug()
		case OutcomeRetry:
			e = s.logger.Info()
		default:
			e = s.logger.Warn()
		}
		e = e.Str("operation", event.Operation).
			Time("started_at", event.Start).
			Int64("duration_ms", event.Duration.Milliseconds()).
			Int("attempt", event.Attempt).
			Str("outcome", event.Outcome)
		if event.Kind != entities.FallbackNone {
			e = e.Str("fallback_kind", string(event.Kind))
		}
		if event.Delay > 0 {
			e = e.Int64("next_delay_ms", event.Delay.Milliseconds())
		}
		if event.Err != nil {
			e = e.Err(event.Err)
		}
		e.Msg("AI invocation")
	}
}

// MetricsSink records the duration of every invocation attempt as an
// OpenTelemetry histogram and forwards the event to next
type MetricsSink struct {
	metrics *observability.Metrics
	next    LogSink
}

// NewMetricsSink wraps next. A nil next discards events after recording.
func NewMetricsSink(metrics *observability.Metrics, next LogSink) *MetricsSink {
	if next == nil {
		next = NopSink{}
	}
	return &MetricsSink{metrics: metrics, next: next}
}

// Record implements LogSink
func (s *MetricsSink) Record(event InvocationEvent) {
	if s.metrics != nil {
		observability.RecordModelCall(context.Background(), s.metrics, event.Operation, event.Outcome, event.Duration)
	}
	s.next.Record(event)
}
