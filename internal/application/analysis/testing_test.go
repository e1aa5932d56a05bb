package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/pkg/retry"
)

// MockGenerativeModel is a mock implementation of providers.GenerativeModel
type MockGenerativeModel struct {
	mock.Mock
}

func (m *MockGenerativeModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerativeModel) GenerateWithAttachment(ctx context.Context, prompt string, attachment providers.Attachment) (string, error) {
	args := m.Called(ctx, prompt, attachment)
	return args.String(0), args.Error(1)
}

// recordingSink collects events synchronously
type recordingSink struct {
	mu     sync.Mutex
	events []InvocationEvent
}

func (s *recordingSink) Record(e InvocationEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) snapshot() []InvocationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]InvocationEvent, len(s.events))
	copy(out, s.events)
	return out
}

// sleepRecorder replaces real waits and remembers the requested delays
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func testPolicy(rec *sleepRecorder) retry.Config {
	return retry.Config{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2,
		Sleep:         rec.sleep,
	}
}

var errUpstream = errors.New("upstream exploded")
