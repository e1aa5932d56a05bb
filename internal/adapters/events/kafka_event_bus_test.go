package events

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/pkg/config"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

type fakeReader struct {
	messages  chan kafka.Message
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{messages: make(chan kafka.Message, len(msgs)), done: make(chan struct{})}
	for _, m := range msgs {
		r.messages <- m
	}
	return r
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-r.done:
		return kafka.Message{}, io.EOF
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}

func TestKafkaEventBus_PublishKeysByChannel(t *testing.T) {
	writer := &fakeWriter{}
	bus := newKafkaEventBus(writer, func(string) messageReader { return newFakeReader() })

	event := entities.NewHealthEvent("u1", entities.HealthEventNotificationCreated, map[string]interface{}{"title": "Hi"})
	require.NoError(t, bus.Publish(context.Background(), "phr:user:u1", event))

	require.Len(t, writer.messages, 1)
	assert.Equal(t, "phr:user:u1", string(writer.messages[0].Key))
	var decoded entities.HealthEvent
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, "event_type", writer.messages[0].Headers[0].Key)
}

func TestKafkaEventBus_SubscribeFiltersChannel(t *testing.T) {
	// Arrange
	mine, _ := json.Marshal(entities.HealthEvent{ID: "e1", UserID: "u1"})
	other, _ := json.Marshal(entities.HealthEvent{ID: "e2", UserID: "u2"})
	reader := newFakeReader(
		kafka.Message{Key: []byte("phr:user:u2"), Value: other},
		kafka.Message{Key: []byte("phr:user:u1"), Value: []byte("{broken")},
		kafka.Message{Key: []byte("phr:user:u1"), Value: mine},
	)
	writer := &fakeWriter{}
	bus := newKafkaEventBus(writer, func(string) messageReader { return reader })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Act
	events, err := bus.Subscribe(ctx, "phr:user:u1")
	require.NoError(t, err)

	// Assert
	select {
	case ev := <-events:
		assert.Equal(t, "e1", ev.ID)
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}

	require.NoError(t, bus.Close())
	_, open := <-events
	assert.False(t, open)
	assert.True(t, writer.closed)
}

func TestKafkaEventBus_CancelReleasesReader(t *testing.T) {
	// Arrange
	reader := newFakeReader()
	bus := newKafkaEventBus(&fakeWriter{}, func(string) messageReader { return reader })
	ctx, cancel := context.WithCancel(context.Background())

	events, err := bus.Subscribe(ctx, "phr:user:u1")
	require.NoError(t, err)

	// Act
	cancel()

	// Assert
	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}
	assert.Eventually(t, func() bool {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		return len(bus.readers) == 0
	}, time.Second, 10*time.Millisecond)
	select {
	case <-reader.done:
	default:
		t.Fatal("reader was not closed")
	}
}

func TestReaderConfig(t *testing.T) {
	cfg := config.EventsConfig{
		KafkaBrokers: []string{"kafka:9092"},
		KafkaTopic:   "phr.events",
		KafkaGroupID: "phr-sse",
	}

	rc := readerConfig(cfg, "phr:user:u1")

	assert.Equal(t, kafka.LastOffset, rc.StartOffset)
	assert.Equal(t, "phr-sse.phr:user:u1", rc.GroupID)
	assert.Equal(t, "phr.events", rc.Topic)
	assert.Equal(t, []string{"kafka:9092"}, rc.Brokers)
}
