package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	"github.com/zatekoja/phr/backend/pkg/config"
)

// messageWriter is the part of *kafka.Writer the bus needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader is the part of *kafka.Reader the bus needs
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaEventBus implements EventBus on a single Kafka topic. The logical
// channel travels as the message key; subscribers only see their channel.
type KafkaEventBus struct {
	writer    messageWriter
	newReader func(channel string) messageReader

	mu      sync.Mutex
	readers map[string][]messageReader
	wg      sync.WaitGroup
}

// NewKafkaEventBus creates a Kafka-backed event bus
func NewKafkaEventBus(cfg config.EventsConfig) *KafkaEventBus {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	newReader := func(channel string) messageReader {
		return kafka.NewReader(readerConfig(cfg, channel))
	}
	return newKafkaEventBus(writer, newReader)
}

// readerConfig starts a fresh group at the tail so a first subscription does
// not replay the retained topic as live notifications
func readerConfig(cfg config.EventsConfig, channel string) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic,
		GroupID:     cfg.KafkaGroupID + "." + channel,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	}
}

func newKafkaEventBus(writer messageWriter, newReader func(channel string) messageReader) *KafkaEventBus {
	return &KafkaEventBus{
		writer:    writer,
		newReader: newReader,
		readers:   make(map[string][]messageReader),
	}
}

// Publish writes the event keyed by channel
func (b *KafkaEventBus) Publish(ctx context.Context, channel string, event *entities.HealthEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(channel),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe starts a reader for the channel until ctx is done or the bus closes
func (b *KafkaEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.HealthEvent, error) {
	reader := b.newReader(channel)

	b.mu.Lock()
	b.readers[channel] = append(b.readers[channel], reader)
	b.mu.Unlock()

	out := make(chan *entities.HealthEvent, subscriberBuffer)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(out)
		b.consume(ctx, channel, reader, out)
		b.release(channel, reader)
	}()
	return out, nil
}

// release forgets a reader whose subscriber has gone away
func (b *KafkaEventBus) release(channel string, reader messageReader) {
	b.mu.Lock()
	readers := b.readers[channel]
	found := false
	for i, r := range readers {
		if r == reader {
			readers = append(readers[:i], readers[i+1:]...)
			found = true
			break
		}
	}
	if len(readers) == 0 {
		delete(b.readers, channel)
	} else {
		b.readers[channel] = readers
	}
	b.mu.Unlock()

	if found {
		if err := reader.Close(); err != nil {
			log.Debug().Err(err).Str("channel", channel).Msg("Kafka reader close failed")
		}
	}
}

func (b *KafkaEventBus) consume(ctx context.Context, channel string, reader messageReader, out chan<- *entities.HealthEvent) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
				log.Warn().Err(err).Str("channel", channel).Msg("Kafka reader stopped")
			}
			return
		}
		if string(msg.Key) != channel {
			continue
		}

		var event entities.HealthEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("Failed to unmarshal event")
			continue
		}

		select {
		case out <- &event:
		case <-ctx.Done():
			return
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber channel full, skipping event")
		}
	}
}

// Unsubscribe closes every reader of the channel
func (b *KafkaEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	readers := b.readers[channel]
	delete(b.readers, channel)
	b.mu.Unlock()

	var errs []error
	for _, r := range readers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes all readers and the writer
func (b *KafkaEventBus) Close() error {
	b.mu.Lock()
	channels := make([]string, 0, len(b.readers))
	for channel := range b.readers {
		channels = append(channels, channel)
	}
	b.mu.Unlock()

	var errs []error
	for _, channel := range channels {
		if err := b.Unsubscribe(context.Background(), channel); err != nil {
			errs = append(errs, err)
		}
	}
	b.wg.Wait()
	if err := b.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var _ providers.EventBus = (*KafkaEventBus)(nil)
