package messaging

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	// ErrKafkaBrokersRequired is returned when no Kafka brokers are configured.
	ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")
	// ErrKafkaGroupRequired is returned when Consume is called without a group.
	ErrKafkaGroupRequired = errors.New("messaging: kafka consumer group is required")
)

// KafkaConfig configures the Kafka implementation.
type KafkaConfig struct {
	// Brokers lists Kafka broker addresses.
	Brokers []string
	// WriteTimeout bounds a single publish.
	WriteTimeout time.Duration
}

// Kafka is a messaging implementation backed by kafka-go.
type Kafka struct {
	brokers      []string
	writeTimeout time.Duration

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers []*kafka.Reader
	closed  bool
}

// NewKafka constructs a Kafka messaging client. Connections are opened lazily.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	wt := cfg.WriteTimeout
	if wt <= 0 {
		wt = 10 * time.Second
	}

	return &Kafka{
		brokers:      append([]string{}, cfg.Brokers...),
		writeTimeout: wt,
		writers:      map[string]*kafka.Writer{},
	}, nil
}

// Close shuts down all Kafka readers and writers.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	writers, readers := k.writers, k.readers
	k.writers, k.readers = nil, nil
	k.mu.Unlock()

	var closeErr error
	for _, r := range readers {
		closeErr = errors.Join(closeErr, r.Close())
	}
	for _, w := range writers {
		closeErr = errors.Join(closeErr, w.Close())
	}
	return closeErr
}

// Publish writes a message to a Kafka topic.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	writer, err := k.writer(destination)
	if err != nil {
		return err
	}

	kmsg := kafka.Message{Key: msg.Key, Value: msg.Body, Time: time.Now()}
	for key, v := range msg.Headers {
		kmsg.Headers = append(kmsg.Headers, kafka.Header{Key: key, Value: []byte(v)})
	}

	if err := writer.WriteMessages(ctx, kmsg); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}

	return nil
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrClosed
	}

	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(k.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           k.writeTimeout,
		AllowAutoTopicCreation: true,
	}
	k.writers[topic] = w

	return w, nil
}

// Consume reads source as a member of the consumer group and commits each
// message after its handler returns.
func (k *Kafka) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	if co.group == "" {
		return ErrKafkaGroupRequired
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.brokers,
		GroupID:  co.group,
		Topic:    source,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return errors.Join(ErrClosed, reader.Close())
	}
	k.readers = append(k.readers, reader)
	k.mu.Unlock()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("messaging: kafka fetch: %w", err)
		}

		_ = handle(ctx, DriverKafka, handler, kafkaMessage(m))

		if err := reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			return fmt.Errorf("messaging: kafka commit: %w", err)
		}
	}
}

func kafkaMessage(m kafka.Message) Message {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}

	return Message{
		ID:        m.Topic + "/" + strconv.Itoa(m.Partition) + "/" + strconv.FormatInt(m.Offset, 10),
		Source:    m.Topic,
		Key:       m.Key,
		Body:      m.Value,
		Headers:   headers,
		Timestamp: m.Time,
	}
}
