package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrDestinationRequired is returned when the topic/subject is empty.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrClosed is returned when the client was closed.
	ErrClosed = errors.New("messaging: client is closed")
)

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) error
}

// Consumer consumes messages from a source. Consume blocks until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte
	// Key is used by Kafka for partitioning; ignored elsewhere.
	Key []byte
	// Headers are string metadata (correlation id, content type).
	Headers map[string]string
}

// Message is a received message.
type Message struct {
	ID        string
	Source    string
	Key       []byte
	Body      []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Header returns the header value for key.
func (m Message) Header(key string) string {
	return m.Headers[key]
}
