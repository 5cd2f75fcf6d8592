package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// ErrNATSURLRequired is returned when the NATS server URL is missing.
var ErrNATSURLRequired = errors.New("messaging: nats url is required")

// NATSConfig configures the NATS implementation.
type NATSConfig struct {
	// URL is the NATS server address.
	URL string
	// Options are passed to the NATS client.
	Options []nats.Option
}

// NATS is a messaging implementation backed by core NATS.
type NATS struct {
	conn *nats.Conn

	mu     sync.Mutex
	closed bool
}

// NewNATS connects to the NATS server.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

// Close drains the connection.
func (n *NATS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true

	return n.conn.Drain()
}

// Publish sends a message to a NATS subject and flushes it to the server.
func (n *NATS) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	nmsg := nats.NewMsg(destination)
	nmsg.Data = msg.Body
	for k, v := range msg.Headers {
		nmsg.Header.Set(k, v)
	}

	if err := n.conn.PublishMsg(nmsg); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}

	if err := n.flush(ctx); err != nil {
		return fmt.Errorf("messaging: nats flush: %w", err)
	}

	return nil
}

func (n *NATS) flush(ctx context.Context) error {
	if _, ok := ctx.Deadline(); ok {
		return n.conn.FlushWithContext(ctx)
	}
	return n.conn.FlushTimeout(5 * time.Second)
}

// Consume subscribes to source (in the queue group, if set) and dispatches
// messages to concurrency workers until ctx is done.
func (n *NATS) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	n.mu.Lock()
	closed := n.closed
	n.mu.Unlock()
	if closed {
		return ErrClosed
	}

	co := newConsumeOptions(opts...)
	msgCh := make(chan *nats.Msg, co.concurrency)

	sub, err := n.conn.QueueSubscribe(source, co.group, func(m *nats.Msg) {
		select {
		case msgCh <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for m := range msgCh {
				_ = handle(ctx, DriverNATS, handler, natsMessage(m))
			}
		})
	}

	<-ctx.Done()

	derr := sub.Drain()
	close(msgCh)
	wg.Wait()

	return errors.Join(ctx.Err(), derr)
}

func natsMessage(m *nats.Msg) Message {
	headers := make(map[string]string, len(m.Header))
	for k := range m.Header {
		headers[k] = m.Header.Get(k)
	}

	return Message{
		ID:        m.Header.Get(nats.MsgIdHdr),
		Source:    m.Subject,
		Body:      m.Data,
		Headers:   headers,
		Timestamp: time.Now(),
	}
}
