package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
)

// ErrSubscriberFull is returned by Memory.Publish when a subscriber could not take the message.
var ErrSubscriberFull = errors.New("messaging: memory subscriber buffer is full")

// Memory is an in-process bus. Each published message is delivered to one
// subscriber per group (every subscriber without a group gets its own copy).
type Memory struct {
	mu     sync.RWMutex
	subs   map[string][]*memorySub
	seq    atomic.Uint64
	subSeq atomic.Uint64
	closed bool
}

const memoryBufferSize = 64

type memorySub struct {
	id    uint64
	group string
	ch    chan Message
}

// NewMemory returns an empty Memory bus.
func NewMemory() *Memory {
	return &Memory{subs: map[string][]*memorySub{}}
}

// Publish delivers msg to the current subscribers of destination. Messages
// published while nobody is subscribed are dropped. Delivery never blocks: a
// subscriber whose buffer is full misses the message and Publish reports
// ErrSubscriberFull after serving the others.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	targets := lo.UniqBy(m.subs[destination], func(s *memorySub) string {
		if s.group == "" {
			return "\x00" + strconv.FormatUint(s.id, 10)
		}
		return s.group
	})
	m.mu.RUnlock()

	out := Message{
		ID:        strconv.FormatUint(m.seq.Add(1), 10),
		Source:    destination,
		Key:       msg.Key,
		Body:      msg.Body,
		Headers:   msg.Headers,
		Timestamp: time.Now(),
	}

	var err error
	for _, s := range targets {
		select {
		case s.ch <- out:
		default:
			slog.WarnContext(ctx, "memory bus subscriber is full, message dropped",
				"destination", destination, "group", s.group, "id", out.ID)
			err = fmt.Errorf("%w: %s", ErrSubscriberFull, destination)
		}
	}

	return err
}

// Consume registers a subscriber and handles messages until ctx is done.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	sub := &memorySub{id: m.subSeq.Add(1), group: co.group, ch: make(chan Message, memoryBufferSize)}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.subs[source] = append(m.subs[source], sub)
	m.mu.Unlock()

	defer m.unsubscribe(source, sub)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-sub.ch:
					_ = handle(ctx, DriverMemory, handler, msg)
				}
			}
		})
	}
	wg.Wait()

	return ctx.Err()
}

func (m *Memory) unsubscribe(source string, sub *memorySub) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subs[source]
	for i, s := range subs {
		if s == sub {
			m.subs[source] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of live subscribers of source.
func (m *Memory) Subscribers(source string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.subs[source])
}

// Close stops accepting publishes.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	return nil
}
