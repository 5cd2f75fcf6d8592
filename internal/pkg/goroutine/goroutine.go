// Package goroutine runs background work with a concurrency cap, panic recovery
// and a single Wait for graceful shutdown.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/storefront/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrLimitReached is returned by TryGo when every slot is busy.
var ErrLimitReached = errors.New("goroutine limit reached")

// ErrClosed is returned by TryGo after Wait was called.
var ErrClosed = errors.New("goroutine manager is closed")

// Manager runs functions in goroutines and collects their errors.
type Manager struct {
	mu     sync.Mutex
	errs   []error
	wg     sync.WaitGroup
	sema   chan struct{}
	closed bool
}

// NewManager creates a Manager that runs at most maxGoroutine functions at once.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go schedules f and logs when it cannot be started.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) {
	if err := g.TryGo(ctx, f); err != nil {
		slog.WarnContext(ctx, "goroutine not started", "error", err)
	}
}

// TryGo schedules f, or returns ErrLimitReached / ErrClosed without running it.
func (g *Manager) TryGo(ctx context.Context, f func(ctx context.Context) error) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}

	select {
	case g.sema <- struct{}{}:
	default:
		g.mu.Unlock()
		return ErrLimitReached
	}

	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer func() { <-g.sema }()
		defer g.recover(ctx)

		if ctx.Err() != nil {
			slog.WarnContext(ctx, "goroutine canceled", "because", ctx.Err())
			return
		}

		if err := f(ctx); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	}()

	return nil
}

func (g *Manager) recover(ctx context.Context) {
	rvr := recover()
	if rvr == nil {
		return
	}

	stack := debug.Stack()
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "because", rvr, "stack", paths)
		return
	}
	slog.ErrorContext(ctx, "panic occurred in goroutine", "because", rvr, "stack", string(stack))
}

// Wait stops accepting work, blocks until running functions finish and returns
// their joined errors.
func (g *Manager) Wait() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	return errors.Join(g.errs...)
}
