// Package idempotency guards side effects that may be triggered more than once,
// such as payment webhooks redelivered by the processor.
//
// A key moves none -> in_progress -> completed|failed in Redis. Only the caller
// that moves it out of none runs the operation.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrAlreadyCompleted  = errors.New("operation already completed")
	ErrAlreadyFailed     = errors.New("operation already failed")
	ErrInvalidState      = errors.New("invalid state")
)

// State is the lifecycle state of a key.
type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

func (s State) String() string {
	return string(s)
}

// Idempotency runs an operation at most once per key.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	keyPrefix           = "idempotency:"
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

// acquireScript claims KEYS[1] when it is absent, or when it holds "failed" and
// ARGV[3] is "1". It returns "none" on a claim and the stored state otherwise.
var acquireScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur or (cur == "failed" and ARGV[3] == "1") then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
	return "none"
end
return cur
`)

// StateTracker is the Redis-backed Idempotency.
type StateTracker struct {
	client redis.UniversalClient
}

// New returns a StateTracker using client.
func New(client redis.UniversalClient) *StateTracker {
	return &StateTracker{client: client}
}

// Option tunes Exec.
type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
	retryFailed  bool
}

func newExecOptions(opts []Option) execOptions {
	o := execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lockDuration <= 0 {
		o.lockDuration = defaultLockDuration
	}
	if o.stateTTL <= 0 {
		o.stateTTL = defaultStateTTL
	}
	return o
}

// WithLockDuration bounds how long an in-progress key blocks other callers.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithStateTTL sets how long the completed/failed outcome is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = d }
}

// WithRetryFailed lets a key whose previous run failed be claimed again.
func WithRetryFailed() Option {
	return func(o *execOptions) { o.retryFailed = true }
}

// Acquire atomically claims key for lockDuration. It returns StateNone when the
// caller now owns the key, and the state it found otherwise.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration, retryFailed bool) (State, error) {
	retry := "0"
	if retryFailed {
		retry = "1"
	}

	res, err := acquireScript.Run(ctx, s.client, []string{keyPrefix + key},
		StateInProgress.String(), lockDuration.Milliseconds(), retry).Text()
	if err != nil {
		return "", err
	}

	switch state := State(res); state {
	case StateNone, StateInProgress, StateCompleted, StateFailed:
		return state, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidState, res)
	}
}

// Exec runs fn unless key already ran or is running. A failed fn is recorded as
// failed and its error returned.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := newExecOptions(opts)

	state, err := s.Acquire(ctx, key, o.lockDuration, o.retryFailed)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	}

	outcome := StateCompleted
	runErr := fn(ctx)
	if runErr != nil {
		outcome = StateFailed
	}

	// the outcome is recorded even when ctx was canceled during fn
	markErr := s.client.Set(context.WithoutCancel(ctx), keyPrefix+key, outcome.String(), o.stateTTL).Err()

	return errors.Join(runErr, markErr)
}
