package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/stepup/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "stepup:passcode:"

// ErrUnexpectedReply is returned when a script answers with an unknown status.
var ErrUnexpectedReply = errors.New("stepup cache: unexpected script reply")

// Key returns the credential store key of identity.
func Key(identity string) string {
	return keyPrefix + identity
}

// saveScript replaces the record in one write: digest, zeroed counter and TTL.
var saveScript = redis.NewScript(`
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'code', ARGV[1], 'attempts', 0)
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// consumeScript is the compare-and-delete. Replies: 0 absent, 1 matched,
// 2 mismatched, 3 locked (the record is deleted). Digests are compared byte by
// byte over the full length so the reply time does not depend on the match prefix.
var consumeScript = redis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'code')
if not stored then
  return 0
end
local given = ARGV[1]
local diff = bit.bxor(#stored, #given)
for i = 1, #stored do
  local g = string.byte(given, i) or 0
  diff = bit.bor(diff, bit.bxor(string.byte(stored, i), g))
end
if diff == 0 then
  redis.call('DEL', KEYS[1])
  return 1
end
local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
if attempts >= tonumber(ARGV[2]) then
  redis.call('DEL', KEYS[1])
  return 3
end
return 2
`)

// Redis keeps passcode records as expiring hashes. Both operations are single
// Lua scripts, so concurrent requests on any server process see them atomically.
type Redis struct {
	client redis.UniversalClient
	ins    instrument.Instrumentation
}

func NewRedis(client redis.UniversalClient, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ins: ins}
}

func (r *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("stepup.outbound.cache").Start(ctx, name)
}

func (r *Redis) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *Redis) SavePasscode(ctx context.Context, identity, digest string, ttl time.Duration) (err error) {
	ctx, span := r.startSpan(ctx, "SavePasscode")
	defer func() { r.endSpan(span, err) }()

	if err = saveScript.Run(ctx, r.client, []string{Key(identity)}, digest, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("save passcode: %w", err)
	}

	return nil
}

func (r *Redis) ConsumePasscode(ctx context.Context, identity, digest string, maxAttempts int) (_ entity.ConsumeResult, err error) {
	ctx, span := r.startSpan(ctx, "ConsumePasscode")
	defer func() { r.endSpan(span, err) }()

	reply, err := consumeScript.Run(ctx, r.client, []string{Key(identity)}, digest, maxAttempts).Int()
	if err != nil {
		return entity.ConsumeAbsent, fmt.Errorf("consume passcode: %w", err)
	}

	switch reply {
	case 0:
		return entity.ConsumeAbsent, nil
	case 1:
		return entity.ConsumeMatched, nil
	case 2:
		return entity.ConsumeMismatched, nil
	case 3:
		return entity.ConsumeLocked, nil
	default:
		return entity.ConsumeAbsent, fmt.Errorf("%w: %d", ErrUnexpectedReply, reply)
	}
}
