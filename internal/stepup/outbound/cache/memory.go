package cache

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/stepup/entity"
)

type record struct {
	digest    string
	attempts  int
	expiresAt time.Time
}

// Memory is a single-process credential store whose expiry follows the
// injected clock. A mutex gives it the same atomicity as the Redis scripts.
type Memory struct {
	mu      sync.Mutex
	clock   clock.Clocker
	records map[string]record
}

func NewMemory(clk clock.Clocker) *Memory {
	return &Memory{clock: clk, records: make(map[string]record)}
}

func (m *Memory) SavePasscode(ctx context.Context, identity, digest string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[Key(identity)] = record{digest: digest, expiresAt: m.clock.Now().Add(ttl)}

	return nil
}

func (m *Memory) ConsumePasscode(ctx context.Context, identity, digest string, maxAttempts int) (entity.ConsumeResult, error) {
	if err := ctx.Err(); err != nil {
		return entity.ConsumeAbsent, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(identity)
	rec, ok := m.records[key]
	if !ok {
		return entity.ConsumeAbsent, nil
	}

	if !m.clock.Now().Before(rec.expiresAt) {
		delete(m.records, key)
		return entity.ConsumeAbsent, nil
	}

	if subtle.ConstantTimeCompare([]byte(rec.digest), []byte(digest)) == 1 {
		delete(m.records, key)
		return entity.ConsumeMatched, nil
	}

	rec.attempts++
	if rec.attempts >= maxAttempts {
		delete(m.records, key)
		return entity.ConsumeLocked, nil
	}
	m.records[key] = rec

	return entity.ConsumeMismatched, nil
}

// len reports the number of stored records, expired ones included.
func (m *Memory) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.records)
}
