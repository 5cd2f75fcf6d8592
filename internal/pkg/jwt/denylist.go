package jwt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "jwt:revoked:"

// Denylist records revoked token IDs until the token would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisDenylist stores revoked token IDs as expiring Redis keys.
type RedisDenylist struct {
	client redis.UniversalClient
	clock  clocker
}

// NewRedisDenylist returns a Denylist backed by client.
func NewRedisDenylist(client redis.UniversalClient, clock clocker) *RedisDenylist {
	return &RedisDenylist{client: client, clock: clock}
}

// Revoke marks jti as revoked until the given time.
func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(d.clock.Now())
	if ttl <= 0 {
		return nil
	}

	if err := d.client.Set(ctx, denylistPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

// IsRevoked reports whether jti was revoked.
func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := d.client.Get(ctx, denylistPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}

	return true, nil
}

// MemoryDenylist is an in-process Denylist for tests and single-node development.
type MemoryDenylist struct {
	mu      sync.Mutex
	clock   clocker
	revoked map[string]time.Time
}

// NewMemoryDenylist returns an empty MemoryDenylist.
func NewMemoryDenylist(clock clocker) *MemoryDenylist {
	return &MemoryDenylist{clock: clock, revoked: make(map[string]time.Time)}
}

// Revoke marks jti as revoked until the given time.
func (d *MemoryDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if until.After(d.clock.Now()) {
		d.revoked[jti] = until
	}

	return nil
}

// IsRevoked reports whether jti was revoked and the revocation is still live.
func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.revoked[jti]
	if !ok {
		return false, nil
	}

	if !until.After(d.clock.Now()) {
		delete(d.revoked, jti)
		return false, nil
	}

	return true, nil
}
