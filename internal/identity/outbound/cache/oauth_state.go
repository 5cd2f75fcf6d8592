package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
)

const oauthStatePrefix = "identity:oauth:state:"

type Cache struct {
	client redis.UniversalClient
}

func NewCache(client redis.UniversalClient) *Cache {
	return &Cache{client: client}
}

func (c *Cache) SaveOAuthState(ctx context.Context, state, provider string, ttl time.Duration) error {
	if err := c.client.Set(ctx, oauthStatePrefix+state, provider, ttl).Err(); err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	return nil
}

// ConsumeOAuthState returns the provider the state was issued for and deletes it.
func (c *Cache) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	provider, err := c.client.GetDel(ctx, oauthStatePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", goerror.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consume oauth state: %w", err)
	}
	return provider, nil
}
