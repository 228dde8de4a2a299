package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/learningeconomy/consentflow/internal/contract/metrics"
	"github.com/learningeconomy/consentflow/internal/contract/models"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

const redisContractKeyPrefix = "contract:"

// RedisCache decorates a contract Store with Redis TTL-based caching.
// Contracts are immutable for the duration of a resolution session, so a
// short TTL bounds staleness from upstream authoring changes.
type RedisCache struct {
	client   *redis.Client
	inner    Store
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

// NewRedisCache constructs a Redis-backed caching layer over the inner store.
// metrics may be nil.
func NewRedisCache(client *redis.Client, inner Store, cacheTTL time.Duration, m *metrics.Metrics) *RedisCache {
	return &RedisCache{
		client:   client,
		inner:    inner,
		cacheTTL: cacheTTL,
		metrics:  m,
	}
}

// Save writes through to the inner store and invalidates the cached entry.
func (c *RedisCache) Save(ctx context.Context, contract *models.Contract) error {
	if err := c.inner.Save(ctx, contract); err != nil {
		return err
	}
	if err := c.client.Del(ctx, contractKey(contract.URI)).Err(); err != nil {
		return fmt.Errorf("invalidate contract cache: %w", err)
	}
	return nil
}

// FindByURI serves from cache when possible, falling back to the inner store
// and populating the cache on miss.
func (c *RedisCache) FindByURI(ctx context.Context, uri id.ContractURI) (*models.Contract, error) {
	start := time.Now()
	data, err := c.client.Get(ctx, contractKey(uri)).Bytes()
	if err == nil {
		var contract models.Contract
		if err := json.Unmarshal(data, &contract); err != nil {
			return nil, fmt.Errorf("decode contract cache: %w", err)
		}
		c.recordHit(start)
		return &contract, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read contract cache: %w", err)
	}
	c.recordMiss(start)

	contract, err := c.inner.FindByURI(ctx, uri)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(contract)
	if err != nil {
		return nil, fmt.Errorf("encode contract cache: %w", err)
	}
	if err := c.client.Set(ctx, contractKey(uri), payload, c.cacheTTL).Err(); err != nil {
		return nil, fmt.Errorf("populate contract cache: %w", err)
	}
	return contract, nil
}

// ListByOwner bypasses the cache; owner listings are an authoring-side path.
func (c *RedisCache) ListByOwner(ctx context.Context, ownerID id.ProfileID) ([]*models.Contract, error) {
	return c.inner.ListByOwner(ctx, ownerID)
}

func (c *RedisCache) recordHit(start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.IncrementCacheHit("redis")
	c.metrics.ObserveCacheLatency("get", time.Since(start))
}

func (c *RedisCache) recordMiss(start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.IncrementCacheMiss("redis")
	c.metrics.ObserveCacheLatency("get", time.Since(start))
}

func contractKey(uri id.ContractURI) string {
	return redisContractKeyPrefix + string(uri)
}

// Ensure RedisCache satisfies the Store interface.
var _ Store = (*RedisCache)(nil)
