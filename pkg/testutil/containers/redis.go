//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer wraps a testcontainers Redis instance.
type RedisContainer struct {
	Container testcontainers.Container
	Addr      string
}

// NewRedisContainer starts a new Redis container.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:8-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	rc := &RedisContainer{
		Container: container,
		Addr:      endpoint,
	}

	// Shared across suites like postgres; Ryuk reaps the container when the
	// test process exits.

	if err := rc.waitReady(ctx); err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("redis not ready: %v", err)
	}

	return rc
}

func (r *RedisContainer) waitReady(ctx context.Context) error {
	client := r.NewClient()
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}

// NewClient returns a go-redis client pointed at the container.
// Callers own the client and should Close it.
func (r *RedisContainer) NewClient() *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: r.Addr})
}

// FlushAll clears all keys. Use between tests for isolation.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	client := r.NewClient()
	defer client.Close()
	return client.FlushAll(ctx).Err()
}
