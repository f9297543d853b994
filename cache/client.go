// Package cache stores calculation results keyed by input fingerprint.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned by Client.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Client is the key/value subset of Redis the result cache needs.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// =============================================================================
// REDIS CLIENT
// =============================================================================

// RedisClient wraps a go-redis client.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to addr and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return &RedisClient{client: client}, nil
}

func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (r *RedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisClient) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying connection pool.
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// =============================================================================
// MOCK CLIENT - in-process map, for tests and single-node dev
// =============================================================================

// MockClient simulates Redis in memory. TTLs are recorded, not enforced.
type MockClient struct {
	mu   sync.RWMutex
	data map[string]string
	ttls map[string]time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockClient) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *MockClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockClient) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		delete(m.ttls, k)
	}
	return nil
}

func (m *MockClient) Ping(context.Context) error { return nil }

// TTL returns the ttl the key was last set with.
func (m *MockClient) TTL(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ttls[key]
}

// Len returns the number of stored keys.
func (m *MockClient) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// =============================================================================
// NOP CLIENT - caching disabled
// =============================================================================

// NopClient never stores anything.
type NopClient struct{}

func (NopClient) Get(context.Context, string) (string, error) { return "", ErrMiss }
func (NopClient) Set(context.Context, string, string, time.Duration) error { return nil }
func (NopClient) Del(context.Context, ...string) error { return nil }
func (NopClient) Ping(context.Context) error { return nil }
