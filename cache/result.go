package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/primeswim/tuition/tuition"
)

const keyPrefix = "tuition_result_v1"

// ResultCache stores calculation results under month and input fingerprint.
// A calculation is a pure function of its input, so a hit is always current.
type ResultCache struct {
	client Client
	ttl    time.Duration
}

func NewResultCache(client Client, ttl time.Duration) *ResultCache {
	if client == nil {
		client = NopClient{}
	}
	return &ResultCache{client: client, ttl: ttl}
}

// Key returns the cache key for a month and fingerprint.
func Key(month, fingerprint string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, month, fingerprint)
}

// Get returns the cached result, or ok=false on a miss.
func (c *ResultCache) Get(ctx context.Context, month, fingerprint string) (*tuition.Result, bool, error) {
	raw, err := c.client.Get(ctx, Key(month, fingerprint))
	if errors.Is(err, ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var r tuition.Result
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		// treat a corrupt entry as a miss and drop it
		_ = c.client.Del(ctx, Key(month, fingerprint))
		return nil, false, nil
	}
	return &r, true, nil
}

// Put stores a result.
func (c *ResultCache) Put(ctx context.Context, fingerprint string, r *tuition.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	if err := c.client.Set(ctx, Key(r.Month, fingerprint), string(data), c.ttl); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}
