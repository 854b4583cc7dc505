package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// KeyPrefix namespaces resampled tracks in Redis.
const KeyPrefix = "k2age:track:"

// TrackCache stores resampled k2 tracks in Redis, keyed by grid locator.
// It satisfies track.Cache.
type TrackCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewTrackCache wraps client. A zero ttl keeps entries until evicted.
func NewTrackCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *TrackCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackCache{client: client, ttl: ttl, logger: logger}
}

// Key returns the Redis key for a grid locator.
func Key(locator string) string {
	return KeyPrefix + locator
}

// Get returns the cached track; ok is false on a miss.
func (c *TrackCache) Get(ctx context.Context, locator string) ([]float64, bool, error) {
	data, err := c.client.Get(ctx, Key(locator)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("track cache miss", zap.String("locator", locator))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", Key(locator), err)
	}
	values, err := decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", Key(locator), err)
	}
	c.logger.Debug("track cache hit", zap.String("locator", locator), zap.Int("points", len(values)))
	return values, true, nil
}

// Set stores values under the locator's key.
func (c *TrackCache) Set(ctx context.Context, locator string, values []float64) error {
	data, err := encode(values)
	if err != nil {
		return fmt.Errorf("encode %s: %w", Key(locator), err)
	}
	if err := c.client.Set(ctx, Key(locator), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", Key(locator), err)
	}
	return nil
}

// Delete evicts the locator's entry.
func (c *TrackCache) Delete(ctx context.Context, locator string) error {
	if err := c.client.Del(ctx, Key(locator)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", Key(locator), err)
	}
	c.logger.Debug("track cache evicted", zap.String("locator", locator))
	return nil
}

func encode(values []float64) ([]byte, error) {
	return json.Marshal(values)
}

func decode(data []byte) ([]float64, error) {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}
