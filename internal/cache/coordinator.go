// internal/cache/coordinator.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// Coordinator is a read-through JSON view cache on Redis.
type Coordinator struct {
	client redis.Cmdable
	logger logger.Logger
}

func NewCoordinator(client redis.Cmdable, log logger.Logger) *Coordinator {
	return &Coordinator{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "view-cache"}),
	}
}

// Fetch decodes the view stored under key into dst. On a miss it runs
// compute, stores the result for ttl and decodes it into dst, so hits and
// misses yield the same shape. If Redis is unreachable the view is computed
// directly and nothing is stored.
func (c *Coordinator) Fetch(ctx context.Context, key string, ttl time.Duration, dst interface{}, compute func(context.Context) (interface{}, error)) error {
	view := viewOf(key)
	populate := true

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if json.Valid(raw) {
			if uerr := json.Unmarshal(raw, dst); uerr == nil {
				metrics.CacheLookups.WithLabelValues(view, "hit").Inc()
				return nil
			}
		}
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key})
		metrics.CacheLookups.WithLabelValues(view, "miss").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues(view, "miss").Inc()
	default:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.CacheLookups.WithLabelValues(view, "error").Inc()
		c.logger.Warn("cache read failed, computing directly", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		populate = false
	}

	value, err := compute(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode view %s: %w", view, err)
	}

	if populate {
		if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
			c.logger.Warn("cache populate failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	return json.Unmarshal(data, dst)
}

// Invalidate deletes keys synchronously.
func (c *Coordinator) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate %v: %w", keys, err)
	}
	c.logger.Debug("views invalidated", map[string]interface{}{"keys": keys})
	return nil
}
