// README: Driving-distance cache backed by Redis string keys.
package distance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wheels/internal/types"
)

const cacheKeyPrefix = "distance:driving:"

// CachedOracle memoises a wrapped Oracle in Redis. Cache failures degrade to
// calling the wrapped oracle directly; only oracle errors are returned.
type CachedOracle struct {
	next  Oracle
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedOracle(next Oracle, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedOracle {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedOracle{next: next, redis: rdb, ttl: ttl, log: log}
}

func (c *CachedOracle) DistanceKm(ctx context.Context, a, b types.Point) (float64, error) {
	key := cacheKey(a, b)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		if km, perr := strconv.ParseFloat(val, 64); perr == nil {
			return km, nil
		}
		c.log.Warn("discarding malformed cached distance", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("distance cache read failed", zap.String("key", key), zap.Error(err))
	}

	km, err := c.next.DistanceKm(ctx, a, b)
	if err != nil {
		return 0, err
	}

	if err := c.redis.Set(ctx, key, strconv.FormatFloat(km, 'f', -1, 64), c.ttl).Err(); err != nil {
		c.log.Warn("distance cache write failed", zap.String("key", key), zap.Error(err))
	}
	return km, nil
}

// cacheKey rounds to 4 decimals (~11 m) so GPS jitter still hits the cache.
func cacheKey(a, b types.Point) string {
	return fmt.Sprintf("%s%.4f,%.4f->%.4f,%.4f", cacheKeyPrefix, a.Lat, a.Lng, b.Lat, b.Lng)
}
