package polarity

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/godilite/reviewsent/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKeyPrefix      = "polarity:"
	defaultCacheTTL     = 24 * time.Hour
	defaultCacheTimeout = 2 * time.Second
)

// Cacher is the subset of pkg/cache the score cache needs.
type Cacher interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Cached memoises the scores of another scorer in a shared cache. Cache
// faults are logged and otherwise ignored.
type Cached struct {
	next    service.PolarityScorer
	cache   Cacher
	ttl     time.Duration
	logger  *zap.Logger
	sfGroup singleflight.Group
}

// NewCached wraps next with cache. A non-positive ttl uses 24h.
func NewCached(next service.PolarityScorer, cache Cacher, ttl time.Duration, logger *zap.Logger) *Cached {
	if next == nil {
		panic("nil scorer provided to NewCached")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("polarity-cache"),
	}
}

func cacheKey(text string) string {
	return cacheKeyPrefix + strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// Score implements service.PolarityScorer.
func (c *Cached) Score(ctx context.Context, text string) (float64, error) {
	key := cacheKey(text)

	getCtx, cancel := context.WithTimeout(ctx, defaultCacheTimeout)
	var cached float64
	err := c.cache.Get(getCtx, key, &cached)
	cancel()
	switch {
	case err == nil:
		c.logger.Debug("cache hit", zap.String("key", key))
		return cached, nil
	case errors.Is(err, redis.Nil):
		c.logger.Debug("cache miss", zap.String("key", key))
	default:
		c.logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := c.sfGroup.Do(key, func() (any, error) {
		score, err := c.next.Score(ctx, text)
		if err != nil {
			return 0.0, err
		}

		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultCacheTimeout)
		defer cancel()
		if err := c.cache.Set(setCtx, key, score, c.ttl); err != nil {
			c.logger.Warn("failed to set cache on miss", zap.String("key", key), zap.Error(err))
		}
		return score, nil
	})
	if err != nil {
		return 0, err
	}
	if shared {
		c.logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return v.(float64), nil
}
