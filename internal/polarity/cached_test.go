package polarity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/godilite/reviewsent/internal/polarity/mocks"
	servicemocks "github.com/godilite/reviewsent/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCached(t *testing.T) {
	t.Run("nil scorer panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewCached(nil, &mocks.MockCacher{}, time.Minute, nil)
		})
	})

	t.Run("zero ttl uses default", func(t *testing.T) {
		c := NewCached(NewLexicon(), &mocks.MockCacher{}, 0, nil)

		assert.Equal(t, defaultCacheTTL, c.ttl)
	})
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, cacheKey("great ride"), cacheKey("great ride"))
	assert.NotEqual(t, cacheKey("great ride"), cacheKey("great rides"))
	assert.Regexp(t, `^polarity:[0-9a-f]+$`, cacheKey(""))
}

func TestCachedScore(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		cache := &mocks.MockCacher{}
		next := servicemocks.Scores(map[string]float64{"great": 0.8})
		c := NewCached(next, cache, time.Minute, zap.NewNop())

		first, err := c.Score(ctx, "great")
		require.NoError(t, err)
		second, err := c.Score(ctx, "great")
		require.NoError(t, err)

		assert.Equal(t, 0.8, first)
		assert.Equal(t, 0.8, second)
		assert.Equal(t, []string{"great"}, next.Calls)
		assert.Equal(t, 1, cache.Sets)
	})

	t.Run("cache get errors are treated as misses", func(t *testing.T) {
		cache := &mocks.MockCacher{
			GetFunc: func(context.Context, string, any) error { return errors.New("connection reset") },
			SetFunc: func(context.Context, string, any, time.Duration) error { return errors.New("connection reset") },
		}
		next := servicemocks.Scores(map[string]float64{"bad": -0.7})
		c := NewCached(next, cache, time.Minute, zap.NewNop())

		score, err := c.Score(ctx, "bad")

		require.NoError(t, err)
		assert.Equal(t, -0.7, score)
	})

	t.Run("scorer errors are not cached", func(t *testing.T) {
		cache := &mocks.MockCacher{}
		next := &servicemocks.MockScorer{
			ScoreFunc: func(context.Context, string) (float64, error) { return 0, errors.New("down") },
		}
		c := NewCached(next, cache, time.Minute, zap.NewNop())

		_, err := c.Score(ctx, "x")

		assert.EqualError(t, err, "down")
		assert.Zero(t, cache.Sets)
	})

	t.Run("concurrent misses share one call", func(t *testing.T) {
		var calls atomic.Int32
		release := make(chan struct{})
		next := &servicemocks.MockScorer{
			ScoreFunc: func(context.Context, string) (float64, error) {
				calls.Add(1)
				<-release
				return 0.5, nil
			},
		}
		c := NewCached(next, &mocks.MockCacher{}, time.Minute, zap.NewNop())

		var wg sync.WaitGroup
		results := make([]float64, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = c.Score(ctx, "same")
			}(i)
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, r := range results {
			assert.Equal(t, 0.5, r)
		}
	})
}
