package projection

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/nba-comps/internal/metrics"
	"github.com/yourusername/nba-comps/internal/models"
)

// CacheKey identifies a cached projection.
type CacheKey struct {
	PlayerID int64
	SeasonID string
	K        int
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%d:%s:%d", k.PlayerID, k.SeasonID, k.K)
}

// CachedService memoizes projections from an underlying Service. Errors are
// not cached. Every call returns its own copy of the result.
type CachedService struct {
	next      Service
	defaultK  int
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewCachedService wraps next with an in-memory cache. defaultK resolves
// k <= 0 so that equivalent requests share an entry.
func NewCachedService(next Service, defaultK int, ttl time.Duration, maxSize int) *CachedService {
	return &CachedService{
		next:     next,
		defaultK: defaultK,
		cache:    cache.New(ttl, ttl*2),
		ttl:      ttl,
		maxSize:  maxSize,
	}
}

// Project returns a cached projection or computes and stores a new one.
func (c *CachedService) Project(ctx context.Context, playerID int64, seasonID string, k int) (*models.ProjectionResult, error) {
	if k <= 0 {
		k = c.defaultK
	}
	key := CacheKey{PlayerID: playerID, SeasonID: seasonID, K: k}.String()

	if v, found := c.cache.Get(key); found {
		if result, ok := v.(*models.ProjectionResult); ok {
			c.record(true)
			return result.Clone(), nil
		}
	}
	c.record(false)

	result, err := c.next.Project(ctx, playerID, seasonID, k)
	if err != nil {
		return nil, err
	}

	if c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		c.cache.DeleteExpired()
		if c.cache.ItemCount() >= c.maxSize {
			return result, nil
		}
	}
	c.cache.Set(key, result.Clone(), c.ttl)

	return result, nil
}

// Clear flushes the entire cache
func (c *CachedService) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	c.hitCount = 0
	c.missCount = 0
}

// Stats returns cache statistics
func (c *CachedService) Stats() (hits, misses uint64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}

// ItemCount returns the number of items in cache
func (c *CachedService) ItemCount() int {
	return c.cache.ItemCount()
}

func (c *CachedService) record(hit bool) {
	c.mu.Lock()
	if hit {
		c.hitCount++
	} else {
		c.missCount++
	}
	_, _, ratio := c.statsLocked()
	c.mu.Unlock()

	metrics.RecordCacheLookup(hit, ratio)
}

func (c *CachedService) statsLocked() (hits, misses uint64, ratio float64) {
	hits = c.hitCount
	misses = c.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return hits, misses, ratio
}
