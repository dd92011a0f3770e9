package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"movies-battle/internal/app"
	"movies-battle/internal/domain"
)

// MovieCache caches id lookups of a MovieStore with TTL to avoid repeated DB hits while
// the pair selector samples ids. Other calls go straight to the wrapped store.
type MovieCache struct {
	app.MovieStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[int64]cachedMovie
}

type cachedMovie struct {
	movie     domain.Movie
	expiresAt time.Time
}

func NewMovieCache(store app.MovieStore, ttl time.Duration) *MovieCache {
	return &MovieCache{
		MovieStore: store,
		ttl:        ttl,
		clock:      time.Now,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:      make(map[int64]cachedMovie),
	}
}

func (c *MovieCache) FindByID(ctx context.Context, id int64) (*domain.Movie, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		m := entry.movie
		return &m, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		movie, err := c.MovieStore.FindByID(ctx, id)
		if err != nil || movie == nil {
			return movie, err
		}
		c.mu.Lock()
		c.cache[id] = cachedMovie{movie: *movie, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return movie, nil
	})
	if err != nil {
		return nil, err
	}
	movie := result.(*domain.Movie)
	if movie == nil {
		return nil, nil
	}
	cp := *movie
	return &cp, nil
}

// Save writes through and drops the cached copy.
func (c *MovieCache) Save(ctx context.Context, movie *domain.Movie) error {
	if err := c.MovieStore.Save(ctx, movie); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.cache, movie.ID)
	c.mu.Unlock()
	return nil
}

func (c *MovieCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
