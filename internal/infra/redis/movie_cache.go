package redis

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"movies-battle/internal/app"
	"movies-battle/internal/domain"
)

// MovieCache caches movie lookups in Redis (hash per movie) and falls back to the
// wrapped store on cache miss.
// Movies are stored as: HSET movie:{id} title {title} rating {rating} votes {votes} score {score}
type MovieCache struct {
	app.MovieStore
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewMovieCache(client *redis.Client, store app.MovieStore, ttl time.Duration) *MovieCache {
	return &MovieCache{
		MovieStore: store,
		client:     client,
		ttl:        ttl,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *MovieCache) FindByID(ctx context.Context, id int64) (*domain.Movie, error) {
	key := c.key(id)
	if fields, err := c.client.HGetAll(ctx, key).Result(); err == nil && len(fields) > 0 {
		if m, ok := movieFromHash(id, fields); ok {
			return m, nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		movie, err := c.MovieStore.FindByID(ctx, id)
		if err != nil || movie == nil {
			return movie, err
		}

		ttl := c.ttlWithJitter()
		pipe := c.client.Pipeline()
		pipe.HSet(ctx, key,
			"title", movie.Title,
			"rating", strconv.FormatFloat(movie.Rating, 'f', -1, 64),
			"votes", movie.Votes,
			"score", strconv.FormatFloat(movie.Score, 'f', 2, 64),
		)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		// cache fill is best effort
		_, _ = pipe.Exec(ctx)
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

// Save writes through and drops the cached hash.
func (c *MovieCache) Save(ctx context.Context, movie *domain.Movie) error {
	if err := c.MovieStore.Save(ctx, movie); err != nil {
		return err
	}
	return c.client.Del(ctx, c.key(movie.ID)).Err()
}

func (c *MovieCache) key(id int64) string {
	return "movie:" + strconv.FormatInt(id, 10)
}

func movieFromHash(id int64, fields map[string]string) (*domain.Movie, bool) {
	rating, err := strconv.ParseFloat(fields["rating"], 64)
	if err != nil {
		return nil, false
	}
	votes, err := strconv.ParseInt(fields["votes"], 10, 64)
	if err != nil {
		return nil, false
	}
	score, err := strconv.ParseFloat(fields["score"], 64)
	if err != nil {
		return nil, false
	}
	return &domain.Movie{ID: id, Title: fields["title"], Rating: rating, Votes: votes, Score: score}, true
}

func (c *MovieCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
