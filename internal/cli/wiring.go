package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"movies-battle/internal/app"
	"movies-battle/internal/config"
	"movies-battle/internal/infra/memory"
	"movies-battle/internal/infra/omdb"
	"movies-battle/internal/infra/postgres"
	rediscache "movies-battle/internal/infra/redis"
	"movies-battle/internal/obslog"
)

// services is the fully wired engine shared by every subcommand.
type services struct {
	cfg     config.Config
	logger  *zap.Logger
	movies  app.MovieStore
	users   app.UserDirectory
	games   *app.GameService
	ranking *app.RankingService
	catalog *app.MovieService
	// persistent is false when everything lives in process memory.
	persistent bool
	closers    []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	_ = s.logger.Sync()
}

func loadServices(ctx context.Context, configPath string) (*services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := obslog.New(cfg.Log.Level, cfg.Log.Format)
	obslog.Set(logger)
	return buildServices(ctx, cfg, logger)
}

func buildServices(ctx context.Context, cfg config.Config, logger *zap.Logger) (*services, error) {
	s := &services{cfg: cfg, logger: logger}

	var (
		movieStore app.MovieStore
		gameStore  app.GameStore
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		movieStore = postgres.NewMovieStore(pool)
		gameStore = postgres.NewGameStore(pool)
		s.users = postgres.NewUserDirectory(pool)
		s.persistent = true
	} else {
		movieStore = memory.NewMovieStore()
		gameStore = memory.NewGameStore()
		s.users = memory.NewUserDirectory()
	}

	moviesTTL := config.TTLDuration(cfg.Movies.TTL, 10*time.Minute)
	var rankingCache app.RankingCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, func() { _ = client.Close() })
		if ttl := config.TTLDuration(cfg.Redis.TTL, 0); ttl > 0 {
			moviesTTL = ttl
		}
		s.movies = rediscache.NewMovieCache(client, movieStore, moviesTTL)
		rankingCache = rediscache.NewRankingCache(client, config.TTLDuration(cfg.Ranking.CacheTTL, 30*time.Second))
	} else {
		s.movies = memory.NewMovieCache(movieStore, moviesTTL)
	}

	fetcher := omdb.NewClient(cfg.OMDB.APIKey, cfg.OMDB.BaseURL, config.TTLDuration(cfg.OMDB.Timeout, 10*time.Second))
	selector := app.NewPairSelector(s.movies, cfg.Game.PairAttempts)

	s.games = app.NewGameService(gameStore, s.movies, s.users, selector, logger.Named("game"))
	s.ranking = app.NewRankingService(s.users, gameStore, rankingCache, logger.Named("ranking"))
	s.games.SetScoreListener(s.ranking)
	s.catalog = app.NewMovieService(s.movies, fetcher, logger.Named("movies"))
	return s, nil
}
