package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"movies-battle/internal/domain"
)

// rankingMultiplier is applied to summed scores before sorting, as the leaderboard always has.
const rankingMultiplier = 100

// rankingScanLimit caps concurrent per-user game scans.
const rankingScanLimit = 8

// RankingService aggregates every user's games into the leaderboard and pushes fresh
// snapshots to subscribers when scores change.
type RankingService struct {
	users  UserDirectory
	games  GameStore
	cache  RankingCache
	logger *zap.Logger
	sf     singleflight.Group

	mu          sync.Mutex
	subscribers map[chan []domain.RankingEntry]struct{}
}

// NewRankingService builds the aggregator. cache may be nil.
func NewRankingService(users UserDirectory, games GameStore, cache RankingCache, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{
		users:       users,
		games:       games,
		cache:       cache,
		logger:      logger,
		subscribers: make(map[chan []domain.RankingEntry]struct{}),
	}
}

// Ranking returns the leaderboard, served from cache when one is configured.
func (s *RankingService) Ranking(ctx context.Context) ([]domain.RankingEntry, error) {
	if s.cache != nil {
		entries, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("ranking cache read failed", zap.Error(err))
		} else if ok {
			return entries, nil
		}
	}

	// Concurrent misses share one scan.
	result, err, _ := s.sf.Do("ranking", func() (interface{}, error) {
		entries, err := s.Compute(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, entries); err != nil {
				s.logger.Warn("ranking cache write failed", zap.Error(err))
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.RankingEntry), nil
}

// Compute scans all games of all users. Each user's summed score is multiplied by 100 and
// the list is sorted descending; users with equal scores keep directory order.
func (s *RankingService) Compute(ctx context.Context) ([]domain.RankingEntry, error) {
	users, err := s.users.AllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	entries := make([]domain.RankingEntry, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rankingScanLimit)
	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			games, err := s.games.FindGamesByUser(gctx, user.Username)
			if err != nil {
				return fmt.Errorf("load games for %s: %w", user.Username, err)
			}
			var score int64
			for _, game := range games {
				score += game.TotalScore
			}
			entries[i] = domain.RankingEntry{
				Username:   user.Username,
				Name:       user.Name,
				TotalScore: score * rankingMultiplier,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
	return entries, nil
}

// ScoreChanged drops the cached leaderboard and broadcasts a fresh one to subscribers.
func (s *RankingService) ScoreChanged(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("ranking cache invalidate failed", zap.Error(err))
		}
	}
	if !s.hasSubscribers() {
		return
	}
	// Scan directly so the snapshot reflects this change rather than an in-flight read.
	entries, err := s.Compute(ctx)
	if err != nil {
		s.logger.Error("ranking refresh failed", zap.Error(err))
		return
	}
	s.broadcast(entries)
}

// Subscribe returns a channel receiving leaderboard snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *RankingService) Subscribe(ctx context.Context) (<-chan []domain.RankingEntry, func(), error) {
	initial, err := s.Ranking(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []domain.RankingEntry, 8)
	ch <- initial

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *RankingService) hasSubscribers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) > 0
}

func (s *RankingService) broadcast(entries []domain.RankingEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- entries:
		default:
			// Slow subscriber: replace its oldest pending snapshot.
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}
