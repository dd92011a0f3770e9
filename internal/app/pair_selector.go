package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"movies-battle/internal/domain"
)

// DefaultPairAttempts bounds the rejection-sampling loop of PairSelector.
const DefaultPairAttempts = 1000

// PairSelector draws movie pairs a user has not been shown yet.
type PairSelector struct {
	movies      MovieStore
	maxAttempts int

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPairSelector(movies MovieStore, maxAttempts int) *PairSelector {
	return NewPairSelectorWithRand(movies, maxAttempts, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewPairSelectorWithRand is used by tests that need a reproducible draw.
func NewPairSelectorWithRand(movies MovieStore, maxAttempts int, rnd *rand.Rand) *PairSelector {
	if maxAttempts <= 0 {
		maxAttempts = DefaultPairAttempts
	}
	return &PairSelector{movies: movies, maxAttempts: maxAttempts, rnd: rnd}
}

// SelectPair samples two distinct existing ids in [low, high] whose unordered pair is not in
// excluded. When the catalog spans exactly two ids that pair is returned even if already used.
// The result keeps the drawn order, which is the order the movies are displayed in.
func (s *PairSelector) SelectPair(ctx context.Context, username string, low, high int64, excluded domain.PairSet) (int64, int64, error) {
	if high-low == 1 {
		return low, high, nil
	}
	if high-low < 1 {
		return 0, 0, domain.Exhaustedf("at least two movies are needed to start a round")
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		a, b := s.draw(low, high)
		if a == 0 || b == 0 || a == b {
			continue
		}
		if excluded.Contains(domain.NewPair(a, b)) {
			continue
		}
		ok, err := s.exists(ctx, a, b)
		if err != nil {
			return 0, 0, err
		}
		if ok {
			return a, b, nil
		}
	}
	return 0, 0, domain.Exhaustedf("no unused movie pair found for %s after %d attempts, try again", username, s.maxAttempts)
}

func (s *PairSelector) draw(low, high int64) (int64, int64) {
	span := high - low + 1
	s.mu.Lock()
	defer s.mu.Unlock()
	return low + s.rnd.Int63n(span), low + s.rnd.Int63n(span)
}

// exists checks that both ids resolve; ids can have gaps after deletions.
func (s *PairSelector) exists(ctx context.Context, a, b int64) (bool, error) {
	for _, id := range [2]int64{a, b} {
		movie, err := s.movies.FindByID(ctx, id)
		if err != nil {
			return false, err
		}
		if movie == nil {
			return false, nil
		}
	}
	return true, nil
}

// UsedPairs collects every pair shown in the given games' rounds.
func UsedPairs(games []*domain.Game) domain.PairSet {
	used := make(domain.PairSet)
	for _, g := range games {
		for _, r := range g.Rounds {
			if p, ok := r.Pair(); ok {
				used.Add(p)
			}
		}
	}
	return used
}
