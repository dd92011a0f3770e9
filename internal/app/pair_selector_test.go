package app_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"movies-battle/internal/app"
	"movies-battle/internal/domain"
	"movies-battle/internal/infra/memory"
)

func TestSelectPairNeverRepeats(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMovieStoreWith(catalog()...)
	selector := app.NewPairSelectorWithRand(store, 10000, rand.New(rand.NewSource(7)))

	used := make(domain.PairSet)
	// 4 movies give 6 distinct pairs.
	for i := 0; i < 6; i++ {
		a, b, err := selector.SelectPair(ctx, "player1", 1, 4, used)
		if err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if a == b {
			t.Fatalf("expected distinct ids, got %d/%d", a, b)
		}
		p := domain.NewPair(a, b)
		if used.Contains(p) {
			t.Fatalf("pair %+v selected twice", p)
		}
		used.Add(p)
	}

	_, _, err := selector.SelectPair(ctx, "player1", 1, 4, used)
	if !errors.Is(err, domain.ErrExhausted) {
		t.Fatalf("expected exhausted catalog, got %v", err)
	}
	if !domain.IsRetryable(err) {
		t.Fatalf("expected exhausted error to be retryable")
	}
}

func TestSelectPairTwoMovieFallback(t *testing.T) {
	store := memory.NewMovieStoreWith(catalog()[:2]...)
	selector := app.NewPairSelector(store, 10)

	used := make(domain.PairSet)
	used.Add(domain.NewPair(1, 2))
	a, b, err := selector.SelectPair(context.Background(), "player1", 1, 2, used)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if a != 1 || b != 2 {
		t.Fatalf("expected the only pair (1,2), got (%d,%d)", a, b)
	}
}

func TestSelectPairSkipsGaps(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMovieStoreWith(catalog()...)
	store.Delete(ctx, 3)
	selector := app.NewPairSelectorWithRand(store, 10000, rand.New(rand.NewSource(11)))

	used := make(domain.PairSet)
	for i := 0; i < 3; i++ {
		a, b, err := selector.SelectPair(ctx, "player1", 1, 4, used)
		if err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if a == 3 || b == 3 {
			t.Fatalf("selected deleted movie: (%d,%d)", a, b)
		}
		used.Add(domain.NewPair(a, b))
	}
	if _, _, err := selector.SelectPair(ctx, "player1", 1, 4, used); !errors.Is(err, domain.ErrExhausted) {
		t.Fatalf("expected exhausted after all pairs of 1,2,4, got %v", err)
	}
}

func TestSelectPairSingleMovie(t *testing.T) {
	store := memory.NewMovieStoreWith(catalog()[:1]...)
	selector := app.NewPairSelector(store, 10)

	_, _, err := selector.SelectPair(context.Background(), "player1", 1, 1, make(domain.PairSet))
	if !errors.Is(err, domain.ErrExhausted) {
		t.Fatalf("expected exhausted for a single movie, got %v", err)
	}
}

func TestUsedPairsIsUnordered(t *testing.T) {
	games := []*domain.Game{
		{Rounds: []*domain.Round{{MovieIDs: []int64{4, 2}}}},
		{Rounds: []*domain.Round{{MovieIDs: []int64{1, 3}}, {MovieIDs: []int64{7}}}},
	}
	used := app.UsedPairs(games)
	if !used.Contains(domain.NewPair(2, 4)) || !used.Contains(domain.NewPair(3, 1)) {
		t.Fatalf("expected both pairs regardless of order, got %v", used)
	}
	if len(used) != 2 {
		t.Fatalf("expected malformed round to be ignored, got %d pairs", len(used))
	}
}

// catalog returns four movies with distinct scores, ids 1..4 in order.
func catalog() []domain.Movie {
	return []domain.Movie{
		movie("The Godfather", 9.2, 1900000),
		movie("Cats", 2.8, 55000),
		movie("Heat", 8.3, 700000),
		movie("Gigli", 2.5, 50000),
	}
}

func movie(title string, rating float64, votes int64) domain.Movie {
	return domain.Movie{Title: title, Rating: rating, Votes: votes, Score: domain.ComputeScore(votes, rating)}
}
