package memory

import (
	"context"
	"testing"
	"time"

	"movies-battle/internal/app"
	"movies-battle/internal/domain"
)

func TestMovieCacheCaches(t *testing.T) {
	store := &countingStore{MovieStore: NewMovieStoreWith(sampleMovies()...)}
	cache := NewMovieCache(store, time.Minute)

	m, err := cache.FindByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("find movie: %v", err)
	}
	if m == nil || m.Title != "Inception" {
		t.Fatalf("expected Inception, got %+v", m)
	}
	if store.calls != 1 {
		t.Fatalf("expected store once, got %d", store.calls)
	}

	if _, err := cache.FindByID(context.Background(), 1); err != nil {
		t.Fatalf("find movie 2: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected cache hit, store calls %d", store.calls)
	}
}

func TestMovieCacheDoesNotCacheMisses(t *testing.T) {
	store := &countingStore{MovieStore: NewMovieStoreWith(sampleMovies()...)}
	cache := NewMovieCache(store, time.Minute)

	for i := 0; i < 2; i++ {
		m, err := cache.FindByID(context.Background(), 42)
		if err != nil {
			t.Fatalf("find missing movie: %v", err)
		}
		if m != nil {
			t.Fatalf("expected nil movie, got %+v", m)
		}
	}
	if store.calls != 2 {
		t.Fatalf("expected misses to reach the store, calls %d", store.calls)
	}
}

func TestMovieCacheSaveInvalidates(t *testing.T) {
	store := &countingStore{MovieStore: NewMovieStoreWith(sampleMovies()...)}
	cache := NewMovieCache(store, time.Minute)
	ctx := context.Background()

	if _, err := cache.FindByID(ctx, 1); err != nil {
		t.Fatalf("find movie: %v", err)
	}
	updated := domain.Movie{ID: 1, Title: "Inception", Rating: 9.0, Votes: 10, Score: 90}
	if err := cache.Save(ctx, &updated); err != nil {
		t.Fatalf("save: %v", err)
	}
	m, err := cache.FindByID(ctx, 1)
	if err != nil {
		t.Fatalf("find after save: %v", err)
	}
	if m.Score != 90 {
		t.Fatalf("expected refreshed score 90, got %v", m.Score)
	}
	if store.calls != 2 {
		t.Fatalf("expected reload after save, calls %d", store.calls)
	}
}

type countingStore struct {
	app.MovieStore
	calls int
}

func (s *countingStore) FindByID(ctx context.Context, id int64) (*domain.Movie, error) {
	s.calls++
	return s.MovieStore.FindByID(ctx, id)
}

func sampleMovies() []domain.Movie {
	return []domain.Movie{
		{Title: "Inception", Rating: 8.8, Votes: 2500000, Score: domain.ComputeScore(2500000, 8.8)},
		{Title: "Cats", Rating: 2.8, Votes: 55000, Score: domain.ComputeScore(55000, 2.8)},
		{Title: "Heat", Rating: 8.3, Votes: 700000, Score: domain.ComputeScore(700000, 8.3)},
	}
}
