package app_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"movies-battle/internal/app"
	"movies-battle/internal/domain"
	"movies-battle/internal/infra/memory"
)

func TestSaveCreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMovieStore()
	fetcher := &stubFetcher{movies: map[string]domain.Movie{
		"Blade Runner": {Title: "Blade Runner", Rating: 6.5, Votes: 141123},
	}}
	svc := app.NewMovieService(store, fetcher, nil)

	status, _, err := svc.Save(ctx, app.MovieRequest{Title: "Blade Runner"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	m, err := svc.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Score != 917299.50 {
		t.Fatalf("expected score 917299.50, got %v", m.Score)
	}

	fetcher.set("Blade Runner", domain.Movie{Title: "Blade Runner", Rating: 7, Votes: 200000})
	status, _, err = svc.Save(ctx, app.MovieRequest{ID: 1, Title: "Blade Runner"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d", status)
	}
	if n, _ := svc.Count(ctx); n != 1 {
		t.Fatalf("expected update in place, count %d", n)
	}
	m, _ = svc.GetByID(ctx, 1)
	if m.Score != 1400000 {
		t.Fatalf("expected refreshed score, got %v", m.Score)
	}
}

func TestSaveFetchFailureIsInvalidRequest(t *testing.T) {
	svc := app.NewMovieService(memory.NewMovieStore(), &stubFetcher{}, nil)
	_, _, err := svc.Save(context.Background(), app.MovieRequest{Title: "Unknown"})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := app.NewMovieService(memory.NewMovieStore(), &stubFetcher{}, nil)
	if _, err := svc.GetByID(context.Background(), 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRefreshAll(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMovieStoreWith(
		domain.Movie{Title: "Heat", Rating: 1, Votes: 1, Score: 1},
		domain.Movie{Title: "Cats", Rating: 1, Votes: 1, Score: 1},
	)
	fetcher := &stubFetcher{movies: map[string]domain.Movie{
		"Heat": {Title: "Heat", Rating: 8.3, Votes: 700000},
		"Cats": {Title: "Cats", Rating: 2.8, Votes: 55000},
	}}
	svc := app.NewMovieService(store, fetcher, nil)

	if err := svc.RefreshAll(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	movies, _ := svc.List(ctx)
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
	if movies[0].Score != 5810000 || movies[1].Score != 154000 {
		t.Fatalf("unexpected refreshed scores %+v", movies)
	}
}

type stubFetcher struct {
	mu     sync.Mutex
	movies map[string]domain.Movie
}

func (f *stubFetcher) set(title string, m domain.Movie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movies[title] = m
}

func (f *stubFetcher) FetchMovie(_ context.Context, title string) (*domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.movies[title]
	if !ok {
		return nil, errors.New("movie not found")
	}
	return &m, nil
}
