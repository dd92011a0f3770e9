package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"movies-battle/internal/domain"
)

// MovieStore is an in-memory implementation of app.MovieStore.
type MovieStore struct {
	mu     sync.RWMutex
	movies map[int64]domain.Movie
	nextID int64
}

func NewMovieStore() *MovieStore {
	return &MovieStore{movies: make(map[int64]domain.Movie)}
}

// NewMovieStoreWith seeds the store with already-scored movies (useful for tests/demos).
// Movies without an ID are assigned the next free one.
func NewMovieStoreWith(movies ...domain.Movie) *MovieStore {
	s := NewMovieStore()
	for i := range movies {
		m := movies[i]
		_ = s.Save(context.Background(), &m)
	}
	return s
}

func (s *MovieStore) FindByID(_ context.Context, id int64) (*domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movies[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *MovieStore) FindByTitle(_ context.Context, title string) ([]domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Movie
	for _, m := range s.movies {
		if strings.EqualFold(m.Title, title) {
			out = append(out, m)
		}
	}
	sortMovies(out)
	return out, nil
}

func (s *MovieStore) List(_ context.Context) ([]domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	sortMovies(out)
	return out, nil
}

func (s *MovieStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.movies)), nil
}

func (s *MovieStore) IDBounds(_ context.Context) (int64, int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.movies) == 0 {
		return 0, 0, false, nil
	}
	var low, high int64
	first := true
	for id := range s.movies {
		if first || id < low {
			low = id
		}
		if first || id > high {
			high = id
		}
		first = false
	}
	return low, high, true, nil
}

func (s *MovieStore) Save(_ context.Context, movie *domain.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if movie.ID == 0 {
		s.nextID++
		movie.ID = s.nextID
	} else if movie.ID > s.nextID {
		s.nextID = movie.ID
	}
	s.movies[movie.ID] = *movie
	return nil
}

// Delete removes a movie, leaving a gap in the id range.
func (s *MovieStore) Delete(_ context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.movies, id)
}

func sortMovies(movies []domain.Movie) {
	sort.Slice(movies, func(i, j int) bool { return movies[i].ID < movies[j].ID })
}
