package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"movies-battle/internal/domain"
)

// refreshLimit caps concurrent metadata lookups during RefreshAll.
const refreshLimit = 4

// MovieRequest registers a title, or re-ingests an existing movie when ID is set.
type MovieRequest struct {
	ID    int64  `json:"id,omitempty"`
	Title string `json:"title"`
}

// MovieService is the thin catalog CRUD around the metadata fetcher.
type MovieService struct {
	movies  MovieStore
	fetcher MetadataFetcher
	logger  *zap.Logger
}

func NewMovieService(movies MovieStore, fetcher MetadataFetcher, logger *zap.Logger) *MovieService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovieService{movies: movies, fetcher: fetcher, logger: logger}
}

// Save fetches metadata for the title, derives the score and stores the movie. The returned
// status is 200 when an existing movie was updated and 201 when a new one was created.
func (s *MovieService) Save(ctx context.Context, req MovieRequest) (int, string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return 0, "", domain.InvalidRequestf("movie title is required")
	}
	fetched, err := s.fetcher.FetchMovie(ctx, title)
	if err != nil {
		s.logger.Error("metadata lookup failed", zap.String("title", title), zap.Error(err))
		return 0, "", domain.InvalidRequestf("an error occurred while registering/updating the movie! %v", err)
	}

	status := http.StatusCreated
	movie := &domain.Movie{}
	if req.ID != 0 {
		existing, err := s.movies.FindByID(ctx, req.ID)
		if err != nil {
			return 0, "", fmt.Errorf("load movie: %w", err)
		}
		if existing != nil {
			status = http.StatusOK
			movie = existing
		}
	}
	movie.Title = fetched.Title
	movie.Rating = fetched.Rating
	movie.Votes = fetched.Votes
	movie.Score = domain.ComputeScore(movie.Votes, movie.Rating)

	if err := s.movies.Save(ctx, movie); err != nil {
		return 0, "", fmt.Errorf("save movie: %w", err)
	}
	msg := fmt.Sprintf("Movie %s registered/updated successfully!", movie.Title)
	s.logger.Info(msg, zap.Int64("movie_id", movie.ID), zap.Float64("score", movie.Score))
	return status, msg, nil
}

func (s *MovieService) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load movie: %w", err)
	}
	if movie == nil {
		s.logger.Error("movie not found", zap.Int64("movie_id", id))
		return nil, domain.NotFoundf("movie with id %d not found", id)
	}
	return movie, nil
}

func (s *MovieService) GetByTitle(ctx context.Context, title string) ([]domain.Movie, error) {
	return s.movies.FindByTitle(ctx, title)
}

func (s *MovieService) List(ctx context.Context) ([]domain.Movie, error) {
	return s.movies.List(ctx)
}

func (s *MovieService) Count(ctx context.Context) (int64, error) {
	return s.movies.Count(ctx)
}

// RefreshAll re-ingests every movie so ratings and votes track the metadata source.
// It stops at the first failure.
func (s *MovieService) RefreshAll(ctx context.Context) error {
	movies, err := s.movies.List(ctx)
	if err != nil {
		return fmt.Errorf("list movies: %w", err)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshLimit)
	for _, m := range movies {
		m := m
		g.Go(func() error {
			_, _, err := s.Save(gctx, MovieRequest{ID: m.ID, Title: m.Title})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("movies refreshed", zap.Int("count", len(movies)))
	return nil
}
