package app

import (
	"context"

	"movies-battle/internal/domain"
)

// MovieStore is the keyed movie catalog. Lookups of missing ids return a nil movie and no error.
type MovieStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Movie, error)
	FindByTitle(ctx context.Context, title string) ([]domain.Movie, error)
	List(ctx context.Context) ([]domain.Movie, error)
	Count(ctx context.Context) (int64, error)
	// IDBounds returns the lowest and highest assigned ids; ok is false on an empty catalog.
	IDBounds(ctx context.Context) (low, high int64, ok bool, err error)
	Save(ctx context.Context, movie *domain.Movie) error
}

// GameStore persists games together with their rounds.
type GameStore interface {
	FindGame(ctx context.Context, id int64) (*domain.Game, error)
	FindGamesByUser(ctx context.Context, username string) ([]*domain.Game, error)
	FindRound(ctx context.Context, id int64) (*domain.Round, error)
	CreateGame(ctx context.Context, game *domain.Game) error
	// UpdateGame runs fn on the game while holding an exclusive per-game lock. When fn
	// returns nil the game is persisted: rounds with a zero ID are inserted (and get
	// their ID assigned), existing rounds have their outcome written back.
	UpdateGame(ctx context.Context, id int64, fn func(game *domain.Game) error) (*domain.Game, error)
}

// UserDirectory resolves player identities.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	AllUsers(ctx context.Context) ([]domain.User, error)
	SaveUser(ctx context.Context, user domain.User) error
}

// MetadataFetcher looks up rating and vote counts for a title.
type MetadataFetcher interface {
	FetchMovie(ctx context.Context, title string) (*domain.Movie, error)
}

// RankingCache stores the computed leaderboard between scans.
type RankingCache interface {
	Get(ctx context.Context) ([]domain.RankingEntry, bool, error)
	Set(ctx context.Context, entries []domain.RankingEntry) error
	Invalidate(ctx context.Context) error
}

// ScoreListener is told when a game's score changed.
type ScoreListener interface {
	ScoreChanged(ctx context.Context)
}
