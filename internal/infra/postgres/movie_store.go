package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"movies-battle/internal/domain"
)

const movieColumns = `id, title, rating, votes, score::float8`

// MovieStore keeps the catalog in the movies table.
type MovieStore struct {
	pool *pgxpool.Pool
}

func NewMovieStore(pool *pgxpool.Pool) *MovieStore {
	return &MovieStore{pool: pool}
}

func (s *MovieStore) FindByID(ctx context.Context, id int64) (*domain.Movie, error) {
	var m domain.Movie
	err := s.pool.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id=$1`, id).
		Scan(&m.ID, &m.Title, &m.Rating, &m.Votes, &m.Score)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load movie: %w", err)
	}
	return &m, nil
}

func (s *MovieStore) FindByTitle(ctx context.Context, title string) ([]domain.Movie, error) {
	return s.query(ctx, `SELECT `+movieColumns+` FROM movies WHERE lower(title)=lower($1) ORDER BY id`, title)
}

func (s *MovieStore) List(ctx context.Context) ([]domain.Movie, error) {
	return s.query(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY id`)
}

func (s *MovieStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return n, nil
}

func (s *MovieStore) IDBounds(ctx context.Context) (int64, int64, bool, error) {
	var low, high *int64
	if err := s.pool.QueryRow(ctx, `SELECT min(id), max(id) FROM movies`).Scan(&low, &high); err != nil {
		return 0, 0, false, fmt.Errorf("movie id bounds: %w", err)
	}
	if low == nil || high == nil {
		return 0, 0, false, nil
	}
	return *low, *high, true, nil
}

// Save inserts movies without an id and updates the rest. An update of an id that
// no longer exists inserts a fresh row.
func (s *MovieStore) Save(ctx context.Context, movie *domain.Movie) error {
	if movie.ID != 0 {
		tag, err := s.pool.Exec(ctx,
			`UPDATE movies SET title=$2, rating=$3, votes=$4, score=$5 WHERE id=$1`,
			movie.ID, movie.Title, movie.Rating, movie.Votes, movie.Score)
		if err != nil {
			return fmt.Errorf("update movie: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO movies (title, rating, votes, score) VALUES ($1, $2, $3, $4) RETURNING id`,
		movie.Title, movie.Rating, movie.Votes, movie.Score).Scan(&movie.ID)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	return nil
}

func (s *MovieStore) query(ctx context.Context, sql string, args ...any) ([]domain.Movie, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()
	var out []domain.Movie
	for rows.Next() {
		var m domain.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Rating, &m.Votes, &m.Score); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
