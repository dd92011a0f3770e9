package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"movies-battle/internal/domain"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// GameStore keeps games and their rounds. UpdateGame locks the game row for the
// duration of the callback so concurrent writers on one game are serialized.
type GameStore struct {
	pool *pgxpool.Pool
}

func NewGameStore(pool *pgxpool.Pool) *GameStore {
	return &GameStore{pool: pool}
}

func (s *GameStore) FindGame(ctx context.Context, id int64) (*domain.Game, error) {
	return loadGame(ctx, s.pool, id, false)
}

func (s *GameStore) FindGamesByUser(ctx context.Context, username string) ([]*domain.Game, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, finished, total_score, total_errors FROM games WHERE username=$1 ORDER BY id`, username)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	var games []*domain.Game
	byID := make(map[int64]*domain.Game)
	for rows.Next() {
		g := &domain.Game{}
		if err := rows.Scan(&g.ID, &g.Username, &g.Finished, &g.TotalScore, &g.TotalErrors); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
		byID[g.ID] = g
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	if len(games) == 0 {
		return nil, nil
	}

	rounds, err := queryRounds(ctx, s.pool,
		`SELECT r.id, r.game_id, r.movie1_id, r.movie2_id, r.outcome
		   FROM rounds r JOIN games g ON g.id = r.game_id
		  WHERE g.username=$1 ORDER BY r.id`, username)
	if err != nil {
		return nil, err
	}
	for _, r := range rounds {
		if g, ok := byID[r.GameID]; ok {
			g.Rounds = append(g.Rounds, r)
		}
	}
	return games, nil
}

func (s *GameStore) FindRound(ctx context.Context, id int64) (*domain.Round, error) {
	rounds, err := queryRounds(ctx, s.pool,
		`SELECT id, game_id, movie1_id, movie2_id, outcome FROM rounds WHERE id=$1`, id)
	if err != nil || len(rounds) == 0 {
		return nil, err
	}
	return rounds[0], nil
}

func (s *GameStore) CreateGame(ctx context.Context, game *domain.Game) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO games (username, finished, total_score, total_errors) VALUES ($1, $2, $3, $4) RETURNING id`,
		game.Username, game.Finished, game.TotalScore, game.TotalErrors).Scan(&game.ID)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	if err := writeRounds(ctx, tx, game); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *GameStore) UpdateGame(ctx context.Context, id int64, fn func(*domain.Game) error) (*domain.Game, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	game, err := loadGame(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, domain.NotFoundf("game not found")
	}
	if err := fn(game); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE games SET finished=$2, total_score=$3, total_errors=$4 WHERE id=$1`,
		game.ID, game.Finished, game.TotalScore, game.TotalErrors)
	if err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}
	if err := writeRounds(ctx, tx, game); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return game.Clone(), nil
}

func loadGame(ctx context.Context, q querier, id int64, forUpdate bool) (*domain.Game, error) {
	sql := `SELECT id, username, finished, total_score, total_errors FROM games WHERE id=$1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	g := &domain.Game{}
	err := q.QueryRow(ctx, sql, id).Scan(&g.ID, &g.Username, &g.Finished, &g.TotalScore, &g.TotalErrors)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	g.Rounds, err = queryRounds(ctx, q,
		`SELECT id, game_id, movie1_id, movie2_id, outcome FROM rounds WHERE game_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func queryRounds(ctx context.Context, q querier, sql string, args ...interface{}) ([]*domain.Round, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()
	var out []*domain.Round
	for rows.Next() {
		var (
			r              domain.Round
			movie1, movie2 *int64
			outcome        int16
		)
		if err := rows.Scan(&r.ID, &r.GameID, &movie1, &movie2, &outcome); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		for _, m := range []*int64{movie1, movie2} {
			if m != nil {
				r.MovieIDs = append(r.MovieIDs, *m)
			}
		}
		r.Outcome = domain.Outcome(outcome)
		out = append(out, &r)
	}
	return out, rows.Err()
}

// writeRounds inserts rounds without an id and writes back the outcome of the rest.
func writeRounds(ctx context.Context, tx pgx.Tx, game *domain.Game) error {
	for _, r := range game.Rounds {
		r.GameID = game.ID
		if r.ID != 0 {
			if _, err := tx.Exec(ctx, `UPDATE rounds SET outcome=$2 WHERE id=$1`, r.ID, int16(r.Outcome)); err != nil {
				return fmt.Errorf("update round: %w", err)
			}
			continue
		}
		movie1, movie2 := roundSlots(r)
		err := tx.QueryRow(ctx,
			`INSERT INTO rounds (game_id, movie1_id, movie2_id, outcome) VALUES ($1, $2, $3, $4) RETURNING id`,
			game.ID, movie1, movie2, int16(r.Outcome)).Scan(&r.ID)
		if err != nil {
			return fmt.Errorf("insert round: %w", err)
		}
	}
	return nil
}

func roundSlots(r *domain.Round) (*int64, *int64) {
	var slots [2]*int64
	for i := 0; i < len(r.MovieIDs) && i < 2; i++ {
		id := r.MovieIDs[i]
		slots[i] = &id
	}
	return slots[0], slots[1]
}
