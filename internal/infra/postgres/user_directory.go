package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"movies-battle/internal/domain"
)

// UserDirectory reads players from the users table in registration order.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := d.pool.QueryRow(ctx, `SELECT username, name FROM users WHERE username=$1`, username).
		Scan(&u.Username, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &u, nil
}

func (d *UserDirectory) AllUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := d.pool.Query(ctx, `SELECT username, name FROM users ORDER BY created_at, username`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()
	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Username, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *UserDirectory) SaveUser(ctx context.Context, user domain.User) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO users (username, name) VALUES ($1, $2) ON CONFLICT (username) DO UPDATE SET name=EXCLUDED.name`,
		user.Username, user.Name)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
