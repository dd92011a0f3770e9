package memory

import (
	"context"
	"sync"

	"movies-battle/internal/domain"
)

// UserDirectory is an in-memory implementation of app.UserDirectory that keeps
// registration order.
type UserDirectory struct {
	mu    sync.RWMutex
	order []string
	users map[string]domain.User
}

func NewUserDirectory(users ...domain.User) *UserDirectory {
	d := &UserDirectory{users: make(map[string]domain.User)}
	for _, u := range users {
		_ = d.SaveUser(context.Background(), u)
	}
	return d
}

func (d *UserDirectory) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (d *UserDirectory) AllUsers(_ context.Context) ([]domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.User, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.users[name])
	}
	return out, nil
}

func (d *UserDirectory) SaveUser(_ context.Context, user domain.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[user.Username]; !ok {
		d.order = append(d.order, user.Username)
	}
	d.users[user.Username] = user
	return nil
}
