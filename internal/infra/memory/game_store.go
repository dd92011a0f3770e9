package memory

import (
	"context"
	"sort"
	"sync"

	"movies-battle/internal/domain"
)

// GameStore is an in-memory implementation of app.GameStore. Games are kept as records
// keyed by id and only ever handed out as copies; UpdateGame serializes writers per game.
type GameStore struct {
	mu          sync.RWMutex
	games       map[int64]*domain.Game
	roundGame   map[int64]int64
	nextGameID  int64
	nextRoundID int64

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

func NewGameStore() *GameStore {
	return &GameStore{
		games:     make(map[int64]*domain.Game),
		roundGame: make(map[int64]int64),
		locks:     make(map[int64]*sync.Mutex),
	}
}

func (s *GameStore) FindGame(_ context.Context, id int64) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, nil
	}
	return g.Clone(), nil
}

func (s *GameStore) FindGamesByUser(_ context.Context, username string) ([]*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Game
	for _, g := range s.games {
		if g.Username == username {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *GameStore) FindRound(_ context.Context, id int64) (*domain.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gameID, ok := s.roundGame[id]
	if !ok {
		return nil, nil
	}
	r := s.games[gameID].Round(id)
	if r == nil {
		return nil, nil
	}
	cp := *r
	cp.MovieIDs = append([]int64(nil), r.MovieIDs...)
	return &cp, nil
}

func (s *GameStore) CreateGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGameID++
	game.ID = s.nextGameID
	stored := game.Clone()
	s.assignRoundsLocked(stored)
	s.games[game.ID] = stored
	return nil
}

func (s *GameStore) UpdateGame(_ context.Context, id int64, fn func(*domain.Game) error) (*domain.Game, error) {
	lock := s.gameLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	current, ok := s.games[id]
	var work *domain.Game
	if ok {
		work = current.Clone()
	}
	s.mu.RUnlock()
	if !ok {
		return nil, domain.NotFoundf("game not found")
	}

	if err := fn(work); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.assignRoundsLocked(work)
	s.games[id] = work
	s.mu.Unlock()
	return work.Clone(), nil
}

// Delete drops a game together with its rounds.
func (s *GameStore) Delete(_ context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return
	}
	for _, r := range g.Rounds {
		delete(s.roundGame, r.ID)
	}
	delete(s.games, id)
}

func (s *GameStore) assignRoundsLocked(g *domain.Game) {
	for _, r := range g.Rounds {
		if r.ID == 0 {
			s.nextRoundID++
			r.ID = s.nextRoundID
		}
		r.GameID = g.ID
		s.roundGame[r.ID] = g.ID
	}
}

func (s *GameStore) gameLock(id int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	return m
}
