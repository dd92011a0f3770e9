package app_test

import (
	"context"
	"testing"
	"time"

	"movies-battle/internal/app"
	"movies-battle/internal/domain"
	"movies-battle/internal/infra/memory"
)

func TestRankingSumsAndMultiplies(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserDirectory(
		domain.User{Username: "alice", Name: "Alice"},
		domain.User{Username: "bob", Name: "Bob"},
		domain.User{Username: "carol", Name: "Carol"},
		domain.User{Username: "dave", Name: "Dave"},
	)
	games := memory.NewGameStore()
	seedGame(t, games, "alice", 2, true)
	seedGame(t, games, "bob", 3, true)
	seedGame(t, games, "bob", 1, false)
	seedGame(t, games, "carol", 2, false)

	ranking, err := app.NewRankingService(users, games, nil, nil).Ranking(ctx)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}

	want := []domain.RankingEntry{
		{Username: "bob", Name: "Bob", TotalScore: 400},
		{Username: "alice", Name: "Alice", TotalScore: 200},
		{Username: "carol", Name: "Carol", TotalScore: 200},
		{Username: "dave", Name: "Dave", TotalScore: 0},
	}
	if len(ranking) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), ranking)
	}
	for i := range want {
		if ranking[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], ranking[i])
		}
	}
}

func TestRankingUsesCache(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserDirectory(domain.User{Username: "alice", Name: "Alice"})
	games := memory.NewGameStore()
	cache := &stubCache{}
	svc := app.NewRankingService(users, games, cache, nil)

	if _, err := svc.Ranking(ctx); err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected computed ranking cached, sets=%d", cache.sets)
	}

	seedGame(t, games, "alice", 5, false)
	cached, _ := svc.Ranking(ctx)
	if cached[0].TotalScore != 0 {
		t.Fatalf("expected cached snapshot, got %+v", cached)
	}

	svc.ScoreChanged(ctx)
	fresh, _ := svc.Ranking(ctx)
	if fresh[0].TotalScore != 500 {
		t.Fatalf("expected invalidated cache to recompute, got %+v", fresh)
	}
}

func TestRankingSubscribersReceiveUpdates(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserDirectory(domain.User{Username: "alice", Name: "Alice"})
	games := memory.NewGameStore()
	svc := app.NewRankingService(users, games, nil, nil)

	ch, cancel, err := svc.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-ch
	if len(initial) != 1 || initial[0].TotalScore != 0 {
		t.Fatalf("unexpected initial snapshot %+v", initial)
	}

	seedGame(t, games, "alice", 1, false)
	svc.ScoreChanged(ctx)

	select {
	case update := <-ch:
		if update[0].TotalScore != 100 {
			t.Fatalf("expected 100 after score change, got %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for ranking update")
	}
}

func seedGame(t *testing.T, games *memory.GameStore, username string, score int64, finished bool) {
	t.Helper()
	g := &domain.Game{Username: username, TotalScore: score, Finished: finished}
	if err := games.CreateGame(context.Background(), g); err != nil {
		t.Fatalf("seed game: %v", err)
	}
}

type stubCache struct {
	entries []domain.RankingEntry
	ok      bool
	sets    int
}

func (c *stubCache) Get(context.Context) ([]domain.RankingEntry, bool, error) {
	return c.entries, c.ok, nil
}

func (c *stubCache) Set(_ context.Context, entries []domain.RankingEntry) error {
	c.entries, c.ok = entries, true
	c.sets++
	return nil
}

func (c *stubCache) Invalidate(context.Context) error {
	c.entries, c.ok = nil, false
	return nil
}
