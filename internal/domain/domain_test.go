package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestComputeScore(t *testing.T) {
	cases := []struct {
		votes  int64
		rating float64
		want   float64
	}{
		{141123, 6.5, 917299.50},
		{0, 9.9, 0},
		{1000, 0, 0},
		{3, 3.35, 10.05},
		{1, 0.005, 0.01},
	}
	for _, c := range cases {
		if got := ComputeScore(c.votes, c.rating); got != c.want {
			t.Fatalf("ComputeScore(%d, %v) = %v, want %v", c.votes, c.rating, got, c.want)
		}
	}
}

func TestCompareScores(t *testing.T) {
	if CompareScores(10.05, 10.04) != 1 || CompareScores(1, 2) != -1 {
		t.Fatalf("unexpected ordering")
	}
	if CompareScores(ComputeScore(1000, 5), ComputeScore(625, 8)) != 0 {
		t.Fatalf("expected tie")
	}
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", InvalidRequestf("game %d is finished", 3))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request kind")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("did not expect not found kind")
	}
	if KindOf(err) != KindInvalidRequest || IsRetryable(err) {
		t.Fatalf("unexpected classification %v", KindOf(err))
	}
	if !IsRetryable(Exhaustedf("try later")) {
		t.Fatalf("expected exhausted to be retryable")
	}
	if KindOf(errors.New("db down")) != KindInternal {
		t.Fatalf("expected unclassified errors to be internal")
	}
}

func TestGameRoundsAndClone(t *testing.T) {
	g := &Game{TotalErrors: 2, Rounds: []*Round{{ID: 1, Outcome: OutcomeIncorrect}, {ID: 2, MovieIDs: []int64{5, 4}}}}
	if g.RemainingAttempts() != 1 {
		t.Fatalf("expected 1 remaining attempt, got %d", g.RemainingAttempts())
	}
	if r := g.OpenRound(); r == nil || r.ID != 2 {
		t.Fatalf("expected round 2 open, got %+v", r)
	}
	p, ok := g.Rounds[1].Pair()
	if !ok || p != NewPair(4, 5) {
		t.Fatalf("expected normalized pair, got %+v", p)
	}

	cp := g.Clone()
	cp.Rounds[1].MovieIDs[0] = 99
	if g.Rounds[1].MovieIDs[0] != 5 {
		t.Fatalf("clone shares round state")
	}
}
