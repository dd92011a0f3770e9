package app

import (
	"context"

	"movies-battle/internal/domain"
)

// RoundManager opens and resolves rounds. It works on games handed out by
// GameStore.UpdateGame, so every mutation happens under the game's lock and is
// persisted when the update commits.
type RoundManager struct {
	movies MovieStore
}

func NewRoundManager(movies MovieStore) *RoundManager {
	return &RoundManager{movies: movies}
}

// CreateRound appends a new unresolved round for the two movies to game.
func (m *RoundManager) CreateRound(game *domain.Game, movieA, movieB int64) *domain.Round {
	round := &domain.Round{
		GameID:   game.ID,
		MovieIDs: []int64{movieA, movieB},
		Outcome:  domain.OutcomeUnresolved,
	}
	game.Rounds = append(game.Rounds, round)
	return round
}

// FindUnresolvedRound returns the game's first open round, or nil.
func (m *RoundManager) FindUnresolvedRound(game *domain.Game) *domain.Round {
	return game.OpenRound()
}

// Resolve records whether chosenMovieID is the higher-scoring movie of the round.
// On a tie the first slot is checked, then the second, so either movie is accepted.
func (m *RoundManager) Resolve(ctx context.Context, round *domain.Round, chosenMovieID int64) (domain.Outcome, error) {
	if round.Resolved() {
		return round.Outcome, domain.InvalidRequestf("this round is already finished")
	}
	if len(round.MovieIDs) < 2 {
		return domain.OutcomeUnresolved, domain.InvalidRequestf("an error occurred while validating the answer")
	}

	movie1, err := m.movie(ctx, round.MovieIDs[0])
	if err != nil {
		return domain.OutcomeUnresolved, err
	}
	movie2, err := m.movie(ctx, round.MovieIDs[1])
	if err != nil {
		return domain.OutcomeUnresolved, err
	}

	var correct bool
	switch domain.CompareScores(movie1.Score, movie2.Score) {
	case 1:
		correct = movie1.ID == chosenMovieID
	case -1:
		correct = movie2.ID == chosenMovieID
	default:
		correct = movie1.ID == chosenMovieID
		if !correct {
			correct = movie2.ID == chosenMovieID
		}
	}

	if correct {
		round.Outcome = domain.OutcomeCorrect
	} else {
		round.Outcome = domain.OutcomeIncorrect
	}
	return round.Outcome, nil
}

func (m *RoundManager) movie(ctx context.Context, id int64) (*domain.Movie, error) {
	movie, err := m.movies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, domain.NotFoundf("movie %d not found", id)
	}
	return movie, nil
}
