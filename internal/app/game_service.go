package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"movies-battle/internal/domain"
)

const (
	msgNewGame     = "Starting a new game!"
	msgResumeGame  = "Unfinished game found! Resuming the game!"
	msgNewRound    = "Starting a new round!"
	msgResumeRound = "Unfinished round found! Resuming the round!"
	msgGameOver    = "Wrong answer! Game over!"
	msgGameStopped = "Game finished!"
)

// GameService runs the game and round lifecycle for players. Identity is always passed in
// explicitly: currentUser is the authenticated caller, username the player named in the request.
type GameService struct {
	games    GameStore
	movies   MovieStore
	users    UserDirectory
	pairs    *PairSelector
	rounds   *RoundManager
	listener ScoreListener
	logger   *zap.Logger

	// startGame is serialized per user so two concurrent starts cannot open two games.
	userLocks keyedMutex
}

func NewGameService(games GameStore, movies MovieStore, users UserDirectory, pairs *PairSelector, logger *zap.Logger) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameService{
		games:  games,
		movies: movies,
		users:  users,
		pairs:  pairs,
		rounds: NewRoundManager(movies),
		logger: logger,
	}
}

// SetScoreListener registers a listener notified after every correct answer.
func (s *GameService) SetScoreListener(l ScoreListener) {
	s.listener = l
}

// StartGame resumes the caller's unfinished game or creates a new one, and returns it
// together with its open round.
func (s *GameService) StartGame(ctx context.Context, currentUser string) (domain.GameView, string, error) {
	user, err := s.currentUser(ctx, currentUser)
	if err != nil {
		return domain.GameView{}, "", err
	}

	unlock := s.userLocks.lock(user.Username)
	defer unlock()

	played, err := s.games.FindGamesByUser(ctx, user.Username)
	if err != nil {
		return domain.GameView{}, "", fmt.Errorf("load games: %w", err)
	}

	msg := msgNewGame
	var game *domain.Game
	for _, g := range played {
		if !g.Finished {
			game = g
			msg = msgResumeGame
			break
		}
	}
	if game == nil {
		game = &domain.Game{Username: user.Username}
		if err := s.games.CreateGame(ctx, game); err != nil {
			return domain.GameView{}, "", fmt.Errorf("create game: %w", err)
		}
		s.logger.Info("game created", zap.Int64("game_id", game.ID), zap.String("username", user.Username))
	}

	view, _, err := s.openRound(ctx, user, game.ID)
	if err != nil {
		return domain.GameView{}, "", err
	}
	s.logger.Info(msg, zap.Int64("game_id", view.ID), zap.Int64("round_id", view.RoundID), zap.String("username", user.Username))
	return view, msg, nil
}

// NewRound returns the game's open round, opening one if every round is resolved.
func (s *GameService) NewRound(ctx context.Context, currentUser string, gameID int64, username string) (domain.GameView, string, error) {
	user, err := s.currentUser(ctx, currentUser)
	if err != nil {
		return domain.GameView{}, "", err
	}
	game, err := s.ownedGame(ctx, user, gameID, username)
	if err != nil {
		return domain.GameView{}, "", err
	}
	if err := s.verifyUnfinished(game); err != nil {
		return domain.GameView{}, "", err
	}

	view, resumed, err := s.openRound(ctx, user, game.ID)
	if err != nil {
		return domain.GameView{}, "", err
	}
	msg := msgNewRound
	if resumed {
		msg = msgResumeRound
	}
	s.logger.Info(msg, zap.Int64("game_id", view.ID), zap.Int64("round_id", view.RoundID), zap.String("username", user.Username))
	return view, msg, nil
}

// Answer resolves a round with the player's pick and applies the scoring policy: a correct
// answer adds one point, a wrong one adds an error and the third error finishes the game.
func (s *GameService) Answer(ctx context.Context, currentUser string, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	user, err := s.currentUser(ctx, currentUser)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	game, err := s.ownedGame(ctx, user, sub.GameID, sub.Username)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if err := s.verifyUnfinished(game); err != nil {
		return domain.AnswerResult{}, err
	}
	round, err := s.games.FindRound(ctx, sub.RoundID)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("load round: %w", err)
	}
	if round == nil {
		return domain.AnswerResult{}, s.reject(domain.NotFoundf("round not found"))
	}
	if round.GameID != game.ID {
		return domain.AnswerResult{}, s.reject(domain.InvalidRequestf("this round does not belong to this game"))
	}
	if round.Resolved() {
		return domain.AnswerResult{}, s.reject(domain.InvalidRequestf("this round is already finished"))
	}
	if len(round.MovieIDs) < 2 {
		return domain.AnswerResult{}, s.reject(domain.InvalidRequestf("an error occurred while validating the answer"))
	}

	var outcome domain.Outcome
	updated, err := s.games.UpdateGame(ctx, game.ID, func(g *domain.Game) error {
		// State may have moved since the unlocked reads above.
		if err := s.verifyUnfinished(g); err != nil {
			return err
		}
		r := g.Round(sub.RoundID)
		if r == nil {
			return domain.InvalidRequestf("this round does not belong to this game")
		}
		res, rerr := s.rounds.Resolve(ctx, r, sub.AnswerMovieID)
		if rerr != nil {
			return rerr
		}
		outcome = res
		if outcome == domain.OutcomeCorrect {
			g.TotalScore++
		} else {
			g.TotalErrors++
			if g.TotalErrors >= domain.MaxErrors {
				g.Finished = true
			}
		}
		return nil
	})
	if err != nil {
		return domain.AnswerResult{}, s.classify(err)
	}

	result := domain.AnswerResult{
		Correct:           outcome == domain.OutcomeCorrect,
		TotalScore:        updated.TotalScore,
		RemainingAttempts: updated.RemainingAttempts(),
		GameOver:          updated.TotalErrors >= domain.MaxErrors,
	}
	switch {
	case result.GameOver:
		result.Message = msgGameOver
	case result.Correct:
		result.Message = fmt.Sprintf("Correct answer! Total score: %d", updated.TotalScore)
	default:
		result.Message = fmt.Sprintf("Wrong answer! Remaining attempts: %d", result.RemainingAttempts)
	}
	s.logger.Info(result.Message,
		zap.Int64("game_id", updated.ID),
		zap.Int64("round_id", sub.RoundID),
		zap.String("username", user.Username),
		zap.Stringer("outcome", outcome),
	)

	if result.Correct && s.listener != nil {
		s.listener.ScoreChanged(ctx)
	}
	return result, nil
}

// StopGame finishes a game on the player's request.
func (s *GameService) StopGame(ctx context.Context, currentUser string, gameID int64, username string) (string, error) {
	user, err := s.currentUser(ctx, currentUser)
	if err != nil {
		return "", err
	}
	game, err := s.ownedGame(ctx, user, gameID, username)
	if err != nil {
		return "", err
	}
	if err := s.verifyUnfinished(game); err != nil {
		return "", err
	}

	_, err = s.games.UpdateGame(ctx, game.ID, func(g *domain.Game) error {
		if err := s.verifyUnfinished(g); err != nil {
			return err
		}
		g.Finished = true
		return nil
	})
	if err != nil {
		return "", s.classify(err)
	}
	s.logger.Info(msgGameStopped, zap.Int64("game_id", game.ID), zap.String("username", user.Username))
	return msgGameStopped, nil
}

// openRound returns the game's open round view, creating a round when none is open.
// resumed reports whether an existing round was reused.
func (s *GameService) openRound(ctx context.Context, user *domain.User, gameID int64) (domain.GameView, bool, error) {
	resumed := false
	updated, err := s.games.UpdateGame(ctx, gameID, func(g *domain.Game) error {
		if err := s.verifyUnfinished(g); err != nil {
			return err
		}
		if s.rounds.FindUnresolvedRound(g) != nil {
			resumed = true
			return nil
		}

		history, err := s.games.FindGamesByUser(ctx, g.Username)
		if err != nil {
			return fmt.Errorf("load round history: %w", err)
		}
		for i, h := range history {
			if h.ID == g.ID {
				history[i] = g
			}
		}
		low, high, ok, err := s.movies.IDBounds(ctx)
		if err != nil {
			return fmt.Errorf("load movie bounds: %w", err)
		}
		if !ok {
			return domain.Exhaustedf("no movies registered yet")
		}
		a, b, err := s.pairs.SelectPair(ctx, g.Username, low, high, UsedPairs(history))
		if err != nil {
			return err
		}
		s.rounds.CreateRound(g, a, b)
		return nil
	})
	if err != nil {
		return domain.GameView{}, false, s.classify(err)
	}

	round := updated.OpenRound()
	if round == nil {
		return domain.GameView{}, false, fmt.Errorf("game %d has no open round after update", updated.ID)
	}
	view, err := s.gameView(ctx, user, updated, round)
	return view, resumed, err
}

func (s *GameService) gameView(ctx context.Context, user *domain.User, game *domain.Game, round *domain.Round) (domain.GameView, error) {
	if len(round.MovieIDs) != 2 {
		return domain.GameView{}, s.reject(domain.InvalidRequestf("round %d is malformed", round.ID))
	}
	refs := make([]domain.MovieRef, 2)
	for i, id := range round.MovieIDs {
		movie, err := s.movies.FindByID(ctx, id)
		if err != nil {
			return domain.GameView{}, fmt.Errorf("load movie %d: %w", id, err)
		}
		if movie == nil {
			return domain.GameView{}, s.reject(domain.NotFoundf("movie %d not found", id))
		}
		refs[i] = domain.MovieRef{ID: movie.ID, Title: movie.Title}
	}
	return domain.GameView{
		ID:          game.ID,
		Finished:    game.Finished,
		User:        *user,
		TotalScore:  game.TotalScore,
		TotalErrors: game.TotalErrors,
		RoundID:     round.ID,
		Movie1:      refs[0],
		Movie2:      refs[1],
	}, nil
}

func (s *GameService) currentUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, s.reject(domain.NotFoundf("user %s not found", username))
	}
	return user, nil
}

// ownedGame loads the game and checks that the caller, the named player and the game's
// owner are all the same user.
func (s *GameService) ownedGame(ctx context.Context, user *domain.User, gameID int64, username string) (*domain.Game, error) {
	if user.Username != username {
		return nil, s.reject(domain.InvalidRequestf("this game does not belong to this user"))
	}
	game, err := s.games.FindGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	if game == nil {
		return nil, s.reject(domain.NotFoundf("game not found"))
	}
	if game.Username != username {
		return nil, s.reject(domain.InvalidRequestf("this game does not belong to this user"))
	}
	return game, nil
}

func (s *GameService) verifyUnfinished(game *domain.Game) error {
	if game.Finished {
		return s.reject(domain.InvalidRequestf("this game is already finished"))
	}
	return nil
}

// classify logs unclassified errors coming out of a game update.
func (s *GameService) classify(err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	s.logger.Error("game update failed", zap.Error(err))
	return err
}

func (s *GameService) reject(err error) error {
	s.logger.Error(err.Error(), zap.Stringer("kind", domain.KindOf(err)))
	return err
}
