package domain

// MaxErrors is the number of wrong answers that ends a game.
const MaxErrors = 3

// Movie is an already-scored catalog entry.
type Movie struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Rating float64 `json:"rating"`
	Votes  int64   `json:"votes"`
	Score  float64 `json:"score"`
}

// Outcome is the resolution state of a round.
type Outcome int

const (
	OutcomeUnresolved Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "unresolved"
	}
}

// Round pairs two movies inside a game. MovieIDs keeps display order.
type Round struct {
	ID       int64
	GameID   int64
	MovieIDs []int64
	Outcome  Outcome
}

// Resolved reports whether an answer was already recorded.
func (r *Round) Resolved() bool {
	return r.Outcome != OutcomeUnresolved
}

// Pair returns the round's movies as an unordered pair.
// ok is false for malformed rounds that do not hold exactly two movies.
func (r *Round) Pair() (Pair, bool) {
	if len(r.MovieIDs) != 2 {
		return Pair{}, false
	}
	return NewPair(r.MovieIDs[0], r.MovieIDs[1]), true
}

// Game is one play-through. Rounds are kept in creation order.
type Game struct {
	ID          int64
	Username    string
	Finished    bool
	TotalScore  int64
	TotalErrors int64
	Rounds      []*Round
}

// OpenRound returns the first unresolved round, if any.
func (g *Game) OpenRound() *Round {
	for _, r := range g.Rounds {
		if !r.Resolved() {
			return r
		}
	}
	return nil
}

// Round looks up one of the game's rounds by id.
func (g *Game) Round(id int64) *Round {
	for _, r := range g.Rounds {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// RemainingAttempts is MaxErrors minus the wrong answers so far, never negative.
func (g *Game) RemainingAttempts() int64 {
	if g.TotalErrors >= MaxErrors {
		return 0
	}
	return MaxErrors - g.TotalErrors
}

// Clone deep-copies the game and its rounds.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Rounds = make([]*Round, len(g.Rounds))
	for i, r := range g.Rounds {
		rc := *r
		rc.MovieIDs = append([]int64(nil), r.MovieIDs...)
		cp.Rounds[i] = &rc
	}
	return &cp
}

// User is an entry of the user directory.
type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Pair is an unordered pair of movie ids, normalised so that Low <= High.
type Pair struct {
	Low  int64
	High int64
}

func NewPair(a, b int64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Low: a, High: b}
}

// PairSet holds the pairs already shown to a user.
type PairSet map[Pair]struct{}

func (s PairSet) Add(p Pair) { s[p] = struct{}{} }

func (s PairSet) Contains(p Pair) bool {
	_, ok := s[p]
	return ok
}

// RankingEntry is one leaderboard line. TotalScore carries the displayed (x100) value.
type RankingEntry struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	TotalScore int64  `json:"totalScore"`
}

// MovieRef is the id/title view of a movie shown to players.
type MovieRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// GameView is what a player sees when a game or round is opened.
type GameView struct {
	ID          int64    `json:"id"`
	Finished    bool     `json:"finished"`
	User        User     `json:"user"`
	TotalScore  int64    `json:"totalScore"`
	TotalErrors int64    `json:"totalErrors"`
	RoundID     int64    `json:"roundId"`
	Movie1      MovieRef `json:"movie1"`
	Movie2      MovieRef `json:"movie2"`
}

// AnswerSubmission is a player's pick for a round.
type AnswerSubmission struct {
	Username      string `json:"username"`
	GameID        int64  `json:"gameId"`
	RoundID       int64  `json:"roundId"`
	AnswerMovieID int64  `json:"answerMovieId"`
}

// AnswerResult summarizes a resolved round for the caller.
type AnswerResult struct {
	Correct           bool   `json:"correct"`
	TotalScore        int64  `json:"totalScore"`
	RemainingAttempts int64  `json:"remainingAttempts"`
	GameOver          bool   `json:"gameOver"`
	Message           string `json:"-"`
}
