package http

import (
	"net/http"
	"strconv"

	"movies-battle/internal/app"
	"movies-battle/internal/domain"
)

const msgRanking = "Ranking displayed successfully!"

func handleStartGame(games *app.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, msg, err := games.StartGame(r.Context(), currentUsername(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, msg, view)
	}
}

func handleNewRound(games *app.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := queryID(r, "gameId")
		if err != nil {
			writeError(w, err)
			return
		}
		view, msg, err := games.NewRound(r.Context(), currentUsername(r), gameID, r.URL.Query().Get("username"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, msg, view)
	}
}

func handleAnswer(games *app.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub domain.AnswerSubmission
		if err := readJSON(r, &sub); err != nil {
			writeError(w, domain.InvalidRequestf("invalid answer payload"))
			return
		}
		res, err := games.Answer(r.Context(), currentUsername(r), sub)
		if err != nil {
			writeError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, res.Message, res)
	}
}

func handleStopGame(games *app.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := queryID(r, "gameId")
		if err != nil {
			writeError(w, err)
			return
		}
		msg, err := games.StopGame(r.Context(), currentUsername(r), gameID, r.URL.Query().Get("username"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, msg, nil)
	}
}

func handleRanking(ranking *app.RankingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := ranking.Ranking(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if entries == nil {
			entries = []domain.RankingEntry{}
		}
		writeEnvelope(w, http.StatusOK, msgRanking, entries)
	}
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.InvalidRequestf("invalid %s %q", name, raw)
	}
	return id, nil
}
