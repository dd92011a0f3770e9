package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"movies-battle/internal/app"
)

// NewRouter wires the REST API, the health probe and the live ranking feed.
func NewRouter(games *app.GameService, ranking *app.RankingService, movies *app.MovieService, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws/ranking", NewWSHandler(ranking, logger).ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(identityMiddleware)

		r.Route("/game", func(r chi.Router) {
			r.Get("/startGame", handleStartGame(games))
			r.Get("/newRound", handleNewRound(games))
			r.Post("/answer", handleAnswer(games))
			r.Get("/stopGame", handleStopGame(games))
			r.Get("/ranking", handleRanking(ranking))
		})

		r.Route("/movie", func(r chi.Router) {
			r.Get("/", handleListMovies(movies))
			r.Post("/", handleSaveMovie(movies))
			r.Put("/", handleRefreshMovies(movies))
			r.Get("/{id}", handleGetMovie(movies))
			r.Put("/{id}", handleUpdateMovie(movies))
			r.Get("/title/{title}", handleMoviesByTitle(movies))
		})
	})
	return r
}
