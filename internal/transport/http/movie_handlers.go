package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"movies-battle/internal/app"
	"movies-battle/internal/domain"
)

const (
	msgMoviesListed    = "Movies listed successfully!"
	msgMovieFound      = "Movie found successfully!"
	msgMoviesRefreshed = "Movies updated successfully!"
)

func handleSaveMovie(movies *app.MovieService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req app.MovieRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, domain.InvalidRequestf("invalid movie payload"))
			return
		}
		req.ID = 0
		saveMovie(w, r, movies, req)
	}
}

func handleUpdateMovie(movies *app.MovieService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var req app.MovieRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, domain.InvalidRequestf("invalid movie payload"))
			return
		}
		req.ID = id
		saveMovie(w, r, movies, req)
	}
}

func saveMovie(w http.ResponseWriter, r *http.Request, movies *app.MovieService, req app.MovieRequest) {
	status, msg, err := movies.Save(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeEnvelope(w, status, msg, nil)
}

func handleListMovies(movies *app.MovieService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := movies.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []domain.Movie{}
		}
		writeEnvelope(w, http.StatusOK, msgMoviesListed, list)
	}
}

func handleGetMovie(movies *app.MovieService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		m, err := movies.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, msgMovieFound, m)
	}
}

func handleMoviesByTitle(movies *app.MovieService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := movies.GetByTitle(r.Context(), chi.URLParam(r, "title"))
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []domain.Movie{}
		}
		writeEnvelope(w, http.StatusOK, msgMoviesListed, list)
	}
}

func handleRefreshMovies(movies *app.MovieService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := movies.RefreshAll(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, msgMoviesRefreshed, nil)
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.InvalidRequestf("invalid movie id %q", raw)
	}
	return id, nil
}
