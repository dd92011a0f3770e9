package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchMovieParsesRatingAndVotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != "k" || r.URL.Query().Get("t") != "Blade Runner" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"Response":"True","Title":"Blade Runner","imdbRating":"6.5","imdbVotes":"141,123"}`))
	}))
	defer srv.Close()

	m, err := NewClient("k", srv.URL+"/", time.Second).FetchMovie(context.Background(), "Blade Runner")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if m.Title != "Blade Runner" || m.Rating != 6.5 || m.Votes != 141123 {
		t.Fatalf("unexpected movie %+v", m)
	}
}

func TestFetchMovieEmptyFieldsAreZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"True","Title":"Obscure","imdbRating":"N/A","imdbVotes":""}`))
	}))
	defer srv.Close()

	m, err := NewClient("k", srv.URL+"/", time.Second).FetchMovie(context.Background(), "Obscure")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if m.Rating != 0 || m.Votes != 0 {
		t.Fatalf("expected zero metadata, got %+v", m)
	}
}

func TestFetchMovieNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer srv.Close()

	if _, err := NewClient("k", srv.URL+"/", time.Second).FetchMovie(context.Background(), "Nope"); err == nil {
		t.Fatalf("expected error for missing movie")
	}
}

func TestFetchMovieRequiresKey(t *testing.T) {
	if _, err := NewClient("", "http://unused/", time.Second).FetchMovie(context.Background(), "Heat"); err == nil {
		t.Fatalf("expected error without api key")
	}
}
