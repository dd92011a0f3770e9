package http

import (
	"encoding/json"
	"net/http"

	"movies-battle/internal/domain"
)

// retryAfterSeconds is advertised when the pair catalog is momentarily exhausted.
const retryAfterSeconds = "1"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeEnvelope(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, domain.Envelope{Status: status, Message: msg, Data: data})
}

// writeError maps an error kind onto an HTTP status. Internal errors never leak their text.
func writeError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		writeEnvelope(w, http.StatusNotFound, err.Error(), nil)
	case domain.KindInvalidRequest:
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
	case domain.KindExhausted:
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeEnvelope(w, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		writeEnvelope(w, http.StatusInternalServerError, "internal error", nil)
	}
}
