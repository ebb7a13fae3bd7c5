package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/rs/zerolog/log"
)

// HandlerFunc is an http.HandlerFunc that reports failures as errors.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn to http.HandlerFunc, translating its error into a
// response. Not-found errors produce an empty 404.
func Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrMalformedID):
		writeJSONError(w, http.StatusBadRequest, apperr.Message(err))
	case errors.Is(err, apperr.ErrInvalidToken),
		errors.Is(err, apperr.ErrTokenExpired),
		errors.Is(err, apperr.ErrUnauthorized),
		errors.Is(err, apperr.ErrForbidden):
		writeJSONError(w, http.StatusUnauthorized, apperr.Message(err))
	default:
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request failed")
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("malformatted request body")
	}
	return nil
}

// NotFound answers requests for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusNotFound, "unknown endpoint")
}
