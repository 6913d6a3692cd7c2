package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"timed-quiz-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps domain errors onto HTTP statuses; anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrResultNotReady):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOutOfRangeSelection),
		errors.Is(err, domain.ErrInvalidBudget),
		errors.Is(err, domain.ErrEmptyQuestionSet),
		errors.Is(err, domain.ErrMalformedQuestion),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("invalid request body")
