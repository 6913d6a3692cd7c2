package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/auth"
	"timed-quiz-service/internal/domain"
)

// SessionHandler exposes the quiz-taking use cases over REST.
type SessionHandler struct {
	service *app.QuizService
}

func NewSessionHandler(service *app.QuizService) *SessionHandler {
	return &SessionHandler{service: service}
}

type startRequest struct {
	BudgetSeconds int `json:"budgetSeconds"`
}

type answerRequest struct {
	Option *int `json:"option"`
}

// Start handles POST /quizzes/{quizID}/sessions. The body is optional.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, errBadRequest)
		return
	}

	session, err := h.service.Start(r.Context(), mux.Vars(r)["quizID"], userID, req.BudgetSeconds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session.View())
}

// Get handles GET /sessions/{sessionID}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.ownedView(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Answer handles POST /sessions/{sessionID}/answer.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	view, err := h.ownedView(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Option == nil {
		writeError(w, errBadRequest)
		return
	}
	feedback, err := h.service.SelectAnswer(r.Context(), view.SessionID, *req.Option)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

// Skip handles POST /sessions/{sessionID}/skip and returns the state after skipping.
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	view, err := h.ownedView(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.service.Skip(r.Context(), view.SessionID); err != nil {
		writeError(w, err)
		return
	}
	// the skip may have finished the session, in which case the view is gone
	if next, err := h.service.View(r.Context(), view.SessionID); err == nil {
		writeJSON(w, http.StatusOK, next)
		return
	}
	view.State = string(app.StateFinished)
	writeJSON(w, http.StatusOK, view)
}

// Result handles GET /sessions/{sessionID}/result.
func (h *SessionHandler) Result(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())
	result, err := h.service.Result(r.Context(), mux.Vars(r)["sessionID"])
	if err != nil {
		writeError(w, err)
		return
	}
	if result.UserID != userID {
		writeError(w, domain.ErrResultNotFound)
		return
	}
	writeJSON(w, http.StatusOK, domain.Summarize(result))
}

// Attempts handles GET /me/attempts?limit=N.
func (h *SessionHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFrom(r.Context())
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest))
			return
		}
		limit = n
	}
	attempts, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

// ownedView loads the session named in the path; sessions of other users look absent.
func (h *SessionHandler) ownedView(r *http.Request) (domain.SessionView, error) {
	userID, _ := auth.UserFrom(r.Context())
	view, err := h.service.View(r.Context(), mux.Vars(r)["sessionID"])
	if err != nil {
		return domain.SessionView{}, err
	}
	if view.UserID != userID {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return view, nil
}
