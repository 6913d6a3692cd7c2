package domain

import "errors"

var (
	// ErrInvalidTransition is returned when an action is not allowed in the session's current state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrOutOfRangeSelection indicates an option index outside the current question's options.
	ErrOutOfRangeSelection = errors.New("option index out of range")
	// ErrEmptyQuestionSet is returned when a session is started without questions.
	ErrEmptyQuestionSet = errors.New("question set is empty")
	// ErrMalformedQuestion indicates a question that fails start-time validation.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrInvalidBudget is returned for a non-positive time budget.
	ErrInvalidBudget = errors.New("time budget must be positive")

	// ErrSessionNotFound is returned when a quiz session does not exist (or is no longer live).
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrResultNotFound indicates no stored result exists for a session.
	ErrResultNotFound = errors.New("result not found")
	// ErrResultNotReady is returned while the session is still running.
	ErrResultNotReady = errors.New("session has not finished")
	// ErrUnauthorized is returned when the caller identity cannot be established.
	ErrUnauthorized = errors.New("unauthorized")
)
