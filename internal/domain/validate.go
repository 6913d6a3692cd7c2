package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateQuiz checks a question set before a session may start on it.
func ValidateQuiz(quiz Quiz) error {
	if len(quiz.Questions) == 0 {
		return ErrEmptyQuestionSet
	}
	for i, q := range quiz.Questions {
		if err := ValidateQuestion(q); err != nil {
			return fmt.Errorf("question %d (%s): %w", i, q.ID, err)
		}
	}
	return nil
}

// ValidateQuestion reports ErrMalformedQuestion for a question that cannot be presented or scored.
func ValidateQuestion(q Question) error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedQuestion, err)
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: correct index %d outside %d options", ErrMalformedQuestion, q.CorrectIndex, len(q.Options))
	}
	return nil
}
