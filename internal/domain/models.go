package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Question models an MCQ question with exactly one correct option, addressed by index.
type Question struct {
	ID           string   `json:"id" yaml:"id"`
	Prompt       string   `json:"prompt" yaml:"prompt" validate:"required"`
	Options      []string `json:"options" yaml:"options" validate:"min=2,dive,required"`
	CorrectIndex int      `json:"correctIndex" yaml:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Points       int      `json:"points" yaml:"points" validate:"gte=0"` // defaults to 1 if zero
}

// PointValue returns the points awarded for a correct answer.
func (q Question) PointValue() int {
	if q.Points == 0 {
		return 1
	}
	return q.Points
}

// Quiz is an ordered question set plus the metadata the session needs.
type Quiz struct {
	ID               string     `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title"`
	Description      string     `json:"description,omitempty" yaml:"description,omitempty"`
	TimeLimitSeconds int        `json:"timeLimitSeconds" yaml:"timeLimitSeconds"`
	Published        bool       `json:"published" yaml:"published"`
	Questions        []Question `json:"questions" yaml:"questions"`
}

// AnswerStatus is the state of one position in the answer record.
type AnswerStatus int

const (
	Unanswered AnswerStatus = iota
	Selected
	Skipped
)

var answerStatusNames = map[AnswerStatus]string{
	Unanswered: "unanswered",
	Selected:   "selected",
	Skipped:    "skipped",
}

func (s AnswerStatus) String() string {
	if name, ok := answerStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AnswerStatus(%d)", int(s))
}

func (s AnswerStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *AnswerStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for status, name := range answerStatusNames {
		if name == raw {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown answer status %q", raw)
}

// Answer is the recorded outcome for one position. Option is only meaningful when Status is Selected.
type Answer struct {
	Status AnswerStatus `json:"status"`
	Option int          `json:"option"`
}

// SelectedOption returns the chosen option index, if any.
func (a Answer) SelectedOption() (int, bool) {
	if a.Status != Selected {
		return 0, false
	}
	return a.Option, true
}

// FinishReason records how a session reached its terminal state.
type FinishReason string

const (
	FinishCompleted FinishReason = "completed"
	FinishTimeout   FinishReason = "timeout"
)

// Result is the immutable record handed to the results view once a session finishes.
type Result struct {
	SessionID      string       `json:"sessionId"`
	QuizID         string       `json:"quizId"`
	UserID         string       `json:"userId"`
	Score          int          `json:"score"`
	MaxScore       int          `json:"maxScore"`
	CorrectCount   int          `json:"correctCount"`
	Correct        []bool       `json:"correct"`
	Answers        []Answer     `json:"answers"`
	Questions      []Question   `json:"questions"`
	BudgetSeconds  int          `json:"budgetSeconds"`
	ElapsedSeconds int          `json:"elapsedSeconds"`
	Reason         FinishReason `json:"reason"`
	FinishedAt     time.Time    `json:"finishedAt"`
}

// Percentage is the rounded score ratio; zero when nothing could be scored.
func (r Result) Percentage() int {
	return percentage(r.Score, r.MaxScore)
}

func percentage(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return (score*100 + maxScore/2) / maxScore
}

// Feedback is what the reveal window shows after an answer is accepted.
type Feedback struct {
	Position     int    `json:"position"`
	Selected     int    `json:"selected"`
	CorrectIndex int    `json:"correctIndex"`
	Correct      bool   `json:"correct"`
	Explanation  string `json:"explanation,omitempty"`
	Awarded      int    `json:"awarded"`
}

// Attempt is the durable summary of a finished session.
type Attempt struct {
	ID               string       `json:"id"`
	SessionID        string       `json:"sessionId"`
	QuizID           string       `json:"quizId"`
	UserID           string       `json:"userId"`
	Score            int          `json:"score"`
	MaxScore         int          `json:"maxScore"`
	TimeTakenSeconds int          `json:"timeTakenSeconds"`
	Reason           FinishReason `json:"reason"`
	Answers          []Answer     `json:"answers"`
	CompletedAt      time.Time    `json:"completedAt"`
}

func (a Attempt) Percentage() int {
	return percentage(a.Score, a.MaxScore)
}

// AttemptFromResult derives the stored attempt for a result. The ID is assigned by the caller.
func AttemptFromResult(r Result) Attempt {
	return Attempt{
		SessionID:        r.SessionID,
		QuizID:           r.QuizID,
		UserID:           r.UserID,
		Score:            r.Score,
		MaxScore:         r.MaxScore,
		TimeTakenSeconds: r.ElapsedSeconds,
		Reason:           r.Reason,
		Answers:          append([]Answer(nil), r.Answers...),
		CompletedAt:      r.FinishedAt,
	}
}
