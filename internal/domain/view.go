package domain

import "fmt"

// QuestionView is what a client renders for the current position.
// Correctness details are only populated while the answer is being revealed.
type QuestionView struct {
	Position     int      `json:"position"`
	Total        int      `json:"total"`
	Progress     int      `json:"progress"`
	QuestionID   string   `json:"questionId"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	Points       int      `json:"points"`
	Answer       Answer   `json:"answer"`
	Revealing    bool     `json:"revealing"`
	CorrectIndex *int     `json:"correctIndex,omitempty"`
	Correct      *bool    `json:"correct,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

// SessionView wraps the question projection with session-wide state.
type SessionView struct {
	SessionID        string       `json:"sessionId"`
	QuizID           string       `json:"quizId"`
	UserID           string       `json:"userId"`
	State            string       `json:"state"`
	RemainingSeconds int          `json:"remainingSeconds"`
	Question         QuestionView `json:"question"`
}

// ProjectQuestion derives the view of one position from the question set, the answer record and the reveal flag.
func ProjectQuestion(questions []Question, position int, answers []Answer, revealing bool) QuestionView {
	if position < 0 || position >= len(questions) {
		return QuestionView{Position: position, Total: len(questions)}
	}
	q := questions[position]
	view := QuestionView{
		Position:   position,
		Total:      len(questions),
		Progress:   (position + 1) * 100 / len(questions),
		QuestionID: q.ID,
		Prompt:     q.Prompt,
		Options:    append([]string(nil), q.Options...),
		Points:     q.PointValue(),
		Revealing:  revealing,
	}
	if position < len(answers) {
		view.Answer = answers[position]
	}
	if revealing {
		correctIndex := q.CorrectIndex
		option, ok := view.Answer.SelectedOption()
		correct := ok && option == correctIndex
		view.CorrectIndex = &correctIndex
		view.Correct = &correct
		view.Explanation = q.Explanation
	}
	return view
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
