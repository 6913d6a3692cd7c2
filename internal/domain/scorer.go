package domain

// Score is the scorer's output for one answer record.
type Score struct {
	Points       int
	MaxPoints    int
	CorrectCount int
	Correct      []bool
}

// ScoreAnswers sums the points of every position whose selected option matches the correct index.
// Skipped and unanswered positions never score. Positions missing from answers count as unanswered.
func ScoreAnswers(questions []Question, answers []Answer) Score {
	score := Score{Correct: make([]bool, len(questions))}
	for i, q := range questions {
		points := q.PointValue()
		score.MaxPoints += points
		if i >= len(answers) {
			continue
		}
		if option, ok := answers[i].SelectedOption(); ok && option == q.CorrectIndex {
			score.Correct[i] = true
			score.CorrectCount++
			score.Points += points
		}
	}
	return score
}
