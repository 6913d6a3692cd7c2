package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func threeQuestions() []Question {
	return []Question{
		{ID: "q1", Prompt: "2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
		{ID: "q2", Prompt: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectIndex: 0, Points: 2},
		{ID: "q3", Prompt: "Strict equality?", Options: []string{"==", "==="}, CorrectIndex: 1, Explanation: "=== compares type too"},
	}
}

func TestScoreAnswers(t *testing.T) {
	qs := threeQuestions()
	answers := []Answer{
		{Status: Selected, Option: 1},
		{Status: Skipped},
		{Status: Selected, Option: 0},
	}

	score := ScoreAnswers(qs, answers)
	if score.Points != 1 || score.MaxPoints != 4 || score.CorrectCount != 1 {
		t.Fatalf("unexpected score %+v", score)
	}
	if !score.Correct[0] || score.Correct[1] || score.Correct[2] {
		t.Fatalf("unexpected per-question correctness %v", score.Correct)
	}

	again := ScoreAnswers(qs, answers)
	if again.Points != score.Points || again.MaxPoints != score.MaxPoints {
		t.Fatalf("scorer not idempotent: %+v vs %+v", score, again)
	}
}

func TestScoreAnswersPerfectAndEmpty(t *testing.T) {
	qs := threeQuestions()
	perfect := []Answer{{Status: Selected, Option: 1}, {Status: Selected, Option: 0}, {Status: Selected, Option: 1}}
	if s := ScoreAnswers(qs, perfect); s.Points != s.MaxPoints {
		t.Fatalf("expected perfect score, got %+v", s)
	}

	s := ScoreAnswers(qs, make([]Answer, len(qs)))
	if s.Points != 0 || s.MaxPoints != 4 {
		t.Fatalf("expected 0/4 for unanswered record, got %+v", s)
	}

	// Option index 0 on an unanswered entry must not match a correct index of 0.
	s = ScoreAnswers(qs[1:2], []Answer{{Status: Skipped, Option: 0}})
	if s.Points != 0 {
		t.Fatalf("skipped answer scored: %+v", s)
	}
}

func TestValidateQuiz(t *testing.T) {
	if err := ValidateQuiz(Quiz{ID: "empty"}); !errors.Is(err, ErrEmptyQuestionSet) {
		t.Fatalf("expected empty question set error, got %v", err)
	}

	cases := map[string]Question{
		"index too high": {ID: "q", Prompt: "p", Options: []string{"a", "b"}, CorrectIndex: 2},
		"negative index": {ID: "q", Prompt: "p", Options: []string{"a", "b"}, CorrectIndex: -1},
		"one option":     {ID: "q", Prompt: "p", Options: []string{"a"}},
		"empty option":   {ID: "q", Prompt: "p", Options: []string{"a", ""}},
		"no prompt":      {ID: "q", Options: []string{"a", "b"}},
		"negative point": {ID: "q", Prompt: "p", Options: []string{"a", "b"}, Points: -1},
	}
	for name, q := range cases {
		err := ValidateQuiz(Quiz{ID: "quiz", Questions: []Question{threeQuestions()[0], q}})
		if !errors.Is(err, ErrMalformedQuestion) {
			t.Fatalf("%s: expected malformed question, got %v", name, err)
		}
	}

	if err := ValidateQuiz(Quiz{ID: "ok", Questions: threeQuestions()}); err != nil {
		t.Fatalf("valid quiz rejected: %v", err)
	}
}

func TestProjectQuestion(t *testing.T) {
	qs := threeQuestions()
	answers := []Answer{{}, {}, {Status: Selected, Option: 0}}

	view := ProjectQuestion(qs, 2, answers, false)
	if view.CorrectIndex != nil || view.Correct != nil || view.Explanation != "" {
		t.Fatalf("correctness leaked before reveal: %+v", view)
	}
	if view.Progress != 100 || view.Total != 3 {
		t.Fatalf("unexpected progress %+v", view)
	}

	view = ProjectQuestion(qs, 2, answers, true)
	if view.CorrectIndex == nil || *view.CorrectIndex != 1 {
		t.Fatalf("expected correct index 1, got %+v", view.CorrectIndex)
	}
	if view.Correct == nil || *view.Correct {
		t.Fatalf("expected wrong answer highlighted, got %+v", view.Correct)
	}
	if view.Explanation == "" {
		t.Fatalf("expected explanation while revealing")
	}
}

func TestSummarize(t *testing.T) {
	r := Result{Score: 3, MaxScore: 3, ElapsedSeconds: 125, Reason: FinishCompleted}
	sum := Summarize(r)
	if sum.Percentage != 100 || sum.Performance != "Exceptional" || sum.Elapsed != "2:05" {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if len(sum.Achievements) != 2 {
		t.Fatalf("expected perfect score and speed achievements, got %+v", sum.Achievements)
	}

	r = Result{Score: 2, MaxScore: 3, ElapsedSeconds: 600, Reason: FinishTimeout}
	sum = Summarize(r)
	if sum.Percentage != 67 || sum.Performance != "Fair" || len(sum.Achievements) != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	if (Result{}).Percentage() != 0 {
		t.Fatalf("expected zero percentage without max score")
	}
	if PerformanceLevel(10) != "Needs Improvement" {
		t.Fatalf("unexpected low tier")
	}
}

func TestAnswerJSON(t *testing.T) {
	data, err := json.Marshal([]Answer{{Status: Selected, Option: 2}, {Status: Skipped}, {}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"status":"selected","option":2},{"status":"skipped","option":0},{"status":"unanswered","option":0}]`
	if string(data) != want {
		t.Fatalf("unexpected json %s", data)
	}

	var decoded []Answer
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[0].Status != Selected || decoded[0].Option != 2 || decoded[1].Status != Skipped {
		t.Fatalf("unexpected decode %+v", decoded)
	}
	if err := json.Unmarshal([]byte(`[{"status":"bogus"}]`), &decoded); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
