package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"timed-quiz-service/internal/clock"
	"timed-quiz-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryExpiresAndInvalidates(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{"quiz-1": sampleQuiz()}),
	}
	repo := NewQuizRepositoryWithClock(loader, time.Minute, fake)
	ctx := context.Background()

	_, _ = repo.GetQuiz(ctx, "quiz-1")
	// beyond ttl plus the maximum jitter
	fake.Advance(2 * time.Minute)
	_, _ = repo.GetQuiz(ctx, "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}

	repo.Invalidate("quiz-1")
	_, _ = repo.GetQuiz(ctx, "quiz-1")
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryMissing(t *testing.T) {
	repo := NewQuizRepository(NewStaticQuizLoader(nil), time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestLoadQuizDir(t *testing.T) {
	dir := t.TempDir()
	yamlQuiz := `title: Capitals
timeLimitSeconds: 60
questions:
  - id: q1
    prompt: Capital of France?
    options: [Berlin, Paris]
    correctIndex: 1
`
	jsonQuiz := `{"id":"math","title":"Math","questions":[{"id":"q1","prompt":"2+2?","options":["3","4"],"correctIndex":1}]}`
	if err := os.WriteFile(filepath.Join(dir, "capitals.yaml"), []byte(yamlQuiz), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "math.json"), []byte(jsonQuiz), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader, err := LoadQuizDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	capitals, err := loader.LoadQuiz(context.Background(), "capitals")
	if err != nil {
		t.Fatalf("capitals: %v", err)
	}
	if capitals.TimeLimitSeconds != 60 || capitals.Questions[0].Options[1] != "Paris" || capitals.Questions[0].CorrectIndex != 1 {
		t.Fatalf("unexpected quiz %+v", capitals)
	}
	if _, err := loader.LoadQuiz(context.Background(), "math"); err != nil {
		t.Fatalf("math: %v", err)
	}
	if len(loader.IDs()) != 2 {
		t.Fatalf("expected 2 quizzes, got %v", loader.IDs())
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID: "quiz-1",
		Questions: []domain.Question{
			{
				ID:           "q1",
				Prompt:       "What is 2 + 2?",
				Options:      []string{"3", "4"},
				CorrectIndex: 1,
				Points:       1,
			},
		},
	}
}
