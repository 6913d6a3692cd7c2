package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/clock"
	"timed-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session, err := app.StartSession(sampleQuiz(), app.SessionOptions{
		ID:            "s1",
		BudgetSeconds: 30,
		Clock:         clock.NewFake(time.Unix(0, 0)),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	store.Put(session)
	if got, ok := store.Get("s1"); !ok || got != session {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", store.Len())
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestResultStore(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	if _, err := store.GetResult(ctx, "s1"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.SaveResult(ctx, domain.Result{SessionID: "s1", Score: 3}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.GetResult(ctx, "s1")
	if err != nil || got.Score != 3 {
		t.Fatalf("unexpected result %+v, %v", got, err)
	}
}

func TestAttemptRepositoryNewestFirst(t *testing.T) {
	repo := NewAttemptRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a1", "a2", "a3"} {
		_ = repo.SaveAttempt(ctx, domain.Attempt{ID: id, UserID: "u1", CompletedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	_ = repo.SaveAttempt(ctx, domain.Attempt{ID: "other", UserID: "u2", CompletedAt: base})

	list, err := repo.ListAttempts(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a3" || list[1].ID != "a2" {
		t.Fatalf("unexpected attempts %+v", list)
	}
}
