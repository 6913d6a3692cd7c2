package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"timed-quiz-service/internal/domain"
)

func TestDisabledPublisherDropsEvents(t *testing.T) {
	p, err := NewPublisher("", "", nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if p.Enabled() {
		t.Fatalf("expected publisher disabled without url")
	}
	if err := p.PublishAttempt(context.Background(), domain.Attempt{ID: "a1"}); err != nil {
		t.Fatalf("disabled publish should be a no-op, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestAttemptCompletedPayload(t *testing.T) {
	completed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(AttemptCompleted{
		EventType:  RoutingAttemptCompleted,
		OccurredAt: completed,
		Attempt:    domain.Attempt{ID: "a1", UserID: "u1", Score: 2, MaxScore: 3, Reason: domain.FinishCompleted},
		Percentage: 67,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["eventType"] != "quiz.attempt.completed" {
		t.Fatalf("unexpected event type %v", decoded["eventType"])
	}
	attempt := decoded["attempt"].(map[string]any)
	if attempt["userId"] != "u1" || attempt["reason"] != "completed" {
		t.Fatalf("unexpected attempt payload %v", attempt)
	}
}
