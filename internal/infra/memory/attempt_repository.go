package memory

import (
	"context"
	"sort"
	"sync"

	"timed-quiz-service/internal/domain"
)

// AttemptRepository keeps attempt history per user in memory.
type AttemptRepository struct {
	mu       sync.RWMutex
	attempts map[string][]domain.Attempt
}

func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{attempts: make(map[string][]domain.Attempt)}
}

func (r *AttemptRepository) SaveAttempt(_ context.Context, attempt domain.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attempt.UserID] = append(r.attempts[attempt.UserID], attempt)
	return nil
}

func (r *AttemptRepository) ListAttempts(_ context.Context, userID string, limit int) ([]domain.Attempt, error) {
	r.mu.RLock()
	list := append([]domain.Attempt(nil), r.attempts[userID]...)
	r.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CompletedAt.After(list[j].CompletedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
