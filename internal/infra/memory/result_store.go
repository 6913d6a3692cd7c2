package memory

import (
	"context"
	"sync"

	"timed-quiz-service/internal/domain"
)

// ResultStore keeps finished results in process memory.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]domain.Result)}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.SessionID] = result
	return nil
}

func (s *ResultStore) GetResult(_ context.Context, sessionID string) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[sessionID]
	if !ok {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return result, nil
}
