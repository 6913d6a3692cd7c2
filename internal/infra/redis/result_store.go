package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"timed-quiz-service/internal/domain"
)

// ResultStore keeps finished results for the results view, expiring after ttl.
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return s.client.Set(ctx, s.key(result.SessionID), raw, s.ttl).Err()
}

func (s *ResultStore) GetResult(ctx context.Context, sessionID string) (domain.Result, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("get result: %w", err)
	}
	var result domain.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return result, nil
}

func (s *ResultStore) key(sessionID string) string {
	return "quiz:result:" + sessionID
}
