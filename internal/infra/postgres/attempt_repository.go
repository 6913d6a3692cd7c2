package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"timed-quiz-service/internal/domain"
)

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:qa"`

	ID               string          `bun:"id,pk"`
	SessionID        string          `bun:"session_id,notnull"`
	QuizID           string          `bun:"quiz_id,notnull"`
	UserID           string          `bun:"user_id,notnull"`
	Score            int             `bun:"score,notnull"`
	MaxScore         int             `bun:"max_score,notnull"`
	TimeTakenSeconds int             `bun:"time_taken_seconds,notnull"`
	Reason           string          `bun:"reason,notnull"`
	Answers          []domain.Answer `bun:"answers,type:jsonb"`
	CompletedAt      time.Time       `bun:"completed_at,notnull"`
}

// AttemptRepository stores finished attempts in the quiz_attempts table.
type AttemptRepository struct {
	db *bun.DB
}

func NewAttemptRepository(db *bun.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) SaveAttempt(ctx context.Context, attempt domain.Attempt) error {
	row := attemptRow{
		ID:               attempt.ID,
		SessionID:        attempt.SessionID,
		QuizID:           attempt.QuizID,
		UserID:           attempt.UserID,
		Score:            attempt.Score,
		MaxScore:         attempt.MaxScore,
		TimeTakenSeconds: attempt.TimeTakenSeconds,
		Reason:           string(attempt.Reason),
		Answers:          attempt.Answers,
		CompletedAt:      attempt.CompletedAt,
	}
	if _, err := r.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) ListAttempts(ctx context.Context, userID string, limit int) ([]domain.Attempt, error) {
	var rows []attemptRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	attempts := make([]domain.Attempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, domain.Attempt{
			ID:               row.ID,
			SessionID:        row.SessionID,
			QuizID:           row.QuizID,
			UserID:           row.UserID,
			Score:            row.Score,
			MaxScore:         row.MaxScore,
			TimeTakenSeconds: row.TimeTakenSeconds,
			Reason:           domain.FinishReason(row.Reason),
			Answers:          row.Answers,
			CompletedAt:      row.CompletedAt,
		})
	}
	return attempts, nil
}
