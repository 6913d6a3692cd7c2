package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"timed-quiz-service/internal/clock"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/logger"
	"timed-quiz-service/internal/metrics"
)

// DefaultBudget applies when neither the caller nor the quiz sets a time limit.
const DefaultBudget = 20 * time.Minute

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultRepository keeps finished results around for the results view.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.Result) error
	GetResult(ctx context.Context, sessionID string) (domain.Result, error)
}

// AttemptRepository stores the durable attempt history.
type AttemptRepository interface {
	SaveAttempt(ctx context.Context, attempt domain.Attempt) error
	ListAttempts(ctx context.Context, userID string, limit int) ([]domain.Attempt, error)
}

// AttemptPublisher announces finished attempts to other services.
type AttemptPublisher interface {
	PublishAttempt(ctx context.Context, attempt domain.Attempt) error
}

// Option customizes a QuizService.
type Option func(*QuizService)

func WithResults(results ResultRepository) Option {
	return func(s *QuizService) { s.results = results }
}

func WithAttempts(attempts AttemptRepository) Option {
	return func(s *QuizService) { s.attempts = attempts }
}

func WithPublisher(publisher AttemptPublisher) Option {
	return func(s *QuizService) { s.publisher = publisher }
}

func WithClock(c clock.Clock) Option {
	return func(s *QuizService) { s.clock = c }
}

func WithRevealDelay(d time.Duration) Option {
	return func(s *QuizService) { s.revealDelay = d }
}

func WithDefaultBudget(d time.Duration) Option {
	return func(s *QuizService) { s.defaultBudget = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *QuizService) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *QuizService) { s.metrics = m }
}

// QuizService contains the quiz-taking use cases.
type QuizService struct {
	sessions      SessionRepository
	quizzes       QuizRepository
	results       ResultRepository
	attempts      AttemptRepository
	publisher     AttemptPublisher
	clock         clock.Clock
	revealDelay   time.Duration
	defaultBudget time.Duration
	log           *logger.Logger
	metrics       *metrics.Metrics
	persistWait   time.Duration
}

func NewQuizService(store SessionRepository, quizzes QuizRepository, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:      store,
		quizzes:       quizzes,
		clock:         clock.Real(),
		revealDelay:   DefaultRevealDelay,
		defaultBudget: DefaultBudget,
		persistWait:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.metrics == nil {
		s.metrics = metrics.New("engine")
	}
	return s
}

// Start loads a quiz and begins a timed session for userID.
// A non-positive budget falls back to the quiz time limit, then to the service default.
func (s *QuizService) Start(ctx context.Context, quizID, userID string, budgetSeconds int) (*Session, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if budgetSeconds <= 0 {
		budgetSeconds = quiz.TimeLimitSeconds
	}
	if budgetSeconds <= 0 {
		budgetSeconds = int(s.defaultBudget / time.Second)
	}

	session, err := StartSession(quiz, SessionOptions{
		ID:            uuid.NewString(),
		UserID:        userID,
		BudgetSeconds: budgetSeconds,
		RevealDelay:   s.revealDelay,
		Clock:         s.clock,
		OnFinish:      s.onFinished,
	})
	if err != nil {
		return nil, err
	}
	s.sessions.Put(session)
	s.metrics.SessionsStarted.Inc()
	s.metrics.LiveSessions.Inc()
	s.log.WithSession(session.ID(), quizID, userID).WithField("budget_seconds", budgetSeconds).Info("quiz session started")
	return session, nil
}

// SelectAnswer records an option for the session's current question.
func (s *QuizService) SelectAnswer(_ context.Context, sessionID string, option int) (domain.Feedback, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Feedback{}, domain.ErrSessionNotFound
	}
	feedback, err := session.SelectAnswer(option)
	if err != nil {
		return domain.Feedback{}, err
	}
	outcome := "wrong"
	if feedback.Correct {
		outcome = "correct"
	}
	s.metrics.Answers.WithLabelValues(outcome).Inc()
	return feedback, nil
}

// Skip moves the session past its current question without an answer.
func (s *QuizService) Skip(_ context.Context, sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if err := session.Skip(); err != nil {
		return err
	}
	s.metrics.Answers.WithLabelValues("skipped").Inc()
	return nil
}

// View returns the live session snapshot.
func (s *QuizService) View(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return session.View(), nil
}

// Subscribe returns a channel that receives events for a live session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan SessionEvent, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Abandon discards a running session; finished sessions are left alone.
func (s *QuizService) Abandon(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	if !session.Abandon() {
		return
	}
	s.sessions.Delete(sessionID)
	s.metrics.LiveSessions.Dec()
	s.log.WithSession(sessionID, session.QuizID(), session.UserID()).Info("quiz session abandoned")
}

// Result returns the result of a finished session.
func (s *QuizService) Result(ctx context.Context, sessionID string) (domain.Result, error) {
	if session, ok := s.sessions.Get(sessionID); ok {
		if result, done := session.Result(); done {
			return result, nil
		}
		return domain.Result{}, domain.ErrResultNotReady
	}
	if s.results == nil {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return s.results.GetResult(ctx, sessionID)
}

// History lists a user's stored attempts, newest first.
func (s *QuizService) History(ctx context.Context, userID string, limit int) ([]domain.Attempt, error) {
	if s.attempts == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.attempts.ListAttempts(ctx, userID, limit)
}

// onFinished runs once per session, after the session released its lock.
func (s *QuizService) onFinished(result domain.Result) {
	entry := s.log.WithSession(result.SessionID, result.QuizID, result.UserID)
	s.metrics.LiveSessions.Dec()
	s.metrics.SessionsFinished.WithLabelValues(string(result.Reason)).Inc()
	s.metrics.SessionElapsed.Observe(float64(result.ElapsedSeconds))

	ctx, cancel := context.WithTimeout(context.Background(), s.persistWait)
	defer cancel()

	if s.results != nil {
		if err := s.results.SaveResult(ctx, result); err != nil {
			entry.WithError(err).Error("failed to store result")
		} else {
			s.sessions.Delete(result.SessionID)
		}
	}

	attempt := domain.AttemptFromResult(result)
	attempt.ID = uuid.NewString()
	if s.attempts != nil {
		if err := s.attempts.SaveAttempt(ctx, attempt); err != nil {
			entry.WithError(err).Error("failed to store attempt")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishAttempt(ctx, attempt); err != nil {
			entry.WithError(err).Warn("failed to publish attempt")
		}
	}

	entry.WithFields(logrus.Fields{
		"score":     result.Score,
		"max_score": result.MaxScore,
		"elapsed":   result.ElapsedSeconds,
		"reason":    result.Reason,
	}).Info("quiz session finished")
}
