package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"timed-quiz-service/internal/clock"
	"timed-quiz-service/internal/domain"
)

// DefaultRevealDelay is how long correctness feedback stays up before auto-advancing.
const DefaultRevealDelay = 2500 * time.Millisecond

// State is the session's position in its lifecycle.
type State string

const (
	StateAnswering State = "answering"
	StateRevealing State = "revealing"
	StateFinished  State = "finished"
	StateAbandoned State = "abandoned"
)

func (s State) terminal() bool {
	return s == StateFinished || s == StateAbandoned
}

// EventType tags what changed in a SessionEvent.
type EventType string

const (
	EventQuestion EventType = "question"
	EventFeedback EventType = "feedback"
	EventTick     EventType = "tick"
	EventFinished EventType = "finished"
)

// SessionEvent is pushed to subscribers whenever observable session state changes.
type SessionEvent struct {
	Type      EventType            `json:"type"`
	Remaining int                  `json:"remaining"`
	View      *domain.QuestionView `json:"view,omitempty"`
	Feedback  *domain.Feedback     `json:"feedback,omitempty"`
	Result    *domain.Result       `json:"result,omitempty"`
}

// SessionOptions configures a new session. Zero values pick defaults.
type SessionOptions struct {
	ID            string
	UserID        string
	BudgetSeconds int
	RevealDelay   time.Duration
	Clock         clock.Clock
	// OnFinish receives the result exactly once, outside the session lock.
	OnFinish func(domain.Result)
}

// Session drives one user through a question set under a time budget.
// Every event (user action, tick, expiry, reveal continuation) is applied under mu,
// one at a time, in the order the events acquire it.
type Session struct {
	id          string
	quizID      string
	userID      string
	questions   []domain.Question
	budget      int
	revealDelay time.Duration
	clock       clock.Clock
	onFinish    func(domain.Result)
	timer       *Timer

	mu          sync.Mutex
	state       State
	position    int
	answers     []domain.Answer
	remaining   int
	reveal      clock.Timer
	advances    int
	result      *domain.Result
	done        chan struct{}
	subscribers map[chan SessionEvent]struct{}
}

// StartSession validates the quiz and starts a running session at the first question.
func StartSession(quiz domain.Quiz, opts SessionOptions) (*Session, error) {
	if err := domain.ValidateQuiz(quiz); err != nil {
		return nil, err
	}
	if opts.BudgetSeconds <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidBudget, opts.BudgetSeconds)
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.RevealDelay <= 0 {
		opts.RevealDelay = DefaultRevealDelay
	}

	s := &Session{
		id:          opts.ID,
		quizID:      quiz.ID,
		userID:      opts.UserID,
		questions:   append([]domain.Question(nil), quiz.Questions...),
		budget:      opts.BudgetSeconds,
		revealDelay: opts.RevealDelay,
		clock:       opts.Clock,
		onFinish:    opts.OnFinish,
		state:       StateAnswering,
		answers:     make([]domain.Answer, len(quiz.Questions)),
		remaining:   opts.BudgetSeconds,
		done:        make(chan struct{}),
		subscribers: make(map[chan SessionEvent]struct{}),
	}
	s.timer = NewTimer(opts.Clock, s.onTick, s.onExpire)
	if err := s.timer.Start(opts.BudgetSeconds); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) ID() string     { return s.id }
func (s *Session) QuizID() string { return s.quizID }
func (s *Session) UserID() string { return s.userID }

// Done is closed once the session is finished or abandoned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectAnswer records option for the current question and opens the reveal window.
func (s *Session) SelectAnswer(option int) (domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnswering {
		return domain.Feedback{}, s.invalidLocked("select answer")
	}
	q := s.questions[s.position]
	if option < 0 || option >= len(q.Options) {
		return domain.Feedback{}, fmt.Errorf("%w: %d not in [0, %d)", domain.ErrOutOfRangeSelection, option, len(q.Options))
	}

	position := s.position
	s.answers[position] = domain.Answer{Status: domain.Selected, Option: option}
	s.state = StateRevealing
	s.reveal = s.clock.AfterFunc(s.revealDelay, func() { s.endReveal(position) })

	feedback := domain.Feedback{
		Position:     position,
		Selected:     option,
		CorrectIndex: q.CorrectIndex,
		Correct:      option == q.CorrectIndex,
		Explanation:  q.Explanation,
	}
	if feedback.Correct {
		feedback.Awarded = q.PointValue()
	}
	view := s.projectLocked()
	s.broadcastLocked(SessionEvent{Type: EventFeedback, Remaining: s.remaining, View: &view, Feedback: &feedback})
	return feedback, nil
}

// Skip leaves the current question without a selection and moves on immediately.
func (s *Session) Skip() error {
	s.mu.Lock()
	if s.state != StateAnswering {
		err := s.invalidLocked("skip")
		s.mu.Unlock()
		return err
	}
	s.answers[s.position] = domain.Answer{Status: domain.Skipped}
	result := s.advanceLocked()
	s.mu.Unlock()

	s.emit(result)
	return nil
}

// Abandon discards a running session without producing a result.
// It reports false if the session had already finished or been abandoned.
func (s *Session) Abandon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() {
		return false
	}
	s.state = StateAbandoned
	s.cancelScheduledLocked()
	close(s.done)
	return true
}

// Result returns the result record once the session has finished.
func (s *Session) Result() (domain.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return cloneResult(*s.result), true
}

// View returns the current session snapshot.
func (s *Session) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionView{
		SessionID:        s.id,
		QuizID:           s.quizID,
		UserID:           s.userID,
		State:            string(s.state),
		RemainingSeconds: s.remaining,
		Question:         s.projectLocked(),
	}
}

// Subscribe returns a channel of session events, starting with a snapshot.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan SessionEvent, func()) {
	ch := make(chan SessionEvent, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) endReveal(position int) {
	s.mu.Lock()
	if s.state != StateRevealing || s.position != position {
		// stale continuation: the session moved on or finished first
		s.mu.Unlock()
		return
	}
	result := s.advanceLocked()
	s.mu.Unlock()

	s.emit(result)
}

func (s *Session) onTick(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() {
		return
	}
	s.remaining = remaining
	s.broadcastLocked(SessionEvent{Type: EventTick, Remaining: remaining})
}

func (s *Session) onExpire() {
	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		return
	}
	s.remaining = 0
	result := s.finishLocked(domain.FinishTimeout)
	s.mu.Unlock()

	s.emit(result)
}

// advanceLocked leaves the current position; past the last one the session finishes.
func (s *Session) advanceLocked() *domain.Result {
	s.reveal = nil
	s.advances++
	if s.position == len(s.questions)-1 {
		return s.finishLocked(domain.FinishCompleted)
	}
	s.position++
	s.state = StateAnswering
	view := s.projectLocked()
	s.broadcastLocked(SessionEvent{Type: EventQuestion, Remaining: s.remaining, View: &view})
	return nil
}

func (s *Session) finishLocked(reason domain.FinishReason) *domain.Result {
	s.state = StateFinished
	s.cancelScheduledLocked()

	score := domain.ScoreAnswers(s.questions, s.answers)
	elapsed := s.budget - s.remaining
	if elapsed < 0 {
		elapsed = 0
	}
	result := domain.Result{
		SessionID:      s.id,
		QuizID:         s.quizID,
		UserID:         s.userID,
		Score:          score.Points,
		MaxScore:       score.MaxPoints,
		CorrectCount:   score.CorrectCount,
		Correct:        score.Correct,
		Answers:        append([]domain.Answer(nil), s.answers...),
		Questions:      s.questions,
		BudgetSeconds:  s.budget,
		ElapsedSeconds: elapsed,
		Reason:         reason,
		FinishedAt:     s.clock.Now(),
	}
	s.result = &result
	close(s.done)

	published := cloneResult(result)
	s.broadcastLocked(SessionEvent{Type: EventFinished, Remaining: s.remaining, Result: &published})
	out := cloneResult(result)
	return &out
}

func (s *Session) cancelScheduledLocked() {
	s.timer.Stop()
	if s.reveal != nil {
		s.reveal.Stop()
		s.reveal = nil
	}
}

func (s *Session) emit(result *domain.Result) {
	if result != nil && s.onFinish != nil {
		s.onFinish(*result)
	}
}

func (s *Session) invalidLocked(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", domain.ErrInvalidTransition, action, s.state)
}

func (s *Session) projectLocked() domain.QuestionView {
	return domain.ProjectQuestion(s.questions, s.position, s.answers, s.state == StateRevealing)
}

func (s *Session) snapshotLocked() SessionEvent {
	if s.result != nil {
		result := cloneResult(*s.result)
		return SessionEvent{Type: EventFinished, Remaining: s.remaining, Result: &result}
	}
	view := s.projectLocked()
	return SessionEvent{Type: EventQuestion, Remaining: s.remaining, View: &view}
}

func (s *Session) broadcastLocked(ev SessionEvent) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// drop the oldest queued event so a slow reader never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *Session) advanceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advances
}

func cloneResult(r domain.Result) domain.Result {
	r.Correct = append([]bool(nil), r.Correct...)
	r.Answers = append([]domain.Answer(nil), r.Answers...)
	r.Questions = append([]domain.Question(nil), r.Questions...)
	return r
}
