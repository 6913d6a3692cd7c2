package app

import (
	"fmt"
	"sync"
	"time"

	"timed-quiz-service/internal/clock"
	"timed-quiz-service/internal/domain"
)

const tickInterval = time.Second

// Timer counts a budget down once per second and signals expiry exactly once.
// Callbacks run outside the timer's lock, so they may call back into the timer.
type Timer struct {
	clock    clock.Clock
	onTick   func(remaining int)
	onExpire func()

	mu        sync.Mutex
	remaining int
	started   bool
	running   bool
	expired   bool
	pending   clock.Timer
}

func NewTimer(c clock.Clock, onTick func(remaining int), onExpire func()) *Timer {
	if onTick == nil {
		onTick = func(int) {}
	}
	if onExpire == nil {
		onExpire = func() {}
	}
	return &Timer{clock: c, onTick: onTick, onExpire: onExpire}
}

// Start begins the countdown. A timer can only be started once.
func (t *Timer) Start(budgetSeconds int) error {
	if budgetSeconds <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidBudget, budgetSeconds)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return fmt.Errorf("%w: timer already started", domain.ErrInvalidTransition)
	}
	t.started = true
	t.running = true
	t.remaining = budgetSeconds
	t.pending = t.clock.AfterFunc(tickInterval, t.tick)
	return nil
}

func (t *Timer) tick() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.remaining--
	remaining := t.remaining
	if remaining > 0 {
		t.pending = t.clock.AfterFunc(tickInterval, t.tick)
	} else {
		t.running = false
		t.expired = true
		t.pending = nil
	}
	expired := t.expired
	t.mu.Unlock()

	t.onTick(remaining)
	if expired {
		t.onExpire()
	}
}

// Stop cancels any pending tick. Safe to call repeatedly and after expiry.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}
