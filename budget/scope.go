// Package budget tracks one total time budget shared across a
// sequence of outbound calls. A Scope is opened for the duration of a
// multi-call operation; every call inside the operation asks the scope
// how much time is left and uses that as its own timeout.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tnicklin/timebudget/clock"
)

var (
	// ErrInvalidBudget is returned by Open when the total budget is
	// negative.
	ErrInvalidBudget = errors.New("budget: total budget is negative")

	// ErrExpired is the sentinel behind every budget-exhaustion
	// failure. Callers match it with errors.Is.
	ErrExpired = errors.New("budget: time budget expired")
)

// Scope tracks the start instant and deadline of one operation's time
// budget. All fields are fixed at Open; every read is computed from
// the fixed deadline plus a fresh clock reading, so a Scope is safe to
// read from any number of goroutines without coordination.
type Scope struct {
	id       string
	clock    clock.Clock
	total    time.Duration
	start    time.Time
	deadline time.Time
}

// Option configures a Scope at Open.
type Option func(*Scope)

// WithClock sets the clock the scope reads. Defaults to clock.System().
func WithClock(c clock.Clock) Option {
	return func(s *Scope) { s.clock = c }
}

// Open starts a scope with the given total budget, capturing the start
// instant from the clock. A zero budget is valid and yields a scope
// that is already expired; a negative budget fails with
// ErrInvalidBudget.
func Open(total time.Duration, opts ...Option) (*Scope, error) {
	if total < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBudget, total)
	}

	s := &Scope{
		id:    uuid.NewString(),
		clock: clock.System(),
		total: total,
	}
	for _, o := range opts {
		o(s)
	}

	s.start = s.clock.Now()
	s.deadline = s.start.Add(total)
	return s, nil
}

// ID returns the scope's identifier, used to correlate recorded call
// outcomes and log lines.
func (s *Scope) ID() string { return s.id }

// Total returns the budget the scope was opened with.
func (s *Scope) Total() time.Duration { return s.total }

// Start returns the instant the scope was opened.
func (s *Scope) Start() time.Time { return s.start }

// Deadline returns the instant at which the budget runs out.
func (s *Scope) Deadline() time.Time { return s.deadline }

// Remaining returns the budget left right now, clamped at zero.
func (s *Scope) Remaining() time.Duration {
	left := s.deadline.Sub(s.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether the budget has run out.
func (s *Scope) Expired() bool { return s.Remaining() == 0 }

// Elapsed returns how long the scope has been open, clamped at the
// total budget.
func (s *Scope) Elapsed() time.Duration {
	e := s.clock.Now().Sub(s.start)
	if e > s.total {
		return s.total
	}
	return e
}

// Child opens a nested scope whose budget is capped at the parent's
// remaining time, so an inner operation can never outlive its caller's
// budget. Pass a total larger than the remaining time to inherit
// exactly what is left.
func (s *Scope) Child(total time.Duration) (*Scope, error) {
	if total < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBudget, total)
	}
	if left := s.Remaining(); total > left {
		total = left
	}
	return Open(total, WithClock(s.clock))
}

// Context derives a context that is cancelled at the scope's deadline.
// If the parent already carries an earlier deadline, the earlier one
// wins; the scope never extends a caller's own timeout.
func (s *Scope) Context(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithDeadline(parent, s.deadline)
}

type ctxKey struct{}

// NewContext returns a context carrying the scope, for threading it
// through a call graph that already passes a context.
func NewContext(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the scope carried by ctx, if any.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Scope)
	return s, ok
}
