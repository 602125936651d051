package clock

import (
	"sync"
	"time"
)

var _ Clock = (*Fake)(nil)

// Fake is a manually advanced Clock for tests. The zero value is not
// usable; create one with NewFake.
type Fake struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFake creates a Fake pinned to the given instant.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// Now returns the fake's current instant.
func (f *Fake) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Advance moves the fake forward by d. Negative values are ignored so
// a Fake, like a real monotonic source, never goes backward.
func (f *Fake) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Set pins the fake to a new instant. Instants earlier than the
// current one are ignored.
func (f *Fake) Set(now time.Time) {
	f.mu.Lock()
	if now.After(f.now) {
		f.now = now
	}
	f.mu.Unlock()
}
