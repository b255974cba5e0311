// Package countdown derives the seconds remaining in the current TOTP period
// from wall-clock time and reports when a new period begins.
package countdown

import (
	"context"
	"time"

	"github.com/aaearon/authlive/internal/totp"
)

// Interval is how often the countdown is re-derived.
const Interval = time.Second

// Tick is one observation of the wall clock.
type Tick struct {
	At        time.Time
	Remaining int
	// Boundary is set when a new period has begun since the previous tick,
	// or when Remaining equals the period.
	Boundary bool
}

// Synchronizer turns wall-clock readings into ticks. It keeps no counter of
// its own; every tick is derived from absolute time so a suspended process
// catches up on the first tick after resume.
type Synchronizer struct {
	period  uint
	now     func() time.Time // injectable clock for testing
	last    int64
	started bool
}

// New creates a Synchronizer for period seconds using the system clock.
func New(period uint) *Synchronizer {
	return NewWithClock(period, time.Now)
}

// NewWithClock creates a Synchronizer reading time from now.
func NewWithClock(period uint, now func() time.Time) *Synchronizer {
	return &Synchronizer{period: period, now: now}
}

// Period returns the period length in seconds.
func (s *Synchronizer) Period() uint {
	return s.period
}

// Tick reads the clock once.
func (s *Synchronizer) Tick() Tick {
	at := s.now()
	remaining := totp.Remaining(at, s.period)
	counter := at.Unix() / int64(s.period)

	boundary := remaining == int(s.period)
	if s.started && counter != s.last {
		boundary = true
	}
	s.last = counter
	s.started = true

	return Tick{At: at, Remaining: remaining, Boundary: boundary}
}

// Run calls fn once per Interval until ctx is done. fn is invoked on the
// calling goroutine, so a regeneration triggered by one tick completes before
// the next tick is delivered. The underlying ticker is stopped on return.
func (s *Synchronizer) Run(ctx context.Context, fn func(Tick)) error {
	ticker := time.NewTicker(Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(s.Tick())
		}
	}
}
