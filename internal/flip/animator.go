// Package flip animates layout changes with the First, Last, Invert, Play technique.
package flip

import (
	"sync"
	"time"

	"github.com/evanschultz/kanwow/internal/domain"
)

// DefaultDuration is the length of one transition.
const DefaultDuration = 260 * time.Millisecond

// Snapshot maps a rendered entity id to its bounding box.
type Snapshot map[string]domain.Rect

// Option configures an Animator.
type Option func(*Animator)

// WithDuration overrides the transition length. Non-positive values disable animation.
func WithDuration(d time.Duration) Option {
	return func(a *Animator) {
		a.duration = d
	}
}

// WithEasing overrides the easing curve.
func WithEasing(e Easing) Option {
	return func(a *Animator) {
		if e != nil {
			a.easing = e
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Animator) {
		if now != nil {
			a.now = now
		}
	}
}

// Animator tracks one in-flight FLIP cycle. Starting a new cycle supersedes the previous one.
type Animator struct {
	mu       sync.Mutex
	duration time.Duration
	easing   Easing
	now      func() time.Time
	started  time.Time
	inverts  map[string]domain.Point
}

// New constructs an animator with the default ease-out curve and duration.
func New(opts ...Option) *Animator {
	a := &Animator{
		duration: DefaultDuration,
		easing:   EaseOut,
		now:      time.Now,
		inverts:  map[string]domain.Point{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Duration returns the configured transition length.
func (a *Animator) Duration() time.Duration {
	return a.duration
}

// Transition runs afterRender synchronously to obtain the Last snapshot, then starts a cycle
// animating every id present in both first and last. The returned snapshot is afterRender's.
func (a *Animator) Transition(first Snapshot, afterRender func() Snapshot) Snapshot {
	if afterRender == nil {
		return nil
	}
	last := afterRender()
	a.Play(first, last)
	return last
}

// Play starts a cycle from two snapshots already in hand. It reports how many entities moved.
func (a *Animator) Play(first, last Snapshot) int {
	inverts := Invert(first, last)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.duration <= 0 || len(inverts) == 0 {
		a.inverts = map[string]domain.Point{}
		a.started = time.Time{}
		return 0
	}
	a.inverts = inverts
	a.started = a.now()
	return len(inverts)
}

// Stop ends the current cycle so every entity renders at its final position.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inverts = map[string]domain.Point{}
	a.started = time.Time{}
}

// Active reports whether a cycle is still playing at now.
func (a *Animator) Active(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeLocked(now)
}

// Offset returns how far id should be drawn from its final position at now.
func (a *Animator) Offset(id string, now time.Time) (domain.Point, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.activeLocked(now) {
		return domain.Point{}, false
	}
	inv, ok := a.inverts[id]
	if !ok {
		return domain.Point{}, false
	}
	remaining := 1 - a.easing(float64(now.Sub(a.started))/float64(a.duration))
	return domain.Point{X: inv.X * remaining, Y: inv.Y * remaining}, true
}

func (a *Animator) activeLocked(now time.Time) bool {
	if len(a.inverts) == 0 || a.started.IsZero() {
		return false
	}
	return now.Sub(a.started) < a.duration
}

// Invert returns First minus Last for every id present in both snapshots with a non-zero delta.
func Invert(first, last Snapshot) map[string]domain.Point {
	out := map[string]domain.Point{}
	for id, to := range last {
		from, ok := first[id]
		if !ok {
			continue
		}
		dx, dy := from.X-to.X, from.Y-to.Y
		if dx == 0 && dy == 0 {
			continue
		}
		out[id] = domain.Point{X: dx, Y: dy}
	}
	return out
}
