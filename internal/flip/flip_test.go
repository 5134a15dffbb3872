package flip

import (
	"math"
	"testing"
	"time"

	"github.com/evanschultz/kanwow/internal/domain"
)

func TestCubicBezierEndpointsAndMonotone(t *testing.T) {
	if EaseOut(0) != 0 || EaseOut(1) != 1 {
		t.Fatalf("unexpected endpoints %v %v", EaseOut(0), EaseOut(1))
	}
	prev := 0.0
	for i := 1; i <= 20; i++ {
		v := EaseOut(float64(i) / 20)
		if v < prev-1e-9 {
			t.Fatalf("easing not monotone at %d: %v < %v", i, v, prev)
		}
		prev = v
	}
	if mid := EaseOut(0.5); mid <= 0.5 {
		t.Fatalf("expected ease-out to be ahead of linear at 0.5, got %v", mid)
	}
	linear := CubicBezier(0, 0, 1, 1)
	for _, x := range []float64{0.1, 0.25, 0.5, 0.9} {
		if math.Abs(linear(x)-x) > 1e-4 {
			t.Fatalf("linear bezier at %v = %v", x, linear(x))
		}
	}
}

func TestInvertOnlySharedMovedIDs(t *testing.T) {
	first := Snapshot{
		"a":    {X: 0, Y: 0, W: 10, H: 4},
		"b":    {X: 0, Y: 4, W: 10, H: 4},
		"gone": {X: 0, Y: 8, W: 10, H: 4},
	}
	last := Snapshot{
		"a":   {X: 0, Y: 0, W: 10, H: 4},
		"b":   {X: 20, Y: 0, W: 10, H: 4},
		"new": {X: 0, Y: 4, W: 10, H: 4},
	}
	inv := Invert(first, last)
	if len(inv) != 1 {
		t.Fatalf("expected only b to animate, got %#v", inv)
	}
	if inv["b"] != (domain.Point{X: -20, Y: 4}) {
		t.Fatalf("unexpected invert %#v", inv["b"])
	}
}

func TestTransitionPlaysAndSettles(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := New(WithClock(func() time.Time { return start }), WithEasing(Linear))
	rendered := false
	last := a.Transition(Snapshot{"b": {X: 0, Y: 10}}, func() Snapshot {
		rendered = true
		return Snapshot{"b": {X: 0, Y: 0}}
	})
	if !rendered || len(last) != 1 {
		t.Fatal("expected afterRender to run synchronously")
	}
	off, ok := a.Offset("b", start)
	if !ok || off != (domain.Point{X: 0, Y: 10}) {
		t.Fatalf("expected full invert at start, got %#v %v", off, ok)
	}
	off, _ = a.Offset("b", start.Add(DefaultDuration/2))
	if math.Abs(off.Y-5) > 1e-9 {
		t.Fatalf("expected half offset, got %#v", off)
	}
	if a.Active(start.Add(DefaultDuration)) {
		t.Fatal("expected cycle finished at duration")
	}
	if _, ok := a.Offset("b", start.Add(DefaultDuration)); ok {
		t.Fatal("expected no offset after settling")
	}
}

func TestNewCycleSupersedes(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := New(WithClock(func() time.Time { return now }))
	a.Play(Snapshot{"a": {Y: 10}}, Snapshot{"a": {Y: 0}})
	now = now.Add(100 * time.Millisecond)
	a.Play(Snapshot{"b": {Y: 10}}, Snapshot{"b": {Y: 0}})
	if _, ok := a.Offset("a", now); ok {
		t.Fatal("expected superseded entity to stop animating")
	}
	if _, ok := a.Offset("b", now); !ok {
		t.Fatal("expected new cycle entity to animate")
	}
	if !a.Active(now.Add(DefaultDuration - time.Millisecond)) {
		t.Fatal("expected new cycle to restart the clock")
	}
}

func TestZeroDurationDisables(t *testing.T) {
	a := New(WithDuration(0))
	if n := a.Play(Snapshot{"a": {Y: 10}}, Snapshot{"a": {Y: 0}}); n != 0 {
		t.Fatalf("expected disabled animator to play nothing, got %d", n)
	}
	if a.Active(time.Now()) {
		t.Fatal("expected inactive animator")
	}
}
