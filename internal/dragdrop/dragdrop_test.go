package dragdrop

import (
	"slices"
	"testing"

	"github.com/evanschultz/kanwow/internal/domain"
)

func cardsAt(ids []string, mids ...float64) []CardBox {
	out := make([]CardBox, 0, len(mids))
	for i, mid := range mids {
		out = append(out, CardBox{ID: ids[i], Rect: domain.Rect{X: 0, Y: mid - 20, W: 100, H: 40}})
	}
	return out
}

func TestResolveDropIndex(t *testing.T) {
	cards := cardsAt([]string{"a", "b", "c"}, 50, 150, 250)
	tests := []struct {
		name     string
		y        float64
		dragging string
		want     int
	}{
		{name: "above all", y: 10, want: 0},
		{name: "between first and second", y: 120, want: 1},
		{name: "between second and third", y: 200, want: 2},
		{name: "below all", y: 400, want: 3},
		{name: "exactly on midpoint is not below", y: 150, want: 2},
		{name: "dragged card skipped", y: 120, dragging: "a", want: 0},
		{name: "dragged card skipped at end", y: 400, dragging: "b", want: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveDropIndex(tc.y, cards, tc.dragging); got != tc.want {
				t.Fatalf("ResolveDropIndex(%v) = %d, want %d", tc.y, got, tc.want)
			}
		})
	}
	if got := ResolveDropIndex(100, nil, ""); got != 0 {
		t.Fatalf("expected empty column to resolve 0, got %d", got)
	}
}

type fakeLayout struct {
	columns map[string]domain.Rect
	cards   map[string][]CardBox
}

func (f fakeLayout) ColumnAt(p domain.Point) (string, bool) {
	for id, r := range f.columns {
		if r.Contains(p) {
			return id, true
		}
	}
	return "", false
}

func (f fakeLayout) Cards(columnID string) []CardBox {
	return f.cards[columnID]
}

func newFakeLayout() fakeLayout {
	return fakeLayout{
		columns: map[string]domain.Rect{
			"todo": {X: 0, Y: 0, W: 280, H: 600},
			"done": {X: 300, Y: 0, W: 280, H: 600},
		},
		cards: map[string][]CardBox{
			"todo": cardsAt([]string{"a", "b", "c"}, 50, 150, 250),
			"done": cardsAt([]string{"x", "y"}, 50, 150),
		},
	}
}

func TestGestureDropAppliesToBoard(t *testing.T) {
	layout := newFakeLayout()
	var g Gesture
	if g.State() != StateIdle {
		t.Fatalf("expected idle, got %s", g.State())
	}
	if !g.Begin("b", "todo", 1, domain.Point{X: 10, Y: 150}, domain.Rect{X: 0, Y: 130, W: 100, H: 40}) {
		t.Fatal("expected Begin to start a drag")
	}
	if g.GrabOffset() != (domain.Point{X: 10, Y: 20}) {
		t.Fatalf("unexpected grab offset %#v", g.GrabOffset())
	}
	target, ok := g.Move(domain.Point{X: 320, Y: 100}, layout)
	if !ok || target != (Target{ColumnID: "done", Index: 1}) {
		t.Fatalf("unexpected preview %#v %v", target, ok)
	}
	drop, ok := g.Release(domain.Point{X: 320, Y: 100}, layout)
	if !ok {
		t.Fatal("expected drop")
	}
	if g.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", g.State())
	}
	want := Drop{TaskID: "b", FromColumnID: "todo", ToColumnID: "done", TargetIndex: 1, OriginalIndex: 1}
	if drop != want {
		t.Fatalf("drop = %#v, want %#v", drop, want)
	}

	board := domain.Board{
		Columns: []domain.Column{
			{ID: "todo", Title: "todo", Width: 280, TaskIDs: []string{"a", "b", "c"}},
			{ID: "done", Title: "done", Width: 280, TaskIDs: []string{"x", "y"}},
		},
		Tasks: map[string]domain.Task{},
	}
	if !board.MoveTask(drop.TaskID, drop.FromColumnID, drop.ToColumnID, drop.TargetIndex) {
		t.Fatal("expected move to apply")
	}
	if !slices.Equal(board.Columns[1].TaskIDs, []string{"x", "b", "y"}) {
		t.Fatalf("unexpected destination %v", board.Columns[1].TaskIDs)
	}
	if rec := drop.Record(); rec.OriginalIndex != 1 || rec.ToColumnID != "done" {
		t.Fatalf("unexpected record %#v", rec)
	}
}

func TestGestureReleaseOutsideCancels(t *testing.T) {
	layout := newFakeLayout()
	var g Gesture
	g.Begin("a", "todo", 0, domain.Point{X: 10, Y: 50}, domain.Rect{Y: 30, W: 100, H: 40})
	if _, ok := g.Move(domain.Point{X: 290, Y: 50}, layout); ok {
		t.Fatal("expected no preview in the gutter")
	}
	if _, ok := g.Release(domain.Point{X: 900, Y: 50}, layout); ok {
		t.Fatal("expected release outside columns to cancel")
	}
	if g.State() != StateCancelled {
		t.Fatalf("expected cancelled, got %s", g.State())
	}
	if _, ok := g.Release(domain.Point{X: 10, Y: 50}, layout); ok {
		t.Fatal("expected release after cancel to be ignored")
	}
	g.Reset()
	if g.State() != StateIdle || g.TaskID() != "" {
		t.Fatalf("expected idle after reset, got %s", g.State())
	}
}

func TestGestureRejectsInvalidBegin(t *testing.T) {
	var g Gesture
	if g.Begin("", "todo", 0, domain.Point{}, domain.Rect{}) {
		t.Fatal("expected empty task id to be rejected")
	}
	if g.Begin("a", "todo", -1, domain.Point{}, domain.Rect{}) {
		t.Fatal("expected negative origin index to be rejected")
	}
	if _, ok := g.Move(domain.Point{}, newFakeLayout()); ok {
		t.Fatal("expected move while idle to be ignored")
	}
	g.Begin("a", "todo", 0, domain.Point{}, domain.Rect{})
	g.Cancel()
	if g.State() != StateCancelled || g.Dragging() {
		t.Fatalf("expected cancelled, got %s", g.State())
	}
}
