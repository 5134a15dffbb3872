package dragdrop

import (
	"github.com/evanschultz/kanwow/internal/domain"
)

// State identifies the phase of a drag gesture.
type State int

// Gesture states.
const (
	StateIdle State = iota
	StateDragging
	StateCompleted
	StateCancelled
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Layout exposes the rendered geometry a gesture needs to resolve targets.
type Layout interface {
	// ColumnAt returns the id of the column under p.
	ColumnAt(p domain.Point) (string, bool)
	// Cards returns the rendered cards of a column in display order.
	Cards(columnID string) []CardBox
}

// Target is a candidate drop location.
type Target struct {
	ColumnID string
	Index    int
}

// Drop describes a committed gesture, ready for Board.MoveTask.
type Drop struct {
	TaskID        string
	FromColumnID  string
	ToColumnID    string
	TargetIndex   int
	OriginalIndex int
}

// Record converts the drop to the undo unit.
func (d Drop) Record() domain.MoveRecord {
	return domain.MoveRecord{
		TaskID:        d.TaskID,
		FromColumnID:  d.FromColumnID,
		ToColumnID:    d.ToColumnID,
		OriginalIndex: d.OriginalIndex,
	}
}

// Gesture is the short-lived interaction state of one drag. It never mutates the board;
// Release hands back a Drop for the caller to apply.
type Gesture struct {
	state         State
	taskID        string
	originColumn  string
	originIndex   int
	pointer       domain.Point
	grabOffset    domain.Point
	preview       Target
	previewActive bool
}

// State returns the current phase.
func (g *Gesture) State() State {
	return g.state
}

// Dragging reports whether a drag is in flight.
func (g *Gesture) Dragging() bool {
	return g.state == StateDragging
}

// TaskID returns the dragged task id while dragging.
func (g *Gesture) TaskID() string {
	if g.state != StateDragging {
		return ""
	}
	return g.taskID
}

// OriginColumn returns the column the drag started in.
func (g *Gesture) OriginColumn() string {
	return g.originColumn
}

// Pointer returns the last sampled pointer position.
func (g *Gesture) Pointer() domain.Point {
	return g.pointer
}

// GrabOffset returns where inside the card the pointer grabbed it.
func (g *Gesture) GrabOffset() domain.Point {
	return g.grabOffset
}

// Preview returns the current visual drop target, if any.
func (g *Gesture) Preview() (Target, bool) {
	return g.preview, g.previewActive && g.state == StateDragging
}

// Begin starts dragging taskID from originColumn at originIndex. A gesture already in flight
// is replaced.
func (g *Gesture) Begin(taskID, originColumn string, originIndex int, at domain.Point, card domain.Rect) bool {
	if taskID == "" || originColumn == "" || originIndex < 0 {
		return false
	}
	*g = Gesture{
		state:        StateDragging,
		taskID:       taskID,
		originColumn: originColumn,
		originIndex:  originIndex,
		pointer:      at,
		grabOffset:   domain.Point{X: at.X - card.X, Y: at.Y - card.Y},
	}
	return true
}

// Move samples the pointer and updates the preview target. It never commits.
func (g *Gesture) Move(p domain.Point, layout Layout) (Target, bool) {
	if g.state != StateDragging {
		return Target{}, false
	}
	g.pointer = p
	target, ok := g.resolve(p, layout)
	g.preview, g.previewActive = target, ok
	return target, ok
}

// Release ends the gesture at p. Releasing outside any column cancels it.
func (g *Gesture) Release(p domain.Point, layout Layout) (Drop, bool) {
	if g.state != StateDragging {
		return Drop{}, false
	}
	g.pointer = p
	target, ok := g.resolve(p, layout)
	if !ok {
		g.state = StateCancelled
		g.previewActive = false
		return Drop{}, false
	}
	g.state = StateCompleted
	g.previewActive = false
	return Drop{
		TaskID:        g.taskID,
		FromColumnID:  g.originColumn,
		ToColumnID:    target.ColumnID,
		TargetIndex:   target.Index,
		OriginalIndex: g.originIndex,
	}, true
}

// Cancel aborts an in-flight drag.
func (g *Gesture) Cancel() {
	if g.state == StateDragging {
		g.state = StateCancelled
		g.previewActive = false
	}
}

// Reset returns the gesture to idle.
func (g *Gesture) Reset() {
	*g = Gesture{}
}

func (g *Gesture) resolve(p domain.Point, layout Layout) (Target, bool) {
	if layout == nil {
		return Target{}, false
	}
	columnID, ok := layout.ColumnAt(p)
	if !ok {
		return Target{}, false
	}
	return Target{
		ColumnID: columnID,
		Index:    ResolveDropIndex(p.Y, layout.Cards(columnID), g.taskID),
	}, true
}
