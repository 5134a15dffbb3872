package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/kanwow/internal/app"
	"github.com/evanschultz/kanwow/internal/domain"
)

// cellPoint returns the center of the cell at x, y so midpoint comparisons never tie.
func cellPoint(x, y int) domain.Point {
	return domain.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

// snackbarRow returns the screen row of the undo snackbar.
func (m Model) snackbarRow() int {
	height := m.height
	if height <= 0 {
		height = fallbackHeight
	}
	return height - footerRows + 1
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.gesture.Dragging() {
		return m, nil
	}
	if m.mode == modeLabelFilter {
		labels := app.Labels(m.board)
		switch msg.Button {
		case tea.MouseWheelUp:
			if m.labelPickerIndex > 0 {
				m.labelPickerIndex--
			}
		case tea.MouseWheelDown:
			if m.labelPickerIndex < len(labels)-1 {
				m.labelPickerIndex++
			}
		}
		return m, nil
	}
	if m.mode != modeNone {
		return m, nil
	}

	if col, ok := m.layout().ColumnAt(cellPoint(msg.X, msg.Y)); ok {
		m.focusColumnByID(col)
	}
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		if m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
	}
	return m, nil
}

// handleMouseClick selects the card under the pointer and starts a drag on the left button.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}
	if m.snack != "" && msg.Y == m.snackbarRow() {
		return m, m.undoCmd()
	}

	l := m.layout()
	p := cellPoint(msg.X, msg.Y)
	col, idx, ok := l.cardAt(p)
	if !ok {
		if colID, ok := l.ColumnAt(p); ok {
			m.focusColumnByID(colID)
			m.selectedTask = 0
		}
		return m, nil
	}
	task := col.Tasks[idx]
	m.selectedColumn = col.Index
	m.selectedTask = idx
	if msg.Button != tea.MouseLeft {
		return m, nil
	}
	column, ok := m.board.Column(col.ID)
	if !ok {
		return m, nil
	}
	m.dragMoved = false
	m.gesture.Begin(task.ID, col.ID, column.IndexOf(task.ID), p, col.Cards[idx].Rect)
	return m, nil
}

// handleMouseMotion updates the drag preview.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.gesture.Dragging() {
		return m, nil
	}
	p := cellPoint(msg.X, msg.Y)
	if p != m.gesture.Pointer() {
		m.dragMoved = true
	}
	target, ok := m.gesture.Move(p, m.layout())
	if !ok {
		m.status = "release over a column to drop"
		return m, nil
	}
	if col, found := m.board.Column(target.ColumnID); found {
		m.status = fmt.Sprintf("drop into %s at %d", col.Title, target.Index+1)
	}
	return m, nil
}

// handleMouseRelease completes the drag and commits the drop.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.gesture.Dragging() {
		return m, nil
	}
	if !m.dragMoved {
		m.gesture.Reset()
		return m, nil
	}
	l := m.layout()
	drop, ok := m.gesture.Release(cellPoint(msg.X, msg.Y), l)
	m.gesture.Reset()
	m.dragMoved = false
	if !ok {
		m.status = "drag cancelled"
		return m, nil
	}
	if drop.FromColumnID == drop.ToColumnID && m.view.Sort != app.SortManual {
		m.status = "reorder needs manual sort"
		return m, nil
	}
	to, ok := m.board.Column(drop.ToColumnID)
	if !ok {
		return m, nil
	}
	return m, m.moveTaskCmd(app.MoveTaskInput{
		TaskID:       drop.TaskID,
		FromColumnID: drop.FromColumnID,
		ToColumnID:   drop.ToColumnID,
		TargetIndex:  columnDropIndex(to, l.Cards(to.ID), drop.TaskID, drop.TargetIndex),
	})
}
