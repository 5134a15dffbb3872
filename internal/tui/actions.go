package tui

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/kanwow/internal/app"
	"github.com/evanschultz/kanwow/internal/domain"
)

// moveTaskCmd applies one move and opens the undo snackbar when it changed the board.
func (m Model) moveTaskCmd(in app.MoveTaskInput) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if _, ok := svc.MoveTask(context.Background(), in); !ok {
			return boardMsg{board: svc.Board(), status: "move ignored"}
		}
		return boardMsg{
			board:       svc.Board(),
			status:      "task moved",
			animate:     true,
			snack:       true,
			focusTaskID: in.TaskID,
		}
	}
}

// undoCmd reverts the most recent move.
func (m Model) undoCmd() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if !svc.CanUndo() {
			return boardMsg{board: svc.Board(), status: "nothing to undo", clearSnack: true}
		}
		rec, ok := svc.UndoLast(context.Background())
		if !ok {
			return boardMsg{board: svc.Board(), status: "undo skipped (task moved since)", clearSnack: true}
		}
		return boardMsg{
			board:       svc.Board(),
			status:      "move undone",
			animate:     true,
			clearSnack:  true,
			focusTaskID: rec.TaskID,
		}
	}
}

// createTaskCmd adds a task.
func (m Model) createTaskCmd(in app.CreateTaskInput) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		task, err := svc.CreateTask(context.Background(), in)
		if err != nil {
			return boardMsg{err: err}
		}
		return boardMsg{board: svc.Board(), status: "task created", animate: true, focusTaskID: task.ID}
	}
}

// updateTaskCmd edits a task.
func (m Model) updateTaskCmd(in app.UpdateTaskInput) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		task, err := svc.UpdateTask(context.Background(), in)
		if err != nil {
			return boardMsg{err: err}
		}
		return boardMsg{board: svc.Board(), status: "task updated", focusTaskID: task.ID}
	}
}

// toggleDoneCmd flips the done flag.
func (m Model) toggleDoneCmd(taskID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		task, err := svc.ToggleDone(context.Background(), taskID)
		if err != nil {
			return boardMsg{err: err}
		}
		status := "task reopened"
		if task.Done {
			status = "task done"
		}
		return boardMsg{board: svc.Board(), status: status, focusTaskID: task.ID}
	}
}

// deleteTaskCmd removes a task.
func (m Model) deleteTaskCmd(taskID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.DeleteTask(context.Background(), taskID); err != nil {
			return boardMsg{err: err}
		}
		return boardMsg{board: svc.Board(), status: "task deleted", animate: true}
	}
}

// addCommentCmd appends a comment.
func (m Model) addCommentCmd(taskID, text string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if _, err := svc.AddComment(context.Background(), taskID, text); err != nil {
			return boardMsg{err: err}
		}
		return boardMsg{board: svc.Board(), status: "comment added", focusTaskID: taskID}
	}
}

// createColumnCmd appends a column.
func (m Model) createColumnCmd(title, icon string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		col, err := svc.CreateColumn(context.Background(), title, icon)
		if err != nil {
			return boardMsg{err: err}
		}
		return boardMsg{board: svc.Board(), status: "column created", focusColumnID: col.ID}
	}
}

// renameColumnCmd retitles a column.
func (m Model) renameColumnCmd(columnID, title string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		col, err := svc.RenameColumn(context.Background(), columnID, title)
		if err != nil {
			return boardMsg{err: err}
		}
		return boardMsg{board: svc.Board(), status: "column renamed", focusColumnID: col.ID}
	}
}

// deleteColumnCmd removes a column with its tasks.
func (m Model) deleteColumnCmd(columnID, title string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.DeleteColumn(context.Background(), columnID); err != nil {
			return boardMsg{err: err}
		}
		return boardMsg{board: svc.Board(), status: fmt.Sprintf("column %q deleted", title)}
	}
}

// resizeColumnCmd widens or narrows the selected column.
func (m Model) resizeColumnCmd(deltaPx int) tea.Cmd {
	col, ok := m.currentColumn()
	if !ok {
		return nil
	}
	svc := m.svc
	return func() tea.Msg {
		resized, err := svc.ResizeColumn(context.Background(), col.ID, col.Width+deltaPx)
		if err != nil {
			return boardMsg{err: err}
		}
		return boardMsg{
			board:         svc.Board(),
			status:        fmt.Sprintf("%s width %dpx", resized.Title, resized.Width),
			focusColumnID: resized.ID,
		}
	}
}

// moveColumnCmd shifts the selected column left or right.
func (m Model) moveColumnCmd(delta int) tea.Cmd {
	col, ok := m.currentColumn()
	if !ok {
		return nil
	}
	target := m.selectedColumn + delta
	if target < 0 || target >= len(m.board.Columns) {
		return nil
	}
	svc := m.svc
	return func() tea.Msg {
		if !svc.MoveColumn(context.Background(), col.ID, target) {
			return boardMsg{board: svc.Board(), status: "column not moved"}
		}
		return boardMsg{board: svc.Board(), status: "column moved", focusColumnID: col.ID}
	}
}

// yankCmd copies the task as markdown to the clipboard.
func (m Model) yankCmd(task domain.Task) tea.Cmd {
	if m.clipboard == nil {
		return func() tea.Msg { return statusMsg{status: "clipboard unavailable"} }
	}
	copyFn := m.clipboard
	text := taskMarkdown(task)
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			return statusMsg{status: "copy failed: " + err.Error()}
		}
		return statusMsg{status: "task copied"}
	}
}

// exportCmd writes the board document through the configured exporter.
func (m Model) exportCmd() tea.Cmd {
	if m.export == nil {
		return func() tea.Msg { return statusMsg{status: "export unavailable"} }
	}
	svc := m.svc
	exportFn := m.export
	now := m.now()
	return func() tea.Msg {
		data, err := svc.Export()
		if err != nil {
			return statusMsg{status: "export failed: " + err.Error()}
		}
		path, err := exportFn(data, now)
		if err != nil {
			return statusMsg{status: "export failed: " + err.Error()}
		}
		return statusMsg{status: "exported " + path}
	}
}

// taskMarkdown renders a task as a markdown snippet.
func taskMarkdown(task domain.Task) string {
	var b strings.Builder
	check := " "
	if task.Done {
		check = "x"
	}
	fmt.Fprintf(&b, "- [%s] %s\n", check, task.Title)
	if len(task.Labels) > 0 {
		fmt.Fprintf(&b, "  labels: %s\n", strings.Join(task.Labels, ", "))
	}
	if task.DueDate != nil {
		fmt.Fprintf(&b, "  due: %s\n", task.DueDate.Format("2006-01-02"))
	}
	if desc := strings.TrimSpace(task.Description); desc != "" {
		b.WriteString("\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	return b.String()
}
