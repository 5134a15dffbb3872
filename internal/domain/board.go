package domain

import (
	"slices"
	"strings"
)

// AppendIndex asks MoveTask to insert at the end of the destination column.
const AppendIndex = -1

// Board is the single mutable root: ordered columns plus the task table they reference.
type Board struct {
	Columns []Column
	Tasks   map[string]Task
}

// NewBoard builds a board from columns with an empty task table.
func NewBoard(columns ...Column) (Board, error) {
	b := Board{
		Columns: make([]Column, 0, len(columns)),
		Tasks:   map[string]Task{},
	}
	for _, c := range columns {
		if err := b.AddColumn(c); err != nil {
			return Board{}, err
		}
	}
	return b, nil
}

// Clone returns a structural copy sharing no slices or maps with b.
func (b Board) Clone() Board {
	out := Board{
		Columns: make([]Column, len(b.Columns)),
		Tasks:   make(map[string]Task, len(b.Tasks)),
	}
	for i, c := range b.Columns {
		c.TaskIDs = append([]string{}, c.TaskIDs...)
		out.Columns[i] = c
	}
	for id, t := range b.Tasks {
		out.Tasks[id] = cloneTask(t)
	}
	return out
}

// Normalize replaces nil collections with empty ones so equal boards compare equal.
func (b *Board) Normalize() {
	if b.Columns == nil {
		b.Columns = []Column{}
	}
	if b.Tasks == nil {
		b.Tasks = map[string]Task{}
	}
	for i := range b.Columns {
		if b.Columns[i].TaskIDs == nil {
			b.Columns[i].TaskIDs = []string{}
		}
	}
	for id, t := range b.Tasks {
		if t.Labels == nil {
			t.Labels = []string{}
		}
		if t.Comments == nil {
			t.Comments = []Comment{}
		}
		b.Tasks[id] = t
	}
}

// ClampColumnWidths raises every column narrower than minWidth to the floor.
func (b *Board) ClampColumnWidths(minWidth int) {
	for i := range b.Columns {
		b.Columns[i].Resize(b.Columns[i].Width, minWidth)
	}
}

// ColumnIndex returns the index of the column with id, or -1.
func (b Board) ColumnIndex(columnID string) int {
	return slices.IndexFunc(b.Columns, func(c Column) bool { return c.ID == columnID })
}

// Column returns a copy of the column with id.
func (b Board) Column(columnID string) (Column, bool) {
	idx := b.ColumnIndex(columnID)
	if idx < 0 {
		return Column{}, false
	}
	return b.Columns[idx], true
}

// ColumnOf returns the id of the column currently holding taskID.
func (b Board) ColumnOf(taskID string) (string, bool) {
	for _, c := range b.Columns {
		if c.Contains(taskID) {
			return c.ID, true
		}
	}
	return "", false
}

// Task returns the task with id.
func (b Board) Task(taskID string) (Task, bool) {
	t, ok := b.Tasks[taskID]
	return t, ok
}

// ColumnTasks resolves a column's ordered ids to tasks, skipping dangling ids.
func (b Board) ColumnTasks(columnID string) []Task {
	c, ok := b.Column(columnID)
	if !ok {
		return nil
	}
	out := make([]Task, 0, len(c.TaskIDs))
	for _, id := range c.TaskIDs {
		if t, ok := b.Tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// AddColumn appends a column to the board.
func (b *Board) AddColumn(c Column) error {
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		return ErrInvalidID
	}
	if b.ColumnIndex(c.ID) >= 0 {
		return ErrDuplicateColumn
	}
	if c.TaskIDs == nil {
		c.TaskIDs = []string{}
	}
	b.Columns = append(b.Columns, c)
	return nil
}

// RemoveColumn deletes a column and every task it lists.
func (b *Board) RemoveColumn(columnID string) (Column, bool) {
	idx := b.ColumnIndex(columnID)
	if idx < 0 {
		return Column{}, false
	}
	removed := b.Columns[idx]
	for _, id := range removed.TaskIDs {
		delete(b.Tasks, id)
	}
	b.Columns = slices.Delete(b.Columns, idx, idx+1)
	return removed, true
}

// AddTask stores t and appends its id to columnID.
func (b *Board) AddTask(t Task, columnID string) error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrInvalidID
	}
	if _, exists := b.Tasks[t.ID]; exists {
		return ErrDuplicateTask
	}
	idx := b.ColumnIndex(columnID)
	if idx < 0 {
		return ErrColumnNotFound
	}
	if b.Tasks == nil {
		b.Tasks = map[string]Task{}
	}
	b.Tasks[t.ID] = t
	b.Columns[idx].TaskIDs = append(b.Columns[idx].TaskIDs, t.ID)
	return nil
}

// PutTask replaces an existing task's fields without touching column order.
func (b *Board) PutTask(t Task) error {
	if _, ok := b.Tasks[t.ID]; !ok {
		return ErrTaskNotFound
	}
	b.Tasks[t.ID] = t
	return nil
}

// RemoveTask deletes a task and strips its id from every column.
func (b *Board) RemoveTask(taskID string) bool {
	_, existed := b.Tasks[taskID]
	delete(b.Tasks, taskID)
	for i := range b.Columns {
		ids := b.Columns[i].TaskIDs
		if slices.Contains(ids, taskID) {
			b.Columns[i].TaskIDs = slices.DeleteFunc(ids, func(id string) bool { return id == taskID })
			existed = true
		}
	}
	return existed
}

// MoveTask removes taskID from the source column and inserts it into the destination column
// at targetIndex, computed against the destination list after removal. A negative or
// out-of-range targetIndex appends. It reports false, leaving the board untouched, when either
// column is missing or the source column does not hold taskID.
func (b *Board) MoveTask(taskID, fromColumnID, toColumnID string, targetIndex int) bool {
	fromIdx := b.ColumnIndex(fromColumnID)
	toIdx := b.ColumnIndex(toColumnID)
	if fromIdx < 0 || toIdx < 0 {
		return false
	}
	pos := b.Columns[fromIdx].IndexOf(taskID)
	if pos < 0 {
		return false
	}

	from := &b.Columns[fromIdx]
	from.TaskIDs = slices.Delete(from.TaskIDs, pos, pos+1)

	to := &b.Columns[toIdx]
	if fromIdx != toIdx {
		// A task id lives in at most one column.
		to.TaskIDs = slices.DeleteFunc(to.TaskIDs, func(id string) bool { return id == taskID })
	}
	if targetIndex < 0 || targetIndex > len(to.TaskIDs) {
		targetIndex = len(to.TaskIDs)
	}
	to.TaskIDs = slices.Insert(to.TaskIDs, targetIndex, taskID)
	return true
}

// MoveColumn reorders columns, placing columnID at targetIndex of the list after removal.
// Out-of-range indexes append.
func (b *Board) MoveColumn(columnID string, targetIndex int) bool {
	idx := b.ColumnIndex(columnID)
	if idx < 0 {
		return false
	}
	c := b.Columns[idx]
	b.Columns = slices.Delete(b.Columns, idx, idx+1)
	if targetIndex < 0 || targetIndex > len(b.Columns) {
		targetIndex = len(b.Columns)
	}
	b.Columns = slices.Insert(b.Columns, targetIndex, c)
	return true
}

func cloneTask(t Task) Task {
	if t.Labels != nil {
		t.Labels = append([]string{}, t.Labels...)
	}
	if t.Comments != nil {
		t.Comments = append([]Comment{}, t.Comments...)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}
