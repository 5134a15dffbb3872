package domain

// MoveRecord captures one completed drop so it can be inverted.
type MoveRecord struct {
	TaskID        string
	FromColumnID  string
	ToColumnID    string
	OriginalIndex int
}

// Mover applies a task move. *Board satisfies it.
type Mover interface {
	MoveTask(taskID, fromColumnID, toColumnID string, targetIndex int) bool
}

// Inverse returns the move that puts the task back where it came from.
func (r MoveRecord) Inverse() MoveRecord {
	return MoveRecord{
		TaskID:        r.TaskID,
		FromColumnID:  r.ToColumnID,
		ToColumnID:    r.FromColumnID,
		OriginalIndex: r.OriginalIndex,
	}
}
