// Package undo keeps the most recent completed moves so they can be inverted.
package undo

import (
	"sync"

	"github.com/evanschultz/kanwow/internal/domain"
)

// DefaultDepth matches the single-level undo of the board.
const DefaultDepth = 1

// Stack is a bounded LIFO of move records. When full, the oldest record is dropped.
type Stack struct {
	mu      sync.Mutex
	depth   int
	records []domain.MoveRecord
}

// New constructs a stack holding at most depth records. Depth below 1 is raised to 1.
func New(depth int) *Stack {
	if depth < 1 {
		depth = DefaultDepth
	}
	return &Stack{
		depth:   depth,
		records: make([]domain.MoveRecord, 0, depth),
	}
}

// Depth returns the configured capacity.
func (s *Stack) Depth() int {
	return s.depth
}

// Record pushes one completed move.
func (s *Stack) Record(r domain.MoveRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == s.depth {
		copy(s.records, s.records[1:])
		s.records = s.records[:len(s.records)-1]
	}
	s.records = append(s.records, r)
}

// Pop removes and returns the most recent record.
func (s *Stack) Pop() (domain.MoveRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return domain.MoveRecord{}, false
	}
	last := s.records[len(s.records)-1]
	s.records = s.records[:len(s.records)-1]
	return last, true
}

// Peek returns the most recent record without removing it.
func (s *Stack) Peek() (domain.MoveRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return domain.MoveRecord{}, false
	}
	return s.records[len(s.records)-1], true
}

// Len returns the number of stored records.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Clear drops every record.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}

// Forget drops every record that refers to taskID. Deleting a task invalidates its moves.
func (s *Stack) Forget(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, r := range s.records {
		if r.TaskID != taskID {
			kept = append(kept, r)
		}
	}
	s.records = kept
}

// UndoLast pops the most recent record and applies its inverse through m. The inverse is not
// pushed back. It returns the consumed record and whether a move was applied; an empty stack
// or a move the board rejects leaves the board unchanged.
func (s *Stack) UndoLast(m domain.Mover) (domain.MoveRecord, bool) {
	r, ok := s.Pop()
	if !ok || m == nil {
		return r, false
	}
	inv := r.Inverse()
	return r, m.MoveTask(inv.TaskID, inv.FromColumnID, inv.ToColumnID, inv.OriginalIndex)
}
