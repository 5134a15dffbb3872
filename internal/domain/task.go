package domain

import (
	"slices"
	"strings"
	"time"
)

// Task is one work item card on the board.
type Task struct {
	ID          string
	Title       string
	Description string
	Labels      []string
	DueDate     *time.Time
	Done        bool
	CreatedAt   time.Time
	Comments    []Comment
}

// TaskInput holds input values for task construction.
type TaskInput struct {
	ID          string
	Title       string
	Description string
	Labels      []string
	DueDate     *time.Time
	Done        bool
}

// NewTask constructs a normalized task.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Labels:      NormalizeLabels(in.Labels),
		DueDate:     NormalizeDueDate(in.DueDate),
		Done:        in.Done,
		CreatedAt:   now.UTC(),
		Comments:    []Comment{},
	}, nil
}

// UpdateDetails replaces the editable task fields.
func (t *Task) UpdateDetails(title, description string, labels []string, dueDate *time.Time, done bool) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	t.Title = title
	t.Description = strings.TrimSpace(description)
	t.Labels = NormalizeLabels(labels)
	t.DueDate = NormalizeDueDate(dueDate)
	t.Done = done
	return nil
}

// AddComment appends a comment to the task thread.
func (t *Task) AddComment(c Comment) {
	t.Comments = append(t.Comments, c)
}

// HasLabel reports whether the task carries label (case-insensitive).
func (t Task) HasLabel(label string) bool {
	label = strings.TrimSpace(label)
	return slices.ContainsFunc(t.Labels, func(have string) bool {
		return strings.EqualFold(strings.TrimSpace(have), label)
	})
}

// IsOverdue reports whether the task is open and its due date is before now's calendar day.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Done || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(calendarDay(now))
}

// NormalizeDueDate truncates a due date to its UTC calendar day.
func NormalizeDueDate(due *time.Time) *time.Time {
	if due == nil || due.IsZero() {
		return nil
	}
	day := calendarDay(*due)
	return &day
}

// NormalizeLabels lowercases, trims, dedupes, and sorts labels.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := map[string]struct{}{}
	for _, raw := range labels {
		label := strings.ToLower(strings.TrimSpace(raw))
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	slices.Sort(out)
	return out
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
