package domain

import (
	"slices"
	"testing"
	"time"
)

func TestNewColumnValidation(t *testing.T) {
	if _, err := NewColumn("", "todo", "", 280, 200); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewColumn("c1", "   ", "", 280, 200); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if _, err := NewColumn("c1", "todo", "", -5, 200); err != ErrInvalidWidth {
		t.Fatalf("expected ErrInvalidWidth, got %v", err)
	}
}

func TestNewColumnClampsWidth(t *testing.T) {
	c, err := NewColumn(" c1 ", " Backlog ", "📋", 120, 200)
	if err != nil {
		t.Fatalf("NewColumn() error = %v", err)
	}
	if c.ID != "c1" || c.Title != "Backlog" {
		t.Fatalf("unexpected column %#v", c)
	}
	if c.Width != 200 {
		t.Fatalf("expected width clamped to 200, got %d", c.Width)
	}
	if c.TaskIDs == nil {
		t.Fatal("expected non-nil task ids")
	}
	c.Resize(350, 200)
	if c.Width != 350 {
		t.Fatalf("unexpected width after resize %d", c.Width)
	}
	c.Resize(10, 0)
	if c.Width != DefaultMinColumnWidth {
		t.Fatalf("expected default floor, got %d", c.Width)
	}
	if err := c.Rename(" "); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestNewTaskNormalizes(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 4, 5, 0, time.FixedZone("x", 3600))
	due := time.Date(2026, 3, 9, 18, 30, 0, 0, time.UTC)
	task, err := NewTask(TaskInput{
		ID:          "t1",
		Title:       "  Ship it ",
		Description: " body ",
		Labels:      []string{"UI", "ui", " bug ", ""},
		DueDate:     &due,
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.Title != "Ship it" || task.Description != "body" {
		t.Fatalf("unexpected trimmed fields %#v", task)
	}
	if !slices.Equal(task.Labels, []string{"bug", "ui"}) {
		t.Fatalf("unexpected labels %#v", task.Labels)
	}
	if task.DueDate == nil || !task.DueDate.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due date %v", task.DueDate)
	}
	if task.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC created_at, got %v", task.CreatedAt.Location())
	}
	if _, err := NewTask(TaskInput{ID: "t2"}, now); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestTaskOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	today := now
	task, _ := NewTask(TaskInput{ID: "t1", Title: "x", DueDate: &yesterday}, now)
	if !task.IsOverdue(now) {
		t.Fatal("expected task due yesterday to be overdue")
	}
	task.DueDate = NormalizeDueDate(&today)
	if task.IsOverdue(now) {
		t.Fatal("expected task due today not to be overdue")
	}
	task.DueDate = NormalizeDueDate(&yesterday)
	task.Done = true
	if task.IsOverdue(now) {
		t.Fatal("expected done task not to be overdue")
	}
}

func TestNewComment(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c, err := NewComment("c1", "  looks good ", "", now)
	if err != nil {
		t.Fatalf("NewComment() error = %v", err)
	}
	if c.Text != "looks good" || c.Author != DefaultCommentAuthor {
		t.Fatalf("unexpected comment %#v", c)
	}
	if _, err := NewComment("c2", " ", "ana", now); err != ErrInvalidText {
		t.Fatalf("expected ErrInvalidText, got %v", err)
	}
	if _, err := NewComment("", "x", "ana", now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
