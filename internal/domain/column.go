package domain

import (
	"slices"
	"strings"
)

// DefaultMinColumnWidth is the narrowest width, in pixels, a column can be resized to.
const DefaultMinColumnWidth = 200

// Column is a named lane holding an ordered list of task ids.
type Column struct {
	ID      string
	Title   string
	Icon    string
	Width   int
	TaskIDs []string
}

// NewColumn constructs a column with no tasks. Width is clamped to minWidth.
func NewColumn(id, title, icon string, width, minWidth int) (Column, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if title == "" {
		return Column{}, ErrInvalidTitle
	}
	if width < 0 || minWidth < 0 {
		return Column{}, ErrInvalidWidth
	}
	return Column{
		ID:      id,
		Title:   title,
		Icon:    strings.TrimSpace(icon),
		Width:   ClampWidth(width, minWidth),
		TaskIDs: []string{},
	}, nil
}

// Rename changes the column title.
func (c *Column) Rename(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	c.Title = title
	return nil
}

// Resize sets the display width, never going below minWidth.
func (c *Column) Resize(width, minWidth int) {
	c.Width = ClampWidth(width, minWidth)
}

// IndexOf returns the position of taskID in the column, or -1.
func (c Column) IndexOf(taskID string) int {
	return slices.Index(c.TaskIDs, taskID)
}

// Contains reports whether the column currently lists taskID.
func (c Column) Contains(taskID string) bool {
	return c.IndexOf(taskID) >= 0
}

// ClampWidth applies the minimum width floor.
func ClampWidth(width, minWidth int) int {
	if minWidth <= 0 {
		minWidth = DefaultMinColumnWidth
	}
	if width < minWidth {
		return minWidth
	}
	return width
}
