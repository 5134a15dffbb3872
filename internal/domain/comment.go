package domain

import (
	"strings"
	"time"
)

// DefaultCommentAuthor is used when a comment is created without an author.
const DefaultCommentAuthor = "me"

// Comment is one entry in a task's comment thread.
type Comment struct {
	ID        string
	Text      string
	Timestamp time.Time
	Author    string
}

// NewComment constructs a normalized comment.
func NewComment(id, text, author string, now time.Time) (Comment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Comment{}, ErrInvalidID
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrInvalidText
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = DefaultCommentAuthor
	}
	return Comment{
		ID:        id,
		Text:      text,
		Timestamp: now.UTC(),
		Author:    author,
	}, nil
}
