package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidText     = errors.New("invalid text")
	ErrInvalidWidth    = errors.New("invalid width")
	ErrColumnNotFound  = errors.New("column not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrDuplicateColumn = errors.New("duplicate column id")
	ErrDuplicateTask   = errors.New("duplicate task id")
)
