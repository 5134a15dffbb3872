package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound      = errors.New("not found")
	ErrNoColumns     = errors.New("board has no columns")
	ErrInvalidImport = errors.New("invalid board file")
)
