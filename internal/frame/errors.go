package frame

import "errors"

var (
	// ErrWindowNotFound is returned when no row of the source falls inside
	// the requested window.
	ErrWindowNotFound = errors.New("no points found in window")

	// ErrInvalidWindow is returned for a window whose start is after its end.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrMissingColumn is returned when a table header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
)
