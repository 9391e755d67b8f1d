package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when a field or the submit loop exceeds
	// the configured retry limit.
	ErrTooManyAttempts = errors.New("tui: too many attempts")
)
