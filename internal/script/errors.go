package script

import "errors"

// Errors for script operations.
var (
	// ErrEngineClosed is returned when operating on a closed engine.
	ErrEngineClosed = errors.New("script engine is closed")

	// ErrTimeout is returned when a script runs longer than the engine's
	// timeout.
	ErrTimeout = errors.New("script execution timeout")

	// ErrNoCommand is returned by Run for a name no script registered.
	ErrNoCommand = errors.New("no such command")
)
