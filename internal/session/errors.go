package session

import "errors"

// Session errors.
var (
	// ErrQuit signals that the session should end normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning is returned by Run when the loop is already active.
	ErrAlreadyRunning = errors.New("session already running")

	// ErrUnknownCommand is returned when a remap names a command that is
	// neither built in nor registered by a script.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrEmptyRegister is returned when a macro register holds nothing.
	ErrEmptyRegister = errors.New("register is empty")
)
