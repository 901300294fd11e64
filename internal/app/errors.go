// Package app provides the main application structure: it loads the
// configuration, opens the document and runs editing sessions on the
// terminal, rebuilding the session when the configuration changes.
package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrAlreadyRunning indicates the application is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoPath indicates a scratch document was saved without a file name.
	ErrNoPath = errors.New("no file name")

	// ErrUnsavedChanges indicates there are unsaved changes.
	ErrUnsavedChanges = errors.New("unsaved changes")
)

// InitError represents an error during component initialization.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
