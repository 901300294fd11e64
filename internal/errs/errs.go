// Package errs holds the error taxonomy shared by the engine's packages.
//
// Every error here is recoverable: the engine reports it and returns to a
// valid mode.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInputAmbiguous names the state where buffered keys may still
	// complete a remap. It is resolved by the dispatcher's timeout and is
	// never returned to callers.
	ErrInputAmbiguous = errors.New("input ambiguous")

	// ErrGrammarInvalid means a key sequence matched no valid command in the
	// current mode.
	ErrGrammarInvalid = errors.New("invalid command")

	// ErrObjectNotFound means a text object or motion had no valid range at
	// the cursor.
	ErrObjectNotFound = errors.New("object not found")

	// ErrRemapCycle means a remap rule expands back into itself.
	ErrRemapCycle = errors.New("remap cycle")

	// ErrHostEdit means the host rejected an edit batch.
	ErrHostEdit = errors.New("host edit failed")

	// ErrReadOnly is reported by hosts whose buffer cannot be modified.
	ErrReadOnly = errors.New("buffer is read-only")
)

// HostEditError reports a rejected edit batch. State is unchanged.
type HostEditError struct {
	Op  string // the command that produced the edits, e.g. "delete"
	Err error  // the host's error
}

func (e *HostEditError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrHostEdit, e.Err)
}

// Unwrap returns both the sentinel and the host's error so that errors.Is
// matches either.
func (e *HostEditError) Unwrap() []error {
	return []error{ErrHostEdit, e.Err}
}

// OperationError is a failure of a named operation on a target, used by the
// configuration and script plumbing.
type OperationError struct {
	Op     string // e.g. "load", "watch", "call"
	Target string // e.g. a file path or command id
	Err    error
}

// NewOperationError creates an OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
