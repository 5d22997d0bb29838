package history

import (
	"errors"
	"fmt"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrGroupOpen indicates undo or redo was requested while a group is open.
	ErrGroupOpen = errors.New("command group is open")
)

// Invariant violations. They are wrapped in an *InvariantError and raised
// with panic.
var (
	// ErrAlreadyDone indicates Do was called on a done command.
	ErrAlreadyDone = errors.New("command already done")

	// ErrNotDone indicates Undo was called on a command that is not done.
	ErrNotDone = errors.New("command not done")

	// ErrMixedState indicates a macro was built from done and not-done commands.
	ErrMixedState = errors.New("macro mixes done and not-done commands")

	// ErrMacroPartiallyApplied indicates a macro child refused to apply after
	// earlier children were applied.
	ErrMacroPartiallyApplied = errors.New("macro partially applied")

	// ErrRedoRefused indicates a command refused to reapply on redo.
	ErrRedoRefused = errors.New("command refused to redo")
)

// InvariantError describes a violated precondition.
type InvariantError struct {
	Op  string // operation that detected the violation
	Err error  // underlying sentinel
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *InvariantError) Unwrap() error {
	return e.Err
}

// Violation panics with an *InvariantError.
func Violation(op string, err error) {
	panic(&InvariantError{Op: op, Err: err})
}

// Check panics with an *InvariantError if err is not nil.
func Check(op string, err error) {
	if err != nil {
		Violation(op, err)
	}
}
