package app

import (
	"errors"
	"strings"
)

// Application errors.
var (
	// ErrAlreadyRunning indicates Run was called while running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrClosed indicates the application was closed.
	ErrClosed = errors.New("application closed")

	// ErrNoScreen indicates the terminal could not be opened.
	ErrNoScreen = errors.New("no terminal screen")
)

// OperationError reports a failed run step, such as a script or the dump.
type OperationError struct {
	Op     string // "run script", "dump", "write metrics"
	Target string // script path or document name, may be empty
	Err    error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	head := e.Op
	if e.Target != "" {
		head += " " + e.Target
	}
	return joinError(head, e.Err)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ComponentError reports a component that could not be set up.
type ComponentError struct {
	Component string // "config", "outline"
	Action    string // "load", "init terminal"
	Err       error
}

// NewComponentError creates a new ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{Component: component, Action: action, Err: err}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}
	head := e.Component
	if e.Action != "" {
		head += ": " + e.Action
	}
	return joinError(head, e.Err)
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func joinError(head string, err error) string {
	if err == nil {
		return head
	}
	var b strings.Builder
	b.WriteString(head)
	b.WriteString(": ")
	b.WriteString(err.Error())
	return b.String()
}
