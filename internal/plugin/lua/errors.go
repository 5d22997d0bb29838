package lua

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Errors for script execution.
var (
	// ErrStateClosed is returned when running on a closed runner.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a script runs past its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrInstructionLimit is returned when a script exceeds its budget.
	ErrInstructionLimit = errors.New("lua instruction limit exceeded")

	// ErrUnknownElement is returned when a script names a missing element.
	ErrUnknownElement = errors.New("unknown element")

	// ErrDocumentBusy is returned when an observer tries to edit.
	ErrDocumentBusy = errors.New("document is busy")
)

// ScriptError is a failure inside a script.
type ScriptError struct {
	Script  string
	Line    int
	Message string
	Err     error
}

// Error implements error.
func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Script, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Script, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ScriptError) Unwrap() error {
	return e.Err
}

// newScriptError converts an error from gopher-lua. cause, when set,
// replaces the raw error as the unwrapped cause.
func newScriptError(script string, err error, cause error) *ScriptError {
	msg := err.Error()
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		msg = apiErr.Object.String()
		if cause == nil && apiErr.Cause != nil {
			cause = apiErr.Cause
		}
	}
	if cause == nil {
		cause = err
	}

	line := 0
	if rest, ok := strings.CutPrefix(msg, script+":"); ok {
		if num, text, ok := strings.Cut(rest, ":"); ok {
			if n, convErr := strconv.Atoi(num); convErr == nil {
				line = n
				msg = strings.TrimSpace(text)
			}
		}
	}
	// Keep only the first line; the rest is Lua's stack traceback.
	if first, _, ok := strings.Cut(msg, "\n"); ok {
		msg = first
	}

	return &ScriptError{Script: script, Line: line, Message: msg, Err: cause}
}
