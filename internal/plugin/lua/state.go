package lua

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Default limits for Lua state.
const (
	DefaultExecutionTimeout = 5 * time.Second
	DefaultInstructionLimit = 1_000_000
)

// Logger is the logging interface used by the runtime.
type Logger interface {
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...any) {}

// State wraps gopher-lua with a sandbox, an instruction budget and a
// timeout.
//
// gopher-lua's LState is not goroutine-safe, and neither is State. Scripts
// and observer callbacks run on the goroutine that edits the document.
type State struct {
	L *lua.LState

	executionTimeout time.Duration
	instructionLimit int64
	output           io.Writer
	logger           Logger

	sandbox *Sandbox

	// depth counts nested runs, so that an observer callback fired from
	// inside a script shares the script's budget and deadline.
	depth int
	cause error

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the timeout of one run. Zero disables it.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithInstructionLimit sets the budget of one run. Zero disables it.
func WithInstructionLimit(limit int64) StateOption {
	return func(s *State) {
		s.instructionLimit = limit
	}
}

// WithOutput sets where print writes. Output is discarded by default.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.output = w
	}
}

// WithLogger sets the logger for failures that have no caller to return
// to, such as a failing observer callback after the script ended.
func WithLogger(l Logger) StateOption {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	state := &State{
		executionTimeout: DefaultExecutionTimeout,
		instructionLimit: DefaultInstructionLimit,
		logger:           nopLogger{},
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	state.L = L
	openSafeLibraries(L)

	state.sandbox = NewSandbox(L, state.instructionLimit)
	state.sandbox.Install()
	state.sandbox.SetOutput(state.output)

	return state
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Not opened: io, os, debug, package and channel.
}

// DoString runs code as a chunk called name.
func (s *State) DoString(ctx context.Context, name, code string) error {
	if s.closed {
		return ErrStateClosed
	}
	fn, err := s.L.Load(strings.NewReader(code), name)
	if err != nil {
		return newScriptError(name, err, nil)
	}
	return s.run(ctx, name, fn)
}

// DoFile runs the file at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	if s.closed {
		return ErrStateClosed
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return s.DoString(ctx, path, string(code))
}

// Call calls fn with args. It is used for callbacks into Lua.
func (s *State) Call(ctx context.Context, name string, fn *lua.LFunction, args ...lua.LValue) error {
	if s.closed {
		return ErrStateClosed
	}
	return s.run(ctx, name, fn, args...)
}

// run calls fn in protected mode. The outermost run resets the budget and
// installs the deadline.
func (s *State) run(ctx context.Context, name string, fn *lua.LFunction, args ...lua.LValue) (err error) {
	if s.depth == 0 {
		s.sandbox.ResetInstructionCount()
		s.cause = nil
		if s.executionTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.executionTimeout)
			defer cancel()
		}
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}
	s.depth++
	defer func() { s.depth-- }()

	top := s.L.GetTop()
	defer s.L.SetTop(top)

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = &ScriptError{Script: name, Message: e.Error(), Err: e}
				return
			}
			err = &ScriptError{Script: name, Message: fmt.Sprint(r), Err: fmt.Errorf("lua panic: %v", r)}
		}
	}()

	callErr := s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	if callErr == nil {
		return nil
	}

	cause := s.cause
	if cause == nil {
		switch ctxErr := ctx.Err(); {
		case errors.Is(ctxErr, context.DeadlineExceeded):
			cause = ErrExecutionTimeout
		case ctxErr != nil:
			cause = ctxErr
		}
	}
	return newScriptError(name, callErr, cause)
}

// fail records err as the cause of the current run and raises it in Lua.
func (s *State) fail(L *lua.LState, err error) {
	s.cause = err
	L.RaiseError("%s", err.Error())
}

// charge spends n instructions of the budget. It raises once the budget is
// exhausted.
func (s *State) charge(L *lua.LState, n int64) {
	if s.sandbox.IncrementInstructions(n) {
		s.fail(L, ErrInstructionLimit)
	}
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// RegisterModule registers a global table with the given functions.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) *lua.LTable {
	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
	return mod
}

// Sandbox returns the sandbox.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// SetLimits changes the timeout and instruction budget of later runs.
func (s *State) SetLimits(timeout time.Duration, instructionLimit int64) {
	s.executionTimeout = timeout
	s.instructionLimit = instructionLimit
	s.sandbox.SetInstructionLimit(instructionLimit)
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	return s.closed
}

// Close releases the Lua state.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
