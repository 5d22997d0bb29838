package lua

import (
	"context"
	"errors"

	"github.com/dshills/mapforge/internal/document"
	"github.com/dshills/mapforge/internal/observer"
	lua "github.com/yuin/gopher-lua"
)

// Runner runs scripts against one document.
type Runner struct {
	state  *State
	bridge *Bridge
	doc    *document.Document

	// busy is held while an observer callback runs; scripts may not edit
	// the document then.
	busy observer.Guard

	observers []*scriptObserver
	ctx       context.Context
	running   bool
	errs      []error
}

// NewRunner creates a runner for doc and installs the doc module.
func NewRunner(doc *document.Document, opts ...StateOption) *Runner {
	state := NewState(opts...)
	r := &Runner{
		state:  state,
		bridge: NewBridge(state.L),
		doc:    doc,
		ctx:    context.Background(),
	}
	r.installElementMethods()
	r.installModule()
	return r
}

// State returns the Lua state of the runner.
func (r *Runner) State() *State { return r.state }

// Run runs code as a script called name. Failures of observer callbacks
// fired while the script ran are joined to the result.
func (r *Runner) Run(ctx context.Context, name, code string) error {
	return r.do(ctx, func() error { return r.state.DoString(ctx, name, code) })
}

// RunFile runs the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	return r.do(ctx, func() error { return r.state.DoFile(ctx, path) })
}

func (r *Runner) do(ctx context.Context, fn func() error) error {
	if r.state.IsClosed() {
		return ErrStateClosed
	}
	r.ctx, r.running, r.errs = ctx, true, nil
	defer func() {
		r.ctx, r.running = context.Background(), false
		r.bridge.Forget()
	}()

	err := fn()
	return errors.Join(append([]error{err}, r.errs...)...)
}

// Observers returns the number of Lua observers of the document.
func (r *Runner) Observers() int { return len(r.observers) }

// Close unregisters the Lua observers and releases the Lua state.
func (r *Runner) Close() {
	for _, o := range r.observers {
		o.handle.Unregister()
	}
	r.observers = nil
	r.state.Close()
}

// callback runs fn for an observer. Errors are returned by the running
// script, or logged when no script runs.
func (r *Runner) callback(name string, fn *lua.LFunction, args ...lua.LValue) {
	if r.state.IsClosed() {
		return
	}
	r.busy.Do(func() {
		err := r.state.Call(r.ctx, name, fn, args...)
		if err == nil {
			return
		}
		if r.running {
			r.errs = append(r.errs, err)
			return
		}
		r.state.logger.Warn("lua observer failed: %v", err)
	})
}

// remove forgets o.
func (r *Runner) remove(o *scriptObserver) {
	for i, x := range r.observers {
		if x == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}
