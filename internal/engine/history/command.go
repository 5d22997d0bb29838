package history

import (
	"github.com/google/uuid"
)

// Command is a reversible edit.
type Command interface {
	// ID returns the immutable identity of the command.
	ID() uuid.UUID

	// Do applies the edit. It returns false, without changing anything,
	// if the edit would be a no-op.
	Do() bool

	// Undo reverses a prior successful Do.
	Undo()

	// Name returns a human-readable label.
	Name() string

	// IsDone reports whether the edit is currently applied.
	IsDone() bool

	// ShowInHistory reports whether the user sees and can navigate to it.
	ShowInHistory() bool

	// SuggestsSave reports whether completing it marks the document dirty.
	SuggestsSave() bool
}

// Releaser is implemented by commands that own resources, such as
// detached scene nodes, which must be disposed when the history drops them.
type Releaser interface {
	Release()
}

// Validator is implemented by commands that can tell up front whether Do
// would apply.
type Validator interface {
	CanDo() bool
}

// Release releases cmd if it implements Releaser.
func Release(cmd Command) {
	if r, ok := cmd.(Releaser); ok {
		r.Release()
	}
}

// Option configures the flags of a Base.
type Option func(*Base)

// WithShowInHistory sets whether the command is listed in the history.
func WithShowInHistory(show bool) Option {
	return func(b *Base) { b.hidden = !show }
}

// WithSuggestsSave sets whether completing the command marks the document dirty.
func WithSuggestsSave(save bool) Option {
	return func(b *Base) { b.noSave = !save }
}

// Base carries the state shared by all commands. Embed it and call
// BeginDo/EndDo and BeginUndo/EndUndo around the edit.
type Base struct {
	id     uuid.UUID
	done   bool
	hidden bool
	noSave bool
}

// NewBase returns a Base for a command that is shown in the history and
// suggests saving unless configured otherwise.
func NewBase(opts ...Option) Base {
	b := Base{id: uuid.New()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// ID returns the command identity.
func (b *Base) ID() uuid.UUID { return b.id }

// IsDone reports whether the command is applied.
func (b *Base) IsDone() bool { return b.done }

// ShowInHistory reports whether the command is listed in the history.
func (b *Base) ShowInHistory() bool { return !b.hidden }

// SuggestsSave reports whether completing the command marks the document dirty.
func (b *Base) SuggestsSave() bool { return !b.noSave }

// BeginDo asserts the command is not done.
func (b *Base) BeginDo(op string) {
	if b.done {
		Violation(op+".Do", ErrAlreadyDone)
	}
}

// EndDo marks the command done and returns true.
func (b *Base) EndDo() bool {
	b.done = true
	return true
}

// BeginUndo asserts the command is done.
func (b *Base) BeginUndo(op string) {
	if !b.done {
		Violation(op+".Undo", ErrNotDone)
	}
}

// EndUndo marks the command not done.
func (b *Base) EndUndo() {
	b.done = false
}

// MarkDone sets the done flag of a command assembled from parts that
// were applied elsewhere.
func (b *Base) MarkDone(done bool) {
	b.done = done
}
