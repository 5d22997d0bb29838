package document

import (
	"fmt"
	"strings"

	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/dshills/mapforge/internal/observer"
	"github.com/google/uuid"
)

// DefaultMinorChangeThreshold is the number of clickable units a selection
// change may touch and still be a minor change.
const DefaultMinorChangeThreshold = 3

// Logger is the logging interface used by the document.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Document is an editable scene.
type Document struct {
	*observer.Subject

	name        string
	world       *scene.Entity
	selection   []scene.Element
	groups      []*scene.Group
	pasteParent *scene.Entity

	history   *history.History
	threshold int
	logger    Logger

	closed bool
}

// Option configures a Document.
type Option func(*Document)

// WithName sets the document name, which is also the name of the world.
func WithName(name string) Option {
	return func(d *Document) { d.name = name }
}

// WithHistoryLimit sets the maximum number of undo entries.
func WithHistoryLimit(n int) Option {
	return func(d *Document) { d.history = history.New(n) }
}

// WithMinorChangeThreshold sets the selection change threshold.
func WithMinorChangeThreshold(n int) Option {
	return func(d *Document) { d.threshold = n }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		Subject:   observer.NewSubject(),
		name:      "untitled",
		threshold: DefaultMinorChangeThreshold,
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.history == nil {
		d.history = history.New(history.DefaultMaxEntries)
	}
	d.world = scene.NewEntity(d.name)
	d.pasteParent = d.world
	return d
}

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// Title returns the name, marked with "*" when there are unsaved changes.
func (d *Document) Title() string {
	if d.Modified() {
		return d.name + "*"
	}
	return d.name
}

// Root returns the world entity.
func (d *Document) Root() *scene.Entity { return d.world }

// IsWorld reports whether e is the world entity.
func (d *Document) IsWorld(e *scene.Entity) bool { return e == d.world }

// Contains reports whether e is part of the tree.
func (d *Document) Contains(e *scene.Entity) bool {
	return e != nil && d.world.Has(e)
}

// History returns the undo history.
func (d *Document) History() *history.History { return d.history }

// MinorChangeThreshold returns the selection change threshold.
func (d *Document) MinorChangeThreshold() int { return d.threshold }

// SetMinorChangeThreshold changes the selection change threshold.
func (d *Document) SetMinorChangeThreshold(n int) {
	if n < 0 {
		n = 0
	}
	d.threshold = n
}

// Insert attaches ent under parent at index. ent must be detached and
// parent must be part of the tree.
func (d *Document) Insert(ent, parent *scene.Entity, index int) {
	if ent == d.world {
		history.Violation("Document.Insert", fmt.Errorf("world cannot be inserted"))
	}
	if !d.Contains(parent) {
		history.Violation("Document.Insert", fmt.Errorf("parent %q is not in the document", parent.Name()))
	}
	if ent.Parent() != nil {
		history.Violation("Document.Insert", scene.ErrNotDetached)
	}
	history.Check("Document.Insert", parent.AddChild(ent, index))
}

// Remove detaches ent from its parent and returns the index it had.
func (d *Document) Remove(ent *scene.Entity) int {
	if ent == d.world {
		history.Violation("Document.Remove", fmt.Errorf("world cannot be removed"))
	}
	if !d.Contains(ent) {
		history.Violation("Document.Remove", fmt.Errorf("entity %q is not in the document", ent.Name()))
	}
	idx, err := ent.Parent().RemoveChild(ent)
	history.Check("Document.Remove", err)
	if d.pasteParent != nil && ent.Has(d.pasteParent) {
		d.pasteParent = d.world
	}
	return idx
}

// InsertPrimitive attaches p to owner at index.
func (d *Document) InsertPrimitive(p *scene.Primitive, owner *scene.Entity, index int) {
	if !d.Contains(owner) {
		history.Violation("Document.InsertPrimitive", fmt.Errorf("owner %q is not in the document", owner.Name()))
	}
	if p.Entity() != nil {
		history.Violation("Document.InsertPrimitive", scene.ErrNotDetached)
	}
	history.Check("Document.InsertPrimitive", owner.AddPrimitive(p, index))
}

// RemovePrimitive detaches p from its owner and returns the index it had.
func (d *Document) RemovePrimitive(p *scene.Primitive) int {
	owner := p.Entity()
	if !d.Contains(owner) {
		history.Violation("Document.RemovePrimitive", fmt.Errorf("primitive %q is not in the document", p.Name()))
	}
	idx, err := owner.RemovePrimitive(p)
	history.Check("Document.RemovePrimitive", err)
	return idx
}

// AllElements returns every element of the tree in pre-order.
func (d *Document) AllElements() []scene.Element {
	return d.world.Elements()
}

// FindElement returns the element with the given id.
func (d *Document) FindElement(id uuid.UUID) (scene.Element, bool) {
	for _, e := range d.AllElements() {
		if e.ID() == id {
			return e, true
		}
	}
	return nil, false
}

// FindEntity returns the entity with the given id.
func (d *Document) FindEntity(id uuid.UUID) (*scene.Entity, bool) {
	e, ok := d.FindElement(id)
	if !ok {
		return nil, false
	}
	ent, ok := e.(*scene.Entity)
	return ent, ok
}

// FindByName returns the elements with the given name, ignoring case.
func (d *Document) FindByName(name string) []scene.Element {
	var out []scene.Element
	for _, e := range d.AllElements() {
		if strings.EqualFold(e.Name(), name) {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the distinct element names of the tree in pre-order.
func (d *Document) Names() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, e := range d.AllElements() {
		if _, ok := seen[e.Name()]; ok {
			continue
		}
		seen[e.Name()] = struct{}{}
		out = append(out, e.Name())
	}
	return out
}

// Modified reports whether the document has unsaved changes.
func (d *Document) Modified() bool { return d.history.Modified() }

// MarkSaved records the current state as saved.
func (d *Document) MarkSaved() { d.history.MarkSaved() }

// Submit hands cmd to the history. It returns false if cmd was a no-op.
func (d *Document) Submit(cmd history.Command) bool {
	if d.closed {
		history.Violation("Document.Submit", ErrClosed)
	}
	if !d.history.Submit(cmd) {
		d.logger.Debug("rejected no-op command %q", cmd.Name())
		return false
	}
	d.logger.Debug("submitted %q", cmd.Name())
	return true
}

// Undo undoes the last command.
func (d *Document) Undo() error {
	info, _ := d.history.PeekUndo()
	if err := d.history.Undo(); err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	d.logger.Debug("undid %q", info.Name)
	return nil
}

// Redo redoes the last undone command.
func (d *Document) Redo() error {
	info, _ := d.history.PeekRedo()
	if err := d.history.Redo(); err != nil {
		return fmt.Errorf("redo: %w", err)
	}
	d.logger.Debug("redid %q", info.Name)
	return nil
}

// Close releases the history and tells every observer the document dies.
func (d *Document) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.history.Clear()
	d.Subject.Close()
}
