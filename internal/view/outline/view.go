package outline

import (
	"github.com/dshills/mapforge/internal/document"
	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/dshills/mapforge/internal/observer"
)

// Default layout values.
const (
	DefaultIndent = 2
	MaxIndent     = 8
)

// Options controls what the outline shows.
type Options struct {
	// ShowPrimitives lists primitives under their entities.
	ShowPrimitives bool

	// Indent is the number of columns per tree level.
	Indent int
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{ShowPrimitives: true, Indent: DefaultIndent}
}

func (o Options) normalized() Options {
	if o.Indent < 1 {
		o.Indent = DefaultIndent
	}
	if o.Indent > MaxIndent {
		o.Indent = MaxIndent
	}
	return o
}

// row is one line of the outline.
type row struct {
	elem  scene.Element
	depth int
}

// View shows the scene tree of one document.
type View struct {
	doc    *document.Document
	handle *observer.Handle
	opts   Options

	rows   []row
	cursor int
	top    int
	dirty  bool
	dead   bool

	// status is a one-line message shown until the next key.
	status string
}

// New creates a view of doc and registers it as an observer.
func New(doc *document.Document, opts Options) *View {
	v := &View{
		doc:   doc,
		opts:  opts.normalized(),
		dirty: true,
	}
	v.handle = doc.Register(v, observer.WithPriority(observer.PriorityView))
	return v
}

// Options returns the current options.
func (v *View) Options() Options { return v.opts }

// SetOptions changes the options and schedules a redraw.
func (v *View) SetOptions(opts Options) {
	v.opts = opts.normalized()
	v.dirty = true
}

// Dirty reports whether the view needs to be redrawn.
func (v *View) Dirty() bool { return v.dirty }

// Dead reports whether the document was closed.
func (v *View) Dead() bool { return v.dead }

// Cursor returns the element under the cursor, or nil.
func (v *View) Cursor() scene.Element {
	v.refresh()
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return nil
	}
	return v.rows[v.cursor].elem
}

// Status returns the status message.
func (v *View) Status() string { return v.status }

// Close unregisters the view.
func (v *View) Close() {
	v.handle.Unregister()
}

// refresh rebuilds the rows if the tree changed. The cursor stays on the
// same element when it still exists.
func (v *View) refresh() {
	if !v.dirty || v.dead {
		return
	}
	var current scene.Element
	if v.cursor >= 0 && v.cursor < len(v.rows) {
		current = v.rows[v.cursor].elem
	}

	v.rows = v.rows[:0]
	v.collect(v.doc.Root(), 0)

	v.cursor = min(v.cursor, len(v.rows)-1)
	for i, r := range v.rows {
		if r.elem == current {
			v.cursor = i
			break
		}
	}
	v.cursor = max(v.cursor, 0)
}

func (v *View) collect(e *scene.Entity, depth int) {
	v.rows = append(v.rows, row{elem: e, depth: depth})
	if v.opts.ShowPrimitives {
		for _, p := range e.Primitives() {
			v.rows = append(v.rows, row{elem: p, depth: depth + 1})
		}
	}
	for _, c := range e.Children() {
		v.collect(c, depth+1)
	}
}

func (v *View) invalidate() { v.dirty = true }

func (v *View) OnSubjectDies(*observer.Subject) {
	v.dead = true
	v.dirty = true
	v.rows = nil
}

func (v *View) OnSelectionChanged(*observer.Subject, []scene.Element, []scene.Element) {
	v.invalidate()
}

func (v *View) OnCreated(*observer.Subject, []*scene.Entity, []*scene.Primitive) { v.invalidate() }
func (v *View) OnDeleted(*observer.Subject, []*scene.Entity, []*scene.Primitive) { v.invalidate() }

func (v *View) OnModified(*observer.Subject, []scene.Element, observer.ModDetail, []geom.Box) {
	v.invalidate()
}

func (v *View) OnEntitiesChanged(*observer.Subject, []*scene.Entity, observer.EntDetail) {
	v.invalidate()
}

func (v *View) OnVarChanged(*observer.Subject, observer.Var) { v.invalidate() }
func (v *View) OnGroupsChanged(*observer.Subject)            { v.invalidate() }
