package command

import (
	"fmt"

	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/dshills/mapforge/internal/observer"
)

// SetName renames an element.
type SetName struct {
	history.Base
	doc     Document
	elem    scene.Element
	oldName string
	newName string
}

// NewSetName renames elem to name.
func NewSetName(doc Document, elem scene.Element, name string) *SetName {
	return &SetName{
		Base:    history.NewBase(),
		doc:     doc,
		elem:    elem,
		oldName: elem.Name(),
		newName: name,
	}
}

// Do applies the new name.
func (c *SetName) Do() bool {
	c.BeginDo("SetName")
	if c.oldName == c.newName {
		return false
	}
	c.set(c.newName)
	return c.EndDo()
}

// Undo restores the old name.
func (c *SetName) Undo() {
	c.BeginUndo("SetName")
	c.set(c.oldName)
	c.EndUndo()
}

func (c *SetName) set(name string) {
	c.elem.SetName(name)
	c.doc.NotifyVarChanged(observer.Var{Owner: c.elem, Name: "name", Value: name})
}

// Name returns the command label.
func (c *SetName) Name() string {
	return fmt.Sprintf("Rename %s to %s", c.oldName, c.newName)
}

// Transform applies a world-space transform to elements.
type Transform struct {
	history.Base
	doc   Document
	elems []scene.Element
	trafo geom.Trafo

	entBefore  []scene.EntityState
	entAfter   []scene.EntityState
	primBefore []scene.PrimitiveState
	primAfter  []scene.PrimitiveState
	ents       []*scene.Entity
	prims      []*scene.Primitive
}

// NewTransform applies trafo to elems. The world is never transformed.
func NewTransform(doc Document, elems []scene.Element, trafo geom.Trafo) *Transform {
	var kept []scene.Element
	for _, e := range scene.Unique(elems) {
		if ent, ok := e.(*scene.Entity); ok && doc.IsWorld(ent) {
			continue
		}
		kept = append(kept, e)
	}
	ents, prims := scene.Split(kept)
	return &Transform{
		Base:  history.NewBase(),
		doc:   doc,
		elems: kept,
		trafo: trafo,
		ents:  ents,
		prims: prims,
	}
}

// Do applies the transform. The first run computes the result; later runs
// restore it.
func (c *Transform) Do() bool {
	c.BeginDo("Transform")
	if len(c.elems) == 0 || c.trafo.IsIdentity() {
		return false
	}

	oldBounds := scene.Bounds(c.elems)
	if c.entAfter == nil && c.primAfter == nil {
		c.entBefore, c.primBefore = c.capture()
		scene.ApplyTrafo(c.elems, c.trafo)
		c.entAfter, c.primAfter = c.capture()
	} else {
		c.restore(c.entAfter, c.primAfter)
	}

	c.doc.NotifyModifiedBounds(c.elems, observer.ModTransform, oldBounds)
	return c.EndDo()
}

// Undo restores the states from before Do.
func (c *Transform) Undo() {
	c.BeginUndo("Transform")
	oldBounds := scene.Bounds(c.elems)
	c.restore(c.entBefore, c.primBefore)
	c.doc.NotifyModifiedBounds(c.elems, observer.ModTransform, oldBounds)
	c.EndUndo()
}

func (c *Transform) capture() ([]scene.EntityState, []scene.PrimitiveState) {
	ents := make([]scene.EntityState, len(c.ents))
	for i, e := range c.ents {
		ents[i] = e.State()
	}
	prims := make([]scene.PrimitiveState, len(c.prims))
	for i, p := range c.prims {
		prims[i] = p.State()
	}
	return ents, prims
}

func (c *Transform) restore(ents []scene.EntityState, prims []scene.PrimitiveState) {
	for i, e := range c.ents {
		e.Restore(ents[i])
	}
	for i, p := range c.prims {
		p.Restore(prims[i])
	}
}

// Name returns the command label.
func (c *Transform) Name() string {
	var verb string
	switch c.trafo.Kind() {
	case geom.KindTranslate:
		verb = "Move"
	case geom.KindRotate:
		verb = "Rotate"
	case geom.KindScale:
		verb = "Scale"
	case geom.KindMirror:
		verb = "Mirror"
	default:
		verb = "Transform"
	}
	n := len(c.elems)
	return fmt.Sprintf("%s %d %s", verb, n, plural(n, "element", "elements"))
}
