package command

import (
	"fmt"

	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
)

// Delete removes elements from the tree.
type Delete struct {
	history.Base
	doc Document

	ents        []*scene.Entity
	entParents  []*scene.Entity
	entIndices  []int
	prims       []*scene.Primitive
	primOwners  []*scene.Entity
	primIndices []int

	unselect *Select
}

// NewDelete deletes elems. The list may overlap: entities inside another
// listed entity, primitives of a listed entity and the world are dropped.
func NewDelete(doc Document, elems []scene.Element) *Delete {
	var candidates []scene.Element
	for _, e := range elems {
		if ent, ok := e.(*scene.Entity); ok && doc.IsWorld(ent) {
			continue
		}
		candidates = append(candidates, e)
	}
	ents, prims := scene.Reduce(candidates)

	c := &Delete{
		Base:  history.NewBase(),
		doc:   doc,
		ents:  ents,
		prims: prims,
	}
	c.entParents = make([]*scene.Entity, len(ents))
	c.entIndices = make([]int, len(ents))
	c.primOwners = make([]*scene.Entity, len(prims))
	c.primIndices = make([]int, len(prims))

	unselect := asElements(prims)
	for _, e := range ents {
		unselect = append(unselect, e.Elements()...)
	}
	c.unselect = SelectRemove(doc, unselect)
	return c
}

// Entities returns the entities the command removes.
func (c *Delete) Entities() []*scene.Entity {
	return append([]*scene.Entity(nil), c.ents...)
}

// Primitives returns the primitives the command removes.
func (c *Delete) Primitives() []*scene.Primitive {
	return append([]*scene.Primitive(nil), c.prims...)
}

// CanDo reports whether anything is left to delete.
func (c *Delete) CanDo() bool {
	return len(c.ents)+len(c.prims) > 0
}

// Do removes primitives first, then entities in order.
func (c *Delete) Do() bool {
	c.BeginDo("Delete")
	if !c.CanDo() {
		return false
	}

	if !c.unselect.IsDone() {
		c.unselect.Do()
	}

	for i, p := range c.prims {
		c.primOwners[i] = p.Entity()
		c.primIndices[i] = c.doc.RemovePrimitive(p)
	}
	for i, e := range c.ents {
		c.entParents[i] = e.Parent()
		c.entIndices[i] = c.doc.Remove(e)
	}

	c.doc.NotifyDeleted(c.ents, c.prims)
	return c.EndDo()
}

// Undo reinserts everything at the captured positions.
func (c *Delete) Undo() {
	c.BeginUndo("Delete")

	for i := len(c.ents) - 1; i >= 0; i-- {
		c.doc.Insert(c.ents[i], c.entParents[i], c.entIndices[i])
	}
	for i := len(c.prims) - 1; i >= 0; i-- {
		c.doc.InsertPrimitive(c.prims[i], c.primOwners[i], c.primIndices[i])
	}
	c.doc.NotifyCreated(c.ents, c.prims)

	if c.unselect.IsDone() {
		c.unselect.Undo()
	}
	c.EndUndo()
}

// Name returns a label such as "Delete 2 entities".
func (c *Delete) Name() string {
	n := len(c.ents) + len(c.prims)
	switch {
	case len(c.ents) == 0:
		return fmt.Sprintf("Delete %d %s", n, plural(n, "primitive", "primitives"))
	case len(c.prims) == 0:
		return fmt.Sprintf("Delete %d %s", n, plural(n, "entity", "entities"))
	default:
		return fmt.Sprintf("Delete %d elements", n)
	}
}

// Release disposes the removed nodes if the deletion is in effect.
func (c *Delete) Release() {
	if !c.IsDone() {
		return
	}
	for _, e := range c.ents {
		_ = e.Dispose()
	}
	for _, p := range c.prims {
		_ = p.Dispose()
	}
}
