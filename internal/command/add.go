package command

import (
	"fmt"

	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
)

// AddEntity inserts new entities into the tree.
type AddEntity struct {
	history.Base
	doc    Document
	ents   []*scene.Entity
	parent *scene.Entity
	index  int
	sel    *Select
}

// NewAddEntity inserts ent as the last child of parent, optionally
// selecting it.
func NewAddEntity(doc Document, ent, parent *scene.Entity, setSelection bool) *AddEntity {
	return NewAddEntities(doc, []*scene.Entity{ent}, parent, -1, setSelection)
}

// NewAddEntities inserts ents under parent starting at index. A negative
// index appends.
func NewAddEntities(doc Document, ents []*scene.Entity, parent *scene.Entity, index int, setSelection bool) *AddEntity {
	c := &AddEntity{
		Base:   history.NewBase(),
		doc:    doc,
		ents:   append([]*scene.Entity(nil), ents...),
		parent: parent,
		index:  index,
	}
	if setSelection {
		var elems []scene.Element
		for _, e := range ents {
			elems = append(elems, e.Elements()...)
		}
		c.sel = SelectSet(doc, elems)
	}
	return c
}

// Entities returns the entities the command inserts.
func (c *AddEntity) Entities() []*scene.Entity {
	return append([]*scene.Entity(nil), c.ents...)
}

// Parent returns the entity the command inserts into.
func (c *AddEntity) Parent() *scene.Entity { return c.parent }

// Do inserts the entities.
func (c *AddEntity) Do() bool {
	c.BeginDo("AddEntity")
	if len(c.ents) == 0 {
		return false
	}

	for i, e := range c.ents {
		if e.Parent() != nil {
			history.Violation("AddEntity.Do", scene.ErrNotDetached)
		}
		idx := -1
		if c.index >= 0 {
			idx = c.index + i
		}
		c.doc.Insert(e, c.parent, idx)
	}
	c.doc.NotifyCreated(c.ents, nil)

	if c.sel != nil && !c.sel.IsDone() {
		c.sel.Do()
	}
	return c.EndDo()
}

// Undo removes the entities again.
func (c *AddEntity) Undo() {
	c.BeginUndo("AddEntity")

	if c.sel != nil && c.sel.IsDone() {
		c.sel.Undo()
	}

	for i := len(c.ents) - 1; i >= 0; i-- {
		e := c.ents[i]
		c.doc.Remove(e)
		if e.Parent() != nil {
			history.Violation("AddEntity.Undo", scene.ErrNotDetached)
		}
	}
	c.doc.NotifyDeleted(c.ents, nil)
	c.EndUndo()
}

// Name returns the command label.
func (c *AddEntity) Name() string {
	if len(c.ents) == 1 {
		return "New entity"
	}
	return fmt.Sprintf("New %d entities", len(c.ents))
}

// Release disposes the entities if they are not part of the tree.
func (c *AddEntity) Release() {
	if c.IsDone() {
		return
	}
	for _, e := range c.ents {
		if e.Parent() == nil {
			_ = e.Dispose()
		}
	}
}

// AddPrimitive attaches new primitives to an entity.
type AddPrimitive struct {
	history.Base
	doc   Document
	prims []*scene.Primitive
	owner *scene.Entity
	name  string
	sel   *Select
}

// NewAddPrimitive attaches prims to owner. name labels the command.
func NewAddPrimitive(doc Document, prims []*scene.Primitive, owner *scene.Entity, name string, setSelection bool) *AddPrimitive {
	c := &AddPrimitive{
		Base:  history.NewBase(),
		doc:   doc,
		prims: append([]*scene.Primitive(nil), prims...),
		owner: owner,
		name:  name,
	}
	if c.name == "" {
		c.name = fmt.Sprintf("Add %d %s", len(prims), plural(len(prims), "primitive", "primitives"))
	}
	if setSelection {
		c.sel = SelectSet(doc, asElements(c.prims))
	}
	return c
}

// Primitives returns the primitives the command attaches.
func (c *AddPrimitive) Primitives() []*scene.Primitive {
	return append([]*scene.Primitive(nil), c.prims...)
}

// Do attaches the primitives.
func (c *AddPrimitive) Do() bool {
	c.BeginDo("AddPrimitive")
	if len(c.prims) == 0 {
		return false
	}

	for _, p := range c.prims {
		c.doc.InsertPrimitive(p, c.owner, -1)
	}
	c.doc.NotifyCreated(nil, c.prims)

	if c.sel != nil && !c.sel.IsDone() {
		c.sel.Do()
	}
	return c.EndDo()
}

// Undo detaches the primitives again.
func (c *AddPrimitive) Undo() {
	c.BeginUndo("AddPrimitive")

	if c.sel != nil && c.sel.IsDone() {
		c.sel.Undo()
	}

	for i := len(c.prims) - 1; i >= 0; i-- {
		c.doc.RemovePrimitive(c.prims[i])
	}
	c.doc.NotifyDeleted(nil, c.prims)
	c.EndUndo()
}

// Name returns the command label.
func (c *AddPrimitive) Name() string { return c.name }

// Release disposes the primitives if they are not attached.
func (c *AddPrimitive) Release() {
	if c.IsDone() {
		return
	}
	for _, p := range c.prims {
		if p.Entity() == nil {
			_ = p.Dispose()
		}
	}
}
