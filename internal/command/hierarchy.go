package command

import (
	"fmt"

	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/dshills/mapforge/internal/observer"
)

// CanReparent reports why ent cannot be moved under newParent, or nil.
func CanReparent(doc Document, ent, newParent *scene.Entity) error {
	switch {
	case ent == nil || newParent == nil:
		return fmt.Errorf("reparent: %w", scene.ErrNotChild)
	case doc.IsWorld(ent) || ent.Parent() == nil:
		return fmt.Errorf("reparent %q: world cannot be moved", ent.Name())
	case ent.Has(newParent):
		return fmt.Errorf("reparent %q under %q: %w", ent.Name(), newParent.Name(), scene.ErrCycle)
	}
	return nil
}

// ChangeEntityHierarchy moves an entity to a new parent and position.
type ChangeEntityHierarchy struct {
	history.Base
	doc Document
	ent *scene.Entity

	newParent *scene.Entity
	newIndex  int
	oldParent *scene.Entity
	oldIndex  int
}

// NewChangeEntityHierarchy moves ent so that it becomes child newIndex of
// newParent. A negative index appends. It panics if the move would create a
// cycle; callers check with CanReparent first.
func NewChangeEntityHierarchy(doc Document, ent, newParent *scene.Entity, newIndex int) *ChangeEntityHierarchy {
	history.Check("NewChangeEntityHierarchy", CanReparent(doc, ent, newParent))
	return &ChangeEntityHierarchy{
		Base:      history.NewBase(),
		doc:       doc,
		ent:       ent,
		newParent: newParent,
		newIndex:  newIndex,
	}
}

func (c *ChangeEntityHierarchy) target() int {
	n := c.newParent.ChildCount()
	if c.ent.Parent() == c.newParent {
		n--
	}
	if c.newIndex < 0 || c.newIndex > n {
		return n
	}
	return c.newIndex
}

// CanDo reports whether the move is valid and changes anything.
func (c *ChangeEntityHierarchy) CanDo() bool {
	if CanReparent(c.doc, c.ent, c.newParent) != nil {
		return false
	}
	parent := c.ent.Parent()
	return parent != c.newParent || parent.ChildIndex(c.ent) != c.target()
}

// Do performs the move.
func (c *ChangeEntityHierarchy) Do() bool {
	c.BeginDo("ChangeEntityHierarchy")
	history.Check("ChangeEntityHierarchy.Do", CanReparent(c.doc, c.ent, c.newParent))
	if !c.CanDo() {
		return false
	}

	target := c.target()
	c.oldParent = c.ent.Parent()
	c.oldIndex = c.doc.Remove(c.ent)
	c.doc.Insert(c.ent, c.newParent, target)

	c.doc.NotifyEntitiesChanged([]*scene.Entity{c.ent}, observer.EntHierarchy)
	return c.EndDo()
}

// Undo moves the entity back.
func (c *ChangeEntityHierarchy) Undo() {
	c.BeginUndo("ChangeEntityHierarchy")
	c.doc.Remove(c.ent)
	c.doc.Insert(c.ent, c.oldParent, c.oldIndex)
	c.doc.NotifyEntitiesChanged([]*scene.Entity{c.ent}, observer.EntHierarchy)
	c.EndUndo()
}

// Name returns the command label.
func (c *ChangeEntityHierarchy) Name() string {
	return fmt.Sprintf("Move %s into %s", c.ent.Name(), c.newParent.Name())
}

// AssignPrimitives moves primitives to another entity.
type AssignPrimitives struct {
	history.Base
	doc    Document
	prims  []*scene.Primitive
	target *scene.Entity

	owners  []*scene.Entity
	indices []int
}

// NewAssignPrimitives moves prims to target.
func NewAssignPrimitives(doc Document, prims []*scene.Primitive, target *scene.Entity) *AssignPrimitives {
	var moving []*scene.Primitive
	for _, p := range prims {
		if p.Entity() != target {
			moving = append(moving, p)
		}
	}
	return &AssignPrimitives{
		Base:    history.NewBase(),
		doc:     doc,
		prims:   moving,
		target:  target,
		owners:  make([]*scene.Entity, len(moving)),
		indices: make([]int, len(moving)),
	}
}

// Do moves the primitives.
func (c *AssignPrimitives) Do() bool {
	c.BeginDo("AssignPrimitives")
	if len(c.prims) == 0 {
		return false
	}
	for i, p := range c.prims {
		c.owners[i] = p.Entity()
		c.indices[i] = c.doc.RemovePrimitive(p)
		c.doc.InsertPrimitive(p, c.target, -1)
	}
	c.doc.NotifyModified(asElements(c.prims), observer.ModReassignedToEntity)
	return c.EndDo()
}

// Undo returns the primitives to their owners.
func (c *AssignPrimitives) Undo() {
	c.BeginUndo("AssignPrimitives")
	for i := len(c.prims) - 1; i >= 0; i-- {
		p := c.prims[i]
		c.doc.RemovePrimitive(p)
		c.doc.InsertPrimitive(p, c.owners[i], c.indices[i])
	}
	c.doc.NotifyModified(asElements(c.prims), observer.ModReassignedToEntity)
	c.EndUndo()
}

// Name returns the command label.
func (c *AssignPrimitives) Name() string {
	return fmt.Sprintf("Assign %d %s to %s", len(c.prims), plural(len(c.prims), "primitive", "primitives"), c.target.Name())
}
