package scene

import (
	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// entityExtent is the half size of the box drawn for an entity's origin.
const entityExtent = 8

// Entity is a node of the scene tree.
type Entity struct {
	id    uuid.UUID
	name  string
	group *Group

	parent   *Entity
	children []*Entity
	prims    []*Primitive

	// Parent-space transform.
	origin mgl32.Vec3
	orient mgl32.Quat

	disposed bool
}

// NewEntity creates a detached entity at the parent's origin.
func NewEntity(name string) *Entity {
	return &Entity{
		id:     uuid.New(),
		name:   name,
		orient: mgl32.QuatIdent(),
	}
}

// ID returns the entity identity.
func (e *Entity) ID() uuid.UUID { return e.id }

// Name returns the entity name.
func (e *Entity) Name() string { return e.name }

// SetName renames the entity.
func (e *Entity) SetName(name string) { e.name = name }

// Group returns the entity's group, or nil.
func (e *Entity) Group() *Group { return e.group }

// SetGroup assigns the entity to g.
func (e *Entity) SetGroup(g *Group) { e.group = g }

// Entity returns e.
func (e *Entity) Entity() *Entity { return e }

// Disposed reports whether e has been disposed.
func (e *Entity) Disposed() bool { return e.disposed }

// Bounds returns a small box around the world-space origin.
func (e *Entity) Bounds() geom.Box {
	return geom.BoxAround(e.OriginWS()).Grow(entityExtent)
}

// Parent returns the parent entity, or nil for a root or detached entity.
func (e *Entity) Parent() *Entity { return e.parent }

// Root returns the topmost ancestor of e.
func (e *Entity) Root() *Entity {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Depth returns the number of ancestors of e.
func (e *Entity) Depth() int {
	d := 0
	for p := e.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Children returns a copy of the child list.
func (e *Entity) Children() []*Entity {
	out := make([]*Entity, len(e.children))
	copy(out, e.children)
	return out
}

// ChildCount returns the number of children.
func (e *Entity) ChildCount() int { return len(e.children) }

// ChildIndex returns the position of c among e's children, or -1.
func (e *Entity) ChildIndex(c *Entity) int {
	for i, x := range e.children {
		if x == c {
			return i
		}
	}
	return -1
}

// Has reports whether other is e or one of its descendants.
func (e *Entity) Has(other *Entity) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// AddChild attaches c as a child at index. An index outside the child list
// appends.
func (e *Entity) AddChild(c *Entity, index int) error {
	switch {
	case e.disposed || c.disposed:
		return ErrDisposed
	case c.parent != nil:
		return ErrHasParent
	case c.Has(e):
		return ErrCycle
	}

	if index < 0 || index > len(e.children) {
		index = len(e.children)
	}
	e.children = append(e.children, nil)
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = c
	c.parent = e
	return nil
}

// RemoveChild detaches c and returns the index it had.
func (e *Entity) RemoveChild(c *Entity) (int, error) {
	i := e.ChildIndex(c)
	if i < 0 {
		return -1, ErrNotChild
	}
	e.children = append(e.children[:i], e.children[i+1:]...)
	c.parent = nil
	return i, nil
}

// Primitives returns a copy of the primitive list.
func (e *Entity) Primitives() []*Primitive {
	out := make([]*Primitive, len(e.prims))
	copy(out, e.prims)
	return out
}

// PrimitiveIndex returns the position of p among e's primitives, or -1.
func (e *Entity) PrimitiveIndex(p *Primitive) int {
	for i, x := range e.prims {
		if x == p {
			return i
		}
	}
	return -1
}

// AddPrimitive attaches p at index. An index outside the list appends.
func (e *Entity) AddPrimitive(p *Primitive, index int) error {
	switch {
	case e.disposed || p.disposed:
		return ErrDisposed
	case p.owner != nil:
		return ErrHasParent
	}

	if index < 0 || index > len(e.prims) {
		index = len(e.prims)
	}
	e.prims = append(e.prims, nil)
	copy(e.prims[index+1:], e.prims[index:])
	e.prims[index] = p
	p.owner = e
	return nil
}

// RemovePrimitive detaches p and returns the index it had.
func (e *Entity) RemovePrimitive(p *Primitive) (int, error) {
	i := e.PrimitiveIndex(p)
	if i < 0 {
		return -1, ErrNotChild
	}
	e.prims = append(e.prims[:i], e.prims[i+1:]...)
	p.owner = nil
	return i, nil
}

// Walk visits e and its descendants in pre-order until fn returns false.
func (e *Entity) Walk(fn func(*Entity) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// All returns e and all of its descendants in pre-order.
func (e *Entity) All() []*Entity {
	var out []*Entity
	e.Walk(func(n *Entity) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Elements returns every element of the subtree: each entity followed by
// its primitives, in pre-order.
func (e *Entity) Elements() []Element {
	var out []Element
	e.Walk(func(n *Entity) bool {
		out = append(out, n)
		for _, p := range n.prims {
			out = append(out, p)
		}
		return true
	})
	return out
}

// OriginPS returns the origin in parent space.
func (e *Entity) OriginPS() mgl32.Vec3 { return e.origin }

// OrientationPS returns the orientation in parent space.
func (e *Entity) OrientationPS() mgl32.Quat { return e.orient }

// SetOriginPS sets the origin in parent space.
func (e *Entity) SetOriginPS(v mgl32.Vec3) { e.origin = v }

// SetOrientationPS sets the orientation in parent space.
func (e *Entity) SetOrientationPS(q mgl32.Quat) { e.orient = q }

// OriginWS returns the origin in world space.
func (e *Entity) OriginWS() mgl32.Vec3 {
	if e.parent == nil {
		return e.origin
	}
	return e.parent.OriginWS().Add(e.parent.OrientationWS().Rotate(e.origin))
}

// OrientationWS returns the orientation in world space.
func (e *Entity) OrientationWS() mgl32.Quat {
	if e.parent == nil {
		return e.orient
	}
	return e.parent.OrientationWS().Mul(e.orient)
}

// SetOriginWS moves e so that its world-space origin is v.
func (e *Entity) SetOriginWS(v mgl32.Vec3) {
	if e.parent == nil {
		e.origin = v
		return
	}
	inv := e.parent.OrientationWS().Conjugate()
	e.origin = inv.Rotate(v.Sub(e.parent.OriginWS()))
}

// SetOrientationWS turns e so that its world-space orientation is q.
func (e *Entity) SetOrientationWS(q mgl32.Quat) {
	if e.parent == nil {
		e.orient = q
		return
	}
	e.orient = e.parent.OrientationWS().Conjugate().Mul(q)
}

// Clone returns a detached copy of e with a fresh identity.
// With recursive set, children and primitives are cloned as well.
func (e *Entity) Clone(recursive bool) *Entity {
	c := &Entity{
		id:     uuid.New(),
		name:   e.name,
		group:  e.group,
		origin: e.origin,
		orient: e.orient,
	}
	if !recursive {
		return c
	}
	for _, p := range e.prims {
		pc := p.Clone()
		pc.owner = c
		c.prims = append(c.prims, pc)
	}
	for _, child := range e.children {
		cc := child.Clone(true)
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// Dispose marks e, its descendants and their primitives as disposed.
// Only detached entities may be disposed.
func (e *Entity) Dispose() error {
	if e.parent != nil {
		return ErrNotDetached
	}
	e.Walk(func(n *Entity) bool {
		n.disposed = true
		for _, p := range n.prims {
			p.disposed = true
		}
		return true
	})
	return nil
}
