package command

import (
	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
)

// CloneDrag duplicates elems and applies trafo to the copies, as when the
// user drags a selection with the clone modifier held.
//
// Selected entities are cloned with their whole subtree; primitives of a
// cloned entity are not cloned twice. Entity clones go next to their
// originals, except that a clone of the world becomes a child of the world.
// The returned macro adds the clones and selects them. It is not yet done,
// and nil if nothing is left to clone.
func CloneDrag(doc Document, elems []scene.Element, trafo geom.Trafo) *history.Macro {
	ents, prims := reduceForClone(doc, elems)
	if len(ents) == 0 && len(prims) == 0 {
		return nil
	}

	type placedEntity struct {
		clone  *scene.Entity
		parent *scene.Entity
	}
	type placedPrimitive struct {
		clone *scene.Primitive
		owner *scene.Entity
	}

	// Attach the clones provisionally, so that world-space positions can be
	// computed relative to their final parents.
	var placedEnts []placedEntity
	var placedPrims []placedPrimitive
	var moving []scene.Element

	for _, e := range ents {
		parent := e.Parent()
		if doc.IsWorld(e) {
			parent = e
		}
		c := e.Clone(true)
		history.Check("CloneDrag", parent.AddChild(c, -1))
		c.SetOriginWS(e.OriginWS())
		c.SetOrientationWS(e.OrientationWS())
		placedEnts = append(placedEnts, placedEntity{clone: c, parent: parent})
		moving = append(moving, c.Elements()...)
	}
	for _, p := range prims {
		c := p.Clone()
		owner := p.Entity()
		history.Check("CloneDrag", owner.AddPrimitive(c, -1))
		placedPrims = append(placedPrims, placedPrimitive{clone: c, owner: owner})
		moving = append(moving, c)
	}

	scene.ApplyTrafo(moving, trafo)

	// Detach again; the commands attach them for real.
	for _, pe := range placedEnts {
		_, err := pe.parent.RemoveChild(pe.clone)
		history.Check("CloneDrag", err)
	}
	for _, pp := range placedPrims {
		_, err := pp.owner.RemovePrimitive(pp.clone)
		history.Check("CloneDrag", err)
	}

	var cmds []history.Command
	var created []scene.Element
	for _, pe := range placedEnts {
		cmds = append(cmds, NewAddEntity(doc, pe.clone, pe.parent, false))
		created = append(created, pe.clone.Elements()...)
	}
	for _, pp := range placedPrims {
		cmds = append(cmds, NewAddPrimitive(doc, []*scene.Primitive{pp.clone}, pp.owner, "Clone primitive", false))
		created = append(created, pp.clone)
	}
	cmds = append(cmds, SelectSet(doc, created))

	return history.NewMacro("Clone", cmds)
}

// reduceForClone reduces elems like Delete, except that the world is a
// valid source.
func reduceForClone(doc Document, elems []scene.Element) ([]*scene.Entity, []*scene.Primitive) {
	for _, e := range elems {
		if ent, ok := e.(*scene.Entity); ok && doc.IsWorld(ent) {
			return []*scene.Entity{ent}, nil
		}
	}
	return scene.Reduce(elems)
}
