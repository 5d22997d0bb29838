package command

import (
	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/dshills/mapforge/internal/observer"
)

// Document is the part of a document the commands edit.
type Document interface {
	// Root returns the world entity.
	Root() *scene.Entity

	// IsWorld reports whether e is the world entity.
	IsWorld(e *scene.Entity) bool

	// Insert attaches a detached entity under parent at index.
	Insert(ent, parent *scene.Entity, index int)

	// Remove detaches ent and returns the index it had.
	Remove(ent *scene.Entity) int

	// InsertPrimitive attaches a detached primitive to owner at index.
	InsertPrimitive(p *scene.Primitive, owner *scene.Entity, index int)

	// RemovePrimitive detaches p and returns the index it had.
	RemovePrimitive(p *scene.Primitive) int

	// AllElements returns every element of the tree.
	AllElements() []scene.Element

	// Selection returns the selected elements.
	Selection() []scene.Element

	// SetSelection replaces the selection without notifying.
	SetSelection(sel []scene.Element)

	// Groups returns the group list.
	Groups() []*scene.Group

	// InsertGroup adds g at index.
	InsertGroup(g *scene.Group, index int)

	// RemoveGroup removes g and returns the index it had.
	RemoveGroup(g *scene.Group) int

	// AbandonedGroups returns the groups without members.
	AbandonedGroups() []*scene.Group

	// MinorChangeThreshold returns the selection change threshold.
	MinorChangeThreshold() int

	NotifySelectionChanged(oldSel, newSel []scene.Element)
	NotifyCreated(ents []*scene.Entity, prims []*scene.Primitive)
	NotifyDeleted(ents []*scene.Entity, prims []*scene.Primitive)
	NotifyModified(elems []scene.Element, detail observer.ModDetail)
	NotifyModifiedBounds(elems []scene.Element, detail observer.ModDetail, oldBounds []geom.Box)
	NotifyEntitiesChanged(ents []*scene.Entity, detail observer.EntDetail)
	NotifyVarChanged(v observer.Var)
	NotifyGroupsChanged()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func asElements[T scene.Element](xs []T) []scene.Element {
	out := make([]scene.Element, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
