package observer

import (
	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/dshills/mapforge/internal/engine/scene"
)

// Observer is the minimal interface every observer implements.
// Observers must be comparable; pointer types are.
type Observer interface {
	// OnSubjectDies is called when s is closed, before the observer is
	// released. The observer must not use s afterwards.
	OnSubjectDies(s *Subject)
}

// SelectionObserver is notified when the selection changes.
type SelectionObserver interface {
	OnSelectionChanged(s *Subject, oldSel, newSel []scene.Element)
}

// CreationObserver is notified when elements are inserted.
type CreationObserver interface {
	OnCreated(s *Subject, ents []*scene.Entity, prims []*scene.Primitive)
}

// DeletionObserver is notified when elements are removed.
type DeletionObserver interface {
	OnDeleted(s *Subject, ents []*scene.Entity, prims []*scene.Primitive)
}

// ModificationObserver is notified when elements change.
// oldBounds is nil unless the notifier supplied the previous bounds, in
// which case it is parallel to elems.
type ModificationObserver interface {
	OnModified(s *Subject, elems []scene.Element, detail ModDetail, oldBounds []geom.Box)
}

// EntityObserver is notified when entities change as a whole.
type EntityObserver interface {
	OnEntitiesChanged(s *Subject, ents []*scene.Entity, detail EntDetail)
}

// VarObserver is notified when a single named value changes.
type VarObserver interface {
	OnVarChanged(s *Subject, v Var)
}

// GroupsObserver is notified when the group list or a group's flags change.
type GroupsObserver interface {
	OnGroupsChanged(s *Subject)
}

// OtherObserver is notified of document-wide changes outside the tree.
type OtherObserver interface {
	OnOtherChanged(s *Subject, detail OtherDetail)
}
