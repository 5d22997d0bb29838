package observer

import (
	"github.com/dshills/mapforge/internal/engine/scene"
)

// Priority determines notification order.
// Lower values are notified first.
type Priority int

const (
	// PriorityView is for views that must reflect a change before anything else runs.
	PriorityView Priority = 0

	// PriorityHigh is for tools and inspectors.
	PriorityHigh Priority = 100

	// PriorityNormal is the default priority for scripts and plugins.
	PriorityNormal Priority = 200

	// PriorityLow is for metrics and logging observers that run last.
	PriorityLow Priority = 300
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityView:
		return "view"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// ModDetail is the reason elements were modified.
type ModDetail int

const (
	ModGeneric ModDetail = iota
	ModTransform
	ModPrimitiveProps
	ModSurfaceInfo
	ModReassignedToEntity
	ModVisibility
)

// String returns the detail name.
func (d ModDetail) String() string {
	switch d {
	case ModGeneric:
		return "generic"
	case ModTransform:
		return "transform"
	case ModPrimitiveProps:
		return "primitive-props"
	case ModSurfaceInfo:
		return "surface-info"
	case ModReassignedToEntity:
		return "reassigned-to-entity"
	case ModVisibility:
		return "visibility"
	default:
		return "unknown"
	}
}

// EntDetail is the kind of change to a set of entities.
type EntDetail int

const (
	// EntComponents means the entities' components were added, removed or reordered.
	EntComponents EntDetail = iota

	// EntHierarchy means the entities' position in the tree changed.
	EntHierarchy
)

// String returns the detail name.
func (d EntDetail) String() string {
	if d == EntHierarchy {
		return "hierarchy"
	}
	return "components"
}

// OtherDetail names document-wide state outside the scene tree.
type OtherDetail int

const (
	OtherGrid OtherDetail = iota
	OtherPointFile
	OtherGlobalOptions
)

// String returns the detail name.
func (d OtherDetail) String() string {
	switch d {
	case OtherGrid:
		return "grid"
	case OtherPointFile:
		return "point-file"
	case OtherGlobalOptions:
		return "global-options"
	default:
		return "unknown"
	}
}

// Var is a single named value of an element that changed.
type Var struct {
	Owner scene.Element
	Name  string
	Value any
}

// EventKind identifies a notification for instrumentation.
type EventKind int

const (
	EventSelection EventKind = iota
	EventCreated
	EventDeleted
	EventModified
	EventEntities
	EventVar
	EventGroups
	EventOther
	EventDies
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventSelection:
		return "selection"
	case EventCreated:
		return "created"
	case EventDeleted:
		return "deleted"
	case EventModified:
		return "modified"
	case EventEntities:
		return "entities"
	case EventVar:
		return "var"
	case EventGroups:
		return "groups"
	case EventOther:
		return "other"
	case EventDies:
		return "dies"
	default:
		return "unknown"
	}
}
