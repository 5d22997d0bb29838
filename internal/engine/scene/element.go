package scene

import (
	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/google/uuid"
)

// Element is a selectable member of the scene: an *Entity or a *Primitive.
type Element interface {
	// ID returns the stable identity of the element.
	ID() uuid.UUID

	// Name returns the display name.
	Name() string

	// SetName changes the display name.
	SetName(name string)

	// Group returns the group the element belongs to, or nil.
	Group() *Group

	// SetGroup assigns the element to g. A nil group ungroups it.
	SetGroup(g *Group)

	// Entity returns the entity the element belongs to.
	// For an entity this is the entity itself.
	Entity() *Entity

	// Bounds returns the world-space bounds.
	Bounds() geom.Box

	// Disposed reports whether the element has been disposed.
	Disposed() bool
}

// IsVisible reports whether e is shown, given its group.
func IsVisible(e Element) bool {
	g := e.Group()
	return g == nil || g.Visible
}

// IsSelectable reports whether e can be picked, given its group.
func IsSelectable(e Element) bool {
	g := e.Group()
	return g == nil || (g.Visible && g.Selectable)
}

// Contains reports whether elems holds e.
func Contains(elems []Element, e Element) bool {
	return IndexOf(elems, e) >= 0
}

// IndexOf returns the position of e in elems, or -1.
func IndexOf(elems []Element, e Element) int {
	for i, x := range elems {
		if x == e {
			return i
		}
	}
	return -1
}

// Unique returns elems with duplicates removed, keeping first occurrences.
func Unique(elems []Element) []Element {
	out := make([]Element, 0, len(elems))
	seen := make(map[Element]struct{}, len(elems))
	for _, e := range elems {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// SameSet reports whether a and b hold the same elements, ignoring order.
func SameSet(a, b []Element) bool {
	ua, ub := Unique(a), Unique(b)
	if len(ua) != len(ub) {
		return false
	}
	for _, e := range ua {
		if !Contains(ub, e) {
			return false
		}
	}
	return true
}

// Bounds returns the bounds of each element.
func Bounds(elems []Element) []geom.Box {
	out := make([]geom.Box, len(elems))
	for i, e := range elems {
		out[i] = e.Bounds()
	}
	return out
}
