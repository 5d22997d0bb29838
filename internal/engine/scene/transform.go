package scene

import (
	"sort"

	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/go-gl/mathgl/mgl32"
)

// EntityState is the parent-space transform of an entity.
type EntityState struct {
	Origin      mgl32.Vec3
	Orientation mgl32.Quat
}

// State captures the parent-space transform of e.
func (e *Entity) State() EntityState {
	return EntityState{Origin: e.origin, Orientation: e.orient}
}

// Restore sets the parent-space transform of e back to s.
func (e *Entity) Restore(s EntityState) {
	e.origin = s.Origin
	e.orient = s.Orientation
}

// ApplyTrafo applies t in world space to every element of elems.
//
// The world-space state of all entities is captured before any of them is
// changed, so an entity listed together with its ancestor ends up exactly
// where t maps its old world position.
func ApplyTrafo(elems []Element, t geom.Trafo) {
	ents, prims := Split(Unique(elems))

	type worldState struct {
		ent    *Entity
		origin mgl32.Vec3
		orient mgl32.Quat
	}
	states := make([]worldState, 0, len(ents))
	for _, ent := range ents {
		states = append(states, worldState{
			ent:    ent,
			origin: t.Point(ent.OriginWS()),
			orient: t.Orientation(ent.OrientationWS()),
		})
	}

	// Parents must be updated before their children read them.
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].ent.Depth() < states[j].ent.Depth()
	})
	for _, s := range states {
		s.ent.SetOriginWS(s.origin)
		s.ent.SetOrientationWS(s.orient)
	}

	for _, p := range prims {
		p.Transform(t)
	}
}
