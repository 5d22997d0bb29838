package scene

import (
	"maps"
	"sort"

	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// PrimitiveKind names a kind of leaf geometry.
type PrimitiveKind string

// Primitive kinds known to the editor.
const (
	KindBrush   PrimitiveKind = "brush"
	KindPatch   PrimitiveKind = "patch"
	KindTerrain PrimitiveKind = "terrain"
	KindModel   PrimitiveKind = "model"
	KindPlant   PrimitiveKind = "plant"
)

// Primitive is a piece of geometry owned by exactly one entity.
// Its geometry is stored in world space.
type Primitive struct {
	id    uuid.UUID
	kind  PrimitiveKind
	name  string
	group *Group
	owner *Entity

	origin mgl32.Vec3
	points []mgl32.Vec3
	props  map[string]string

	disposed bool
}

// PrimitiveState is the geometry of a primitive at one point in time.
type PrimitiveState struct {
	Origin mgl32.Vec3
	Points []mgl32.Vec3
}

// NewPrimitive creates a detached primitive. The origin is the center of
// the points.
func NewPrimitive(kind PrimitiveKind, name string, points ...mgl32.Vec3) *Primitive {
	p := &Primitive{
		id:     uuid.New(),
		kind:   kind,
		name:   name,
		points: append([]mgl32.Vec3(nil), points...),
		props:  make(map[string]string),
	}
	if len(points) > 0 {
		p.origin = geom.BoxAround(points...).Center()
	}
	return p
}

// ID returns the primitive identity.
func (p *Primitive) ID() uuid.UUID { return p.id }

// Kind returns the primitive kind.
func (p *Primitive) Kind() PrimitiveKind { return p.kind }

// Name returns the primitive name.
func (p *Primitive) Name() string { return p.name }

// SetName renames the primitive.
func (p *Primitive) SetName(name string) { p.name = name }

// Group returns the primitive's group, or nil.
func (p *Primitive) Group() *Group { return p.group }

// SetGroup assigns the primitive to g.
func (p *Primitive) SetGroup(g *Group) { p.group = g }

// Entity returns the owning entity, or nil when detached.
func (p *Primitive) Entity() *Entity { return p.owner }

// Disposed reports whether p has been disposed.
func (p *Primitive) Disposed() bool { return p.disposed }

// Origin returns the world-space origin.
func (p *Primitive) Origin() mgl32.Vec3 { return p.origin }

// Points returns a copy of the world-space points.
func (p *Primitive) Points() []mgl32.Vec3 {
	return append([]mgl32.Vec3(nil), p.points...)
}

// Bounds returns the box around the origin and all points.
func (p *Primitive) Bounds() geom.Box {
	return geom.BoxAround(p.points...).Extend(p.origin)
}

// Property returns the value stored under key.
func (p *Primitive) Property(key string) (string, bool) {
	v, ok := p.props[key]
	return v, ok
}

// SetProperty stores a property. An empty value deletes the key.
func (p *Primitive) SetProperty(key, value string) {
	if value == "" {
		delete(p.props, key)
		return
	}
	p.props[key] = value
}

// PropertyKeys returns the property keys in sorted order.
func (p *Primitive) PropertyKeys() []string {
	keys := make([]string, 0, len(p.props))
	for k := range p.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// State captures the current geometry.
func (p *Primitive) State() PrimitiveState {
	return PrimitiveState{Origin: p.origin, Points: p.Points()}
}

// Restore sets the geometry back to s.
func (p *Primitive) Restore(s PrimitiveState) {
	p.origin = s.Origin
	p.points = append([]mgl32.Vec3(nil), s.Points...)
}

// Transform applies t to the geometry.
func (p *Primitive) Transform(t geom.Trafo) {
	p.origin = t.Point(p.origin)
	for i, v := range p.points {
		p.points[i] = t.Point(v)
	}
}

// Clone returns a detached copy of p with a fresh identity.
func (p *Primitive) Clone() *Primitive {
	return &Primitive{
		id:     uuid.New(),
		kind:   p.kind,
		name:   p.name,
		group:  p.group,
		origin: p.origin,
		points: p.Points(),
		props:  maps.Clone(p.props),
	}
}

// Dispose marks a detached primitive as disposed.
func (p *Primitive) Dispose() error {
	if p.owner != nil {
		return ErrNotDetached
	}
	p.disposed = true
	return nil
}
