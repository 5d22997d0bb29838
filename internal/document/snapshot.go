package document

import (
	"fmt"
	"io"
	"sort"

	"github.com/dshills/mapforge/internal/engine/scene"
	"gopkg.in/yaml.v3"
)

// Snapshot is a value copy of the document state. Two snapshots of the same
// state compare equal.
type Snapshot struct {
	Name      string          `yaml:"name"`
	Root      EntitySnapshot  `yaml:"root"`
	Selection []string        `yaml:"selection,omitempty"`
	Groups    []GroupSnapshot `yaml:"groups,omitempty"`
}

// EntitySnapshot describes one entity and its subtree.
type EntitySnapshot struct {
	ID          string              `yaml:"id"`
	Name        string              `yaml:"name"`
	Group       string              `yaml:"group,omitempty"`
	Origin      [3]float32          `yaml:"origin,flow"`
	Orientation [4]float32          `yaml:"orientation,flow"`
	Primitives  []PrimitiveSnapshot `yaml:"primitives,omitempty"`
	Children    []EntitySnapshot    `yaml:"children,omitempty"`
}

// PrimitiveSnapshot describes one primitive.
type PrimitiveSnapshot struct {
	ID         string            `yaml:"id"`
	Kind       string            `yaml:"kind"`
	Name       string            `yaml:"name"`
	Group      string            `yaml:"group,omitempty"`
	Origin     [3]float32        `yaml:"origin,flow"`
	Points     [][3]float32      `yaml:"points,flow,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// GroupSnapshot describes one group.
type GroupSnapshot struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Color      string `yaml:"color"`
	Visible    bool   `yaml:"visible"`
	Selectable bool   `yaml:"selectable"`
}

// Snapshot captures the current state. The selection is sorted because its
// order carries no meaning.
func (d *Document) Snapshot() Snapshot {
	s := Snapshot{
		Name: d.name,
		Root: snapshotEntity(d.world),
	}
	for _, e := range d.selection {
		s.Selection = append(s.Selection, e.ID().String())
	}
	sort.Strings(s.Selection)
	for _, g := range d.groups {
		s.Groups = append(s.Groups, GroupSnapshot{
			ID:         g.ID().String(),
			Name:       g.Name,
			Color:      g.Hex(),
			Visible:    g.Visible,
			Selectable: g.Selectable,
		})
	}
	return s
}

func snapshotEntity(e *scene.Entity) EntitySnapshot {
	q := e.OrientationPS()
	s := EntitySnapshot{
		ID:          e.ID().String(),
		Name:        e.Name(),
		Group:       groupID(e.Group()),
		Origin:      e.OriginPS(),
		Orientation: [4]float32{q.W, q.V.X(), q.V.Y(), q.V.Z()},
	}
	for _, p := range e.Primitives() {
		s.Primitives = append(s.Primitives, snapshotPrimitive(p))
	}
	for _, c := range e.Children() {
		s.Children = append(s.Children, snapshotEntity(c))
	}
	return s
}

func snapshotPrimitive(p *scene.Primitive) PrimitiveSnapshot {
	s := PrimitiveSnapshot{
		ID:     p.ID().String(),
		Kind:   string(p.Kind()),
		Name:   p.Name(),
		Group:  groupID(p.Group()),
		Origin: p.Origin(),
	}
	for _, v := range p.Points() {
		s.Points = append(s.Points, v)
	}
	if keys := p.PropertyKeys(); len(keys) > 0 {
		s.Properties = make(map[string]string, len(keys))
		for _, k := range keys {
			s.Properties[k], _ = p.Property(k)
		}
	}
	return s
}

func groupID(g *scene.Group) string {
	if g == nil {
		return ""
	}
	return g.ID().String()
}

// Dump writes the snapshot as YAML.
func (d *Document) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d.Snapshot()); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}
