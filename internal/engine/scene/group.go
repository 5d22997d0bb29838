package scene

import (
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
)

// Group is a user-defined tag shared by elements.
// Its flags control whether members are drawn and whether they can be picked.
type Group struct {
	id uuid.UUID

	Name       string
	Color      colorful.Color
	Visible    bool
	Selectable bool
}

// NewGroup creates a visible, selectable group with a random display color.
func NewGroup(name string) *Group {
	return NewGroupWithColor(name, colorful.FastHappyColor())
}

// NewGroupWithColor creates a visible, selectable group.
func NewGroupWithColor(name string, c colorful.Color) *Group {
	return &Group{
		id:         uuid.New(),
		Name:       name,
		Color:      c,
		Visible:    true,
		Selectable: true,
	}
}

// ID returns the group identity.
func (g *Group) ID() uuid.UUID { return g.id }

// Hex returns the display color as "#rrggbb".
func (g *Group) Hex() string { return g.Color.Clamped().Hex() }

// Members returns the elements of elems that belong to g.
func (g *Group) Members(elems []Element) []Element {
	var out []Element
	for _, e := range elems {
		if e.Group() == g {
			out = append(out, e)
		}
	}
	return out
}
