package document

import (
	"fmt"

	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
)

// Groups returns a copy of the group list.
func (d *Document) Groups() []*scene.Group {
	return append([]*scene.Group(nil), d.groups...)
}

// GroupIndex returns the position of g, or -1.
func (d *Document) GroupIndex(g *scene.Group) int {
	for i, x := range d.groups {
		if x == g {
			return i
		}
	}
	return -1
}

// InsertGroup adds g at index. An index outside the list appends.
func (d *Document) InsertGroup(g *scene.Group, index int) {
	if d.GroupIndex(g) >= 0 {
		history.Violation("Document.InsertGroup", fmt.Errorf("group %q already listed", g.Name))
	}
	if index < 0 || index > len(d.groups) {
		index = len(d.groups)
	}
	d.groups = append(d.groups, nil)
	copy(d.groups[index+1:], d.groups[index:])
	d.groups[index] = g
}

// RemoveGroup removes g and returns the index it had.
func (d *Document) RemoveGroup(g *scene.Group) int {
	i := d.GroupIndex(g)
	if i < 0 {
		history.Violation("Document.RemoveGroup", fmt.Errorf("group %q not listed", g.Name))
	}
	d.groups = append(d.groups[:i], d.groups[i+1:]...)
	return i
}

// FindGroup returns the first group with the given name.
func (d *Document) FindGroup(name string) (*scene.Group, bool) {
	for _, g := range d.groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// AbandonedGroups returns the groups no element of the tree belongs to.
func (d *Document) AbandonedGroups() []*scene.Group {
	used := make(map[*scene.Group]struct{})
	for _, e := range d.AllElements() {
		if g := e.Group(); g != nil {
			used[g] = struct{}{}
		}
	}
	var out []*scene.Group
	for _, g := range d.groups {
		if _, ok := used[g]; !ok {
			out = append(out, g)
		}
	}
	return out
}
