package command

import (
	"fmt"

	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/dshills/mapforge/internal/observer"
)

// NewGroup adds a group to the document.
type NewGroup struct {
	history.Base
	doc   Document
	group *scene.Group
}

// NewNewGroup creates a command that adds a new group named name.
func NewNewGroup(doc Document, name string) *NewGroup {
	return &NewGroup{
		Base:  history.NewBase(),
		doc:   doc,
		group: scene.NewGroup(name),
	}
}

// Group returns the group the command adds.
func (c *NewGroup) Group() *scene.Group { return c.group }

// Do adds the group.
func (c *NewGroup) Do() bool {
	c.BeginDo("NewGroup")
	c.doc.InsertGroup(c.group, -1)
	c.doc.NotifyGroupsChanged()
	return c.EndDo()
}

// Undo removes the group.
func (c *NewGroup) Undo() {
	c.BeginUndo("NewGroup")
	c.doc.RemoveGroup(c.group)
	c.doc.NotifyGroupsChanged()
	c.EndUndo()
}

// Name returns the command label.
func (c *NewGroup) Name() string { return fmt.Sprintf("New group %q", c.group.Name) }

// AssignGroup puts elements into a group.
type AssignGroup struct {
	history.Base
	doc    Document
	elems  []scene.Element
	group  *scene.Group
	former []*scene.Group
}

// NewAssignGroup puts elems into g. A nil group removes them from their groups.
func NewAssignGroup(doc Document, elems []scene.Element, g *scene.Group) *AssignGroup {
	var moving []scene.Element
	for _, e := range scene.Unique(elems) {
		if e.Group() != g {
			moving = append(moving, e)
		}
	}
	return &AssignGroup{
		Base:   history.NewBase(),
		doc:    doc,
		elems:  moving,
		group:  g,
		former: make([]*scene.Group, len(moving)),
	}
}

// Do assigns the group.
func (c *AssignGroup) Do() bool {
	c.BeginDo("AssignGroup")
	if len(c.elems) == 0 {
		return false
	}
	for i, e := range c.elems {
		c.former[i] = e.Group()
		e.SetGroup(c.group)
	}
	c.notify()
	return c.EndDo()
}

// Undo restores the former groups.
func (c *AssignGroup) Undo() {
	c.BeginUndo("AssignGroup")
	for i, e := range c.elems {
		e.SetGroup(c.former[i])
	}
	c.notify()
	c.EndUndo()
}

func (c *AssignGroup) notify() {
	c.doc.NotifyGroupsChanged()
	c.doc.NotifyModified(c.elems, observer.ModVisibility)
}

// Name returns the command label.
func (c *AssignGroup) Name() string {
	if c.group == nil {
		return "Remove from group"
	}
	return fmt.Sprintf("Assign to group %q", c.group.Name)
}

// groupFlag is the shared implementation of the group flag commands.
type groupFlag struct {
	history.Base
	doc   Document
	group *scene.Group
	value bool
	field func(*scene.Group) *bool
	label string
}

func (c *groupFlag) Do() bool {
	c.BeginDo(c.label)
	f := c.field(c.group)
	if *f == c.value {
		return false
	}
	*f = c.value
	c.notify()
	return c.EndDo()
}

func (c *groupFlag) Undo() {
	c.BeginUndo(c.label)
	*c.field(c.group) = !c.value
	c.notify()
	c.EndUndo()
}

func (c *groupFlag) notify() {
	c.doc.NotifyGroupsChanged()
	c.doc.NotifyModified(c.group.Members(c.doc.AllElements()), observer.ModVisibility)
}

// GroupSetVisibility shows or hides a group.
type GroupSetVisibility struct{ groupFlag }

// NewGroupSetVisibility shows or hides g.
func NewGroupSetVisibility(doc Document, g *scene.Group, visible bool) *GroupSetVisibility {
	return &GroupSetVisibility{groupFlag{
		Base:  history.NewBase(),
		doc:   doc,
		group: g,
		value: visible,
		field: func(g *scene.Group) *bool { return &g.Visible },
		label: "GroupSetVisibility",
	}}
}

// Name returns the command label.
func (c *GroupSetVisibility) Name() string {
	if c.value {
		return fmt.Sprintf("Show group %q", c.group.Name)
	}
	return fmt.Sprintf("Hide group %q", c.group.Name)
}

// GroupSetSelectable locks or unlocks a group.
type GroupSetSelectable struct{ groupFlag }

// NewGroupSetSelectable makes the members of g pickable or not.
func NewGroupSetSelectable(doc Document, g *scene.Group, selectable bool) *GroupSetSelectable {
	return &GroupSetSelectable{groupFlag{
		Base:  history.NewBase(),
		doc:   doc,
		group: g,
		value: selectable,
		field: func(g *scene.Group) *bool { return &g.Selectable },
		label: "GroupSetSelectable",
	}}
}

// Name returns the command label.
func (c *GroupSetSelectable) Name() string {
	if c.value {
		return fmt.Sprintf("Unlock group %q", c.group.Name)
	}
	return fmt.Sprintf("Lock group %q", c.group.Name)
}

// DeleteGroup removes groups and takes their members out of them.
type DeleteGroup struct {
	history.Base
	doc     Document
	groups  []*scene.Group
	indices []int
	members [][]scene.Element
}

// NewDeleteGroup removes groups from the document.
func NewDeleteGroup(doc Document, groups []*scene.Group) *DeleteGroup {
	return &DeleteGroup{
		Base:    history.NewBase(),
		doc:     doc,
		groups:  append([]*scene.Group(nil), groups...),
		indices: make([]int, len(groups)),
		members: make([][]scene.Element, len(groups)),
	}
}

// Do removes the groups.
func (c *DeleteGroup) Do() bool {
	c.BeginDo("DeleteGroup")
	if len(c.groups) == 0 {
		return false
	}

	all := c.doc.AllElements()
	var changed []scene.Element
	for i, g := range c.groups {
		c.members[i] = g.Members(all)
		for _, e := range c.members[i] {
			e.SetGroup(nil)
		}
		changed = append(changed, c.members[i]...)
		c.indices[i] = c.doc.RemoveGroup(g)
	}

	c.doc.NotifyGroupsChanged()
	c.doc.NotifyModified(changed, observer.ModVisibility)
	return c.EndDo()
}

// Undo restores the groups and their members.
func (c *DeleteGroup) Undo() {
	c.BeginUndo("DeleteGroup")

	var changed []scene.Element
	for i := len(c.groups) - 1; i >= 0; i-- {
		g := c.groups[i]
		c.doc.InsertGroup(g, c.indices[i])
		for _, e := range c.members[i] {
			e.SetGroup(g)
		}
		changed = append(changed, c.members[i]...)
	}

	c.doc.NotifyGroupsChanged()
	c.doc.NotifyModified(changed, observer.ModVisibility)
	c.EndUndo()
}

// Name returns the command label.
func (c *DeleteGroup) Name() string {
	if len(c.groups) == 1 {
		return fmt.Sprintf("Delete group %q", c.groups[0].Name)
	}
	return fmt.Sprintf("Delete %d groups", len(c.groups))
}

// HideSelection puts the current selection into a new hidden group and
// purges groups that became empty. The parts are applied as they are built
// and returned as one done macro, or nil if nothing is selected.
func HideSelection(doc Document, name string) *history.Macro {
	sel := doc.Selection()
	if len(sel) == 0 {
		return nil
	}

	ng := NewNewGroup(doc, name)
	ng.Do()
	cmds := []history.Command{ng}

	assign := NewAssignGroup(doc, sel, ng.Group())
	if assign.Do() {
		cmds = append(cmds, assign)
	}

	hide := NewGroupSetVisibility(doc, ng.Group(), false)
	if hide.Do() {
		cmds = append(cmds, hide)
	}

	if abandoned := doc.AbandonedGroups(); len(abandoned) > 0 {
		purge := NewDeleteGroup(doc, abandoned)
		if purge.Do() {
			cmds = append(cmds, purge)
		}
	}

	return history.NewMacro("Hide "+name, cmds)
}
