package command

import (
	"fmt"

	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
)

// Select changes the selection.
type Select struct {
	history.Base
	doc  Document
	name string
	old  []scene.Element
	next []scene.Element
}

func newSelect(doc Document, name string, next []scene.Element) *Select {
	old := doc.Selection()
	next = scene.Unique(next)
	visible := ComputeHistoryVisibility(old, next, doc.MinorChangeThreshold())
	return &Select{
		Base: history.NewBase(
			history.WithShowInHistory(visible),
			history.WithSuggestsSave(false),
		),
		doc:  doc,
		name: name,
		old:  old,
		next: next,
	}
}

// SelectClear empties the selection.
func SelectClear(doc Document) *Select {
	return newSelect(doc, "Clear selection", nil)
}

// SelectAdd adds elems to the selection.
func SelectAdd(doc Document, elems []scene.Element) *Select {
	next := doc.Selection()
	for _, e := range elems {
		if !scene.Contains(next, e) {
			next = append(next, e)
		}
	}
	return newSelect(doc, fmt.Sprintf("Select %d %s", len(elems), plural(len(elems), "element", "elements")), next)
}

// SelectRemove removes elems from the selection. Elements that are not
// selected are ignored.
func SelectRemove(doc Document, elems []scene.Element) *Select {
	var next []scene.Element
	for _, e := range doc.Selection() {
		if !scene.Contains(elems, e) {
			next = append(next, e)
		}
	}
	return newSelect(doc, fmt.Sprintf("Unselect %d %s", len(elems), plural(len(elems), "element", "elements")), next)
}

// SelectSet replaces the selection with elems.
func SelectSet(doc Document, elems []scene.Element) *Select {
	return newSelect(doc, fmt.Sprintf("Select %d %s", len(elems), plural(len(elems), "element", "elements")), elems)
}

// Old returns the selection before the change.
func (c *Select) Old() []scene.Element { return append([]scene.Element(nil), c.old...) }

// New returns the selection after the change.
func (c *Select) New() []scene.Element { return append([]scene.Element(nil), c.next...) }

// CanDo reports whether the change is not a no-op.
func (c *Select) CanDo() bool {
	if len(c.old) == 0 && len(c.next) == 0 {
		return false
	}
	return !scene.SameSet(c.old, c.next)
}

// Do applies the new selection.
func (c *Select) Do() bool {
	c.BeginDo("Select")
	if !c.CanDo() {
		return false
	}
	c.doc.SetSelection(c.next)
	c.doc.NotifySelectionChanged(c.old, c.next)
	return c.EndDo()
}

// Undo restores the old selection.
func (c *Select) Undo() {
	c.BeginUndo("Select")
	c.doc.SetSelection(c.old)
	c.doc.NotifySelectionChanged(c.next, c.old)
	c.EndUndo()
}

// Name returns the command label.
func (c *Select) Name() string { return c.name }

// ComputeHistoryVisibility decides whether a selection change is shown in
// the history. It counts the distinct clickable units between old and next,
// where all members of one group count once, and reports whether the count
// exceeds threshold.
func ComputeHistoryVisibility(old, next []scene.Element, threshold int) bool {
	units := make(map[any]struct{})
	add := func(e scene.Element) {
		if g := e.Group(); g != nil {
			units[g] = struct{}{}
			return
		}
		units[e] = struct{}{}
	}
	for _, e := range old {
		if !scene.Contains(next, e) {
			add(e)
		}
	}
	for _, e := range next {
		if !scene.Contains(old, e) {
			add(e)
		}
	}
	return len(units) > threshold
}
