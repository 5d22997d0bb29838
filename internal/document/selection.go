package document

import (
	"github.com/dshills/mapforge/internal/engine/scene"
)

// Selection returns a copy of the selected elements.
func (d *Document) Selection() []scene.Element {
	return append([]scene.Element(nil), d.selection...)
}

// SetSelection replaces the selection without notifying observers.
// Duplicates are dropped.
//
// The paste parent follows the last selected element: its entity, bubbled up
// through selected ancestors. An empty selection keeps the paste parent.
func (d *Document) SetSelection(sel []scene.Element) {
	d.selection = scene.Unique(sel)
	if len(d.selection) == 0 {
		return
	}

	last := d.selection[len(d.selection)-1]
	ent := last.Entity()
	if ent == nil || !d.Contains(ent) {
		return
	}
	for ent.Parent() != nil && d.IsSelected(ent.Parent()) {
		ent = ent.Parent()
	}
	d.pasteParent = ent
}

// IsSelected reports whether e is selected.
func (d *Document) IsSelected(e scene.Element) bool {
	return scene.Contains(d.selection, e)
}

// SelectedEntities returns the selected entities in selection order.
func (d *Document) SelectedEntities() []*scene.Entity {
	ents, _ := scene.Split(d.selection)
	return ents
}

// PasteParent returns the entity new elements are inserted into by default.
func (d *Document) PasteParent() *scene.Entity {
	if d.pasteParent == nil || !d.Contains(d.pasteParent) {
		return d.world
	}
	return d.pasteParent
}
