package outline

import (
	"errors"

	"github.com/dshills/mapforge/internal/command"
	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/gdamore/tcell/v2"
)

// Action is what the caller should do after a key.
type Action int

const (
	// ActionNone means the key was handled or ignored.
	ActionNone Action = iota

	// ActionQuit asks the caller to close the view.
	ActionQuit
)

// HandleKey applies a key press.
func (v *View) HandleKey(ev *tcell.EventKey) Action {
	v.status = ""
	if v.dead {
		return ActionQuit
	}
	v.refresh()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyUp:
		v.move(-1)
	case tcell.KeyDown:
		v.move(1)
	case tcell.KeyHome:
		v.cursor = 0
	case tcell.KeyEnd:
		v.cursor = max(len(v.rows)-1, 0)
	case tcell.KeyRune:
		return v.handleRune(ev.Rune())
	}
	return ActionNone
}

func (v *View) handleRune(r rune) Action {
	switch r {
	case 'q':
		return ActionQuit
	case 'k':
		v.move(-1)
	case 'j':
		v.move(1)
	case ' ':
		v.toggle()
	case 'd':
		v.submit(command.NewDelete(v.doc, v.doc.Selection()), "nothing to delete")
	case 'h':
		if m := command.HideSelection(v.doc, "hidden"); m != nil {
			v.submit(m, "")
		} else {
			v.status = "nothing selected"
		}
	case 'u':
		v.historyStep(v.doc.Undo)
	case 'r':
		v.historyStep(v.doc.Redo)
	}
	return ActionNone
}

func (v *View) move(delta int) {
	if len(v.rows) == 0 {
		return
	}
	v.cursor = min(max(v.cursor+delta, 0), len(v.rows)-1)
	v.dirty = true
}

// toggle adds the element under the cursor to the selection or removes it.
func (v *View) toggle() {
	e := v.Cursor()
	if e == nil {
		return
	}
	elems := []scene.Element{e}
	if v.doc.IsSelected(e) {
		v.submit(command.SelectRemove(v.doc, elems), "")
		return
	}
	if !scene.IsSelectable(e) {
		v.status = "not selectable"
		return
	}
	v.submit(command.SelectAdd(v.doc, elems), "")
}

// submit hands cmd to the document. noop is shown when it changes nothing.
func (v *View) submit(cmd history.Command, noop string) {
	if !v.doc.Submit(cmd) && noop != "" {
		v.status = noop
	}
	v.dirty = true
}

func (v *View) historyStep(step func() error) {
	if err := step(); err != nil {
		switch {
		case errors.Is(err, history.ErrNothingToUndo):
			v.status = "nothing to undo"
		case errors.Is(err, history.ErrNothingToRedo):
			v.status = "nothing to redo"
		default:
			v.status = err.Error()
		}
	}
	v.dirty = true
}
