package outline

import (
	"fmt"
	"strings"

	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// ellipsis marks a clipped label.
const ellipsis = "…"

var (
	styleNormal   = tcell.StyleDefault
	styleCursor   = tcell.StyleDefault.Reverse(true)
	styleSelected = tcell.StyleDefault.Bold(true)
	styleHidden   = tcell.StyleDefault.Dim(true)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

// Render draws the outline onto screen. The last line is the status line.
func (v *View) Render(screen tcell.Screen) {
	v.refresh()
	screen.Clear()
	width, height := screen.Size()
	if width <= 0 || height <= 0 {
		return
	}

	listHeight := height - 1
	v.scroll(listHeight)

	for y := 0; y < listHeight && v.top+y < len(v.rows); y++ {
		i := v.top + y
		v.drawRow(screen, y, width, v.rows[i], i == v.cursor)
	}

	v.drawStatus(screen, height-1, width)
	v.dirty = false
}

// scroll keeps the cursor inside a list of the given height.
func (v *View) scroll(height int) {
	if height <= 0 {
		v.top = v.cursor
		return
	}
	if v.cursor < v.top {
		v.top = v.cursor
	}
	if v.cursor >= v.top+height {
		v.top = v.cursor - height + 1
	}
	v.top = max(v.top, 0)
}

func (v *View) drawRow(screen tcell.Screen, y, width int, r row, atCursor bool) {
	style := styleNormal
	if !scene.IsVisible(r.elem) {
		style = styleHidden
	}
	selected := v.doc.IsSelected(r.elem)
	if selected {
		style = styleSelected
	}
	if atCursor {
		style = styleCursor
	}

	marker := "  "
	if selected {
		marker = "* "
	}
	x := drawText(screen, 0, y, width, marker, style)
	x = drawText(screen, x, y, width, strings.Repeat(" ", r.depth*v.opts.Indent), style)

	if g := r.elem.Group(); g != nil {
		x = drawText(screen, x, y, width, "■ ", style.Foreground(tcellColor(g.Color)))
	}
	drawText(screen, x, y, width, label(r.elem), style)
}

func (v *View) drawStatus(screen tcell.Screen, y, width int) {
	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, styleStatus)
	}
	text := v.status
	if text == "" {
		text = v.summary()
	}
	drawText(screen, 0, y, width, text, styleStatus)
}

// summary describes the document for the status line.
func (v *View) summary() string {
	if v.dead {
		return "document closed"
	}
	h := v.doc.History()
	s := fmt.Sprintf("%s | %d selected", v.doc.Title(), len(v.doc.Selection()))
	if info, ok := h.PeekUndo(); ok {
		s += " | undo: " + info.Name
	}
	if info, ok := h.PeekRedo(); ok {
		s += " | redo: " + info.Name
	}
	return s
}

// label returns the text of an element row.
func label(e scene.Element) string {
	switch el := e.(type) {
	case *scene.Primitive:
		return fmt.Sprintf("%s (%s)", el.Name(), el.Kind())
	default:
		return e.Name()
	}
}

// drawText draws s from x up to maxX, one grapheme cluster per cell run,
// and returns the column after it. A label that does not fit ends in an
// ellipsis.
func drawText(screen tcell.Screen, x, y, maxX int, s string, style tcell.Style) int {
	if uniseg.StringWidth(s) > maxX-x {
		s = clip(s, maxX-x)
	}
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		runes := gr.Runes()
		w := gr.Width()
		if w == 0 {
			continue
		}
		if x+w > maxX {
			break
		}
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}

// clip shortens s to at most width columns, ending in an ellipsis.
func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if width == 1 {
		return ellipsis
	}
	var b strings.Builder
	used := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		w := gr.Width()
		if used+w > width-1 {
			break
		}
		b.WriteString(gr.Str())
		used += w
	}
	b.WriteString(ellipsis)
	return b.String()
}

// tcellColor converts a group color.
func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
