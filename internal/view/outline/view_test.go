package outline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dshills/mapforge/internal/command"
	"github.com/dshills/mapforge/internal/document"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/gdamore/tcell/v2"
)

type fixture struct {
	doc    *document.Document
	door   *scene.Entity
	frame  *scene.Primitive
	crate  *scene.Entity
	view   *View
	screen tcell.SimulationScreen
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	doc := document.New(document.WithName("map"))
	door := scene.NewEntity("door")
	frame := scene.NewPrimitive(scene.KindBrush, "frame")
	crate := scene.NewEntity("crate")
	doc.Insert(door, doc.Root(), -1)
	doc.InsertPrimitive(frame, door, -1)
	doc.Insert(crate, doc.Root(), -1)

	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	screen.SetSize(40, 8)
	t.Cleanup(screen.Fini)

	v := New(doc, opts)
	t.Cleanup(v.Close)
	return &fixture{doc: doc, door: door, frame: frame, crate: crate, view: v, screen: screen}
}

func (f *fixture) render() {
	f.view.Render(f.screen)
	f.screen.Show()
}

// line returns row y of the screen without trailing blanks.
func (f *fixture) line(y int) string {
	cells, w, _ := f.screen.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(string(c.Runes))
	}
	return strings.TrimRight(b.String(), " ")
}

func (f *fixture) key(r rune) Action {
	return f.view.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func (f *fixture) special(k tcell.Key) Action {
	return f.view.HandleKey(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func TestRenderTree(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.render()

	want := []string{
		"  map",
		"    door",
		"      frame (brush)",
		"    crate",
	}
	for y, w := range want {
		if got := f.line(y); got != w {
			t.Errorf("line %d = %q, want %q", y, got, w)
		}
	}
	if status := f.line(7); !strings.HasPrefix(status, "map | 0 selected") {
		t.Errorf("status = %q", status)
	}
	if f.view.Dirty() {
		t.Error("view dirty after Render")
	}
}

func TestRenderOptions(t *testing.T) {
	f := newFixture(t, Options{ShowPrimitives: false, Indent: 4})
	f.render()

	if got := f.line(1); got != "      door" {
		t.Errorf("line 1 = %q", got)
	}
	if got := f.line(2); got != "      crate" {
		t.Errorf("line 2 = %q", got)
	}

	f.view.SetOptions(Options{ShowPrimitives: true, Indent: 0})
	if f.view.Options().Indent != DefaultIndent {
		t.Errorf("Indent = %d, want default", f.view.Options().Indent)
	}
	f.render()
	if got := f.line(2); got != "      frame (brush)" {
		t.Errorf("line 2 = %q", got)
	}
}

func TestToggleSelection(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	f.special(tcell.KeyDown)
	if f.view.Cursor() != f.door {
		t.Fatalf("Cursor() = %v, want door", f.view.Cursor())
	}
	f.key(' ')
	if !f.doc.IsSelected(f.door) {
		t.Fatal("door not selected")
	}
	f.render()
	if got := f.line(1); got != "*   door" {
		t.Errorf("line 1 = %q", got)
	}

	f.key(' ')
	if f.doc.IsSelected(f.door) {
		t.Fatal("door still selected")
	}
	f.key('u')
	if !f.doc.IsSelected(f.door) {
		t.Error("undo did not restore the selection")
	}
	f.key('r')
	if f.doc.IsSelected(f.door) {
		t.Error("redo did not clear the selection")
	}
}

func TestCursorMovement(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	f.special(tcell.KeyUp)
	if f.view.Cursor() != f.doc.Root() {
		t.Error("cursor moved above the first row")
	}
	f.special(tcell.KeyEnd)
	if f.view.Cursor() != f.crate {
		t.Errorf("Cursor() after End = %v", f.view.Cursor())
	}
	f.key('j')
	if f.view.Cursor() != f.crate {
		t.Error("cursor moved below the last row")
	}
	f.key('k')
	if f.view.Cursor() != f.frame {
		t.Errorf("Cursor() after k = %v", f.view.Cursor())
	}
	f.special(tcell.KeyHome)
	if f.view.Cursor() != f.doc.Root() {
		t.Error("Home did not reach the first row")
	}
}

func TestCursorFollowsElement(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.special(tcell.KeyEnd)

	lamp := scene.NewEntity("lamp")
	f.doc.Submit(command.NewAddEntities(f.doc, []*scene.Entity{lamp}, f.doc.Root(), 0, false))
	if !f.view.Dirty() {
		t.Fatal("view not dirty after a change")
	}
	if f.view.Cursor() != f.crate {
		t.Errorf("Cursor() = %v, want crate", f.view.Cursor())
	}
}

func TestDeleteKey(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	f.key('d')
	if f.view.Status() != "nothing to delete" {
		t.Errorf("Status() = %q", f.view.Status())
	}

	f.special(tcell.KeyEnd)
	f.key(' ')
	f.key('d')
	if f.doc.Contains(f.crate) {
		t.Fatal("crate not deleted")
	}
	f.render()
	if got := f.line(3); got != "" {
		t.Errorf("line 3 = %q, want empty", got)
	}
	if status := f.line(7); !strings.Contains(status, "undo: Delete") {
		t.Errorf("status = %q", status)
	}

	f.key('u')
	if !f.doc.Contains(f.crate) {
		t.Error("undo did not restore the crate")
	}
}

func TestHideKey(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	f.key('h')
	if f.view.Status() != "nothing selected" {
		t.Errorf("Status() = %q", f.view.Status())
	}

	f.special(tcell.KeyDown)
	f.key(' ')
	f.key('h')
	g := f.door.Group()
	if g == nil || g.Visible {
		t.Fatalf("door group = %+v, want a hidden group", g)
	}

	f.render()
	cells, w, _ := f.screen.GetContents()
	mark := cells[1*w+4]
	if string(mark.Runes) != "■" {
		t.Fatalf("group marker = %q", string(mark.Runes))
	}
	fg, _, _ := mark.Style.Decompose()
	if fg != tcellColor(g.Color) {
		t.Errorf("marker color = %v, want %v", fg, tcellColor(g.Color))
	}
}

func TestHistoryStatus(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	f.key('u')
	if f.view.Status() != "nothing to undo" {
		t.Errorf("Status() = %q", f.view.Status())
	}
	f.key('r')
	if f.view.Status() != "nothing to redo" {
		t.Errorf("Status() = %q", f.view.Status())
	}
	f.render()
	if got := f.line(7); got != "nothing to redo" {
		t.Errorf("status = %q", got)
	}
	f.special(tcell.KeyDown)
	if f.view.Status() != "" {
		t.Error("status not cleared by the next key")
	}
}

func TestQuitKeys(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	if f.key('q') != ActionQuit {
		t.Error("q did not quit")
	}
	if f.special(tcell.KeyEscape) != ActionQuit {
		t.Error("Escape did not quit")
	}
	if f.key('x') != ActionNone {
		t.Error("x was not ignored")
	}
}

func TestDocumentClosed(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.doc.Close()

	if !f.view.Dead() {
		t.Fatal("Dead() = false after close")
	}
	if f.key('j') != ActionQuit {
		t.Error("keys do not quit a dead view")
	}
	f.render()
	if got := f.line(7); got != "document closed" {
		t.Errorf("status = %q", got)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"abcdefgh", 6, "abcde…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
		{"日本語の名前", 5, "日本…"},
	}
	for _, tt := range tests {
		if got := clip(tt.in, tt.width); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestRenderClipsLongNames(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.screen.SetSize(12, 4)
	f.door.SetName("a-very-long-door-name")
	f.view.SetOptions(f.view.Options())
	f.render()

	if got := f.line(1); got != "    a-very-…" {
		t.Errorf("line 1 = %q", got)
	}
}

func TestLoop(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	loop := NewLoop(f.screen, f.view)

	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	ran := make(chan struct{})
	if !loop.Post(func() {
		f.view.SetOptions(Options{ShowPrimitives: false, Indent: 2})
		close(ran)
	}) {
		t.Fatal("Post() = false")
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted function did not run")
	}

	f.screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after q")
	}
	if f.view.Options().ShowPrimitives {
		t.Error("posted options not applied")
	}
}

func TestLoopContext(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	loop := NewLoop(f.screen, f.view)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := loop.Run(ctx); err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
