package lua

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/mapforge/internal/document"
	"github.com/dshills/mapforge/internal/engine/scene"
	glua "github.com/yuin/gopher-lua"
)

func newRunner(t *testing.T, opts ...StateOption) (*document.Document, *Runner) {
	t.Helper()
	doc := document.New(document.WithName("map"))
	r := NewRunner(doc, opts...)
	t.Cleanup(r.Close)
	return doc, r
}

func run(t *testing.T, r *Runner, code string) {
	t.Helper()
	if err := r.Run(context.Background(), "test.lua", code); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func findOne(t *testing.T, doc *document.Document, name string) scene.Element {
	t.Helper()
	found := doc.FindByName(name)
	if len(found) != 1 {
		t.Fatalf("FindByName(%q) found %d elements", name, len(found))
	}
	return found[0]
}

func TestRunnerBuildsScene(t *testing.T) {
	doc, r := newRunner(t)
	before := doc.Snapshot()

	run(t, r, `
		local door = doc.entity("door", doc.world(), {64, 0, 0})
		local frame = doc.primitive(door, "brush", "frame", {0, 0, 0}, {8, 0, 96})
		assert(door:kind() == "entity")
		assert(frame:kind() == "brush")
		assert(frame:parent() == door)
		assert(door:parent() == doc.world())
		assert(#door:primitives() == 1)
		assert(door:origin().x == 64)
	`)

	door, ok := findOne(t, doc, "door").(*scene.Entity)
	if !ok {
		t.Fatal("door is not an entity")
	}
	if door.Parent() != doc.Root() {
		t.Error("door is not a child of the world")
	}
	if len(door.Primitives()) != 1 {
		t.Errorf("door has %d primitives", len(door.Primitives()))
	}
	if doc.History().UndoCount() != 2 {
		t.Errorf("UndoCount() = %d, want 2", doc.History().UndoCount())
	}

	run(t, r, `assert(doc.undo()); assert(doc.undo()); assert(not doc.undo())`)
	if !reflect.DeepEqual(before, doc.Snapshot()) {
		t.Error("undo did not restore the document")
	}
}

func TestRunnerSelectAndDelete(t *testing.T) {
	doc, r := newRunner(t)

	run(t, r, `
		local a = doc.entity("a")
		local b = doc.entity("b")
		assert(doc.select(a, b))
		assert(#doc.selection() == 2)
		assert(a:selected())
		assert(doc.select_remove("b"))
		assert(not b:selected())
		assert(doc.select_add({b}))
		assert(doc.delete_selection())
		assert(#doc.selection() == 0)
	`)
	if len(doc.FindByName("a")) != 0 || len(doc.FindByName("b")) != 0 {
		t.Fatal("delete_selection left elements behind")
	}

	run(t, r, `assert(doc.undo()); assert(#doc.selection() == 2)`)
	findOne(t, doc, "a")
	findOne(t, doc, "b")

	run(t, r, `assert(doc.clear_selection()); assert(not doc.clear_selection())`)
	if len(doc.Selection()) != 0 {
		t.Error("clear_selection left a selection")
	}
}

func TestRunnerDeletedHandle(t *testing.T) {
	_, r := newRunner(t)

	err := r.Run(context.Background(), "test.lua", `
		local a = doc.entity("a")
		doc.delete(a)
		doc.select(a)
	`)
	if !errors.Is(err, ErrUnknownElement) {
		t.Fatalf("Run() error = %v, want ErrUnknownElement", err)
	}
}

func TestRunnerReparent(t *testing.T) {
	doc, r := newRunner(t)

	run(t, r, `
		local a = doc.entity("a")
		local b = doc.entity("b", a)
		local c = doc.entity("c")
		local ok, msg = doc.reparent(a, b)
		assert(not ok)
		assert(string.find(msg, "own subtree", 1, true))
		assert(doc.reparent(c, a, 1))
		assert(a:children()[1] == c)
		assert(c:parent() == a)
	`)

	a := findOne(t, doc, "a").(*scene.Entity)
	if a.ChildCount() != 2 {
		t.Errorf("a has %d children, want 2", a.ChildCount())
	}
}

func TestRunnerMoveAndClone(t *testing.T) {
	doc, r := newRunner(t)

	run(t, r, `
		local crate = doc.entity("crate")
		doc.primitive(crate, "model", "body", {1, 1, 1})
		doc.select(crate)
		assert(doc.move_selection({x = 10}))
		assert(crate:origin().x == 10)

		clones = doc.clone_selection({0, 5, 0})
		assert(#clones == 2)
		local clone = clones[1]
		assert(clone ~= crate)
		assert(clone:name() == "crate")
		assert(clone:selected())
		assert(not crate:selected())
		local o = clone:origin()
		assert(o.x == 10 and o.y == 5 and o.z == 0)
	`)

	if n := len(doc.FindByName("crate")); n != 2 {
		t.Errorf("found %d crates, want 2", n)
	}
	if doc.History().UndoCount() != 5 {
		t.Errorf("UndoCount() = %d, want 5", doc.History().UndoCount())
	}

	run(t, r, `doc.clear_selection(); assert(doc.clone_selection({1, 0, 0}) == nil)`)
}

func TestRunnerRename(t *testing.T) {
	doc, r := newRunner(t)

	run(t, r, `
		local e = doc.entity("lamp")
		assert(doc.rename(e, "torch"))
		assert(not doc.rename("torch", "torch"))
	`)
	findOne(t, doc, "torch")
	if len(doc.FindByName("lamp")) != 0 {
		t.Error("old name still present")
	}
}

func TestRunnerFind(t *testing.T) {
	_, r := newRunner(t)

	run(t, r, `
		local door = doc.entity("door")
		assert(doc.find("DOOR") == door)
		assert(doc.find(door:id()) == door)
		assert(doc.get("door") == door)

		local e, msg = doc.find("dor")
		assert(e == nil)
		assert(string.find(msg, 'did you mean "door"', 1, true), msg)

		local _, far = doc.find("zzzzzzzzzz")
		assert(not string.find(far, "did you mean", 1, true), far)
	`)

	err := r.Run(context.Background(), "test.lua", `doc.get("dor")`)
	if !errors.Is(err, ErrUnknownElement) {
		t.Fatalf("Run() error = %v, want ErrUnknownElement", err)
	}
	var se *ScriptError
	if !errors.As(err, &se) || !strings.Contains(se.Message, "did you mean") {
		t.Errorf("error = %v, want a suggestion", err)
	}
}

func TestRunnerPrimitiveKind(t *testing.T) {
	_, r := newRunner(t)

	err := r.Run(context.Background(), "test.lua", `doc.primitive(doc.world(), "teapot", "x")`)
	if err == nil || !strings.Contains(err.Error(), "unknown primitive kind") {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRunnerObserver(t *testing.T) {
	doc, r := newRunner(t)

	run(t, r, `
		created = {}
		off = doc.on("created", function(event, p)
			assert(event == "created")
			created[#created + 1] = p.entities[1]:name()
		end)
		doc.entity("a")
	`)
	if r.Observers() != 1 {
		t.Fatalf("Observers() = %d, want 1", r.Observers())
	}

	// Observers keep running after the script ends.
	if err := doc.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := doc.Redo(); err != nil {
		t.Fatal(err)
	}

	run(t, r, `
		off()
		doc.entity("b")
		assert(#created == 2, #created)
		assert(created[1] == "a" and created[2] == "a")
	`)
	if r.Observers() != 0 {
		t.Errorf("Observers() = %d after off", r.Observers())
	}
}

func TestRunnerObserverAllEvents(t *testing.T) {
	_, r := newRunner(t)

	run(t, r, `
		seen = {}
		doc.on("*", function(event) seen[#seen + 1] = event end)
		local a = doc.entity("a")
		doc.select(a)
		doc.rename(a, "b")
	`)
	seen, ok := r.State().GetGlobal("seen").(*glua.LTable)
	if !ok {
		t.Fatal("seen is not a table")
	}
	var events []string
	for i := 1; i <= seen.Len(); i++ {
		events = append(events, seen.RawGetInt(i).String())
	}
	want := []string{"created", "selection", "var"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestRunnerObserverCannotEdit(t *testing.T) {
	doc, r := newRunner(t)

	err := r.Run(context.Background(), "test.lua", `
		doc.on("selection", function() doc.entity("sneaky") end)
		doc.select(doc.entity("a"))
	`)
	if !errors.Is(err, ErrDocumentBusy) {
		t.Fatalf("Run() error = %v, want ErrDocumentBusy", err)
	}
	if len(doc.FindByName("sneaky")) != 0 {
		t.Error("observer edited the document")
	}
	findOne(t, doc, "a")
}

func TestRunnerObserverUnknownEvent(t *testing.T) {
	_, r := newRunner(t)

	err := r.Run(context.Background(), "test.lua", `doc.on("exploded", function() end)`)
	if err == nil || !strings.Contains(err.Error(), "unknown event") {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRunnerTransaction(t *testing.T) {
	doc, r := newRunner(t)

	run(t, r, `
		doc.transaction("Build row", function()
			doc.entity("a")
			doc.entity("b")
		end)
		local ok = pcall(doc.transaction, "Broken", function()
			doc.entity("c")
			error("stop")
		end)
		assert(not ok)
	`)

	if doc.History().UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", doc.History().UndoCount())
	}
	info, _ := doc.History().PeekUndo()
	if info.Name != "Build row" {
		t.Errorf("PeekUndo().Name = %q", info.Name)
	}
	if len(doc.FindByName("c")) != 0 {
		t.Error("broken transaction was not rolled back")
	}

	run(t, r, `doc.undo()`)
	if len(doc.FindByName("a")) != 0 || len(doc.FindByName("b")) != 0 {
		t.Error("undo of the transaction left elements")
	}
}

func TestRunnerNestedTransaction(t *testing.T) {
	doc, r := newRunner(t)

	run(t, r, `
		doc.transaction("Outer", function()
			doc.entity("keep")
			local ok = pcall(doc.transaction, "Inner", function()
				doc.entity("drop")
				error("boom")
			end)
			assert(not ok)
			doc.entity("after")
		end)
	`)

	for name, want := range map[string]int{"keep": 1, "drop": 0, "after": 1} {
		if got := len(doc.FindByName(name)); got != want {
			t.Errorf("FindByName(%q) found %d, want %d", name, got, want)
		}
	}
	if doc.History().IsGrouping() {
		t.Error("history still grouping after the outer transaction")
	}
	if doc.History().UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", doc.History().UndoCount())
	}
	if info, _ := doc.History().PeekUndo(); info.Name != "Outer" {
		t.Errorf("PeekUndo().Name = %q, want Outer", info.Name)
	}

	run(t, r, `doc.undo()`)
	if len(doc.FindByName("keep")) != 0 || len(doc.FindByName("after")) != 0 {
		t.Error("undo of the outer transaction left elements")
	}
}

func TestRunnerHideSelection(t *testing.T) {
	doc, r := newRunner(t)

	run(t, r, `
		assert(not doc.hide_selection())
		local a = doc.entity("a")
		doc.select(a)
		assert(doc.hide_selection("walls"))
		local groups = doc.groups()
		assert(#groups == 1)
		assert(groups[1].name == "walls")
		assert(not groups[1].visible)
		assert(not a:visible())
	`)
	if len(doc.Groups()) != 1 {
		t.Errorf("Groups() = %d", len(doc.Groups()))
	}
}

func TestRunnerInstructionLimit(t *testing.T) {
	_, r := newRunner(t, WithInstructionLimit(10))

	err := r.Run(context.Background(), "test.lua", `for i = 1, 100 do doc.names() end`)
	if !errors.Is(err, ErrInstructionLimit) {
		t.Fatalf("Run() error = %v, want ErrInstructionLimit", err)
	}

	// The budget is per run.
	run(t, r, `doc.names()`)
}

func TestRunnerFile(t *testing.T) {
	doc, r := newRunner(t)

	path := filepath.Join(t.TempDir(), "build.lua")
	if err := os.WriteFile(path, []byte(`doc.entity("from-file")`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.RunFile(context.Background(), path); err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}
	findOne(t, doc, "from-file")

	if err := r.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("RunFile(missing) error = %v", err)
	}
}

func TestRunnerClosedDocument(t *testing.T) {
	doc, r := newRunner(t)

	run(t, r, `
		died = false
		doc.on("dies", function() died = true end)
	`)
	doc.Close()

	if r.State().GetGlobal("died") != glua.LTrue {
		t.Error("dies observer not called")
	}
	if r.Observers() != 0 {
		t.Errorf("Observers() = %d after close", r.Observers())
	}
	err := r.Run(context.Background(), "test.lua", `doc.world()`)
	if !errors.Is(err, document.ErrClosed) {
		t.Errorf("Run() error = %v, want ErrClosed", err)
	}
}
