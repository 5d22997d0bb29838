package lua

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/dshills/mapforge/internal/command"
	"github.com/dshills/mapforge/internal/document"
	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
)

// ModuleName is the global name of the document module.
const ModuleName = "doc"

// primitiveKinds are the kinds doc.primitive accepts.
var primitiveKinds = map[scene.PrimitiveKind]bool{
	scene.KindBrush:   true,
	scene.KindPatch:   true,
	scene.KindTerrain: true,
	scene.KindModel:   true,
	scene.KindPlant:   true,
}

// installModule registers the doc module.
func (r *Runner) installModule() {
	funcs := map[string]lua.LGFunction{
		"world":            r.luaWorld,
		"title":            r.luaTitle,
		"modified":         r.luaModified,
		"names":            r.luaNames,
		"find":             r.luaFind,
		"get":              r.luaGet,
		"entity":           r.luaEntity,
		"primitive":        r.luaPrimitive,
		"selection":        r.luaSelection,
		"select":           r.luaSelect,
		"select_add":       r.luaSelectAdd,
		"select_remove":    r.luaSelectRemove,
		"clear_selection":  r.luaClearSelection,
		"delete":           r.luaDelete,
		"delete_selection": r.luaDeleteSelection,
		"reparent":         r.luaReparent,
		"move_selection":   r.luaMoveSelection,
		"rotate_selection": r.luaRotateSelection,
		"clone_selection":  r.luaCloneSelection,
		"rename":           r.luaRename,
		"hide_selection":   r.luaHideSelection,
		"groups":           r.luaGroups,
		"undo":             r.luaUndo,
		"redo":             r.luaRedo,
		"can_undo":         r.luaCanUndo,
		"can_redo":         r.luaCanRedo,
		"transaction":      r.luaTransaction,
		"on":               r.luaOn,
	}
	for name, fn := range funcs {
		funcs[name] = r.charged(fn)
	}
	r.state.RegisterModule(ModuleName, funcs)
}

// installElementMethods adds the methods of element userdata.
func (r *Runner) installElementMethods() {
	b := r.bridge
	b.SetMethod("id", func(L *lua.LState) int {
		L.Push(lua.LString(r.checkHandle(L).ID().String()))
		return 1
	})
	b.SetMethod("name", func(L *lua.LState) int {
		L.Push(lua.LString(r.checkHandle(L).Name()))
		return 1
	})
	b.SetMethod("kind", func(L *lua.LState) int {
		switch e := r.checkHandle(L).(type) {
		case *scene.Primitive:
			L.Push(lua.LString(e.Kind()))
		default:
			L.Push(lua.LString("entity"))
		}
		return 1
	})
	b.SetMethod("parent", func(L *lua.LState) int {
		switch e := r.checkHandle(L).(type) {
		case *scene.Entity:
			L.Push(b.Element(nilIfNone(e.Parent())))
		case *scene.Primitive:
			L.Push(b.Element(nilIfNone(e.Entity())))
		}
		return 1
	})
	b.SetMethod("children", func(L *lua.LState) int {
		var kids []*scene.Entity
		if e, ok := r.checkHandle(L).(*scene.Entity); ok {
			kids = e.Children()
		}
		L.Push(b.Entities(kids))
		return 1
	})
	b.SetMethod("primitives", func(L *lua.LState) int {
		var prims []*scene.Primitive
		if e, ok := r.checkHandle(L).(*scene.Entity); ok {
			prims = e.Primitives()
		}
		L.Push(b.Primitives(prims))
		return 1
	})
	b.SetMethod("origin", func(L *lua.LState) int {
		switch e := r.checkHandle(L).(type) {
		case *scene.Entity:
			L.Push(b.Vec3(e.OriginWS()))
		case *scene.Primitive:
			L.Push(b.Vec3(e.Origin()))
		}
		return 1
	})
	b.SetMethod("selected", func(L *lua.LState) int {
		L.Push(lua.LBool(r.doc.IsSelected(r.checkHandle(L))))
		return 1
	})
	b.SetMethod("visible", func(L *lua.LState) int {
		L.Push(lua.LBool(scene.IsVisible(r.checkHandle(L))))
		return 1
	})
}

// nilIfNone turns a nil entity into a nil element, not a typed nil.
func nilIfNone(e *scene.Entity) scene.Element {
	if e == nil {
		return nil
	}
	return e
}

// charged wraps fn so that every call spends one instruction.
func (r *Runner) charged(fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		r.state.charge(L, 1)
		if r.doc.IsDead() {
			r.state.fail(L, document.ErrClosed)
		}
		return fn(L)
	}
}

// editing raises if the document may not be edited right now.
func (r *Runner) editing(L *lua.LState) {
	if r.busy.Active() {
		r.state.fail(L, fmt.Errorf("%w: observers may not edit the document", ErrDocumentBusy))
	}
}

// checkHandle returns the element behind the method receiver.
func (r *Runner) checkHandle(L *lua.LState) scene.Element {
	e, ok := r.bridge.ToElement(L.Get(1))
	if !ok {
		L.ArgError(1, "element expected")
	}
	return e
}

// inDocument reports whether e is attached to the document tree.
func (r *Runner) inDocument(e scene.Element) bool {
	if e.Disposed() {
		return false
	}
	owner := e.Entity()
	return owner != nil && r.doc.Contains(owner)
}

// lookup resolves a name or an id string.
func (r *Runner) lookup(ref string) (scene.Element, error) {
	if id, err := uuid.Parse(ref); err == nil {
		if e, ok := r.doc.FindElement(id); ok {
			return e, nil
		}
	}
	if found := r.doc.FindByName(ref); len(found) > 0 {
		return found[0], nil
	}
	if s := r.suggest(ref); s != "" {
		return nil, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownElement, ref, s)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownElement, ref)
}

// suggest returns the element name closest to ref, or "" if none is close.
func (r *Runner) suggest(ref string) string {
	best, bestDist := "", -1
	want := strings.ToLower(ref)
	for _, name := range r.doc.Names() {
		d := levenshtein.ComputeDistance(want, strings.ToLower(name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = name, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(ref)/3) {
		return ""
	}
	return best
}

// checkElement resolves argument n to an element of the document.
func (r *Runner) checkElement(L *lua.LState, n int) scene.Element {
	lv := L.Get(n)
	if e, ok := r.bridge.ToElement(lv); ok {
		if !r.inDocument(e) {
			r.state.fail(L, fmt.Errorf("%w: %s is not in the document", ErrUnknownElement, describe(e)))
		}
		return e
	}
	s, ok := lv.(lua.LString)
	if !ok {
		L.ArgError(n, "element, name or id expected")
	}
	e, err := r.lookup(string(s))
	if err != nil {
		r.state.fail(L, err)
	}
	return e
}

// checkEntity resolves argument n to an entity of the document.
func (r *Runner) checkEntity(L *lua.LState, n int) *scene.Entity {
	ent, ok := r.checkElement(L, n).(*scene.Entity)
	if !ok {
		L.ArgError(n, "entity expected")
	}
	return ent
}

// checkElements resolves the arguments from n on. A table argument
// contributes its array part.
func (r *Runner) checkElements(L *lua.LState, n int) []scene.Element {
	var out []scene.Element
	for i := n; i <= L.GetTop(); i++ {
		t, ok := L.Get(i).(*lua.LTable)
		if !ok {
			out = append(out, r.checkElement(L, i))
			continue
		}
		for j := 1; j <= t.Len(); j++ {
			L.Push(t.RawGetInt(j))
			out = append(out, r.checkElement(L, L.GetTop()))
			L.Pop(1)
		}
	}
	return out
}

// checkVec3 reads a vector argument.
func (r *Runner) checkVec3(L *lua.LState, n int) mgl32.Vec3 {
	v, err := r.bridge.ToVec3(L.Get(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return v
}

// submit hands cmd to the document and pushes whether it applied.
func (r *Runner) submit(L *lua.LState, cmd history.Command) int {
	L.Push(lua.LBool(r.doc.Submit(cmd)))
	return 1
}

func (r *Runner) luaWorld(L *lua.LState) int {
	L.Push(r.bridge.Element(r.doc.Root()))
	return 1
}

func (r *Runner) luaTitle(L *lua.LState) int {
	L.Push(lua.LString(r.doc.Title()))
	return 1
}

func (r *Runner) luaModified(L *lua.LState) int {
	L.Push(lua.LBool(r.doc.Modified()))
	return 1
}

func (r *Runner) luaNames(L *lua.LState) int {
	names := r.doc.Names()
	t := L.CreateTable(len(names), 0)
	for i, name := range names {
		t.RawSetInt(i+1, lua.LString(name))
	}
	L.Push(t)
	return 1
}

// luaFind returns the element named ref, or nil and a message.
func (r *Runner) luaFind(L *lua.LState) int {
	e, err := r.lookup(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(r.bridge.Element(e))
	return 1
}

// luaGet returns the element named ref and raises if there is none.
func (r *Runner) luaGet(L *lua.LState) int {
	L.Push(r.bridge.Element(r.checkElement(L, 1)))
	return 1
}

// luaEntity adds an entity: doc.entity(name, [parent], [origin]). The
// origin is relative to the parent, which defaults to the world.
func (r *Runner) luaEntity(L *lua.LState) int {
	r.editing(L)
	ent := scene.NewEntity(L.CheckString(1))
	parent := r.doc.Root()
	if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
		parent = r.checkEntity(L, 2)
	}
	if L.GetTop() >= 3 {
		ent.SetOriginPS(r.checkVec3(L, 3))
	}
	r.doc.Submit(command.NewAddEntity(r.doc, ent, parent, false))
	L.Push(r.bridge.Element(ent))
	return 1
}

// luaPrimitive adds a primitive: doc.primitive(owner, kind, name, points...).
func (r *Runner) luaPrimitive(L *lua.LState) int {
	r.editing(L)
	owner := r.checkEntity(L, 1)
	kind := scene.PrimitiveKind(L.CheckString(2))
	if !primitiveKinds[kind] {
		L.ArgError(2, fmt.Sprintf("unknown primitive kind %q", kind))
	}
	name := L.CheckString(3)

	var points []mgl32.Vec3
	for i := 4; i <= L.GetTop(); i++ {
		points = append(points, r.checkVec3(L, i))
	}
	prim := scene.NewPrimitive(kind, name, points...)
	r.doc.Submit(command.NewAddPrimitive(r.doc, []*scene.Primitive{prim}, owner, "", false))
	L.Push(r.bridge.Element(prim))
	return 1
}

func (r *Runner) luaSelection(L *lua.LState) int {
	L.Push(r.bridge.Elements(r.doc.Selection()))
	return 1
}

func (r *Runner) luaSelect(L *lua.LState) int {
	r.editing(L)
	return r.submit(L, command.SelectSet(r.doc, r.checkElements(L, 1)))
}

func (r *Runner) luaSelectAdd(L *lua.LState) int {
	r.editing(L)
	return r.submit(L, command.SelectAdd(r.doc, r.checkElements(L, 1)))
}

func (r *Runner) luaSelectRemove(L *lua.LState) int {
	r.editing(L)
	return r.submit(L, command.SelectRemove(r.doc, r.checkElements(L, 1)))
}

func (r *Runner) luaClearSelection(L *lua.LState) int {
	r.editing(L)
	return r.submit(L, command.SelectClear(r.doc))
}

func (r *Runner) luaDelete(L *lua.LState) int {
	r.editing(L)
	return r.submit(L, command.NewDelete(r.doc, r.checkElements(L, 1)))
}

func (r *Runner) luaDeleteSelection(L *lua.LState) int {
	r.editing(L)
	return r.submit(L, command.NewDelete(r.doc, r.doc.Selection()))
}

// luaReparent moves an entity: doc.reparent(ent, parent, [index]). The
// index is 1-based; it defaults to the end. It returns false and a message
// if the move is not allowed.
func (r *Runner) luaReparent(L *lua.LState) int {
	r.editing(L)
	ent := r.checkEntity(L, 1)
	parent := r.checkEntity(L, 2)
	index := L.OptInt(3, 0) - 1

	if err := command.CanReparent(r.doc, ent, parent); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	return r.submit(L, command.NewChangeEntityHierarchy(r.doc, ent, parent, index))
}

func (r *Runner) luaMoveSelection(L *lua.LState) int {
	r.editing(L)
	delta := r.checkVec3(L, 1)
	return r.submit(L, command.NewTransform(r.doc, r.doc.Selection(), geom.Translate(delta)))
}

// luaRotateSelection rotates by Euler angles in degrees about a pivot,
// which defaults to the origin.
func (r *Runner) luaRotateSelection(L *lua.LState) int {
	r.editing(L)
	angles := r.checkVec3(L, 1)
	var pivot mgl32.Vec3
	if L.GetTop() >= 2 {
		pivot = r.checkVec3(L, 2)
	}
	return r.submit(L, command.NewTransform(r.doc, r.doc.Selection(), geom.Rotate(pivot, angles)))
}

// luaCloneSelection clones the selection moved by a delta and returns the
// clones, which become the selection.
func (r *Runner) luaCloneSelection(L *lua.LState) int {
	r.editing(L)
	delta := r.checkVec3(L, 1)
	macro := command.CloneDrag(r.doc, r.doc.Selection(), geom.Translate(delta))
	if macro == nil || !r.doc.Submit(macro) {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(r.bridge.Elements(r.doc.Selection()))
	return 1
}

func (r *Runner) luaRename(L *lua.LState) int {
	r.editing(L)
	e := r.checkElement(L, 1)
	return r.submit(L, command.NewSetName(r.doc, e, L.CheckString(2)))
}

func (r *Runner) luaHideSelection(L *lua.LState) int {
	r.editing(L)
	macro := command.HideSelection(r.doc, L.OptString(1, "hidden"))
	if macro == nil {
		L.Push(lua.LFalse)
		return 1
	}
	return r.submit(L, macro)
}

func (r *Runner) luaGroups(L *lua.LState) int {
	groups := r.doc.Groups()
	t := L.CreateTable(len(groups), 0)
	for i, g := range groups {
		gt := L.CreateTable(0, 4)
		gt.RawSetString("name", lua.LString(g.Name))
		gt.RawSetString("color", lua.LString(g.Hex()))
		gt.RawSetString("visible", lua.LBool(g.Visible))
		gt.RawSetString("selectable", lua.LBool(g.Selectable))
		t.RawSetInt(i+1, gt)
	}
	L.Push(t)
	return 1
}

func (r *Runner) luaUndo(L *lua.LState) int {
	r.editing(L)
	L.Push(lua.LBool(r.doc.Undo() == nil))
	return 1
}

func (r *Runner) luaRedo(L *lua.LState) int {
	r.editing(L)
	L.Push(lua.LBool(r.doc.Redo() == nil))
	return 1
}

func (r *Runner) luaCanUndo(L *lua.LState) int {
	L.Push(lua.LBool(r.doc.History().CanUndo()))
	return 1
}

func (r *Runner) luaCanRedo(L *lua.LState) int {
	L.Push(lua.LBool(r.doc.History().CanRedo()))
	return 1
}

// luaTransaction runs fn as one undo entry: doc.transaction(name, fn). If
// fn raises, its edits are rolled back and the error is raised again.
func (r *Runner) luaTransaction(L *lua.LState) int {
	r.editing(L)
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	var raised lua.LValue
	err := r.doc.History().Transaction(name, func() error {
		err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
		if apiErr, ok := err.(*lua.ApiError); ok {
			raised = apiErr.Object
		}
		return err
	})
	if err != nil {
		if raised == nil {
			raised = lua.LString(err.Error())
		}
		L.Error(raised, 0)
	}
	return 0
}

// luaOn registers a Lua observer: doc.on(event, fn). It returns a function
// that unregisters it.
func (r *Runner) luaOn(L *lua.LState) int {
	event := L.CheckString(1)
	if !eventNames[event] {
		L.ArgError(1, fmt.Sprintf("unknown event %q", event))
	}
	o := &scriptObserver{r: r, event: event, fn: L.CheckFunction(2)}
	o.handle = r.doc.Register(o)
	r.observers = append(r.observers, o)

	L.Push(L.NewFunction(func(L *lua.LState) int {
		o.handle.Unregister()
		r.remove(o)
		return 0
	}))
	return 1
}
