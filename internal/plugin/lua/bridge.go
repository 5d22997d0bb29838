package lua

import (
	"fmt"

	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
)

// elementTypeName is the metatable name of element userdata.
const elementTypeName = "mapforge.element"

// Bridge provides utilities for Go-Lua interoperability.
type Bridge struct {
	L *lua.LState

	methods *lua.LTable
	handles map[scene.Element]*lua.LUserData
}

// NewBridge creates a new Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	b := &Bridge{
		L:       L,
		methods: L.NewTable(),
		handles: make(map[scene.Element]*lua.LUserData),
	}
	mt := L.NewTypeMetatable(elementTypeName)
	L.SetField(mt, "__index", b.methods)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		e, _ := b.ToElement(L.Get(1))
		L.Push(lua.LString(describe(e)))
		return 1
	}))
	return b
}

// SetMethod adds a method to element userdata.
func (b *Bridge) SetMethod(name string, fn lua.LGFunction) {
	b.L.SetField(b.methods, name, b.L.NewFunction(fn))
}

// Element returns the userdata of e. The same element always maps to the
// same userdata, so Lua equality works on elements.
func (b *Bridge) Element(e scene.Element) lua.LValue {
	if e == nil {
		return lua.LNil
	}
	if ud, ok := b.handles[e]; ok {
		return ud
	}
	ud := b.L.NewUserData()
	ud.Value = e
	b.L.SetMetatable(ud, b.L.GetTypeMetatable(elementTypeName))
	b.handles[e] = ud
	return ud
}

// Elements returns a Lua array of element userdata.
func (b *Bridge) Elements(elems []scene.Element) *lua.LTable {
	t := b.L.CreateTable(len(elems), 0)
	for i, e := range elems {
		t.RawSetInt(i+1, b.Element(e))
	}
	return t
}

// Entities returns a Lua array of entity userdata.
func (b *Bridge) Entities(ents []*scene.Entity) *lua.LTable {
	t := b.L.CreateTable(len(ents), 0)
	for i, e := range ents {
		t.RawSetInt(i+1, b.Element(e))
	}
	return t
}

// Primitives returns a Lua array of primitive userdata.
func (b *Bridge) Primitives(prims []*scene.Primitive) *lua.LTable {
	t := b.L.CreateTable(len(prims), 0)
	for i, p := range prims {
		t.RawSetInt(i+1, b.Element(p))
	}
	return t
}

// ToElement returns the element behind element userdata.
func (b *Bridge) ToElement(lv lua.LValue) (scene.Element, bool) {
	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return nil, false
	}
	e, ok := ud.Value.(scene.Element)
	return e, ok
}

// Forget drops the userdata of elements that were disposed.
func (b *Bridge) Forget() {
	for e := range b.handles {
		if e.Disposed() {
			delete(b.handles, e)
		}
	}
}

// Vec3 returns a Lua vector table.
func (b *Bridge) Vec3(v mgl32.Vec3) *lua.LTable {
	t := b.L.CreateTable(0, 3)
	t.RawSetString("x", lua.LNumber(v[0]))
	t.RawSetString("y", lua.LNumber(v[1]))
	t.RawSetString("z", lua.LNumber(v[2]))
	return t
}

// ToVec3 reads a vector table, either {x=, y=, z=} or {1, 2, 3}. Missing
// components are zero.
func (b *Bridge) ToVec3(lv lua.LValue) (mgl32.Vec3, error) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return mgl32.Vec3{}, fmt.Errorf("vector expected, got %s", lv.Type())
	}
	var v mgl32.Vec3
	for i, key := range []string{"x", "y", "z"} {
		c := t.RawGetString(key)
		if c == lua.LNil {
			c = t.RawGetInt(i + 1)
		}
		switch n := c.(type) {
		case lua.LNumber:
			v[i] = float32(n)
		case *lua.LNilType:
		default:
			return mgl32.Vec3{}, fmt.Errorf("vector component %s: number expected, got %s", key, c.Type())
		}
	}
	return v, nil
}

// ToGoValue converts a Lua value to a Go value.
func (b *Bridge) ToGoValue(lv lua.LValue) any {
	return b.toGoValueWithVisited(lv, make(map[*lua.LTable]bool))
}

// toGoValueWithVisited converts a Lua value to a Go value, tracking visited tables.
func (b *Bridge) toGoValueWithVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return b.tableToGoWithVisited(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGoWithVisited converts a Lua table to a slice when its keys are
// 1..n and to a map otherwise.
func (b *Bridge) tableToGoWithVisited(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && count == n {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = b.toGoValueWithVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = b.toGoValueWithVisited(v, visited)
	})
	return m
}

// ToLuaValue converts a Go value to a Lua value.
func (b *Bridge) ToLuaValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case mgl32.Vec3:
		return b.Vec3(val)
	case mgl32.Quat:
		t := b.L.CreateTable(0, 4)
		t.RawSetString("w", lua.LNumber(val.W))
		t.RawSetString("x", lua.LNumber(val.V[0]))
		t.RawSetString("y", lua.LNumber(val.V[1]))
		t.RawSetString("z", lua.LNumber(val.V[2]))
		return t
	case scene.Element:
		return b.Element(val)
	case []any:
		t := b.L.CreateTable(len(val), 0)
		for i, x := range val {
			t.RawSetInt(i+1, b.ToLuaValue(x))
		}
		return t
	case map[string]any:
		t := b.L.CreateTable(0, len(val))
		for k, x := range val {
			t.RawSetString(k, b.ToLuaValue(x))
		}
		return t
	case lua.LValue:
		return val
	case fmt.Stringer:
		return lua.LString(val.String())
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

// describe returns a short label of e.
func describe(e scene.Element) string {
	switch v := e.(type) {
	case *scene.Entity:
		return fmt.Sprintf("entity %q", v.Name())
	case *scene.Primitive:
		return fmt.Sprintf("%s %q", v.Kind(), v.Name())
	default:
		return "element"
	}
}
