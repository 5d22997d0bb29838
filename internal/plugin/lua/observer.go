package lua

import (
	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/dshills/mapforge/internal/observer"
	lua "github.com/yuin/gopher-lua"
)

// eventAll subscribes a Lua observer to every event.
const eventAll = "*"

// eventNames are the event names doc.on accepts.
var eventNames = func() map[string]bool {
	names := map[string]bool{eventAll: true}
	for k := observer.EventSelection; k <= observer.EventDies; k++ {
		names[k.String()] = true
	}
	return names
}()

// scriptObserver forwards document notifications to a Lua function.
type scriptObserver struct {
	r      *Runner
	event  string
	fn     *lua.LFunction
	handle *observer.Handle
}

// wants reports whether the observer subscribed to kind.
func (o *scriptObserver) wants(kind observer.EventKind) bool {
	return o.event == eventAll || o.event == kind.String()
}

// emit calls the Lua function with the event name and a payload built by
// fill.
func (o *scriptObserver) emit(kind observer.EventKind, fill func(b *Bridge, t *lua.LTable)) {
	if !o.wants(kind) {
		return
	}
	b := o.r.bridge
	payload := b.L.NewTable()
	if fill != nil {
		fill(b, payload)
	}
	o.r.callback("on "+kind.String(), o.fn, lua.LString(kind.String()), payload)
}

func (o *scriptObserver) OnSubjectDies(*observer.Subject) {
	o.emit(observer.EventDies, nil)
	o.r.remove(o)
}

func (o *scriptObserver) OnSelectionChanged(_ *observer.Subject, oldSel, newSel []scene.Element) {
	o.emit(observer.EventSelection, func(b *Bridge, t *lua.LTable) {
		t.RawSetString("old", b.Elements(oldSel))
		t.RawSetString("new", b.Elements(newSel))
	})
}

func (o *scriptObserver) OnCreated(_ *observer.Subject, ents []*scene.Entity, prims []*scene.Primitive) {
	o.emit(observer.EventCreated, func(b *Bridge, t *lua.LTable) {
		t.RawSetString("entities", b.Entities(ents))
		t.RawSetString("primitives", b.Primitives(prims))
	})
}

func (o *scriptObserver) OnDeleted(_ *observer.Subject, ents []*scene.Entity, prims []*scene.Primitive) {
	o.emit(observer.EventDeleted, func(b *Bridge, t *lua.LTable) {
		t.RawSetString("entities", b.Entities(ents))
		t.RawSetString("primitives", b.Primitives(prims))
	})
}

func (o *scriptObserver) OnModified(_ *observer.Subject, elems []scene.Element, detail observer.ModDetail, _ []geom.Box) {
	o.emit(observer.EventModified, func(b *Bridge, t *lua.LTable) {
		t.RawSetString("elements", b.Elements(elems))
		t.RawSetString("detail", lua.LString(detail.String()))
	})
}

func (o *scriptObserver) OnEntitiesChanged(_ *observer.Subject, ents []*scene.Entity, detail observer.EntDetail) {
	o.emit(observer.EventEntities, func(b *Bridge, t *lua.LTable) {
		t.RawSetString("entities", b.Entities(ents))
		t.RawSetString("detail", lua.LString(detail.String()))
	})
}

func (o *scriptObserver) OnVarChanged(_ *observer.Subject, v observer.Var) {
	o.emit(observer.EventVar, func(b *Bridge, t *lua.LTable) {
		t.RawSetString("owner", b.Element(v.Owner))
		t.RawSetString("name", lua.LString(v.Name))
		t.RawSetString("value", b.ToLuaValue(v.Value))
	})
}

func (o *scriptObserver) OnGroupsChanged(*observer.Subject) {
	o.emit(observer.EventGroups, nil)
}

func (o *scriptObserver) OnOtherChanged(_ *observer.Subject, detail observer.OtherDetail) {
	o.emit(observer.EventOther, func(b *Bridge, t *lua.LTable) {
		t.RawSetString("detail", lua.LString(detail.String()))
	})
}
