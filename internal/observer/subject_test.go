package observer

import (
	"testing"

	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/dshills/mapforge/internal/engine/scene"
)

// recorder implements every capability and records what it saw.
type recorder struct {
	name   string
	log    *[]string
	events []EventKind
	dies   int
	bounds [][]geom.Box
	onSel  func()
}

func (r *recorder) note(k EventKind) {
	r.events = append(r.events, k)
	if r.log != nil {
		*r.log = append(*r.log, r.name)
	}
}

func (r *recorder) OnSubjectDies(*Subject) { r.dies++ }

func (r *recorder) OnSelectionChanged(*Subject, []scene.Element, []scene.Element) {
	r.note(EventSelection)
	if r.onSel != nil {
		r.onSel()
	}
}

func (r *recorder) OnCreated(*Subject, []*scene.Entity, []*scene.Primitive) { r.note(EventCreated) }
func (r *recorder) OnDeleted(*Subject, []*scene.Entity, []*scene.Primitive) { r.note(EventDeleted) }

func (r *recorder) OnModified(_ *Subject, _ []scene.Element, _ ModDetail, old []geom.Box) {
	r.note(EventModified)
	r.bounds = append(r.bounds, old)
}

func (r *recorder) OnEntitiesChanged(*Subject, []*scene.Entity, EntDetail) { r.note(EventEntities) }
func (r *recorder) OnVarChanged(*Subject, Var)                             { r.note(EventVar) }
func (r *recorder) OnGroupsChanged(*Subject)                               { r.note(EventGroups) }
func (r *recorder) OnOtherChanged(*Subject, OtherDetail)                   { r.note(EventOther) }

// minimal implements only the required interface.
type minimal struct{ dies int }

func (m *minimal) OnSubjectDies(*Subject) { m.dies++ }

func TestRegisterIdempotent(t *testing.T) {
	s := NewSubject()
	r := &recorder{}

	h1 := s.Register(r)
	h2 := s.Register(r)
	if h1 != h2 {
		t.Error("second Register should return the same handle")
	}
	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1", s.Count())
	}

	s.NotifySelectionChanged(nil, nil)
	if len(r.events) != 1 {
		t.Errorf("notifications = %d, want 1", len(r.events))
	}

	if !s.Unregister(r) {
		t.Error("Unregister should report a registered observer")
	}
	if s.Unregister(r) {
		t.Error("second Unregister should be a no-op")
	}
}

func TestAllEventsDispatched(t *testing.T) {
	s := NewSubject()
	r := &recorder{}
	s.Register(r)
	s.Register(&minimal{})

	e := scene.NewEntity("e")
	s.NotifySelectionChanged(nil, []scene.Element{e})
	s.NotifyCreated([]*scene.Entity{e}, nil)
	s.NotifyDeleted(nil, []*scene.Primitive{scene.NewPrimitive(scene.KindBrush, "p")})
	s.NotifyModified([]scene.Element{e}, ModGeneric)
	s.NotifyEntitiesChanged([]*scene.Entity{e}, EntHierarchy)
	s.NotifyVarChanged(Var{Owner: e, Name: "name", Value: "x"})
	s.NotifyGroupsChanged()
	s.NotifyOther(OtherGrid)

	want := []EventKind{
		EventSelection, EventCreated, EventDeleted, EventModified,
		EventEntities, EventVar, EventGroups, EventOther,
	}
	if len(r.events) != len(want) {
		t.Fatalf("events = %v, want %v", r.events, want)
	}
	for i := range want {
		if r.events[i] != want[i] {
			t.Errorf("events[%d] = %v, want %v", i, r.events[i], want[i])
		}
	}
}

func TestEmptyNotificationsSkipped(t *testing.T) {
	s := NewSubject()
	r := &recorder{}
	s.Register(r)

	s.NotifyCreated(nil, nil)
	s.NotifyDeleted(nil, nil)
	s.NotifyModified(nil, ModTransform)
	s.NotifyEntitiesChanged(nil, EntComponents)
	if len(r.events) != 0 {
		t.Errorf("empty notifications delivered: %v", r.events)
	}
}

func TestModifiedBounds(t *testing.T) {
	s := NewSubject()
	r := &recorder{}
	s.Register(r)

	e := scene.NewEntity("e")
	old := []geom.Box{e.Bounds()}
	s.NotifyModifiedBounds([]scene.Element{e}, ModTransform, old)
	s.NotifyModified([]scene.Element{e}, ModTransform)

	if len(r.bounds) != 2 || len(r.bounds[0]) != 1 || r.bounds[1] != nil {
		t.Errorf("bounds = %v", r.bounds)
	}
}

func TestPriorityOrder(t *testing.T) {
	s := NewSubject()
	var log []string
	s.Register(&recorder{name: "metrics", log: &log}, WithPriority(PriorityLow))
	s.Register(&recorder{name: "script", log: &log})
	s.Register(&recorder{name: "view", log: &log}, WithPriority(PriorityView))
	s.Register(&recorder{name: "script2", log: &log})

	s.NotifyGroupsChanged()

	want := []string{"view", "script", "script2", "metrics"}
	for i := range want {
		if i >= len(log) || log[i] != want[i] {
			t.Fatalf("order = %v, want %v", log, want)
		}
	}
}

func TestSuppressScope(t *testing.T) {
	s := NewSubject()
	r := &recorder{}
	s.Register(r)

	outer := s.Suppress(r)
	inner := s.Suppress(r)
	s.NotifyGroupsChanged()
	inner.End()
	s.NotifyGroupsChanged()
	if len(r.events) != 0 {
		t.Fatal("suppressed observer was notified")
	}

	outer.End()
	outer.End()
	if s.IsSuppressed(r) {
		t.Fatal("scope should be closed")
	}
	s.NotifyGroupsChanged()
	if len(r.events) != 1 {
		t.Errorf("events = %d, want 1", len(r.events))
	}

	s.Suppress(&minimal{}).End()
}

func TestSuppressDuringOwnMutation(t *testing.T) {
	s := NewSubject()
	other := &recorder{}
	self := &recorder{}
	self.onSel = func() {
		// Reacting to a change by causing another one must not loop back.
		scope := s.Suppress(self)
		defer scope.End()
		self.onSel = nil
		s.NotifyGroupsChanged()
	}
	s.Register(self, WithPriority(PriorityView))
	s.Register(other)

	s.NotifySelectionChanged(nil, nil)

	if len(self.events) != 1 {
		t.Errorf("self events = %v, want only selection", self.events)
	}
	if len(other.events) != 2 {
		t.Errorf("other events = %v, want groups and selection", other.events)
	}
}

func TestUnregisterDuringFanOut(t *testing.T) {
	s := NewSubject()
	later := &recorder{}
	first := &recorder{}
	first.onSel = func() { s.Unregister(later) }
	s.Register(first, WithPriority(PriorityView))
	s.Register(later)

	s.NotifySelectionChanged(nil, nil)
	if len(later.events) != 0 {
		t.Error("observer unregistered mid fan-out was notified")
	}
}

func TestHandles(t *testing.T) {
	s := NewSubject()
	r := &recorder{}
	h := s.Register(r)

	if h.Subject() != s || !h.Valid() {
		t.Fatal("fresh handle should resolve")
	}
	if obs, ok := s.Lookup(h.Token()); !ok || obs != Observer(r) {
		t.Error("Lookup by token failed")
	}

	h.Unregister()
	if h.Subject() != nil || s.IsRegistered(r) {
		t.Error("handle should be invalid after Unregister")
	}
	h.Unregister()

	var nilHandle *Handle
	if nilHandle.Valid() {
		t.Error("nil handle should be invalid")
	}
}

func TestCloseNotifiesAndInvalidates(t *testing.T) {
	s := NewSubject()
	r := &recorder{}
	m := &minimal{}
	hr := s.Register(r)
	hm := s.Register(m)

	var kinds []EventKind
	s.OnNotify(func(k EventKind) { kinds = append(kinds, k) })

	s.Close()
	s.Close()

	if r.dies != 1 || m.dies != 1 {
		t.Errorf("dies = %d, %d; want 1, 1", r.dies, m.dies)
	}
	if hr.Valid() || hm.Valid() {
		t.Error("handles should be invalid after Close")
	}
	if s.Count() != 0 || !s.IsDead() {
		t.Error("dead subject should hold no observers")
	}
	if len(kinds) != 1 || kinds[0] != EventDies {
		t.Errorf("hook kinds = %v", kinds)
	}

	s.NotifyGroupsChanged()
	if len(r.events) != 0 {
		t.Error("dead subject delivered an event")
	}
	if s.Register(r).Valid() {
		t.Error("registering with a dead subject should yield an invalid handle")
	}
}

func TestGuard(t *testing.T) {
	var g Guard
	runs := 0
	g.Do(func() {
		runs++
		if g.Do(func() { runs++ }) {
			t.Error("nested Do should not run")
		}
		if !g.Active() {
			t.Error("guard should be active inside Do")
		}
	})
	if runs != 1 || g.Active() {
		t.Errorf("runs = %d, active = %v", runs, g.Active())
	}
	g.Leave()
	if !g.Enter() {
		t.Error("Enter after spurious Leave should succeed")
	}
}
