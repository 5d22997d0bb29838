package observer

import (
	"sort"

	"github.com/dshills/mapforge/internal/engine/geom"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/google/uuid"
)

// Subject broadcasts document changes to its observers.
type Subject struct {
	subs    []*subscription // priority order
	byToken map[uuid.UUID]*subscription
	dead    bool
	hooks   []func(EventKind)
}

// NewSubject creates a subject with no observers.
func NewSubject() *Subject {
	return &Subject{
		byToken: make(map[uuid.UUID]*subscription),
	}
}

// OnNotify registers fn to be called once per notification, before fan-out.
func (s *Subject) OnNotify(fn func(EventKind)) {
	s.hooks = append(s.hooks, fn)
}

// Register adds obs and returns its handle. Registering an observer that is
// already registered returns the existing handle and changes nothing.
// Registering with a dead subject returns an invalid handle.
func (s *Subject) Register(obs Observer, opts ...Option) *Handle {
	if sub := s.find(obs); sub != nil {
		return sub.handle
	}
	if s.dead {
		return &Handle{token: uuid.New()}
	}

	config := DefaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&config)
	}

	sub := &subscription{
		observer: obs,
		config:   config,
		active:   true,
	}
	sub.handle = &Handle{token: uuid.New(), subject: s}

	s.subs = append(s.subs, sub)
	// Stable sort keeps registration order among equal priorities.
	sort.SliceStable(s.subs, func(i, j int) bool {
		return s.subs[i].config.Priority < s.subs[j].config.Priority
	})
	s.byToken[sub.handle.token] = sub
	return sub.handle
}

// Unregister removes obs. It reports whether obs was registered.
func (s *Subject) Unregister(obs Observer) bool {
	sub := s.find(obs)
	if sub == nil {
		return false
	}
	s.remove(sub)
	return true
}

func (s *Subject) unregisterToken(token uuid.UUID) {
	if sub, ok := s.byToken[token]; ok {
		s.remove(sub)
	}
}

func (s *Subject) remove(sub *subscription) {
	for i, x := range s.subs {
		if x == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	delete(s.byToken, sub.handle.token)
	sub.active = false
	sub.handle.subject = nil
}

func (s *Subject) find(obs Observer) *subscription {
	for _, sub := range s.subs {
		if sub.observer == obs {
			return sub
		}
	}
	return nil
}

// Lookup returns the observer registered under token.
func (s *Subject) Lookup(token uuid.UUID) (Observer, bool) {
	sub, ok := s.byToken[token]
	if !ok {
		return nil, false
	}
	return sub.observer, true
}

// IsRegistered reports whether obs is registered.
func (s *Subject) IsRegistered(obs Observer) bool {
	return s.find(obs) != nil
}

// Count returns the number of registered observers.
func (s *Subject) Count() int {
	return len(s.subs)
}

// Suppress mutes obs until the returned scope ends. Scopes nest.
// Suppressing an unregistered observer returns an inert scope.
func (s *Subject) Suppress(obs Observer) *Scope {
	sub := s.find(obs)
	if sub == nil {
		return &Scope{ended: true}
	}
	sub.suppressed++
	return &Scope{sub: sub}
}

// IsSuppressed reports whether obs is currently muted.
func (s *Subject) IsSuppressed(obs Observer) bool {
	sub := s.find(obs)
	return sub != nil && sub.suppressed > 0
}

// IsDead reports whether the subject has been closed.
func (s *Subject) IsDead() bool {
	return s.dead
}

// Close notifies every observer that the subject dies, then invalidates all
// handles. Closing twice is a no-op.
func (s *Subject) Close() {
	if s.dead {
		return
	}
	s.dead = true
	s.fire(EventDies)

	subs := append([]*subscription(nil), s.subs...)
	for _, sub := range subs {
		if sub.active {
			sub.observer.OnSubjectDies(s)
		}
	}
	for _, sub := range subs {
		sub.active = false
		sub.handle.subject = nil
	}
	s.subs = nil
	s.byToken = make(map[uuid.UUID]*subscription)
}

func (s *Subject) fire(kind EventKind) {
	for _, fn := range s.hooks {
		fn(kind)
	}
}

// each calls fn for every observer that should receive kind. Observers
// registered during fan-out are not notified of the current event; observers
// unregistered during fan-out are skipped.
func (s *Subject) each(kind EventKind, fn func(Observer)) {
	if s.dead {
		return
	}
	s.fire(kind)

	subs := append([]*subscription(nil), s.subs...)
	for _, sub := range subs {
		if !sub.active || sub.suppressed > 0 {
			continue
		}
		fn(sub.observer)
	}
}

// NotifySelectionChanged reports a selection transition.
func (s *Subject) NotifySelectionChanged(oldSel, newSel []scene.Element) {
	s.each(EventSelection, func(o Observer) {
		if so, ok := o.(SelectionObserver); ok {
			so.OnSelectionChanged(s, oldSel, newSel)
		}
	})
}

// NotifyCreated reports inserted entities and primitives.
func (s *Subject) NotifyCreated(ents []*scene.Entity, prims []*scene.Primitive) {
	if len(ents) == 0 && len(prims) == 0 {
		return
	}
	s.each(EventCreated, func(o Observer) {
		if co, ok := o.(CreationObserver); ok {
			co.OnCreated(s, ents, prims)
		}
	})
}

// NotifyDeleted reports removed entities and primitives.
func (s *Subject) NotifyDeleted(ents []*scene.Entity, prims []*scene.Primitive) {
	if len(ents) == 0 && len(prims) == 0 {
		return
	}
	s.each(EventDeleted, func(o Observer) {
		if do, ok := o.(DeletionObserver); ok {
			do.OnDeleted(s, ents, prims)
		}
	})
}

// NotifyModified reports modified elements.
func (s *Subject) NotifyModified(elems []scene.Element, detail ModDetail) {
	s.NotifyModifiedBounds(elems, detail, nil)
}

// NotifyModifiedBounds reports modified elements together with their bounds
// before the modification. oldBounds must be nil or parallel to elems.
func (s *Subject) NotifyModifiedBounds(elems []scene.Element, detail ModDetail, oldBounds []geom.Box) {
	if len(elems) == 0 {
		return
	}
	if oldBounds != nil && len(oldBounds) != len(elems) {
		panic("observer: oldBounds not parallel to elems")
	}
	s.each(EventModified, func(o Observer) {
		if mo, ok := o.(ModificationObserver); ok {
			mo.OnModified(s, elems, detail, oldBounds)
		}
	})
}

// NotifyEntitiesChanged reports entities that changed as a whole.
func (s *Subject) NotifyEntitiesChanged(ents []*scene.Entity, detail EntDetail) {
	if len(ents) == 0 {
		return
	}
	s.each(EventEntities, func(o Observer) {
		if eo, ok := o.(EntityObserver); ok {
			eo.OnEntitiesChanged(s, ents, detail)
		}
	})
}

// NotifyVarChanged reports a changed named value.
func (s *Subject) NotifyVarChanged(v Var) {
	s.each(EventVar, func(o Observer) {
		if vo, ok := o.(VarObserver); ok {
			vo.OnVarChanged(s, v)
		}
	})
}

// NotifyGroupsChanged reports a change to the group list or group flags.
func (s *Subject) NotifyGroupsChanged() {
	s.each(EventGroups, func(o Observer) {
		if gro, ok := o.(GroupsObserver); ok {
			gro.OnGroupsChanged(s)
		}
	})
}

// NotifyOther reports a document-wide change outside the tree.
func (s *Subject) NotifyOther(detail OtherDetail) {
	s.each(EventOther, func(o Observer) {
		if oo, ok := o.(OtherObserver); ok {
			oo.OnOtherChanged(s, detail)
		}
	})
}
