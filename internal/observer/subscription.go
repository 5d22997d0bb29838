package observer

import (
	"github.com/google/uuid"
)

// SubscriptionConfig contains configuration for a registration.
type SubscriptionConfig struct {
	// Priority determines notification order (lower values first).
	Priority Priority
}

// DefaultSubscriptionConfig returns the default registration configuration.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{Priority: PriorityNormal}
}

// Option configures a registration.
type Option func(*SubscriptionConfig)

// WithPriority sets the notification priority.
func WithPriority(p Priority) Option {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// subscription binds an observer to a subject.
type subscription struct {
	observer   Observer
	config     SubscriptionConfig
	active     bool
	suppressed int
	handle     *Handle
}

// Handle is a weak reference from an observer to its subject.
type Handle struct {
	token   uuid.UUID
	subject *Subject
}

// Token returns the registration token.
func (h *Handle) Token() uuid.UUID {
	return h.token
}

// Subject returns the subject, or nil once the registration has ended.
func (h *Handle) Subject() *Subject {
	if h == nil {
		return nil
	}
	return h.subject
}

// Valid reports whether the registration is still in effect.
func (h *Handle) Valid() bool {
	return h.Subject() != nil
}

// Unregister ends the registration. It is a no-op once it has ended.
func (h *Handle) Unregister() {
	if s := h.Subject(); s != nil {
		s.unregisterToken(h.token)
	}
}

// Scope mutes one observer until End is called.
type Scope struct {
	sub   *subscription
	ended bool
}

// End closes the scope. Safe to call multiple times.
func (sc *Scope) End() {
	if sc == nil || sc.ended {
		return
	}
	sc.ended = true
	if sc.sub != nil && sc.sub.suppressed > 0 {
		sc.sub.suppressed--
	}
}
