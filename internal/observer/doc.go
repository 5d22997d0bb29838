// Package observer implements the change propagation between a document and
// its views.
//
// A Subject owns a list of distinct observers and fans every change out to
// them synchronously, depth-first, in priority order. Observers opt into the
// events they care about by implementing the matching capability interface:
//
//	type outline struct{}
//
//	func (o *outline) OnSubjectDies(s *observer.Subject) {}
//	func (o *outline) OnSelectionChanged(s *observer.Subject, oldSel, newSel []scene.Element) {
//	    // redraw highlight
//	}
//
//	h := doc.Register(&outline{}, observer.WithPriority(observer.PriorityView))
//
// # Handles
//
// Register returns a Handle. Observers keep the handle rather than the
// subject itself; once the observer is unregistered or the subject has died,
// Handle.Subject returns nil.
//
// # Re-entrancy
//
// An observer that edits the document in response to a notification would
// otherwise be notified of its own edit. Suppress mutes one observer for the
// lifetime of a scope:
//
//	scope := s.Suppress(o)
//	defer scope.End()
//	doc.Submit(cmd)
//
// Guard covers the reverse case, where a widget callback triggered by the
// observer's own update must be ignored.
//
// Subjects are not safe for concurrent use.
package observer
