package history

// BeginGroup starts a command group.
// Commands submitted while grouping are combined into a single Macro.
// Nested calls only deepen the group; the outermost name is kept.
func (h *History) BeginGroup(name string) {
	if len(h.groupMarks) == 0 {
		h.groupName = name
		h.groupCmds = nil
	}
	h.groupMarks = append(h.groupMarks, len(h.groupCmds))
}

// EndGroup finishes the innermost command group.
// All commands since the outermost BeginGroup become one Macro.
func (h *History) EndGroup() {
	if len(h.groupMarks) == 0 {
		return
	}
	h.groupMarks = h.groupMarks[:len(h.groupMarks)-1]
	if len(h.groupMarks) > 0 {
		return
	}

	cmds := h.groupCmds
	h.groupCmds = nil
	if len(cmds) == 0 {
		return
	}

	macro := NewMacro(h.groupName, cmds)
	h.push(macro)
	h.emit(EventSubmit, macro)
}

// CancelGroup cancels the innermost open group. The commands submitted
// since its BeginGroup are undone in reverse order and released; commands
// of enclosing groups stay applied and the enclosing groups stay open.
func (h *History) CancelGroup() {
	if len(h.groupMarks) == 0 {
		return
	}
	mark := h.groupMarks[len(h.groupMarks)-1]
	h.groupMarks = h.groupMarks[:len(h.groupMarks)-1]
	cmds := h.groupCmds[mark:]
	h.groupCmds = h.groupCmds[:mark:mark]
	if len(h.groupMarks) == 0 {
		h.groupCmds = nil
	}

	for i := len(cmds) - 1; i >= 0; i-- {
		cmds[i].Undo()
		Release(cmds[i])
	}
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	return len(h.groupMarks) > 0
}

// GroupScope provides a convenient way to group commands using defer.
// Usage:
//
//	func hideWalls(h *History) {
//	    defer h.GroupScope("Hide walls").End()
//	    // ... multiple submits ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope and rolls its commands back.
func (g *GroupScope) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// Transaction executes a function within a grouped undo context.
// If the function returns an error, the group is cancelled.
// Otherwise, the group is ended normally.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)

	err := fn()
	if err != nil {
		h.CancelGroup()
		return err
	}

	h.EndGroup()
	return nil
}

// SubmitGrouped submits multiple commands as a single undo unit.
// It returns false if none of them applied.
func (h *History) SubmitGrouped(name string, cmds ...Command) bool {
	if len(cmds) == 0 {
		return false
	}
	if len(cmds) == 1 {
		return h.Submit(cmds[0])
	}

	applied := false
	h.BeginGroup(name)
	for _, cmd := range cmds {
		if h.Submit(cmd) {
			applied = true
		}
	}
	h.EndGroup()
	return applied
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint creates a checkpoint at the current history position.
func (h *History) CreateCheckpoint() Checkpoint {
	return Checkpoint{undoDepth: len(h.undoStack)}
}

// UndoToCheckpoint undoes all operations since the checkpoint.
func (h *History) UndoToCheckpoint(cp Checkpoint) error {
	for h.UndoCount() > cp.undoDepth {
		if err := h.Undo(); err != nil {
			return err
		}
	}
	return nil
}
