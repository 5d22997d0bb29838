package history

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxEntries is the undo depth used when none is configured.
const DefaultMaxEntries = 1000

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   Command
	timestamp time.Time
}

// EntryInfo describes a command held by the history.
type EntryInfo struct {
	ID        uuid.UUID
	Name      string
	Done      bool
	Timestamp time.Time
}

func (e *undoEntry) info() EntryInfo {
	return EntryInfo{
		ID:        e.command.ID(),
		Name:      e.command.Name(),
		Done:      e.command.IsDone(),
		Timestamp: e.timestamp,
	}
}

// EventKind identifies a history change.
type EventKind uint8

const (
	EventSubmit EventKind = iota
	EventReject
	EventUndo
	EventRedo
	EventClear
	EventSave
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventSubmit:
		return "submit"
	case EventReject:
		return "reject"
	case EventUndo:
		return "undo"
	case EventRedo:
		return "redo"
	case EventClear:
		return "clear"
	case EventSave:
		return "save"
	default:
		return "unknown"
	}
}

// Event is passed to change listeners.
type Event struct {
	Kind    EventKind
	Command Command // nil for EventClear and EventSave
}

// History manages undo/redo state for a document.
type History struct {
	undoStack []*undoEntry
	redoStack []*undoEntry

	// Grouping state
	groupMarks []int // len(groupCmds) at each open BeginGroup
	groupName  string
	groupCmds  []Command

	// Save point: undo depth at the last MarkSaved.
	savedAt  int
	saveLost bool

	listeners []func(Event)

	// Configuration
	maxEntries int
}

// New creates a new history manager.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// OnChange registers fn to be called after every history change.
func (h *History) OnChange(fn func(Event)) {
	h.listeners = append(h.listeners, fn)
}

func (h *History) emit(kind EventKind, cmd Command) {
	for _, fn := range h.listeners {
		fn(Event{Kind: kind, Command: cmd})
	}
}

// Submit applies cmd unless it is already done and takes ownership of it.
// It returns false, and releases cmd, if Do reported a no-op.
// Submitting clears the redo stack.
func (h *History) Submit(cmd Command) bool {
	if !cmd.IsDone() && !cmd.Do() {
		Release(cmd)
		h.emit(EventReject, cmd)
		return false
	}

	if len(h.groupMarks) > 0 {
		h.groupCmds = append(h.groupCmds, cmd)
		return true
	}

	h.push(cmd)
	h.emit(EventSubmit, cmd)
	return true
}

// push adds a done command to the undo stack.
func (h *History) push(cmd Command) {
	// The save point is lost if it lies in the redo tail.
	if h.savedAt > len(h.undoStack) {
		h.saveLost = true
	}

	for _, e := range h.redoStack {
		Release(e.command)
	}
	h.redoStack = nil

	h.undoStack = append(h.undoStack, &undoEntry{
		command:   cmd,
		timestamp: time.Now(),
	})
	h.trim()
}

// trim enforces the maximum number of undo entries.
func (h *History) trim() {
	if len(h.undoStack) <= h.maxEntries {
		return
	}
	excess := len(h.undoStack) - h.maxEntries
	for _, e := range h.undoStack[:excess] {
		Release(e.command)
	}
	h.undoStack = append([]*undoEntry(nil), h.undoStack[excess:]...)

	h.savedAt -= excess
	if h.savedAt < 0 {
		h.saveLost = true
	}
}

// Undo undoes the last command.
func (h *History) Undo() error {
	if len(h.groupMarks) > 0 {
		return ErrGroupOpen
	}
	if len(h.undoStack) == 0 {
		return ErrNothingToUndo
	}

	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	entry.command.Undo()
	h.redoStack = append(h.redoStack, entry)

	h.emit(EventUndo, entry.command)
	return nil
}

// Redo redoes the last undone command.
func (h *History) Redo() error {
	if len(h.groupMarks) > 0 {
		return ErrGroupOpen
	}
	if len(h.redoStack) == 0 {
		return ErrNothingToRedo
	}

	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	if !entry.command.Do() {
		Violation("History.Redo", ErrRedoRefused)
	}
	h.undoStack = append(h.undoStack, entry)

	h.emit(EventRedo, entry.command)
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	return len(h.redoStack)
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (EntryInfo, bool) {
	if len(h.undoStack) == 0 {
		return EntryInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (EntryInfo, bool) {
	if len(h.redoStack) == 0 {
		return EntryInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// Entries lists the commands shown in the history, oldest first.
// Applied commands come before undone ones.
func (h *History) Entries() []EntryInfo {
	var out []EntryInfo
	for _, e := range h.undoStack {
		if e.command.ShowInHistory() {
			out = append(out, e.info())
		}
	}
	for i := len(h.redoStack) - 1; i >= 0; i-- {
		if e := h.redoStack[i]; e.command.ShowInHistory() {
			out = append(out, e.info())
		}
	}
	return out
}

// MarkSaved records the current position as the saved state.
func (h *History) MarkSaved() {
	h.savedAt = len(h.undoStack)
	h.saveLost = false
	h.emit(EventSave, nil)
}

// Modified reports whether a command that suggests saving lies between the
// save point and the current position.
func (h *History) Modified() bool {
	if h.saveLost {
		return true
	}

	cur := len(h.undoStack)
	var between []*undoEntry
	if cur >= h.savedAt {
		between = h.undoStack[h.savedAt:]
	} else {
		between = h.redoStack[len(h.redoStack)-(h.savedAt-cur):]
	}
	for _, e := range between {
		if e.command.SuggestsSave() {
			return true
		}
	}
	return false
}

// Clear removes and releases all undo/redo history.
// The modified state is kept.
func (h *History) Clear() {
	modified := h.Modified()

	for _, e := range h.undoStack {
		Release(e.command)
	}
	for _, e := range h.redoStack {
		Release(e.command)
	}
	for _, c := range h.groupCmds {
		Release(c)
	}

	h.undoStack = nil
	h.redoStack = nil
	h.groupMarks = nil
	h.groupCmds = nil
	h.savedAt = 0
	h.saveLost = modified

	h.emit(EventClear, nil)
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are released.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	h.maxEntries = max
	h.trim()
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	return h.maxEntries
}
