// Package history provides undo/redo for document edits.
//
// The history system uses the Command pattern: every edit is an object that
// can apply itself and exactly reverse itself. Key concepts:
//
// # Commands
//
// Commands implement the Command interface. Do returns false when the edit
// would change nothing; such a command must not reach the history. Calling
// Do on a done command, or Undo on a command that is not done, is a
// programming error and panics with an *InvariantError.
//
// Embedding Base supplies the done flag and the two flags every command
// fixes at construction: whether it is shown in the history and whether
// completing it suggests saving the document.
//
// # Macros
//
// A Macro applies an ordered list of commands as one unit and undoes them in
// reverse order:
//
//	m := history.NewMacro("Clone", []history.Command{add, sel})
//	h.Submit(m)
//
// # History Stack
//
// The History type manages the undo and redo stacks and owns every command
// handed to it. Commands dropped by truncation or Clear are released.
//
//	h := history.New(1000) // Max 1000 undo entries
//	h.Submit(cmd)
//	h.Undo()
//	h.Redo()
//
// # Command Grouping
//
// Multiple submitted commands can be grouped as a single undo unit:
//
//	h.BeginGroup("Hide walls")
//	// ... multiple submits ...
//	h.EndGroup()
//
// Or with a transaction:
//
//	err := h.Transaction("Hide walls", func() error {
//	    // ... multiple submits ...
//	    return nil
//	})
//
// # Thread Safety
//
// History is not safe for concurrent use. It is driven from the goroutine
// that owns the document.
package history
