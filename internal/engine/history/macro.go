package history

import "fmt"

// Macro applies an ordered list of commands as a single unit.
type Macro struct {
	Base
	name string
	cmds []Command
}

// NewMacro creates a macro over cmds. If every command is already done, the
// macro is done as well. Mixing done and not-done commands panics.
func NewMacro(name string, cmds []Command, opts ...Option) *Macro {
	m := &Macro{
		Base: NewBase(opts...),
		name: name,
		cmds: append([]Command(nil), cmds...),
	}

	done := 0
	for _, c := range m.cmds {
		if c.IsDone() {
			done++
		}
	}
	switch {
	case done == 0:
	case done == len(m.cmds):
		m.MarkDone(true)
	default:
		Violation("NewMacro", ErrMixedState)
	}
	return m
}

// Commands returns the sub-commands in application order.
func (m *Macro) Commands() []Command {
	return append([]Command(nil), m.cmds...)
}

// Len returns the number of sub-commands.
func (m *Macro) Len() int { return len(m.cmds) }

// CanDo reports whether every validating sub-command would apply.
func (m *Macro) CanDo() bool {
	if len(m.cmds) == 0 {
		return false
	}
	for _, c := range m.cmds {
		if v, ok := c.(Validator); ok && !v.CanDo() {
			return false
		}
	}
	return true
}

// Do applies every sub-command in order.
func (m *Macro) Do() bool {
	m.BeginDo("Macro")

	if !m.CanDo() {
		return false
	}

	for i, c := range m.cmds {
		if c.Do() {
			continue
		}
		if i == 0 {
			return false
		}
		Violation("Macro.Do", fmt.Errorf("%w: %q step %d (%s)", ErrMacroPartiallyApplied, m.name, i, c.Name()))
	}
	return m.EndDo()
}

// Undo reverses every sub-command in reverse order.
func (m *Macro) Undo() {
	m.BeginUndo("Macro")
	for i := len(m.cmds) - 1; i >= 0; i-- {
		m.cmds[i].Undo()
	}
	m.EndUndo()
}

// Name returns the macro name.
func (m *Macro) Name() string { return m.name }

// Release releases every sub-command.
func (m *Macro) Release() {
	for _, c := range m.cmds {
		Release(c)
	}
}
