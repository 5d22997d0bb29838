package lua

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func TestNewState(t *testing.T) {
	state := NewState()
	defer state.Close()

	if state.IsClosed() {
		t.Error("NewState() returned closed state")
	}
	if state.Sandbox() == nil {
		t.Error("NewState() Sandbox() is nil")
	}
}

func TestStateDoString(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(context.Background(), "test", `x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNumber(2) {
		t.Errorf("GetGlobal(x) = %v, want 2", v)
	}
}

func TestStateSandbox(t *testing.T) {
	state := NewState()
	defer state.Close()

	for _, name := range []string{"io", "os", "debug", "package", "dofile", "loadfile", "load", "loadstring", "require"} {
		if v := state.GetGlobal(name); v != glua.LNil {
			t.Errorf("global %s = %v, want nil", name, v)
		}
	}
	for _, name := range []string{"string", "table", "math", "pairs", "print"} {
		if v := state.GetGlobal(name); v == glua.LNil {
			t.Errorf("global %s is nil", name)
		}
	}
}

func TestStatePrint(t *testing.T) {
	var out bytes.Buffer
	state := NewState(WithOutput(&out))
	defer state.Close()

	if err := state.DoString(context.Background(), "test", `print("a", 1, true)`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := out.String(); got != "a\t1\ttrue\n" {
		t.Errorf("print wrote %q", got)
	}
}

func TestStateScriptError(t *testing.T) {
	state := NewState()
	defer state.Close()

	err := state.DoString(context.Background(), "boom.lua", "local x = 1\nerror('bad thing')")
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("DoString() error = %v, want *ScriptError", err)
	}
	if se.Script != "boom.lua" {
		t.Errorf("Script = %q", se.Script)
	}
	if se.Line != 2 {
		t.Errorf("Line = %d, want 2", se.Line)
	}
	if se.Message != "bad thing" {
		t.Errorf("Message = %q", se.Message)
	}
}

func TestStateSyntaxError(t *testing.T) {
	state := NewState()
	defer state.Close()

	err := state.DoString(context.Background(), "broken.lua", "x = = 1")
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("DoString() error = %v, want *ScriptError", err)
	}
	if se.Script != "broken.lua" {
		t.Errorf("Script = %q", se.Script)
	}
}

func TestStateTimeout(t *testing.T) {
	state := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer state.Close()

	start := time.Now()
	err := state.DoString(context.Background(), "loop.lua", `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("DoString() error = %v, want ErrExecutionTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}

	// The state is usable after a timeout.
	if err := state.DoString(context.Background(), "after.lua", `y = 1`); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestStateCanceled(t *testing.T) {
	state := NewState()
	defer state.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := state.DoString(ctx, "loop.lua", `while true do end`)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("DoString() error = %v, want context.Canceled", err)
	}
}

func TestSandboxInstructionCount(t *testing.T) {
	s := NewSandbox(nil, 3)
	for i := 0; i < 3; i++ {
		if s.IncrementInstructions(1) {
			t.Fatalf("limit exceeded after %d", i+1)
		}
	}
	if !s.IncrementInstructions(1) {
		t.Error("limit not exceeded after 4")
	}
	if s.InstructionCount() != 4 {
		t.Errorf("InstructionCount() = %d", s.InstructionCount())
	}
	s.ResetInstructionCount()
	if s.InstructionCount() != 0 {
		t.Errorf("InstructionCount() after reset = %d", s.InstructionCount())
	}

	unlimited := NewSandbox(nil, 0)
	if unlimited.IncrementInstructions(1 << 40) {
		t.Error("unlimited sandbox exceeded")
	}
}

func TestStateClosed(t *testing.T) {
	state := NewState()
	state.Close()
	state.Close()

	if !state.IsClosed() {
		t.Error("IsClosed() = false")
	}
	if err := state.DoString(context.Background(), "x", "x = 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() error = %v, want ErrStateClosed", err)
	}
}

func TestStateSetLimits(t *testing.T) {
	state := NewState(WithInstructionLimit(0))
	defer state.Close()

	if state.Sandbox().IncrementInstructions(100) {
		t.Fatal("unlimited state exceeded")
	}
	state.SetLimits(time.Second, 1)
	state.Sandbox().ResetInstructionCount()
	if !state.Sandbox().IncrementInstructions(2) {
		t.Error("limit not applied")
	}
}
