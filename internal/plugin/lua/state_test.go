package lua

import (
	"errors"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func newTestState(t *testing.T, opts ...StateOption) *State {
	t.Helper()
	st, err := NewState(opts...)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestDoString(t *testing.T) {
	st := newTestState(t)
	if err := st.DoString("test", `x = 1 + 1`); err != nil {
		t.Fatal(err)
	}
	if v, ok := st.Global("x").(glua.LNumber); !ok || v != 2 {
		t.Errorf("x = %v, want 2", st.Global("x"))
	}
}

func TestSyntaxError(t *testing.T) {
	st := newTestState(t)
	err := st.DoString("broken", `this is not lua`)
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScriptError, got %v", err)
	}
	if se.Chunk != "broken" {
		t.Errorf("Chunk = %q", se.Chunk)
	}
}

func TestCall(t *testing.T) {
	st := newTestState(t)
	if err := st.DoString("test", `function add(a, b) return a + b, "done" end`); err != nil {
		t.Fatal(err)
	}
	fn := st.Global("add").(*glua.LFunction)
	got, err := st.Call(fn, glua.LNumber(2), glua.LNumber(3))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != glua.LNumber(5) || got[1] != glua.LString("done") {
		t.Errorf("Call() = %v", got)
	}

	if err := st.DoString("test", `function fail() error("nope") end`); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Call(st.Global("fail").(*glua.LFunction)); err == nil {
		t.Error("expected runtime error")
	}
}

func TestTimeout(t *testing.T) {
	st := newTestState(t, WithTimeout(50*time.Millisecond))
	start := time.Now()
	err := st.DoString("loop", `while true do end`)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout was not enforced promptly")
	}
	// The state stays usable.
	if err := st.DoString("after", `y = 1`); err != nil {
		t.Errorf("state unusable after timeout: %v", err)
	}
}

func TestClose(t *testing.T) {
	st := newTestState(t)
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	if !st.IsClosed() {
		t.Error("IsClosed() = false")
	}
	if err := st.DoString("x", `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}
	if err := st.Close(); err != nil {
		t.Error("second Close should be a no-op")
	}
}
