package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single chunk or function call.
const DefaultTimeout = 2 * time.Second

// State is a sandboxed Lua interpreter. gopher-lua states are not safe
// for concurrent use; State serializes every call behind its mutex, so
// Go callbacks invoked from Lua must not call back into the same State.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout bounds every call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// NewState creates a sandboxed state.
func NewState(opts ...StateOption) (*State, error) {
	s := &State{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	if err := openSafeLibraries(s.L); err != nil {
		s.L.Close()
		return nil, err
	}
	installSandbox(s.L)
	return s, nil
}

func openSafeLibraries(L *lua.LState) error {
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.LoadLibName, lua.OpenPackage},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("open %s: %w", lib.name, err)
		}
	}
	return nil
}

// Preload makes a module available to require.
func (s *State) Preload(name string, loader lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.L.PreloadModule(name, loader)
	allowModule(s.L, name)
}

// DoFile runs the file at path.
func (s *State) DoFile(path string) error {
	return s.Run(path, func(L *lua.LState) error { return L.DoFile(path) })
}

// DoString runs code. name labels errors.
func (s *State) DoString(name, code string) error {
	return s.Run(name, func(L *lua.LState) error { return L.DoString(code) })
}

// Call calls fn with args and returns its results.
func (s *State) Call(fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error) {
	var results []lua.LValue
	err := s.Run(FunctionName(fn), func(L *lua.LState) error {
		var err error
		results, err = CallFunction(L, fn, args...)
		return err
	})
	return results, err
}

// CallFunction calls fn on L in protected mode and returns its results.
// It is for use inside Run, where the state is already locked.
func CallFunction(L *lua.LState, fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error) {
	top := L.GetTop()
	if err := L.CallByParam(lua.P{Fn: fn, NRet: lua.MultRet, Protect: true}, args...); err != nil {
		return nil, err
	}
	n := L.GetTop() - top
	results := make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		results[i] = L.Get(top + i + 1)
	}
	L.Pop(n)
	return results, nil
}

// Run calls fn with the locked interpreter under the state's timeout.
// Errors are reported as a *ScriptError naming chunk. fn must not call
// other methods of s.
func (s *State) Run(chunk string, fn func(L *lua.LState) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = &ScriptError{Chunk: chunk, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err = fn(s.L); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrTimeout
		}
		return &ScriptError{Chunk: chunk, Err: err}
	}
	return nil
}

// FunctionName describes fn by its source position.
func FunctionName(fn *lua.LFunction) string {
	if fn.Proto != nil && fn.Proto.SourceName != "" {
		return fmt.Sprintf("%s:%d", fn.Proto.SourceName, fn.Proto.LineDefined)
	}
	return "function"
}

// Global returns a global value.
func (s *State) Global(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// Close releases the interpreter. Close is idempotent.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
