// Package scope implements the interpreter's variable scoping: a stack of
// frames over a single flat binding table.
//
// Binding a name overwrites any existing value of that name regardless of the
// frame it came from. Each frame remembers the names it introduced, and
// releasing a frame unbinds exactly those names. Prior values are not
// restored: if an inner frame rebinds an outer name, the name is unbound once
// the inner frame is released.
package scope

// Stack is a lexical frame stack. It is not safe for concurrent use; every
// interpreter owns its own Stack.
type Stack struct {
	vars   map[string]any
	frames [][]string
	root   any
}

// New returns a Stack holding a single root frame.
func New() *Stack {
	return &Stack{
		vars:   make(map[string]any),
		frames: make([][]string, 1, 8),
	}
}

// SetRoot records the root data context of the owning interpreter.
func (s *Stack) SetRoot(root any) {
	s.root = root
}

// Root returns the root data context.
func (s *Stack) Root() any {
	return s.root
}

// Get returns the value bound to name.
func (s *Stack) Get(name string) (any, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Has reports whether name is bound.
func (s *Stack) Has(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Set binds name in the flat table and records it on the innermost frame.
func (s *Stack) Set(name string, value any) {
	s.vars[name] = value
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], name)
}

// Unset removes the binding for name. The frame record is left in place;
// releasing the frame later is a no-op for names already gone.
func (s *Stack) Unset(name string) {
	delete(s.vars, name)
}

// Alloc opens a new frame.
func (s *Stack) Alloc() {
	s.frames = append(s.frames, nil)
}

// Release closes the innermost frame, unbinding every name it introduced.
// The root frame is never released.
func (s *Stack) Release() {
	if len(s.frames) <= 1 {
		return
	}
	top := len(s.frames) - 1
	for _, name := range s.frames[top] {
		delete(s.vars, name)
	}
	s.frames[top] = nil
	s.frames = s.frames[:top]
}

// Depth returns the number of open frames, root frame included.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Bindings returns the live binding table. Callers must treat it as
// read-only.
func (s *Stack) Bindings() map[string]any {
	return s.vars
}
