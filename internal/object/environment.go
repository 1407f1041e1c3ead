package object

import "brewin/internal/ast"

// globalScopes is how many of main's outermost scopes act as the global
// scope: the parameter scope and the top level of main's body.
const globalScopes = 2

type Binding struct {
	Value Object
	Type  ast.TypeName // Untyped accepts any value
}

// Scope is one block's variables. A frozen scope is shared with at least one
// snapshot and is cloned before it is written.
type Scope struct {
	vars   map[string]Binding
	frozen bool
}

func newScope() *Scope {
	return &Scope{vars: make(map[string]Binding)}
}

func (s *Scope) clone() *Scope {
	vars := make(map[string]Binding, len(s.vars))
	for k, v := range s.vars {
		vars[k] = v
	}
	return &Scope{vars: vars}
}

// Activation holds the block scopes of one function call.
type Activation struct {
	Function string
	scopes   []*Scope
}

func (a *Activation) find(name string, limit int) (int, bool) {
	if limit > len(a.scopes) {
		limit = len(a.scopes)
	}
	for i := limit - 1; i >= 0; i-- {
		if _, ok := a.scopes[i].vars[name]; ok {
			return i, true
		}
	}
	return -1, false
}

// writable returns the scope at i, cloning it first when it is shared.
func (a *Activation) writable(i int) *Scope {
	s := a.scopes[i]
	if s.frozen {
		s = s.clone()
		a.scopes[i] = s
	}
	return s
}

func (a *Activation) freeze() *Activation {
	scopes := make([]*Scope, len(a.scopes))
	for i, s := range a.scopes {
		s.frozen = true
		scopes[i] = s
	}
	return &Activation{Function: a.Function, scopes: scopes}
}

type Environment struct {
	frames []*Activation

	useGlobals bool
	globals    *Activation // main's activation when useGlobals is set
}

func NewEnvironment() *Environment {
	return &Environment{}
}

// UseGlobalScope makes the outermost scopes of the first activation visible
// from every later activation as a fallback.
func (e *Environment) UseGlobalScope() {
	e.useGlobals = true
}

func (e *Environment) current() *Activation {
	return e.frames[len(e.frames)-1]
}

// Depth is the number of live activations.
func (e *Environment) Depth() int {
	return len(e.frames)
}

func (e *Environment) PushFunction(name string) {
	a := &Activation{Function: name, scopes: []*Scope{newScope()}}
	e.frames = append(e.frames, a)
	if e.useGlobals && e.globals == nil {
		e.globals = a
	}
}

func (e *Environment) PopFunction() {
	if len(e.frames) == 0 {
		return
	}
	top := e.current()
	e.frames[len(e.frames)-1] = nil
	e.frames = e.frames[:len(e.frames)-1]
	if top == e.globals {
		e.globals = nil
	}
}

func (e *Environment) PushBlock() {
	a := e.current()
	a.scopes = append(a.scopes, newScope())
}

// PopBlock removes the innermost scope. It refuses to leave an activation
// without any scope.
func (e *Environment) PopBlock() bool {
	a := e.current()
	if len(a.scopes) <= 1 {
		return false
	}
	a.scopes[len(a.scopes)-1] = nil
	a.scopes = a.scopes[:len(a.scopes)-1]
	return true
}

// Create binds name in the innermost scope. It fails only when that scope
// already holds the name.
func (e *Environment) Create(name string, value Object, t ast.TypeName) bool {
	a := e.current()
	i := len(a.scopes) - 1
	if _, exists := a.scopes[i].vars[name]; exists {
		return false
	}
	a.writable(i).vars[name] = Binding{Value: value, Type: t}
	return true
}

// Get searches the current activation innermost first, then the global
// scope if enabled. It never looks into a caller's activation.
func (e *Environment) Get(name string) (Binding, bool) {
	a, i, ok := e.resolve(name)
	if !ok {
		return Binding{}, false
	}
	return a.scopes[i].vars[name], true
}

// Set overwrites the value of an existing binding, keeping its declared type.
func (e *Environment) Set(name string, value Object) bool {
	a, i, ok := e.resolve(name)
	if !ok {
		return false
	}
	s := a.writable(i)
	b := s.vars[name]
	b.Value = value
	s.vars[name] = b
	return true
}

func (e *Environment) resolve(name string) (*Activation, int, bool) {
	if len(e.frames) == 0 {
		return nil, -1, false
	}
	a := e.current()
	if i, ok := a.find(name, len(a.scopes)); ok {
		return a, i, true
	}
	if e.globals != nil && e.globals != a {
		if i, ok := e.globals.find(name, globalScopes); ok {
			return e.globals, i, true
		}
	}
	return nil, -1, false
}

// Snapshot returns an environment that sees the current bindings as they are
// now. Scopes are shared copy-on-write, so later writes on either side are
// invisible to the other. Struct instances are shared.
func (e *Environment) Snapshot() *Environment {
	snap := &Environment{useGlobals: e.useGlobals}
	if len(e.frames) == 0 {
		return snap
	}
	a := e.current()
	frozen := a.freeze()
	snap.frames = []*Activation{frozen}
	switch {
	case e.globals == a:
		snap.globals = frozen
	case e.globals != nil:
		snap.globals = e.globals.freeze()
	}
	return snap
}
