package interp

// Scope is a mapping from identifier to Reference, with an optional parent
// link. Lookup walks from innermost to outermost. Unlike go-dws's
// case-insensitive ident.Map-backed Environment, curria is case-sensitive
// (the original keyword table only ever matches lowercase spellings), so
// this is a plain Go map keyed on the exact identifier spelling.
type Scope struct {
	vars   map[string]*Reference
	parent *Scope
}

// NewScope creates an empty scope enclosed by parent (nil for the root).
func NewScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]*Reference), parent: parent}
}

// Get walks the scope chain innermost-first and returns the Reference bound
// to name, if any.
func (s *Scope) Get(name string) (*Reference, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if ref, ok := scope.vars[name]; ok {
			return ref, true
		}
	}
	return nil, false
}

// GetLocal looks up name only in this scope, without searching parents.
func (s *Scope) GetLocal(name string) (*Reference, bool) {
	ref, ok := s.vars[name]
	return ref, ok
}

// Define binds name to ref in this scope, replacing any existing binding.
func (s *Scope) Define(name string, ref *Reference) {
	s.vars[name] = ref
}

// CallContext holds the stack of scopes belonging to one executing function
// invocation, plus a fixed reference to the shared global scope consulted
// as the final fallback during name resolution.
type CallContext struct {
	current *Scope
	global  *Scope
}

// NewCallContext creates a call context with one empty top-level scope
// enclosed directly by global.
func NewCallContext(global *Scope) *CallContext {
	return &CallContext{current: NewScope(nil), global: global}
}

// EnterScope pushes a fresh inner scope, entered on every block.
func (c *CallContext) EnterScope() {
	c.current = NewScope(c.current)
}

// LeaveScope pops the innermost scope, exited on every block.
func (c *CallContext) LeaveScope() {
	c.current = c.current.parent
}

// Lookup resolves name against the call-local scope chain and then the
// global scope.
func (c *CallContext) Lookup(name string) (*Reference, bool) {
	if ref, ok := c.current.Get(name); ok {
		return ref, true
	}
	return c.global.Get(name)
}

// Define binds name in the innermost current scope of this call context.
func (c *CallContext) Define(name string, ref *Reference) {
	c.current.Define(name, ref)
}
