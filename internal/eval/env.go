package eval

import "github.com/reproducible-bioinformatics/schemer/internal/value"

// Env is one frame of the lexical stack described in §4.4: a mapping from
// Symbol to Value with a parent link. Frames are ordinary Go structs with
// a pointer to their parent, so a Compound that closes over an Env and is
// later stored back into that same Env by set! forms a cycle that Go's
// garbage collector reclaims for free — the "reference-counted environment
// frames with a parent link" option §9 recommends over cloning the whole
// stack on every closure.
type Env struct {
	vars  map[string]value.Value
	outer *Env
}

// NewEnv builds a fresh frame chained to outer (nil for the global frame).
func NewEnv(outer *Env) *Env {
	return &Env{vars: make(map[string]value.Value), outer: outer}
}

// Lookup searches this frame then its ancestors, top-down, matching the
// "resolve against the lexical stack top-down, then the global env" rule
// from §4.4 — the global frame is simply the Env at the root of the chain.
func (e *Env) Lookup(name string) (value.Value, bool) {
	for frame := e; frame != nil; frame = frame.outer {
		if v, ok := frame.vars[name]; ok {
			return v, true
		}
	}
	return value.Unspecified, false
}

// Define binds name in this exact frame, shadowing any outer binding.
func (e *Env) Define(name string, v value.Value) {
	e.vars[name] = v
}

// Set mutates the nearest existing binding for name, searching outward
// from this frame. It reports false if name is unbound anywhere in the
// chain, per set!'s "unresolved symbol" error condition.
func (e *Env) Set(name string, v value.Value) bool {
	for frame := e; frame != nil; frame = frame.outer {
		if _, ok := frame.vars[name]; ok {
			frame.vars[name] = v
			return true
		}
	}
	return false
}
