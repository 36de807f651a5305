package vm

import (
	"sync"
)

// ---------------------------------------------------------------------------
// Store: arena backing boxed values and dataflow variables
// ---------------------------------------------------------------------------

// node is one arena slot. Only variable cells change after allocation.
type node struct {
	typ     *Type
	payload any
}

// cell is the mutable part of a dataflow variable. A variable becomes bound
// exactly once.
type cell struct {
	bound bool
	value Value
}

// Store allocates boxed values. Handles to boxed values carry a node index.
// Nodes are never freed; reclamation belongs to a collector outside this
// package.
type Store struct {
	mu     sync.RWMutex
	nodes  []node
	onBind []func(variable Value)
}

// NewStore creates a store with room for capacity nodes before growing.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Store{nodes: make([]node, 0, capacity)}
}

// Len returns the number of allocated nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// OnBind registers fn to be called after any variable is bound.
// fn runs outside the store lock.
func (s *Store) OnBind(fn func(variable Value)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onBind = append(s.onBind, fn)
}

func (s *Store) alloc(t *Type, payload any) Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := uint32(len(s.nodes))
	s.nodes = append(s.nodes, node{typ: t, payload: payload})
	return FromRefIndex(idx)
}

func (s *Store) at(idx uint32) node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(idx) >= len(s.nodes) {
		panic("vm: dangling store reference")
	}
	return s.nodes[idx]
}

func (s *Store) typeAt(idx uint32) *Type {
	return s.at(idx).typ
}

func (s *Store) payload(idx uint32) any {
	return s.at(idx).payload
}

// cellState returns a snapshot of the variable at idx.
func (s *Store) cellState(idx uint32) cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.nodes[idx].payload.(*cell)
}

// bindCell binds the unbound variable at idx to value. Returns false if the
// variable was already bound.
func (s *Store) bindCell(idx uint32, value Value) bool {
	s.mu.Lock()
	c := s.nodes[idx].payload.(*cell)
	if c.bound {
		s.mu.Unlock()
		return false
	}
	c.bound = true
	c.value = value
	hooks := make([]func(Value), len(s.onBind))
	copy(hooks, s.onBind)
	s.mu.Unlock()

	v := FromRefIndex(idx)
	for _, fn := range hooks {
		fn(v)
	}
	return true
}

// Deref follows bound variables to the value they stand for. It returns the
// final handle and whether it is determined. An undetermined result is the
// unbound variable at the end of the chain.
func (vm *VM) Deref(v Value) (Value, bool) {
	for v.IsRef() {
		n := vm.store.at(v.RefIndex())
		if n.typ != VariableType {
			return v, true
		}
		c := vm.store.cellState(v.RefIndex())
		if !c.bound {
			return v, false
		}
		v = c.value
	}
	return v, true
}

// need dereferences every argument and returns the first unbound variable
// as a suspension. Operations call it before doing anything observable so
// that a suspended call can simply be retried.
func (vm *VM) need(args ...*Value) BuiltinResult {
	for _, a := range args {
		d, ok := vm.Deref(*a)
		if !ok {
			return SuspendOn(d)
		}
		*a = d
	}
	return Continue
}
