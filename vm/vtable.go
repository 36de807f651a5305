package vm

// VTable holds the operations of one built-in type, indexed by selector ID.
//
// There is no parent chain: built-in types do not inherit from each other,
// so a miss is final.
type VTable struct {
	typ *Type
	ops []Operation
}

// NewVTable creates an empty vtable for t.
func NewVTable(t *Type) *VTable {
	return &VTable{
		typ: t,
		ops: make([]Operation, 0, 16),
	}
}

// Type returns the type this vtable serves.
func (vt *VTable) Type() *Type {
	return vt.typ
}

// Lookup finds an operation by selector ID. Returns nil if none.
func (vt *VTable) Lookup(selector int) Operation {
	if selector >= 0 && selector < len(vt.ops) {
		return vt.ops[selector]
	}
	return nil
}

// Set adds or replaces the operation at the given selector ID.
func (vt *VTable) Set(selector int, op Operation) {
	if selector >= len(vt.ops) {
		grown := make([]Operation, selector+1)
		copy(grown, vt.ops)
		vt.ops = grown
	}
	vt.ops[selector] = op
}

// Add interns the operation's name and stores it.
func (vt *VTable) Add(selectors *SelectorTable, op Operation) {
	vt.Set(selectors.Intern(op.Name()), op)
}

// Has reports whether an operation exists for selector.
func (vt *VTable) Has(selector int) bool {
	return vt.Lookup(selector) != nil
}

// Operations returns the non-nil operations keyed by selector ID.
func (vt *VTable) Operations() map[int]Operation {
	out := make(map[int]Operation)
	for i, op := range vt.ops {
		if op != nil {
			out[i] = op
		}
	}
	return out
}
