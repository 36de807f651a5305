package vm

// ---------------------------------------------------------------------------
// Storage / Implementation / Self
// ---------------------------------------------------------------------------
//
// Every built-in type is described by three pieces:
//
//   - a *Type descriptor (type.go)
//   - a Storage[S] mapping the type to its representation S and knowing how
//     to read S out of a handle and build a handle from S
//   - an implementation struct embedding Implementation[S] whose methods are
//     the type's operations
//
// Operation methods take a Self[S] for the receiver. Because S is fixed per
// type, the handle encoding is resolved statically and operation bodies
// never inspect it.

// Self is the handle of an operation's receiver, typed by the receiver's
// representation. It does not own the value and is only valid for the
// duration of one call.
type Self[S any] struct {
	handle Value
}

// Handle returns the untyped handle.
func (s Self[S]) Handle() Value { return s.handle }

// Storage maps a built-in type to its representation S.
type Storage[S any] interface {
	// Type returns the descriptor of the type this storage serves.
	Type() *Type
	// Load reads the representation out of a handle of this type.
	Load(vm *VM, self Self[S]) S
	// Build makes a handle holding raw. It never fails for well-formed raw.
	Build(vm *VM, raw S) Self[S]
}

// Implementation wraps exactly one stored representation. It is immutable:
// operations produce new handles instead of changing it.
type Implementation[S any] struct {
	value S
}

// NewImplementation wraps value.
func NewImplementation[S any](value S) Implementation[S] {
	return Implementation[S]{value: value}
}

// Value returns the wrapped representation.
func (i Implementation[S]) Value() S { return i.value }

// facet couples a storage with the constructor of the type's implementation
// struct, so dispatch glue can be written once for every type.
type facet[S any, I any] struct {
	storage Storage[S]
	wrap    func(Implementation[S]) I
}

// selfOf returns the typed handle for v if v is a determined value of the
// facet's type.
func (f facet[S, I]) selfOf(vm *VM, v Value) (Self[S], bool) {
	if vm.TypeOf(v) != f.storage.Type() {
		return Self[S]{}, false
	}
	return Self[S]{handle: v}, true
}

// resolve loads the implementation behind self.
func (f facet[S, I]) resolve(vm *VM, self Self[S]) I {
	return f.wrap(NewImplementation(f.storage.Load(vm, self)))
}

// ---------------------------------------------------------------------------
// Operation definition helpers
// ---------------------------------------------------------------------------

// define0 registers a zero-argument operation on the facet's type.
func define0[S, I any](vm *VM, f facet[S, I], selector string, fn func(impl I, self Self[S], vm *VM) (Value, BuiltinResult)) {
	vm.vtableFor(f.storage.Type()).Add(vm.Selectors, NewOp0(selector, func(vm *VM, recv Value) (Value, BuiltinResult) {
		self := Self[S]{handle: recv}
		return fn(f.resolve(vm, self), self, vm)
	}))
}

// define1 registers a one-argument operation on the facet's type.
func define1[S, I any](vm *VM, f facet[S, I], selector string, fn func(impl I, self Self[S], vm *VM, arg Value) (Value, BuiltinResult)) {
	vm.vtableFor(f.storage.Type()).Add(vm.Selectors, NewOp1(selector, func(vm *VM, recv Value, arg Value) (Value, BuiltinResult) {
		self := Self[S]{handle: recv}
		return fn(f.resolve(vm, self), self, vm, arg)
	}))
}
