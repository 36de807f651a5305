package vm

import (
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// VM: the execution context threaded through every operation
// ---------------------------------------------------------------------------

// OverflowPolicy says what SmallInt arithmetic does when a result leaves
// the inline range.
type OverflowPolicy uint8

const (
	// OverflowPromote boxes the result as a BigInt.
	OverflowPromote OverflowPolicy = iota
	// OverflowRaise raises overflow(Result).
	OverflowRaise
)

// Options configures a VM.
type Options struct {
	StoreCapacity int
	Overflow      OverflowPolicy
	Logger        commonlog.Logger
}

// VM is the execution context passed to builtin operations. It gives access
// to the store and the dispatch tables. Operations never retain it beyond
// a call.
type VM struct {
	Selectors *SelectorTable
	Atoms     *AtomTable

	store    *Store
	vtables  map[*Type]*VTable
	overflow OverflowPolicy
	log      commonlog.Logger
}

// NewVM creates and bootstraps a VM with default options.
func NewVM() *VM {
	return NewVMWithOptions(Options{})
}

// NewVMWithOptions creates and bootstraps a VM.
func NewVMWithOptions(opts Options) *VM {
	logger := opts.Logger
	if logger == nil {
		logger = commonlog.GetLogger("mozart.vm")
	}
	vm := &VM{
		Selectors: NewSelectorTable(),
		Atoms:     NewAtomTable(),
		store:     NewStore(opts.StoreCapacity),
		vtables:   make(map[*Type]*VTable, Types.Len()),
		overflow:  opts.Overflow,
		log:       logger,
	}
	vm.bootstrap()
	return vm
}

func (vm *VM) bootstrap() {
	for _, t := range Types.All() {
		vm.vtables[t] = NewVTable(t)
	}

	vm.registerBooleanOperations()
	vm.registerSmallIntOperations()
	vm.registerBigIntOperations()
	vm.registerFloatOperations()
	vm.registerAtomOperations()
	vm.registerTupleOperations()
	vm.registerVariableOperations()

	// Structural equality is defined for every type.
	for _, t := range Types.All() {
		if t == VariableType {
			continue
		}
		vm.vtables[t].Add(vm.Selectors, NewOp1("==", func(vm *VM, self Value, arg Value) (Value, BuiltinResult) {
			eq, res := vm.Equal(self, arg)
			if !res.IsContinue() {
				return Unit, res
			}
			return FromBool(eq), Continue
		}))
	}

	vm.log.Debugf("bootstrapped %d types, %d selectors", Types.Len(), vm.Selectors.Len())
}

// vtableFor returns the dispatch table for t.
func (vm *VM) vtableFor(t *Type) *VTable {
	vt, ok := vm.vtables[t]
	if !ok {
		vt = NewVTable(t)
		vm.vtables[t] = vt
	}
	return vt
}

// VTable returns the dispatch table for t, or nil if t is unknown.
func (vm *VM) VTable(t *Type) *VTable {
	return vm.vtables[t]
}

// Store returns the store backing boxed values.
func (vm *VM) Store() *Store {
	return vm.store
}

// Logger returns the VM's logger.
func (vm *VM) Logger() commonlog.Logger {
	return vm.log
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

// Send invokes the operation named selector on self.
//
// Variables answer their own operations (bind, isDet, wait) without being
// dereferenced. Any other operation on an unbound variable suspends on it.
func (vm *VM) Send(self Value, selector string, args ...Value) (Value, BuiltinResult) {
	id := vm.Selectors.Lookup(selector)

	if self.IsRef() && vm.TypeOf(self) == VariableType {
		if op := vm.vtables[VariableType].Lookup(id); op != nil {
			return vm.invoke(op, self, selector, args)
		}
	}

	recv, ok := vm.Deref(self)
	if !ok {
		return Unit, SuspendOn(recv)
	}
	t := vm.TypeOf(recv)
	op := vm.vtables[t].Lookup(id)
	if op == nil {
		return Unit, vm.noSuchOperation(t, selector)
	}
	return vm.invoke(op, recv, selector, args)
}

func (vm *VM) invoke(op Operation, self Value, selector string, args []Value) (Value, BuiltinResult) {
	if a := op.Arity(); a >= 0 && a != len(args) {
		return Unit, vm.arityMismatch(selector, a, len(args))
	}
	return op.Invoke(vm, self, args)
}

// Responds reports whether values of type t have an operation named selector.
func (vm *VM) Responds(t *Type, selector string) bool {
	vt := vm.vtables[t]
	return vt != nil && vt.Has(vm.Selectors.Lookup(selector))
}
