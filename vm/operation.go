package vm

// Operation is a builtin operation stored in a type's vtable.
//
// Arity-specialized implementations avoid building closures over the
// argument slice for the common 0-2 argument cases.
type Operation interface {
	Invoke(vm *VM, self Value, args []Value) (Value, BuiltinResult)
	Name() string
	Arity() int
}

// Op0Func is an operation taking no arguments.
type Op0Func func(vm *VM, self Value) (Value, BuiltinResult)

// Op1Func is an operation taking one argument.
type Op1Func func(vm *VM, self Value, arg Value) (Value, BuiltinResult)

// Op2Func is an operation taking two arguments.
type Op2Func func(vm *VM, self Value, arg1, arg2 Value) (Value, BuiltinResult)

// OpNFunc is an operation taking any number of arguments.
type OpNFunc func(vm *VM, self Value, args []Value) (Value, BuiltinResult)

// ---------------------------------------------------------------------------
// Arity-specialized wrappers
// ---------------------------------------------------------------------------

// Op0 wraps a zero-argument operation.
type Op0 struct {
	name string
	fn   Op0Func
}

func (o *Op0) Invoke(vm *VM, self Value, args []Value) (Value, BuiltinResult) {
	return o.fn(vm, self)
}

func (o *Op0) Name() string { return o.name }
func (o *Op0) Arity() int   { return 0 }

// Op1 wraps a one-argument operation.
type Op1 struct {
	name string
	fn   Op1Func
}

func (o *Op1) Invoke(vm *VM, self Value, args []Value) (Value, BuiltinResult) {
	return o.fn(vm, self, args[0])
}

func (o *Op1) Name() string { return o.name }
func (o *Op1) Arity() int   { return 1 }

// Op2 wraps a two-argument operation.
type Op2 struct {
	name string
	fn   Op2Func
}

func (o *Op2) Invoke(vm *VM, self Value, args []Value) (Value, BuiltinResult) {
	return o.fn(vm, self, args[0], args[1])
}

func (o *Op2) Name() string { return o.name }
func (o *Op2) Arity() int   { return 2 }

// OpN wraps a variable-arity operation.
type OpN struct {
	name string
	fn   OpNFunc
}

func (o *OpN) Invoke(vm *VM, self Value, args []Value) (Value, BuiltinResult) {
	return o.fn(vm, self, args)
}

func (o *OpN) Name() string { return o.name }
func (o *OpN) Arity() int   { return -1 }

// ---------------------------------------------------------------------------
// Factory functions
// ---------------------------------------------------------------------------

// NewOp0 creates a zero-argument operation.
func NewOp0(name string, fn Op0Func) Operation {
	return &Op0{name: name, fn: fn}
}

// NewOp1 creates a one-argument operation.
func NewOp1(name string, fn Op1Func) Operation {
	return &Op1{name: name, fn: fn}
}

// NewOp2 creates a two-argument operation.
func NewOp2(name string, fn Op2Func) Operation {
	return &Op2{name: name, fn: fn}
}

// NewOpN creates a variable-arity operation.
func NewOpN(name string, fn OpNFunc) Operation {
	return &OpN{name: name, fn: fn}
}
