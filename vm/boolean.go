package vm

// ---------------------------------------------------------------------------
// Boolean: inline, stored as a Go bool
// ---------------------------------------------------------------------------

// BoolOrNotBool is the answer of ValueOrNotBool.
type BoolOrNotBool uint8

const (
	// BFalse is the answer for false.
	BFalse BoolOrNotBool = iota
	// BTrue is the answer for true.
	BTrue
	// BNotBool is the answer for any determined non-Boolean value.
	BNotBool
)

func (b BoolOrNotBool) String() string {
	switch b {
	case BFalse:
		return "bFalse"
	case BTrue:
		return "bTrue"
	}
	return "bNotBool"
}

type booleanStorage struct{}

func (booleanStorage) Type() *Type { return BooleanType }

func (booleanStorage) Load(_ *VM, self Self[bool]) bool {
	return self.handle == True
}

func (booleanStorage) Build(_ *VM, raw bool) Self[bool] {
	return Self[bool]{handle: FromBool(raw)}
}

// BooleanStorage maps Boolean to bool.
var BooleanStorage Storage[bool] = booleanStorage{}

// Boolean is the implementation facet of Boolean values.
//
// ValueOrNotBool returns a Go-typed answer, so it is not in the vtable and
// cannot be reached through Send; call VM.ValueOrNotBool instead.
type Boolean struct {
	Implementation[bool]
}

var booleanFacet = facet[bool, Boolean]{
	storage: BooleanStorage,
	wrap:    func(i Implementation[bool]) Boolean { return Boolean{i} },
}

// BuildBoolean returns the canonical handle for b. Nothing is allocated.
func BuildBoolean(vm *VM, b bool) Value {
	return BooleanStorage.Build(vm, b).Handle()
}

// ValueOrNotBool reports the receiver's truth value.
func (b Boolean) ValueOrNotBool(self Self[bool], vm *VM) (BoolOrNotBool, BuiltinResult) {
	if b.Value() {
		return BTrue, Continue
	}
	return BFalse, Continue
}

// Not returns the negation of the receiver.
func (b Boolean) Not(self Self[bool], vm *VM) (Value, BuiltinResult) {
	return BuildBoolean(vm, !b.Value()), Continue
}

// And returns the conjunction. Both operands are evaluated.
func (b Boolean) And(self Self[bool], vm *VM, other Value) (Value, BuiltinResult) {
	o, res := vm.boolArg(other)
	if !res.IsContinue() {
		return Unit, res
	}
	return BuildBoolean(vm, b.Value() && o), Continue
}

// Or returns the disjunction. Both operands are evaluated.
func (b Boolean) Or(self Self[bool], vm *VM, other Value) (Value, BuiltinResult) {
	o, res := vm.boolArg(other)
	if !res.IsContinue() {
		return Unit, res
	}
	return BuildBoolean(vm, b.Value() || o), Continue
}

// Xor returns the exclusive or.
func (b Boolean) Xor(self Self[bool], vm *VM, other Value) (Value, BuiltinResult) {
	o, res := vm.boolArg(other)
	if !res.IsContinue() {
		return Unit, res
	}
	return BuildBoolean(vm, b.Value() != o), Continue
}

// boolArg reads a Boolean argument, suspending on an unbound variable and
// raising a type error for anything that is not a Boolean.
func (vm *VM) boolArg(v Value) (bool, BuiltinResult) {
	if res := vm.need(&v); !res.IsContinue() {
		return false, res
	}
	self, ok := booleanFacet.selfOf(vm, v)
	if !ok {
		return false, vm.TypeError(BooleanType, v)
	}
	return booleanFacet.resolve(vm, self).Value(), Continue
}

// ValueOrNotBool is defined on every handle: BTrue or BFalse for Booleans,
// BNotBool for any other determined value, and a suspension when v is an
// unbound variable.
func (vm *VM) ValueOrNotBool(v Value) (BoolOrNotBool, BuiltinResult) {
	d, ok := vm.Deref(v)
	if !ok {
		return BNotBool, SuspendOn(d)
	}
	self, isBool := booleanFacet.selfOf(vm, d)
	if !isBool {
		return BNotBool, Continue
	}
	return booleanFacet.resolve(vm, self).ValueOrNotBool(self, vm)
}

func (vm *VM) registerBooleanOperations() {
	define0(vm, booleanFacet, "not", Boolean.Not)
	define1(vm, booleanFacet, "and", Boolean.And)
	define1(vm, booleanFacet, "or", Boolean.Or)
	define1(vm, booleanFacet, "xor", Boolean.Xor)
}
