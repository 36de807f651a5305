package vm

// ---------------------------------------------------------------------------
// Variable: boxed dataflow variable, bound at most once
// ---------------------------------------------------------------------------

// VariableState is a snapshot of a variable cell.
type VariableState struct {
	Bound bool
	Value Value
}

type variableStorage struct{}

func (variableStorage) Type() *Type { return VariableType }

func (variableStorage) Load(vm *VM, self Self[VariableState]) VariableState {
	c := vm.store.cellState(self.handle.RefIndex())
	return VariableState{Bound: c.bound, Value: c.value}
}

func (variableStorage) Build(vm *VM, raw VariableState) Self[VariableState] {
	return Self[VariableState]{handle: vm.store.alloc(VariableType, &cell{bound: raw.Bound, value: raw.Value})}
}

// VariableStorage maps Variable to its cell state.
var VariableStorage Storage[VariableState] = variableStorage{}

// Variable is the implementation facet of dataflow variables. The wrapped
// state is the snapshot taken when the operation was dispatched.
type Variable struct {
	Implementation[VariableState]
}

var variableFacet = facet[VariableState, Variable]{
	storage: VariableStorage,
	wrap:    func(i Implementation[VariableState]) Variable { return Variable{i} },
}

// NewVariable creates a fresh unbound variable.
func NewVariable(vm *VM) Value {
	return VariableStorage.Build(vm, VariableState{}).Handle()
}

// IsDet answers whether the variable is determined, looking through
// variables it has been bound to. Never suspends.
func (v Variable) IsDet(self Self[VariableState], vm *VM) (Value, BuiltinResult) {
	_, ok := vm.Deref(self.Handle())
	return FromBool(ok), Continue
}

// Wait returns the value once determined and suspends until then.
func (v Variable) Wait(self Self[VariableState], vm *VM) (Value, BuiltinResult) {
	d, ok := vm.Deref(self.Handle())
	if !ok {
		return Unit, SuspendOn(d)
	}
	return d, Continue
}

// Bind binds the variable to value. See VM.Bind.
func (v Variable) Bind(self Self[VariableState], vm *VM, value Value) (Value, BuiltinResult) {
	if res := vm.Bind(self.Handle(), value); !res.IsContinue() {
		return Unit, res
	}
	return Unit, Continue
}

// Bind makes left and right stand for the same value.
//
//   - an unbound side is bound to the other side
//   - two unbound variables are linked; waiters on either wake up
//   - two determined values must be equal, otherwise failure(Left Right)
//     is raised; comparing them may suspend on unbound parts of tuples
//
// Nested variables inside tuples are compared, not unified.
func (vm *VM) Bind(left, right Value) BuiltinResult {
	for {
		l, lok := vm.Deref(left)
		r, rok := vm.Deref(right)
		switch {
		case !lok && !rok && l == r:
			return Continue
		case !lok:
			if vm.store.bindCell(l.RefIndex(), r) {
				return Continue
			}
		case !rok:
			if vm.store.bindCell(r.RefIndex(), l) {
				return Continue
			}
		default:
			eq, res := vm.Equal(l, r)
			if !res.IsContinue() {
				return res
			}
			if !eq {
				return vm.Failure(l, r)
			}
			return Continue
		}
		// Lost a race with another binder; look again.
	}
}

func (vm *VM) registerVariableOperations() {
	define0(vm, variableFacet, "isDet", Variable.IsDet)
	define0(vm, variableFacet, "wait", Variable.Wait)
	define1(vm, variableFacet, "bind", Variable.Bind)
}
