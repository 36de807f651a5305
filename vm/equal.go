package vm

// Equal decides structural equality of a and b.
//
// Values of different types are never equal. Tuples compare label, width
// and then fields. When the answer depends on an unbound variable the
// result is a suspension on that variable, unless some other part already
// proves the values different.
func (vm *VM) Equal(a, b Value) (bool, BuiltinResult) {
	return vm.equal(a, b, make(map[[2]Value]struct{}))
}

func (vm *VM) equal(a, b Value, seen map[[2]Value]struct{}) (bool, BuiltinResult) {
	a, aok := vm.Deref(a)
	b, bok := vm.Deref(b)
	if a == b {
		return true, Continue
	}
	if !aok {
		return false, SuspendOn(a)
	}
	if !bok {
		return false, SuspendOn(b)
	}

	t := vm.TypeOf(a)
	if t != vm.TypeOf(b) {
		return false, Continue
	}

	switch t {
	case FloatType:
		// +0 and -0 have different handles but are equal.
		return a.Float64() == b.Float64(), Continue
	case BigIntType:
		x, _ := vm.IntValue(a)
		y, _ := vm.IntValue(b)
		return x.Cmp(y) == 0, Continue
	case NameType:
		x, _ := vm.NameID(a)
		y, _ := vm.NameID(b)
		return x == y, Continue
	case TupleType:
		return vm.equalTuples(a, b, seen)
	}

	// Remaining inline types are equal only when their handles are.
	return false, Continue
}

func (vm *VM) equalTuples(a, b Value, seen map[[2]Value]struct{}) (bool, BuiltinResult) {
	key := [2]Value{a, b}
	if _, ok := seen[key]; ok {
		// Already comparing this pair further up; cyclic structures are
		// equal if nothing else differs.
		return true, Continue
	}
	seen[key] = struct{}{}

	x, y := vm.tupleData(a), vm.tupleData(b)
	if x.Label != y.Label || len(x.Fields) != len(y.Fields) {
		return false, Continue
	}

	pending := Continue
	for i := range x.Fields {
		eq, res := vm.equal(x.Fields[i], y.Fields[i], seen)
		switch {
		case res.IsSuspend():
			if pending.IsContinue() {
				pending = res
			}
		case !eq:
			return false, Continue
		}
	}
	if !pending.IsContinue() {
		return false, pending
	}
	return true, Continue
}
