package vm

// ---------------------------------------------------------------------------
// Tuple: boxed label plus positional fields
// ---------------------------------------------------------------------------

// TupleData is the stored form of a tuple. Label is an atom handle. Fields
// may hold any handle, including unbound variables.
type TupleData struct {
	Label  Value
	Fields []Value
}

type tupleStorage struct{}

func (tupleStorage) Type() *Type { return TupleType }

// Load returns the stored data. Callers must not modify Fields.
func (tupleStorage) Load(vm *VM, self Self[TupleData]) TupleData {
	return vm.store.payload(self.handle.RefIndex()).(TupleData)
}

func (tupleStorage) Build(vm *VM, raw TupleData) Self[TupleData] {
	fields := make([]Value, len(raw.Fields))
	copy(fields, raw.Fields)
	return Self[TupleData]{handle: vm.store.alloc(TupleType, TupleData{Label: raw.Label, Fields: fields})}
}

// TupleStorage maps Tuple to TupleData.
var TupleStorage Storage[TupleData] = tupleStorage{}

// Tuple is the implementation facet of tuples.
type Tuple struct {
	Implementation[TupleData]
}

var tupleFacet = facet[TupleData, Tuple]{
	storage: TupleStorage,
	wrap:    func(i Implementation[TupleData]) Tuple { return Tuple{i} },
}

// BuildTuple returns label(fields...). A tuple without fields is the label
// atom itself.
func BuildTuple(vm *VM, label string, fields ...Value) Value {
	if len(fields) == 0 {
		return vm.Atom(label)
	}
	return vm.newTuple(vm.Atom(label), fields)
}

func (vm *VM) newTuple(label Value, fields []Value) Value {
	return TupleStorage.Build(vm, TupleData{Label: label, Fields: fields}).Handle()
}

func (vm *VM) tupleData(v Value) TupleData {
	return tupleFacet.resolve(vm, Self[TupleData]{handle: v}).Value()
}

// Label returns the label atom.
func (t Tuple) Label(self Self[TupleData], vm *VM) (Value, BuiltinResult) {
	return t.Value().Label, Continue
}

// Width returns the number of fields.
func (t Tuple) Width(self Self[TupleData], vm *VM) (Value, BuiltinResult) {
	return BuildSmallInt(vm, int64(len(t.Value().Fields))), Continue
}

// Field returns the field at a 1-based index. The field itself is returned
// as stored and may be an unbound variable.
func (t Tuple) Field(self Self[TupleData], vm *VM, index Value) (Value, BuiltinResult) {
	if res := vm.need(&index); !res.IsContinue() {
		return Unit, res
	}
	if !index.IsSmallInt() {
		return Unit, vm.TypeError(SmallIntType, index)
	}
	fields := t.Value().Fields
	i := index.SmallInt()
	if i < 1 || i > int64(len(fields)) {
		return Unit, vm.IndexOutOfRange(self.Handle(), index)
	}
	return fields[i-1], Continue
}

func (vm *VM) registerTupleOperations() {
	define0(vm, tupleFacet, "label", Tuple.Label)
	define0(vm, tupleFacet, "width", Tuple.Width)
	define1(vm, tupleFacet, ".", Tuple.Field)
}
