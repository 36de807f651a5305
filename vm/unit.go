package vm

// ---------------------------------------------------------------------------
// Unit: the single inline value with no contents
// ---------------------------------------------------------------------------

type unitStorage struct{}

func (unitStorage) Type() *Type { return UnitType }

func (unitStorage) Load(*VM, Self[struct{}]) struct{} { return struct{}{} }

func (unitStorage) Build(*VM, struct{}) Self[struct{}] {
	return Self[struct{}]{handle: Unit}
}

// UnitStorage maps Unit to the empty struct.
var UnitStorage Storage[struct{}] = unitStorage{}

// BuildUnit returns the unit handle.
func BuildUnit(vm *VM) Value {
	return UnitStorage.Build(vm, struct{}{}).Handle()
}
