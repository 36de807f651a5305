package vm

import (
	"testing"
)

// ---------------------------------------------------------------------------
// VM bootstrap tests
// ---------------------------------------------------------------------------

func TestNewVM(t *testing.T) {
	vm := NewVM()
	if vm == nil {
		t.Fatal("NewVM returned nil")
	}
	if vm.Selectors == nil {
		t.Error("Selectors should be initialized")
	}
	if vm.Atoms == nil {
		t.Error("Atoms should be initialized")
	}
	if vm.Store() == nil {
		t.Error("Store should be initialized")
	}
	if vm.Logger() == nil {
		t.Error("Logger should default to a package logger")
	}
}

func TestVMBootstrapVTables(t *testing.T) {
	vm := NewVM()
	for _, typ := range Types.All() {
		vt := vm.VTable(typ)
		if vt == nil {
			t.Errorf("%s has no vtable", typ)
			continue
		}
		if vt.Type() != typ {
			t.Errorf("%s vtable reports type %s", typ, vt.Type())
		}
	}
}

func TestVMsAreIndependent(t *testing.T) {
	a := NewVM()
	b := NewVM()

	x := NewVariable(a)
	a.Bind(x, BuildSmallInt(a, 1))

	if a.Store().Len() == b.Store().Len() {
		t.Error("allocating in one VM should not touch another")
	}
	a.Atom("only-in-a")
	if _, ok := b.Atoms.Lookup("only-in-a"); ok {
		t.Error("atoms interned in one VM leaked into another")
	}
}

func TestStoreCapacityOption(t *testing.T) {
	vm := NewVMWithOptions(Options{StoreCapacity: 4})
	for i := 0; i < 10; i++ {
		NewVariable(vm)
	}
	if vm.Store().Len() != 10 {
		t.Errorf("store Len = %d, want 10", vm.Store().Len())
	}
}

// ---------------------------------------------------------------------------
// Benchmarks
// ---------------------------------------------------------------------------

func BenchmarkSendSmallIntAdd(b *testing.B) {
	vm := NewVM()
	x := BuildSmallInt(vm, 20)
	y := BuildSmallInt(vm, 22)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vm.Send(x, "+", y)
	}
}

func BenchmarkSendThroughVariable(b *testing.B) {
	vm := NewVM()
	v := NewVariable(vm)
	vm.Bind(v, BuildSmallInt(vm, 20))
	y := BuildSmallInt(vm, 22)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vm.Send(v, "+", y)
	}
}

func BenchmarkBooleanValueOrNotBool(b *testing.B) {
	vm := NewVM()
	v := BuildBoolean(vm, true)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vm.ValueOrNotBool(v)
	}
}

func BenchmarkEqualTuples(b *testing.B) {
	vm := NewVM()
	x := BuildTuple(vm, "f", BuildSmallInt(vm, 1), vm.Atom("a"), BuildFloat(vm, 2))
	y := BuildTuple(vm, "f", BuildSmallInt(vm, 1), vm.Atom("a"), BuildFloat(vm, 2))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vm.Equal(x, y)
	}
}
