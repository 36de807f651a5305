package vm

import (
	"math/big"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// SelectorTable tests
// ---------------------------------------------------------------------------

func TestSelectorTableIntern(t *testing.T) {
	st := NewSelectorTable()

	id1 := st.Intern("bind")
	if id1 != 0 {
		t.Errorf("first Intern got ID %d, want 0", id1)
	}
	if id2 := st.Intern("bind"); id2 != id1 {
		t.Errorf("re-Intern got ID %d, want %d", id2, id1)
	}
	if id3 := st.Intern("wait"); id3 != 1 {
		t.Errorf("second unique Intern got ID %d, want 1", id3)
	}
}

func TestSelectorTableLookupAndName(t *testing.T) {
	st := NewSelectorTable()
	st.Intern("label")
	st.Intern("width")

	if id := st.Lookup("width"); id != 1 {
		t.Errorf("Lookup(width) = %d, want 1", id)
	}
	if id := st.Lookup("arity"); id != -1 {
		t.Errorf("Lookup(arity) = %d, want -1", id)
	}
	if name := st.Name(0); name != "label" {
		t.Errorf("Name(0) = %q, want label", name)
	}
	if name := st.Name(99); name != "" {
		t.Errorf("Name(99) = %q, want empty", name)
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
}

func TestSelectorTableConcurrent(t *testing.T) {
	st := NewSelectorTable()
	names := []string{"+", "-", "*", "div", "mod", "<", "=<", "=="}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, n := range names {
				st.Intern(n)
			}
		}()
	}
	wg.Wait()

	if st.Len() != len(names) {
		t.Errorf("Len() = %d, want %d", st.Len(), len(names))
	}
}

// ---------------------------------------------------------------------------
// VTable tests
// ---------------------------------------------------------------------------

func TestVTableSetAndLookup(t *testing.T) {
	vt := NewVTable(UnitType)
	op := NewOp0("id", func(vm *VM, self Value) (Value, BuiltinResult) { return self, Continue })

	vt.Set(5, op)
	if vt.Lookup(5) != op {
		t.Error("Lookup(5) should return the stored operation")
	}
	if vt.Lookup(4) != nil || vt.Lookup(100) != nil || vt.Lookup(-1) != nil {
		t.Error("unset selectors should return nil")
	}
	if !vt.Has(5) || vt.Has(4) {
		t.Error("Has mismatch")
	}
	if vt.Type() != UnitType {
		t.Error("Type() should return the vtable's type")
	}
	if ops := vt.Operations(); len(ops) != 1 || ops[5] != op {
		t.Errorf("Operations() = %v", ops)
	}
}

func TestBootstrapVTables(t *testing.T) {
	vm := NewVM()
	tests := []struct {
		typ       *Type
		selectors []string
	}{
		{BooleanType, []string{"not", "and", "or", "xor", "=="}},
		{SmallIntType, []string{"+", "-", "*", "div", "mod", "~", "<", "=<", "=="}},
		{BigIntType, []string{"+", "-", "*", "div", "mod", "~", "<", "=<", "=="}},
		{FloatType, []string{"+", "-", "*", "/", "~", "<", "=<", "=="}},
		{AtomType, []string{"length", "<", "=="}},
		{TupleType, []string{"label", "width", ".", "=="}},
		{VariableType, []string{"isDet", "wait", "bind"}},
	}
	for _, tt := range tests {
		for _, sel := range tt.selectors {
			if !vm.Responds(tt.typ, sel) {
				t.Errorf("%s should respond to %s", tt.typ, sel)
			}
		}
	}
	if vm.Responds(UnitType, "+") {
		t.Error("Unit should not respond to +")
	}
	if !vm.Responds(UnitType, "==") || !vm.Responds(NameType, "==") {
		t.Error("every determined type should respond to ==")
	}
}

// ---------------------------------------------------------------------------
// Send tests
// ---------------------------------------------------------------------------

func TestSendNoSuchOperation(t *testing.T) {
	vm := NewVM()
	_, res := vm.Send(Unit, "frobnicate")
	if vm.RaisedLabel(res) != LabelNoSuchOperation {
		t.Fatalf("result %s, want noSuchOperation", res)
	}
	if got := vm.Print(res.Payload()); got != "noSuchOperation('Unit' frobnicate)" {
		t.Errorf("payload = %s", got)
	}
}

func TestSendArityMismatch(t *testing.T) {
	vm := NewVM()
	_, res := vm.Send(BuildSmallInt(vm, 1), "+")
	if vm.RaisedLabel(res) != LabelArityMismatch {
		t.Fatalf("result %s, want arityMismatch", res)
	}
	if got := vm.Print(res.Payload()); got != "arityMismatch('+' 1 0)" {
		t.Errorf("payload = %s", got)
	}
}

func TestSendCustomOperations(t *testing.T) {
	vm := NewVM()
	vt := vm.VTable(TupleType)

	vt.Add(vm.Selectors, NewOp2("between", func(vm *VM, self Value, lo, hi Value) (Value, BuiltinResult) {
		w, res := vm.Send(self, "width")
		if !res.IsContinue() {
			return Unit, res
		}
		if res := vm.need(&lo, &hi); !res.IsContinue() {
			return Unit, res
		}
		n := w.SmallInt()
		return FromBool(lo.SmallInt() <= n && n <= hi.SmallInt()), Continue
	}))
	vt.Add(vm.Selectors, NewOpN("count", func(vm *VM, self Value, args []Value) (Value, BuiltinResult) {
		return BuildSmallInt(vm, int64(len(args))), Continue
	}))

	tup := BuildTuple(vm, "t", Unit, Unit, Unit)
	got, res := vm.Send(tup, "between", BuildSmallInt(vm, 1), BuildSmallInt(vm, 3))
	if !res.IsContinue() || got != True {
		t.Errorf("between = %s/%s", vm.Print(got), res)
	}

	x := NewVariable(vm)
	_, res = vm.Send(tup, "between", BuildSmallInt(vm, 1), x)
	if !res.IsSuspend() || res.Dependency() != x {
		t.Errorf("between with unbound bound: %s", res)
	}

	for n := 0; n < 4; n++ {
		args := make([]Value, n)
		for i := range args {
			args[i] = Unit
		}
		got, _ := vm.Send(tup, "count", args...)
		if got.SmallInt() != int64(n) {
			t.Errorf("count with %d args = %s", n, vm.Print(got))
		}
	}
}

func TestSendThroughBoundVariable(t *testing.T) {
	vm := NewVM()
	x := NewVariable(vm)
	vm.Bind(x, BuildTuple(vm, "pair", True, False))

	w, res := vm.Send(x, "width")
	if !res.IsContinue() || w.SmallInt() != 2 {
		t.Errorf("width through variable = %s/%s", vm.Print(w), res)
	}
}

func TestOperationArity(t *testing.T) {
	noop0 := func(vm *VM, self Value) (Value, BuiltinResult) { return Unit, Continue }
	noop1 := func(vm *VM, self, a Value) (Value, BuiltinResult) { return Unit, Continue }
	noop2 := func(vm *VM, self, a, b Value) (Value, BuiltinResult) { return Unit, Continue }
	noopN := func(vm *VM, self Value, args []Value) (Value, BuiltinResult) { return Unit, Continue }

	tests := []struct {
		op   Operation
		want int
	}{
		{NewOp0("a", noop0), 0},
		{NewOp1("b", noop1), 1},
		{NewOp2("c", noop2), 2},
		{NewOpN("d", noopN), -1},
	}
	for _, tt := range tests {
		if tt.op.Arity() != tt.want {
			t.Errorf("%s arity = %d, want %d", tt.op.Name(), tt.op.Arity(), tt.want)
		}
	}
}

// Raising operations must not leave visible effects, so that a handler can
// run with the store as it was.
func TestRaiseHasNoSideEffects(t *testing.T) {
	vm := NewVM()
	x := NewVariable(vm)
	tup := BuildTuple(vm, "f", x)

	_, res := vm.Send(tup, ".", BuildSmallInt(vm, 9))
	if !res.IsRaise() {
		t.Fatalf("result %s, want raise", res)
	}
	if det, _ := vm.Send(x, "isDet"); det != False {
		t.Error("raising operation bound a variable")
	}
}

// Operations of inline types never suspend once every argument is
// determined, whatever the argument types.
func TestInlineOperationsNeverSuspendOnDeterminedArgs(t *testing.T) {
	vm := NewVM()
	receivers := map[*Type][]Value{
		BooleanType:  {True, False},
		SmallIntType: {BuildSmallInt(vm, 0), BuildSmallInt(vm, 7), BuildSmallInt(vm, MinSmallInt)},
		FloatType:    {BuildFloat(vm, 0), BuildFloat(vm, -2.5)},
		AtomType:     {vm.Atom("a"), vm.Atom("")},
		UnitType:     {Unit},
	}

	bound := NewVariable(vm)
	vm.Bind(bound, BuildSmallInt(vm, 3))
	args := []Value{
		True,
		BuildSmallInt(vm, 0),
		BuildSmallInt(vm, -4),
		BuildBigInt(vm, new(big.Int).Lsh(big.NewInt(1), 80)),
		BuildFloat(vm, 1.5),
		vm.Atom("b"),
		Unit,
		BuildTuple(vm, "t", BuildSmallInt(vm, 1)),
		NewName(vm),
		bound,
	}

	calls := 0
	for _, typ := range Types.All() {
		if typ.Storage() != StorageInline {
			continue
		}
		recvs, ok := receivers[typ]
		if !ok {
			t.Errorf("no sample receivers for inline type %s", typ)
			continue
		}
		for _, op := range vm.VTable(typ).Operations() {
			for _, combo := range argCombos(args, op.Arity()) {
				for _, self := range recvs {
					calls++
					_, res := op.Invoke(vm, self, combo)
					if res.IsSuspend() {
						t.Errorf("%s %s %s suspended", vm.Print(self), op.Name(), vm.Print(BuildTuple(vm, "args", combo...)))
					}
				}
			}
		}
	}
	if calls == 0 {
		t.Fatal("no operations were exercised")
	}
}

// argCombos returns every argument list of length n drawn from pool. A
// variable arity is exercised with zero, one and two arguments.
func argCombos(pool []Value, n int) [][]Value {
	if n < 0 {
		var out [][]Value
		for k := 0; k <= 2; k++ {
			out = append(out, argCombos(pool, k)...)
		}
		return out
	}
	if n == 0 {
		return [][]Value{nil}
	}
	var out [][]Value
	for _, rest := range argCombos(pool, n-1) {
		for _, v := range pool {
			combo := append(append([]Value(nil), rest...), v)
			out = append(out, combo)
		}
	}
	return out
}
