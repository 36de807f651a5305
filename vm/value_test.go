package vm

import (
	"math"
	"testing"
)

// ---------------------------------------------------------------------------
// Float tests
// ---------------------------------------------------------------------------

func TestFloatRoundTrip(t *testing.T) {
	tests := []float64{
		0.0,
		1.0,
		-1.0,
		3.14159265358979,
		math.MaxFloat64,
		math.SmallestNonzeroFloat64,
		-math.MaxFloat64,
		math.Inf(1),
		math.Inf(-1),
	}

	for _, f := range tests {
		v := FromFloat64(f)
		if !v.IsFloat() {
			t.Errorf("FromFloat64(%v).IsFloat() = false, want true", f)
			continue
		}
		if got := v.Float64(); got != f {
			t.Errorf("FromFloat64(%v).Float64() = %v, want %v", f, got, f)
		}
	}
}

func TestFloatNaN(t *testing.T) {
	v := FromFloat64(math.NaN())
	if !v.IsFloat() {
		t.Error("NaN should be treated as float")
	}
	if !math.IsNaN(v.Float64()) {
		t.Error("NaN roundtrip failed")
	}
}

func TestFloatTypeChecks(t *testing.T) {
	v := FromFloat64(42.5)
	if v.IsSmallInt() || v.IsRef() || v.IsAtom() || v.IsBool() || v.IsUnit() {
		t.Error("float should only answer IsFloat")
	}
	if !v.IsInline() {
		t.Error("float should be inline")
	}
}

// ---------------------------------------------------------------------------
// SmallInt tests
// ---------------------------------------------------------------------------

func TestSmallIntRoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 42, -42, 1000000, -1000000, MaxSmallInt, MinSmallInt}

	for _, n := range tests {
		v := FromSmallInt(n)
		if !v.IsSmallInt() {
			t.Errorf("FromSmallInt(%d).IsSmallInt() = false, want true", n)
			continue
		}
		if got := v.SmallInt(); got != n {
			t.Errorf("FromSmallInt(%d).SmallInt() = %d, want %d", n, got, n)
		}
	}
}

func TestSmallIntOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FromSmallInt(MaxSmallInt+1) should panic")
		}
	}()
	FromSmallInt(MaxSmallInt + 1)
}

func TestTryFromSmallInt(t *testing.T) {
	if _, ok := TryFromSmallInt(MaxSmallInt + 1); ok {
		t.Error("TryFromSmallInt(MaxSmallInt+1) should fail")
	}
	if _, ok := TryFromSmallInt(MinSmallInt - 1); ok {
		t.Error("TryFromSmallInt(MinSmallInt-1) should fail")
	}
	v, ok := TryFromSmallInt(-7)
	if !ok || v.SmallInt() != -7 {
		t.Errorf("TryFromSmallInt(-7) = %v, %v", v, ok)
	}
}

// ---------------------------------------------------------------------------
// Specials, atoms, refs
// ---------------------------------------------------------------------------

func TestSpecials(t *testing.T) {
	for _, v := range []Value{Unit, True, False} {
		if !v.IsSpecial() {
			t.Errorf("%x should be special", uint64(v))
		}
		if v.IsFloat() {
			t.Errorf("%x should not be a float", uint64(v))
		}
	}
	if !True.IsBool() || !False.IsBool() || Unit.IsBool() {
		t.Error("IsBool mismatch")
	}
	if !True.Bool() || False.Bool() {
		t.Error("Bool() mismatch")
	}
	if FromBool(true) != True || FromBool(false) != False {
		t.Error("FromBool mismatch")
	}
}

func TestBoolPanicOnNonBool(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Unit.Bool() should panic")
		}
	}()
	Unit.Bool()
}

func TestAtomAndRefEncoding(t *testing.T) {
	a := FromAtomID(12)
	if !a.IsAtom() || a.AtomID() != 12 {
		t.Errorf("atom encoding failed: %x", uint64(a))
	}
	r := FromRefIndex(99)
	if !r.IsRef() || r.RefIndex() != 99 {
		t.Errorf("ref encoding failed: %x", uint64(r))
	}
	if r.IsInline() {
		t.Error("ref should not be inline")
	}
	if a == r || a.IsRef() || r.IsAtom() {
		t.Error("atom and ref with tags must be distinct")
	}
}

func TestDistinctTags(t *testing.T) {
	values := []Value{FromFloat64(1), FromSmallInt(1), FromAtomID(1), FromRefIndex(1), True, False, Unit}
	seen := make(map[Value]bool)
	for _, v := range values {
		if seen[v] {
			t.Errorf("duplicate encoding %x", uint64(v))
		}
		seen[v] = true
	}
}
