package vm

import (
	"math/big"
)

// ---------------------------------------------------------------------------
// SmallInt: inline 48-bit signed integers
// ---------------------------------------------------------------------------

// LabelOverflow labels the payload raised when SmallInt arithmetic leaves
// the inline range under OverflowRaise.
const LabelOverflow = "overflow"

type smallIntStorage struct{}

func (smallIntStorage) Type() *Type { return SmallIntType }

func (smallIntStorage) Load(_ *VM, self Self[int64]) int64 {
	return self.handle.SmallInt()
}

// Build panics if raw is outside the SmallInt range; use BuildInt for
// arbitrary int64 values.
func (smallIntStorage) Build(_ *VM, raw int64) Self[int64] {
	return Self[int64]{handle: FromSmallInt(raw)}
}

// SmallIntStorage maps SmallInt to int64.
var SmallIntStorage Storage[int64] = smallIntStorage{}

// SmallInt is the implementation facet of inline integers.
type SmallInt struct {
	Implementation[int64]
}

var smallIntFacet = facet[int64, SmallInt]{
	storage: SmallIntStorage,
	wrap:    func(i Implementation[int64]) SmallInt { return SmallInt{i} },
}

// BuildSmallInt returns the inline handle for n.
// Panics if n is outside the SmallInt range.
func BuildSmallInt(vm *VM, n int64) Value {
	return SmallIntStorage.Build(vm, n).Handle()
}

// BuildInt returns n inline when it fits and boxed as a BigInt otherwise.
func BuildInt(vm *VM, n int64) Value {
	if FitsSmallInt(n) {
		return BuildSmallInt(vm, n)
	}
	return BuildBigInt(vm, big.NewInt(n))
}

// smallFast computes a result that is known not to overflow int64, or
// reports ok=false to fall back to big arithmetic.
type smallFast func(a, b int64) (r int64, ok bool)

// bigArith computes z = x op y.
type bigArith func(z, x, y *big.Int) *big.Int

func (i SmallInt) arith(self Self[int64], vm *VM, other Value, fast smallFast, slow bigArith, checkZero bool) (Value, BuiltinResult) {
	if res := vm.need(&other); !res.IsContinue() {
		return Unit, res
	}
	a := i.Value()
	switch vm.TypeOf(other) {
	case SmallIntType:
		b := other.SmallInt()
		if checkZero && b == 0 {
			return Unit, vm.DivisionByZero(self.Handle())
		}
		if r, ok := fast(a, b); ok && FitsSmallInt(r) {
			return BuildSmallInt(vm, r), Continue
		}
		return vm.smallIntResult(slow(new(big.Int), big.NewInt(a), big.NewInt(b)))
	case BigIntType:
		// A BigInt operand is already outside the inline range, so the
		// overflow policy does not apply.
		b := bigIntFacet.resolve(vm, Self[*big.Int]{handle: other}).Value()
		return BuildBigInt(vm, slow(new(big.Int), big.NewInt(a), b)), Continue
	}
	return Unit, vm.TypeError(SmallIntType, other)
}

func addSmall(a, b int64) (int64, bool) { return a + b, true }
func subSmall(a, b int64) (int64, bool) { return a - b, true }

func mulSmall(a, b int64) (int64, bool) {
	const limit = 1 << 31
	if a > -limit && a < limit && b > -limit && b < limit {
		return a * b, true
	}
	return 0, false
}

func divSmall(a, b int64) (int64, bool) { return a / b, true }
func modSmall(a, b int64) (int64, bool) { return a % b, true }

// Add returns the sum.
func (i SmallInt) Add(self Self[int64], vm *VM, other Value) (Value, BuiltinResult) {
	return i.arith(self, vm, other, addSmall, (*big.Int).Add, false)
}

// Sub returns the difference.
func (i SmallInt) Sub(self Self[int64], vm *VM, other Value) (Value, BuiltinResult) {
	return i.arith(self, vm, other, subSmall, (*big.Int).Sub, false)
}

// Mul returns the product.
func (i SmallInt) Mul(self Self[int64], vm *VM, other Value) (Value, BuiltinResult) {
	return i.arith(self, vm, other, mulSmall, (*big.Int).Mul, false)
}

// Div returns the quotient truncated toward zero.
func (i SmallInt) Div(self Self[int64], vm *VM, other Value) (Value, BuiltinResult) {
	return i.arith(self, vm, other, divSmall, (*big.Int).Quo, true)
}

// Mod returns the remainder, with the sign of the receiver.
func (i SmallInt) Mod(self Self[int64], vm *VM, other Value) (Value, BuiltinResult) {
	return i.arith(self, vm, other, modSmall, (*big.Int).Rem, true)
}

// Negate returns -receiver. Every negated SmallInt but MinSmallInt is a
// SmallInt.
func (i SmallInt) Negate(self Self[int64], vm *VM) (Value, BuiltinResult) {
	n := -i.Value()
	if FitsSmallInt(n) {
		return BuildSmallInt(vm, n), Continue
	}
	return vm.smallIntResult(big.NewInt(n))
}

// smallIntResult returns r, computed from SmallInt operands only, as an
// integer handle. Under OverflowRaise a result outside the inline range
// raises overflow(r) instead of being boxed.
func (vm *VM) smallIntResult(r *big.Int) (Value, BuiltinResult) {
	if vm.overflow == OverflowRaise && !(r.IsInt64() && FitsSmallInt(r.Int64())) {
		return Unit, vm.raiseTuple(LabelOverflow, BuildBigInt(vm, r))
	}
	return BuildBigInt(vm, r), Continue
}

// Compare returns -1, 0 or 1 ordering the receiver against an integer.
func (i SmallInt) Compare(self Self[int64], vm *VM, other Value) (int, BuiltinResult) {
	if res := vm.need(&other); !res.IsContinue() {
		return 0, res
	}
	a := i.Value()
	switch vm.TypeOf(other) {
	case SmallIntType:
		b := other.SmallInt()
		switch {
		case a < b:
			return -1, Continue
		case a > b:
			return 1, Continue
		}
		return 0, Continue
	case BigIntType:
		b := bigIntFacet.resolve(vm, Self[*big.Int]{handle: other}).Value()
		return big.NewInt(a).Cmp(b), Continue
	}
	return 0, vm.TypeError(SmallIntType, other)
}

func (i SmallInt) less(self Self[int64], vm *VM, other Value) (Value, BuiltinResult) {
	c, res := i.Compare(self, vm, other)
	if !res.IsContinue() {
		return Unit, res
	}
	return FromBool(c < 0), Continue
}

func (i SmallInt) lessEq(self Self[int64], vm *VM, other Value) (Value, BuiltinResult) {
	c, res := i.Compare(self, vm, other)
	if !res.IsContinue() {
		return Unit, res
	}
	return FromBool(c <= 0), Continue
}

func (vm *VM) registerSmallIntOperations() {
	define1(vm, smallIntFacet, "+", SmallInt.Add)
	define1(vm, smallIntFacet, "-", SmallInt.Sub)
	define1(vm, smallIntFacet, "*", SmallInt.Mul)
	define1(vm, smallIntFacet, "div", SmallInt.Div)
	define1(vm, smallIntFacet, "mod", SmallInt.Mod)
	define0(vm, smallIntFacet, "~", SmallInt.Negate)
	define1(vm, smallIntFacet, "<", SmallInt.less)
	define1(vm, smallIntFacet, "=<", SmallInt.lessEq)
}
