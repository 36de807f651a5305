package vm

import (
	"math/big"
)

// ---------------------------------------------------------------------------
// BigInt: boxed arbitrary-precision integers
// ---------------------------------------------------------------------------
//
// A BigInt handle never holds a value in the SmallInt range; results are
// demoted back to SmallInt by BuildBigInt.

type bigIntStorage struct{}

func (bigIntStorage) Type() *Type { return BigIntType }

// Load returns the stored integer. Callers must not modify it.
func (bigIntStorage) Load(vm *VM, self Self[*big.Int]) *big.Int {
	return vm.store.payload(self.handle.RefIndex()).(*big.Int)
}

func (bigIntStorage) Build(vm *VM, raw *big.Int) Self[*big.Int] {
	return Self[*big.Int]{handle: vm.store.alloc(BigIntType, new(big.Int).Set(raw))}
}

// BigIntStorage maps BigInt to *big.Int.
var BigIntStorage Storage[*big.Int] = bigIntStorage{}

// BigInt is the implementation facet of boxed integers.
type BigInt struct {
	Implementation[*big.Int]
}

var bigIntFacet = facet[*big.Int, BigInt]{
	storage: BigIntStorage,
	wrap:    func(i Implementation[*big.Int]) BigInt { return BigInt{i} },
}

// BuildBigInt returns the canonical handle for n: inline when n fits in a
// SmallInt, boxed otherwise.
func BuildBigInt(vm *VM, n *big.Int) Value {
	if n.IsInt64() && FitsSmallInt(n.Int64()) {
		return BuildSmallInt(vm, n.Int64())
	}
	return BigIntStorage.Build(vm, n).Handle()
}

// IntValue returns the integer held by a SmallInt or BigInt handle.
func (vm *VM) IntValue(v Value) (*big.Int, bool) {
	switch vm.TypeOf(v) {
	case SmallIntType:
		return big.NewInt(v.SmallInt()), true
	case BigIntType:
		return new(big.Int).Set(bigIntFacet.resolve(vm, Self[*big.Int]{handle: v}).Value()), true
	}
	return nil, false
}

// intOperand reads an integer argument of either representation.
func (vm *VM) intOperand(v Value) (*big.Int, BuiltinResult) {
	if res := vm.need(&v); !res.IsContinue() {
		return nil, res
	}
	n, ok := vm.IntValue(v)
	if !ok {
		return nil, vm.TypeError(BigIntType, v)
	}
	return n, Continue
}

func (i BigInt) arith(self Self[*big.Int], vm *VM, other Value, fn bigArith, checkZero bool) (Value, BuiltinResult) {
	b, res := vm.intOperand(other)
	if !res.IsContinue() {
		return Unit, res
	}
	if checkZero && b.Sign() == 0 {
		return Unit, vm.DivisionByZero(self.Handle())
	}
	return BuildBigInt(vm, fn(new(big.Int), i.Value(), b)), Continue
}

// Add returns the sum.
func (i BigInt) Add(self Self[*big.Int], vm *VM, other Value) (Value, BuiltinResult) {
	return i.arith(self, vm, other, (*big.Int).Add, false)
}

// Sub returns the difference.
func (i BigInt) Sub(self Self[*big.Int], vm *VM, other Value) (Value, BuiltinResult) {
	return i.arith(self, vm, other, (*big.Int).Sub, false)
}

// Mul returns the product.
func (i BigInt) Mul(self Self[*big.Int], vm *VM, other Value) (Value, BuiltinResult) {
	return i.arith(self, vm, other, (*big.Int).Mul, false)
}

// Div returns the quotient truncated toward zero.
func (i BigInt) Div(self Self[*big.Int], vm *VM, other Value) (Value, BuiltinResult) {
	return i.arith(self, vm, other, (*big.Int).Quo, true)
}

// Mod returns the remainder, with the sign of the receiver.
func (i BigInt) Mod(self Self[*big.Int], vm *VM, other Value) (Value, BuiltinResult) {
	return i.arith(self, vm, other, (*big.Int).Rem, true)
}

// Negate returns -receiver.
func (i BigInt) Negate(self Self[*big.Int], vm *VM) (Value, BuiltinResult) {
	return BuildBigInt(vm, new(big.Int).Neg(i.Value())), Continue
}

// Compare returns -1, 0 or 1 ordering the receiver against an integer.
func (i BigInt) Compare(self Self[*big.Int], vm *VM, other Value) (int, BuiltinResult) {
	b, res := vm.intOperand(other)
	if !res.IsContinue() {
		return 0, res
	}
	return i.Value().Cmp(b), Continue
}

func (i BigInt) less(self Self[*big.Int], vm *VM, other Value) (Value, BuiltinResult) {
	c, res := i.Compare(self, vm, other)
	if !res.IsContinue() {
		return Unit, res
	}
	return FromBool(c < 0), Continue
}

func (i BigInt) lessEq(self Self[*big.Int], vm *VM, other Value) (Value, BuiltinResult) {
	c, res := i.Compare(self, vm, other)
	if !res.IsContinue() {
		return Unit, res
	}
	return FromBool(c <= 0), Continue
}

func (vm *VM) registerBigIntOperations() {
	define1(vm, bigIntFacet, "+", BigInt.Add)
	define1(vm, bigIntFacet, "-", BigInt.Sub)
	define1(vm, bigIntFacet, "*", BigInt.Mul)
	define1(vm, bigIntFacet, "div", BigInt.Div)
	define1(vm, bigIntFacet, "mod", BigInt.Mod)
	define0(vm, bigIntFacet, "~", BigInt.Negate)
	define1(vm, bigIntFacet, "<", BigInt.less)
	define1(vm, bigIntFacet, "=<", BigInt.lessEq)
}
