package vm

// ---------------------------------------------------------------------------
// Float: inline IEEE 754 doubles
// ---------------------------------------------------------------------------

type floatStorage struct{}

func (floatStorage) Type() *Type { return FloatType }

func (floatStorage) Load(_ *VM, self Self[float64]) float64 {
	return self.handle.Float64()
}

func (floatStorage) Build(_ *VM, raw float64) Self[float64] {
	return Self[float64]{handle: FromFloat64(raw)}
}

// FloatStorage maps Float to float64.
var FloatStorage Storage[float64] = floatStorage{}

// Float is the implementation facet of floats.
type Float struct {
	Implementation[float64]
}

var floatFacet = facet[float64, Float]{
	storage: FloatStorage,
	wrap:    func(i Implementation[float64]) Float { return Float{i} },
}

// BuildFloat returns the inline handle for f.
func BuildFloat(vm *VM, f float64) Value {
	return FloatStorage.Build(vm, f).Handle()
}

// floatArg reads a Float argument. Integers are not converted.
func (vm *VM) floatArg(v Value) (float64, BuiltinResult) {
	if res := vm.need(&v); !res.IsContinue() {
		return 0, res
	}
	self, ok := floatFacet.selfOf(vm, v)
	if !ok {
		return 0, vm.TypeError(FloatType, v)
	}
	return floatFacet.resolve(vm, self).Value(), Continue
}

func (f Float) arith(vm *VM, other Value, fn func(a, b float64) float64) (Value, BuiltinResult) {
	b, res := vm.floatArg(other)
	if !res.IsContinue() {
		return Unit, res
	}
	return BuildFloat(vm, fn(f.Value(), b)), Continue
}

// Add returns the sum.
func (f Float) Add(self Self[float64], vm *VM, other Value) (Value, BuiltinResult) {
	return f.arith(vm, other, func(a, b float64) float64 { return a + b })
}

// Sub returns the difference.
func (f Float) Sub(self Self[float64], vm *VM, other Value) (Value, BuiltinResult) {
	return f.arith(vm, other, func(a, b float64) float64 { return a - b })
}

// Mul returns the product.
func (f Float) Mul(self Self[float64], vm *VM, other Value) (Value, BuiltinResult) {
	return f.arith(vm, other, func(a, b float64) float64 { return a * b })
}

// Divide returns the IEEE quotient; dividing by zero yields an infinity.
func (f Float) Divide(self Self[float64], vm *VM, other Value) (Value, BuiltinResult) {
	return f.arith(vm, other, func(a, b float64) float64 { return a / b })
}

// Negate returns -receiver.
func (f Float) Negate(self Self[float64], vm *VM) (Value, BuiltinResult) {
	return BuildFloat(vm, -f.Value()), Continue
}

func (f Float) less(self Self[float64], vm *VM, other Value) (Value, BuiltinResult) {
	b, res := vm.floatArg(other)
	if !res.IsContinue() {
		return Unit, res
	}
	return FromBool(f.Value() < b), Continue
}

func (f Float) lessEq(self Self[float64], vm *VM, other Value) (Value, BuiltinResult) {
	b, res := vm.floatArg(other)
	if !res.IsContinue() {
		return Unit, res
	}
	return FromBool(f.Value() <= b), Continue
}

func (vm *VM) registerFloatOperations() {
	define1(vm, floatFacet, "+", Float.Add)
	define1(vm, floatFacet, "-", Float.Sub)
	define1(vm, floatFacet, "*", Float.Mul)
	define1(vm, floatFacet, "/", Float.Divide)
	define0(vm, floatFacet, "~", Float.Negate)
	define1(vm, floatFacet, "<", Float.less)
	define1(vm, floatFacet, "=<", Float.lessEq)
}
