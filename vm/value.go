package vm

import (
	"math"
)

// Value is the handle the VM uses to reference any value, NaN-boxed into
// 64 bits.
//
// All values are represented as 64-bit IEEE 754 doubles. Non-float values
// are encoded in the NaN space using the quiet NaN prefix and tag bits.
//
// Encoding scheme:
//   - Float: native IEEE 754 double (if not a tagged NaN, it's a float)
//   - SmallInt: quiet NaN + tagInt + 48-bit signed payload
//   - Atom: quiet NaN + tagAtom + atom table ID
//   - Special: quiet NaN + tagSpecial + special ID (unit/true/false)
//   - Ref: quiet NaN + tagRef + store index (boxed values and variables)
//
// Inline values need no store access to be read. Ref values are resolved
// through the VM's Store.
type Value uint64

const (
	// Quiet NaN prefix: exponent all 1s, quiet bit set, sign bit 0
	nanBits uint64 = 0x7FF8000000000000

	// Tag mask: 3 bits within the NaN mantissa space
	tagMask uint64 = 0x0007000000000000

	// Payload mask: 48 bits
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	tagRef     uint64 = 0x0001000000000000
	tagInt     uint64 = 0x0002000000000000
	tagSpecial uint64 = 0x0003000000000000
	tagAtom    uint64 = 0x0004000000000000

	intSignBit    uint64 = 0x0000800000000000
	intSignExtend uint64 = 0xFFFF000000000000
)

const (
	specialUnit  uint64 = 0
	specialTrue  uint64 = 1
	specialFalse uint64 = 2
)

// Pre-defined special values
const (
	Unit  Value = Value(nanBits | tagSpecial | specialUnit)
	True  Value = Value(nanBits | tagSpecial | specialTrue)
	False Value = Value(nanBits | tagSpecial | specialFalse)
)

// SmallInt range (48-bit signed)
const (
	MaxSmallInt int64 = (1 << 47) - 1
	MinSmallInt int64 = -(1 << 47)
)

// ---------------------------------------------------------------------------
// Tag checks
// ---------------------------------------------------------------------------

// IsFloat returns true if v represents a float64 value.
// Infinities and untagged NaNs are floats too.
func (v Value) IsFloat() bool {
	bits := uint64(v)

	if (bits & 0x7FF0000000000000) != 0x7FF0000000000000 {
		return true
	}

	// Infinity has mantissa == 0
	if bits&0x000FFFFFFFFFFFFF == 0 {
		return true
	}

	// Signaling NaN
	if (bits & nanBits) != nanBits {
		return true
	}

	// Untagged quiet NaN
	return bits&tagMask == 0
}

// IsSmallInt returns true if v represents a small integer.
func (v Value) IsSmallInt() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagInt)
}

// IsRef returns true if v refers to a node in the store.
func (v Value) IsRef() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagRef)
}

// IsAtom returns true if v represents an interned atom.
func (v Value) IsAtom() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagAtom)
}

// IsSpecial returns true if v is unit, true, or false.
func (v Value) IsSpecial() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagSpecial)
}

// IsBool returns true if v is true or false.
func (v Value) IsBool() bool {
	return v == True || v == False
}

// IsUnit returns true if v is the unit value.
func (v Value) IsUnit() bool {
	return v == Unit
}

// IsInline returns true if v needs no store access to be read.
func (v Value) IsInline() bool {
	return !v.IsRef()
}

// ---------------------------------------------------------------------------
// Float
// ---------------------------------------------------------------------------

// Float64 returns v as a float64.
// Panics if v is not a float.
func (v Value) Float64() float64 {
	if !v.IsFloat() {
		panic("Value.Float64: not a float")
	}
	return math.Float64frombits(uint64(v))
}

// FromFloat64 creates a Value from a float64. Every NaN is stored as the
// canonical quiet NaN so its bits never collide with a tag.
func FromFloat64(f float64) Value {
	if f != f {
		return Value(nanBits)
	}
	return Value(math.Float64bits(f))
}

// ---------------------------------------------------------------------------
// SmallInt
// ---------------------------------------------------------------------------

// SmallInt returns v as an int64.
// Panics if v is not a small integer.
func (v Value) SmallInt() int64 {
	if !v.IsSmallInt() {
		panic("Value.SmallInt: not a small integer")
	}
	payload := uint64(v) & payloadMask
	if (payload & intSignBit) != 0 {
		payload |= intSignExtend
	}
	return int64(payload)
}

// FitsSmallInt reports whether n can be stored inline.
func FitsSmallInt(n int64) bool {
	return n >= MinSmallInt && n <= MaxSmallInt
}

// FromSmallInt creates a Value from an int64.
// Panics if n is outside the SmallInt range.
func FromSmallInt(n int64) Value {
	if !FitsSmallInt(n) {
		panic("FromSmallInt: value out of range")
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask))
}

// TryFromSmallInt creates a Value from an int64, returning false if out of range.
func TryFromSmallInt(n int64) (Value, bool) {
	if !FitsSmallInt(n) {
		return Unit, false
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask)), true
}

// ---------------------------------------------------------------------------
// Atoms and refs
// ---------------------------------------------------------------------------

// AtomID returns the atom table ID encoded in v.
// Panics if v is not an atom.
func (v Value) AtomID() uint32 {
	if !v.IsAtom() {
		panic("Value.AtomID: not an atom")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromAtomID creates a Value from an atom ID.
func FromAtomID(id uint32) Value {
	return Value(nanBits | tagAtom | uint64(id))
}

// RefIndex returns the store index encoded in v.
// Panics if v is not a ref.
func (v Value) RefIndex() uint32 {
	if !v.IsRef() {
		panic("Value.RefIndex: not a ref")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromRefIndex creates a ref Value from a store index.
func FromRefIndex(idx uint32) Value {
	return Value(nanBits | tagRef | uint64(idx))
}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// Bool returns v as a bool.
// Panics if v is not true or false.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	default:
		panic("Value.Bool: not a boolean")
	}
}

// FromBool creates a Value from a bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}
