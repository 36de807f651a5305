package vm

import (
	"errors"
)

// ---------------------------------------------------------------------------
// Raise payloads
// ---------------------------------------------------------------------------

// Sentinel errors for Go callers.
var (
	// ErrSuspended is returned by BuiltinResult.Err for a suspension.
	ErrSuspended = errors.New("vm: operation suspended")
	// ErrUnbound is returned when a determined value was required.
	ErrUnbound = errors.New("vm: value is not determined")
)

// RaisedError carries a raised payload across into Go error handling.
type RaisedError struct {
	Payload Value
	text    string
}

func (e *RaisedError) Error() string {
	return "vm: raised " + e.text
}

// Labels of the payload tuples raised by builtin operations.
const (
	LabelTypeError       = "typeError"
	LabelDivisionByZero  = "divisionByZero"
	LabelIndexOutOfRange = "indexOutOfRange"
	LabelFailure         = "failure"
	LabelArityMismatch   = "arityMismatch"
	LabelNoSuchOperation = "noSuchOperation"
)

// raiseTuple builds label(fields...) and raises it.
func (vm *VM) raiseTuple(label string, fields ...Value) BuiltinResult {
	return Raise(vm.newTuple(vm.Atom(label), fields))
}

// TypeError raises typeError(Expected Got) where Expected is the name of the
// type the operation wanted.
func (vm *VM) TypeError(expected *Type, got Value) BuiltinResult {
	return vm.raiseTuple(LabelTypeError, vm.Atom(expected.Name()), got)
}

// DivisionByZero raises divisionByZero(Dividend).
func (vm *VM) DivisionByZero(dividend Value) BuiltinResult {
	return vm.raiseTuple(LabelDivisionByZero, dividend)
}

// IndexOutOfRange raises indexOutOfRange(Tuple Index).
func (vm *VM) IndexOutOfRange(tuple, index Value) BuiltinResult {
	return vm.raiseTuple(LabelIndexOutOfRange, tuple, index)
}

// Failure raises failure(Left Right) for an incompatible binding.
func (vm *VM) Failure(left, right Value) BuiltinResult {
	return vm.raiseTuple(LabelFailure, left, right)
}

func (vm *VM) arityMismatch(selector string, want, got int) BuiltinResult {
	return vm.raiseTuple(LabelArityMismatch, vm.Atom(selector), FromSmallInt(int64(want)), FromSmallInt(int64(got)))
}

func (vm *VM) noSuchOperation(t *Type, selector string) BuiltinResult {
	return vm.raiseTuple(LabelNoSuchOperation, vm.Atom(t.Name()), vm.Atom(selector))
}

// RaisedLabel returns the label of a raised tuple payload, or "" when the
// payload is not a tuple. Intended for handlers that dispatch on the kind
// of error.
func (vm *VM) RaisedLabel(r BuiltinResult) string {
	if !r.IsRaise() {
		return ""
	}
	p, _ := vm.Deref(r.Payload())
	if vm.TypeOf(p) != TupleType {
		return ""
	}
	return vm.AtomName(vm.tupleData(p).Label)
}
