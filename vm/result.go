package vm

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// BuiltinResult: outcome of one builtin operation call
// ---------------------------------------------------------------------------

// ResultKind identifies how a builtin operation finished.
type ResultKind uint8

const (
	// ResultContinue means the operation completed and its outputs are valid.
	ResultContinue ResultKind = iota
	// ResultSuspend means an input was an unbound variable. The caller must
	// park the computation and re-invoke the same operation with the same
	// arguments once that variable is bound.
	ResultSuspend
	// ResultRaise means the operation is invalid for its inputs. The payload
	// must be propagated to the nearest handler.
	ResultRaise
)

func (k ResultKind) String() string {
	switch k {
	case ResultContinue:
		return "continue"
	case ResultSuspend:
		return "suspend"
	case ResultRaise:
		return "raise"
	}
	return fmt.Sprintf("ResultKind(%d)", uint8(k))
}

// BuiltinResult is returned by every builtin operation. Outputs are only
// meaningful when the kind is ResultContinue.
type BuiltinResult struct {
	kind    ResultKind
	operand Value // dependency for suspend, payload for raise
}

// Continue is the successful result.
var Continue = BuiltinResult{kind: ResultContinue}

// SuspendOn reports that the operation needs dep, an unbound variable,
// to be determined before it can complete.
func SuspendOn(dep Value) BuiltinResult {
	return BuiltinResult{kind: ResultSuspend, operand: dep}
}

// Raise reports a domain error carrying payload.
func Raise(payload Value) BuiltinResult {
	return BuiltinResult{kind: ResultRaise, operand: payload}
}

// Kind returns the outcome.
func (r BuiltinResult) Kind() ResultKind { return r.kind }

// IsContinue reports whether the operation completed.
func (r BuiltinResult) IsContinue() bool { return r.kind == ResultContinue }

// IsSuspend reports whether the operation must be retried later.
func (r BuiltinResult) IsSuspend() bool { return r.kind == ResultSuspend }

// IsRaise reports whether the operation raised.
func (r BuiltinResult) IsRaise() bool { return r.kind == ResultRaise }

// Dependency returns the variable a suspended operation is waiting on.
// Panics if the result is not a suspension.
func (r BuiltinResult) Dependency() Value {
	if r.kind != ResultSuspend {
		panic("BuiltinResult.Dependency: not a suspension")
	}
	return r.operand
}

// Payload returns the raised value.
// Panics if the result is not a raise.
func (r BuiltinResult) Payload() Value {
	if r.kind != ResultRaise {
		panic("BuiltinResult.Payload: not a raise")
	}
	return r.operand
}

// Err converts a raise into a Go error for code outside the VM.
// Returns nil for Continue and ErrSuspended wrapped for a suspension.
func (r BuiltinResult) Err(vm *VM) error {
	switch r.kind {
	case ResultRaise:
		return &RaisedError{Payload: r.operand, text: vm.Print(r.operand)}
	case ResultSuspend:
		return fmt.Errorf("%w on %s", ErrSuspended, vm.Print(r.operand))
	}
	return nil
}

func (r BuiltinResult) String() string {
	return r.kind.String()
}
