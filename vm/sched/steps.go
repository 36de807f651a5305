package sched

import (
	"github.com/chazu/mozart/vm"
)

// Apply sends selector to self and binds the output to into. The send is
// repeated from scratch if it suspends.
func Apply(into, self vm.Value, selector string, args ...vm.Value) Step {
	return func(m *vm.VM) vm.BuiltinResult {
		out, res := m.Send(self, selector, args...)
		if !res.IsContinue() {
			return res
		}
		return m.Bind(into, out)
	}
}

// Bind binds x and y.
func Bind(x, y vm.Value) Step {
	return func(m *vm.VM) vm.BuiltinResult {
		return m.Bind(x, y)
	}
}

// Wait suspends until v is determined.
func Wait(v vm.Value) Step {
	return func(m *vm.VM) vm.BuiltinResult {
		if d, ok := m.Deref(v); !ok {
			return vm.SuspendOn(d)
		}
		return vm.Continue
	}
}

// Handler receives the payload of a raise caught by Try. Its result
// replaces the raise.
type Handler func(m *vm.VM, payload vm.Value) vm.BuiltinResult

// Try runs body and passes a raised payload to handler instead of ending
// the thread. A raise from handler goes to the next enclosing Try. If
// handler suspends, body is run again on retry; a raising body has no side
// effects, so this is safe.
func Try(body Step, handler Handler) Step {
	return func(m *vm.VM) vm.BuiltinResult {
		res := body(m)
		if !res.IsRaise() {
			return res
		}
		return handler(m, res.Payload())
	}
}
