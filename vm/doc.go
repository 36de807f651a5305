// Package vm implements the value layer of the Mozart dataflow VM.
//
// This package contains:
//   - NaN-boxed value handles
//   - Built-in type descriptors with typed storage
//   - VTable-based dispatch of builtin operations
//   - Dataflow variables and the store backing boxed values
//   - The continue/suspend/raise result protocol
package vm
