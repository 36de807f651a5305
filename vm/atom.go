package vm

import (
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// AtomTable: interned atom names
// ---------------------------------------------------------------------------

// AtomTable interns atom names to IDs. Two atoms are equal exactly when
// their IDs are.
type AtomTable struct {
	names *interner
}

// NewAtomTable creates an empty atom table.
func NewAtomTable() *AtomTable {
	return &AtomTable{names: newInterner(256)}
}

// Intern returns the ID for name, creating one if needed.
func (at *AtomTable) Intern(name string) uint32 {
	return uint32(at.names.intern(name))
}

// Lookup returns the ID for name without creating it.
func (at *AtomTable) Lookup(name string) (uint32, bool) {
	id, ok := at.names.lookup(name)
	return uint32(id), ok
}

// Name returns the name for id, or "" if invalid.
func (at *AtomTable) Name(id uint32) string {
	return at.names.name(int(id))
}

// Len returns the number of interned atoms.
func (at *AtomTable) Len() int {
	return at.names.len()
}

// ---------------------------------------------------------------------------
// Atom: inline, stored as its print name
// ---------------------------------------------------------------------------

type atomStorage struct{}

func (atomStorage) Type() *Type { return AtomType }

func (atomStorage) Load(vm *VM, self Self[string]) string {
	return vm.Atoms.Name(self.handle.AtomID())
}

func (atomStorage) Build(vm *VM, raw string) Self[string] {
	return Self[string]{handle: FromAtomID(vm.Atoms.Intern(raw))}
}

// AtomStorage maps Atom to its print name.
var AtomStorage Storage[string] = atomStorage{}

// Atom is the implementation facet of atoms.
type Atom struct {
	Implementation[string]
}

var atomFacet = facet[string, Atom]{
	storage: AtomStorage,
	wrap:    func(i Implementation[string]) Atom { return Atom{i} },
}

// BuildAtom returns the handle of the atom named name.
func BuildAtom(vm *VM, name string) Value {
	return AtomStorage.Build(vm, name).Handle()
}

// Atom is shorthand for BuildAtom.
func (vm *VM) Atom(name string) Value {
	return BuildAtom(vm, name)
}

// AtomName returns the print name of an atom handle, or "" if v is not an
// atom.
func (vm *VM) AtomName(v Value) string {
	if !v.IsAtom() {
		return ""
	}
	return atomFacet.resolve(vm, Self[string]{handle: v}).Value()
}

// Length returns the number of characters in the print name.
func (a Atom) Length(self Self[string], vm *VM) (Value, BuiltinResult) {
	return BuildSmallInt(vm, int64(utf8.RuneCountInString(a.Value()))), Continue
}

// Less orders atoms by print name.
func (a Atom) Less(self Self[string], vm *VM, other Value) (Value, BuiltinResult) {
	if res := vm.need(&other); !res.IsContinue() {
		return Unit, res
	}
	o, ok := atomFacet.selfOf(vm, other)
	if !ok {
		return Unit, vm.TypeError(AtomType, other)
	}
	return FromBool(a.Value() < atomFacet.resolve(vm, o).Value()), Continue
}

func (vm *VM) registerAtomOperations() {
	define0(vm, atomFacet, "length", Atom.Length)
	define1(vm, atomFacet, "<", Atom.Less)
}
