package vm

import (
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Name: boxed unforgeable token identified by a UUID
// ---------------------------------------------------------------------------

type nameStorage struct{}

func (nameStorage) Type() *Type { return NameType }

func (nameStorage) Load(vm *VM, self Self[uuid.UUID]) uuid.UUID {
	return vm.store.payload(self.handle.RefIndex()).(uuid.UUID)
}

func (nameStorage) Build(vm *VM, raw uuid.UUID) Self[uuid.UUID] {
	return Self[uuid.UUID]{handle: vm.store.alloc(NameType, raw)}
}

// NameStorage maps Name to its UUID.
var NameStorage Storage[uuid.UUID] = nameStorage{}

// Name is the implementation facet of names.
type Name struct {
	Implementation[uuid.UUID]
}

var nameFacet = facet[uuid.UUID, Name]{
	storage: NameStorage,
	wrap:    func(i Implementation[uuid.UUID]) Name { return Name{i} },
}

// NewName creates a fresh name, distinct from every other name.
func NewName(vm *VM) Value {
	return BuildName(vm, uuid.New())
}

// BuildName returns a handle for the name with the given identity. Two
// handles built from the same UUID are equal.
func BuildName(vm *VM, id uuid.UUID) Value {
	return NameStorage.Build(vm, id).Handle()
}

// NameID returns the identity of a name handle.
func (vm *VM) NameID(v Value) (uuid.UUID, bool) {
	self, ok := nameFacet.selfOf(vm, v)
	if !ok {
		return uuid.Nil, false
	}
	return nameFacet.resolve(vm, self).Value(), true
}
