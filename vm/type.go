package vm

// ---------------------------------------------------------------------------
// Type descriptors
// ---------------------------------------------------------------------------

// StorageKind says where the representation of a type's values lives.
type StorageKind uint8

const (
	// StorageInline values are encoded entirely in the handle.
	StorageInline StorageKind = iota
	// StorageBoxed values live in the store; the handle holds an index.
	StorageBoxed
)

func (k StorageKind) String() string {
	if k == StorageInline {
		return "inline"
	}
	return "boxed"
}

// Type describes one built-in value type. There is exactly one *Type per
// built-in type for the life of the process and it is never mutated, so
// type tests are pointer comparisons.
type Type struct {
	name    string
	builtin bool
	storage StorageKind
}

func newType(name string, builtin bool, storage StorageKind) *Type {
	return &Type{name: name, builtin: builtin, storage: storage}
}

// Name returns the display name of the type.
func (t *Type) Name() string { return t.name }

// IsBuiltin reports whether the type is provided by the VM itself.
func (t *Type) IsBuiltin() bool { return t.builtin }

// Storage returns how values of this type are held.
func (t *Type) Storage() StorageKind { return t.storage }

func (t *Type) String() string { return t.name }

// Built-in types.
var (
	BooleanType  = newType("Boolean", true, StorageInline)
	SmallIntType = newType("SmallInt", true, StorageInline)
	BigIntType   = newType("BigInt", true, StorageBoxed)
	FloatType    = newType("Float", true, StorageInline)
	AtomType     = newType("Atom", true, StorageInline)
	UnitType     = newType("Unit", true, StorageInline)
	TupleType    = newType("Tuple", true, StorageBoxed)
	NameType     = newType("Name", true, StorageBoxed)
	VariableType = newType("Variable", true, StorageBoxed)
)

// TypeRegistry is the read-only catalogue of built-in types.
type TypeRegistry struct {
	byName map[string]*Type
	all    []*Type
}

// Types holds every built-in type. It is populated once during package
// initialization and only read afterwards.
var Types = newTypeRegistry(
	BooleanType,
	SmallIntType,
	BigIntType,
	FloatType,
	AtomType,
	UnitType,
	TupleType,
	NameType,
	VariableType,
)

func newTypeRegistry(types ...*Type) *TypeRegistry {
	r := &TypeRegistry{byName: make(map[string]*Type, len(types))}
	for _, t := range types {
		if _, dup := r.byName[t.name]; dup {
			panic("vm: duplicate built-in type " + t.name)
		}
		r.byName[t.name] = t
		r.all = append(r.all, t)
	}
	return r
}

// Lookup returns the type registered under name.
func (r *TypeRegistry) Lookup(name string) (*Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// All returns the types in registration order.
func (r *TypeRegistry) All() []*Type {
	out := make([]*Type, len(r.all))
	copy(out, r.all)
	return out
}

// Len returns the number of registered types.
func (r *TypeRegistry) Len() int {
	return len(r.all)
}

// TypeOf returns the type of the value referenced by v, without
// dereferencing variables. A bound variable still reports VariableType;
// use Deref first to see through it.
func (vm *VM) TypeOf(v Value) *Type {
	switch {
	case v.IsFloat():
		return FloatType
	case v.IsSmallInt():
		return SmallIntType
	case v.IsAtom():
		return AtomType
	case v.IsBool():
		return BooleanType
	case v == Unit:
		return UnitType
	case v.IsRef():
		return vm.store.typeAt(v.RefIndex())
	}
	panic("vm: TypeOf: malformed handle")
}
