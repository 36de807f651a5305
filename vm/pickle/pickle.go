// Package pickle serializes determined values to canonical CBOR so they can
// be stored or shipped to another VM.
//
// A pickle is a flat node table. Tuples refer to their fields by node
// index, which preserves sharing and allows cyclic values.
package pickle

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/chazu/mozart/vm"
)

// Version is the current pickle format version.
const Version = 1

// ErrUnsupportedVersion is returned for pickles written by a newer format.
var ErrUnsupportedVersion = errors.New("pickle: unsupported version")

// NodeKind identifies the kind of value stored in a Node.
type NodeKind uint8

const (
	KindBool   NodeKind = 1
	KindInt    NodeKind = 2
	KindBigInt NodeKind = 3
	KindFloat  NodeKind = 4
	KindAtom   NodeKind = 5
	KindUnit   NodeKind = 6
	KindTuple  NodeKind = 7
	KindName   NodeKind = 8
)

// Pickle is the top-level encoded structure.
type Pickle struct {
	Version uint8  `cbor:"1,keyasint"`
	Root    uint32 `cbor:"2,keyasint"`
	Nodes   []Node `cbor:"3,keyasint"`
}

// Node is one value in the table.
type Node struct {
	Kind   NodeKind `cbor:"1,keyasint"`
	Bool   bool     `cbor:"2,keyasint,omitempty"`
	Int    int64    `cbor:"3,keyasint,omitempty"`
	Float  uint64   `cbor:"4,keyasint,omitempty"` // IEEE 754 bits, so -0.0 survives
	Text   string   `cbor:"5,keyasint,omitempty"` // atom name, tuple label, big integer digits
	Bytes  []byte   `cbor:"6,keyasint,omitempty"` // name identity
	Fields []uint32 `cbor:"7,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("pickle: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal encodes v. Every part of v must be determined; an unbound
// variable anywhere yields an error wrapping vm.ErrUnbound.
func Marshal(m *vm.VM, v vm.Value) ([]byte, error) {
	e := &encoder{vm: m, index: make(map[vm.Value]uint32)}
	root, err := e.encode(v)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(&Pickle{Version: Version, Root: root, Nodes: e.nodes})
}

type encoder struct {
	vm    *vm.VM
	nodes []Node
	index map[vm.Value]uint32
}

func (e *encoder) encode(v vm.Value) (uint32, error) {
	v, ok := e.vm.Deref(v)
	if !ok {
		return 0, fmt.Errorf("pickle: %w", vm.ErrUnbound)
	}
	if idx, seen := e.index[v]; seen {
		return idx, nil
	}
	idx := uint32(len(e.nodes))
	e.index[v] = idx
	e.nodes = append(e.nodes, Node{})

	var n Node
	switch t := e.vm.TypeOf(v); t {
	case vm.BooleanType:
		n = Node{Kind: KindBool, Bool: v == vm.True}
	case vm.SmallIntType:
		n = Node{Kind: KindInt, Int: v.SmallInt()}
	case vm.BigIntType:
		i, _ := e.vm.IntValue(v)
		n = Node{Kind: KindBigInt, Text: i.String()}
	case vm.FloatType:
		n = Node{Kind: KindFloat, Float: math.Float64bits(v.Float64())}
	case vm.AtomType:
		n = Node{Kind: KindAtom, Text: e.vm.AtomName(v)}
	case vm.UnitType:
		n = Node{Kind: KindUnit}
	case vm.NameType:
		id, _ := e.vm.NameID(v)
		n = Node{Kind: KindName, Bytes: id[:]}
	case vm.TupleType:
		label, _ := e.vm.Send(v, "label")
		n = Node{Kind: KindTuple, Text: e.vm.AtomName(label)}
		width, _ := e.vm.Send(v, "width")
		for i := int64(1); i <= width.SmallInt(); i++ {
			f, _ := e.vm.Send(v, ".", vm.FromSmallInt(i))
			fi, err := e.encode(f)
			if err != nil {
				return 0, err
			}
			n.Fields = append(n.Fields, fi)
		}
	default:
		return 0, fmt.Errorf("pickle: cannot encode %s", t.Name())
	}
	e.nodes[idx] = n
	return idx, nil
}

// Unmarshal decodes a pickle into values allocated in m.
func Unmarshal(m *vm.VM, data []byte) (vm.Value, error) {
	var p Pickle
	if err := cbor.Unmarshal(data, &p); err != nil {
		return vm.Unit, fmt.Errorf("pickle: unmarshal: %w", err)
	}
	if p.Version > Version {
		return vm.Unit, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}
	if int(p.Root) >= len(p.Nodes) {
		return vm.Unit, fmt.Errorf("pickle: root %d out of range", p.Root)
	}

	// Tuples may refer forward or to themselves, so every tuple first gets
	// a placeholder variable that is bound once all nodes exist.
	handles := make([]vm.Value, len(p.Nodes))
	for i, n := range p.Nodes {
		h, err := decodeLeaf(m, n)
		if err != nil {
			return vm.Unit, fmt.Errorf("pickle: node %d: %w", i, err)
		}
		handles[i] = h
	}
	for i, n := range p.Nodes {
		if n.Kind != KindTuple {
			continue
		}
		fields := make([]vm.Value, len(n.Fields))
		for j, fi := range n.Fields {
			if int(fi) >= len(handles) {
				return vm.Unit, fmt.Errorf("pickle: node %d: field %d out of range", i, fi)
			}
			fields[j] = handles[fi]
		}
		if res := m.Bind(handles[i], vm.BuildTuple(m, n.Text, fields...)); !res.IsContinue() {
			return vm.Unit, fmt.Errorf("pickle: node %d: %w", i, res.Err(m))
		}
	}
	root, _ := m.Deref(handles[p.Root])
	return root, nil
}

func decodeLeaf(m *vm.VM, n Node) (vm.Value, error) {
	switch n.Kind {
	case KindBool:
		return vm.BuildBoolean(m, n.Bool), nil
	case KindInt:
		return vm.BuildInt(m, n.Int), nil
	case KindBigInt:
		i, ok := new(big.Int).SetString(n.Text, 10)
		if !ok {
			return vm.Unit, fmt.Errorf("bad integer %q", n.Text)
		}
		return vm.BuildBigInt(m, i), nil
	case KindFloat:
		return vm.BuildFloat(m, math.Float64frombits(n.Float)), nil
	case KindAtom:
		return vm.BuildAtom(m, n.Text), nil
	case KindUnit:
		return vm.BuildUnit(m), nil
	case KindName:
		id, err := uuid.FromBytes(n.Bytes)
		if err != nil {
			return vm.Unit, err
		}
		return vm.BuildName(m, id), nil
	case KindTuple:
		return vm.NewVariable(m), nil
	}
	return vm.Unit, fmt.Errorf("unknown kind %d", n.Kind)
}
