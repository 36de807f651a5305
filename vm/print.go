package vm

import (
	"strconv"
	"strings"
	"unicode"
)

// maxPrintDepth bounds printing of deep or cyclic tuples.
const maxPrintDepth = 32

// Print renders v in Oz source syntax. Unbound variables print as _ and
// negative numbers use ~.
func (vm *VM) Print(v Value) string {
	var sb strings.Builder
	vm.print(&sb, v, 0)
	return sb.String()
}

func (vm *VM) print(sb *strings.Builder, v Value, depth int) {
	v, ok := vm.Deref(v)
	if !ok {
		sb.WriteByte('_')
		return
	}
	switch vm.TypeOf(v) {
	case BooleanType:
		if v == True {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case UnitType:
		sb.WriteString("unit")
	case SmallIntType:
		sb.WriteString(ozNumber(strconv.FormatInt(v.SmallInt(), 10)))
	case BigIntType:
		n, _ := vm.IntValue(v)
		sb.WriteString(ozNumber(n.String()))
	case FloatType:
		sb.WriteString(ozFloat(v.Float64()))
	case AtomType:
		sb.WriteString(quoteAtom(vm.AtomName(v)))
	case NameType:
		id, _ := vm.NameID(v)
		sb.WriteString("<N:")
		sb.WriteString(id.String())
		sb.WriteByte('>')
	case TupleType:
		if depth >= maxPrintDepth {
			sb.WriteString("...")
			return
		}
		t := vm.tupleData(v)
		sb.WriteString(quoteAtom(vm.AtomName(t.Label)))
		sb.WriteByte('(')
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteByte(' ')
			}
			vm.print(sb, f, depth+1)
		}
		sb.WriteByte(')')
	}
}

func ozNumber(s string) string {
	return strings.Replace(s, "-", "~", 1)
}

func ozFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return strings.ReplaceAll(s, "-", "~")
}

// quoteAtom quotes names that are not plain lowercase identifiers.
func quoteAtom(name string) string {
	plain := name != ""
	for i, r := range name {
		if i == 0 && !unicode.IsLower(r) {
			plain = false
			break
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			plain = false
			break
		}
	}
	switch name {
	case "true", "false", "unit":
		plain = false
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "\\'") + "'"
}
