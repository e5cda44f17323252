package ir

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// String renders the graph in a stable textual form, one definition per
// line. External inputs come first, then live operations in creation
// order. The output is deterministic and is what golden tests compare.
//
//	%0 = input : number
//	%1 = BOp() : (number)
//	%2 = AOp(%1) {attr = 5} : (number)
func (g *Graph) String() string {
	var b strings.Builder
	for _, v := range g.externals {
		fmt.Fprintf(&b, "%s = input : %s\n", v.Name(), typeString(v.typ))
	}
	for _, op := range g.ops {
		if op.erased {
			continue
		}
		writeOperation(&b, op)
	}
	return b.String()
}

func writeOperation(b *strings.Builder, op *Operation) {
	results := op.Results()
	if len(results) > 0 {
		b.WriteString(strings.Join(results.Names(), ", "))
		b.WriteString(" = ")
	}

	b.WriteString(op.Operator())
	b.WriteByte('(')
	var args []string
	for i := 0; i < op.NumOperandSlots(); i++ {
		args = append(args, op.OperandGroup(i).Names()...)
	}
	b.WriteString(strings.Join(args, ", "))
	b.WriteByte(')')

	if names := op.AttrNames(); len(names) > 0 {
		b.WriteString(" {")
		for i, name := range names {
			if i > 0 {
				b.WriteString(", ")
			}
			v, _ := op.Attr(name)
			fmt.Fprintf(b, "%s = %s", name, FormatAttr(v))
		}
		b.WriteByte('}')
	}

	if len(results) > 0 {
		b.WriteString(" : (")
		var types []string
		for _, v := range results {
			types = append(types, typeString(v.typ))
		}
		b.WriteString(strings.Join(types, ", "))
		b.WriteByte(')')
	}
	b.WriteByte('\n')
}

// FormatAttr renders an attribute value for printing. Strings are
// quoted, numbers and bools printed bare, anything else falls back to
// cty's GoString.
func FormatAttr(v cty.Value) string {
	if v.IsNull() || !v.IsKnown() {
		return v.GoString()
	}
	switch v.Type() {
	case cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	default:
		return v.GoString()
	}
}

func typeString(t cty.Type) string {
	return t.FriendlyName()
}
