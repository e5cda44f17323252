package ir

import (
	"slices"

	"github.com/zclconf/go-cty/cty"
)

// Operation is a node of the operation graph: an operator identifier,
// operand groups aligned with the declared operand slots, an immutable
// attribute map, and result groups aligned with the declared result
// slots. Actual counts of variadic slots are fixed at construction.
type Operation struct {
	sig      Signature
	operands []ValueGroup // one group per declared operand slot
	attrs    map[string]cty.Value
	results  []ValueGroup // one group per declared result slot
	seq      int          // creation order within the graph
	erased   bool
}

// Operator returns the operator identifier.
func (op *Operation) Operator() string { return op.sig.Name }

// Sig returns the operator's declared signature.
func (op *Operation) Sig() Signature { return op.sig }

// NumOperandSlots returns the number of declared operand slots.
func (op *Operation) NumOperandSlots() int { return len(op.operands) }

// OperandGroup returns the actual value group bound to declared operand
// slot i.
func (op *Operation) OperandGroup(i int) ValueGroup { return op.operands[i] }

// NumResultSlots returns the number of declared result slots.
func (op *Operation) NumResultSlots() int { return len(op.results) }

// ResultGroup returns the actual value group of declared result slot i.
func (op *Operation) ResultGroup(i int) ValueGroup { return op.results[i] }

// Results returns all result values flattened across declared slots, in
// slot order. This is the "full result value group" a node-capture
// symbol binds to.
func (op *Operation) Results() ValueGroup {
	var all ValueGroup
	for _, g := range op.results {
		all = append(all, g...)
	}
	return all
}

// Attr returns the named attribute value, reporting whether it exists.
func (op *Operation) Attr(name string) (cty.Value, bool) {
	v, ok := op.attrs[name]
	return v, ok
}

// AttrNames returns the attribute names in sorted order. Attribute maps
// are semantically orderless; sorting keeps iteration deterministic.
func (op *Operation) AttrNames() []string {
	names := make([]string, 0, len(op.attrs))
	for name := range op.attrs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Erased reports whether the operation has been removed from the graph
// by a rewrite.
func (op *Operation) Erased() bool { return op.erased }

// hasResultUses reports whether any result value still has a consumer.
func (op *Operation) hasResultUses() bool {
	for _, g := range op.results {
		for _, v := range g {
			if len(v.uses) > 0 {
				return true
			}
		}
	}
	return false
}
