package ir

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Graph owns a DAG of operations and their values.
//
// The graph assumes exclusive mutable access for the duration of a
// rewrite pass: no external mutation while the driver runs. All methods
// are single-threaded by design.
type Graph struct {
	reg       *Registry
	ops       []*Operation // creation order; erased operations stay flagged
	externals ValueGroup
	nextID    int
	nextSeq   int
}

// NewGraph creates an empty graph over the given signature registry.
func NewGraph(reg *Registry) *Graph {
	return &Graph{reg: reg}
}

// Registry returns the signature registry the graph was built over.
func (g *Graph) Registry() *Registry { return g.reg }

// AddInput creates an external input value of the given type. External
// inputs have no producer and are listed before any operation when the
// graph is printed.
func (g *Graph) AddInput(typ cty.Type) *Value {
	v := &Value{typ: typ, id: g.nextID, index: -1}
	g.nextID++
	g.externals = append(g.externals, v)
	return v
}

// Inputs returns the external input values in creation order.
func (g *Graph) Inputs() ValueGroup { return g.externals }

// CreateOperation constructs a node and wires its use edges.
//
// operands must supply one group per declared operand slot, with exactly
// one value in every scalar slot. resultTypes must likewise supply one
// type list per declared result slot; a scalar result slot takes exactly
// one type, a variadic slot any number; this fixes the variadic actual
// count at construction. attrs must cover exactly the declared attribute
// names. Violations return an error wrapping ErrArityMismatch where the
// cause is a count, and a plain error otherwise.
func (g *Graph) CreateOperation(operator string, operands []ValueGroup, attrs map[string]cty.Value, resultTypes [][]cty.Type) (*Operation, error) {
	sig, ok := g.reg.Lookup(operator)
	if !ok {
		return nil, fmt.Errorf("unknown operator %q", operator)
	}
	if len(operands) != len(sig.Operands) {
		return nil, fmt.Errorf("%w: operator %s declares %d operand slots, got %d groups",
			ErrArityMismatch, operator, len(sig.Operands), len(operands))
	}
	for i, arity := range sig.Operands {
		if arity == SlotScalar && len(operands[i]) != 1 {
			return nil, fmt.Errorf("%w: operator %s operand slot %d is scalar, got %d values",
				ErrArityMismatch, operator, i, len(operands[i]))
		}
	}
	if len(resultTypes) != len(sig.Results) {
		return nil, fmt.Errorf("%w: operator %s declares %d result slots, got %d type lists",
			ErrArityMismatch, operator, len(sig.Results), len(resultTypes))
	}
	for i, arity := range sig.Results {
		if arity == SlotScalar && len(resultTypes[i]) != 1 {
			return nil, fmt.Errorf("%w: operator %s result slot %d is scalar, got %d types",
				ErrArityMismatch, operator, i, len(resultTypes[i]))
		}
	}
	if err := checkAttrs(sig, attrs); err != nil {
		return nil, err
	}

	// Copy attrs so the operation's map is immutable from the caller's
	// point of view.
	attrCopy := make(map[string]cty.Value, len(attrs))
	for name, v := range attrs {
		attrCopy[name] = v
	}

	op := &Operation{
		sig:   sig,
		attrs: attrCopy,
		seq:   g.nextSeq,
	}
	g.nextSeq++

	op.operands = make([]ValueGroup, len(operands))
	for slot, group := range operands {
		op.operands[slot] = append(ValueGroup(nil), group...)
		for idx, v := range group {
			v.addUse(Use{Consumer: op, Slot: slot, Index: idx})
		}
	}

	op.results = make([]ValueGroup, len(resultTypes))
	flat := 0
	for slot, types := range resultTypes {
		group := make(ValueGroup, len(types))
		for i, typ := range types {
			group[i] = &Value{producer: op, index: flat, typ: typ, id: g.nextID}
			g.nextID++
			flat++
		}
		op.results[slot] = group
	}

	g.ops = append(g.ops, op)
	return op, nil
}

// Operations returns the live (non-erased) operations in creation order.
func (g *Graph) Operations() []*Operation {
	live := make([]*Operation, 0, len(g.ops))
	for _, op := range g.ops {
		if !op.erased {
			live = append(live, op)
		}
	}
	return live
}

// ReplaceAllUses redirects every use of the old group's values to the
// new group's values, position for position. Both groups must have the
// same length.
//
// Panics on internal inconsistency (a recorded use edge that the
// consumer does not actually hold): the graph is corrupt and the engine
// must not continue.
func (g *Graph) ReplaceAllUses(old, repl ValueGroup) error {
	if len(old) != len(repl) {
		return fmt.Errorf("%w: replacing group of %d values with group of %d", ErrArityMismatch, len(old), len(repl))
	}
	for i, oldVal := range old {
		newVal := repl[i]
		if oldVal == newVal {
			continue
		}
		// Snapshot: rewriting mutates the use list being walked.
		uses := append([]Use(nil), oldVal.uses...)
		for _, u := range uses {
			group := u.Consumer.operands[u.Slot]
			if group[u.Index] != oldVal {
				panic(fmt.Sprintf("ir: use edge for %s points at %s slot %d index %d which holds %s",
					oldVal.Name(), u.Consumer.Operator(), u.Slot, u.Index, group[u.Index].Name()))
			}
			group[u.Index] = newVal
			oldVal.removeUse(u)
			newVal.addUse(u)
		}
	}
	return nil
}

// ReplaceAllUsesAndErase substitutes the operation's declared outputs
// slot-for-slot with the replacement groups, then erases the operation.
// repl must carry one group per declared result slot, each matching the
// slot's actual value count.
//
// Substitution is all-or-nothing: every slot width is validated before
// any use edge moves, so an error leaves the graph untouched.
func (g *Graph) ReplaceAllUsesAndErase(op *Operation, repl []ValueGroup) error {
	if op.erased {
		panic(fmt.Sprintf("ir: operation %s already erased", op.Operator()))
	}
	if len(repl) != len(op.results) {
		return fmt.Errorf("%w: operator %s has %d result slots, got %d replacement groups",
			ErrArityMismatch, op.Operator(), len(op.results), len(repl))
	}
	for slot, group := range op.results {
		if len(repl[slot]) != len(group) {
			return fmt.Errorf("result slot %d: %w: replacing group of %d values with group of %d",
				slot, ErrArityMismatch, len(group), len(repl[slot]))
		}
	}
	for slot, group := range op.results {
		if err := g.ReplaceAllUses(group, repl[slot]); err != nil {
			return fmt.Errorf("result slot %d: %w", slot, err)
		}
	}
	g.eraseOperation(op)
	return nil
}

// Mark returns a marker for the current construction point, paired
// with RollbackTo to undo speculative construction.
func (g *Graph) Mark() int { return len(g.ops) }

// RollbackTo erases, newest first, every live operation created after
// the marker. Panics if such an operation's results are still consumed
// by an operation created before the marker.
func (g *Graph) RollbackTo(mark int) {
	for i := len(g.ops) - 1; i >= mark; i-- {
		if !g.ops[i].erased {
			g.eraseOperation(g.ops[i])
		}
	}
}

// eraseOperation detaches the operation's operand use edges and flags
// it erased. Panics if any result value is still consumed.
func (g *Graph) eraseOperation(op *Operation) {
	if op.hasResultUses() {
		panic(fmt.Sprintf("ir: erasing %s while results still have uses", op.Operator()))
	}
	for slot, group := range op.operands {
		for idx, v := range group {
			v.removeUse(Use{Consumer: op, Slot: slot, Index: idx})
		}
	}
	op.erased = true
}

func checkAttrs(sig Signature, attrs map[string]cty.Value) error {
	for _, name := range sig.Attributes {
		if _, ok := attrs[name]; !ok {
			return fmt.Errorf("operator %s: missing attribute %q", sig.Name, name)
		}
	}
	for name := range attrs {
		if !containsString(sig.Attributes, name) {
			return fmt.Errorf("operator %s: undeclared attribute %q", sig.Name, name)
		}
	}
	return nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
