package engine

import (
	"github.com/Robertorosmaninho/mlir/internal/ir"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

// match attempts a compiled rule's source pattern against a candidate
// root. Returns the completed binding environment, or (nil, false) on
// any failure at any depth; matching is all-or-nothing and the partial
// environment is simply discarded. Match failure is expected and
// frequent; it is pure control flow, never an error.
//
// Additional rule constraints are evaluated only after the full tree
// has matched, so every symbol they reference is bound.
func match(c *pattern.Compiled, candidate *ir.Operation) (*Env, bool) {
	env := NewEnv()
	if !matchNode(c.Rule.Source, candidate, env) {
		return nil, false
	}
	for _, con := range c.Rule.Constraints {
		if !con.Pred(env) {
			return nil, false
		}
	}
	return env, true
}

// matchNode recursively matches one source pattern node against one
// operation: operator identity, then each declared operand slot, then
// each declared attribute, then the optional node capture.
func matchNode(s *pattern.Source, op *ir.Operation, env *Env) bool {
	if op.Operator() != s.Op {
		return false
	}

	sig := op.Sig()
	if len(s.Args) != len(sig.Operands)+len(sig.Attributes) {
		// Compile guarantees position counts; a mismatch here means the
		// rule bypassed compilation and cannot be trusted.
		return false
	}

	for i, arg := range s.Args {
		if i < len(sig.Operands) {
			if !matchOperand(arg, op.OperandGroup(i), env) {
				return false
			}
			continue
		}
		name := sig.Attributes[i-len(sig.Operands)]
		if !matchAttribute(arg, op, name, env) {
			return false
		}
	}

	if s.Symbol != "" {
		slots := make([]ir.ValueGroup, op.NumResultSlots())
		for k := range slots {
			slots[k] = op.ResultGroup(k)
		}
		env.bind(s.Symbol, GroupBinding{Group: op.Results(), Slots: slots})
	}
	return true
}

func matchOperand(arg pattern.Arg, group ir.ValueGroup, env *Env) bool {
	switch a := arg.(type) {
	case pattern.Wildcard:
		return true
	case pattern.Bind:
		env.bind(a.Symbol, GroupBinding{Group: group})
		return true
	case pattern.TypeIs:
		for _, v := range group {
			if !a.Pred(v.Type()) {
				return false
			}
		}
		return true
	case pattern.Nested:
		// Every value of the group must come from one producing
		// operation; a group spanning distinct producers (or external
		// inputs) cannot match a single nested pattern.
		producer := group.UniqueProducer()
		if producer == nil {
			return false
		}
		return matchNode(a.Pattern, producer, env)
	default:
		return false
	}
}

func matchAttribute(arg pattern.Arg, op *ir.Operation, name string, env *Env) bool {
	val, ok := op.Attr(name)
	if !ok {
		return false
	}
	switch a := arg.(type) {
	case pattern.Wildcard:
		return true
	case pattern.Bind:
		env.bind(a.Symbol, AttrBinding{Value: val})
		return true
	case pattern.AttrIs:
		return a.Pred(val)
	default:
		return false
	}
}
