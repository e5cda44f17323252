package engine

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/Robertorosmaninho/mlir/internal/ir"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

// Builder constructs replacement subgraphs from a rule's result
// patterns and a completed binding environment.
type Builder struct {
	graph      *ir.Graph
	transforms *Transforms
}

// NewBuilder creates a builder over the given graph and transform
// table.
func NewBuilder(g *ir.Graph, transforms *Transforms) *Builder {
	return &Builder{graph: g, transforms: transforms}
}

// Build walks the rule's result patterns in order and returns every
// produced value group in production order. The driver slices the
// trailing replacement window off this sequence.
//
// The environment is extended in place with result-pattern captures,
// so later patterns can reference groups built by earlier ones.
// Errors here are rule-authoring or transform failures; the caller
// rolls the graph back to its pre-build mark, so nodes created before
// the failure do not outlive the attempt.
func (b *Builder) Build(c *pattern.Compiled, env *Env) ([]ir.ValueGroup, error) {
	var produced []ir.ValueGroup
	for i, res := range c.Rule.Results {
		groups, err := b.buildResult(res, env)
		if err != nil {
			return nil, fmt.Errorf("result pattern %d: %w", i, err)
		}
		produced = append(produced, groups...)
	}

	if len(produced) < c.WindowStart+c.RootResultSlots {
		return nil, fmt.Errorf("%w: produced %d groups, replacement window needs %d",
			ir.ErrArityMismatch, len(produced), c.RootResultSlots)
	}
	return produced, nil
}

// buildResult constructs one result pattern node, post-order: nested
// operands are built before the node that consumes them. It returns
// the node's produced groups, one per declared result slot (or per
// declared transform return).
func (b *Builder) buildResult(res pattern.Result, env *Env) ([]ir.ValueGroup, error) {
	switch r := res.(type) {
	case pattern.Build:
		return b.buildOperation(r, env)
	case pattern.Transform:
		return b.invokeTransform(r, env)
	default:
		return nil, fmt.Errorf("unsupported result pattern form %T", res)
	}
}

func (b *Builder) buildOperation(r pattern.Build, env *Env) ([]ir.ValueGroup, error) {
	sig, ok := b.graph.Registry().Lookup(r.Op)
	if !ok {
		return nil, fmt.Errorf("unknown operator %q", r.Op)
	}

	operands := make([]ir.ValueGroup, len(sig.Operands))
	attrs := make(map[string]cty.Value, len(sig.Attributes))

	for i, arg := range r.Args {
		if i < len(sig.Operands) {
			group, err := b.resolveOperand(arg, env)
			if err != nil {
				return nil, fmt.Errorf("%s operand %d: %w", r.Op, i, err)
			}
			operands[i] = group
			continue
		}
		name := sig.Attributes[i-len(sig.Operands)]
		val, err := resolveAttribute(arg, env)
		if err != nil {
			return nil, fmt.Errorf("%s attribute %q: %w", r.Op, name, err)
		}
		attrs[name] = val
	}

	resultTypes := r.ResultTypes
	if resultTypes == nil {
		inferred, err := inferResultTypes(sig, operands)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Op, err)
		}
		resultTypes = inferred
	}

	op, err := b.graph.CreateOperation(r.Op, operands, attrs, resultTypes)
	if err != nil {
		return nil, err
	}

	groups := make([]ir.ValueGroup, op.NumResultSlots())
	for slot := range groups {
		groups[slot] = op.ResultGroup(slot)
	}
	if r.Symbol != "" {
		env.bind(r.Symbol, GroupBinding{Group: op.Results(), Slots: groups})
	}
	return groups, nil
}

func (b *Builder) invokeTransform(r pattern.Transform, env *Env) ([]ir.ValueGroup, error) {
	entry, ok := b.transforms.get(r.Fn)
	if !ok {
		return nil, fmt.Errorf("native transform %q not registered", r.Fn)
	}

	var self ir.ValueGroup
	if r.Self != "" {
		group, err := env.resolveGroup(r.Self, pattern.WholeGroup)
		if err != nil {
			return nil, fmt.Errorf("transform %s self: %w", r.Fn, err)
		}
		self = group
	}

	args := make([]Binding, len(r.Args))
	for i, arg := range r.Args {
		resolved, err := b.resolveTransformArg(arg, env)
		if err != nil {
			return nil, fmt.Errorf("transform %s arg %d: %w", r.Fn, i, err)
		}
		args[i] = resolved
	}

	groups, err := entry.fn(b.graph, self, args)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", r.Fn, err)
	}
	if len(groups) != entry.returns {
		return nil, fmt.Errorf("transform %s returned %d groups, declared %d", r.Fn, len(groups), entry.returns)
	}

	if r.Symbol != "" {
		var flat ir.ValueGroup
		for _, g := range groups {
			flat = append(flat, g...)
		}
		env.bind(r.Symbol, GroupBinding{Group: flat, Slots: groups})
	}
	return groups, nil
}

// resolveOperand resolves one operand position to a value group.
func (b *Builder) resolveOperand(arg pattern.ResultArg, env *Env) (ir.ValueGroup, error) {
	switch a := arg.(type) {
	case pattern.Ref:
		return env.resolveGroup(a.Symbol, a.Index)
	case pattern.NestedResult:
		groups, err := b.buildResult(a.Node, env)
		if err != nil {
			return nil, err
		}
		var flat ir.ValueGroup
		for _, g := range groups {
			flat = append(flat, g...)
		}
		return flat, nil
	default:
		return nil, fmt.Errorf("unsupported operand form %T", arg)
	}
}

func (b *Builder) resolveTransformArg(arg pattern.ResultArg, env *Env) (Binding, error) {
	switch a := arg.(type) {
	case pattern.Ref:
		if val, ok := env.Attr(a.Symbol); ok {
			return AttrBinding{Value: val}, nil
		}
		group, err := env.resolveGroup(a.Symbol, a.Index)
		if err != nil {
			return nil, err
		}
		return GroupBinding{Group: group}, nil
	case pattern.AttrConst:
		return AttrBinding{Value: a.Value}, nil
	case pattern.NestedResult:
		groups, err := b.buildResult(a.Node, env)
		if err != nil {
			return nil, err
		}
		var flat ir.ValueGroup
		for _, g := range groups {
			flat = append(flat, g...)
		}
		return GroupBinding{Group: flat}, nil
	default:
		return nil, fmt.Errorf("unsupported transform argument form %T", arg)
	}
}

func resolveAttribute(arg pattern.ResultArg, env *Env) (cty.Value, error) {
	switch a := arg.(type) {
	case pattern.Ref:
		val, ok := env.Attr(a.Symbol)
		if !ok {
			return cty.NilVal, fmt.Errorf("symbol %q is not a bound attribute", a.Symbol)
		}
		return val, nil
	case pattern.AttrConst:
		return a.Value, nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported attribute form %T", arg)
	}
}

// inferResultTypes derives scalar result types when a build pattern
// declares none: every result inherits the type of the first resolved
// operand value. This covers the common elementwise shapes; anything
// richer declares explicit types.
func inferResultTypes(sig ir.Signature, operands []ir.ValueGroup) ([][]cty.Type, error) {
	if len(sig.Results) == 0 {
		return [][]cty.Type{}, nil
	}
	var first *ir.Value
	for _, group := range operands {
		if len(group) > 0 {
			first = group[0]
			break
		}
	}
	if first == nil {
		return nil, fmt.Errorf("no operand values to infer result types from")
	}
	types := make([][]cty.Type, len(sig.Results))
	for slot := range types {
		types[slot] = []cty.Type{first.Type()}
	}
	return types, nil
}
