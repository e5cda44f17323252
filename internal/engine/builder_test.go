package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/Robertorosmaninho/mlir/internal/ir"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

func TestBuild_FusedReplacement(t *testing.T) {
	g, b, a := aopGraph(t)
	c := mustCompile(t, fuseRule(), g.Registry(), nil)

	env, ok := match(c, a)
	require.True(t, ok)

	produced, err := NewBuilder(g, NewTransforms()).Build(c, env)
	require.NoError(t, err)
	require.Len(t, produced, 1)
	require.Len(t, produced[0], 1)

	fused := produced[0][0].Producer()
	require.NotNil(t, fused)
	assert.Equal(t, "FusedOp", fused.Operator())

	// The new node consumes the BOp result directly and carries the
	// bound attribute forward.
	require.Len(t, fused.OperandGroup(0), 1)
	assert.Same(t, b.ResultGroup(0)[0], fused.OperandGroup(0)[0])
	attr, ok := fused.Attr("attr")
	require.True(t, ok)
	assert.True(t, attr.RawEquals(cty.NumberIntVal(5)))
}

func TestBuild_AuxiliaryChain(t *testing.T) {
	g := ir.NewGraph(newTestRegistry())
	in := g.AddInput(cty.Number)
	neg := mustCreate(t, g, "NegOp", []ir.ValueGroup{{in}}, nil, [][]cty.Type{num()})

	// One auxiliary PosOp feeding the final DoneOp. Only the DoneOp
	// group lands in the replacement window.
	rule := &pattern.Rule{
		ID:     "neg-to-done",
		Source: &pattern.Source{Op: "NegOp", Args: []pattern.Arg{pattern.Bind{Symbol: "x"}}},
		Results: []pattern.Result{
			pattern.Build{Op: "PosOp", Symbol: "aux", Args: []pattern.ResultArg{pattern.Whole("x")}},
			pattern.Build{Op: "DoneOp", Args: []pattern.ResultArg{pattern.Whole("aux")}},
		},
	}
	c := mustCompile(t, rule, g.Registry(), nil)
	assert.Equal(t, 1, c.WindowStart)

	env, ok := match(c, neg)
	require.True(t, ok)

	produced, err := NewBuilder(g, NewTransforms()).Build(c, env)
	require.NoError(t, err)
	require.Len(t, produced, 2)

	aux := produced[0][0].Producer()
	final := produced[1][0].Producer()
	assert.Equal(t, "PosOp", aux.Operator())
	assert.Equal(t, "DoneOp", final.Operator())
	assert.Same(t, aux.ResultGroup(0)[0], final.OperandGroup(0)[0])
}

func TestBuild_NestedResultPostOrder(t *testing.T) {
	g := ir.NewGraph(newTestRegistry())
	in := g.AddInput(cty.Number)
	neg := mustCreate(t, g, "NegOp", []ir.ValueGroup{{in}}, nil, [][]cty.Type{num()})

	rule := &pattern.Rule{
		ID:     "neg-wrap",
		Source: &pattern.Source{Op: "NegOp", Args: []pattern.Arg{pattern.Bind{Symbol: "x"}}},
		Results: []pattern.Result{
			pattern.Build{Op: "DoneOp", Args: []pattern.ResultArg{
				pattern.NestedResult{Node: pattern.Build{Op: "PosOp", Args: []pattern.ResultArg{pattern.Whole("x")}}},
			}},
		},
	}
	c := mustCompile(t, rule, g.Registry(), nil)

	env, ok := match(c, neg)
	require.True(t, ok)

	produced, err := NewBuilder(g, NewTransforms()).Build(c, env)
	require.NoError(t, err)
	// Only the top-level node's groups count as produced; the nested
	// PosOp exists solely as its operand.
	require.Len(t, produced, 1)

	done := produced[0][0].Producer()
	assert.Equal(t, "DoneOp", done.Operator())
	inner := done.OperandGroup(0)[0].Producer()
	require.NotNil(t, inner)
	assert.Equal(t, "PosOp", inner.Operator())
	assert.Same(t, in, inner.OperandGroup(0)[0])
}

func TestBuild_TransformInvocation(t *testing.T) {
	g := ir.NewGraph(newTestRegistry())
	in := g.AddInput(cty.Number)
	neg := mustCreate(t, g, "NegOp", []ir.ValueGroup{{in}}, nil, [][]cty.Type{num()})

	transforms := NewTransforms()
	var gotSelf ir.ValueGroup
	var gotArgs []Binding
	transforms.Register("wrap", 1, func(g *ir.Graph, self ir.ValueGroup, args []Binding) ([]ir.ValueGroup, error) {
		gotSelf = self
		gotArgs = args
		op, err := g.CreateOperation("PosOp", []ir.ValueGroup{self}, nil, [][]cty.Type{num()})
		if err != nil {
			return nil, err
		}
		return []ir.ValueGroup{op.ResultGroup(0)}, nil
	})

	rule := &pattern.Rule{
		ID:     "neg-transform",
		Source: &pattern.Source{Op: "NegOp", Args: []pattern.Arg{pattern.Bind{Symbol: "x"}}},
		Results: []pattern.Result{
			pattern.Transform{Fn: "wrap", Self: "x", Args: []pattern.ResultArg{
				pattern.AttrConst{Value: cty.StringVal("mode")},
			}},
		},
	}
	c := mustCompile(t, rule, g.Registry(), transforms)

	env, ok := match(c, neg)
	require.True(t, ok)

	produced, err := NewBuilder(g, transforms).Build(c, env)
	require.NoError(t, err)
	require.Len(t, produced, 1)
	assert.Equal(t, "PosOp", produced[0][0].Producer().Operator())

	require.Len(t, gotSelf, 1)
	assert.Same(t, in, gotSelf[0])
	require.Len(t, gotArgs, 1)
	ab, ok := gotArgs[0].(AttrBinding)
	require.True(t, ok)
	assert.True(t, ab.Value.RawEquals(cty.StringVal("mode")))
}

func TestBuild_TransformGroupCountMismatch(t *testing.T) {
	g := ir.NewGraph(newTestRegistry())
	in := g.AddInput(cty.Number)
	neg := mustCreate(t, g, "NegOp", []ir.ValueGroup{{in}}, nil, [][]cty.Type{num()})

	transforms := NewTransforms()
	transforms.Register("broken", 1, func(g *ir.Graph, self ir.ValueGroup, args []Binding) ([]ir.ValueGroup, error) {
		return nil, nil // declared one group, returns none
	})

	rule := &pattern.Rule{
		ID:      "neg-broken",
		Source:  &pattern.Source{Op: "NegOp", Args: []pattern.Arg{pattern.Bind{Symbol: "x"}}},
		Results: []pattern.Result{pattern.Transform{Fn: "broken", Self: "x"}},
	}
	c := mustCompile(t, rule, g.Registry(), transforms)

	env, ok := match(c, neg)
	require.True(t, ok)

	_, err := NewBuilder(g, transforms).Build(c, env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 0 groups, declared 1")
}

func TestBuild_ExplicitResultTypes(t *testing.T) {
	g := ir.NewGraph(newTestRegistry())
	in := g.AddInput(cty.Number)
	neg := mustCreate(t, g, "NegOp", []ir.ValueGroup{{in}}, nil, [][]cty.Type{num()})

	rule := &pattern.Rule{
		ID:     "neg-split",
		Source: &pattern.Source{Op: "NegOp", Args: []pattern.Arg{pattern.Bind{Symbol: "x"}}},
		Results: []pattern.Result{
			pattern.Build{Op: "SplitOp", Symbol: "s",
				Args:        []pattern.ResultArg{pattern.Whole("x")},
				ResultTypes: [][]cty.Type{{cty.Number, cty.Number}},
			},
			pattern.Build{Op: "DoneOp", Args: []pattern.ResultArg{
				pattern.At("s", 0),
			}},
		},
	}
	// At("s", 0) selects the SplitOp's whole variadic result slot, two
	// values wide. Compile checks group kinds only; the width mismatch
	// against DoneOp's scalar operand surfaces at build time.
	c := mustCompile(t, rule, g.Registry(), nil)

	env, ok := match(c, neg)
	require.True(t, ok)

	_, err := NewBuilder(g, NewTransforms()).Build(c, env)
	require.Error(t, err)
	require.ErrorIs(t, err, ir.ErrArityMismatch)
}

func TestBuild_GroupSymbolAtAttributePosition(t *testing.T) {
	g, _, _ := aopGraph(t)

	rule := fuseRule()
	// Point the attribute position at the value-group symbol.
	rule.Results = []pattern.Result{
		pattern.Build{Op: "FusedOp", Args: []pattern.ResultArg{
			pattern.Whole("b"),
			pattern.Whole("b"),
		}},
	}
	_, errs := pattern.Compile(rule, g.Registry(), nil)
	require.NotEmpty(t, errs, "a group symbol at an attribute position is a compile error")
}
