package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/Robertorosmaninho/mlir/internal/ir"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

// newTestRegistry builds the operator set shared by engine tests.
func newTestRegistry() *ir.Registry {
	reg := ir.NewRegistry()
	reg.MustRegister(ir.Signature{Name: "BOp", Results: []ir.SlotArity{ir.SlotScalar}})
	reg.MustRegister(ir.Signature{
		Name:       "AOp",
		Operands:   []ir.SlotArity{ir.SlotScalar},
		Attributes: []string{"attr"},
		Results:    []ir.SlotArity{ir.SlotScalar},
	})
	reg.MustRegister(ir.Signature{
		Name:       "FusedOp",
		Operands:   []ir.SlotArity{ir.SlotScalar},
		Attributes: []string{"attr"},
		Results:    []ir.SlotArity{ir.SlotScalar},
	})
	reg.MustRegister(ir.Signature{Name: "NegOp", Operands: []ir.SlotArity{ir.SlotScalar}, Results: []ir.SlotArity{ir.SlotScalar}})
	reg.MustRegister(ir.Signature{Name: "PosOp", Operands: []ir.SlotArity{ir.SlotScalar}, Results: []ir.SlotArity{ir.SlotScalar}})
	reg.MustRegister(ir.Signature{Name: "SinkOp", Operands: []ir.SlotArity{ir.SlotVariadic}, Results: []ir.SlotArity{ir.SlotScalar}})
	reg.MustRegister(ir.Signature{Name: "DoneOp", Operands: []ir.SlotArity{ir.SlotScalar}, Results: []ir.SlotArity{ir.SlotScalar}})
	reg.MustRegister(ir.Signature{Name: "OneResultOp", Operands: []ir.SlotArity{ir.SlotVariadic}, Results: []ir.SlotArity{ir.SlotScalar}})
	reg.MustRegister(ir.Signature{Name: "ThreeResultOp", Operands: []ir.SlotArity{ir.SlotVariadic}, Results: []ir.SlotArity{ir.SlotScalar, ir.SlotScalar, ir.SlotScalar}})
	reg.MustRegister(ir.Signature{Name: "SplitOp", Operands: []ir.SlotArity{ir.SlotVariadic}, Results: []ir.SlotArity{ir.SlotVariadic}})
	reg.MustRegister(ir.Signature{Name: "ChainOp", Operands: []ir.SlotArity{ir.SlotScalar}, Results: []ir.SlotArity{ir.SlotScalar}})
	return reg
}

func num() []cty.Type { return []cty.Type{cty.Number} }

// mustCreate wraps Graph.CreateOperation for fixtures that are known
// to be well formed.
func mustCreate(t *testing.T, g *ir.Graph, operator string, operands []ir.ValueGroup, attrs map[string]cty.Value, resultTypes [][]cty.Type) *ir.Operation {
	t.Helper()
	op, err := g.CreateOperation(operator, operands, attrs, resultTypes)
	require.NoError(t, err)
	return op
}

// aopGraph builds the two-op fusion fixture:
//
//	%0 = BOp()
//	%1 = AOp(%0) {attr = 5}
//
// and returns the graph plus both operations.
func aopGraph(t *testing.T) (*ir.Graph, *ir.Operation, *ir.Operation) {
	t.Helper()
	g := ir.NewGraph(newTestRegistry())
	b := mustCreate(t, g, "BOp", nil, nil, [][]cty.Type{num()})
	a := mustCreate(t, g, "AOp",
		[]ir.ValueGroup{{b.ResultGroup(0)[0]}},
		map[string]cty.Value{"attr": cty.NumberIntVal(5)},
		[][]cty.Type{num()},
	)
	return g, b, a
}

// fuseRule matches (AOp (BOp):$b $attr) and replaces the AOp with a
// FusedOp consuming the BOp result and the bound attribute.
func fuseRule() *pattern.Rule {
	return &pattern.Rule{
		ID: "fuse-aop",
		Source: &pattern.Source{
			Op: "AOp",
			Args: []pattern.Arg{
				pattern.Nested{Pattern: &pattern.Source{Op: "BOp", Symbol: "b"}},
				pattern.Bind{Symbol: "attr"},
			},
		},
		Results: []pattern.Result{
			pattern.Build{Op: "FusedOp", Args: []pattern.ResultArg{
				pattern.Whole("b"),
				pattern.Ref{Symbol: "attr", Index: pattern.WholeGroup},
			}},
		},
	}
}

// mustCompile compiles a rule that is expected to be well formed.
func mustCompile(t *testing.T, rule *pattern.Rule, reg *ir.Registry, resolver pattern.TransformResolver) *pattern.Compiled {
	t.Helper()
	compiled, errs := pattern.Compile(rule, reg, resolver)
	require.Empty(t, errs, "rule %s should compile", rule.ID)
	return compiled
}
