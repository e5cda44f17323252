package harness

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/Robertorosmaninho/mlir/internal/ir"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

// FixtureRegistry declares the operator set the canned scenarios are
// written against.
func FixtureRegistry() *ir.Registry {
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
	reg.MustRegister(ir.Signature{Name: "DoneOp", Operands: []ir.SlotArity{ir.SlotScalar}, Results: []ir.SlotArity{ir.SlotScalar}})
	reg.MustRegister(ir.Signature{Name: "SinkOp", Operands: []ir.SlotArity{ir.SlotVariadic}, Results: []ir.SlotArity{ir.SlotScalar}})
	reg.MustRegister(ir.Signature{Name: "OneResultOp", Operands: []ir.SlotArity{ir.SlotVariadic}, Results: []ir.SlotArity{ir.SlotScalar}})
	reg.MustRegister(ir.Signature{Name: "ThreeResultOp", Operands: []ir.SlotArity{ir.SlotVariadic}, Results: []ir.SlotArity{ir.SlotScalar, ir.SlotScalar, ir.SlotScalar}})
	return reg
}

func numType() []cty.Type { return []cty.Type{cty.Number} }

// FuseRule replaces (AOp (BOp):$b $attr) with FusedOp($b, $attr).
func FuseRule() *pattern.Rule {
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

// FuseChainScenario is the basic end-to-end case: one fusion, the
// downstream consumer rewired to the new node.
func FuseChainScenario() *Scenario {
	return &Scenario{
		Name:     "fuse-chain",
		Registry: FixtureRegistry(),
		Build: func(g *ir.Graph) error {
			b, err := g.CreateOperation("BOp", nil, nil, [][]cty.Type{numType()})
			if err != nil {
				return err
			}
			a, err := g.CreateOperation("AOp",
				[]ir.ValueGroup{b.ResultGroup(0)},
				map[string]cty.Value{"attr": cty.NumberIntVal(5)},
				[][]cty.Type{numType()},
			)
			if err != nil {
				return err
			}
			_, err = g.CreateOperation("SinkOp", []ir.ValueGroup{a.ResultGroup(0)}, nil, [][]cty.Type{numType()})
			return err
		},
		Rules: []*pattern.Rule{FuseRule()},
	}
}

// CascadeScenario chains two rules: eliminating a double negation
// produces the PosOp the second rule's sink pattern then consumes.
func CascadeScenario() *Scenario {
	negNeg := &pattern.Rule{
		ID: "double-negation",
		Source: &pattern.Source{Op: "NegOp", Args: []pattern.Arg{
			pattern.Nested{Pattern: &pattern.Source{Op: "NegOp", Args: []pattern.Arg{pattern.Bind{Symbol: "x"}}}},
		}},
		Results: []pattern.Result{
			pattern.Build{Op: "PosOp", Args: []pattern.ResultArg{pattern.Whole("x")}},
		},
	}
	sinkPos := &pattern.Rule{
		ID: "sink-positive",
		Source: &pattern.Source{Op: "SinkOp", Args: []pattern.Arg{
			pattern.Nested{Pattern: &pattern.Source{Op: "PosOp", Symbol: "p", Args: []pattern.Arg{pattern.Wildcard{}}}},
		}},
		Results: []pattern.Result{
			pattern.Build{Op: "DoneOp", Args: []pattern.ResultArg{pattern.Whole("p")}},
		},
	}

	return &Scenario{
		Name:     "cascade",
		Registry: FixtureRegistry(),
		Build: func(g *ir.Graph) error {
			in := g.AddInput(cty.Number)
			n1, err := g.CreateOperation("NegOp", []ir.ValueGroup{{in}}, nil, [][]cty.Type{numType()})
			if err != nil {
				return err
			}
			n2, err := g.CreateOperation("NegOp", []ir.ValueGroup{n1.ResultGroup(0)}, nil, [][]cty.Type{numType()})
			if err != nil {
				return err
			}
			_, err = g.CreateOperation("SinkOp", []ir.ValueGroup{n2.ResultGroup(0)}, nil, [][]cty.Type{numType()})
			return err
		},
		Rules: []*pattern.Rule{negNeg, sinkPos},
	}
}

// NoMatchScenario runs a rule set with nothing to match; the graph
// must come out untouched.
func NoMatchScenario() *Scenario {
	return &Scenario{
		Name:     "no-match",
		Registry: FixtureRegistry(),
		Build: func(g *ir.Graph) error {
			in := g.AddInput(cty.Number)
			_, err := g.CreateOperation("NegOp", []ir.ValueGroup{{in}}, nil, [][]cty.Type{numType()})
			return err
		},
		Rules: []*pattern.Rule{FuseRule()},
	}
}

// MultiResultScenario replaces a three-result root with three
// independently built one-result nodes, each consumer following its
// own slot.
func MultiResultScenario() *Scenario {
	one := func() pattern.Result {
		return pattern.Build{Op: "OneResultOp",
			Args:        []pattern.ResultArg{pattern.Whole("x")},
			ResultTypes: [][]cty.Type{numType()},
		}
	}
	expand := &pattern.Rule{
		ID:      "expand-three",
		Source:  &pattern.Source{Op: "ThreeResultOp", Args: []pattern.Arg{pattern.Bind{Symbol: "x"}}},
		Results: []pattern.Result{one(), one(), one()},
	}

	return &Scenario{
		Name:     "multi-result",
		Registry: FixtureRegistry(),
		Build: func(g *ir.Graph) error {
			three, err := g.CreateOperation("ThreeResultOp", []ir.ValueGroup{nil}, nil,
				[][]cty.Type{numType(), numType(), numType()})
			if err != nil {
				return err
			}
			for slot := 0; slot < 3; slot++ {
				if _, err := g.CreateOperation("DoneOp", []ir.ValueGroup{three.ResultGroup(slot)}, nil, [][]cty.Type{numType()}); err != nil {
					return err
				}
			}
			return nil
		},
		Rules: []*pattern.Rule{expand},
	}
}

// RejectedRuleScenario pairs a valid rule with one naming an operator
// the registry does not know; the bad rule is dropped at compile and
// the pass proceeds with the rest.
func RejectedRuleScenario() *Scenario {
	bad := &pattern.Rule{
		ID:     "bad-unknown-op",
		Source: &pattern.Source{Op: "MysteryOp"},
		Results: []pattern.Result{
			pattern.Build{Op: "DoneOp", Args: []pattern.ResultArg{pattern.Whole("x")}},
		},
	}

	s := FuseChainScenario()
	s.Name = "rejected-rule"
	s.Rules = append([]*pattern.Rule{bad}, s.Rules...)
	return s
}
