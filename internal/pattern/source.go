package pattern

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/Robertorosmaninho/mlir/internal/ir"
)

// Source is a source pattern node: it matches one operation of the
// given operator. Args cover the operator's declared operand slots
// first, then its declared attributes, in declaration order. An
// optional Symbol captures the matched node's full result value group.
type Source struct {
	Op     string
	Symbol string
	Args   []Arg
}

// Arg is a sealed union of source pattern positions. Only Wildcard,
// Bind, TypeIs, AttrIs, and Nested implement it.
type Arg interface {
	sourceArg()
}

// Wildcard matches any value or attribute without binding anything.
type Wildcard struct{}

func (Wildcard) sourceArg() {}

// Bind introduces a fresh symbol bound to the value group (or
// attribute value) at this position.
type Bind struct {
	Symbol string
}

func (Bind) sourceArg() {}

// TypeIs is a structural type predicate over every value in the group
// at an operand position. Name identifies the predicate in diagnostics.
type TypeIs struct {
	Name string
	Pred func(cty.Type) bool
}

func (TypeIs) sourceArg() {}

// AttrIs is a predicate over the attribute value at an attribute
// position. Name identifies the predicate in diagnostics.
type AttrIs struct {
	Name string
	Pred func(cty.Value) bool
}

func (AttrIs) sourceArg() {}

// Nested matches only if the producing operation of the value at this
// position itself matches the nested pattern.
type Nested struct {
	Pattern *Source
}

func (Nested) sourceArg() {}

// TypeOf builds a TypeIs requiring exact equality with the given type.
func TypeOf(t cty.Type) TypeIs {
	return TypeIs{
		Name: "type is " + t.FriendlyName(),
		Pred: func(have cty.Type) bool { return have.Equals(t) },
	}
}

// AttrEquals builds an AttrIs requiring raw equality with the given
// attribute value.
func AttrEquals(v cty.Value) AttrIs {
	return AttrIs{
		Name: "attr equals " + ir.FormatAttr(v),
		Pred: func(have cty.Value) bool { return have.RawEquals(v) },
	}
}

// Ops enumerates the pattern's operation nodes in pre-order: the node
// itself first, then nested patterns left to right.
func (s *Source) Ops() []*Source {
	out := []*Source{s}
	for _, arg := range s.Args {
		if nested, ok := arg.(Nested); ok {
			out = append(out, nested.Pattern.Ops()...)
		}
	}
	return out
}

// Bindings is the read view a constraint gets of a completed binding
// environment. Implemented by the engine's environment type.
type Bindings interface {
	// Group returns the value group bound to a symbol.
	Group(symbol string) (ir.ValueGroup, bool)
	// Attr returns the attribute value bound to a symbol.
	Attr(symbol string) (cty.Value, bool)
}

// Constraint is an additional rule constraint evaluated after the full
// source pattern has matched. Pred must be deterministic and free of
// side effects; the driver's retry semantics rely on it. Symbols lists
// the bound symbols the predicate reads, checked at compile time.
type Constraint struct {
	Name    string
	Symbols []string
	Pred    func(Bindings) bool
}
