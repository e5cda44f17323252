package pattern

import (
	"github.com/zclconf/go-cty/cty"
)

// WholeGroup is the Ref index selecting a symbol's entire value group
// rather than one indexed sub-group.
const WholeGroup = -1

// Result is a sealed union of result pattern forms. Only Build and
// Transform implement it.
type Result interface {
	resultPattern()
	// capture returns the symbol the pattern's produced groups are
	// bound under, or "" if unbound.
	capture() string
}

// Build constructs one operation. Args cover the operator's declared
// operand slots first, then its declared attributes, in declaration
// order. Symbol optionally binds the produced result groups for
// reference by later result patterns.
//
// ResultTypes, when non-nil, gives the type list per declared result
// slot for the created operation. When nil, every result slot must be
// scalar and inherits the type of the first resolved operand value.
type Build struct {
	Op          string
	Symbol      string
	Args        []ResultArg
	ResultTypes [][]cty.Type
}

func (Build) resultPattern()    {}
func (b Build) capture() string { return b.Symbol }

// Transform invokes a registered native transform instead of
// constructing a literal operation. The callable receives the ambient
// graph builder, the value group bound to Self (if any), and the
// resolved Args in use-site order: a fixed calling convention, no
// placeholder interpolation.
type Transform struct {
	Fn     string
	Symbol string
	Self   string // symbol whose group is passed as the attached group
	Args   []ResultArg
}

func (Transform) resultPattern()    {}
func (t Transform) capture() string { return t.Symbol }

// ResultArg is a sealed union of result pattern operand positions.
// Only Ref, NestedResult, and AttrConst implement it.
type ResultArg interface {
	resultArg()
}

// Ref reads a previously bound symbol. Index selects one produced
// group (for a node capture: the declared result slot; for a build
// capture: the produced group index); WholeGroup selects all of them
// flattened.
type Ref struct {
	Symbol string
	Index  int
}

func (Ref) resultArg() {}

// Whole returns a Ref to a symbol's entire group.
func Whole(symbol string) Ref {
	return Ref{Symbol: symbol, Index: WholeGroup}
}

// At returns a Ref to one indexed group of a symbol.
func At(symbol string, index int) Ref {
	return Ref{Symbol: symbol, Index: index}
}

// NestedResult builds the nested pattern first and feeds its produced
// values into the enclosing position (post-order construction).
type NestedResult struct {
	Node Result
}

func (NestedResult) resultArg() {}

// AttrConst supplies a literal attribute value at an attribute
// position.
type AttrConst struct {
	Value cty.Value
}

func (AttrConst) resultArg() {}
