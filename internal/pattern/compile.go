package pattern

import (
	"fmt"

	"github.com/Robertorosmaninho/mlir/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// Source pattern errors (E200-E219)
	ErrUnknownOperator    = "E201" // operator not in signature registry
	ErrArgCount           = "E202" // pattern arg count != declared operands+attributes
	ErrOperandPosition    = "E203" // attribute-only form at an operand position
	ErrAttributePosition  = "E204" // operand-only form at an attribute position
	ErrOperandRefKind     = "E205" // operand position resolved to an attribute symbol
	ErrAttributeRefKind   = "E206" // attribute position resolved to a value-group symbol
	ErrResultTypes        = "E207" // missing or malformed result type lists
	ErrDuplicateBinding   = "E210" // same symbol bound twice
	ErrUnboundSymbol      = "E211" // reference to a symbol never bound
	ErrGroupIndex         = "E212" // group index out of range or not indexable
	ErrEmptyRule          = "E213" // rule without source or result patterns
	ErrConstraintReadsOwn = "E214" // constraint references a result-pattern symbol

	// Replacement window errors (E220-E229)
	ErrWindowArity       = "E220" // replacement window smaller than root result count
	ErrMixedRoleNode     = "E221" // one pattern's groups split between aux and window with partial use
	ErrDanglingAuxiliary = "E222" // auxiliary group never consumed
	ErrUnknownTransform  = "E223" // native transform identifier not registered

	// Future extension points (E230+)
	ErrUnsupportedForm = "E230" // result form beyond construction/transform
)

// ValidationError represents a rule-authoring error detected at
// compile time. Rules with validation errors are rejected from the
// active set; the engine continues with the remaining rules.
type ValidationError struct {
	Rule    string `json:"rule"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] rule %s: %s: %s", e.Code, e.Rule, e.Field, e.Message)
}

// Compiled is a rule that passed all authoring checks, with everything
// the matcher, builder, and driver need precomputed: the root operator,
// the effective benefit, produced-group counts per result pattern, and
// the replacement window as an explicit range rather than a convention
// re-derived at apply time.
type Compiled struct {
	Rule *Rule

	// RootOp is the source pattern root's operator identifier.
	RootOp string
	// Benefit is the effective benefit (rule's, or source op count).
	Benefit int
	// GroupCounts[i] is the number of value groups produced by
	// Rule.Results[i].
	GroupCounts []int
	// WindowStart is the index into the flattened produced-group
	// sequence where the replacement window begins.
	WindowStart int
	// RootResultSlots is the declared result slot count of the root
	// operator; the window always spans exactly this many groups.
	RootResultSlots int

	source map[string]*symInfo
}

type symKind int

const (
	kindGroup   symKind = iota // operand bind: one slot's value group
	kindAttr                   // attribute bind
	kindCapture                // node or build capture: indexable group list
)

type symInfo struct {
	kind     symKind
	groups   int    // indexable group count for kindCapture, else 1
	declared int    // top-level result index, or -1 for source symbols
	consumed []bool // per-group consumption, filled for result symbols
}

// compilation carries state across the validation passes.
type compilation struct {
	rule     *Rule
	reg      *ir.Registry
	resolver TransformResolver
	symbols  map[string]*symInfo
	errs     []ValidationError
}

// Compile validates a rule and precomputes its runtime form. All
// errors found are returned together (no fail-fast); a rule compiles
// only when the error list is empty.
func Compile(rule *Rule, reg *ir.Registry, resolver TransformResolver) (*Compiled, []ValidationError) {
	c := &compilation{
		rule:     rule,
		reg:      reg,
		resolver: resolver,
		symbols:  make(map[string]*symInfo),
	}

	if rule.Source == nil {
		c.addErr("source", ErrEmptyRule, "rule has no source pattern")
	}
	if len(rule.Results) == 0 {
		c.addErr("results", ErrEmptyRule, "rule has no result patterns")
	}
	if len(c.errs) > 0 {
		return nil, c.errs
	}

	c.collectSource(rule.Source, "source")
	counts := c.checkResults()
	c.checkConstraints()

	if len(c.errs) > 0 {
		return nil, c.errs
	}

	rootSig, _ := reg.Lookup(rule.Source.Op)
	n := len(rootSig.Results)
	windowStart := c.checkWindow(counts, n)
	c.checkAuxiliaryClosure(counts, windowStart)

	if len(c.errs) > 0 {
		return nil, c.errs
	}

	benefit := len(rule.Source.Ops())
	if rule.Benefit != nil {
		benefit = *rule.Benefit
	}

	return &Compiled{
		Rule:            rule,
		RootOp:          rule.Source.Op,
		Benefit:         benefit,
		GroupCounts:     counts,
		WindowStart:     windowStart,
		RootResultSlots: n,
		source:          c.symbols,
	}, nil
}

// CompileAll compiles a rule sequence, partitioning it into the
// accepted set (in declaration order) and the per-rule errors of the
// rejected ones. Mirrors the driver contract: bad rules are surfaced
// to the author and dropped, the rest keep working.
func CompileAll(rules []*Rule, reg *ir.Registry, resolver TransformResolver) ([]*Compiled, map[string][]ValidationError) {
	var accepted []*Compiled
	rejected := make(map[string][]ValidationError)
	for _, rule := range rules {
		compiled, errs := Compile(rule, reg, resolver)
		if len(errs) > 0 {
			rejected[rule.ID] = errs
			continue
		}
		accepted = append(accepted, compiled)
	}
	return accepted, rejected
}

// SourceSymbol reports the declared group arity of a source-bound
// symbol: (groups, true) for captures, (1, true) for plain binds and
// attributes, (0, false) for unknown symbols.
func (c *Compiled) SourceSymbol(symbol string) (int, bool) {
	info, ok := c.source[symbol]
	if !ok || info.declared != -1 {
		return 0, false
	}
	return info.groups, true
}

func (c *compilation) addErr(field, code, format string, args ...any) {
	c.errs = append(c.errs, ValidationError{
		Rule:    c.rule.ID,
		Field:   field,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// bind records a symbol, rejecting duplicates (ambiguous capture).
func (c *compilation) bind(symbol, field string, info *symInfo) {
	if symbol == "" {
		return
	}
	if _, exists := c.symbols[symbol]; exists {
		c.addErr(field, ErrDuplicateBinding, "symbol %q bound twice", symbol)
		return
	}
	c.symbols[symbol] = info
}

// collectSource validates one source pattern node and records its
// bindings, recursing into nested patterns.
func (c *compilation) collectSource(s *Source, field string) {
	sig, ok := c.reg.Lookup(s.Op)
	if !ok {
		c.addErr(field, ErrUnknownOperator, "unknown operator %q", s.Op)
		return
	}

	declared := len(sig.Operands) + len(sig.Attributes)
	if len(s.Args) != declared {
		c.addErr(field, ErrArgCount, "operator %s declares %d positions (%d operands + %d attributes), pattern has %d",
			s.Op, declared, len(sig.Operands), len(sig.Attributes), len(s.Args))
		return
	}

	c.bind(s.Symbol, field, &symInfo{kind: kindCapture, groups: len(sig.Results), declared: -1})

	for i, arg := range s.Args {
		pos := fmt.Sprintf("%s.args[%d]", field, i)
		operandPos := i < len(sig.Operands)
		switch a := arg.(type) {
		case Wildcard:
			// Matches unconditionally, binds nothing.
		case Bind:
			kind := kindGroup
			if !operandPos {
				kind = kindAttr
			}
			c.bind(a.Symbol, pos, &symInfo{kind: kind, groups: 1, declared: -1})
		case TypeIs:
			if !operandPos {
				c.addErr(pos, ErrAttributePosition, "type constraint at attribute position")
			}
		case AttrIs:
			if operandPos {
				c.addErr(pos, ErrOperandPosition, "attribute constraint at operand position")
			}
		case Nested:
			if !operandPos {
				c.addErr(pos, ErrAttributePosition, "nested pattern at attribute position")
			}
			c.collectSource(a.Pattern, pos)
		default:
			c.addErr(pos, ErrUnsupportedForm, "unsupported source position form %T", arg)
		}
	}
}

// checkResults validates each top-level result pattern in order and
// returns the produced-group count per pattern.
func (c *compilation) checkResults() []int {
	counts := make([]int, len(c.rule.Results))
	for i, res := range c.rule.Results {
		field := fmt.Sprintf("results[%d]", i)
		counts[i] = c.checkResult(res, field, i)
	}
	return counts
}

// checkResult validates one result pattern (recursing into nested
// builds) and returns its produced-group count.
func (c *compilation) checkResult(res Result, field string, topIndex int) int {
	switch r := res.(type) {
	case Build:
		return c.checkBuild(r, field, topIndex)
	case Transform:
		return c.checkTransform(r, field, topIndex)
	default:
		c.addErr(field, ErrUnsupportedForm, "unsupported result form %T (only construction and native transforms)", res)
		return 0
	}
}

func (c *compilation) checkBuild(b Build, field string, topIndex int) int {
	sig, ok := c.reg.Lookup(b.Op)
	if !ok {
		c.addErr(field, ErrUnknownOperator, "unknown operator %q", b.Op)
		return 0
	}

	declared := len(sig.Operands) + len(sig.Attributes)
	if len(b.Args) != declared {
		c.addErr(field, ErrArgCount, "operator %s declares %d positions, pattern has %d", b.Op, declared, len(b.Args))
	}

	for i, arg := range b.Args {
		if i >= declared {
			break
		}
		pos := fmt.Sprintf("%s.args[%d]", field, i)
		operandPos := i < len(sig.Operands)
		switch a := arg.(type) {
		case Ref:
			c.checkRef(a, pos, operandPos)
		case NestedResult:
			if !operandPos {
				c.addErr(pos, ErrAttributePosition, "nested result at attribute position")
				continue
			}
			c.checkResult(a.Node, pos, topIndex)
		case AttrConst:
			if operandPos {
				c.addErr(pos, ErrOperandPosition, "attribute constant at operand position")
			}
		default:
			c.addErr(pos, ErrUnsupportedForm, "unsupported result position form %T", arg)
		}
	}

	if b.ResultTypes == nil {
		for _, arity := range sig.Results {
			if arity == ir.SlotVariadic {
				c.addErr(field, ErrResultTypes, "operator %s has a variadic result slot: explicit result types required", b.Op)
				break
			}
		}
		if len(sig.Results) > 0 && len(sig.Operands) == 0 {
			c.addErr(field, ErrResultTypes, "operator %s has no operands to infer result types from: explicit result types required", b.Op)
		}
	} else if len(b.ResultTypes) != len(sig.Results) {
		c.addErr(field, ErrResultTypes, "operator %s declares %d result slots, got %d type lists", b.Op, len(sig.Results), len(b.ResultTypes))
	} else {
		for slot, arity := range sig.Results {
			if arity == ir.SlotScalar && len(b.ResultTypes[slot]) != 1 {
				c.addErr(field, ErrResultTypes, "result slot %d is scalar, got %d types", slot, len(b.ResultTypes[slot]))
			}
		}
	}

	groups := len(sig.Results)
	c.bind(b.Symbol, field, &symInfo{
		kind:     kindCapture,
		groups:   groups,
		declared: topIndex,
		consumed: make([]bool, groups),
	})
	return groups
}

func (c *compilation) checkTransform(t Transform, field string, topIndex int) int {
	returns, ok := 0, false
	if c.resolver != nil {
		returns, ok = c.resolver.Resolve(t.Fn)
	}
	if !ok {
		c.addErr(field, ErrUnknownTransform, "native transform %q not registered", t.Fn)
		return 0
	}

	if t.Self != "" {
		info, exists := c.symbols[t.Self]
		switch {
		case !exists:
			c.addErr(field, ErrUnboundSymbol, "transform self symbol %q not bound", t.Self)
		case info.kind == kindAttr:
			c.addErr(field, ErrOperandRefKind, "transform self symbol %q is an attribute, need a value group", t.Self)
		default:
			c.consume(info, WholeGroup)
		}
	}

	for i, arg := range t.Args {
		pos := fmt.Sprintf("%s.args[%d]", field, i)
		switch a := arg.(type) {
		case Ref:
			info, exists := c.symbols[a.Symbol]
			if !exists {
				c.addErr(pos, ErrUnboundSymbol, "symbol %q not bound", a.Symbol)
				continue
			}
			c.checkRefIndex(a, info, pos)
			c.consume(info, a.Index)
		case AttrConst:
			// Literal arguments pass straight through to the callable.
		case NestedResult:
			c.checkResult(a.Node, pos, topIndex)
		default:
			c.addErr(pos, ErrUnsupportedForm, "unsupported transform argument form %T", arg)
		}
	}

	c.bind(t.Symbol, field, &symInfo{
		kind:     kindCapture,
		groups:   returns,
		declared: topIndex,
		consumed: make([]bool, returns),
	})
	return returns
}

// checkRef validates a symbol reference at a build position.
func (c *compilation) checkRef(r Ref, pos string, operandPos bool) {
	info, exists := c.symbols[r.Symbol]
	if !exists {
		c.addErr(pos, ErrUnboundSymbol, "symbol %q not bound", r.Symbol)
		return
	}
	if operandPos && info.kind == kindAttr {
		c.addErr(pos, ErrOperandRefKind, "symbol %q is an attribute, operand position needs a value group", r.Symbol)
		return
	}
	if !operandPos && info.kind != kindAttr {
		c.addErr(pos, ErrAttributeRefKind, "symbol %q is a value group, attribute position needs an attribute", r.Symbol)
		return
	}
	c.checkRefIndex(r, info, pos)
	c.consume(info, r.Index)
}

func (c *compilation) checkRefIndex(r Ref, info *symInfo, pos string) {
	if r.Index == WholeGroup {
		return
	}
	if info.kind != kindCapture {
		c.addErr(pos, ErrGroupIndex, "symbol %q is not indexable", r.Symbol)
		return
	}
	if r.Index < 0 || r.Index >= info.groups {
		c.addErr(pos, ErrGroupIndex, "group index %d out of range for %q (%d groups)", r.Index, r.Symbol, info.groups)
	}
}

// consume marks result-symbol groups as consumed for the auxiliary
// closure check. Source symbols have no consumption bookkeeping.
func (c *compilation) consume(info *symInfo, index int) {
	if info.consumed == nil {
		return
	}
	if index == WholeGroup {
		for i := range info.consumed {
			info.consumed[i] = true
		}
		return
	}
	if index >= 0 && index < len(info.consumed) {
		info.consumed[index] = true
	}
}

func (c *compilation) checkConstraints() {
	for i, con := range c.rule.Constraints {
		field := fmt.Sprintf("constraints[%d]", i)
		for _, symbol := range con.Symbols {
			info, exists := c.symbols[symbol]
			if !exists {
				c.addErr(field, ErrUnboundSymbol, "constraint %s references unbound symbol %q", con.Name, symbol)
				continue
			}
			if info.declared != -1 {
				c.addErr(field, ErrConstraintReadsOwn, "constraint %s references result symbol %q (constraints run before construction)", con.Name, symbol)
			}
		}
	}
}

// checkWindow computes where the trailing-N replacement window begins
// and validates the window against the produced-group sequence.
//
// Legality: the window boundary must coincide with a result-pattern
// boundary. A straddled pattern whose below-window groups are consumed
// elsewhere is a mixed-role node; a straddled pattern with unconsumed
// below-window groups cannot satisfy the window arity at all.
func (c *compilation) checkWindow(counts []int, n int) int {
	total := 0
	for _, count := range counts {
		total += count
	}
	if total < n {
		c.addErr("results", ErrWindowArity,
			"result patterns produce %d value groups, root needs %d replacements", total, n)
		return 0
	}

	windowStart := total - n
	at := 0
	for i, count := range counts {
		if at >= windowStart {
			break
		}
		if at+count > windowStart {
			// Pattern i straddles the boundary.
			if c.straddledGroupsConsumed(i, windowStart-at) {
				c.addErr(fmt.Sprintf("results[%d]", i), ErrMixedRoleNode,
					"pattern's groups split between auxiliary use and the replacement window")
			} else {
				c.addErr(fmt.Sprintf("results[%d]", i), ErrWindowArity,
					"pattern's %d groups straddle the %d-group replacement window", count, n)
			}
			break
		}
		at += count
	}
	return windowStart
}

// straddledGroupsConsumed reports whether any below-window group of the
// straddled pattern is consumed as an auxiliary operand.
func (c *compilation) straddledGroupsConsumed(topIndex, belowCount int) bool {
	for _, info := range c.symbols {
		if info.declared != topIndex || info.consumed == nil {
			continue
		}
		for g := 0; g < belowCount && g < len(info.consumed); g++ {
			if info.consumed[g] {
				return true
			}
		}
	}
	return false
}

// checkAuxiliaryClosure requires every group of every wholly-auxiliary
// result pattern to be consumed by some other result pattern.
func (c *compilation) checkAuxiliaryClosure(counts []int, windowStart int) {
	at := 0
	for i, count := range counts {
		aux := at+count <= windowStart
		at += count
		if !aux {
			continue
		}

		field := fmt.Sprintf("results[%d]", i)
		symbol := c.rule.Results[i].capture()
		if symbol == "" {
			c.addErr(field, ErrDanglingAuxiliary,
				"auxiliary pattern has no capture symbol, its values can never be consumed")
			continue
		}
		info := c.symbols[symbol]
		for g, used := range info.consumed {
			if !used {
				c.addErr(field, ErrDanglingAuxiliary,
					"auxiliary group %d of %q is never consumed", g, symbol)
			}
		}
	}
}
