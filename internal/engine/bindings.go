package engine

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/zclconf/go-cty/cty"

	"github.com/Robertorosmaninho/mlir/internal/ir"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

// Binding is a sealed union of what a symbol can be bound to: a value
// group or an attribute value. Only GroupBinding and AttrBinding
// implement it.
type Binding interface {
	binding()
}

// GroupBinding binds a symbol to a value group. For node captures,
// Slots additionally carries the per-declared-result-slot groups so
// indexed references resolve without string-suffix conventions.
type GroupBinding struct {
	Group ir.ValueGroup
	Slots []ir.ValueGroup // nil unless the symbol captures a whole node
}

func (GroupBinding) binding() {}

// AttrBinding binds a symbol to an attribute value.
type AttrBinding struct {
	Value cty.Value
}

func (AttrBinding) binding() {}

// Env is a binding environment: one match attempt's symbol table.
// A fresh Env is created per (rule, candidate root) pair and discarded
// on failure; on success the builder consumes it and extends it with
// result-pattern captures.
type Env struct {
	bindings map[string]Binding
	order    []string // insertion order, for deterministic hashing
}

// NewEnv creates an empty binding environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]Binding)}
}

// bind records a symbol. Duplicate binds panic: rule compilation
// guarantees symbol uniqueness, so a collision here means the engine
// itself is broken.
func (e *Env) bind(symbol string, b Binding) {
	if symbol == "" {
		return
	}
	if _, exists := e.bindings[symbol]; exists {
		panic(fmt.Sprintf("engine: symbol %q bound twice in one environment", symbol))
	}
	e.bindings[symbol] = b
	e.order = append(e.order, symbol)
}

// Lookup returns the raw binding for a symbol.
func (e *Env) Lookup(symbol string) (Binding, bool) {
	b, ok := e.bindings[symbol]
	return b, ok
}

// Group implements pattern.Bindings.
func (e *Env) Group(symbol string) (ir.ValueGroup, bool) {
	b, ok := e.bindings[symbol]
	if !ok {
		return nil, false
	}
	gb, ok := b.(GroupBinding)
	if !ok {
		return nil, false
	}
	return gb.Group, true
}

// Attr implements pattern.Bindings.
func (e *Env) Attr(symbol string) (cty.Value, bool) {
	b, ok := e.bindings[symbol]
	if !ok {
		return cty.NilVal, false
	}
	ab, ok := b.(AttrBinding)
	if !ok {
		return cty.NilVal, false
	}
	return ab.Value, true
}

// resolveGroup resolves a group reference: the whole bound group, or
// one indexed sub-group of a capture.
func (e *Env) resolveGroup(symbol string, index int) (ir.ValueGroup, error) {
	b, ok := e.bindings[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol %q not bound", symbol)
	}
	gb, ok := b.(GroupBinding)
	if !ok {
		return nil, fmt.Errorf("symbol %q is an attribute, not a value group", symbol)
	}
	if index == pattern.WholeGroup {
		return gb.Group, nil
	}
	if gb.Slots == nil {
		return nil, fmt.Errorf("symbol %q is not indexable", symbol)
	}
	if index < 0 || index >= len(gb.Slots) {
		return nil, fmt.Errorf("group index %d out of range for %q (%d groups)", index, symbol, len(gb.Slots))
	}
	return gb.Slots[index], nil
}

// Symbols returns the bound symbol names in sorted order.
func (e *Env) Symbols() []string {
	symbols := slices.Clone(e.order)
	slices.Sort(symbols)
	return symbols
}

// Hash computes the canonical content hash of the environment: for
// every symbol in sorted order, the value names of group bindings or
// the canonical serialization of attribute bindings. Identical matches
// produce identical hashes across runs, the binding-determinism
// anchor the journal's idempotency relies on.
func (e *Env) Hash() (string, error) {
	var buf bytes.Buffer
	for _, symbol := range e.Symbols() {
		buf.WriteString(symbol)
		buf.WriteByte('=')
		switch b := e.bindings[symbol].(type) {
		case GroupBinding:
			for i, v := range b.Group {
				if i > 0 {
					buf.WriteByte(',')
				}
				buf.WriteString(v.Name())
			}
		case AttrBinding:
			data, err := ir.CanonicalAttr(b.Value)
			if err != nil {
				return "", fmt.Errorf("hash binding %q: %w", symbol, err)
			}
			buf.Write(data)
		}
		buf.WriteByte('\n')
	}
	return ir.HashWithDomain(ir.DomainBinding, buf.Bytes()), nil
}
