package ir

import (
	"errors"
	"fmt"
)

// ErrArityMismatch reports actual value counts that cannot be reconciled
// with an operator's declared slots. During matching it is treated as an
// ordinary match failure, never as a fatal condition.
var ErrArityMismatch = errors.New("arity mismatch")

// SlotArity classifies a declared operand or result position.
type SlotArity int

const (
	// SlotScalar holds exactly one actual value.
	SlotScalar SlotArity = iota
	// SlotVariadic holds zero or more actual values, contiguous.
	SlotVariadic
)

// String returns "scalar" or "variadic".
func (a SlotArity) String() string {
	if a == SlotVariadic {
		return "variadic"
	}
	return "scalar"
}

// Signature declares the static shape of one operator: its operand
// slots, result slots, and attribute names in declaration order.
//
// At most one slot per side may be variadic. This keeps SplitCounts
// total: the variadic count is whatever remains after the scalar slots
// are subtracted from the actual count.
type Signature struct {
	Name       string
	Operands   []SlotArity
	Attributes []string
	Results    []SlotArity
}

// validate checks structural constraints on the signature itself.
func (s Signature) validate() error {
	if s.Name == "" {
		return fmt.Errorf("signature has empty operator name")
	}
	if n := countVariadic(s.Operands); n > 1 {
		return fmt.Errorf("operator %s: %d variadic operand slots (at most one allowed)", s.Name, n)
	}
	if n := countVariadic(s.Results); n > 1 {
		return fmt.Errorf("operator %s: %d variadic result slots (at most one allowed)", s.Name, n)
	}
	seen := make(map[string]bool, len(s.Attributes))
	for _, name := range s.Attributes {
		if seen[name] {
			return fmt.Errorf("operator %s: duplicate attribute name %q", s.Name, name)
		}
		seen[name] = true
	}
	return nil
}

func countVariadic(slots []SlotArity) int {
	n := 0
	for _, a := range slots {
		if a == SlotVariadic {
			n++
		}
	}
	return n
}

// SplitCounts distributes an actual value count over declared slots.
//
// Scalar slots take exactly one value each; the single variadic slot (if
// any) absorbs the remainder. Returns ErrArityMismatch when the actual
// count is below the mandatory scalar count, or does not equal it exactly
// when no slot is variadic.
func SplitCounts(slots []SlotArity, actual int) ([]int, error) {
	scalars := len(slots) - countVariadic(slots)
	if actual < scalars {
		return nil, fmt.Errorf("%w: %d actual values for %d mandatory scalar slots", ErrArityMismatch, actual, scalars)
	}
	if countVariadic(slots) == 0 && actual != scalars {
		return nil, fmt.Errorf("%w: %d actual values for %d scalar slots", ErrArityMismatch, actual, scalars)
	}

	counts := make([]int, len(slots))
	rest := actual - scalars
	for i, a := range slots {
		if a == SlotVariadic {
			counts[i] = rest
		} else {
			counts[i] = 1
		}
	}
	return counts, nil
}

// Registry maps operator identifiers to their signatures.
//
// The registry is populated once at startup by the host and read-only
// afterwards. Registration order is not significant; lookups are by name.
type Registry struct {
	sigs map[string]Signature
}

// NewRegistry creates an empty signature registry.
func NewRegistry() *Registry {
	return &Registry{sigs: make(map[string]Signature)}
}

// Register adds a signature. Duplicate names and structurally invalid
// signatures are rejected.
func (r *Registry) Register(sig Signature) error {
	if err := sig.validate(); err != nil {
		return err
	}
	if _, exists := r.sigs[sig.Name]; exists {
		return fmt.Errorf("operator %s already registered", sig.Name)
	}
	r.sigs[sig.Name] = sig
	return nil
}

// MustRegister is Register that panics on error. Intended for static
// signature tables wired at startup.
func (r *Registry) MustRegister(sig Signature) {
	if err := r.Register(sig); err != nil {
		panic(err)
	}
}

// Lookup returns the signature for an operator identifier.
func (r *Registry) Lookup(name string) (Signature, bool) {
	sig, ok := r.sigs[name]
	return sig, ok
}
