package ir

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Value is a single typed output of an Operation, or an external graph
// input. Values are owned by their producer; everything else holds use
// edges. Identity is pointer identity: two distinct Values are never
// interchangeable even when structurally equal.
type Value struct {
	producer *Operation // nil for external inputs
	index    int        // flat result index within producer
	typ      cty.Type
	id       int // graph-unique number, assigned at creation
	uses     []Use
}

// Use records one consuming position of a Value: which operation, which
// declared operand slot, and the index within that slot's group.
type Use struct {
	Consumer *Operation
	Slot     int
	Index    int
}

// Type returns the value's type.
func (v *Value) Type() cty.Type { return v.typ }

// Producer returns the operation that produced this value, or nil for
// an external input.
func (v *Value) Producer() *Operation { return v.producer }

// Uses returns the current use edges. The returned slice is live graph
// state; callers must not mutate it.
func (v *Value) Uses() []Use { return v.uses }

// Name returns the printed name of the value, e.g. "%3".
func (v *Value) Name() string { return fmt.Sprintf("%%%d", v.id) }

func (v *Value) addUse(u Use) { v.uses = append(v.uses, u) }

// removeUse drops one use edge. Panics if the edge is not present:
// a consumer releasing an edge it never held means the graph is corrupt.
func (v *Value) removeUse(u Use) {
	for i, have := range v.uses {
		if have == u {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("ir: dangling use edge on %s: %s slot %d index %d not registered",
		v.Name(), u.Consumer.Operator(), u.Slot, u.Index))
}

// ValueGroup is an ordered sequence of Values bound to one declared
// (possibly variadic) slot.
type ValueGroup []*Value

// Names returns the printed names of the group's values, in order.
func (g ValueGroup) Names() []string {
	names := make([]string, len(g))
	for i, v := range g {
		names[i] = v.Name()
	}
	return names
}

// UniqueProducer returns the single operation producing every value in
// the group. Returns nil if the group is empty, contains an external
// input, or spans more than one producer.
func (g ValueGroup) UniqueProducer() *Operation {
	if len(g) == 0 {
		return nil
	}
	p := g[0].producer
	if p == nil {
		return nil
	}
	for _, v := range g[1:] {
		if v.producer != p {
			return nil
		}
	}
	return p
}
