package engine

import (
	"fmt"
	"log/slog"

	"github.com/Robertorosmaninho/mlir/internal/ir"
)

// TransformFn is the fixed calling convention for native transforms:
// the ambient graph handle, the value group the transform is attached
// to (empty unless the rule names a self symbol), and the resolved
// arguments in use-site order. The callable returns the value groups it
// constructed.
type TransformFn func(g *ir.Graph, self ir.ValueGroup, args []Binding) ([]ir.ValueGroup, error)

type transformEntry struct {
	fn      TransformFn
	returns int
}

// Transforms is the registered-callable table native-transform
// invocations dispatch through. It is populated once at startup by the
// host and resolved at rule-compile time; the builder never sees an
// unresolved identifier.
type Transforms struct {
	entries map[string]transformEntry
}

// NewTransforms creates an empty transform table.
func NewTransforms() *Transforms {
	return &Transforms{entries: make(map[string]transformEntry)}
}

// Register adds a callable under an identifier, declaring how many
// value groups it returns. Panics on duplicate registration: transform
// tables are wired statically at startup and a collision is a
// programming error.
func (t *Transforms) Register(name string, returns int, fn TransformFn) {
	if _, exists := t.entries[name]; exists {
		panic(fmt.Sprintf("transform %q already registered", name))
	}
	if returns < 1 {
		panic(fmt.Sprintf("transform %q must return at least one group", name))
	}
	slog.Debug("registering native transform", "name", name, "returns", returns)
	t.entries[name] = transformEntry{fn: fn, returns: returns}
}

// Resolve implements pattern.TransformResolver.
func (t *Transforms) Resolve(name string) (int, bool) {
	entry, ok := t.entries[name]
	return entry.returns, ok
}

func (t *Transforms) get(name string) (transformEntry, bool) {
	entry, ok := t.entries[name]
	return entry, ok
}
