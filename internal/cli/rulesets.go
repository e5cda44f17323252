package cli

import (
	"fmt"
	"sort"

	"github.com/Robertorosmaninho/mlir/internal/engine"
	"github.com/Robertorosmaninho/mlir/internal/harness"
	"github.com/Robertorosmaninho/mlir/internal/ir"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

// RuleSet bundles a named rule collection with the operator registry
// and transforms it is written against. The CLI is host-side tooling:
// rule sets are compiled in, not parsed from files, because the rule
// frontend lives outside this repository.
type RuleSet struct {
	Name     string
	Registry *ir.Registry
	Rules    []*pattern.Rule
	// Transforms may be nil when no rule invokes a native transform.
	Transforms *engine.Transforms
}

// builtinRuleSets returns the compiled-in rule sets, keyed by name.
func builtinRuleSets() map[string]*RuleSet {
	return map[string]*RuleSet{
		"fuse": {
			Name:     "fuse",
			Registry: harness.FixtureRegistry(),
			Rules:    []*pattern.Rule{harness.FuseRule()},
		},
		"cascade": {
			Name:     "cascade",
			Registry: harness.FixtureRegistry(),
			Rules:    harness.CascadeScenario().Rules,
		},
	}
}

// LookupRuleSet resolves a named built-in rule set.
func LookupRuleSet(name string) (*RuleSet, error) {
	sets := builtinRuleSets()
	rs, ok := sets[name]
	if !ok {
		return nil, fmt.Errorf("unknown rule set %q (have: %v)", name, ruleSetNames(sets))
	}
	return rs, nil
}

func ruleSetNames(sets map[string]*RuleSet) []string {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
