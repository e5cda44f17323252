package pattern

// Rule is one compiled rewrite rule as handed over by the rule
// frontend: a source pattern, one or more result patterns, additional
// constraints, and a benefit.
//
// Benefit orders competing rule applications; higher applies first.
// A nil Benefit means "default": the number of operation nodes in the
// source pattern, assigned during Compile. Zero is a legal explicit
// benefit, distinct from unset.
type Rule struct {
	ID          string
	Source      *Source
	Results     []Result
	Constraints []Constraint
	Benefit     *int
}

// BenefitOf returns a pointer for Rule.Benefit literals.
func BenefitOf(n int) *int { return &n }

// TransformResolver reports whether a native transform identifier is
// known and how many value groups its callable returns. Implemented by
// the engine's transform registry; compile-time resolution keeps
// unknown transform references out of the active rule set.
type TransformResolver interface {
	Resolve(name string) (returns int, ok bool)
}
