// Package pattern defines the compiled rule representation the rewrite
// engine consumes: source pattern trees (what to match), result pattern
// trees (what to construct), constraints, and the Rule record tying
// them together with a benefit.
//
// The package is pure data plus compile-time validation. It never
// parses rule syntax; producing Rule values from a textual rule
// language is the job of an external frontend. Compile validates rule
// authoring up front (duplicate bindings, replacement-window arity,
// dangling auxiliaries) so the engine can assume accepted rules are
// well formed.
package pattern
