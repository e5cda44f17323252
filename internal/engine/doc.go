// Package engine implements the rewrite engine proper: the matcher
// that binds source patterns against graph regions, the builder that
// constructs replacement subgraphs from result patterns, and the
// driver that orders and applies candidate rewrites over a worklist.
//
// The driver is single-threaded and deterministic: rules are tried in
// descending benefit order with declaration order breaking ties, and
// all graph mutation happens inline between worklist pops. Matching is
// all-or-nothing; a failed match discards its partial environment and
// costs nothing but time.
package engine
