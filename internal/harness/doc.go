// Package harness provides scenario-based conformance testing for the
// rewrite engine.
//
// A scenario names a fixture graph, a rule set, and optionally a
// transform table; Run compiles the rules, drives a full rewrite pass,
// and returns the resulting graph rendering plus the applied-rewrite
// log. RunWithGolden compares that snapshot against a golden file in
// testdata/golden/{name}.golden.
//
// # Deterministic Testing
//
// Scenarios execute with fixed application IDs and the driver's
// deterministic ordering (benefit descending, declaration order on
// ties, FIFO worklist), so the snapshot is byte-identical across runs.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
