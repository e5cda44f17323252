// Package ir provides the operation-graph representation the rewrite
// engine works on: operator signatures with scalar/variadic slots,
// typed values grouped per declared slot, and a mutable graph handle.
//
// This package contains the value model and graph bookkeeping only. All
// other internal packages import ir; ir imports nothing internal. This
// ensures ir remains the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - A Value is owned by its producing Operation; consumers hold
//     non-owning use edges tracked on the Value itself.
//   - Variadic actual counts are fixed at construction and never change.
//   - Graph-consistency violations (dangling uses, unknown producers)
//     panic: the engine must halt rather than rewrite a corrupted graph.
package ir
