// Package journal provides SQLite-backed durable storage for applied
// rewrites.
//
// The journal is an append-only log of one row per applied rewrite:
// which rule fired, at which root operator, with which binding hash,
// at which position in the pass. Two properties matter:
//
//   - Binding-level idempotency: UNIQUE(rule_id, binding_hash) means
//     re-recording the same rule applied to the same matched values is
//     a silent no-op, so replaying a pass never duplicates rows.
//   - Logical time: ordering uses seq INTEGER, never wall-clock
//     timestamps, so reads are deterministic across replays.
//
// Binding hashes are computed by the engine over the canonical
// environment serialization with domain separation (see
// internal/ir/hash.go).
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
package journal
