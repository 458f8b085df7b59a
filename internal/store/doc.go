// Package store provides SQLite-backed durable storage for domain-pass runs.
//
// Every run of the domain pass can be recorded with:
//   - Runs: one row per pass with its tag, graph hash and counters
//   - Canon sets: the trigger-set table as it stood when the pass finished
//   - Vertex domains: the domain of every vertex, captured before pruning
//   - Pruned logic: the blocks removed because nothing triggers them
//
// # Ordering
//
// Runs are ordered by seq INTEGER, a logical counter assigned inside the
// write transaction, never by created_at. Child rows are read back ordered
// by vertex id, handle or position so that two reads of the same run are
// byte-identical.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Child rows are removed with their run
//
// Trigger-set items are stored as RFC 8785 canonical JSON produced by
// internal/ir, the same encoding the content hashes use.
package store
