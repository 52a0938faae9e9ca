// Package journal provides a SQLite-backed record of simplifications.
//
// Each row stores the canonical JSON of an input tree, the tree the engine
// produced for it and the mode used. Rows are keyed by the input fingerprint
// and mode, so the journal doubles as a result cache:
//   - Record is idempotent: a second write for the same key is ignored
//   - Recent lists rows by seq, a logical insertion counter
//   - Row ids are UUIDv7 and sort by creation time
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package journal
