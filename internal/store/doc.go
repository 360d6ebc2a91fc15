// Package store provides SQLite-backed durable storage for playtree
// sessions.
//
// A session is one loaded playtree plus the append-only log of operations
// applied to it:
//   - sessions: the tree (as JSON), its content hash, and the RNG seed
//   - operations: load, advance, rewind, and switch records, each with the
//     random values it consumed and the engine state hash after it
//
// Recording the draws, not just the seed, lets a session be rebuilt
// exactly by replaying operations through a fresh engine.
//
// # Ordering
//
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Operations are read with ORDER BY seq ASC
//   - Sessions are read with ORDER BY created_seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
