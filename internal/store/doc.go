// Package store provides SQLite-backed persistence for block projects.
//
// A project row holds the canonical JSON workspace tree together with the
// target, device and last generated program. Every save bumps the
// project's revision and may append a build record describing the
// artifact: its source hash, size in bytes and diagnostic counts.
//
// # Ordering
//
// Listings never order by wall time. Projects order by name then id and
// builds by their insertion sequence, so identical operation sequences give
// identical results.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
