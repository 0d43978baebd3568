// Package claims stores short-lived operator reply claims.
//
// # Overview
//
// When an operator presses the reply button on a forwarded support question,
// a claim is written: "this operator's next message goes to that user." The
// claim is keyed by operator id, carries a TTL (15 minutes by default), and
// is consumed by the first qualifying operator message. An operator who never
// replies simply lets the claim lapse; no cleanup job is required.
//
// # Invariants
//
//   - At most one active claim per operator; a new claim overwrites the old.
//   - Take is read-then-delete: each claim routes at most one message.
//   - ExpiresAt is stored inside the value, so callers validate freshness
//     even when the backing store has not purged the key yet.
//
// # Implementations
//
//   - RedisStore: shared table with server-side expiry, for multi-process runs.
//   - MemoryStore: in-process map with a background sweeper, for single-process
//     deployments and tests.
//
// The race between two concurrent Takes for one operator (both read before
// either deletes) is accepted; per-operator concurrency is effectively one
// human typing.
package claims
