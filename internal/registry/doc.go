// Package registry implements the shared client directory.
//
// The registry:
//   - Allocates monotonic, never-reused client ids
//   - Maps each live client to its delivery queue (outbox)
//   - Fans broadcast lines out to every registered outbox
//   - Tears entries down idempotently on disconnect
//
// Outboxes follow a multi-producer/single-consumer discipline: any
// session may enqueue, only the owning session's write duty drains.
package registry
