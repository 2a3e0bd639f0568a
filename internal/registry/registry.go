package registry

import (
	"slices"
	"sync"
	"sync/atomic"
)

// ClientID identifies a connected client for the lifetime of its session.
// IDs are assigned from a monotonic counter and never reused while the
// process runs.
type ClientID int64

// entry pairs a client id with its delivery queue. The registry owns the
// entry; the session holds only the outbox side.
type entry struct {
	id     ClientID
	outbox *Outbox
}

// Registry is the concurrency-safe directory of live clients. It is the
// single shared synchronization point between sessions: all mutations go
// through its lock, and the lock is never held across network I/O
// (enqueues are memory-only).
type Registry struct {
	mu      sync.RWMutex
	nextID  ClientID
	entries map[ClientID]*entry

	delivered atomic.Int64 // lines enqueued via Deliver
	fannedOut atomic.Int64 // lines enqueued via Broadcast
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[ClientID]*entry),
	}
}

// Register allocates the next ClientID, creates a fresh outbox, and
// inserts the entry. The returned outbox is the only handle the caller
// should keep; the registry retains ownership of the entry.
func (r *Registry) Register() (ClientID, *Outbox) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	out := newOutbox()
	r.entries[id] = &entry{id: id, outbox: out}
	return id, out
}

// Deregister removes the entry for id and closes its outbox. Idempotent:
// unknown or already-removed ids are a no-op, so double cleanup from
// racing read/write duties is safe.
func (r *Registry) Deregister(id ClientID) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if ok {
		e.outbox.Close()
	}
}

// Deliver enqueues line for a single client. Returns ErrNoSuchClient if
// the id is not registered. A delivery racing Deregister may land on a
// just-closed outbox; it is dropped silently.
func (r *Registry) Deliver(id ClientID, line string) error {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		return ErrNoSuchClient
	}
	if e.outbox.Put(line) {
		r.delivered.Add(1)
	}
	return nil
}

// Broadcast enqueues line to every registered client except exclude
// (0 = deliver to everyone). The read lock is held across the loop so the
// fan-out sees a consistent snapshot of the entry set; enqueues never do
// I/O, so the lock is cheap. Returns the number of clients reached.
func (r *Registry) Broadcast(line string, exclude ClientID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for id, e := range r.entries {
		if id == exclude {
			continue
		}
		if e.outbox.Put(line) {
			n++
		}
	}
	r.fannedOut.Add(int64(n))
	return n
}

// SnapshotIDs returns the currently registered ids in ascending order.
// Diagnostics only.
func (r *Registry) SnapshotIDs() []ClientID {
	r.mu.RLock()
	ids := make([]ClientID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// Stats returns registry counters.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	clients := len(r.entries)
	r.mu.RUnlock()

	return Stats{
		Clients:   clients,
		Delivered: r.delivered.Load(),
		FannedOut: r.fannedOut.Load(),
	}
}

// Stats contains registry counters.
type Stats struct {
	Clients   int   `json:"clients"`
	Delivered int64 `json:"delivered"`
	FannedOut int64 `json:"fanned_out"`
}
