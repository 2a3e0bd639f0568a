package registry

import (
	"sync"

	"github.com/eapache/queue"
)

// Outbox is one client's delivery queue: written by many producers (any
// session that broadcasts or delivers to this client), drained by exactly
// one consumer (the owning session's write duty). Put never blocks, so a
// slow or stalled consumer only grows its own queue and can never stall a
// broadcaster or another client.
type Outbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	fifo   *queue.Queue
	closed bool

	// Stats
	totalEnqueued int64
	totalDrained  int64
}

func newOutbox() *Outbox {
	o := &Outbox{fifo: queue.New()}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// Put enqueues a line. Returns false if the outbox is already closed;
// the line is silently dropped in that case.
func (o *Outbox) Put(line string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false
	}

	o.fifo.Add(line)
	o.totalEnqueued++
	o.cond.Signal()
	return true
}

// Receive blocks until a line is available or the outbox is closed.
// After close, remaining lines are still drained in order; once empty,
// Receive returns ("", false).
func (o *Outbox) Receive() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for o.fifo.Length() == 0 && !o.closed {
		o.cond.Wait()
	}

	if o.fifo.Length() == 0 {
		return "", false
	}

	line := o.fifo.Remove().(string)
	o.totalDrained++
	return line, true
}

// TryReceive attempts to receive without blocking.
func (o *Outbox) TryReceive() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fifo.Length() == 0 {
		return "", false
	}

	line := o.fifo.Remove().(string)
	o.totalDrained++
	return line, true
}

// Close marks the outbox closed and wakes a blocked consumer. Pending
// lines remain receivable. Idempotent.
func (o *Outbox) Close() {
	o.mu.Lock()
	o.closed = true
	o.cond.Broadcast()
	o.mu.Unlock()
}

// Len returns the number of pending lines.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fifo.Length()
}

// Stats returns outbox counters.
func (o *Outbox) Stats() OutboxStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return OutboxStats{
		Pending:       o.fifo.Length(),
		TotalEnqueued: o.totalEnqueued,
		TotalDrained:  o.totalDrained,
	}
}

// OutboxStats contains outbox counters.
type OutboxStats struct {
	Pending       int
	TotalEnqueued int64
	TotalDrained  int64
}
