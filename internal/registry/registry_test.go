package registry

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistry_ConcurrentRegisterUnique(t *testing.T) {
	r := New()

	const n = 100
	ids := make(chan ClientID, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := r.Register()
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[ClientID]bool)
	for id := range ids {
		if id <= 0 {
			t.Errorf("non-positive id %d", id)
		}
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("got %d distinct ids, want %d", len(seen), n)
	}
	if got := r.Stats().Clients; got != n {
		t.Errorf("Stats().Clients = %d, want %d", got, n)
	}
}

func TestRegistry_NoLeakOnDeregister(t *testing.T) {
	r := New()

	a, _ := r.Register()
	b, _ := r.Register()

	r.Deregister(a)

	for _, id := range r.SnapshotIDs() {
		if id == a {
			t.Errorf("SnapshotIDs still contains deregistered id %d", a)
		}
	}

	if err := r.Deliver(a, "late"); !errors.Is(err, ErrNoSuchClient) {
		t.Errorf("Deliver to deregistered id: err = %v, want ErrNoSuchClient", err)
	}
	if err := r.Deliver(b, "fine"); err != nil {
		t.Errorf("Deliver to live id: %v", err)
	}
}

func TestRegistry_DeregisterIdempotent(t *testing.T) {
	r := New()

	a, _ := r.Register()
	b, outB := r.Register()

	r.Deregister(a)
	r.Deregister(a)   // second call is a no-op
	r.Deregister(999) // never registered

	if got := r.SnapshotIDs(); len(got) != 1 || got[0] != b {
		t.Errorf("SnapshotIDs = %v, want [%d]", got, b)
	}

	// Entry b is untouched.
	if err := r.Deliver(b, "still here"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if line, ok := outB.TryReceive(); !ok || line != "still here" {
		t.Errorf("outbox b = (%q, %v)", line, ok)
	}
}

func TestRegistry_BroadcastFanOut(t *testing.T) {
	r := New()

	outs := make(map[ClientID]*Outbox)
	for i := 0; i < 3; i++ {
		id, out := r.Register()
		outs[id] = out
	}

	if n := r.Broadcast("first", 0); n != 3 {
		t.Errorf("Broadcast reached %d clients, want 3", n)
	}
	r.Broadcast("second", 0)

	for id, out := range outs {
		for _, want := range []string{"first", "second"} {
			got, ok := out.TryReceive()
			if !ok {
				t.Fatalf("client %d: missing line %q", id, want)
			}
			if got != want {
				t.Errorf("client %d: got %q, want %q (order violated)", id, got, want)
			}
		}
		if _, ok := out.TryReceive(); ok {
			t.Errorf("client %d: received extra line", id)
		}
	}
}

func TestRegistry_BroadcastExclude(t *testing.T) {
	r := New()

	a, outA := r.Register()
	_, outB := r.Register()

	if n := r.Broadcast("not for a", a); n != 1 {
		t.Errorf("Broadcast reached %d clients, want 1", n)
	}

	if _, ok := outA.TryReceive(); ok {
		t.Error("excluded client received the broadcast")
	}
	if line, ok := outB.TryReceive(); !ok || line != "not for a" {
		t.Errorf("other client = (%q, %v)", line, ok)
	}
}

func TestRegistry_DeliverExact(t *testing.T) {
	r := New()

	a, outA := r.Register()
	b, outB := r.Register()
	_, outC := r.Register()

	if err := r.Deliver(b, "for b only"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if line, ok := outB.TryReceive(); !ok || line != "for b only" {
		t.Errorf("target outbox = (%q, %v)", line, ok)
	}
	if _, ok := outA.TryReceive(); ok {
		t.Errorf("client %d received a line not addressed to it", a)
	}
	if _, ok := outC.TryReceive(); ok {
		t.Error("third client received a line not addressed to it")
	}
}

func TestRegistry_BroadcastRacesDeregister(t *testing.T) {
	r := New()

	ids := make([]ClientID, 50)
	for i := range ids {
		ids[i], _ = r.Register()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			r.Broadcast("racing", 0)
		}
	}()
	go func() {
		defer wg.Done()
		for _, id := range ids {
			r.Deregister(id)
		}
	}()
	wg.Wait()

	// Must not deadlock or panic; the map must be empty afterwards.
	if got := len(r.SnapshotIDs()); got != 0 {
		t.Errorf("SnapshotIDs has %d entries after full deregister", got)
	}
}
