package router

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/linechat/linechat/internal/protocol"
	"github.com/linechat/linechat/internal/registry"
)

// Directory is the registry surface the router depends on.
type Directory interface {
	// Deliver enqueues a line for one client.
	Deliver(id registry.ClientID, line string) error

	// Broadcast enqueues a line for every client except exclude (0 = none).
	// Returns the number of clients reached.
	Broadcast(line string, exclude registry.ClientID) int
}

// Router turns parsed messages into deliveries through the directory.
type Router struct {
	dir    Directory
	logger *slog.Logger

	// Stats
	broadcasts atomic.Int64
	privates   atomic.Int64
	misses     atomic.Int64
}

// New creates a Router over the given directory.
func New(dir Directory, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{dir: dir, logger: logger}
}

// Route dispatches a single message.
//
// Broadcasts fan out to every client including the sender; the client UI
// tags its own lines locally rather than the server suppressing the echo.
// A private message to an unknown recipient produces a notice back to the
// sender only; if the sender itself vanished mid-flight there is no one
// left to notify and the failure is dropped.
func (rt *Router) Route(msg protocol.Message) error {
	switch msg.Kind {
	case protocol.KindBroadcast:
		line := protocol.FormatBroadcast(msg.From, msg.Text)
		n := rt.dir.Broadcast(line, 0)
		rt.broadcasts.Add(1)
		rt.logger.Debug("broadcast routed", "from", msg.From, "recipients", n)
		return nil

	case protocol.KindPrivate:
		rt.privates.Add(1)
		line := protocol.FormatPrivate(msg.From, msg.Text)
		err := rt.dir.Deliver(msg.To, line)
		if err == nil {
			rt.logger.Debug("private routed", "from", msg.From, "to", msg.To)
			return nil
		}
		if !errors.Is(err, registry.ErrNoSuchClient) {
			return fmt.Errorf("deliver to client %d: %w", msg.To, err)
		}

		rt.misses.Add(1)
		rt.logger.Debug("private recipient unknown", "from", msg.From, "to", msg.To)
		if err := rt.dir.Deliver(msg.From, protocol.FormatNotFound(msg.To)); err != nil {
			// Sender vanished before the notice could land.
			rt.logger.Debug("notice undeliverable, sender gone", "from", msg.From)
		}
		return nil

	default:
		return fmt.Errorf("unroutable message kind %d", msg.Kind)
	}
}

// Stats returns routing counters.
func (rt *Router) Stats() Stats {
	return Stats{
		Broadcasts:        rt.broadcasts.Load(),
		Privates:          rt.privates.Load(),
		UnknownRecipients: rt.misses.Load(),
	}
}

// Stats contains routing counters.
type Stats struct {
	Broadcasts        int64 `json:"broadcasts"`
	Privates          int64 `json:"privates"`
	UnknownRecipients int64 `json:"unknown_recipients"`
}
