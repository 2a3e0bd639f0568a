package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"github.com/linechat/linechat/internal/protocol"
	"github.com/linechat/linechat/internal/registry"
	"github.com/linechat/linechat/internal/router"
)

// Session is the per-connection control loop. It registers with the
// registry, sends the welcome line, then runs two independent duties for
// the life of the connection: the read duty (parse inbound lines and hand
// them to the router) and the write duty (drain the outbox to the
// transport). Either duty failing tears the whole session down; nothing
// here ever affects another session.
type Session struct {
	conn     LineConn
	registry *registry.Registry
	router   *router.Router
	logger   *slog.Logger

	id     registry.ClientID
	outbox *registry.Outbox
}

// New creates a session for an accepted connection. The session gets a
// uuid correlation id in its log fields; the numeric client id is only
// known after registration.
func New(conn LineConn, reg *registry.Registry, rt *router.Router, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		conn:     conn,
		registry: reg,
		router:   rt,
		logger:   logger.With("session", uuid.NewString()),
	}
}

// Run blocks until the connection is gone and the session is fully
// deregistered. Errors never escape: any failure is local to this client.
func (s *Session) Run(ctx context.Context) {
	s.id, s.outbox = s.registry.Register()
	log := s.logger.With("client_id", int64(s.id))
	log.Info("client registered")

	defer func() {
		s.registry.Deregister(s.id)
		s.conn.Close()
		log.Info("client deregistered")
	}()

	if err := s.conn.WriteLine(protocol.FormatWelcome(s.id)); err != nil {
		log.Warn("welcome write failed", "error", err)
		return
	}

	// Server shutdown cancels ctx; closing the outbox and the conn
	// unblocks whichever duty is parked.
	stop := context.AfterFunc(ctx, func() {
		s.registry.Deregister(s.id)
		s.conn.Close()
	})
	defer stop()

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		s.writeLoop(log)
	}()

	s.readLoop(ctx, log)

	// Closing: deregister wakes the write duty if it is parked on an
	// empty outbox; pending lines drain before it exits.
	s.registry.Deregister(s.id)
	<-writeDone
}

// readLoop is the inbound duty: one line in, one routed message.
func (s *Session) readLoop(ctx context.Context, log *slog.Logger) {
	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			switch {
			case ctx.Err() != nil:
				log.Debug("read duty stopped by shutdown")
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
				log.Info("client disconnected")
			default:
				log.Warn("read failed", "error", err)
			}
			return
		}

		if err := s.router.Route(protocol.Parse(s.id, line)); err != nil {
			log.Warn("route failed", "error", err)
		}
	}
}

// writeLoop is the outbound duty: drains the outbox until it is closed
// or the transport dies.
func (s *Session) writeLoop(log *slog.Logger) {
	for {
		line, ok := s.outbox.Receive()
		if !ok {
			return
		}
		if err := s.conn.WriteLine(line); err != nil {
			log.Warn("write failed", "error", err)
			// Stop accepting deliveries and kick the read duty loose.
			s.registry.Deregister(s.id)
			s.conn.Close()
			return
		}
	}
}
