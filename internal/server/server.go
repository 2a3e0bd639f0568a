package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/linechat/linechat/internal/registry"
	"github.com/linechat/linechat/internal/router"
	"github.com/linechat/linechat/internal/session"
)

// Config holds per-connection transport settings.
type Config struct {
	// IdleTimeout disconnects a client that sends nothing for this long
	// (0 = never).
	IdleTimeout time.Duration

	// WriteTimeout bounds each outbound write (0 = no deadline).
	WriteTimeout time.Duration
}

// Server owns the registry and router shared by every transport
// (plain TCP and the websocket gateway).
type Server struct {
	cfg    Config
	logger *slog.Logger

	registry *registry.Registry
	router   *router.Router

	sessions sync.WaitGroup
}

// New creates a Server with an empty registry.
func New(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg := registry.New()
	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		router:   router.New(reg, logger.With("component", "router")),
	}
}

// Registry exposes the client directory for diagnostics.
func (s *Server) Registry() *registry.Registry { return s.registry }

// Router exposes routing stats for diagnostics.
func (s *Server) Router() *router.Router { return s.router }

// Serve accepts connections on the listener until ctx is cancelled,
// running one session per connection. A failed accept is logged and the
// loop continues; only ctx cancellation (which closes the listener) ends
// it. On return all sessions spawned from this listener have finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	log := s.logger.With("component", "acceptor")
	log.Info("listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				log.Info("acceptor stopped")
				break
			}
			log.Warn("accept failed", "error", err)
			continue
		}

		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			lc := session.NewTCPConn(conn, s.cfg.IdleTimeout, s.cfg.WriteTimeout)
			session.New(lc, s.registry, s.router, s.logger).Run(ctx)
		}()
	}

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn("sessions still draining at shutdown")
	}
	return nil
}
