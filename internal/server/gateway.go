package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/linechat/linechat/internal/registry"
	"github.com/linechat/linechat/internal/router"
	"github.com/linechat/linechat/internal/session"
)

var upgrader = websocket.Upgrader{
	// The chat protocol carries no credentials or site state, so any
	// origin may join, same as any TCP peer may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler returns the HTTP surface: the websocket gateway on /ws and the
// health/stats endpoint on /healthz. Websocket clients run ordinary
// sessions against the same registry as TCP clients.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	log := s.logger.With("component", "gateway")

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		s.sessions.Add(1)
		defer s.sessions.Done()

		lc := session.NewWSConn(conn, s.cfg.WriteTimeout)
		session.New(lc, s.registry, s.router, log).Run(ctx)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status   string              `json:"status"`
			Registry registry.Stats      `json:"registry"`
			Router   router.Stats        `json:"router"`
			Clients  []registry.ClientID `json:"clients"`
		}{
			Status:   "ok",
			Registry: s.registry.Stats(),
			Router:   s.router.Stats(),
			Clients:  s.registry.SnapshotIDs(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(health); err != nil {
			slog.Default().Debug("health encode failed", "error", err)
		}
	})

	return mux
}
