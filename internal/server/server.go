// Package server hosts the cardroom: the HTTP lobby API, the /ws/room
// websocket endpoint, and the per-room executors that drive hand engines.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// Server ties the transport to the coordinator.
type Server struct {
	cfg    *Config
	logger *log.Logger

	hub      *Hub
	coord    *Coordinator
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New assembles a server from configuration. A nil clock uses the real one.
func New(cfg *Config, logger *log.Logger, monitor HandMonitor, clock quartz.Clock) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.WithPrefix("server"),
	}
	s.hub = NewHub(logger)
	s.coord = NewCoordinator(logger, cfg, s.hub, monitor, clock)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.cfg.Server.CORSOrigin == "*" || origin == s.cfg.Server.CORSOrigin
		},
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.httpSrv = &http.Server{
		Addr:    cfg.Server.Address,
		Handler: s.withCORS(mux),
	}
	return s
}

// Coordinator exposes the coordinator, used by integration tests.
func (s *Server) Coordinator() *Coordinator {
	return s.coord
}

// Handler returns the fully-routed HTTP handler, used by httptest servers.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", "addr", s.cfg.Server.Address)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		s.coord.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// withCORS applies the configured allowed origin to every response and
// answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.Server.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	session := NewSession(conn, s.coord, s.hub, s.logger)
	session.Start()
	s.logger.Debug("session opened", "remote", conn.RemoteAddr())

	go func() {
		<-session.Done()
		roomID, playerName := session.RoomID(), session.PlayerName()
		if roomID != "" {
			s.hub.Detach(roomID, session)
			if playerName != "" {
				s.coord.HandleDisconnect(roomID, playerName)
			}
		}
		s.logger.Debug("session closed", "player", playerName)
	}()
}
