package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hubbubchat/hubbub/internal/config"
	"github.com/hubbubchat/hubbub/internal/history"
	"github.com/hubbubchat/hubbub/internal/hub"
)

// Server owns the shared stores, the event router, and the HTTP surface
// that exposes them: the websocket endpoint plus the read-only history
// and roster queries.
type Server struct {
	cfg      config.ServerConfig
	logger   zerolog.Logger
	registry *hub.Registry
	log      *history.Log
	hub      *hub.Hub
	router   *hub.Router
	upgrader websocket.Upgrader
}

// New constructs a server instance and wires the stores into the router.
func New(cfg config.ServerConfig, logger zerolog.Logger) *Server {
	registry := hub.NewRegistry()
	typing := hub.NewTypingSet()
	msgLog := history.NewLog(cfg.HistoryCapacity)
	broadcaster := hub.NewHub()

	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		log:      msgLog,
		hub:      broadcaster,
		router:   hub.NewRouter(registry, typing, msgLog, broadcaster, logger),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWS)
	r.HandleFunc("/api/messages", s.handleMessages).Methods(http.MethodGet)
	r.HandleFunc("/api/users", s.handleUsers).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.ListenAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
