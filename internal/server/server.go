// Package server exposes games over HTTP and websockets. Every game lives in
// a Table that serializes commands; the Lobby tracks tables and expires idle
// ones.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/dixit/internal/chat"
	"github.com/lox/dixit/internal/users"
)

// Options configure the HTTP server
type Options struct {
	Addr          string
	StaticDir     string
	GameTTL       time.Duration
	SweepInterval time.Duration
}

// Server serves the lobby, games, users and chat
type Server struct {
	opts     Options
	logger   *log.Logger
	clock    quartz.Clock
	lobby    *Lobby
	users    *users.Registry
	chat     *chat.Log
	upgrader websocket.Upgrader
}

// New creates a server around the given registries
func New(logger *log.Logger, clock quartz.Clock, lobby *Lobby, reg *users.Registry, chatLog *chat.Log, opts Options) *Server {
	return &Server{
		opts:   opts,
		logger: logger.WithPrefix("server"),
		clock:  clock,
		lobby:  lobby,
		users:  reg,
		chat:   chatLog,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/config", s.withUser(s.handleConfig))
	mux.HandleFunc("GET /api/games", s.withUser(s.handleListGames))
	mux.HandleFunc("POST /api/games", s.withUser(s.handleCreateGame))
	mux.HandleFunc("GET /api/games/{id}", s.withUser(s.handleBoard))
	mux.HandleFunc("POST /api/games/{id}/{command}", s.withUser(s.handleCommand))
	mux.HandleFunc("GET /api/users", s.withUser(s.handleListUsers))
	mux.HandleFunc("POST /api/users/name", s.withUser(s.handleSetName))
	mux.HandleFunc("GET /api/chat", s.withUser(s.handleChatSince))
	mux.HandleFunc("POST /api/chat", s.withUser(s.handleChatPost))
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	if s.opts.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir))))
	}
	return mux
}

// Run serves HTTP on opts.Addr and sweeps idle games until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down")
		for _, t := range s.lobby.List() {
			t.close()
		}
		return srv.Shutdown(shutdownCtx)
	})
	if s.opts.SweepInterval > 0 && s.opts.GameTTL > 0 {
		g.Go(func() error {
			w := s.clock.TickerFunc(ctx, s.opts.SweepInterval, func() error {
				s.Sweep()
				return nil
			}, "sweep")
			if err := w.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Sweep removes games idle for longer than the configured TTL
func (s *Server) Sweep() []string {
	return s.lobby.ExpireIdle(s.clock.Now(), s.opts.GameTTL)
}
