package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/playgrove/clickportal/internal/aggregate"
	"github.com/playgrove/clickportal/internal/game"
	"github.com/playgrove/clickportal/internal/progress"
)

// Deps are the server's collaborators, injected so tests can swap in
// fakes (memory counter, fake clock, temp-dir progress store).
type Deps struct {
	Logger   *slog.Logger
	Store    Store
	Counter  aggregate.Counter
	Progress progress.Store
	Clock    game.Clock
	Rules    game.Rules

	SPADir             string
	LeaderboardRefresh time.Duration
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger

	// Exposed so main can run their loops alongside the listener.
	Live   *Live
	Arenas *Arenas
}

// New builds the router and its supporting state. The mount hook lets
// callers attach extra routes (health, websocket) without this package
// depending on them.
func New(addr string, d Deps, mount func(chi.Router)) *Server {
	broker := NewBroker()
	arenas := NewArenas(d.Rules, d.Clock, d.Logger, d.Store, d.Counter, d.Progress, broker)
	live := NewLive(d.Counter, d.Store, broker, d.Clock, d.Logger, d.LeaderboardRefresh)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(d.Logger))
	r.Use(middleware.Recoverer)

	addRoutes(r, d, broker, arenas)
	if mount != nil {
		mount(r)
	}

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: d.Logger,
		Live:   live,
		Arenas: arenas,
	}
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
