// Package server exposes hosted games over HTTP: a JSON API for creating
// games and acting in them, plus a websocket stream of table snapshots.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/handlers"
	gmux "github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/lox/holdem-engine/internal/config"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/internal/registry"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server hosts games for HTTP clients
type Server struct {
	cfg      *config.Config
	games    *registry.Registry
	router   *gmux.Router
	upgrader websocket.Upgrader

	seed     int64
	seeded   bool
	created  atomic.Int64
	client   *http.Client
	clock    quartz.Clock
	logger   *log.Logger
	accessOK bool
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock sets the clock handed to every table
func WithClock(c quartz.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithSeed makes every game's shuffles and agent decisions reproducible.
// Game n derives its random sources from seed and n.
func WithSeed(seed int64) Option {
	return func(s *Server) {
		s.seed = seed
		s.seeded = true
	}
}

// WithHTTPClient sets the client remote agents use
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) { s.client = c }
}

// WithAccessLog enables combined-format access logging through the logger
func WithAccessLog(enabled bool) Option {
	return func(s *Server) { s.accessOK = enabled }
}

// New creates a server for cfg
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		router: gmux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		client: http.DefaultClient,
		clock:  quartz.NewReal(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("server")
	s.games = registry.New(cfg.Server.MaxGames, s.logger)
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Methods(http.MethodGet).Path("/health").HandlerFunc(s.getHealth)
	r.Methods(http.MethodGet).Path("/api/strategies").HandlerFunc(s.getStrategies)
	r.Methods(http.MethodGet).Path("/api/games").HandlerFunc(s.getGames)
	r.Methods(http.MethodPost).Path("/api/games").HandlerFunc(s.postGames)

	g := r.PathPrefix("/api/games/{id}").Subrouter()
	g.Methods(http.MethodGet).Path("").HandlerFunc(s.getGame)
	g.Methods(http.MethodDelete).Path("").HandlerFunc(s.deleteGame)
	g.Methods(http.MethodPost).Path("/start").HandlerFunc(s.postStart)
	g.Methods(http.MethodPost).Path("/action").HandlerFunc(s.postAction)
	g.Methods(http.MethodPost).Path("/advance").HandlerFunc(s.postAdvance)
	g.Methods(http.MethodGet).Path("/hands/{hand:[0-9]+}").HandlerFunc(s.getHand)
	g.Methods(http.MethodGet).Path("/ws").HandlerFunc(s.getGameWS)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, nil)
	})
}

// Handler returns the router wrapped with CORS and, if enabled, access logs
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With"},
	})

	var h http.Handler = c.Handler(s.router)
	if s.accessOK {
		access := s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
		h = handlers.CombinedLoggingHandler(access.Writer(), h)
	}
	return h
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr, "autoplay", s.cfg.AutoplayEnabled())
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "games", s.games.Len())
	for _, t := range s.games.List() {
		t.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// rng returns the parent random source for the next game
func (s *Server) rng() *rand.Rand {
	n := int(s.created.Add(1))
	if s.seeded {
		return randutil.Derive(s.seed, n)
	}
	rng, seed := randutil.NewFromEntropy()
	s.logger.Debug("seeded game", "seed", seed)
	return rng
}
