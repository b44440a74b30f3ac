// Package server exposes the leaderboard over HTTP and hosts browser play sessions
// over websocket, one simulation per connection
package server

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/leaderboard"
	"github.com/lixenwraith/brakezone/status"
)

// Options configures a Server; zero values get defaults
type Options struct {
	Board   *leaderboard.Board
	Metrics *status.Registry
	Logger  *slog.Logger

	// AllowedOrigins feeds CORS and websocket origin checks; empty allows any
	AllowedOrigins []string

	// Rate limit for leaderboard submissions per client IP
	RatePerWindow int
	RateWindow    time.Duration
	RateWhitelist []string

	// TickInterval is the per-session simulation step
	TickInterval time.Duration
	// LiteScenery is forwarded to every session scenario
	LiteScenery bool
	// Seed for session random sources, 0 for time-seeded
	Seed uint64
}

// Server owns shared state for all handlers
type Server struct {
	board   *leaderboard.Board
	metrics *status.Registry
	logger  *slog.Logger
	limiter *RateLimiter
	opts    Options

	statSessions *atomic.Int64
	statActive   *atomic.Int64
}

// New creates a server; Board is required
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = status.NewRegistry()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = engine.DefaultTickInterval
	}
	if opts.RatePerWindow <= 0 {
		opts.RatePerWindow = 30
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}

	return &Server{
		board:        opts.Board,
		metrics:      opts.Metrics,
		logger:       opts.Logger.With("component", "server"),
		limiter:      NewRateLimiter(opts.RatePerWindow, opts.RateWindow, opts.RateWhitelist, opts.Logger),
		opts:         opts,
		statSessions: opts.Metrics.Ints.Get("server.sessions"),
		statActive:   opts.Metrics.Ints.Get("server.sessions_active"),
	}
}

// Handler builds the routed, wrapped handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/leaderboard", s.ListLeaderboard)
	mux.Handle("POST /v1/leaderboard", s.limiter.Middleware(http.HandlerFunc(s.SubmitScore)))
	mux.HandleFunc("GET /v1/stats", s.Stats)
	mux.HandleFunc("/v1/play", s.ServePlay)
	mux.HandleFunc("GET /healthz", s.Healthz)

	// websocket upgrades must bypass gzip
	compressed := GzipMiddleware(mux)
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/play" {
			mux.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
	return CORSMiddleware(s.opts.AllowedOrigins)(root)
}

// Close stops background workers
func (s *Server) Close() {
	s.limiter.Close()
}
