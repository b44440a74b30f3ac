package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/brakezone/config"
	"github.com/lixenwraith/brakezone/leaderboard"
	"github.com/lixenwraith/brakezone/server"
	"github.com/lixenwraith/brakezone/status"
)

var configPath = flag.String("config", "brakezone.toml", "Path to TOML config; missing file uses defaults")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting brakezone server",
		"log_level", cfg.LogLevel,
		"http_addr", cfg.HTTP.Addr,
		"redis_enabled", cfg.Redis.Enabled,
	)

	metrics := status.NewRegistry()
	local := leaderboard.NewLocalStore(cfg.Leaderboard.HistoryCap, cfg.Leaderboard.LocalPath, logger)

	var remote leaderboard.Store
	if cfg.Redis.Enabled {
		client, err := leaderboard.DialRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("redis unavailable, leaderboard is local only", "addr", cfg.Redis.Addr, "error", err)
		} else {
			rs := leaderboard.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Leaderboard.HistoryCap, logger)
			defer rs.Close()
			remote = rs
		}
	}

	board := leaderboard.NewBoard(local, remote, leaderboard.BoardOptions{
		Limit:   cfg.Leaderboard.Limit,
		Timeout: cfg.Leaderboard.Timeout,
		Logger:  logger,
		Metrics: metrics,
	})

	srv := server.New(server.Options{
		Board:          board,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RatePerWindow:  cfg.RateLimit.PerWindow,
		RateWindow:     cfg.RateLimit.Window,
		RateWhitelist:  cfg.RateLimit.Whitelist,
		TickInterval:   cfg.FrameInterval,
		LiteScenery:    cfg.LiteScenery,
		Seed:           cfg.Seed,
	})
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete", "metrics", metrics.Snapshot())
}
