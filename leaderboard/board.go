package leaderboard

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/brakezone/core"
	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/status"
)

// Board fronts a remote store with a local mirror
// Without a remote it is local only; remote failures are logged and answered locally
type Board struct {
	local   *LocalStore
	remote  Store
	limit   int
	timeout time.Duration
	logger  *slog.Logger

	// OnSaved receives the refreshed top list after an async save
	OnSaved func(top []Record)

	statSaved        *atomic.Int64
	statRemoteErrors *atomic.Int64
}

// BoardOptions configures a Board; zero values get defaults
type BoardOptions struct {
	Limit   int
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *status.Registry
}

// NewBoard creates a board; remote may be nil
func NewBoard(local *LocalStore, remote Store, opts BoardOptions) *Board {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = status.NewRegistry()
	}
	return &Board{
		local:            local,
		remote:           remote,
		limit:            opts.Limit,
		timeout:          opts.Timeout,
		logger:           opts.Logger.With("component", "leaderboard"),
		statSaved:        opts.Metrics.Ints.Get("leaderboard.saved"),
		statRemoteErrors: opts.Metrics.Ints.Get("leaderboard.remote_errors"),
	}
}

// Limit returns the default top list length
func (b *Board) Limit() int {
	return b.limit
}

// Top returns the best records, remote first
func (b *Board) Top(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = b.limit
	}
	if b.remote != nil {
		records, err := b.remote.Top(ctx, limit)
		if err == nil {
			return records, nil
		}
		b.statRemoteErrors.Add(1)
		b.logger.Error("remote leaderboard fetch failed, using local", "error", err)
	}
	return b.local.Top(ctx, limit)
}

// Submit sanitizes and stores r, then returns the refreshed top list
func (b *Board) Submit(ctx context.Context, r Record) ([]Record, error) {
	r = r.Sanitize()
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if err := b.local.Insert(ctx, r); err != nil {
		b.logger.Warn("local leaderboard save failed", "error", err)
	}
	if b.remote != nil {
		if err := b.remote.Insert(ctx, r); err != nil {
			b.statRemoteErrors.Add(1)
			b.logger.Error("remote leaderboard save failed, kept locally", "error", err)
		}
	}
	b.statSaved.Add(1)
	b.logger.Info("score saved", "id", r.ID, "name", r.Name, "score", r.Score)

	return b.Top(ctx, b.limit)
}

// SaveAsync stores a finished run on its own goroutine
// Disqualified runs are skipped; done, when set, receives the refreshed list
func (b *Board) SaveAsync(o engine.RunOutcome, done func([]Record)) {
	r, ok := NewRecord(o)
	if !ok {
		return
	}
	core.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		top, err := b.Submit(ctx, r)
		if err != nil {
			b.logger.Error("score save failed", "run_id", o.RunID, "error", err)
			return
		}
		if done != nil {
			done(top)
		}
	})
}

// RunEnded implements engine.ResultSink
func (b *Board) RunEnded(o engine.RunOutcome) {
	b.SaveAsync(o, b.OnSaved)
}
