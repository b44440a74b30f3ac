package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/brakezone/audio"
	"github.com/lixenwraith/brakezone/config"
	"github.com/lixenwraith/brakezone/core"
	"github.com/lixenwraith/brakezone/engine"
	"github.com/lixenwraith/brakezone/input"
	"github.com/lixenwraith/brakezone/leaderboard"
	"github.com/lixenwraith/brakezone/render"
	"github.com/lixenwraith/brakezone/service"
	"github.com/lixenwraith/brakezone/status"
)

const cueVolume = 0.6

var (
	configPath = flag.String("config", "brakezone.toml", "Path to TOML config; missing file uses defaults")
	debugFlag  = flag.Bool("debug", false, "Log at debug level")
	nameFlag   = flag.String("name", "", "Player name for the leaderboard")
	classFlag  = flag.String("class", "", "Class or group shown next to the name")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *debugFlag {
		cfg.LogLevel = "debug"
	}
	if *nameFlag != "" {
		cfg.Player.Name = *nameFlag
	}
	if *classFlag != "" {
		cfg.Player.ClassName = *classFlag
	}

	// stdout belongs to the screen, logs go to a file
	logger, logFile := setupLogging(cfg.LogDir, cfg.SlogLevel())
	if logFile != nil {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("brakezone exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "brakezone: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	keys, err := input.DefaultKeyTable().WithBindings(cfg.Keys)
	if err != nil {
		return fmt.Errorf("key bindings: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	core.SetCrashCleanup(screen.Fini)
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := status.NewRegistry()
	term := render.NewTerminal(screen)

	services := service.NewManager(logger)
	defer services.Stop()

	// Optional: the run works without sound
	cues := audio.NewCues(cueVolume, logger)
	if cfg.AudioEnabled {
		services.RegisterOptional(service.New("audio", cues.Open, func() error {
			cues.Close()
			return nil
		}))
	}

	board, closeBoard := openBoard(cfg, logger, metrics)
	defer closeBoard()
	board.OnSaved = term.SetLeaderboard
	if top, err := board.Top(ctx, board.Limit()); err == nil {
		term.SetLeaderboard(top)
	}

	scenario := engine.NewScenario(engine.Options{
		Rand:        engine.NewRand(cfg.Seed),
		Presenter:   engine.NewFanout(logger, term, cues),
		Scene:       engine.SceneFanout{term, cues},
		Results:     board,
		Logger:      logger,
		Metrics:     metrics,
		LiteScenery: cfg.LiteScenery,
	})
	scenario.SetPlayer(engine.Player{Name: cfg.Player.Name, ClassName: cfg.Player.ClassName})

	if cfg.Gamepad.Enabled {
		var stopPad func()
		services.RegisterOptional(service.New("gamepad",
			func() (err error) {
				stopPad, err = startGamepad(ctx, cfg.Gamepad, scenario)
				return err
			},
			func() error {
				stopPad()
				return nil
			},
		))
	}

	sched := engine.NewScheduler(scenario, cfg.FrameInterval)
	sched.OnTick = func(bool) { term.Draw() }
	services.Register(service.New("scheduler",
		func() error {
			sched.Start(ctx)
			return nil
		},
		func() error {
			sched.Stop()
			return nil
		},
	))

	if err := services.Start(); err != nil {
		return err
	}

	logger.Info("brakezone started",
		"frame_interval", cfg.FrameInterval,
		"redis", cfg.Redis.Enabled,
		"services", services.Running(),
	)

	eventChan := make(chan tcell.Event, 64)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			// nil after Fini
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	})

	for ev := range eventChan {
		switch ev := ev.(type) {
		case *tcell.EventResize:
			term.HandleResize()
		case *tcell.EventKey:
			switch intent := keys.Lookup(ev); intent {
			case input.IntentQuit:
				logger.Info("quit requested", "metrics", metrics.Snapshot())
				return nil
			case input.IntentToggleMute:
				term.SetMuted(cues.ToggleMute())
			default:
				if input.Apply(scenario, intent) {
					// Apply input without waiting for the next tick
					scenario.Dispatch()
				}
			}
		}
	}
	return nil
}

// openBoard builds the local mirror and, when enabled, the redis store
// A redis that cannot be reached degrades to local only
func openBoard(cfg *config.Config, logger *slog.Logger, metrics *status.Registry) (*leaderboard.Board, func()) {
	lb := cfg.Leaderboard
	local := leaderboard.NewLocalStore(lb.HistoryCap, lb.LocalPath, logger)
	opts := leaderboard.BoardOptions{
		Limit:   lb.Limit,
		Timeout: lb.Timeout,
		Logger:  logger,
		Metrics: metrics,
	}

	if !cfg.Redis.Enabled {
		return leaderboard.NewBoard(local, nil, opts), func() {}
	}

	client, err := leaderboard.DialRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unavailable, leaderboard is local only", "addr", cfg.Redis.Addr, "error", err)
		return leaderboard.NewBoard(local, nil, opts), func() {}
	}
	remote := leaderboard.NewRedisStore(client, cfg.Redis.KeyPrefix, lb.HistoryCap, logger)
	return leaderboard.NewBoard(local, remote, opts), func() { remote.Close() }
}
