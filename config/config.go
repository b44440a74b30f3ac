// Package config loads settings from an optional TOML file, then BRAKEZONE_* environment overrides
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "BRAKEZONE_"

type Config struct {
	LogLevel      string        `toml:"log_level"`
	LogDir        string        `toml:"log_dir"`
	Seed          uint64        `toml:"seed"` // 0 seeds from the clock
	FrameInterval time.Duration `toml:"frame_interval"`
	LiteScenery   bool          `toml:"lite_scenery"`
	AudioEnabled  bool          `toml:"audio_enabled"`

	Player      PlayerConfig        `toml:"player"`
	Keys        map[string][]string `toml:"keys"` // intent name -> key names
	Gamepad     GamepadConfig       `toml:"gamepad"`
	HTTP        HTTPConfig          `toml:"http"`
	RateLimit   RateLimitConfig     `toml:"rate_limit"`
	Redis       RedisConfig         `toml:"redis"`
	Leaderboard LeaderboardConfig   `toml:"leaderboard"`
}

type PlayerConfig struct {
	Name      string `toml:"name"`
	ClassName string `toml:"class_name"`
}

type GamepadConfig struct {
	Enabled      bool          `toml:"enabled"`
	Device       string        `toml:"device"`
	PollInterval time.Duration `toml:"poll_interval"`
}

type HTTPConfig struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	AllowedOrigins  []string      `toml:"allowed_origins"`
}

type RateLimitConfig struct {
	PerWindow int           `toml:"per_window"`
	Window    time.Duration `toml:"window"`
	Whitelist []string      `toml:"whitelist"`
}

type RedisConfig struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

type LeaderboardConfig struct {
	HistoryCap int           `toml:"history_cap"`
	Limit      int           `toml:"limit"`
	LocalPath  string        `toml:"local_path"`
	Timeout    time.Duration `toml:"timeout"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		LogDir:        "logs",
		FrameInterval: time.Second / 60,
		AudioEnabled:  true,
		Gamepad: GamepadConfig{
			Device:       "/dev/input/js0",
			PollInterval: 16 * time.Millisecond,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			PerWindow: 30,
			Window:    time.Minute,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "brakezone:",
		},
		Leaderboard: LeaderboardConfig{
			HistoryCap: 50,
			Limit:      5,
			Timeout:    2 * time.Second,
		},
	}
}

// Load reads path (missing file keeps defaults), applies environment overrides and validates
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the hosts cannot run with
func (c *Config) Validate() error {
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame_interval must be positive, got %v", c.FrameInterval)
	}
	if c.Leaderboard.HistoryCap <= 0 {
		return fmt.Errorf("leaderboard.history_cap must be positive, got %d", c.Leaderboard.HistoryCap)
	}
	if c.Leaderboard.Limit <= 0 || c.Leaderboard.Limit > c.Leaderboard.HistoryCap {
		return fmt.Errorf("leaderboard.limit must be in 1..%d, got %d", c.Leaderboard.HistoryCap, c.Leaderboard.Limit)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	for intent := range c.Keys {
		switch strings.ToLower(intent) {
		case "start", "brake", "restart", "quit", "mute":
		default:
			return fmt.Errorf("keys: unknown intent %q", intent)
		}
	}
	return nil
}

// SlogLevel maps LogLevel to slog, unknown values fall back to info
func (c *Config) SlogLevel() slog.Level {
	return parseLevel(c.LogLevel, slog.LevelInfo)
}

func parseLevel(v string, defaultVal slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultVal
	}
}
