package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func (c *Config) applyEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogDir = getEnv("LOG_DIR", c.LogDir)
	c.Seed = getUintEnv("SEED", c.Seed)
	c.FrameInterval = getDurationEnv("FRAME_INTERVAL", c.FrameInterval)
	c.LiteScenery = getBoolEnv("LITE_SCENERY", c.LiteScenery)
	c.AudioEnabled = getBoolEnv("AUDIO", c.AudioEnabled)

	c.Player.Name = getEnv("PLAYER_NAME", c.Player.Name)
	c.Player.ClassName = getEnv("CLASS_NAME", c.Player.ClassName)

	c.Gamepad.Enabled = getBoolEnv("GAMEPAD_ENABLED", c.Gamepad.Enabled)
	c.Gamepad.Device = getEnv("GAMEPAD_DEVICE", c.Gamepad.Device)

	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.ReadTimeout = getDurationEnv("READ_TIMEOUT", c.HTTP.ReadTimeout)
	c.HTTP.WriteTimeout = getDurationEnv("WRITE_TIMEOUT", c.HTTP.WriteTimeout)
	c.HTTP.ShutdownTimeout = getDurationEnv("SHUTDOWN_TIMEOUT", c.HTTP.ShutdownTimeout)
	if origins := getCSVEnv("ALLOWED_ORIGINS"); origins != nil {
		c.HTTP.AllowedOrigins = origins
	}

	c.RateLimit.PerWindow = getIntEnv("RATE_LIMIT_PER_WINDOW", c.RateLimit.PerWindow)
	c.RateLimit.Window = getDurationEnv("RATE_LIMIT_WINDOW", c.RateLimit.Window)
	if wl := getCSVEnv("RATE_LIMIT_WHITELIST"); wl != nil {
		c.RateLimit.Whitelist = wl
	}

	c.Redis.Enabled = getBoolEnv("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getIntEnv("REDIS_DB", c.Redis.DB)
	c.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", c.Redis.KeyPrefix)

	c.Leaderboard.HistoryCap = getIntEnv("HISTORY_CAP", c.Leaderboard.HistoryCap)
	c.Leaderboard.Limit = getIntEnv("LEADERBOARD_LIMIT", c.Leaderboard.Limit)
	c.Leaderboard.LocalPath = getEnv("LOCAL_STORE", c.Leaderboard.LocalPath)
	c.Leaderboard.Timeout = getDurationEnv("LEADERBOARD_TIMEOUT", c.Leaderboard.Timeout)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getUintEnv(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if i, err := strconv.ParseUint(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getCSVEnv(key string) []string {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			result = append(result, t)
		}
	}
	return result
}
