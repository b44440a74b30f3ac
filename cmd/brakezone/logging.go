package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const logFileName = "brakezone.log"

// setupLogging opens logDir/brakezone.log for JSON logs
// An empty logDir or an unwritable directory discards logs
func setupLogging(logDir string, level slog.Level) (*slog.Logger, *os.File) {
	discard := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if logDir == "" {
		return discard, nil
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return discard, nil
	}
	f, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return discard, nil
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, f
}
