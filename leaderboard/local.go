package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// LocalStore keeps the best records in memory, optionally mirrored to a JSON file
type LocalStore struct {
	mu      sync.Mutex
	records []Record
	cap     int
	path    string
	logger  *slog.Logger
}

// NewLocalStore loads path when it exists; an unreadable file starts an empty history
func NewLocalStore(capacity int, path string, logger *slog.Logger) *LocalStore {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &LocalStore{
		cap:    capacity,
		path:   path,
		logger: logger.With("component", "local_leaderboard"),
	}
	if path != "" {
		if err := s.load(); err != nil {
			s.logger.Warn("local leaderboard load failed", "path", path, "error", err)
		}
	}
	return s
}

func (s *LocalStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	for i := range records {
		records[i] = records[i].Sanitize()
	}
	Sort(records)
	if len(records) > s.cap {
		records = records[:s.cap]
	}
	s.records = records
	return nil
}

func (s *LocalStore) Top(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit = clampLimit(limit, s.cap)
	if limit > len(s.records) {
		limit = len(s.records)
	}
	return append([]Record(nil), s.records[:limit]...), nil
}

func (s *LocalStore) Insert(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, r)
	Sort(s.records)
	if len(s.records) > s.cap {
		s.records = s.records[:s.cap]
	}
	return s.persist()
}

// Len returns the number of stored records
func (s *LocalStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// persist writes the history atomically; caller holds mu
func (s *LocalStore) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
