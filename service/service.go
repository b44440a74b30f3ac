// Package service runs the long-lived resources of a host: audio, gamepad, the tick loop
//
// Lifecycle:
//  1. Construction
//  2. Register / RegisterOptional in start order
//  3. Start - required failures roll back, optional failures are logged and skipped
//  4. [runtime operation]
//  5. Stop - reverse order, idempotent
package service

import (
	"fmt"
	"log/slog"
	"sync"
)

// Service is one infrastructure subsystem
type Service interface {
	// Name returns the identifier used in logs
	Name() string

	// Start acquires resources and launches goroutines
	Start() error

	// Stop halts goroutines and releases resources
	Stop() error
}

type funcService struct {
	name  string
	start func() error
	stop  func() error
}

// New adapts start and stop functions to a Service; either may be nil
func New(name string, start, stop func() error) Service {
	return &funcService{name: name, start: start, stop: stop}
}

func (s *funcService) Name() string { return s.name }

func (s *funcService) Start() error {
	if s.start == nil {
		return nil
	}
	return s.start()
}

func (s *funcService) Stop() error {
	if s.stop == nil {
		return nil
	}
	return s.stop()
}

type entry struct {
	svc      Service
	optional bool
}

// Manager starts services in registration order and stops them in reverse
type Manager struct {
	mu      sync.Mutex
	logger  *slog.Logger
	entries []entry // registered, not yet started
	started []Service
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger.With("component", "services")}
}

// Register adds a service the host cannot run without
func (m *Manager) Register(s Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry{svc: s})
}

// RegisterOptional adds a service whose start failure degrades the host
func (m *Manager) RegisterOptional(s Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry{svc: s, optional: true})
}

// Start starts every service registered since the last Start
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := m.entries
	m.entries = nil
	for _, e := range pending {
		if err := e.svc.Start(); err != nil {
			if e.optional {
				m.logger.Warn("optional service unavailable", "service", e.svc.Name(), "error", err)
				continue
			}
			m.stopLocked()
			return fmt.Errorf("start %s: %w", e.svc.Name(), err)
		}
		m.logger.Debug("service started", "service", e.svc.Name())
		m.started = append(m.started, e.svc)
	}
	return nil
}

// Stop stops running services in reverse start order; safe to call more than once
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	for i := len(m.started) - 1; i >= 0; i-- {
		svc := m.started[i]
		if err := svc.Stop(); err != nil {
			m.logger.Error("service stop failed", "service", svc.Name(), "error", err)
			continue
		}
		m.logger.Debug("service stopped", "service", svc.Name())
	}
	m.started = m.started[:0]
}

// Running returns the names of started services in start order
func (m *Manager) Running() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.started))
	for i, s := range m.started {
		names[i] = s.Name()
	}
	return names
}
